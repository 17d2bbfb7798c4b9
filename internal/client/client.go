// Package client is a typed Go client for the story-cards HTTP API.
//
// The CLI and the terminal gallery both talk to the server through it; they
// never build URLs or decode JSON themselves.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sakif/story-cards/internal/model"
)

// DefaultTimeout bounds every call. Generation waits on the model, so it is
// well above what CRUD calls need.
const DefaultTimeout = 90 * time.Second

// Client calls the API with a bearer token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client (tests pass the
// httptest server's client).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New returns a client for the API at baseURL. token may be empty until
// Login or Register succeed.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the bearer token in use.
func (c *Client) Token() string { return c.token }

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	Status  int
	Code    string // "validation_error", "forbidden", ...
	Message string
	Field   string
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s (%d): %s [%s]", e.Code, e.Status, e.Message, e.Field)
	}
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}

// IsStatus reports whether err is an *APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// AuthResult is the body of /auth/register and /auth/login.
type AuthResult struct {
	User      model.User `json:"user"`
	Token     string     `json:"token"`
	ExpiresIn int        `json:"expires_in"`
}

// Gallery is a story's cards split into the two views.
type Gallery struct {
	Active        []model.Snippet `json:"active"`
	Archived      []model.Snippet `json:"archived"`
	LockedCount   int             `json:"locked_count"`
	UnlockedCount int             `json:"unlocked_count"`
}

// GenerateResult is the body of POST .../snippets/generate. Success=false
// is a normal outcome (no transcript, no API key) and is not an error.
type GenerateResult struct {
	Success  bool            `json:"success"`
	Snippets []model.Snippet `json:"snippets"`
	Count    int             `json:"count"`
	Archived int             `json:"archived"`
	Model    string          `json:"model"`
	Error    string          `json:"error"`
}

// --- auth -----------------------------------------------------------------

// Register creates an account and keeps the returned token.
func (c *Client) Register(ctx context.Context, email, password, displayName string) (*AuthResult, error) {
	var res AuthResult
	body := map[string]string{"email": email, "password": password, "display_name": displayName}
	if err := c.do(ctx, http.MethodPost, "/auth/register", body, &res); err != nil {
		return nil, err
	}
	c.token = res.Token
	return &res, nil
}

// Login signs in and keeps the returned token.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var res AuthResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &res); err != nil {
		return nil, err
	}
	c.token = res.Token
	return &res, nil
}

// Me returns the signed-in user.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// --- stories --------------------------------------------------------------

func (c *Client) ListStories(ctx context.Context, limit, offset int) ([]model.Story, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	path := "/api/stories"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var stories []model.Story
	if err := c.do(ctx, http.MethodGet, path, nil, &stories); err != nil {
		return nil, err
	}
	return stories, nil
}

func (c *Client) CreateStory(ctx context.Context, title, description string) (*model.Story, error) {
	var story model.Story
	body := map[string]string{"title": title, "description": description}
	if err := c.do(ctx, http.MethodPost, "/api/stories", body, &story); err != nil {
		return nil, err
	}
	return &story, nil
}

func (c *Client) GetStory(ctx context.Context, id int64) (*model.Story, error) {
	var story model.Story
	if err := c.do(ctx, http.MethodGet, storyPath(id), nil, &story); err != nil {
		return nil, err
	}
	return &story, nil
}

func (c *Client) AddMessage(ctx context.Context, storyID int64, role model.Role, content string) (*model.Message, error) {
	var msg model.Message
	body := map[string]string{"role": string(role), "content": content}
	if err := c.do(ctx, http.MethodPost, storyPath(storyID)+"/messages", body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// --- cards ----------------------------------------------------------------

func (c *Client) Gallery(ctx context.Context, storyID int64) (*Gallery, error) {
	var g Gallery
	if err := c.do(ctx, http.MethodGet, storyPath(storyID)+"/snippets", nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (c *Client) Regenerate(ctx context.Context, storyID int64) (*GenerateResult, error) {
	var res GenerateResult
	if err := c.do(ctx, http.MethodPost, storyPath(storyID)+"/snippets/generate", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// UpdateSnippet sends only the fields present in u.
func (c *Client) UpdateSnippet(ctx context.Context, id int64, u model.SnippetUpdate) (*model.Snippet, error) {
	var s model.Snippet
	if err := c.do(ctx, http.MethodPut, snippetPath(id), u, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) ToggleLock(ctx context.Context, id int64) (*model.Snippet, error) {
	var s model.Snippet
	if err := c.do(ctx, http.MethodPost, snippetPath(id)+"/lock", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) ArchiveSnippet(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, snippetPath(id), nil, nil)
}

func (c *Client) RestoreSnippet(ctx context.Context, id int64) (*model.Snippet, error) {
	var s model.Snippet
	if err := c.do(ctx, http.MethodPost, snippetPath(id)+"/restore", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// StoryWithGallery fetches a story and its cards concurrently. If either
// call fails the other is cancelled and the first error is returned.
func (c *Client) StoryWithGallery(ctx context.Context, storyID int64) (*model.Story, *Gallery, error) {
	var (
		story   *model.Story
		gallery *Gallery
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		story, err = c.GetStory(ctx, storyID)
		return err
	})
	g.Go(func() error {
		var err error
		gallery, err = c.Gallery(ctx, storyID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return story, gallery, nil
}

// --- plumbing -------------------------------------------------------------

func storyPath(id int64) string   { return "/api/stories/" + strconv.FormatInt(id, 10) }
func snippetPath(id int64) string { return "/api/snippets/" + strconv.FormatInt(id, 10) }

// do sends body as JSON (when non-nil) and decodes a 2xx response into out
// (when non-nil). Anything else becomes an *APIError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encoding %s %s: %w", method, path, err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("client: building %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decoding %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Code: "http_error", Message: http.StatusText(resp.StatusCode)}
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Field   string `json:"field"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		apiErr.Code = body.Error
		apiErr.Message = body.Message
		apiErr.Field = body.Field
	}
	return apiErr
}
