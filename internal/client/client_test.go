package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/story-cards/internal/model"
)

// fakeAPI records what it received so tests can assert on the wire format.
type fakeAPI struct {
	lastAuth atomic.Value // string
	lastBody atomic.Value // string
}

func newFakeAPI(t *testing.T) (*fakeAPI, *Client) {
	t.Helper()
	f := &fakeAPI{}
	mux := http.NewServeMux()

	record := func(r *http.Request) {
		f.lastAuth.Store(r.Header.Get("Authorization"))
		b, _ := io.ReadAll(r.Body)
		f.lastBody.Store(string(b))
	}
	reply := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		reply(w, 200, map[string]any{"token": "tok-123", "user": map[string]string{"id": "u1"}, "expires_in": 3600})
	})
	mux.HandleFunc("GET /api/stories/{id}", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		if r.PathValue("id") == "404" {
			reply(w, 404, map[string]string{"error": "not_found", "message": "story not found with id 404"})
			return
		}
		reply(w, 200, model.Story{ID: 7, Title: "Summers"})
	})
	mux.HandleFunc("GET /api/stories/{id}/snippets", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		reply(w, 200, Gallery{
			Active:      []model.Snippet{{ID: 1, Title: "a", IsLocked: true}, {ID: 2, Title: "b"}},
			Archived:    []model.Snippet{},
			LockedCount: 1, UnlockedCount: 1,
		})
	})
	mux.HandleFunc("PUT /api/snippets/{id}", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		if r.PathValue("id") == "9" {
			reply(w, 400, map[string]string{"error": "validation_error", "message": "unknown theme", "field": "theme"})
			return
		}
		reply(w, 200, model.Snippet{ID: 1, Title: "new"})
	})
	mux.HandleFunc("DELETE /api/snippets/{id}", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /api/stories/{id}/snippets/generate", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		reply(w, 200, GenerateResult{Success: false, Snippets: []model.Snippet{}, Error: "Add to your story first"})
	})
	mux.HandleFunc("GET /boom", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return f, New(ts.URL+"/", "", WithHTTPClient(ts.Client()))
}

func TestLogin_KeepsToken(t *testing.T) {
	f, c := newFakeAPI(t)
	ctx := context.Background()

	res, err := c.Login(ctx, "a@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", res.Token)
	assert.Equal(t, "tok-123", c.Token())

	_, err = c.GetStory(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", f.lastAuth.Load())
}

func TestUpdateSnippet_SendsOnlyPresentFields(t *testing.T) {
	f, c := newFakeAPI(t)
	title := "new"

	_, err := c.UpdateSnippet(context.Background(), 1, model.SnippetUpdate{Title: &title})

	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"new"}`, f.lastBody.Load().(string))
}

func TestAPIError_Decoded(t *testing.T) {
	_, c := newFakeAPI(t)
	theme := model.Theme("cooking")

	_, err := c.UpdateSnippet(context.Background(), 9, model.SnippetUpdate{Theme: &theme})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "validation_error", apiErr.Code)
	assert.Equal(t, "theme", apiErr.Field)
	assert.True(t, IsStatus(err, http.StatusBadRequest))
}

func TestAPIError_NonJSONBody(t *testing.T) {
	_, c := newFakeAPI(t)

	err := c.do(context.Background(), http.MethodGet, "/boom", nil, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "http_error", apiErr.Code)
}

func TestArchiveSnippet_NoContent(t *testing.T) {
	_, c := newFakeAPI(t)

	assert.NoError(t, c.ArchiveSnippet(context.Background(), 3))
}

func TestRegenerate_FailureIsNotAnError(t *testing.T) {
	_, c := newFakeAPI(t)

	res, err := c.Regenerate(context.Background(), 7)

	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
}

func TestStoryWithGallery(t *testing.T) {
	_, c := newFakeAPI(t)

	story, g, err := c.StoryWithGallery(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, "Summers", story.Title)
	assert.Len(t, g.Active, 2)
	assert.Equal(t, 1, g.LockedCount)
	assert.NotNil(t, g.Archived)
}

func TestStoryWithGallery_OneFails(t *testing.T) {
	_, c := newFakeAPI(t)

	story, g, err := c.StoryWithGallery(context.Background(), 404)

	assert.True(t, IsStatus(err, http.StatusNotFound))
	assert.Nil(t, story)
	assert.Nil(t, g)
}
