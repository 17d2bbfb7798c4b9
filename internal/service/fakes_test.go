package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/sakif/story-cards/internal/apperror"
	"github.com/sakif/story-cards/internal/generator"
	"github.com/sakif/story-cards/internal/model"
	"github.com/sakif/story-cards/internal/repository"
)

// =========================================================================
// FAKE REPOSITORIES
// =========================================================================
//
// Hand-written in-memory fakes of the repository interfaces. The services
// can't tell them from SQLite, and the tests can see exactly what each does.
// Setting one of the *Err fields simulates a database failure.

type fakeUserRepo struct {
	users  map[string]*model.User
	nextID int

	upsertErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *model.User) error {
	for _, u := range f.users {
		if user.Email != "" && u.Email == user.Email {
			return apperror.Conflict("user", user.Email)
		}
	}
	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if email != "" && u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (f *fakeUserRepo) UpsertGitHubUser(ctx context.Context, user *model.User) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	for _, u := range f.users {
		if u.GitHubID != nil && *u.GitHubID == *user.GitHubID {
			u.Login = user.Login
			u.Email = user.Email
			u.AvatarURL = user.AvatarURL
			*user = *u
			return nil
		}
	}
	return f.CreateUser(ctx, user)
}

type fakeStoryRepo struct {
	stories  map[int64]*model.Story
	messages map[int64][]model.Message
	nextID   int64
	gets     int // GetStory calls, to observe the owner cache
}

func newFakeStoryRepo() *fakeStoryRepo {
	return &fakeStoryRepo{
		stories:  make(map[int64]*model.Story),
		messages: make(map[int64][]model.Message),
	}
}

func (f *fakeStoryRepo) CreateStory(_ context.Context, story *model.Story) error {
	f.nextID++
	story.ID = f.nextID
	stored := *story
	f.stories[story.ID] = &stored
	return nil
}

func (f *fakeStoryRepo) GetStory(_ context.Context, id int64) (*model.Story, error) {
	f.gets++
	s, ok := f.stories[id]
	if !ok {
		return nil, apperror.NotFoundID("story", id)
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStoryRepo) ListStories(_ context.Context, userID string, opts repository.ListOptions) ([]model.Story, error) {
	out := []model.Story{}
	for _, s := range f.stories {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if opts.Offset >= len(out) {
		return []model.Story{}, nil
	}
	out = out[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (f *fakeStoryRepo) UpdateStory(_ context.Context, story *model.Story) error {
	if _, ok := f.stories[story.ID]; !ok {
		return apperror.NotFoundID("story", story.ID)
	}
	stored := *story
	f.stories[story.ID] = &stored
	return nil
}

func (f *fakeStoryRepo) DeleteStory(_ context.Context, id int64) error {
	if _, ok := f.stories[id]; !ok {
		return apperror.NotFoundID("story", id)
	}
	delete(f.stories, id)
	delete(f.messages, id)
	return nil
}

func (f *fakeStoryRepo) AddMessage(_ context.Context, msg *model.Message) error {
	msg.ID = int64(len(f.messages[msg.StoryID]) + 1)
	f.messages[msg.StoryID] = append(f.messages[msg.StoryID], *msg)
	return nil
}

func (f *fakeStoryRepo) ListMessages(_ context.Context, storyID int64) ([]model.Message, error) {
	return append([]model.Message{}, f.messages[storyID]...), nil
}

type fakeSnippetRepo struct {
	snippets map[int64]*model.Snippet
	nextID   int64

	replaceErr error
	updates    int
}

func newFakeSnippetRepo() *fakeSnippetRepo {
	return &fakeSnippetRepo{snippets: make(map[int64]*model.Snippet)}
}

func (f *fakeSnippetRepo) CreateSnippet(_ context.Context, s *model.Snippet) error {
	f.nextID++
	s.ID = f.nextID
	s.IsActive = true
	stored := *s
	f.snippets[s.ID] = &stored
	return nil
}

func (f *fakeSnippetRepo) GetSnippet(_ context.Context, id int64) (*model.Snippet, error) {
	s, ok := f.snippets[id]
	if !ok {
		return nil, apperror.NotFoundID("snippet", id)
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSnippetRepo) ListSnippets(_ context.Context, storyID int64, active bool) ([]model.Snippet, error) {
	out := []model.Snippet{}
	for _, s := range f.snippets {
		if s.StoryID == storyID && s.IsActive == active {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeSnippetRepo) UpdateSnippet(_ context.Context, s *model.Snippet) error {
	stored, ok := f.snippets[s.ID]
	if !ok {
		return apperror.NotFoundID("snippet", s.ID)
	}
	f.updates++
	stored.Title, stored.Content, stored.Theme, stored.Phase = s.Title, s.Content, s.Theme, s.Phase
	return nil
}

func (f *fakeSnippetRepo) SetSnippetLocked(_ context.Context, id int64, locked bool) error {
	s, ok := f.snippets[id]
	if !ok {
		return apperror.NotFoundID("snippet", id)
	}
	s.IsLocked = locked
	return nil
}

func (f *fakeSnippetRepo) SetSnippetActive(_ context.Context, id int64, active bool) error {
	s, ok := f.snippets[id]
	if !ok {
		return apperror.NotFoundID("snippet", id)
	}
	s.IsActive = active
	return nil
}

func (f *fakeSnippetRepo) ReplaceUnlockedSnippets(ctx context.Context, storyID int64, fresh []model.Snippet) (int, error) {
	if f.replaceErr != nil {
		return 0, f.replaceErr
	}
	archived := 0
	for _, s := range f.snippets {
		if s.StoryID == storyID && s.IsActive && !s.IsLocked {
			s.IsActive = false
			archived++
		}
	}
	for i := range fresh {
		fresh[i].StoryID = storyID
		_ = f.CreateSnippet(ctx, &fresh[i])
	}
	return archived, nil
}

// =========================================================================
// FAKE GENERATOR
// =========================================================================

type fakeGenerator struct {
	cards []model.Snippet
	err   error
	calls int
}

func (g *fakeGenerator) Generate(_ context.Context, transcript []model.Message) (generator.Result, error) {
	g.calls++
	if g.err != nil {
		return generator.Result{Model: "fake-model"}, g.err
	}
	if len(transcript) == 0 {
		return generator.Result{Model: "fake-model"}, generator.ErrEmptyTranscript
	}
	out := make([]model.Snippet, len(g.cards))
	copy(out, g.cards)
	return generator.Result{Snippets: out, Model: "fake-model"}, nil
}

var errDatabaseDown = errors.New("database is on fire")

// =========================================================================
// FIXTURE
// =========================================================================

type fixture struct {
	users    *fakeUserRepo
	stories  *fakeStoryRepo
	snippets *fakeSnippetRepo
	gen      *fakeGenerator

	storySvc   *StoryService
	snippetSvc *SnippetService
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:    newFakeUserRepo(),
		stories:  newFakeStoryRepo(),
		snippets: newFakeSnippetRepo(),
		gen:      &fakeGenerator{},
	}
	owners, err := NewOwnerCache(f.stories, 16)
	if err != nil {
		t.Fatalf("NewOwnerCache: %v", err)
	}
	f.storySvc = NewStoryService(f.stories, owners, quietLogger())
	f.snippetSvc = NewSnippetService(f.snippets, f.stories, owners, f.gen, quietLogger())
	return f
}

// story creates a story owned by userID.
func (f *fixture) story(t *testing.T, userID string) *model.Story {
	t.Helper()
	s, err := f.storySvc.Create(context.Background(), userID, "My life", "")
	if err != nil {
		t.Fatalf("creating story: %v", err)
	}
	return s
}

// card stores a card directly in the fake repository.
func (f *fixture) card(t *testing.T, storyID int64, title string, locked bool) *model.Snippet {
	t.Helper()
	s := &model.Snippet{
		StoryID: storyID,
		Title:   title,
		Content: "content " + title,
		Theme:   model.ThemeFamily,
		Phase:   model.PhaseChildhood,
	}
	_ = f.snippets.CreateSnippet(context.Background(), s)
	if locked {
		_ = f.snippets.SetSnippetLocked(context.Background(), s.ID, true)
		s.IsLocked = true
	}
	return s
}
