package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/story-cards/internal/apperror"
	"github.com/sakif/story-cards/internal/generator"
	"github.com/sakif/story-cards/internal/model"
)

func ptr[T any](v T) *T { return &v }

// =========================================================================
// GALLERY
// =========================================================================

func TestGallery_SplitsAndCounts(t *testing.T) {
	f := newFixture(t)
	story := f.story(t, "alice")
	f.card(t, story.ID, "a", true)
	f.card(t, story.ID, "b", false)
	c := f.card(t, story.ID, "c", false)
	require.NoError(t, f.snippetSvc.Archive(context.Background(), "alice", c.ID))

	g, err := f.snippetSvc.Gallery(context.Background(), "alice", story.ID)

	require.NoError(t, err)
	assert.Len(t, g.Active, 2)
	assert.Len(t, g.Archived, 1)
	assert.Equal(t, 1, g.LockedCount)
	assert.Equal(t, 1, g.UnlockedCount)
}

func TestGallery_NotOwner(t *testing.T) {
	f := newFixture(t)
	story := f.story(t, "alice")

	_, err := f.snippetSvc.Gallery(context.Background(), "mallory", story.ID)

	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestGallery_UnknownStory(t *testing.T) {
	f := newFixture(t)

	_, err := f.snippetSvc.Gallery(context.Background(), "alice", 404)

	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

// =========================================================================
// UPDATE
// =========================================================================

func TestUpdate_AppliesOnlyPresentFields(t *testing.T) {
	f := newFixture(t)
	story := f.story(t, "alice")
	card := f.card(t, story.ID, "Old title", false)

	got, err := f.snippetSvc.Update(context.Background(), "alice", card.ID, model.SnippetUpdate{
		Title: ptr("New title"),
	})

	require.NoError(t, err)
	assert.Equal(t, "New title", got.Title)
	assert.Equal(t, card.Content, got.Content, "absent field must be left alone")
	assert.Equal(t, model.ThemeFamily, got.Theme)
}

func TestUpdate_TruncatesToLimits(t *testing.T) {
	f := newFixture(t)
	story := f.story(t, "alice")
	card := f.card(t, story.ID, "t", false)

	got, err := f.snippetSvc.Update(context.Background(), "alice", card.ID, model.SnippetUpdate{
		Title:   ptr(strings.Repeat("T", 250)),
		Content: ptr(strings.Repeat("ü", 400)),
	})

	require.NoError(t, err)
	assert.Equal(t, model.MaxTitleLength, utf8.RuneCountInString(got.Title))
	assert.Equal(t, model.MaxContentLength, utf8.RuneCountInString(got.Content))
}

func TestUpdate_Validation(t *testing.T) {
	tests := []struct {
		name      string
		update    model.SnippetUpdate
		wantField string
	}{
		{"blank title", model.SnippetUpdate{Title: ptr("   ")}, "title"},
		{"blank content", model.SnippetUpdate{Content: ptr("")}, "content"},
		{"unknown theme", model.SnippetUpdate{Theme: ptr(model.Theme("cooking"))}, "theme"},
		{"unknown phase", model.SnippetUpdate{Phase: ptr(model.Phase("RETIREMENT"))}, "phase"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			story := f.story(t, "alice")
			card := f.card(t, story.ID, "t", false)

			_, err := f.snippetSvc.Update(context.Background(), "alice", card.ID, tt.update)

			var appErr *apperror.AppError
			require.True(t, errors.As(err, &appErr), "want *AppError, got %v", err)
			assert.ErrorIs(t, err, apperror.ErrValidation)
			assert.Equal(t, tt.wantField, appErr.Field)
			assert.Zero(t, f.snippets.updates, "nothing may be written")
		})
	}
}

func TestUpdate_EmptyChangeSetWritesNothing(t *testing.T) {
	f := newFixture(t)
	story := f.story(t, "alice")
	card := f.card(t, story.ID, "t", false)

	got, err := f.snippetSvc.Update(context.Background(), "alice", card.ID, model.SnippetUpdate{})

	require.NoError(t, err)
	assert.Equal(t, card.Title, got.Title)
	assert.Zero(t, f.snippets.updates)
}

func TestUpdate_NotOwner(t *testing.T) {
	f := newFixture(t)
	story := f.story(t, "alice")
	card := f.card(t, story.ID, "t", false)

	_, err := f.snippetSvc.Update(context.Background(), "mallory", card.ID, model.SnippetUpdate{Title: ptr("pwned")})

	assert.ErrorIs(t, err, apperror.ErrForbidden)
	stored, _ := f.snippets.GetSnippet(context.Background(), card.ID)
	assert.Equal(t, "t", stored.Title)
}

func TestUpdate_BadID(t *testing.T) {
	f := newFixture(t)

	_, err := f.snippetSvc.Update(context.Background(), "alice", 0, model.SnippetUpdate{Title: ptr("x")})

	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestUpdate_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.snippetSvc.Update(context.Background(), "alice", 99, model.SnippetUpdate{Title: ptr("x")})

	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

// =========================================================================
// LOCK / ARCHIVE / RESTORE
// =========================================================================

func TestToggleLock(t *testing.T) {
	f := newFixture(t)
	story := f.story(t, "alice")
	card := f.card(t, story.ID, "t", false)
	ctx := context.Background()

	got, err := f.snippetSvc.ToggleLock(ctx, "alice", card.ID)
	require.NoError(t, err)
	assert.True(t, got.IsLocked)

	got, err = f.snippetSvc.ToggleLock(ctx, "alice", card.ID)
	require.NoError(t, err)
	assert.False(t, got.IsLocked)
}

func TestToggleLock_NotOwner(t *testing.T) {
	f := newFixture(t)
	story := f.story(t, "alice")
	card := f.card(t, story.ID, "t", false)

	_, err := f.snippetSvc.ToggleLock(context.Background(), "mallory", card.ID)

	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestArchiveThenRestore_RoundTrips(t *testing.T) {
	f := newFixture(t)
	story := f.story(t, "alice")
	card := f.card(t, story.ID, "t", false)
	ctx := context.Background()

	require.NoError(t, f.snippetSvc.Archive(ctx, "alice", card.ID))
	g, _ := f.snippetSvc.Gallery(ctx, "alice", story.ID)
	assert.Empty(t, g.Active)
	require.Len(t, g.Archived, 1)

	restored, err := f.snippetSvc.Restore(ctx, "alice", card.ID)
	require.NoError(t, err)
	assert.True(t, restored.IsActive)

	g, _ = f.snippetSvc.Gallery(ctx, "alice", story.ID)
	assert.Len(t, g.Active, 1)
	assert.Empty(t, g.Archived)
}

func TestArchive_NotOwner(t *testing.T) {
	f := newFixture(t)
	story := f.story(t, "alice")
	card := f.card(t, story.ID, "t", false)

	err := f.snippetSvc.Archive(context.Background(), "mallory", card.ID)

	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

// =========================================================================
// REGENERATE
// =========================================================================

func freshCards(n int) []model.Snippet {
	out := make([]model.Snippet, n)
	for i := range out {
		out[i] = model.Snippet{Title: "new", Content: "c", Theme: model.ThemeGrowth, Phase: model.PhasePresent}
	}
	return out
}

func addTranscript(t *testing.T, f *fixture, storyID int64) {
	t.Helper()
	_, err := f.storySvc.AddMessage(context.Background(), "alice", storyID, model.RoleUser, "I grew up by the sea.")
	require.NoError(t, err)
}

func TestRegenerate_KeepsLockedCards(t *testing.T) {
	f := newFixture(t)
	story := f.story(t, "alice")
	addTranscript(t, f, story.ID)
	locked := f.card(t, story.ID, "keep", true)
	f.card(t, story.ID, "drop1", false)
	f.card(t, story.ID, "drop2", false)
	f.gen.cards = freshCards(4)

	res, err := f.snippetSvc.Regenerate(context.Background(), "alice", story.ID)

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 4, res.Count)
	assert.Equal(t, 2, res.Archived)
	assert.Equal(t, "fake-model", res.Model)
	for _, s := range res.Snippets {
		assert.NotZero(t, s.ID, "returned cards must be persisted")
	}

	g, _ := f.snippetSvc.Gallery(context.Background(), "alice", story.ID)
	assert.Len(t, g.Active, 5)
	assert.Len(t, g.Archived, 2)
	assert.Equal(t, locked.ID, g.Active[0].ID)
	assert.True(t, g.Active[0].IsLocked)
}

func TestRegenerate_GeneratorFailureIsReportedInBody(t *testing.T) {
	tests := []struct {
		name    string
		genErr  error
		noMsgs  bool
		wantMsg string
	}{
		{"empty transcript", nil, true, msgNoTranscript},
		{"not configured", generator.ErrUnavailable, false, msgNotConfigured},
		{"model failure", errors.New("quota"), false, msgGenerateFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			story := f.story(t, "alice")
			if !tt.noMsgs {
				addTranscript(t, f, story.ID)
			}
			f.card(t, story.ID, "survivor", false)
			f.gen.err = tt.genErr

			res, err := f.snippetSvc.Regenerate(context.Background(), "alice", story.ID)

			require.NoError(t, err)
			assert.False(t, res.Success)
			assert.Equal(t, tt.wantMsg, res.Error)
			assert.Empty(t, res.Snippets)

			g, _ := f.snippetSvc.Gallery(context.Background(), "alice", story.ID)
			assert.Len(t, g.Active, 1, "a failed generation must not archive anything")
		})
	}
}

func TestRegenerate_RepositoryFailureIsAnError(t *testing.T) {
	f := newFixture(t)
	story := f.story(t, "alice")
	addTranscript(t, f, story.ID)
	f.gen.cards = freshCards(3)
	f.snippets.replaceErr = errDatabaseDown

	_, err := f.snippetSvc.Regenerate(context.Background(), "alice", story.ID)

	assert.ErrorIs(t, err, errDatabaseDown)
}

func TestRegenerate_NotOwnerNeverCallsGenerator(t *testing.T) {
	f := newFixture(t)
	story := f.story(t, "alice")

	_, err := f.snippetSvc.Regenerate(context.Background(), "mallory", story.ID)

	assert.ErrorIs(t, err, apperror.ErrForbidden)
	assert.Zero(t, f.gen.calls)
}

func TestRegenerate_AssistantOnlyTranscriptSkipsGenerator(t *testing.T) {
	f := newFixture(t)
	story := f.story(t, "alice")
	_, err := f.storySvc.AddMessage(context.Background(), "alice", story.ID, model.RoleAssistant, "Tell me about your childhood.")
	require.NoError(t, err)

	res, err := f.snippetSvc.Regenerate(context.Background(), "alice", story.ID)

	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, msgNoTranscript, res.Error)
	assert.Zero(t, f.gen.calls)
}
