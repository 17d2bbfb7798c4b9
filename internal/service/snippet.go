// Package service contains the business rules of the story-cards API.
//
// THE THREE LAYERS:
//
//	Handler (HTTP)       → parses requests, writes responses
//	Service (business)   → validates, checks ownership, orchestrates
//	Repository (data)    → reads/writes SQLite
//
// Services take repository INTERFACES, not *sqlite.DB. Tests hand them
// in-memory fakes, and nothing in this package imports database/sql or
// net/http. The CLI could call these services directly if it ever needed to.
//
// OWNERSHIP:
// Every operation takes the caller's user ID. Cards belong to stories and
// stories belong to users, so each card operation resolves the card's story
// and asks the OwnerCache whether the caller owns it.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/story-cards/internal/apperror"
	"github.com/sakif/story-cards/internal/generator"
	"github.com/sakif/story-cards/internal/model"
	"github.com/sakif/story-cards/internal/repository"
)

// Messages returned in GenerateResult.Error. Generation failures are reported
// in the response body rather than as HTTP errors so clients can show them.
const (
	msgNoTranscript   = "This story has no messages to create cards from yet."
	msgNotConfigured  = "Card generation is not configured on this server."
	msgGenerateFailed = "Failed to generate cards. Please try again."
)

// SnippetService handles story cards.
type SnippetService struct {
	snippets  repository.SnippetRepository
	stories   repository.StoryRepository
	owners    *OwnerCache
	generator generator.Generator
	logger    *slog.Logger
}

// NewSnippetService wires the card service. gen may be generator.Unconfigured.
func NewSnippetService(
	snippets repository.SnippetRepository,
	stories repository.StoryRepository,
	owners *OwnerCache,
	gen generator.Generator,
	logger *slog.Logger,
) *SnippetService {
	return &SnippetService{
		snippets:  snippets,
		stories:   stories,
		owners:    owners,
		generator: gen,
		logger:    logger,
	}
}

// Gallery is a story's cards split into the two views.
type Gallery struct {
	Active        []model.Snippet `json:"active"`
	Archived      []model.Snippet `json:"archived"`
	LockedCount   int             `json:"locked_count"`
	UnlockedCount int             `json:"unlocked_count"`
}

// GenerateResult mirrors the generation response body.
// Success=false with Error set means the model failed, not the request.
type GenerateResult struct {
	Success  bool            `json:"success"`
	Snippets []model.Snippet `json:"snippets"`
	Count    int             `json:"count"`
	Archived int             `json:"archived"`
	Model    string          `json:"model,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// Gallery returns the story's active and archived cards.
func (s *SnippetService) Gallery(ctx context.Context, userID string, storyID int64) (*Gallery, error) {
	if err := s.owners.Authorize(ctx, storyID, userID); err != nil {
		return nil, err
	}

	active, err := s.snippets.ListSnippets(ctx, storyID, true)
	if err != nil {
		return nil, fmt.Errorf("listing active cards: %w", err)
	}
	archived, err := s.snippets.ListSnippets(ctx, storyID, false)
	if err != nil {
		return nil, fmt.Errorf("listing archived cards: %w", err)
	}

	locked := model.CountLocked(active)
	return &Gallery{
		Active:        active,
		Archived:      archived,
		LockedCount:   locked,
		UnlockedCount: len(active) - locked,
	}, nil
}

// Update applies a sparse change-set to a card.
//
// The editor already enforces the limits, but every client is untrusted:
// title and content are truncated here too (200 / 300 characters) and
// unknown theme or phase values are rejected outright. An empty change-set
// is a no-op that returns the card unchanged.
func (s *SnippetService) Update(ctx context.Context, userID string, id int64, u model.SnippetUpdate) (*model.Snippet, error) {
	snippet, err := s.authorizedSnippet(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if err := validateUpdate(&u); err != nil {
		return nil, err
	}
	if u.IsEmpty() {
		return snippet, nil
	}

	u.Apply(snippet)
	if err := s.snippets.UpdateSnippet(ctx, snippet); err != nil {
		s.logger.Error("failed to update card",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating card: %w", err)
	}

	s.logger.Info("snippet updated",
		slog.Int64("id", id),
		slog.Any("fields", u.Fields()),
	)
	return snippet, nil
}

// validateUpdate checks and normalizes the present fields in place.
func validateUpdate(u *model.SnippetUpdate) error {
	if u.Title != nil {
		title := strings.TrimSpace(*u.Title)
		if title == "" {
			return apperror.ValidationFailed("title", "title must not be empty")
		}
		title = model.TruncateRunes(title, model.MaxTitleLength)
		u.Title = &title
	}
	if u.Content != nil {
		content := strings.TrimSpace(*u.Content)
		if content == "" {
			return apperror.ValidationFailed("content", "content must not be empty")
		}
		content = model.TruncateRunes(content, model.MaxContentLength)
		u.Content = &content
	}
	if u.Theme != nil && !u.Theme.Valid() {
		return apperror.ValidationFailed("theme", fmt.Sprintf("unknown theme %q", *u.Theme))
	}
	if u.Phase != nil && !u.Phase.Valid() {
		return apperror.ValidationFailed("phase", fmt.Sprintf("unknown phase %q", *u.Phase))
	}
	return nil
}

// ToggleLock flips the card's lock flag and returns the updated card.
// Locked cards survive regeneration.
func (s *SnippetService) ToggleLock(ctx context.Context, userID string, id int64) (*model.Snippet, error) {
	snippet, err := s.authorizedSnippet(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	locked := !snippet.IsLocked
	if err := s.snippets.SetSnippetLocked(ctx, id, locked); err != nil {
		return nil, fmt.Errorf("toggling lock: %w", err)
	}
	snippet.IsLocked = locked

	s.logger.Info("snippet lock toggled", slog.Int64("id", id), slog.Bool("locked", locked))
	return snippet, nil
}

// Archive soft-deletes a card: it moves to the archived list and can be restored.
func (s *SnippetService) Archive(ctx context.Context, userID string, id int64) error {
	if _, err := s.authorizedSnippet(ctx, userID, id); err != nil {
		return err
	}
	if err := s.snippets.SetSnippetActive(ctx, id, false); err != nil {
		return fmt.Errorf("archiving card: %w", err)
	}

	s.logger.Info("snippet archived", slog.Int64("id", id))
	return nil
}

// Restore moves an archived card back to the active list.
func (s *SnippetService) Restore(ctx context.Context, userID string, id int64) (*model.Snippet, error) {
	snippet, err := s.authorizedSnippet(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.snippets.SetSnippetActive(ctx, id, true); err != nil {
		return nil, fmt.Errorf("restoring card: %w", err)
	}
	snippet.IsActive = true

	s.logger.Info("snippet restored", slog.Int64("id", id))
	return snippet, nil
}

// Regenerate asks the generator for fresh cards from the story's transcript,
// archives every unlocked active card and stores the new ones. Locked cards
// are untouched.
//
// Only repository failures are returned as errors. A generator failure
// produces a GenerateResult with Success=false and nothing is archived.
func (s *SnippetService) Regenerate(ctx context.Context, userID string, storyID int64) (*GenerateResult, error) {
	if err := s.owners.Authorize(ctx, storyID, userID); err != nil {
		return nil, err
	}

	transcript, err := s.stories.ListMessages(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("loading transcript: %w", err)
	}

	var res generator.Result
	if hasUserMessage(transcript) {
		res, err = s.generator.Generate(ctx, transcript)
	} else {
		err = generator.ErrEmptyTranscript
	}
	if err != nil {
		s.logger.Warn("card generation failed",
			slog.Int64("storyID", storyID),
			slog.String("model", res.Model),
			slog.String("error", err.Error()),
		)
		return &GenerateResult{
			Success:  false,
			Snippets: []model.Snippet{},
			Model:    res.Model,
			Error:    generateErrorMessage(err),
		}, nil
	}

	fresh := res.Snippets
	archived, err := s.snippets.ReplaceUnlockedSnippets(ctx, storyID, fresh)
	if err != nil {
		return nil, fmt.Errorf("storing generated cards: %w", err)
	}

	s.logger.Info("cards regenerated",
		slog.Int64("storyID", storyID),
		slog.Int("created", len(fresh)),
		slog.Int("archived", archived),
		slog.String("model", res.Model),
	)
	return &GenerateResult{
		Success:  true,
		Snippets: fresh,
		Count:    len(fresh),
		Archived: archived,
		Model:    res.Model,
	}, nil
}

// hasUserMessage reports whether there is anything to build cards from.
// Checking here saves a model call that could only fail.
func hasUserMessage(transcript []model.Message) bool {
	for _, m := range transcript {
		if m.Role == model.RoleUser && strings.TrimSpace(m.Content) != "" {
			return true
		}
	}
	return false
}

func generateErrorMessage(err error) string {
	switch {
	case errors.Is(err, generator.ErrEmptyTranscript):
		return msgNoTranscript
	case errors.Is(err, generator.ErrUnavailable):
		return msgNotConfigured
	default:
		return msgGenerateFailed
	}
}

// authorizedSnippet loads a card and checks the caller owns its story.
func (s *SnippetService) authorizedSnippet(ctx context.Context, userID string, id int64) (*model.Snippet, error) {
	if id <= 0 {
		return nil, apperror.ValidationFailed("id", "snippet ID must be positive")
	}
	snippet, err := s.snippets.GetSnippet(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.owners.Authorize(ctx, snippet.StoryID, userID); err != nil {
		if errors.Is(err, apperror.ErrForbidden) {
			return nil, apperror.Forbidden("not authorized to modify this snippet")
		}
		return nil, err
	}
	return snippet, nil
}
