// Package repository defines the storage contracts the service layer depends on.
//
// The service layer only ever sees these interfaces. The sqlite package
// provides the production implementation; service tests provide in-memory mocks.
package repository

import (
	"context"

	"github.com/sakif/story-cards/internal/model"
)

// ListOptions controls pagination for list queries.
type ListOptions struct {
	Limit  int
	Offset int
}

// SnippetRepository stores story cards.
//
// Cards are never hard-deleted: archiving flips is_active, and restoring
// flips it back.
type SnippetRepository interface {
	CreateSnippet(ctx context.Context, snippet *model.Snippet) error
	GetSnippet(ctx context.Context, id int64) (*model.Snippet, error)
	// ListSnippets returns a story's active (active=true) or archived cards
	// in creation order.
	ListSnippets(ctx context.Context, storyID int64, active bool) ([]model.Snippet, error)
	UpdateSnippet(ctx context.Context, snippet *model.Snippet) error
	SetSnippetLocked(ctx context.Context, id int64, locked bool) error
	SetSnippetActive(ctx context.Context, id int64, active bool) error
	// ReplaceUnlockedSnippets archives every unlocked active card of the story
	// and inserts fresh, in one transaction. IDs are written back into fresh.
	ReplaceUnlockedSnippets(ctx context.Context, storyID int64, fresh []model.Snippet) (archived int, err error)
}

// StoryRepository stores interview stories and their transcripts.
type StoryRepository interface {
	CreateStory(ctx context.Context, story *model.Story) error
	GetStory(ctx context.Context, id int64) (*model.Story, error)
	ListStories(ctx context.Context, userID string, opts ListOptions) ([]model.Story, error)
	UpdateStory(ctx context.Context, story *model.Story) error
	DeleteStory(ctx context.Context, id int64) error

	AddMessage(ctx context.Context, msg *model.Message) error
	ListMessages(ctx context.Context, storyID int64) ([]model.Message, error)
}

// UserRepository stores accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// UpsertGitHubUser creates the user on first GitHub login and refreshes
	// login/email/avatar on later ones. user.ID is set either way.
	UpsertGitHubUser(ctx context.Context, user *model.User) error
}
