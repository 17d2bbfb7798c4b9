package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/story-cards/internal/apperror"
	"github.com/sakif/story-cards/internal/model"
	"github.com/sakif/story-cards/internal/repository"
)

const (
	MaxStoryTitleLength       = 200
	MaxStoryDescriptionLength = 2000
	MaxMessageLength          = 10000
	DefaultListLimit          = 20
	MaxListLimit              = 100
)

// StoryService manages stories and their interview transcripts.
type StoryService struct {
	repo   repository.StoryRepository
	owners *OwnerCache
	logger *slog.Logger
}

func NewStoryService(repo repository.StoryRepository, owners *OwnerCache, logger *slog.Logger) *StoryService {
	return &StoryService{repo: repo, owners: owners, logger: logger}
}

// Create validates and saves a new story owned by userID.
func (s *StoryService) Create(ctx context.Context, userID, title, description string) (*model.Story, error) {
	title, description, err := validateStory(title, description)
	if err != nil {
		return nil, err
	}

	story := &model.Story{UserID: userID, Title: title, Description: description}
	if err := s.repo.CreateStory(ctx, story); err != nil {
		s.logger.Error("failed to create story", slog.String("error", err.Error()))
		return nil, fmt.Errorf("creating story: %w", err)
	}
	s.owners.Remember(story.ID, userID)

	s.logger.Info("story created", slog.Int64("id", story.ID), slog.String("userID", userID))
	return story, nil
}

// Get returns a story the caller owns.
func (s *StoryService) Get(ctx context.Context, userID string, id int64) (*model.Story, error) {
	if err := s.owners.Authorize(ctx, id, userID); err != nil {
		return nil, err
	}
	return s.repo.GetStory(ctx, id)
}

// List returns the caller's stories. limit is clamped to 1..MaxListLimit
// (DefaultListLimit when <= 0) and a negative offset becomes 0.
func (s *StoryService) List(ctx context.Context, userID string, limit, offset int) ([]model.Story, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	limit = min(limit, MaxListLimit)
	offset = max(offset, 0)

	stories, err := s.repo.ListStories(ctx, userID, repository.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("listing stories: %w", err)
	}
	return stories, nil
}

// Update replaces title and description.
func (s *StoryService) Update(ctx context.Context, userID string, id int64, title, description string) (*model.Story, error) {
	if err := s.owners.Authorize(ctx, id, userID); err != nil {
		return nil, err
	}
	title, description, err := validateStory(title, description)
	if err != nil {
		return nil, err
	}

	story, err := s.repo.GetStory(ctx, id)
	if err != nil {
		return nil, err
	}
	story.Title = title
	story.Description = description
	if err := s.repo.UpdateStory(ctx, story); err != nil {
		return nil, fmt.Errorf("updating story: %w", err)
	}

	s.logger.Info("story updated", slog.Int64("id", id))
	return story, nil
}

// Delete removes a story with its transcript and cards.
func (s *StoryService) Delete(ctx context.Context, userID string, id int64) error {
	if err := s.owners.Authorize(ctx, id, userID); err != nil {
		return err
	}
	if err := s.repo.DeleteStory(ctx, id); err != nil {
		return err
	}
	s.owners.Forget(id)

	s.logger.Info("story deleted", slog.Int64("id", id))
	return nil
}

// AddMessage appends one transcript line.
func (s *StoryService) AddMessage(ctx context.Context, userID string, storyID int64, role model.Role, content string) (*model.Message, error) {
	if err := s.owners.Authorize(ctx, storyID, userID); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, apperror.ValidationFailed("role", fmt.Sprintf("role must be %q or %q", model.RoleUser, model.RoleAssistant))
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.ValidationFailed("content", "message content is required")
	}
	if len(content) > MaxMessageLength {
		return nil, apperror.ValidationFailed("content",
			fmt.Sprintf("message must be %d characters or less", MaxMessageLength))
	}

	msg := &model.Message{StoryID: storyID, Role: role, Content: content}
	if err := s.repo.AddMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("adding message: %w", err)
	}
	return msg, nil
}

// Messages returns the story's transcript.
func (s *StoryService) Messages(ctx context.Context, userID string, storyID int64) ([]model.Message, error) {
	if err := s.owners.Authorize(ctx, storyID, userID); err != nil {
		return nil, err
	}
	msgs, err := s.repo.ListMessages(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	return msgs, nil
}

func validateStory(title, description string) (string, string, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" {
		return "", "", apperror.ValidationFailed("title", "story title is required")
	}
	if len([]rune(title)) > MaxStoryTitleLength {
		return "", "", apperror.ValidationFailed("title",
			fmt.Sprintf("story title must be %d characters or less", MaxStoryTitleLength))
	}
	if len([]rune(description)) > MaxStoryDescriptionLength {
		return "", "", apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", MaxStoryDescriptionLength))
	}
	return title, description, nil
}
