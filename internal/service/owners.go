package service

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/sakif/story-cards/internal/apperror"
	"github.com/sakif/story-cards/internal/repository"
)

// DefaultOwnerCacheSize bounds the story → owner cache when no size is configured.
const DefaultOwnerCacheSize = 1024

// OwnerCache answers "who owns story N?" for the per-request ownership checks.
//
// WHY CACHE THIS?
// Every card mutation (edit, lock, archive, restore) must check that the
// caller owns the card's story. A story's owner never changes, so the answer
// can be kept forever. The LRU bound only keeps memory flat; eviction
// just means one more SELECT.
type OwnerCache struct {
	stories repository.StoryRepository
	cache   *lru.Cache[int64, string]
}

// NewOwnerCache builds a cache holding up to size entries (DefaultOwnerCacheSize if size <= 0).
func NewOwnerCache(stories repository.StoryRepository, size int) (*OwnerCache, error) {
	if size <= 0 {
		size = DefaultOwnerCacheSize
	}
	cache, err := lru.New[int64, string](size)
	if err != nil {
		return nil, fmt.Errorf("service: creating owner cache: %w", err)
	}
	return &OwnerCache{stories: stories, cache: cache}, nil
}

// Owner returns the owning user ID, loading it on a miss.
// A missing story surfaces as apperror.ErrNotFound.
func (c *OwnerCache) Owner(ctx context.Context, storyID int64) (string, error) {
	if owner, ok := c.cache.Get(storyID); ok {
		return owner, nil
	}
	story, err := c.stories.GetStory(ctx, storyID)
	if err != nil {
		return "", err
	}
	c.cache.Add(storyID, story.UserID)
	return story.UserID, nil
}

// Authorize returns nil when userID owns the story, apperror.ErrForbidden
// when someone else does, and apperror.ErrNotFound when the story is gone.
func (c *OwnerCache) Authorize(ctx context.Context, storyID int64, userID string) error {
	owner, err := c.Owner(ctx, storyID)
	if err != nil {
		return err
	}
	if owner != userID {
		return apperror.Forbidden("not authorized to access this story")
	}
	return nil
}

// Remember records the owner of a story that was just created.
func (c *OwnerCache) Remember(storyID int64, userID string) {
	c.cache.Add(storyID, userID)
}

// Forget drops a deleted story so its ID can't authorize anything later.
func (c *OwnerCache) Forget(storyID int64) {
	c.cache.Remove(storyID)
}
