package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/story-cards/internal/apperror"
	"github.com/sakif/story-cards/internal/model"
	"github.com/sakif/story-cards/internal/repository"
)

var _ repository.StoryRepository = (*DB)(nil)

// CreateStory inserts a story owned by story.UserID.
func (db *DB) CreateStory(ctx context.Context, story *model.Story) error {
	now := time.Now().UTC()
	story.CreatedAt = now
	story.UpdatedAt = now

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO stories (user_id, title, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		story.UserID,
		story.Title,
		story.Description,
		story.CreatedAt,
		story.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating story: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading story id: %w", err)
	}
	story.ID = id
	return nil
}

// GetStory retrieves a story by ID. Ownership is the service's concern.
func (db *DB) GetStory(ctx context.Context, id int64) (*model.Story, error) {
	var s model.Story
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, title, description, created_at, updated_at
		 FROM stories WHERE id = ?`,
		id,
	).Scan(&s.ID, &s.UserID, &s.Title, &s.Description, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFoundID("story", id)
		}
		return nil, fmt.Errorf("sqlite: getting story %d: %w", id, err)
	}
	return &s, nil
}

// ListStories returns a user's stories, most recently updated first.
func (db *DB) ListStories(ctx context.Context, userID string, opts repository.ListOptions) ([]model.Story, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := max(opts.Offset, 0)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, title, description, created_at, updated_at
		 FROM stories
		 WHERE user_id = ?
		 ORDER BY updated_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing stories: %w", err)
	}
	defer rows.Close()

	stories := make([]model.Story, 0, limit)
	for rows.Next() {
		var s model.Story
		if err := rows.Scan(&s.ID, &s.UserID, &s.Title, &s.Description, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning story row: %w", err)
		}
		stories = append(stories, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating stories: %w", err)
	}
	return stories, nil
}

// UpdateStory writes title and description.
func (db *DB) UpdateStory(ctx context.Context, story *model.Story) error {
	story.UpdatedAt = time.Now().UTC()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE stories SET title = ?, description = ?, updated_at = ? WHERE id = ?`,
		story.Title, story.Description, story.UpdatedAt, story.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating story %d: %w", story.ID, err)
	}
	return expectStoryRow(result, story.ID)
}

// DeleteStory removes a story. ON DELETE CASCADE takes its messages and
// cards with it (foreign_keys is enabled in New).
func (db *DB) DeleteStory(ctx context.Context, id int64) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM stories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting story %d: %w", id, err)
	}
	return expectStoryRow(result, id)
}

// AddMessage appends a transcript line and bumps the story's updated_at so
// recently discussed stories sort first.
func (db *DB) AddMessage(ctx context.Context, msg *model.Message) error {
	msg.CreatedAt = time.Now().UTC()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning message tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO messages (story_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
		msg.StoryID, msg.Role, msg.Content, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: adding message to story %d: %w", msg.StoryID, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading message id: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE stories SET updated_at = ? WHERE id = ?`, msg.CreatedAt, msg.StoryID,
	); err != nil {
		return fmt.Errorf("sqlite: touching story %d: %w", msg.StoryID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing message tx: %w", err)
	}
	msg.ID = id
	return nil
}

// ListMessages returns the full transcript in the order it was spoken.
func (db *DB) ListMessages(ctx context.Context, storyID int64) ([]model.Message, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, story_id, role, content, created_at
		 FROM messages WHERE story_id = ? ORDER BY id ASC`,
		storyID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing messages for story %d: %w", storyID, err)
	}
	defer rows.Close()

	messages := []model.Message{}
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.StoryID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning message row: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating messages: %w", err)
	}
	return messages, nil
}

func expectStoryRow(result sql.Result, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFoundID("story", id)
	}
	return nil
}
