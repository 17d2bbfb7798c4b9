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

// COMPILE-TIME INTERFACE CHECK:
// `var _ X = (*Y)(nil)` fails to compile if *Y stops implementing X, so a
// missing method shows up here instead of at some distant call site.
var _ repository.SnippetRepository = (*DB)(nil)

const snippetColumns = `id, story_id, title, content, theme, phase, is_locked, is_active, created_at, updated_at`

// rowScanner is satisfied by both *sql.Row and *sql.Rows, so one scan
// function serves single-row and multi-row queries.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanSnippet reads one row selected with snippetColumns.
//
// SCANNING INTO NAMED TYPES:
// model.Theme and model.Phase are `type X string`. database/sql falls back to
// reflection for named types, so scanning TEXT into *model.Theme just works.
// The INTEGER 0/1 flags scan straight into bool the same way.
func scanSnippet(row rowScanner) (model.Snippet, error) {
	var s model.Snippet
	err := row.Scan(
		&s.ID,
		&s.StoryID,
		&s.Title,
		&s.Content,
		&s.Theme,
		&s.Phase,
		&s.IsLocked,
		&s.IsActive,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	return s, err
}

// CreateSnippet inserts a card and writes the generated ID and timestamps back
// into snippet.
//
// INTEGER IDs:
// Unlike users (xid strings), cards use SQLite's AUTOINCREMENT key. The
// clients address cards by number and the ID order doubles as creation order.
// LastInsertId() hands the new key back without a second query.
func (db *DB) CreateSnippet(ctx context.Context, snippet *model.Snippet) error {
	return insertSnippet(ctx, db.conn, snippet)
}

// execer is the subset of *sql.DB and *sql.Tx that inserts need.
// Taking the interface lets ReplaceUnlockedSnippets reuse insertSnippet
// inside its transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertSnippet(ctx context.Context, ex execer, snippet *model.Snippet) error {
	now := time.Now().UTC()
	snippet.CreatedAt = now
	snippet.UpdatedAt = now
	snippet.IsActive = true

	result, err := ex.ExecContext(ctx,
		`INSERT INTO snippets (story_id, title, content, theme, phase, is_locked, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snippet.StoryID,
		snippet.Title,
		snippet.Content,
		snippet.Theme,
		snippet.Phase,
		snippet.IsLocked,
		snippet.IsActive,
		snippet.CreatedAt,
		snippet.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating snippet: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading snippet id: %w", err)
	}
	snippet.ID = id
	return nil
}

// GetSnippet retrieves a single card, active or archived.
// Returns apperror.ErrNotFound when no card has that ID.
func (db *DB) GetSnippet(ctx context.Context, id int64) (*model.Snippet, error) {
	s, err := scanSnippet(db.conn.QueryRowContext(ctx,
		`SELECT `+snippetColumns+` FROM snippets WHERE id = ?`, id,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFoundID("snippet", id)
		}
		return nil, fmt.Errorf("sqlite: getting snippet %d: %w", id, err)
	}
	return &s, nil
}

// ListSnippets returns the story's active or archived cards, oldest first.
//
// No LIMIT here: a story holds a handful of cards (the generator produces at
// most eight per run) and the gallery pages them client-side.
func (db *DB) ListSnippets(ctx context.Context, storyID int64, active bool) ([]model.Snippet, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+snippetColumns+`
		 FROM snippets
		 WHERE story_id = ? AND is_active = ?
		 ORDER BY id ASC`,
		storyID, active,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing snippets for story %d: %w", storyID, err)
	}
	defer rows.Close()

	// Start from an empty, non-nil slice so JSON renders [] instead of null.
	snippets := []model.Snippet{}
	for rows.Next() {
		s, err := scanSnippet(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning snippet row: %w", err)
		}
		snippets = append(snippets, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating snippets: %w", err)
	}

	return snippets, nil
}

// UpdateSnippet writes the editable fields (title, content, theme, phase).
// Lock and active flags have their own setters so an edit can never
// accidentally unlock or restore a card.
func (db *DB) UpdateSnippet(ctx context.Context, snippet *model.Snippet) error {
	snippet.UpdatedAt = time.Now().UTC()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE snippets
		 SET title = ?, content = ?, theme = ?, phase = ?, updated_at = ?
		 WHERE id = ?`,
		snippet.Title,
		snippet.Content,
		snippet.Theme,
		snippet.Phase,
		snippet.UpdatedAt,
		snippet.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating snippet %d: %w", snippet.ID, err)
	}
	return expectOneRow(result, snippet.ID)
}

// SetSnippetLocked sets the lock flag.
func (db *DB) SetSnippetLocked(ctx context.Context, id int64, locked bool) error {
	return db.setSnippetFlag(ctx, "is_locked", id, locked)
}

// SetSnippetActive archives (false) or restores (true) a card.
func (db *DB) SetSnippetActive(ctx context.Context, id int64, active bool) error {
	return db.setSnippetFlag(ctx, "is_active", id, active)
}

// setSnippetFlag is only ever called with the two column names above, never
// with user input, so interpolating column is safe.
func (db *DB) setSnippetFlag(ctx context.Context, column string, id int64, value bool) error {
	result, err := db.conn.ExecContext(ctx,
		fmt.Sprintf(`UPDATE snippets SET %s = ?, updated_at = ? WHERE id = ?`, column),
		value, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: setting %s on snippet %d: %w", column, id, err)
	}
	return expectOneRow(result, id)
}

// ReplaceUnlockedSnippets archives the story's unlocked active cards and
// inserts fresh in their place.
//
// TRANSACTIONS:
// Both steps must happen or neither. If the insert failed after the archive
// succeeded, the user would be left with only their locked cards.
// BeginTx → work on tx (never db.conn!) → Commit. The deferred Rollback is a
// no-op once Commit has succeeded.
func (db *DB) ReplaceUnlockedSnippets(ctx context.Context, storyID int64, fresh []model.Snippet) (int, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: beginning regenerate tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE snippets SET is_active = 0, updated_at = ?
		 WHERE story_id = ? AND is_active = 1 AND is_locked = 0`,
		time.Now().UTC(), storyID,
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: archiving unlocked snippets for story %d: %w", storyID, err)
	}
	archived, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}

	for i := range fresh {
		fresh[i].StoryID = storyID
		fresh[i].IsLocked = false
		if err := insertSnippet(ctx, tx, &fresh[i]); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: committing regenerate tx: %w", err)
	}
	return int(archived), nil
}

// expectOneRow turns "UPDATE matched nothing" into a NotFound error.
func expectOneRow(result sql.Result, id int64) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFoundID("snippet", id)
	}
	return nil
}
