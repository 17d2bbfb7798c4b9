package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/story-cards/internal/apperror"
	"github.com/sakif/story-cards/internal/model"
	"github.com/sakif/story-cards/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, email, display_name, password_hash, github_id, login, avatar_url, created_at, updated_at`

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	// github_id is nullable. Scanning into sql.NullInt64 and converting keeps
	// the NULL ↔ nil mapping in one place.
	var githubID sql.NullInt64
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.DisplayName,
		&u.PasswordHash,
		&githubID,
		&u.Login,
		&u.AvatarURL,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if githubID.Valid {
		id := githubID.Int64
		u.GitHubID = &id
	}
	return &u, nil
}

// isUniqueViolation reports whether err is SQLite refusing a duplicate key.
//
// The driver returns *sqlite.Error carrying the extended result code, so we
// match on SQLITE_CONSTRAINT_UNIQUE rather than parsing the message text.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

// CreateUser inserts a password account. A taken email is a Conflict.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, display_name, password_hash, github_id, login, avatar_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.DisplayName,
		user.PasswordHash,
		user.GitHubID, // nil *int64 → NULL
		user.Login,
		user.AvatarURL,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", user.Email)
		}
		return fmt.Errorf("sqlite: creating user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by their internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return u, nil
}

// GetUserByEmail is the login lookup. Empty emails never match: GitHub users
// without a public email are stored with '' and must not be findable by it.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if email == "" {
		return nil, apperror.NotFound("user", "(empty email)")
	}
	u, err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}
	return u, nil
}

// UpsertGitHubUser inserts or updates a user keyed by GitHub ID.
//
// We look the row up first so an existing user KEEPS their internal ID.
// INSERT OR REPLACE would delete and re-insert the row, and the ON DELETE
// CASCADE on stories.user_id would take every story with it.
func (db *DB) UpsertGitHubUser(ctx context.Context, user *model.User) error {
	if user.GitHubID == nil {
		return apperror.ValidationFailed("github_id", "github id is required")
	}

	var existingID string
	err := db.conn.QueryRowContext(ctx,
		`SELECT id FROM users WHERE github_id = ?`, *user.GitHubID,
	).Scan(&existingID)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("sqlite: looking up user by github_id %d: %w", *user.GitHubID, err)
	}

	now := time.Now().UTC()
	if existingID != "" {
		// Returning user: refresh the profile in case login/email/avatar changed.
		user.ID = existingID
		user.UpdatedAt = now
		_, err = db.conn.ExecContext(ctx,
			`UPDATE users SET login = ?, email = ?, avatar_url = ?, updated_at = ?
			 WHERE id = ?`,
			user.Login,
			user.Email,
			user.AvatarURL,
			user.UpdatedAt,
			user.ID,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return apperror.Conflict("user", user.Email)
			}
			return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
		}
		return db.reloadCreatedAt(ctx, user)
	}

	if user.DisplayName == "" {
		user.DisplayName = user.Login
	}
	return db.CreateUser(ctx, user)
}

// reloadCreatedAt fills CreatedAt from the stored row after an update, so the
// caller gets the full canonical record back.
func (db *DB) reloadCreatedAt(ctx context.Context, user *model.User) error {
	err := db.conn.QueryRowContext(ctx,
		`SELECT display_name, created_at FROM users WHERE id = ?`, user.ID,
	).Scan(&user.DisplayName, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("sqlite: reloading user %s: %w", user.ID, err)
	}
	return nil
}
