// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a storyteller account.
//
// TWO WAYS IN:
// A user signs up with email + password, or signs in with GitHub. Either way
// we generate our own internal string ID (xid) so our primary keys never
// depend on a third party's numbering scheme.
//
// WHY GitHubID *int64?
// Password users have no GitHub identity. A nil pointer maps to SQL NULL, and
// the UNIQUE constraint on github_id ignores NULLs, so any number of password
// users can coexist while one GitHub account still maps to exactly one user.
//
// PasswordHash carries `json:"-"` so it can never leak through an API response.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	GitHubID     *int64    `json:"github_id,omitempty"`
	Login        string    `json:"login,omitempty"`      // GitHub username, e.g. "sakif"
	AvatarURL    string    `json:"avatar_url,omitempty"` // Profile picture URL
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
