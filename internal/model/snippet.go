// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import (
	"time"
	"unicode/utf8"
)

// Card limits shared by the editor (client side) and the service (server side).
//
// The title limit is HARD: input beyond it is cut off as the user types.
// The content limit is SOFT in the editor (over-limit is flagged and blocks save)
// and HARD on the server (content is truncated before it is stored).
const (
	MaxTitleLength   = 200
	MaxContentLength = 300
)

// Snippet is a story card: a short autobiographical excerpt tagged with a
// theme and a life phase.
//
// ZERO ID MEANS "NOT YET PERSISTED":
// SQLite hands out integer IDs on insert, so a Snippet built in memory
// (for example one freshly returned by the generator) has ID == 0 until the
// repository stores it. The `omitempty` tag keeps the zero ID out of JSON.
//
// IsActive is the persisted soft-delete flag. Views never look at it: a card
// is "archived" because it sits in the archived list, not because of this field.
type Snippet struct {
	ID        int64     `json:"id,omitempty"`
	StoryID   int64     `json:"story_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Theme     Theme     `json:"theme,omitempty"`
	Phase     Phase     `json:"phase,omitempty"`
	IsLocked  bool      `json:"is_locked"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Persisted reports whether the snippet has been stored and can be addressed by ID.
func (s Snippet) Persisted() bool {
	return s.ID != 0
}

// CountLocked returns how many of the given snippets are locked.
func CountLocked(snippets []Snippet) int {
	n := 0
	for _, s := range snippets {
		if s.IsLocked {
			n++
		}
	}
	return n
}

// TruncateRunes cuts s to at most max characters.
//
// WHY RUNES, NOT BYTES?
// len("é") is 2 in Go because strings are UTF-8 bytes. Life stories are full
// of accented names and emoji; slicing by bytes could split a character in
// half and produce invalid UTF-8. Counting runes matches what a user sees.
func TruncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
