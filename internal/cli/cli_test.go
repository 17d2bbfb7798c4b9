package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/story-cards/internal/config"
	"github.com/sakif/story-cards/internal/generator"
	"github.com/sakif/story-cards/internal/model"
	"github.com/sakif/story-cards/internal/server"
)

// stubGenerator hands back n numbered cards for any non-empty transcript.
type stubGenerator struct{ n int }

func (g stubGenerator) Generate(_ context.Context, transcript []model.Message) (generator.Result, error) {
	if len(transcript) == 0 {
		return generator.Result{Model: "stub"}, generator.ErrEmptyTranscript
	}
	out := make([]model.Snippet, g.n)
	for i := range out {
		out[i] = model.Snippet{
			Title:   fmt.Sprintf("card-%d", i+1),
			Content: "content",
			Theme:   model.ThemeGrowth,
			Phase:   model.PhasePresent,
		}
	}
	return generator.Result{Snippets: out, Model: "stub"}, nil
}

// harness runs commands against a real server backed by an in-memory database.
type harness struct {
	t       *testing.T
	url     string
	cfgPath string
}

func newHarness(t *testing.T, cards int) *harness {
	t.Helper()
	for _, key := range []string{"STORYCARDS_API_URL", "STORYCARDS_TOKEN", "STORYCARDS_PASSWORD", "STORYCARDS_CLIENT_CONFIG"} {
		t.Setenv(key, "")
	}

	srv, err := server.New(server.Config{
		DBPath:         ":memory:",
		JWTSecret:      "test-secret-at-least-16-chars!!",
		TokenTTL:       time.Hour,
		OwnerCacheSize: 16,
	}, stubGenerator{n: cards}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})

	return &harness{t: t, url: ts.URL, cfgPath: filepath.Join(t.TempDir(), "client.yaml")}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", h.cfgPath, "--api-url", h.url}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, "storycards %v: %s", args, out)
	return out
}

// loggedIn registers an account and creates one story with a transcript.
func (h *harness) loggedIn() {
	h.t.Helper()
	h.mustRun("login", "--register", "-e", "alice@example.com", "-p", "correct-horse")
	h.mustRun("story", "create", "Summers")
	h.mustRun("story", "say", "1", "I", "grew", "up", "by", "the", "sea.")
}

func TestCommandsNeedLogin(t *testing.T) {
	h := newHarness(t, 3)

	for _, args := range [][]string{{"stories"}, {"whoami"}, {"cards", "1"}, {"regenerate", "1"}} {
		t.Run(args[0], func(t *testing.T) {
			_, err := h.run(args...)
			assert.ErrorIs(t, err, errNotLoggedIn)
		})
	}
}

func TestLogin_SavesTokenAndStoriesList(t *testing.T) {
	h := newHarness(t, 3)

	out := h.mustRun("login", "--register", "-e", "alice@example.com", "-p", "correct-horse", "--name", "Alice")
	assert.Equal(t, "Logged in as alice@example.com\n", out)

	saved, err := config.LoadClient(h.cfgPath)
	require.NoError(t, err)
	assert.NotEmpty(t, saved.Token)
	assert.Equal(t, h.url, saved.APIURL)

	assert.Contains(t, h.mustRun("stories"), "No stories yet")
	assert.Equal(t, "Created story 1: Summers at the lake\n", h.mustRun("story", "create", "Summers", "at", "the", "lake"))
	assert.Equal(t, "1\tSummers at the lake\n", h.mustRun("stories"))

	var stories []model.Story
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("stories", "-f", "json")), &stories))
	require.Len(t, stories, 1)
	assert.Equal(t, "Summers at the lake", stories[0].Title)

	assert.Equal(t, "Alice <alice@example.com>\n", h.mustRun("whoami"))
}

func TestLogin_WrongPassword(t *testing.T) {
	h := newHarness(t, 3)
	h.mustRun("login", "--register", "-e", "alice@example.com", "-p", "correct-horse")

	_, err := h.run("login", "-e", "alice@example.com", "-p", "wrong-horse")

	assert.ErrorContains(t, err, "invalid email or password")
}

func TestLogout(t *testing.T) {
	h := newHarness(t, 3)
	h.loggedIn()

	h.mustRun("logout")

	_, err := h.run("stories")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestRegenerate_AsksBeforeReplacingCards(t *testing.T) {
	h := newHarness(t, 3)
	h.loggedIn()

	// No cards yet: nothing to confirm.
	assert.Equal(t, "Generated 3 cards with stub, archived 0\n", h.mustRun("regenerate", "1"))

	out, err := h.run("regenerate", "1")
	assert.EqualError(t, err, "pass --yes to regenerate")
	assert.Contains(t, out, "This will replace all 3 cards with new ones.")
	assert.Contains(t, h.mustRun("cards", "1"), "3 active, 0 archived, 0 locked")

	assert.Equal(t, "Generated 3 cards with stub, archived 3\n", h.mustRun("regenerate", "1", "--yes"))
	assert.Contains(t, h.mustRun("cards", "1"), "3 active, 3 archived, 0 locked")
}

func TestRegenerate_WithoutTranscriptFails(t *testing.T) {
	h := newHarness(t, 3)
	h.mustRun("login", "--register", "-e", "alice@example.com", "-p", "correct-horse")
	h.mustRun("story", "create", "Empty")

	_, err := h.run("regenerate", "1")

	assert.Error(t, err)
	assert.Contains(t, h.mustRun("cards", "1"), "No cards yet")
}

func TestCards_Pages(t *testing.T) {
	h := newHarness(t, 8)
	h.loggedIn()
	h.mustRun("regenerate", "1")

	first := h.mustRun("cards", "1")
	assert.Contains(t, first, "card-1")
	assert.Contains(t, first, "card-6")
	assert.NotContains(t, first, "card-7")
	assert.Contains(t, first, "Page 1 of 2")

	second := h.mustRun("cards", "1", "--page", "2")
	assert.Contains(t, second, "card-8")
	assert.NotContains(t, second, "card-1 ")
	assert.Contains(t, second, "Page 2 of 2")

	// Past the end clamps to the last page.
	assert.Contains(t, h.mustRun("cards", "1", "--page", "9"), "Page 2 of 2")

	assert.Contains(t, h.mustRun("cards", "1", "--archived"), "No archived cards.")
}

func TestArgumentErrors(t *testing.T) {
	h := newHarness(t, 3)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad story id", []string{"cards", "abc"}, `invalid story id "abc"`},
		{"zero story id", []string{"gallery", "0"}, `invalid story id "0"`},
		{"bad role", []string{"story", "say", "1", "hi", "--role", "narrator"}, `invalid role "narrator"`},
		{"login without password", []string{"login", "-e", "a@example.com"}, "--password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.run(tt.args...)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
