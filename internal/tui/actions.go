package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sakif/story-cards/internal/gallery"
	"github.com/sakif/story-cards/internal/model"
)

// bridge implements gallery.Actions. The overlay calls it synchronously from
// inside Model.Update; each method flips the matching busy flag and queues a
// command, so the actual HTTP call runs off the UI goroutine.
type bridge struct{ m *Model }

var _ gallery.Actions = bridge{}

func (b bridge) Capabilities() gallery.Capability {
	return gallery.CanGenerate | gallery.CanUpdate | gallery.CanLock | gallery.CanDelete | gallery.CanRestore
}

func (b bridge) Generate() {
	b.m.overlay.SetGenerating(true)
	api, storyID := b.m.api, b.m.story.ID
	b.m.queue(func(ctx context.Context) tea.Msg {
		res, err := api.Regenerate(ctx, storyID)
		return generatedMsg{result: res, err: err}
	})
}

func (b bridge) UpdateSnippet(id int64, u model.SnippetUpdate) {
	b.m.overlay.SetUpdating(true)
	api := b.m.api
	b.m.queue(func(ctx context.Context) tea.Msg {
		_, err := api.UpdateSnippet(ctx, id, u)
		return mutatedMsg{verb: "saved", err: err}
	})
}

func (b bridge) LockSnippet(id int64) {
	b.m.overlay.SetUpdating(true)
	api := b.m.api
	b.m.queue(func(ctx context.Context) tea.Msg {
		s, err := api.ToggleLock(ctx, id)
		verb := "unlocked"
		if err == nil && s.IsLocked {
			verb = "locked"
		}
		return mutatedMsg{verb: verb, err: err}
	})
}

func (b bridge) DeleteSnippet(id int64) {
	b.m.overlay.SetUpdating(true)
	api := b.m.api
	b.m.queue(func(ctx context.Context) tea.Msg {
		return mutatedMsg{verb: "archived", err: api.ArchiveSnippet(ctx, id)}
	})
}

func (b bridge) RestoreSnippet(id int64) {
	b.m.overlay.SetUpdating(true)
	api := b.m.api
	b.m.queue(func(ctx context.Context) tea.Msg {
		_, err := api.RestoreSnippet(ctx, id)
		return mutatedMsg{verb: "restored", err: err}
	})
}

// queue wraps an API call in a tea.Cmd with a per-call timeout.
func (m *Model) queue(call func(ctx context.Context) tea.Msg) {
	parent := m.ctx
	m.pending = append(m.pending, func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, callTimeout)
		defer cancel()
		return call(ctx)
	})
}

// fetch reloads both collections.
func (m *Model) fetch() tea.Cmd {
	m.overlay.SetLoading(true)
	api, storyID, parent := m.api, m.story.ID, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, callTimeout)
		defer cancel()
		g, err := api.Gallery(ctx, storyID)
		return galleryLoadedMsg{gallery: g, err: err}
	}
}
