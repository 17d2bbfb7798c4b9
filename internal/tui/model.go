// Package tui is the terminal story-card gallery.
//
// The Model is a thin bubbletea shell around gallery.Overlay. Keys become
// Overlay inputs, the Overlay's intents (save, lock, delete, restore,
// generate) come back through the Actions bridge as tea.Cmds that call the
// API, and every completed mutation refetches both collections.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sakif/story-cards/internal/client"
	"github.com/sakif/story-cards/internal/gallery"
	"github.com/sakif/story-cards/internal/model"
)

// API is the part of *client.Client the gallery needs.
type API interface {
	Gallery(ctx context.Context, storyID int64) (*client.Gallery, error)
	Regenerate(ctx context.Context, storyID int64) (*client.GenerateResult, error)
	UpdateSnippet(ctx context.Context, id int64, u model.SnippetUpdate) (*model.Snippet, error)
	ToggleLock(ctx context.Context, id int64) (*model.Snippet, error)
	ArchiveSnippet(ctx context.Context, id int64) error
	RestoreSnippet(ctx context.Context, id int64) (*model.Snippet, error)
}

// callTimeout bounds a single API call issued from the UI.
const callTimeout = 90 * time.Second

// --- messages -------------------------------------------------------------

type galleryLoadedMsg struct {
	gallery *client.Gallery
	err     error
}

type generatedMsg struct {
	result *client.GenerateResult
	err    error
}

// mutatedMsg reports the end of an update, lock, archive or restore.
type mutatedMsg struct {
	verb string // "saved", "locked", ...
	err  error
}

// Model is the bubbletea model. Use New; the zero value is not usable.
type Model struct {
	api   API
	ctx   context.Context
	story model.Story

	overlay *gallery.Overlay
	editor  *editor // non-nil while the overlay has an open draft
	cursor  int     // index into overlay.Visible()

	// pending collects the commands the Actions bridge queued during one
	// Update call; Update batches and clears it before returning.
	pending []tea.Cmd

	status  string
	errText string
	width   int
	quit    bool
}

// New builds the gallery for story. initial may be nil, in which case Init
// fetches the cards.
func New(ctx context.Context, api API, story model.Story, initial *client.Gallery) *Model {
	m := &Model{api: api, ctx: ctx, story: story, width: 100}
	m.overlay = gallery.New(bridge{m})
	m.overlay.Open()
	if initial != nil {
		m.overlay.SetCollections(initial.Active, initial.Archived)
	} else {
		m.overlay.SetLoading(true)
	}
	return m
}

// Overlay exposes the gallery state, for tests and the CLI summary.
func (m *Model) Overlay() *gallery.Overlay { return m.overlay }

func (m *Model) Init() tea.Cmd {
	if m.overlay.Loading() {
		return m.fetch()
	}
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if m.editor != nil {
			m.editor.resize(msg.Width)
		}

	case galleryLoadedMsg:
		m.overlay.SetLoading(false)
		if msg.err != nil {
			m.errText = msg.err.Error()
			break
		}
		m.overlay.SetCollections(msg.gallery.Active, msg.gallery.Archived)
		m.clampCursor()

	case generatedMsg:
		m.overlay.SetGenerating(false)
		switch {
		case msg.err != nil:
			m.errText = msg.err.Error()
		case !msg.result.Success:
			m.errText = msg.result.Error
		default:
			m.errText = ""
			m.status = "Generated " + gallery.Cards(msg.result.Count)
		}
		cmd = m.fetch()

	case mutatedMsg:
		m.overlay.SetUpdating(false)
		if msg.err != nil {
			m.errText = msg.err.Error()
		} else {
			m.errText = ""
			m.status = "Card " + msg.verb
		}
		cmd = m.fetch()

	case tea.KeyMsg:
		cmd = m.handleKey(msg)
	}

	if m.quit {
		return m, tea.Quit
	}
	return m, m.flush(cmd)
}

// flush batches cmd with whatever the bridge queued.
func (m *Model) flush(cmd tea.Cmd) tea.Cmd {
	cmds := append(m.pending, cmd)
	m.pending = nil
	return tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		m.quit = true
		return nil
	}
	switch {
	case m.editor != nil:
		return m.handleEditorKey(msg)
	case m.overlay.ConfirmingRegenerate():
		m.handleConfirmKey(msg)
		return nil
	default:
		m.handleBrowseKey(msg)
		return nil
	}
}

func (m *Model) handleBrowseKey(msg tea.KeyMsg) {
	visible := m.overlay.Visible()
	selected, hasSelection := m.selected()

	switch msg.String() {
	case "q", "esc":
		m.overlay.Close()
		m.quit = true
	case "left", "h":
		if m.cursor > 0 {
			m.cursor--
		} else if m.overlay.HasPrev() {
			m.overlay.PrevPage()
			m.cursor = len(m.overlay.Visible()) - 1
		}
	case "right", "l":
		if m.cursor < len(visible)-1 {
			m.cursor++
		} else if m.overlay.HasNext() {
			m.overlay.NextPage()
			m.cursor = 0
		}
	case "up", "k":
		if m.cursor >= gridColumns {
			m.cursor -= gridColumns
		}
	case "down", "j":
		if m.cursor+gridColumns < len(visible) {
			m.cursor += gridColumns
		}
	case "n", "pgdown":
		m.overlay.NextPage()
		m.clampCursor()
	case "p", "pgup":
		m.overlay.PrevPage()
		m.clampCursor()
	case "tab", "a":
		if m.overlay.ViewMode() == gallery.ViewArchived {
			m.overlay.SetViewMode(gallery.ViewActive)
		} else if m.overlay.ShowViewToggle() {
			m.overlay.SetViewMode(gallery.ViewArchived)
		}
		m.cursor = 0
	case "g":
		m.status = ""
		m.overlay.RequestRegenerate()
	case "e", "enter":
		if hasSelection {
			m.overlay.EditCard(selected)
			if d, ok := m.overlay.Editing(); ok {
				m.editor = newEditor(d, m.width)
			}
		}
	case "space", " ", "L":
		if hasSelection {
			m.overlay.LockCard(selected)
		}
	case "d", "delete":
		if hasSelection {
			m.overlay.DeleteCard(selected)
		}
	case "r":
		if hasSelection {
			m.overlay.RestoreCard(selected)
		}
	}
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "y", "enter":
		m.overlay.ConfirmRegenerate()
	case "n", "esc", "q":
		m.overlay.CancelRegenerate()
	}
}

func (m *Model) handleEditorKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.overlay.CancelEdit()
		m.editor = nil
		return nil
	case "ctrl+s":
		switch m.overlay.SaveEdit() {
		case gallery.SaveSubmitted:
			m.editor = nil
		case gallery.SaveUnchanged:
			m.editor = nil
			m.status = "No changes"
		case gallery.SaveBlocked:
			if m.overlay.Updating() {
				m.errText = "Still saving…"
			} else {
				m.errText = "Title and content are required, and content must fit the limit"
			}
		}
		return nil
	}
	return m.editor.update(msg)
}

func (m *Model) selected() (model.Snippet, bool) {
	visible := m.overlay.Visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return model.Snippet{}, false
	}
	return visible[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.overlay.Visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
