package tui

import (
	"slices"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sakif/story-cards/internal/gallery"
	"github.com/sakif/story-cards/internal/model"
)

type editorField int

const (
	fieldTitle editorField = iota
	fieldContent
	fieldTheme
	fieldPhase
	fieldCount
)

// contentInputLimit lets the user type past MaxContentLength so the counter
// can show the overflow; the draft refuses to save until it is trimmed.
const contentInputLimit = 2 * model.MaxContentLength

// editor is the form bound to one gallery.Draft. Every keystroke is copied
// into the draft so the counter and the save gate always agree with it.
type editor struct {
	draft   *gallery.Draft
	title   textinput.Model
	content textarea.Model
	focus   editorField
}

func newEditor(d *gallery.Draft, width int) *editor {
	ti := textinput.New()
	ti.Placeholder = "Title"
	ti.CharLimit = model.MaxTitleLength
	ti.Cursor.SetMode(cursor.CursorStatic)
	ti.SetValue(d.Title())
	ti.CursorEnd()
	ti.Focus()

	ta := textarea.New()
	ta.Placeholder = "What happened?"
	ta.CharLimit = contentInputLimit
	ta.ShowLineNumbers = false
	ta.Cursor.SetMode(cursor.CursorStatic)
	ta.SetHeight(6)
	ta.SetValue(d.Content())

	e := &editor{draft: d, title: ti, content: ta}
	e.resize(width)
	return e
}

func (e *editor) resize(width int) {
	w := max(width-8, 20)
	e.title.Width = w
	e.content.SetWidth(w)
}

func (e *editor) update(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab":
		e.setFocus((e.focus + 1) % fieldCount)
		return nil
	case "shift+tab":
		e.setFocus((e.focus + fieldCount - 1) % fieldCount)
		return nil
	}

	var cmd tea.Cmd
	switch e.focus {
	case fieldTitle:
		e.title, cmd = e.title.Update(msg)
		e.draft.SetTitle(e.title.Value())
	case fieldContent:
		e.content, cmd = e.content.Update(msg)
		e.draft.SetContent(e.content.Value())
	case fieldTheme:
		e.draft.SetTheme(cycle(model.Themes, e.draft.Theme(), step(msg)))
	case fieldPhase:
		e.draft.SetPhase(cycle(model.Phases, e.draft.Phase(), step(msg)))
	}
	return cmd
}

func (e *editor) setFocus(f editorField) {
	e.focus = f
	e.title.Blur()
	e.content.Blur()
	switch f {
	case fieldTitle:
		e.title.Focus()
	case fieldContent:
		e.content.Focus()
	}
}

// step maps arrow keys on a picker to -1 / +1.
func step(msg tea.KeyMsg) int {
	switch msg.String() {
	case "left", "h", "up", "k":
		return -1
	case "right", "l", "down", "j", " ", "space":
		return 1
	}
	return 0
}

// cycle moves delta places through options, wrapping at both ends. An
// unknown current value starts from the first option.
func cycle[T comparable](options []T, current T, delta int) T {
	if delta == 0 || len(options) == 0 {
		return current
	}
	i := slices.Index(options, current)
	if i < 0 {
		return options[0]
	}
	n := len(options)
	return options[((i+delta)%n+n)%n]
}
