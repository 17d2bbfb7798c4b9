package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sakif/story-cards/internal/gallery"
	"github.com/sakif/story-cards/internal/model"
)

func (m *Model) View() string {
	if !m.overlay.IsOpen() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(m.viewHeader())
	sb.WriteString("\n\n")

	switch {
	case m.editor != nil:
		sb.WriteString(m.viewEditor())
	case m.overlay.ConfirmingRegenerate():
		sb.WriteString(m.viewConfirm())
	default:
		sb.WriteString(m.viewGrid())
	}

	sb.WriteString("\n")
	sb.WriteString(m.viewFooter())
	return sb.String()
}

func (m *Model) viewHeader() string {
	title := headerStyle.Render(m.story.Title)

	tabs := []string{}
	active := fmt.Sprintf("Active (%d)", m.overlay.ActiveCount())
	if m.overlay.ViewMode() == gallery.ViewActive {
		tabs = append(tabs, activeTabStyle.Render(active))
	} else {
		tabs = append(tabs, tabStyle.Render(active))
	}
	if m.overlay.ShowViewToggle() {
		archived := fmt.Sprintf("Archived (%d)", m.overlay.ArchivedCount())
		if m.overlay.ViewMode() == gallery.ViewArchived {
			tabs = append(tabs, activeTabStyle.Render(archived))
		} else {
			tabs = append(tabs, tabStyle.Render(archived))
		}
	}

	right := ""
	if m.overlay.ViewMode() == gallery.ViewActive && m.overlay.LockedCount() > 0 {
		right = mutedStyle.Render(fmt.Sprintf("%d locked", m.overlay.LockedCount()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", lipgloss.JoinHorizontal(lipgloss.Top, tabs...), "  ", right)
}

func (m *Model) viewGrid() string {
	if m.overlay.Loading() && m.overlay.Len() == 0 {
		return mutedStyle.Render("Loading cards...")
	}
	visible := m.overlay.Visible()
	if len(visible) == 0 {
		if m.overlay.ViewMode() == gallery.ViewArchived {
			return mutedStyle.Render("No archived cards.")
		}
		return mutedStyle.Render("No cards yet. Press g to generate cards from your story.")
	}

	var rows []string
	for start := 0; start < len(visible); start += gridColumns {
		end := min(start+gridColumns, len(visible))
		var cells []string
		for i := start; i < end; i++ {
			cells = append(cells, m.viewCard(visible[i], i == m.cursor))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	grid := lipgloss.JoinVertical(lipgloss.Left, rows...)

	if m.overlay.ShowPagination() {
		grid += "\n" + mutedStyle.Render(m.overlay.PageLabel())
	}
	return grid
}

func (m *Model) viewCard(s model.Snippet, selected bool) string {
	style := cardStyle
	switch {
	case selected:
		style = selectedCardStyle
	case s.IsLocked:
		style = lockedCardStyle
	}

	title := s.Title
	if s.IsLocked {
		title = "[locked] " + title
	}
	tags := mutedStyle.Render(s.Theme.OrDefault().Label() + " · " + s.Phase.OrDefault().Label())
	body := model.TruncateRunes(s.Content, 90)
	if body != s.Content {
		body += "..."
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).Render(model.TruncateRunes(title, cardWidth-2)),
		tags,
		body,
	))
}

func (m *Model) viewEditor() string {
	e := m.editor
	d := e.draft

	counter := d.Counter()
	switch d.LimitState() {
	case gallery.LimitOver:
		counter = errorStyle.Render(counter)
	case gallery.LimitNear:
		counter = warnStyle.Render(counter)
	default:
		counter = mutedStyle.Render(counter)
	}

	label := func(f editorField, name string) string {
		if e.focus == f {
			return headerStyle.Render("> " + name)
		}
		return mutedStyle.Render("  " + name)
	}

	save := "ctrl+s save"
	if !d.CanSave(m.overlay.Updating()) {
		save = mutedStyle.Render("ctrl+s save (disabled)")
	}

	return dialogStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render("Edit card"),
		"",
		label(fieldTitle, "Title"),
		e.title.View(),
		"",
		label(fieldContent, "Content")+"  "+counter,
		e.content.View(),
		"",
		label(fieldTheme, "Theme")+"  < "+d.Theme().Label()+" >",
		label(fieldPhase, "Phase")+"  < "+d.Phase().Label()+" >",
		"",
		mutedStyle.Render("tab next field · esc cancel · ")+save,
	))
}

func (m *Model) viewConfirm() string {
	return confirmStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		warnStyle.Bold(true).Render("Regenerate cards?"),
		"",
		m.overlay.RegenerateSummary().Message(),
		"",
		"y confirm · n cancel",
	))
}

func (m *Model) viewFooter() string {
	var lines []string
	if m.errText != "" {
		lines = append(lines, errorStyle.Render(m.errText))
	} else if m.status != "" {
		lines = append(lines, mutedStyle.Render(m.status))
	}

	if m.editor == nil && !m.overlay.ConfirmingRegenerate() {
		keys := []string{"←/→ move"}
		if m.overlay.ViewMode() == gallery.ViewActive {
			keys = append(keys, "e edit", "space lock", "d archive")
		} else {
			keys = append(keys, "r restore")
		}
		if m.overlay.ShowPagination() {
			keys = append(keys, "n/p page")
		}
		if m.overlay.ShowViewToggle() {
			keys = append(keys, "tab view")
		}
		if m.overlay.ShowGenerate() {
			keys = append(keys, "g "+strings.ToLower(m.overlay.GenerateLabel()))
		}
		keys = append(keys, "q quit")
		lines = append(lines, mutedStyle.Render(strings.Join(keys, " · ")))
	}
	return strings.Join(lines, "\n")
}
