package gallery

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sakif/story-cards/internal/model"
)

// NearLimitRatio marks the content length at which the counter turns to a warning.
const NearLimitRatio = 0.9

// LimitState classifies the content length against MaxContentLength.
type LimitState int

const (
	LimitNormal LimitState = iota
	LimitNear
	LimitOver
)

// Draft is the editor's local copy of one card.
//
// It is created when a card is picked for editing and thrown away on save or
// cancel. The original is kept so Diff can report only what the user changed.
type Draft struct {
	original model.Snippet

	title   string
	content string
	theme   model.Theme
	phase   model.Phase
}

// NewDraft resets the editable fields from s. An unset theme or phase falls
// back to growth / PRESENT.
func NewDraft(s model.Snippet) *Draft {
	return &Draft{
		original: s,
		title:    s.Title,
		content:  s.Content,
		theme:    s.Theme.OrDefault(),
		phase:    s.Phase.OrDefault(),
	}
}

// Original returns the card the draft was opened on.
func (d *Draft) Original() model.Snippet { return d.original }

func (d *Draft) Title() string { return d.title }
func (d *Draft) Content() string { return d.content }
func (d *Draft) Theme() model.Theme { return d.theme }
func (d *Draft) Phase() model.Phase { return d.phase }

// SetTitle stores the title, cutting it at MaxTitleLength characters.
func (d *Draft) SetTitle(title string) {
	d.title = model.TruncateRunes(title, model.MaxTitleLength)
}

// SetContent stores the content as typed. Over-long content is flagged, not cut.
func (d *Draft) SetContent(content string) {
	d.content = content
}

func (d *Draft) SetTheme(t model.Theme) { d.theme = t }
func (d *Draft) SetPhase(p model.Phase) { d.phase = p }

// ContentLength counts characters, not bytes.
func (d *Draft) ContentLength() int {
	return utf8.RuneCountInString(d.content)
}

func (d *Draft) IsOverLimit() bool {
	return d.ContentLength() > model.MaxContentLength
}

func (d *Draft) IsNearLimit() bool {
	return float64(d.ContentLength()) > model.MaxContentLength*NearLimitRatio
}

// LimitState folds IsOverLimit and IsNearLimit into one value for rendering.
func (d *Draft) LimitState() LimitState {
	switch {
	case d.IsOverLimit():
		return LimitOver
	case d.IsNearLimit():
		return LimitNear
	default:
		return LimitNormal
	}
}

// Counter renders the "n/300" content counter.
func (d *Draft) Counter() string {
	return fmt.Sprintf("%d/%d", d.ContentLength(), model.MaxContentLength)
}

// CanSave reports whether the save control is enabled.
func (d *Draft) CanSave(saving bool) bool {
	if saving || d.IsOverLimit() {
		return false
	}
	return strings.TrimSpace(d.title) != "" && strings.TrimSpace(d.content) != ""
}

// Edited returns the original card with the draft's fields written over it.
func (d *Draft) Edited() model.Snippet {
	s := d.original
	s.Title = d.title
	s.Content = d.content
	s.Theme = d.theme
	s.Phase = d.phase
	return s
}

// Diff returns the fields that differ from the original card. A theme or
// phase filled in from the defaults counts as a change.
func (d *Draft) Diff() model.SnippetUpdate {
	return model.DiffSnippet(d.original, d.Edited())
}
