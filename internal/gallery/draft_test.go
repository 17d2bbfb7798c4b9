package gallery

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/story-cards/internal/model"
)

func TestNewDraft_FallsBackToDefaults(t *testing.T) {
	d := NewDraft(model.Snippet{ID: 1, Title: "t", Content: "c"})

	assert.Equal(t, model.ThemeGrowth, d.Theme())
	assert.Equal(t, model.PhasePresent, d.Phase())
}

func TestDraft_SetTitleTruncatesAtInput(t *testing.T) {
	d := NewDraft(model.Snippet{ID: 1})

	d.SetTitle(strings.Repeat("x", model.MaxTitleLength+25))

	assert.Len(t, d.Title(), model.MaxTitleLength)
}

func TestDraft_ContentIsFlaggedNotTruncated(t *testing.T) {
	d := NewDraft(model.Snippet{ID: 1, Title: "t", Content: "c"})
	long := strings.Repeat("y", 301)

	d.SetContent(long)

	assert.Equal(t, long, d.Content())
	assert.True(t, d.IsOverLimit())
	assert.Equal(t, LimitOver, d.LimitState())
	assert.Equal(t, "301/300", d.Counter())
}

func TestDraft_LimitStates(t *testing.T) {
	tests := []struct {
		length int
		want   LimitState
	}{
		{0, LimitNormal},
		{270, LimitNormal},
		{271, LimitNear},
		{300, LimitNear},
		{301, LimitOver},
	}

	for _, tt := range tests {
		d := NewDraft(model.Snippet{})
		d.SetContent(strings.Repeat("z", tt.length))
		assert.Equal(t, tt.want, d.LimitState(), "length %d", tt.length)
	}
}

func TestDraft_SaveDisabledUntilContentFits(t *testing.T) {
	s := model.Snippet{ID: 1, Title: "Title", Content: strings.Repeat("a", 301)}
	d := NewDraft(s)

	assert.False(t, d.CanSave(false), "301 characters must block save")

	d.SetContent(strings.Repeat("a", 300))
	assert.True(t, d.CanSave(false), "300 characters must allow save")
}

func TestDraft_CanSave(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		content string
		saving  bool
		want    bool
	}{
		{"valid", "Title", "Content", false, true},
		{"saving in progress", "Title", "Content", true, false},
		{"blank title", "   ", "Content", false, false},
		{"blank content", "Title", "\n\t", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDraft(model.Snippet{ID: 1})
			d.SetTitle(tt.title)
			d.SetContent(tt.content)
			assert.Equal(t, tt.want, d.CanSave(tt.saving))
		})
	}
}

func TestDraft_DiffCountsDefaultsAsChanges(t *testing.T) {
	d := NewDraft(model.Snippet{ID: 1, Title: "t", Content: "c"})

	diff := d.Diff()

	assert.Equal(t, []string{"theme", "phase"}, diff.Fields())
	require.NotNil(t, diff.Theme)
	assert.Equal(t, model.ThemeGrowth, *diff.Theme)
}
