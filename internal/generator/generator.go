// Package generator turns an interview transcript into story cards.
//
// The model does the creative work; this package owns everything around it:
// building the prompt, parsing the JSON reply, and normalizing whatever came
// back into cards that satisfy the same limits the editor enforces.
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sakif/story-cards/internal/model"
)

// Card count bounds for one generation run.
const (
	MinCards = 3
	MaxCards = 8
)

var (
	// ErrEmptyTranscript means there is nothing to generate from.
	ErrEmptyTranscript = errors.New("generator: transcript has no user messages")
	// ErrUnavailable means no model is configured (missing API key).
	ErrUnavailable = errors.New("generator: no model configured")
	// ErrInvalidResponse means the model answered with something we can't use.
	ErrInvalidResponse = errors.New("generator: invalid model response")
)

// Generator produces fresh cards for a transcript.
type Generator interface {
	Generate(ctx context.Context, transcript []model.Message) (Result, error)
}

// Result is one generation run. Snippets are unsaved (ID 0) and carry no StoryID.
type Result struct {
	Snippets []model.Snippet
	Model    string
}

// Unconfigured is the Generator used when no API key is set. Every call
// fails with ErrUnavailable so the rest of the API keeps working.
type Unconfigured struct{}

func (Unconfigured) Generate(context.Context, []model.Message) (Result, error) {
	return Result{}, ErrUnavailable
}

// RawCard is the shape we ask the model to produce, before normalization.
type RawCard struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Theme   string `json:"theme"`
	Phase   string `json:"phase"`
}

type rawResponse struct {
	Snippets []RawCard `json:"snippets"`
}

// BuildPrompt renders the instructions plus the transcript.
// Returns ErrEmptyTranscript when the storyteller never spoke.
func BuildPrompt(transcript []model.Message) (string, error) {
	var b strings.Builder
	spoke := false
	for _, m := range transcript {
		text := strings.TrimSpace(m.Content)
		if text == "" {
			continue
		}
		if m.Role == model.RoleUser {
			spoke = true
		}
		fmt.Fprintf(&b, "%s: %s\n", speaker(m.Role), text)
	}
	if !spoke {
		return "", ErrEmptyTranscript
	}

	themes := make([]string, len(model.Themes))
	for i, t := range model.Themes {
		themes[i] = string(t)
	}
	phases := make([]string, len(model.Phases))
	for i, p := range model.Phases {
		phases[i] = string(p)
	}

	return fmt.Sprintf(`You are helping someone turn their life-story interview into story cards.
Read the transcript and pick the %d to %d most vivid moments the storyteller described.
For each one write a card in the storyteller's own voice (first person).

Rules:
- title: short and evocative, at most %d characters
- content: at most %d characters
- theme: one of %s
- phase: one of %s
- only use events the storyteller actually told

Reply with JSON only: {"snippets":[{"title":"","content":"","theme":"","phase":""}]}

[TRANSCRIPT]
%s`,
		MinCards, MaxCards,
		model.MaxTitleLength, model.MaxContentLength,
		strings.Join(themes, ", "), strings.Join(phases, ", "),
		b.String(),
	), nil
}

func speaker(r model.Role) string {
	if r == model.RoleAssistant {
		return "Interviewer"
	}
	return "Storyteller"
}

// ParseResponse decodes the model's JSON reply and normalizes it.
//
// Models occasionally wrap JSON in a ```json fence even in JSON mode, so the
// fence is stripped before decoding.
func ParseResponse(text string) ([]model.Snippet, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var resp rawResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	cards := Normalize(resp.Snippets)
	if len(cards) < MinCards {
		return nil, fmt.Errorf("%w: got %d usable cards, need at least %d", ErrInvalidResponse, len(cards), MinCards)
	}
	return cards, nil
}

// Normalize cleans raw cards: drops empty ones, truncates to the title and
// content limits, maps unknown tags to the defaults, and keeps at most MaxCards.
func Normalize(raw []RawCard) []model.Snippet {
	out := make([]model.Snippet, 0, min(len(raw), MaxCards))
	for _, c := range raw {
		title := strings.TrimSpace(c.Title)
		content := strings.TrimSpace(c.Content)
		if title == "" || content == "" {
			continue
		}
		out = append(out, model.Snippet{
			Title:   model.TruncateRunes(title, model.MaxTitleLength),
			Content: model.TruncateRunes(content, model.MaxContentLength),
			Theme:   parseTheme(c.Theme),
			Phase:   parsePhase(c.Phase),
		})
		if len(out) == MaxCards {
			break
		}
	}
	return out
}

// Models are inconsistent about case ("Family", "childhood"), so tags are
// matched case-insensitively before falling back to the default.
func parseTheme(s string) model.Theme {
	t := model.Theme(strings.ToLower(strings.TrimSpace(s)))
	if t.Valid() {
		return t
	}
	return model.DefaultTheme
}

func parsePhase(s string) model.Phase {
	p := model.Phase(strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), " ", "_"))
	if p.Valid() {
		return p
	}
	return model.DefaultPhase
}
