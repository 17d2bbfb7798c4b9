package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/sakif/story-cards/internal/model"
)

// DefaultModels is the fallback chain used when GEMINI_MODELS is not set,
// fastest first.
var DefaultModels = []string{"gemini-2.5-flash", "gemini-2.5-flash-lite", "gemini-2.0-flash"}

// completeFunc sends one prompt and returns the model's text reply.
// Gemini wires it to the genai client; tests replace it.
type completeFunc func(ctx context.Context, prompt string) (string, error)

// Gemini generates cards with one Gemini model.
type Gemini struct {
	model    string
	logger   *slog.Logger
	complete completeFunc
}

var _ Generator = (*Gemini)(nil)

// NewGeminiCascade creates one Gemini Developer API client and a Gemini
// generator per model, tried in the given order. An empty list means
// DefaultModels.
func NewGeminiCascade(ctx context.Context, apiKey string, models []string, logger *slog.Logger) (*Cascade, error) {
	if apiKey == "" {
		return nil, ErrUnavailable
	}
	if len(models) == 0 {
		models = DefaultModels
	}

	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("generator: creating gemini client: %w", err)
	}

	chain := make([]*Gemini, 0, len(models))
	for _, name := range models {
		chain = append(chain, &Gemini{model: name, logger: logger, complete: completeWith(cli, name)})
	}
	return NewCascade(logger, chain...), nil
}

func completeWith(cli *genai.Client, modelName string) completeFunc {
	return func(ctx context.Context, prompt string) (string, error) {
		resp, err := cli.Models.GenerateContent(ctx, modelName,
			[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
			&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
		)
		if err != nil {
			return "", err
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
			len(resp.Candidates[0].Content.Parts) == 0 {
			return "", ErrInvalidResponse
		}
		return resp.Candidates[0].Content.Parts[0].Text, nil
	}
}

// Model returns the model name reported back to clients.
func (g *Gemini) Model() string { return g.model }

// Generate builds the prompt, calls the model once and normalizes the reply.
func (g *Gemini) Generate(ctx context.Context, transcript []model.Message) (Result, error) {
	prompt, err := BuildPrompt(transcript)
	if err != nil {
		return Result{Model: g.model}, err
	}

	start := time.Now()
	text, err := g.complete(ctx, prompt)
	if err != nil {
		return Result{Model: g.model}, fmt.Errorf("generator: calling %s: %w", g.model, err)
	}

	cards, err := ParseResponse(text)
	if err != nil {
		if !errors.Is(err, ErrInvalidResponse) {
			err = fmt.Errorf("%w: %w", ErrInvalidResponse, err)
		}
		return Result{Model: g.model}, err
	}

	g.logger.Info("cards generated",
		slog.String("model", g.model),
		slog.Int("messages", len(transcript)),
		slog.Int("cards", len(cards)),
		slog.Duration("duration", time.Since(start)),
	)
	return Result{Snippets: cards, Model: g.model}, nil
}
