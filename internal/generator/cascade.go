package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/story-cards/internal/model"
)

// Cascade tries a list of models in order and returns the first usable
// answer. A model that errors or returns an unparseable reply hands the
// request to the next one.
type Cascade struct {
	gens   []*Gemini
	logger *slog.Logger
}

var _ Generator = (*Cascade)(nil)

// NewCascade builds a cascade over gens, tried in the given order.
func NewCascade(logger *slog.Logger, gens ...*Gemini) *Cascade {
	return &Cascade{gens: gens, logger: logger}
}

// Model returns the preferred (first) model.
func (c *Cascade) Model() string {
	if len(c.gens) == 0 {
		return ""
	}
	return c.gens[0].Model()
}

// Models lists every model in fallback order.
func (c *Cascade) Models() []string {
	out := make([]string, len(c.gens))
	for i, g := range c.gens {
		out[i] = g.Model()
	}
	return out
}

// Generate returns the first successful Result. Its Model names the model
// that actually answered.
func (c *Cascade) Generate(ctx context.Context, transcript []model.Message) (Result, error) {
	if len(c.gens) == 0 {
		return Result{}, ErrUnavailable
	}

	var (
		errs []error
		last Result
	)
	for i, g := range c.gens {
		res, err := g.Generate(ctx, transcript)
		if err == nil {
			return res, nil
		}
		last = res

		// Neither an empty transcript nor a cancelled request gets better
		// with another model.
		if errors.Is(err, ErrEmptyTranscript) || ctx.Err() != nil {
			return res, err
		}

		errs = append(errs, err)
		if i < len(c.gens)-1 {
			c.logger.Warn("model failed, falling back",
				slog.String("model", g.Model()),
				slog.String("next", c.gens[i+1].Model()),
				slog.String("error", err.Error()),
			)
		}
	}
	return last, fmt.Errorf("generator: all %d models failed: %w", len(c.gens), errors.Join(errs...))
}
