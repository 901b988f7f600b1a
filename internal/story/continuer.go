// Package story implements the two AI writing services: continuing a story and
// coaching the author on a stored segment.
package story

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/tjfontaine/story-gateway/internal/domain"
	"github.com/tjfontaine/story-gateway/internal/llm"
	"github.com/tjfontaine/story-gateway/internal/telemetry"
	"github.com/tjfontaine/story-gateway/internal/tokens"
)

// Option configures Continuer and Coach.
type Option func(*options)

type options struct {
	logger      *slog.Logger
	counter     *tokens.Counter
	strictGenre bool
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithTokenCounter enables prompt_tokens estimates in the request log.
func WithTokenCounter(counter *tokens.Counter) Option {
	return func(o *options) { o.counter = counter }
}

// WithStrictGenre rejects genres without a dedicated template instead of
// falling back to the default genre.
func WithStrictGenre(strict bool) Option {
	return func(o *options) { o.strictGenre = strict }
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Continuer writes the next AI segment of a story.
type Continuer struct {
	model llm.ChatModel
	opts  options
}

// NewContinuer creates a continuation service.
func NewContinuer(model llm.ChatModel, opts ...Option) *Continuer {
	return &Continuer{model: model, opts: buildOptions(opts)}
}

// Continue asks the model for a 2-3 paragraph continuation of the prior
// segments and returns the first choice verbatim.
func (c *Continuer) Continue(ctx context.Context, req *domain.GenerationRequest, userID string) (string, error) {
	system, known := SystemPrompt(req.Genre)
	if !known {
		if c.opts.strictGenre {
			return "", domain.ErrValidation("Unknown genre: " + string(req.Genre))
		}
		telemetry.AddLogField(ctx, "genre_fallback", "true")
	}
	telemetry.AddLogField(ctx, "genre", string(req.Genre))

	prompt := &llm.Prompt{
		System: system,
		User:   continuationPrompt(req.Genre, BuildTranscript(req.PreviousSegments)),
		UserID: userID,
	}
	countPrompt(ctx, c.opts, c.model.Model(), prompt)

	text, err := c.model.Complete(ctx, prompt)
	if err != nil {
		c.opts.logger.ErrorContext(ctx, "continuation failed",
			slog.String("genre", string(req.Genre)),
			slog.String("error", err.Error()))
		return "", classify(err)
	}
	return text, nil
}

// countPrompt records an approximate prompt size. Failures only cost the log field.
func countPrompt(ctx context.Context, o options, model string, p *llm.Prompt) {
	if o.counter == nil {
		return
	}
	n, err := o.counter.CountPrompt(model, p.System, p.User)
	if err != nil {
		o.logger.DebugContext(ctx, "token count unavailable", slog.String("error", err.Error()))
		return
	}
	telemetry.AddLogField(ctx, "prompt_tokens", strconv.Itoa(n))
}
