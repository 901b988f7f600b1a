package story

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tjfontaine/story-gateway/internal/domain"
	"github.com/tjfontaine/story-gateway/internal/llm"
	"github.com/tjfontaine/story-gateway/internal/storage"
	"github.com/tjfontaine/story-gateway/internal/telemetry"
)

// Coach suggests one improvement for a stored segment.
type Coach struct {
	model llm.ChatModel
	store storage.SegmentStore
	opts  options
}

// NewCoach creates a feedback service.
func NewCoach(model llm.ChatModel, store storage.SegmentStore, opts ...Option) *Coach {
	return &Coach{model: model, store: store, opts: buildOptions(opts)}
}

// Suggest loads the segment and its story's genre and asks the model for a
// single short suggestion.
func (c *Coach) Suggest(ctx context.Context, segmentID, userID string) (string, error) {
	if segmentID == "" {
		return "", domain.ErrValidation("Segment ID is required")
	}

	seg, err := c.store.GetSegmentContext(ctx, segmentID)
	if errors.Is(err, storage.ErrNotFound) {
		return "", domain.ErrNotFound("Segment not found")
	}
	if err != nil {
		c.opts.logger.ErrorContext(ctx, "segment lookup failed",
			slog.String("segment_id", segmentID),
			slog.String("error", err.Error()))
		return "", domain.ErrUpstream(fmt.Sprintf("Failed to load segment: %v", err))
	}
	telemetry.AddLogField(ctx, "genre", string(seg.Genre))

	prompt := &llm.Prompt{
		System: coachSystemPrompt,
		User:   coachPrompt(seg.Genre, seg.Content),
		UserID: userID,
	}
	countPrompt(ctx, c.opts, c.model.Model(), prompt)

	text, err := c.model.Complete(ctx, prompt)
	if err != nil {
		c.opts.logger.ErrorContext(ctx, "suggestion failed",
			slog.String("segment_id", segmentID),
			slog.String("error", err.Error()))
		return "", classify(err)
	}
	return text, nil
}
