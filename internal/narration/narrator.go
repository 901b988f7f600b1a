// Package narration turns story text into speech.
package narration

import (
	"context"
	"io"
	"log/slog"
	"strconv"

	"github.com/tjfontaine/story-gateway/internal/api/tts"
	"github.com/tjfontaine/story-gateway/internal/domain"
	"github.com/tjfontaine/story-gateway/internal/telemetry"
	"github.com/tjfontaine/story-gateway/internal/upstream"
)

// Synthesizer produces speech for text. *tts.Client implements it.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (*tts.Speech, error)
}

// Audio is the narration stream handed back to the client. The caller must
// close Body.
type Audio struct {
	Body        io.ReadCloser
	ContentType string
}

// Narrator issues one speech request per call.
type Narrator struct {
	synth  Synthesizer
	logger *slog.Logger
}

// NewNarrator creates a narration service.
func NewNarrator(synth Synthesizer, logger *slog.Logger) *Narrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Narrator{synth: synth, logger: logger}
}

// Narrate synthesizes text. Stopping any audio already playing is up to the client.
func (n *Narrator) Narrate(ctx context.Context, text string) (*Audio, error) {
	if text == "" {
		return nil, domain.ErrValidation("Text is required")
	}
	telemetry.AddLogField(ctx, "text_chars", strconv.Itoa(len([]rune(text))))

	speech, err := n.synth.Synthesize(ctx, text)
	if err != nil {
		n.logger.ErrorContext(ctx, "speech synthesis failed", slog.String("error", err.Error()))
		if se, ok := upstream.AsStatusError(err); ok {
			return nil, domain.ClassifyAI(se.StatusCode)
		}
		return nil, err
	}

	return &Audio{Body: speech.Body, ContentType: speech.ContentType}, nil
}
