package story

import (
	"errors"

	"github.com/tjfontaine/story-gateway/internal/domain"
	"github.com/tjfontaine/story-gateway/internal/llm"
	"github.com/tjfontaine/story-gateway/internal/upstream"
)

// classify converts a ChatModel error into a *domain.APIError. Context errors
// and transport failures pass through unchanged.
func classify(err error) error {
	if se, ok := upstream.AsStatusError(err); ok {
		return domain.ClassifyAI(se.StatusCode)
	}
	if errors.Is(err, llm.ErrMalformedResponse) {
		return domain.ErrUpstream("AI API returned an unexpected response")
	}
	return err
}
