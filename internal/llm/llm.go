// Package llm abstracts the single-shot chat completion the story services need
// behind a ChatModel interface, with an OpenAI-compatible gateway backend and a
// Gemini backend.
package llm

import (
	"context"
	"errors"
)

// ErrMalformedResponse is returned when a provider answered successfully but
// without the fields a completion needs.
var ErrMalformedResponse = errors.New("malformed completion response")

// Prompt is one system + user exchange.
type Prompt struct {
	System string
	User   string
	// MaxTokens caps the completion; zero leaves it to the provider.
	MaxTokens int
	// UserID is the authenticated end user, forwarded when the provider accepts it.
	UserID string
}

// ChatModel produces one completion for a prompt. Non-success provider
// statuses surface as *upstream.StatusError.
type ChatModel interface {
	Complete(ctx context.Context, p *Prompt) (string, error)
	// Model returns the model identifier used for requests.
	Model() string
}
