package llm

import (
	"context"
	"fmt"

	"github.com/tjfontaine/story-gateway/internal/api/openai"
)

// DefaultModel is the model requested from the AI gateway.
const DefaultModel = "google/gemini-2.5-flash"

// Gateway is a ChatModel backed by an OpenAI-compatible chat completions API.
type Gateway struct {
	client *openai.Client
	model  string
}

// NewGateway creates a gateway-backed model.
func NewGateway(client *openai.Client, model string) *Gateway {
	if model == "" {
		model = DefaultModel
	}
	return &Gateway{client: client, model: model}
}

func (g *Gateway) Model() string { return g.model }

// Complete sends the system and user messages and returns the first choice verbatim.
func (g *Gateway) Complete(ctx context.Context, p *Prompt) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, &openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.RoleSystem, Content: p.System},
			{Role: openai.RoleUser, Content: p.User},
		},
		MaxTokens: p.MaxTokens,
		User:      p.UserID,
	})
	if err != nil {
		return "", err
	}

	content, err := resp.FirstContent()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return content, nil
}
