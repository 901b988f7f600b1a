// Package openai provides typed models and an HTTP client for OpenAI-compatible
// chat completion APIs (the AI gateway and Perplexity both speak this dialect).
package openai

import (
	"encoding/json"
	"errors"
)

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatCompletionRequest represents a chat completion request.
type ChatCompletionRequest struct {
	Model       string                  `json:"model"`
	Messages    []ChatCompletionMessage `json:"messages"`
	MaxTokens   int                     `json:"max_tokens,omitempty"`
	Temperature *float32                `json:"temperature,omitempty"`
	User        string                  `json:"user,omitempty"`
}

// ChatCompletionMessage represents a message in the chat completion request/response.
type ChatCompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionResponse represents a chat completion response.
// Citations is only populated by answer engines such as Perplexity.
type ChatCompletionResponse struct {
	ID        string   `json:"id"`
	Object    string   `json:"object"`
	Created   int64    `json:"created"`
	Model     string   `json:"model"`
	Choices   []Choice `json:"choices"`
	Usage     *Usage   `json:"usage,omitempty"`
	Citations []string `json:"citations,omitempty"`
}

// Choice represents a completion choice. Message is a pointer so an absent
// message can be told apart from an empty one.
type Choice struct {
	Index        int                    `json:"index"`
	Message      *ChatCompletionMessage `json:"message"`
	FinishReason string                 `json:"finish_reason"`
}

// Usage represents token usage information.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

var (
	// ErrNoChoices is returned when a response carries no choices.
	ErrNoChoices = errors.New("response contained no choices")
	// ErrNoMessage is returned when the first choice has no message.
	ErrNoMessage = errors.New("first choice contained no message")
)

// FirstContent returns the first choice's message text verbatim.
func (r *ChatCompletionResponse) FirstContent() (string, error) {
	if r == nil || len(r.Choices) == 0 {
		return "", ErrNoChoices
	}
	if r.Choices[0].Message == nil {
		return "", ErrNoMessage
	}
	return r.Choices[0].Message.Content, nil
}

// ErrorResponse represents an API error response. Providers disagree on the
// shape of "error": OpenAI sends an object, some gateways a bare string.
type ErrorResponse struct {
	Error json.RawMessage `json:"error"`
}

// APIError contains error details.
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code,omitempty"`
}

// ParseErrorMessage extracts the provider's error text from a response body.
// It returns "" when the body does not carry a recognizable error.
func ParseErrorMessage(data []byte) string {
	var errResp ErrorResponse
	if err := json.Unmarshal(data, &errResp); err != nil || len(errResp.Error) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(errResp.Error, &text); err == nil {
		return text
	}

	var apiErr APIError
	if err := json.Unmarshal(errResp.Error, &apiErr); err == nil {
		return apiErr.Message
	}
	return ""
}
