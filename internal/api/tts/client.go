// Package tts wraps the OpenAI text-to-speech endpoint.
package tts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/tjfontaine/story-gateway/internal/upstream"
)

const (
	// ProviderName is reported in upstream.StatusError.
	ProviderName = "TTS"

	DefaultModel  = string(openai.TTSModel1)
	DefaultVoice  = string(openai.VoiceAlloy)
	DefaultFormat = "audio/mpeg"
)

// Config configures the speech client.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Voice      string
	HTTPClient *http.Client
}

// Client synthesizes speech.
type Client struct {
	client *openai.Client
	model  openai.SpeechModel
	voice  openai.SpeechVoice
}

// NewClient creates a speech client.
func NewClient(cfg Config) *Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		oc.HTTPClient = cfg.HTTPClient
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	voice := cfg.Voice
	if voice == "" {
		voice = DefaultVoice
	}

	return &Client{
		client: openai.NewClientWithConfig(oc),
		model:  openai.SpeechModel(model),
		voice:  openai.SpeechVoice(voice),
	}
}

// Speech is a synthesized audio stream. The caller must close Body.
type Speech struct {
	Body        io.ReadCloser
	ContentType string
}

// Synthesize issues exactly one speech request for text.
func (c *Client) Synthesize(ctx context.Context, text string) (*Speech, error) {
	resp, err := c.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          c.model,
		Input:          text,
		Voice:          c.voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, translateError(err)
	}

	contentType := resp.Header().Get("Content-Type")
	if contentType == "" {
		contentType = DefaultFormat
	}
	return &Speech{Body: resp, ContentType: contentType}, nil
}

// translateError turns go-openai's error types into *upstream.StatusError so
// the narration service can classify them like every other provider.
func translateError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &upstream.StatusError{
			Provider:   ProviderName,
			StatusCode: apiErr.HTTPStatusCode,
			Message:    apiErr.Message,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return &upstream.StatusError{
			Provider:   ProviderName,
			StatusCode: reqErr.HTTPStatusCode,
		}
	}

	return fmt.Errorf("speech request failed: %w", err)
}
