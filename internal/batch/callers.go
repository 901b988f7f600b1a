package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/tjfontaine/story-gateway/internal/domain"
)

// Researcher is the in-process research capability.
type Researcher interface {
	Research(ctx context.Context, content string) (*domain.ResearchResult, error)
}

// ServiceCaller calls the research service directly. Failures carry the
// text the HTTP endpoint would have put in its "error" field.
type ServiceCaller struct {
	Service Researcher
}

func (c ServiceCaller) Call(ctx context.Context, content string) error {
	_, err := c.Service.Research(ctx, content)
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code != "" {
			return errors.New(apiErr.Code)
		}
		return errors.New(apiErr.Message)
	}
	return err
}

// HTTPCaller posts to a deployed research endpoint.
type HTTPCaller struct {
	URL        string
	APIKey     string
	HTTPClient *http.Client
}

// Call sends {"content": ...}. A non-2xx answer is an error carrying the
// response's "error" field.
func (c HTTPCaller) Call(ctx context.Context, content string) error {
	body, err := json.Marshal(domain.ResearchRequest{Content: content})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if msg := gjson.GetBytes(respBody, "error").String(); msg != "" {
			return errors.New(msg)
		}
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}
