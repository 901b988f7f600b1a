package research

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tjfontaine/story-gateway/internal/api/firecrawl"
	"github.com/tjfontaine/story-gateway/internal/api/openai"
	"github.com/tjfontaine/story-gateway/internal/domain"
	"github.com/tjfontaine/story-gateway/internal/telemetry"
)

func firecrawlServer(t *testing.T, status int, body string) *firecrawl.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req firecrawl.SearchRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 3, req.Limit)
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return firecrawl.NewClient("fc-key", firecrawl.WithBaseURL(srv.URL))
}

func TestService_FirecrawlSummary(t *testing.T) {
	client := firecrawlServer(t, http.StatusOK, `{"success":true,"data":[
		{"url":"https://a.example","title":"Mars colonies","description":"Plans for settling Mars."},
		{"url":"https://b.example","title":"Red sky","markdown":"Dust storms color the sky."}
	]}`)
	svc := NewService(NaiveExtractor{}, NewFirecrawlSource(client), nil)

	ctx, fields := telemetry.WithLogFields(context.Background())
	got, err := svc.Research(ctx, "The abandoned Mars colony stood silent under the red sky")
	require.NoError(t, err)

	assert.Equal(t, "The abandoned Mars colony stood silent under the", got.Query)
	assert.Equal(t, "Mars colonies: Plans for settling Mars. | Red sky: Dust storms color the sky.", got.Summary)
	assert.Empty(t, got.Citations)
	assert.Equal(t, got.Query, fields["search_query"])
}

func TestService_NoResults(t *testing.T) {
	client := firecrawlServer(t, http.StatusOK, `{"success":true,"data":[]}`)
	svc := NewService(NaiveExtractor{}, NewFirecrawlSource(client), nil)

	got, err := svc.Research(context.Background(), "Nothing to see here")
	require.NoError(t, err)
	assert.Equal(t, "No relevant research found for this topic.", got.Summary)
}

func TestService_FirecrawlErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantType    domain.ErrorType
		wantHTTP    int
		wantMessage string
	}{
		{"credits", 402, `{"success":false,"error":"Payment required"}`, domain.ErrorTypeQuotaExceeded, 429, FirecrawlMessages.CreditsDepleted},
		{"rate limit", 429, `{"success":false,"error":"Too many"}`, domain.ErrorTypeQuotaExceeded, 429, FirecrawlMessages.RateLimited},
		{"keyword", 403, `{"success":false,"error":"Monthly QUOTA reached"}`, domain.ErrorTypeQuotaExceeded, 429, FirecrawlMessages.RateLimited},
		{"other", 500, `{"success":false,"error":"Internal crawler error"}`, domain.ErrorTypeUpstreamFailure, 500, "Internal crawler error"},
		{"no message", 502, `bad gateway`, domain.ErrorTypeUpstreamFailure, 500, "Firecrawl search failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := firecrawlServer(t, tt.status, tt.body)
			svc := NewService(NaiveExtractor{}, NewFirecrawlSource(client), nil)

			_, err := svc.Research(context.Background(), "robots")

			var apiErr *domain.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantType, apiErr.Type)
			assert.Equal(t, tt.wantHTTP, apiErr.HTTPStatusCode())
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			if tt.wantType == domain.ErrorTypeQuotaExceeded {
				assert.Equal(t, "quota_exceeded", apiErr.Code)
			}
		})
	}
}

func TestService_Validation(t *testing.T) {
	svc := NewService(NaiveExtractor{}, NewFirecrawlSource(nil), nil)

	_, err := svc.Research(context.Background(), "")
	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.HTTPStatusCode())
	assert.Equal(t, "Content is required", apiErr.Message)

	_, err = svc.Research(context.Background(), "?!")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, domain.ErrorTypeExtraction, apiErr.Type)
}

func TestService_AIExtractor(t *testing.T) {
	client := firecrawlServer(t, http.StatusOK, `{"success":true,"data":[{"title":"Mars","description":"Red planet"}]}`)
	svc := NewService(NewAIExtractor(&fakeModel{reply: "Mars colony history"}), NewFirecrawlSource(client), nil)

	got, err := svc.Research(context.Background(), "The abandoned Mars colony stood silent")
	require.NoError(t, err)
	assert.Equal(t, "Mars colony history", got.Query)
	assert.Equal(t, "Mars: Red planet", got.Summary)
}

func perplexityServer(t *testing.T, status int, body string, check func(*openai.ChatCompletionRequest)) *openai.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openai.ChatCompletionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if check != nil {
			check(&req)
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return openai.NewClient("pplx-key", openai.WithBaseURL(srv.URL), openai.WithProviderName("Perplexity"))
}

func TestPerplexitySource(t *testing.T) {
	client := perplexityServer(t, http.StatusOK,
		`{"choices":[{"index":0,"message":{"role":"assistant","content":"Mars has the tallest volcano."}}],"citations":["https://nasa.example/mars"]}`,
		func(req *openai.ChatCompletionRequest) {
			assert.Equal(t, "sonar", req.Model)
			assert.Equal(t, 200, req.MaxTokens)
			if assert.Len(t, req.Messages, 2) {
				assert.Equal(t, perplexitySystemPrompt, req.Messages[0].Content)
				assert.Equal(t, "Research this topic for a story: Mars colony", req.Messages[1].Content)
			}
		})
	svc := NewService(NaiveExtractor{}, NewPerplexitySource(client, ""), nil)

	got, err := svc.Research(context.Background(), "Mars colony")
	require.NoError(t, err)
	assert.Equal(t, "Mars has the tallest volcano.", got.Summary)
	assert.Equal(t, []string{"https://nasa.example/mars"}, got.Citations)
}

func TestPerplexitySource_Errors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantType    domain.ErrorType
		wantMessage string
	}{
		{"credits", 402, `{"error":{"message":"insufficient"}}`, domain.ErrorTypeQuotaExceeded, PerplexityMessages.CreditsDepleted},
		{"rate", 429, `{}`, domain.ErrorTypeQuotaExceeded, PerplexityMessages.RateLimited},
		{"other", 400, `{"error":{"message":"Invalid model"}}`, domain.ErrorTypeUpstreamFailure, "Invalid model"},
		{"missing choices", 200, `{"choices":[]}`, domain.ErrorTypeUpstreamFailure, "Perplexity returned an unexpected response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := perplexityServer(t, tt.status, tt.body, nil)
			_, err := NewPerplexitySource(client, "").Lookup(context.Background(), "q")

			var apiErr *domain.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantType, apiErr.Type)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
		})
	}
}

func TestPerplexitySource_EmptyAnswer(t *testing.T) {
	client := perplexityServer(t, http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":""}}]}`, nil)
	got, err := NewPerplexitySource(client, "").Lookup(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, PerplexityEmptySummary, got.Summary)
}
