package research

import (
	"context"
	"errors"
	"strings"

	"github.com/tjfontaine/story-gateway/internal/api/firecrawl"
	"github.com/tjfontaine/story-gateway/internal/api/openai"
	"github.com/tjfontaine/story-gateway/internal/domain"
	"github.com/tjfontaine/story-gateway/internal/upstream"
)

// Findings is what a Source learned about a query.
type Findings struct {
	Summary   string
	Citations []string
}

// Source looks a query up with one upstream call.
type Source interface {
	Lookup(ctx context.Context, query string) (*Findings, error)
}

// Searcher is the subset of *firecrawl.Client the web search source uses.
type Searcher interface {
	Search(ctx context.Context, req *firecrawl.SearchRequest) (*firecrawl.SearchResponse, error)
}

// FirecrawlMessages are the quota texts for the web search source.
var FirecrawlMessages = domain.ProviderMessages{
	Name:            firecrawl.ProviderName,
	CreditsDepleted: "Firecrawl credits depleted. Please upgrade your plan at firecrawl.dev/pricing.",
	RateLimited:     "Firecrawl API rate limit reached. Please try again later.",
}

// FirecrawlSource summarizes the top web search hits.
type FirecrawlSource struct {
	search Searcher
}

// NewFirecrawlSource creates a web search source.
func NewFirecrawlSource(search Searcher) *FirecrawlSource {
	return &FirecrawlSource{search: search}
}

func (s *FirecrawlSource) Lookup(ctx context.Context, query string) (*Findings, error) {
	resp, err := s.search.Search(ctx, &firecrawl.SearchRequest{Query: query, Limit: maxResults})
	if err != nil {
		return nil, classifyResearch(err, FirecrawlMessages)
	}
	return &Findings{Summary: Summarize(resp.Data)}, nil
}

// ChatCompleter is the subset of *openai.Client the answer engine source uses.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req *openai.ChatCompletionRequest) (*openai.ChatCompletionResponse, error)
}

// PerplexityMessages are the quota texts for the answer engine source.
var PerplexityMessages = domain.ProviderMessages{
	Name:            "Perplexity",
	CreditsDepleted: "Perplexity credits depleted. Please upgrade your plan.",
	RateLimited:     "Perplexity rate limit reached. Please try again later.",
}

const (
	// PerplexityModel is the answer engine model.
	PerplexityModel = "sonar"

	perplexitySystemPrompt = "You are a research assistant. Provide a brief, factual summary (2-3 sentences) about the topic. Focus on interesting facts that could inspire creative writing."
	perplexityMaxTokens    = 200

	// PerplexityEmptySummary is returned when the answer engine replies with
	// no text.
	PerplexityEmptySummary = "No research found."
)

// PerplexitySource asks an answer engine for a short factual summary.
type PerplexitySource struct {
	client ChatCompleter
	model  string
}

// NewPerplexitySource creates an answer engine source. An empty model uses
// PerplexityModel.
func NewPerplexitySource(client ChatCompleter, model string) *PerplexitySource {
	if model == "" {
		model = PerplexityModel
	}
	return &PerplexitySource{client: client, model: model}
}

func (s *PerplexitySource) Lookup(ctx context.Context, query string) (*Findings, error) {
	resp, err := s.client.CreateChatCompletion(ctx, &openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.RoleSystem, Content: perplexitySystemPrompt},
			{Role: openai.RoleUser, Content: "Research this topic for a story: " + query},
		},
		MaxTokens: perplexityMaxTokens,
	})
	if err != nil {
		return nil, classifyResearch(err, PerplexityMessages)
	}

	content, err := resp.FirstContent()
	if err != nil {
		return nil, domain.ErrUpstream("Perplexity returned an unexpected response")
	}

	summary := strings.TrimSpace(content)
	if summary == "" {
		summary = PerplexityEmptySummary
	}
	return &Findings{Summary: summary, Citations: resp.Citations}, nil
}

func classifyResearch(err error, msgs domain.ProviderMessages) error {
	if se, ok := upstream.AsStatusError(err); ok {
		return domain.ClassifyResearch(se.StatusCode, se.Message, msgs)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return domain.ErrUpstream(msgs.Name + " search failed")
}
