package research

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/tjfontaine/story-gateway/internal/domain"
	"github.com/tjfontaine/story-gateway/internal/llm"
)

// QueryExtractor derives a web search query from story text.
type QueryExtractor interface {
	Extract(ctx context.Context, content string) (string, error)
}

const (
	naiveMaxChars = 200
	naiveMaxWords = 8
)

var (
	nonWord    = regexp.MustCompile(`[^\w\s]`)
	whitespace = regexp.MustCompile(`\s+`)
)

// NaiveExtractor keeps the first words of the text after stripping
// punctuation. It never calls out and never fails.
type NaiveExtractor struct{}

func (NaiveExtractor) Extract(_ context.Context, content string) (string, error) {
	return NaiveQuery(content), nil
}

// NaiveQuery truncates content to 200 characters, replaces every non-word
// character with a space, collapses whitespace and keeps the first 8 words.
// Case is preserved and NaiveQuery(NaiveQuery(s)) == NaiveQuery(s).
func NaiveQuery(content string) string {
	if r := []rune(content); len(r) > naiveMaxChars {
		content = string(r[:naiveMaxChars])
	}
	cleaned := nonWord.ReplaceAllString(content, " ")
	cleaned = strings.TrimSpace(whitespace.ReplaceAllString(cleaned, " "))
	if cleaned == "" {
		return ""
	}

	words := strings.Split(cleaned, " ")
	if len(words) > naiveMaxWords {
		words = words[:naiveMaxWords]
	}
	return strings.Join(words, " ")
}

const (
	topicSystemPrompt = "You extract search topics from story passages. Reply with a 3-6 word web search query describing the passage's main subject. Reply with the query only, without quotes or punctuation."
	topicMaxInput     = 2000
	topicMaxTokens    = 30
)

// aiMessages are shown when the extraction model runs out of budget.
var aiMessages = domain.ProviderMessages{
	Name:            "AI",
	CreditsDepleted: domain.MessageCreditsExhausted,
	RateLimited:     domain.MessageRateLimited,
}

// AIExtractor asks a chat model for a short topic.
type AIExtractor struct {
	model llm.ChatModel
}

// NewAIExtractor creates an extractor backed by model.
func NewAIExtractor(model llm.ChatModel) *AIExtractor {
	return &AIExtractor{model: model}
}

func (e *AIExtractor) Extract(ctx context.Context, content string) (string, error) {
	if r := []rune(content); len(r) > topicMaxInput {
		content = string(r[:topicMaxInput])
	}

	text, err := e.model.Complete(ctx, &llm.Prompt{
		System:    topicSystemPrompt,
		User:      content,
		MaxTokens: topicMaxTokens,
	})
	if err != nil {
		if errors.Is(err, llm.ErrMalformedResponse) {
			return "", domain.ErrExtraction("Could not extract a search topic")
		}
		return "", classifyResearch(err, aiMessages)
	}

	query := strings.Trim(strings.TrimSpace(text), `"'`)
	if query == "" {
		return "", domain.ErrExtraction("Could not extract a search topic")
	}
	return query, nil
}
