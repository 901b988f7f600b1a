package research

import (
	"strings"

	"github.com/tjfontaine/story-gateway/internal/api/firecrawl"
)

// NoResultsSummary is returned when a search finds nothing.
const NoResultsSummary = "No relevant research found for this topic."

const (
	maxResults      = 3
	maxPartChars    = 200
	maxSummaryChars = 500
	markdownChars   = 150
)

// Summarize renders up to three results as "title: description" parts joined
// by " | ". Parts are capped at 200 characters and the whole at 500.
func Summarize(results []firecrawl.SearchResult) string {
	if len(results) == 0 {
		return NoResultsSummary
	}
	if len(results) > maxResults {
		results = results[:maxResults]
	}

	parts := make([]string, 0, len(results))
	for _, r := range results {
		desc := r.Description
		if desc == "" {
			desc = truncate(r.Markdown, markdownChars)
		}
		parts = append(parts, truncate(r.Title+": "+desc, maxPartChars))
	}
	return truncate(strings.Join(parts, " | "), maxSummaryChars)
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
