package story

import (
	"fmt"
	"strings"

	"github.com/tjfontaine/story-gateway/internal/domain"
)

var genrePrompts = map[domain.Genre]string{
	domain.GenreScary: "You are a master horror writer. Create suspenseful, eerie, and thrilling story continuations that keep readers on edge. Use vivid, atmospheric descriptions and build tension.",
	domain.GenreFunny: "You are a comedic storyteller. Create humorous, witty, and entertaining story continuations with clever wordplay, unexpected twists, and laugh-out-loud moments.",
	domain.GenreSciFi: "You are a science fiction author. Create imaginative, thought-provoking story continuations with advanced technology, alien worlds, and futuristic concepts.",
}

// SystemPrompt returns the persona for genre. Unknown genres get the
// domain.DefaultGenre persona and known is false.
func SystemPrompt(genre domain.Genre) (prompt string, known bool) {
	if p, ok := genrePrompts[genre]; ok {
		return p, true
	}
	return genrePrompts[domain.DefaultGenre], false
}

// BuildTranscript renders prior segments in the order given, one tagged line
// per segment, separated by blank lines.
func BuildTranscript(segments []domain.PriorSegment) string {
	lines := make([]string, 0, len(segments))
	for _, seg := range segments {
		tag := "[User]"
		if seg.IsAIGenerated {
			tag = "[AI]"
		}
		lines = append(lines, tag+": "+seg.Content)
	}
	return strings.Join(lines, "\n\n")
}

func continuationPrompt(genre domain.Genre, transcript string) string {
	return fmt.Sprintf("Continue this %s story with 2-3 engaging paragraphs that naturally flow from what came before. Make it creative and compelling:\n\n%s\n\nYour continuation:", genre, transcript)
}

const coachSystemPrompt = "You are an expert creative writing coach. Analyze the provided story segment and provide ONE brief, actionable suggestion in 1-2 sentences maximum. Focus on the most impactful improvement for narrative flow, character, imagery, or genre-specific elements."

func coachPrompt(genre domain.Genre, content string) string {
	return fmt.Sprintf("Genre: %s\n\nStory segment to analyze:\n\n%s\n\nProvide ONE brief suggestion (1-2 sentences max):", genre, content)
}
