package domain

// Genre is the story genre chosen when a story is created.
type Genre string

const (
	GenreScary Genre = "scary"
	GenreFunny Genre = "funny"
	GenreSciFi Genre = "sci-fi"
)

// DefaultGenre is used for genres without a dedicated template.
const DefaultGenre = GenreSciFi

// Genres lists the genres that have a dedicated prompt template.
var Genres = []Genre{GenreScary, GenreFunny, GenreSciFi}

// Known reports whether g has a dedicated prompt template.
func (g Genre) Known() bool {
	for _, known := range Genres {
		if g == known {
			return true
		}
	}
	return false
}

// StorySegment is one unit of story text as stored by the external database.
// The gateway only reads segments; ordering is maintained by the database.
type StorySegment struct {
	ID            string `json:"id,omitempty" db:"id"`
	StoryID       string `json:"story_id,omitempty" db:"story_id"`
	Content       string `json:"content" db:"content"`
	IsAIGenerated bool   `json:"is_ai_generated" db:"is_ai_generated"`
	SequenceOrder int    `json:"sequence_order,omitempty" db:"sequence_order"`
}

// SegmentContext is a segment joined with its parent story's genre.
type SegmentContext struct {
	SegmentID string `db:"id"`
	StoryID   string `db:"story_id"`
	Content   string `db:"content"`
	Genre     Genre  `db:"genre"`
}

// PriorSegment is a segment as sent by the client when asking for a continuation.
type PriorSegment struct {
	Content       string `json:"content"`
	IsAIGenerated bool   `json:"is_ai_generated"`
}

// GenerationRequest asks for the next AI segment of a story.
type GenerationRequest struct {
	PreviousSegments []PriorSegment `json:"previousSegments"`
	Genre            Genre          `json:"genre"`
}

// GenerationResult is the successful continuation response.
type GenerationResult struct {
	Continuation string `json:"continuation"`
}

// FeedbackRequest asks for a writing suggestion on a stored segment.
type FeedbackRequest struct {
	SegmentID string `json:"segmentId"`
}

// FeedbackResult carries the single coaching suggestion.
type FeedbackResult struct {
	Suggestions string `json:"suggestions"`
}

// NarrationRequest asks for text to be spoken.
type NarrationRequest struct {
	Text string `json:"text"`
}

// ResearchRequest asks for research snippets about a piece of story text.
type ResearchRequest struct {
	Content string `json:"content"`
}

// ResearchResult is the research response.
type ResearchResult struct {
	Summary   string   `json:"summary"`
	Query     string   `json:"query"`
	Citations []string `json:"citations,omitempty"`
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error          string    `json:"error"`
	Message        string    `json:"message,omitempty"`
	Classification ErrorType `json:"classification,omitempty"`
}
