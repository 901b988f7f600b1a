package story

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/tjfontaine/story-gateway/internal/domain"
	"github.com/tjfontaine/story-gateway/internal/llm"
	"github.com/tjfontaine/story-gateway/internal/storage/memory"
	"github.com/tjfontaine/story-gateway/internal/telemetry"
	"github.com/tjfontaine/story-gateway/internal/tokens"
	"github.com/tjfontaine/story-gateway/internal/upstream"
)

// fakeModel records the last prompt and returns a canned reply.
type fakeModel struct {
	reply string
	err   error
	last  *llm.Prompt
	calls int
}

func (f *fakeModel) Complete(ctx context.Context, p *llm.Prompt) (string, error) {
	f.calls++
	f.last = p
	return f.reply, f.err
}

func (f *fakeModel) Model() string { return "google/gemini-2.5-flash" }

func TestSystemPrompt(t *testing.T) {
	tests := []struct {
		genre     domain.Genre
		wantKnown bool
		contains  string
	}{
		{domain.GenreScary, true, "master horror writer"},
		{domain.GenreFunny, true, "comedic storyteller"},
		{domain.GenreSciFi, true, "science fiction author"},
		{"romance", false, "science fiction author"},
		{"", false, "science fiction author"},
		{"Sci-Fi", false, "science fiction author"},
	}

	for _, tt := range tests {
		t.Run(string(tt.genre), func(t *testing.T) {
			got, known := SystemPrompt(tt.genre)
			if known != tt.wantKnown {
				t.Errorf("known = %v, want %v", known, tt.wantKnown)
			}
			if !strings.Contains(got, tt.contains) {
				t.Errorf("prompt %q does not contain %q", got, tt.contains)
			}
		})
	}

	fallback, _ := SystemPrompt("western")
	scifi, _ := SystemPrompt(domain.GenreSciFi)
	if fallback != scifi {
		t.Error("unknown genre should use the sci-fi template exactly")
	}
}

func TestBuildTranscript(t *testing.T) {
	segments := []domain.PriorSegment{
		{Content: "First.", IsAIGenerated: false},
		{Content: "Second.", IsAIGenerated: true},
		{Content: "Third.", IsAIGenerated: false},
	}

	got := BuildTranscript(segments)
	want := "[User]: First.\n\n[AI]: Second.\n\n[User]: Third."
	if got != want {
		t.Errorf("BuildTranscript() = %q, want %q", got, want)
	}

	if BuildTranscript(nil) != "" {
		t.Error("empty transcript expected for no segments")
	}
}

func TestContinuer_EndToEnd(t *testing.T) {
	model := &fakeModel{reply: "The lab lights flickered on, one by one."}
	c := NewContinuer(model, WithTokenCounter(tokens.NewCounter()))

	ctx, fields := telemetry.WithLogFields(context.Background())
	got, err := c.Continue(ctx, &domain.GenerationRequest{
		PreviousSegments: []domain.PriorSegment{{Content: "The robot awoke in a dust-covered lab."}},
		Genre:            domain.GenreSciFi,
	}, "user-1")
	if err != nil {
		t.Fatalf("Continue() error = %v", err)
	}
	if got != model.reply {
		t.Errorf("continuation = %q, want verbatim reply", got)
	}

	scifi, _ := SystemPrompt(domain.GenreSciFi)
	if model.last.System != scifi {
		t.Errorf("system prompt = %q", model.last.System)
	}
	if !strings.Contains(model.last.User, "Continue this sci-fi story with 2-3 engaging paragraphs") {
		t.Errorf("user prompt = %q", model.last.User)
	}
	if !strings.Contains(model.last.User, "[User]: The robot awoke in a dust-covered lab.") {
		t.Errorf("user prompt missing transcript: %q", model.last.User)
	}
	if !strings.HasSuffix(model.last.User, "\n\nYour continuation:") {
		t.Errorf("user prompt suffix: %q", model.last.User)
	}
	if model.last.UserID != "user-1" {
		t.Errorf("UserID = %q", model.last.UserID)
	}
	if fields["genre"] != "sci-fi" {
		t.Errorf("genre field = %q", fields["genre"])
	}
	if fields["prompt_tokens"] == "" {
		t.Error("expected prompt_tokens field")
	}
	if _, ok := fields["genre_fallback"]; ok {
		t.Error("genre_fallback should not be set for a known genre")
	}
}

func TestContinuer_GenreFallback(t *testing.T) {
	model := &fakeModel{reply: "ok"}

	ctx, fields := telemetry.WithLogFields(context.Background())
	_, err := NewContinuer(model).Continue(ctx, &domain.GenerationRequest{Genre: "mystery"}, "")
	if err != nil {
		t.Fatalf("Continue() error = %v", err)
	}
	scifi, _ := SystemPrompt(domain.GenreSciFi)
	if model.last.System != scifi {
		t.Error("expected sci-fi template for unknown genre")
	}
	if fields["genre_fallback"] != "true" {
		t.Errorf("genre_fallback = %q", fields["genre_fallback"])
	}
}

func TestContinuer_StrictGenre(t *testing.T) {
	model := &fakeModel{reply: "ok"}
	_, err := NewContinuer(model, WithStrictGenre(true)).
		Continue(context.Background(), &domain.GenerationRequest{Genre: "mystery"}, "")

	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) || apiErr.Type != domain.ErrorTypeValidation {
		t.Fatalf("error = %v, want validation error", err)
	}
	if model.calls != 0 {
		t.Error("model should not be called for a rejected genre")
	}
}

func TestClassification(t *testing.T) {
	tests := []struct {
		status      int
		wantType    domain.ErrorType
		wantHTTP    int
		wantMessage string
	}{
		{http.StatusTooManyRequests, domain.ErrorTypeRateLimited, 429, domain.MessageRateLimited},
		{http.StatusPaymentRequired, domain.ErrorTypeCreditsExhausted, 402, domain.MessageCreditsExhausted},
		{http.StatusInternalServerError, domain.ErrorTypeUpstreamFailure, 500, "AI API request failed: 500"},
		{http.StatusBadRequest, domain.ErrorTypeUpstreamFailure, 500, "AI API request failed: 400"},
	}

	store := memory.New()
	store.PutStory("story-1", domain.GenreFunny)
	if err := store.PutSegment(domain.StorySegment{ID: "seg-1", StoryID: "story-1", Content: "Knock knock."}); err != nil {
		t.Fatal(err)
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			model := &fakeModel{err: &upstream.StatusError{Provider: "AI", StatusCode: tt.status}}

			_, contErr := NewContinuer(model).Continue(context.Background(), &domain.GenerationRequest{Genre: domain.GenreScary}, "")
			_, coachErr := NewCoach(model, store).Suggest(context.Background(), "seg-1", "")

			for name, err := range map[string]error{"continue": contErr, "suggest": coachErr} {
				var apiErr *domain.APIError
				if !errors.As(err, &apiErr) {
					t.Fatalf("%s: error = %v, want APIError", name, err)
				}
				if apiErr.Type != tt.wantType {
					t.Errorf("%s: Type = %v, want %v", name, apiErr.Type, tt.wantType)
				}
				if apiErr.HTTPStatusCode() != tt.wantHTTP {
					t.Errorf("%s: HTTPStatusCode() = %d, want %d", name, apiErr.HTTPStatusCode(), tt.wantHTTP)
				}
				if apiErr.Message != tt.wantMessage {
					t.Errorf("%s: Message = %q, want %q", name, apiErr.Message, tt.wantMessage)
				}
			}
		})
	}
}

func TestContinuer_MalformedResponse(t *testing.T) {
	model := &fakeModel{err: fmt.Errorf("%w: no choices", llm.ErrMalformedResponse)}
	_, err := NewContinuer(model).Continue(context.Background(), &domain.GenerationRequest{}, "")

	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) || apiErr.Type != domain.ErrorTypeUpstreamFailure {
		t.Fatalf("error = %v, want upstream failure", err)
	}
}

func TestCoach_Suggest(t *testing.T) {
	store := memory.New()
	store.PutStory("story-1", domain.GenreScary)
	if err := store.PutSegment(domain.StorySegment{ID: "seg-1", StoryID: "story-1", Content: "The door creaked."}); err != nil {
		t.Fatal(err)
	}

	model := &fakeModel{reply: "Describe the sound of the door in more detail."}
	got, err := NewCoach(model, store).Suggest(context.Background(), "seg-1", "user-9")
	if err != nil {
		t.Fatalf("Suggest() error = %v", err)
	}
	if got != model.reply {
		t.Errorf("Suggest() = %q", got)
	}
	if model.last.System != coachSystemPrompt {
		t.Errorf("system prompt = %q", model.last.System)
	}
	wantUser := "Genre: scary\n\nStory segment to analyze:\n\nThe door creaked.\n\nProvide ONE brief suggestion (1-2 sentences max):"
	if model.last.User != wantUser {
		t.Errorf("user prompt = %q, want %q", model.last.User, wantUser)
	}
}

func TestCoach_Errors(t *testing.T) {
	model := &fakeModel{reply: "unused"}
	coach := NewCoach(model, memory.New())

	_, err := coach.Suggest(context.Background(), "", "")
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) || apiErr.HTTPStatusCode() != http.StatusBadRequest || apiErr.Message != "Segment ID is required" {
		t.Errorf("empty id: error = %v", err)
	}

	_, err = coach.Suggest(context.Background(), "missing", "")
	if !errors.As(err, &apiErr) || apiErr.HTTPStatusCode() != http.StatusNotFound || apiErr.Message != "Segment not found" {
		t.Errorf("missing id: error = %v", err)
	}

	if model.calls != 0 {
		t.Error("model should not be called when the lookup fails")
	}
}

type brokenStore struct{}

func (brokenStore) GetSegmentContext(context.Context, string) (*domain.SegmentContext, error) {
	return nil, errors.New("connection refused")
}

func (brokenStore) Close() error { return nil }

func TestCoach_StoreFailure(t *testing.T) {
	_, err := NewCoach(&fakeModel{}, brokenStore{}).Suggest(context.Background(), "seg-1", "")

	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) || apiErr.Type != domain.ErrorTypeUpstreamFailure {
		t.Fatalf("error = %v, want upstream failure", err)
	}
}
