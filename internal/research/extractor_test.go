package research

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tjfontaine/story-gateway/internal/domain"
	"github.com/tjfontaine/story-gateway/internal/llm"
	"github.com/tjfontaine/story-gateway/internal/upstream"
)

func TestNaiveQuery(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"sentence", "The robot awoke in a dust-covered lab.", "The robot awoke in a dust covered lab"},
		{"eight words", "one two three four five six seven eight nine ten", "one two three four five six seven eight"},
		{"punctuation only", "!!! ... ???", ""},
		{"underscores kept", "snake_case words, here", "snake_case words here"},
		{"newlines", "Line one.\n\nLine\ttwo!", "Line one Line two"},
		{"case preserved", "MARS Colony", "MARS Colony"},
		{"non-ascii letters", "café olé", "caf ol"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NaiveQuery(tt.content))
		})
	}
}

func TestNaiveQuery_TruncatesBeforeSplitting(t *testing.T) {
	// A single 250-character word loses its tail to the 200 character cut.
	long := strings.Repeat("a", 250) + " tail"
	got := NaiveQuery(long)
	assert.Equal(t, strings.Repeat("a", 200), got)
}

func TestNaiveQuery_Properties(t *testing.T) {
	alphabet := []rune("abcXYZ019_ .,!?-'\"\n\té")
	allowed := regexp.MustCompile(`^[A-Za-z0-9_ ]*$`)
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		n := rng.Intn(400)
		buf := make([]rune, n)
		for j := range buf {
			buf[j] = alphabet[rng.Intn(len(alphabet))]
		}
		input := string(buf)

		got := NaiveQuery(input)
		require.Equal(t, got, NaiveQuery(input), "deterministic")
		require.Equal(t, got, NaiveQuery(got), "idempotent for %q", input)
		require.Regexp(t, allowed, got)
		require.LessOrEqual(t, len(strings.Fields(got)), 8)
		require.Equal(t, strings.TrimSpace(got), got)
		require.NotContains(t, got, "  ")
	}
}

func TestNaiveExtractor(t *testing.T) {
	got, err := NaiveExtractor{}.Extract(context.Background(), "The abandoned Mars colony stood silent under the red sky")
	require.NoError(t, err)
	assert.Equal(t, "The abandoned Mars colony stood silent under the", got)
}

type fakeModel struct {
	reply string
	err   error
	last  *llm.Prompt
}

func (f *fakeModel) Complete(ctx context.Context, p *llm.Prompt) (string, error) {
	f.last = p
	return f.reply, f.err
}

func (f *fakeModel) Model() string { return "google/gemini-2.5-flash" }

func TestAIExtractor(t *testing.T) {
	model := &fakeModel{reply: "  \"abandoned Mars colony\"\n"}
	got, err := NewAIExtractor(model).Extract(context.Background(), "The colony was quiet.")
	require.NoError(t, err)
	assert.Equal(t, "abandoned Mars colony", got)
	assert.Equal(t, "The colony was quiet.", model.last.User)
	assert.Contains(t, model.last.System, "3-6 word")
}

func TestAIExtractor_Empty(t *testing.T) {
	_, err := NewAIExtractor(&fakeModel{reply: "   "}).Extract(context.Background(), "text")

	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, domain.ErrorTypeExtraction, apiErr.Type)
	assert.Equal(t, http.StatusInternalServerError, apiErr.HTTPStatusCode())
	assert.Equal(t, "Could not extract a search topic", apiErr.Message)
}

func TestAIExtractor_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType domain.ErrorType
		wantHTTP int
	}{
		{"rate limited", &upstream.StatusError{StatusCode: 429}, domain.ErrorTypeQuotaExceeded, 429},
		{"credits", &upstream.StatusError{StatusCode: 402}, domain.ErrorTypeQuotaExceeded, 429},
		{"server error", &upstream.StatusError{StatusCode: 503, Message: "unavailable"}, domain.ErrorTypeUpstreamFailure, 500},
		{"malformed", llm.ErrMalformedResponse, domain.ErrorTypeExtraction, 500},
		{"transport", errors.New("connection reset"), domain.ErrorTypeUpstreamFailure, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAIExtractor(&fakeModel{err: tt.err}).Extract(context.Background(), "text")

			var apiErr *domain.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantType, apiErr.Type)
			assert.Equal(t, tt.wantHTTP, apiErr.HTTPStatusCode())
		})
	}
}

func TestAIExtractor_ContextErrorsPassThrough(t *testing.T) {
	for _, cause := range []error{context.Canceled, context.DeadlineExceeded} {
		_, err := NewAIExtractor(&fakeModel{err: cause}).Extract(context.Background(), "text")
		require.ErrorIs(t, err, cause)

		var apiErr *domain.APIError
		assert.False(t, errors.As(err, &apiErr), "context errors stay unclassified")
	}
}
