// Package postgrest reads story segments through the PostgREST interface that
// fronts the hosted database.
package postgrest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/tjfontaine/story-gateway/internal/domain"
	"github.com/tjfontaine/story-gateway/internal/storage"
	"github.com/tjfontaine/story-gateway/internal/upstream"
)

// ProviderName is reported in upstream.StatusError.
const ProviderName = "Database"

const segmentSelect = "id,content,story_id,stories(genre)"

// Config configures the REST store.
type Config struct {
	// URL is the project URL, e.g. https://xyz.supabase.co
	URL string
	// ServiceKey is sent as both apikey and bearer token
	ServiceKey string
	HTTPClient *http.Client
}

// Store is a PostgREST implementation of storage.SegmentStore.
type Store struct {
	baseURL    string
	key        string
	httpClient *http.Client
}

var _ storage.SegmentStore = (*Store)(nil)

// New creates a REST-backed store.
func New(cfg Config) *Store {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Store{
		baseURL:    strings.TrimSuffix(cfg.URL, "/"),
		key:        cfg.ServiceKey,
		httpClient: httpClient,
	}
}

func (s *Store) GetSegmentContext(ctx context.Context, segmentID string) (*domain.SegmentContext, error) {
	q := url.Values{}
	q.Set("select", segmentSelect)
	q.Set("id", "eq."+segmentID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/rest/v1/story_segments?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", s.key)
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// A malformed id (e.g. not a uuid) is rejected by PostgREST with 400;
	// single-object requests with no row come back as 406.
	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotAcceptable {
		return nil, storage.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &upstream.StatusError{
			Provider:   ProviderName,
			StatusCode: resp.StatusCode,
			Message:    gjson.GetBytes(body, "message").String(),
			Body:       body,
		}
	}

	return parseSegment(body)
}

// parseSegment reads the first row of a story_segments response. The embedded
// stories relation is an object for to-one joins but older PostgREST versions
// return a one-element array.
func parseSegment(body []byte) (*domain.SegmentContext, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid JSON from %s", ProviderName)
	}

	row := gjson.ParseBytes(body)
	if row.IsArray() {
		rows := row.Array()
		if len(rows) == 0 {
			return nil, storage.ErrNotFound
		}
		row = rows[0]
	}

	genre := row.Get("stories.genre")
	if stories := row.Get("stories"); stories.IsArray() {
		genre = stories.Get("0.genre")
	}

	return &domain.SegmentContext{
		SegmentID: row.Get("id").String(),
		StoryID:   row.Get("story_id").String(),
		Content:   row.Get("content").String(),
		Genre:     domain.Genre(genre.String()),
	}, nil
}

// Close is a no-op; the HTTP client is shared.
func (s *Store) Close() error {
	return nil
}
