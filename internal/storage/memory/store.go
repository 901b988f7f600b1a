// Package memory is an in-process SegmentStore for development and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/tjfontaine/story-gateway/internal/domain"
	"github.com/tjfontaine/story-gateway/internal/storage"
)

// Store is an in-memory implementation of storage.SegmentStore
type Store struct {
	mu       sync.RWMutex
	stories  map[string]domain.Genre
	segments map[string]domain.StorySegment
}

var _ storage.SegmentStore = (*Store)(nil)

// New creates a new in-memory store
func New() *Store {
	return &Store{
		stories:  make(map[string]domain.Genre),
		segments: make(map[string]domain.StorySegment),
	}
}

// PutStory records a story and its genre.
func (s *Store) PutStory(id string, genre domain.Genre) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stories[id] = genre
}

// PutSegment records a segment. The parent story must exist.
func (s *Store) PutSegment(seg domain.StorySegment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.stories[seg.StoryID]; !exists {
		return fmt.Errorf("story %s not found", seg.StoryID)
	}
	s.segments[seg.ID] = seg
	return nil
}

func (s *Store) GetSegmentContext(ctx context.Context, segmentID string) (*domain.SegmentContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seg, exists := s.segments[segmentID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	genre, exists := s.stories[seg.StoryID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	return &domain.SegmentContext{
		SegmentID: seg.ID,
		StoryID:   seg.StoryID,
		Content:   seg.Content,
		Genre:     genre,
	}, nil
}

func (s *Store) Close() error {
	return nil
}
