// Package storage defines the one persistence capability the gateway consumes:
// reading a story segment together with its parent story's genre.
package storage

import (
	"context"
	"errors"

	"github.com/tjfontaine/story-gateway/internal/domain"
)

// ErrNotFound is returned when no segment matches the identifier.
var ErrNotFound = errors.New("segment not found")

// SegmentStore reads story segments from the external database.
type SegmentStore interface {
	// GetSegmentContext returns the segment's content and its story's genre.
	// It returns ErrNotFound when the join yields no row.
	GetSegmentContext(ctx context.Context, segmentID string) (*domain.SegmentContext, error)

	// Close releases any held resources.
	Close() error
}
