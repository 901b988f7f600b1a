// Package research finds real-world background for a story passage: a
// QueryExtractor turns the passage into a search query and a Source looks
// it up.
package research

import (
	"context"
	"log/slog"

	"github.com/tjfontaine/story-gateway/internal/domain"
	"github.com/tjfontaine/story-gateway/internal/telemetry"
)

// Service runs one extraction and one lookup per request.
type Service struct {
	extractor QueryExtractor
	source    Source
	logger    *slog.Logger
}

// NewService creates a research service.
func NewService(extractor QueryExtractor, source Source, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{extractor: extractor, source: source, logger: logger}
}

// Research derives a query from content and summarizes what the source finds.
// An empty result set is a successful response carrying NoResultsSummary.
func (s *Service) Research(ctx context.Context, content string) (*domain.ResearchResult, error) {
	if content == "" {
		return nil, domain.ErrValidation("Content is required")
	}

	query, err := s.extractor.Extract(ctx, content)
	if err != nil {
		s.logger.ErrorContext(ctx, "query extraction failed", slog.String("error", err.Error()))
		return nil, err
	}
	if query == "" {
		return nil, domain.ErrExtraction("Could not extract a search topic")
	}
	telemetry.AddLogField(ctx, "search_query", query)

	findings, err := s.source.Lookup(ctx, query)
	if err != nil {
		s.logger.ErrorContext(ctx, "research lookup failed",
			slog.String("search_query", query),
			slog.String("error", err.Error()))
		return nil, err
	}

	return &domain.ResearchResult{
		Summary:   findings.Summary,
		Query:     query,
		Citations: findings.Citations,
	}, nil
}
