// Package frontdoor exposes the story services as HTTP handlers under
// /functions/v1.
//
// Each route decodes a small JSON body, calls exactly one service and renders
// either the service result or a classified error body:
//
//	{"error": "<message>", "classification": "<type>"}
//	{"error": "quota_exceeded", "message": "<message>", "classification": "quota_exceeded"}
//
// A service left nil in Services is mounted as an unconfigured route that
// answers with a configuration error, so one missing secret does not take
// the other routes down.
package frontdoor

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tjfontaine/story-gateway/internal/batch"
	"github.com/tjfontaine/story-gateway/internal/domain"
	"github.com/tjfontaine/story-gateway/internal/narration"
	"github.com/tjfontaine/story-gateway/internal/server"
)

// BasePath is the URL prefix shared by every route.
const BasePath = "/functions/v1"

// Continuer writes story continuations. *story.Continuer implements it.
type Continuer interface {
	Continue(ctx context.Context, req *domain.GenerationRequest, userID string) (string, error)
}

// Coach suggests segment improvements. *story.Coach implements it.
type Coach interface {
	Suggest(ctx context.Context, segmentID, userID string) (string, error)
}

// Narrator synthesizes speech. *narration.Narrator implements it.
type Narrator interface {
	Narrate(ctx context.Context, text string) (*narration.Audio, error)
}

// Researcher looks up background for story text. *research.Service implements it.
type Researcher interface {
	Research(ctx context.Context, content string) (*domain.ResearchResult, error)
}

// BatchRunner runs the research batch. *batch.Runner implements it.
type BatchRunner interface {
	Run(ctx context.Context) (*batch.Report, error)
}

// Services are the backends behind each route. Nil entries mount an
// unconfigured route.
type Services struct {
	Continuer  Continuer
	Coach      Coach
	Narrator   Narrator
	Firecrawl  Researcher
	Perplexity Researcher
	Batch      BatchRunner
}

// Unconfigured explains why a service is nil. Keys are route names.
type Unconfigured map[string]string

// Route names.
const (
	RouteGenerateStory       = "generate-story"
	RouteSuggestImprovements = "suggest-improvements"
	RouteNarrateSegment      = "narrate-segment"
	RouteFirecrawlResearch   = "firecrawl-research"
	RoutePerplexityResearch  = "perplexity-research"
	RouteFirecrawlBatch      = "test-firecrawl-batch"
)

// HandlerRegistration represents a registered HTTP handler.
type HandlerRegistration struct {
	Path    string
	Method  string
	Handler http.HandlerFunc
}

// Handler holds the services and renders their results.
type Handler struct {
	services Services
	missing  Unconfigured
	logger   *slog.Logger
}

// NewHandler creates the route handlers. missing supplies the message for
// each route whose service is nil.
func NewHandler(services Services, missing Unconfigured, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{services: services, missing: missing, logger: logger}
}

// Registrations returns every route, relative to BasePath.
func (h *Handler) Registrations() []HandlerRegistration {
	regs := []HandlerRegistration{
		{Path: "/" + RouteGenerateStory, Method: http.MethodPost, Handler: h.guard(RouteGenerateStory, h.services.Continuer != nil, h.HandleGenerateStory)},
		{Path: "/" + RouteSuggestImprovements, Method: http.MethodPost, Handler: h.guard(RouteSuggestImprovements, h.services.Coach != nil, h.HandleSuggestImprovements)},
		{Path: "/" + RouteNarrateSegment, Method: http.MethodPost, Handler: h.guard(RouteNarrateSegment, h.services.Narrator != nil, h.HandleNarrateSegment)},
		{Path: "/" + RouteFirecrawlResearch, Method: http.MethodPost, Handler: h.guard(RouteFirecrawlResearch, h.services.Firecrawl != nil, h.research(h.services.Firecrawl))},
		{Path: "/" + RoutePerplexityResearch, Method: http.MethodPost, Handler: h.guard(RoutePerplexityResearch, h.services.Perplexity != nil, h.research(h.services.Perplexity))},
	}

	batchHandler := h.guard(RouteFirecrawlBatch, h.services.Batch != nil, h.HandleBatch)
	regs = append(regs,
		HandlerRegistration{Path: "/" + RouteFirecrawlBatch, Method: http.MethodPost, Handler: batchHandler},
		HandlerRegistration{Path: "/" + RouteFirecrawlBatch, Method: http.MethodGet, Handler: batchHandler},
	)
	return regs
}

// Mount registers every route under BasePath. When jwtSecret is set, requests
// must carry a valid bearer token.
func (h *Handler) Mount(r chi.Router, jwtSecret []byte) {
	r.Route(BasePath, func(r chi.Router) {
		r.Use(server.UserMiddleware(jwtSecret))
		for _, reg := range h.Registrations() {
			r.Method(reg.Method, reg.Path, reg.Handler)
		}
	})
}

// guard swaps in the unconfigured handler when the route's service is missing.
func (h *Handler) guard(route string, configured bool, next http.HandlerFunc) http.HandlerFunc {
	if configured {
		return next
	}
	msg := h.missing[route]
	if msg == "" {
		msg = route + " is not configured"
	}
	h.logger.Warn("route mounted without its service", slog.String("route", route), slog.String("reason", msg))
	return func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, r, domain.ErrConfiguration(msg))
	}
}
