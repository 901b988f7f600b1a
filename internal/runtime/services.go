package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tjfontaine/story-gateway/internal/api/firecrawl"
	"github.com/tjfontaine/story-gateway/internal/api/openai"
	"github.com/tjfontaine/story-gateway/internal/api/tts"
	"github.com/tjfontaine/story-gateway/internal/batch"
	"github.com/tjfontaine/story-gateway/internal/config"
	"github.com/tjfontaine/story-gateway/internal/frontdoor"
	"github.com/tjfontaine/story-gateway/internal/llm"
	"github.com/tjfontaine/story-gateway/internal/narration"
	"github.com/tjfontaine/story-gateway/internal/research"
	"github.com/tjfontaine/story-gateway/internal/storage/memory"
	"github.com/tjfontaine/story-gateway/internal/storage/postgrest"
	"github.com/tjfontaine/story-gateway/internal/storage/sqldb"
	"github.com/tjfontaine/story-gateway/internal/story"
	"github.com/tjfontaine/story-gateway/internal/tokens"
)

// Messages for routes whose credentials are missing.
const (
	MsgAIUnconfigured         = "AI provider key is not configured"
	MsgStoreUnconfigured      = "Segment store is not configured"
	MsgTTSUnconfigured        = "Text-to-speech key is not configured"
	MsgFirecrawlUnconfigured  = "Firecrawl API key not configured"
	MsgPerplexityUnconfigured = "Perplexity API key not configured"
)

// initServices builds every service the configuration allows and records
// why the others are missing.
func (g *Gateway) initServices(ctx context.Context) error {
	cfg := g.cfg

	if g.model == nil {
		model, err := g.buildChatModel(ctx)
		if err != nil {
			return fmt.Errorf("chat model: %w", err)
		}
		g.model = model
	}

	if g.store == nil {
		if err := g.buildStore(); err != nil {
			return fmt.Errorf("segment store: %w", err)
		}
	}

	storyOpts := []story.Option{
		story.WithLogger(g.logger),
		story.WithTokenCounter(tokens.NewCounter()),
		story.WithStrictGenre(cfg.Story.StrictGenre),
	}

	if g.model != nil {
		g.services.Continuer = story.NewContinuer(g.model, storyOpts...)
	} else {
		g.missing[frontdoor.RouteGenerateStory] = MsgAIUnconfigured
	}

	switch {
	case g.model == nil:
		g.missing[frontdoor.RouteSuggestImprovements] = MsgAIUnconfigured
	case g.store == nil:
		g.missing[frontdoor.RouteSuggestImprovements] = MsgStoreUnconfigured
	default:
		g.services.Coach = story.NewCoach(g.model, g.store, storyOpts...)
	}

	if cfg.TTS.APIKey != "" {
		g.services.Narrator = narration.NewNarrator(tts.NewClient(tts.Config{
			APIKey:     cfg.TTS.APIKey,
			BaseURL:    cfg.TTS.BaseURL,
			Model:      cfg.TTS.Model,
			Voice:      cfg.TTS.Voice,
			HTTPClient: g.httpClient,
		}), g.logger)
	} else {
		g.missing[frontdoor.RouteNarrateSegment] = MsgTTSUnconfigured
	}

	g.initResearch()

	g.logger.Debug("services initialized",
		slog.String("ai_provider", cfg.AI.Provider),
		slog.String("store", cfg.Store.Type),
		slog.String("extractor", cfg.Research.Extractor))
	return nil
}

// initResearch wires both research routes and the batch harness, which
// drives the Firecrawl service in process.
func (g *Gateway) initResearch() {
	cfg := g.cfg

	var extractor research.QueryExtractor = research.NaiveExtractor{}
	if cfg.Research.Extractor == "ai" {
		if g.model == nil {
			for _, route := range []string{frontdoor.RouteFirecrawlResearch, frontdoor.RoutePerplexityResearch, frontdoor.RouteFirecrawlBatch} {
				g.missing[route] = MsgAIUnconfigured
			}
			return
		}
		extractor = research.NewAIExtractor(g.model)
	}

	if cfg.Firecrawl.APIKey != "" {
		client := firecrawl.NewClient(cfg.Firecrawl.APIKey,
			firecrawl.WithBaseURL(cfg.Firecrawl.BaseURL),
			firecrawl.WithHTTPClient(g.httpClient))
		svc := research.NewService(extractor, research.NewFirecrawlSource(client), g.logger)
		g.services.Firecrawl = svc
		g.services.Batch = &batch.Runner{
			Caller: batch.ServiceCaller{Service: svc},
			Count:  cfg.Batch.Count,
			Delay:  cfg.Batch.Delay,
			Logger: g.logger,
		}
	} else {
		g.missing[frontdoor.RouteFirecrawlResearch] = MsgFirecrawlUnconfigured
		g.missing[frontdoor.RouteFirecrawlBatch] = MsgFirecrawlUnconfigured
	}

	if cfg.Perplexity.APIKey != "" {
		client := openai.NewClient(cfg.Perplexity.APIKey,
			openai.WithBaseURL(cfg.Perplexity.BaseURL),
			openai.WithHTTPClient(g.httpClient),
			openai.WithProviderName(research.PerplexityMessages.Name))
		g.services.Perplexity = research.NewService(extractor,
			research.NewPerplexitySource(client, cfg.Perplexity.Model), g.logger)
	} else {
		g.missing[frontdoor.RoutePerplexityResearch] = MsgPerplexityUnconfigured
	}
}

// buildChatModel returns nil when no AI key is configured.
func (g *Gateway) buildChatModel(ctx context.Context) (llm.ChatModel, error) {
	ai := g.cfg.AI
	if ai.APIKey == "" {
		return nil, nil
	}

	switch ai.Provider {
	case "gemini":
		baseURL := ai.BaseURL
		if baseURL == config.DefaultAIBaseURL {
			baseURL = ""
		}
		// Gateway model names carry a vendor prefix the Gemini API rejects.
		model := strings.TrimPrefix(ai.Model, "google/")
		return llm.NewGemini(ctx, ai.APIKey, model, baseURL, g.httpClient)
	case "gateway", "":
		client := openai.NewClient(ai.APIKey,
			openai.WithBaseURL(ai.BaseURL),
			openai.WithHTTPClient(g.httpClient))
		return llm.NewGateway(client, ai.Model), nil
	default:
		return nil, fmt.Errorf("unknown ai provider: %s", ai.Provider)
	}
}

// buildStore leaves g.store nil when the supabase store lacks credentials.
func (g *Gateway) buildStore() error {
	sc := g.cfg.Store
	switch sc.Type {
	case "supabase", "":
		if sc.SupabaseURL == "" || sc.ServiceKey == "" {
			return nil
		}
		g.store = postgrest.New(postgrest.Config{
			URL:        sc.SupabaseURL,
			ServiceKey: sc.ServiceKey,
			HTTPClient: g.httpClient,
		})
	case "sql":
		store, err := sqldb.New(sqldb.Config{
			Driver:       sc.Driver,
			DSN:          sc.DSN,
			CreateSchema: sc.CreateSchema,
		})
		if err != nil {
			return err
		}
		g.store = store
	case "memory":
		g.store = memory.New()
	default:
		return fmt.Errorf("unknown store type: %s", sc.Type)
	}
	return nil
}
