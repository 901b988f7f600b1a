// Package runtime assembles the story services from configuration and runs
// them behind the HTTP server.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/tjfontaine/story-gateway/internal/config"
	"github.com/tjfontaine/story-gateway/internal/frontdoor"
	"github.com/tjfontaine/story-gateway/internal/llm"
	"github.com/tjfontaine/story-gateway/internal/server"
	"github.com/tjfontaine/story-gateway/internal/storage"
	"github.com/tjfontaine/story-gateway/internal/upstream"
)

// Gateway is the main entry point for running the story backend.
// It owns the upstream clients, the segment store and the HTTP server.
type Gateway struct {
	// Dependencies (injected via options)
	cfg        *config.Config
	logger     *slog.Logger
	httpClient *http.Client
	store      storage.SegmentStore
	model      llm.ChatModel

	// Internal state
	services frontdoor.Services
	missing  frontdoor.Unconfigured
	server   *server.Server
	errCh    chan error

	mu          sync.Mutex
	initialized bool
	started     bool
}

// New creates a new Gateway with the given options. WithConfig is required.
func New(opts ...Option) (*Gateway, error) {
	gw := &Gateway{
		logger:  slog.Default(),
		missing: frontdoor.Unconfigured{},
		errCh:   make(chan error, 1),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(gw); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	if gw.cfg == nil {
		return nil, errors.New("config required (use WithConfig)")
	}

	if gw.httpClient == nil {
		gw.httpClient = upstream.NewHTTPClient(upstream.ClientOptions{
			DenyPrivateNetworks: gw.cfg.Server.DenyPrivateNetworks,
		})
	}

	return gw, nil
}

// Init builds the services and routes without listening. Start calls it.
func (g *Gateway) Init(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.init(ctx)
}

func (g *Gateway) init(ctx context.Context) error {
	if g.initialized {
		return nil
	}

	if err := g.initServices(ctx); err != nil {
		return fmt.Errorf("init services: %w", err)
	}

	g.server = server.New(server.Options{
		Port:           g.cfg.Server.Port,
		RequestTimeout: g.cfg.Server.RequestTimeout,
		ServiceName:    g.cfg.Telemetry.ServiceName,
		UntimedPaths:   []string{frontdoor.BasePath + "/" + frontdoor.RouteFirecrawlBatch},
	}, g.logger)

	handler := frontdoor.NewHandler(g.services, g.missing, g.logger)
	handler.Mount(g.server.Router, []byte(g.cfg.Auth.JWTSecret))

	g.initialized = true
	g.logger.Info("gateway initialized",
		slog.Bool("auth", g.cfg.Auth.JWTSecret != ""),
		slog.Int("unconfigured_routes", len(g.missing)))
	return nil
}

// Handler returns the root HTTP handler. It is nil until Init or Start.
func (g *Gateway) Handler() http.Handler {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.server == nil {
		return nil
	}
	return g.server.Router
}

// Start initializes the gateway and serves in the background. A listener
// failure is delivered on Errors.
func (g *Gateway) Start(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.started {
		return errors.New("gateway already started")
	}
	if err := g.init(ctx); err != nil {
		return err
	}

	srv := g.server
	go func() {
		if err := srv.Start(); err != nil {
			g.logger.Error("server error", slog.String("error", err.Error()))
			g.errCh <- err
		}
	}()

	g.started = true
	return nil
}

// Errors reports a server that stopped for any reason other than Shutdown.
func (g *Gateway) Errors() <-chan error {
	return g.errCh
}

// Shutdown gracefully stops the server and closes the segment store.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.logger.Info("shutting down gateway")

	// Stop HTTP server
	if g.started {
		if err := g.server.Shutdown(ctx); err != nil {
			g.logger.Error("failed to shutdown server", slog.String("error", err.Error()))
			return err
		}
		g.started = false
	}

	// Close resources
	if g.store != nil {
		if err := g.store.Close(); err != nil {
			g.logger.Error("failed to close store", slog.String("error", err.Error()))
		}
		g.store = nil
	}

	g.logger.Info("gateway shutdown complete")
	return nil
}
