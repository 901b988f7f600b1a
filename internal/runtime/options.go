package runtime

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/tjfontaine/story-gateway/internal/config"
	"github.com/tjfontaine/story-gateway/internal/llm"
	"github.com/tjfontaine/story-gateway/internal/storage"
	"github.com/tjfontaine/story-gateway/internal/storage/sqldb"
)

// Option is a functional option for configuring a Gateway.
type Option func(*Gateway) error

// WithConfig sets the gateway configuration. It is required.
func WithConfig(cfg *config.Config) Option {
	return func(g *Gateway) error {
		if cfg == nil {
			return fmt.Errorf("config is nil")
		}
		g.cfg = cfg
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) error {
		g.logger = logger
		return nil
	}
}

// WithHTTPClient sets the client used for every upstream call.
func WithHTTPClient(client *http.Client) Option {
	return func(g *Gateway) error {
		g.httpClient = client
		return nil
	}
}

// WithSegmentStore sets a custom segment store, overriding store.type.
// The gateway closes it on Shutdown.
func WithSegmentStore(store storage.SegmentStore) Option {
	return func(g *Gateway) error {
		g.store = store
		return nil
	}
}

// WithSQLite uses a local SQLite segment store at path, creating the schema
// when missing.
func WithSQLite(path string) Option {
	return func(g *Gateway) error {
		store, err := sqldb.NewSQLite(path)
		if err != nil {
			return fmt.Errorf("create sqlite store: %w", err)
		}
		g.store = store
		return nil
	}
}

// WithChatModel sets the model behind story generation, suggestions and the
// AI query extractor, overriding the ai section.
func WithChatModel(model llm.ChatModel) Option {
	return func(g *Gateway) error {
		g.model = model
		return nil
	}
}
