package gateway_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tjfontaine/story-gateway/internal/llm"
	"github.com/tjfontaine/story-gateway/pkg/gateway"
)

type cannedModel struct{ reply string }

func (m cannedModel) Model() string { return "canned" }

func (m cannedModel) Complete(_ context.Context, _ *llm.Prompt) (string, error) {
	return m.reply, nil
}

func TestEmbeddedGateway(t *testing.T) {
	cfg, err := gateway.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	cfg.Store.Type = "memory"
	cfg.Auth.JWTSecret = ""

	gw, err := gateway.New(
		gateway.WithConfig(cfg),
		gateway.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		gateway.WithChatModel(cannedModel{reply: "Sparks flew from the console."}),
		gateway.WithSQLite(filepath.Join(t.TempDir(), "stories.db")),
	)
	require.NoError(t, err)
	require.NoError(t, gw.Init(context.Background()))
	defer gw.Shutdown(context.Background())

	req := httptest.NewRequest(http.MethodPost, "/functions/v1/generate-story",
		strings.NewReader(`{"previousSegments":[{"content":"The robot awoke.","is_ai_generated":false}],"genre":"sci-fi"}`))
	rec := httptest.NewRecorder()
	gw.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Sparks flew from the console.", body["continuation"])

	// The SQLite store is empty, so the segment lookup misses.
	req = httptest.NewRequest(http.MethodPost, "/functions/v1/suggest-improvements", strings.NewReader(`{"segmentId":"nope"}`))
	rec = httptest.NewRecorder()
	gw.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
