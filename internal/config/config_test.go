package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("STORY_SERVER__PORT", "")
		os.Unsetenv("STORY_SERVER__PORT")

		cfg, err := Load(missing)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if cfg.Server.Port != 8080 {
			t.Errorf("port = %v, want 8080", cfg.Server.Port)
		}
		if cfg.Server.RequestTimeout != 60*time.Second {
			t.Errorf("request_timeout = %v, want 60s", cfg.Server.RequestTimeout)
		}
		if cfg.AI.Model != "google/gemini-2.5-flash" {
			t.Errorf("ai.model = %q", cfg.AI.Model)
		}
		if cfg.Research.Extractor != "naive" {
			t.Errorf("research.extractor = %q", cfg.Research.Extractor)
		}
		if cfg.Batch.Count != 100 || cfg.Batch.Delay != 100*time.Millisecond {
			t.Errorf("batch = %+v", cfg.Batch)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("env var override", func(t *testing.T) {
		t.Setenv("STORY_SERVER__PORT", "9000")
		t.Setenv("STORY_RESEARCH__EXTRACTOR", "ai")
		t.Setenv("STORY_STORY__STRICT_GENRE", "true")

		cfg, err := Load(missing)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if cfg.Server.Port != 9000 {
			t.Errorf("port = %v, want 9000", cfg.Server.Port)
		}
		if cfg.Research.Extractor != "ai" {
			t.Errorf("research.extractor = %q", cfg.Research.Extractor)
		}
		if !cfg.Story.StrictGenre {
			t.Error("story.strict_genre should be true")
		}
	})

	t.Run("well-known provider variables", func(t *testing.T) {
		t.Setenv("FIRECRAWL_API_KEY", "fc-123")
		t.Setenv("STORY_PERPLEXITY__API_KEY", "explicit")
		t.Setenv("PERPLEXITY_API_KEY", "ignored")

		cfg, err := Load(missing)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Firecrawl.APIKey != "fc-123" {
			t.Errorf("firecrawl.api_key = %q", cfg.Firecrawl.APIKey)
		}
		if cfg.Perplexity.APIKey != "explicit" {
			t.Errorf("perplexity.api_key = %q, explicit config should win", cfg.Perplexity.APIKey)
		}
	})
}

func TestLoad_File(t *testing.T) {
	t.Setenv("TEST_LOVABLE_KEY", "secret-from-env")

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: 7000
  request_timeout: 5s
ai:
  api_key: ${TEST_LOVABLE_KEY}
store:
  type: sql
  driver: sqlite
  dsn: ./data/stories.db
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 7000 || cfg.Server.RequestTimeout != 5*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.AI.APIKey != "secret-from-env" {
		t.Errorf("ai.api_key = %q", cfg.AI.APIKey)
	}
	if cfg.Store.Type != "sql" || cfg.Store.Driver != "sqlite" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.AI.BaseURL != "https://ai.gateway.lovable.dev/v1" {
		t.Errorf("defaults should fill unset keys, ai.base_url = %q", cfg.AI.BaseURL)
	}
}

func TestLoad_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 8080, RequestTimeout: time.Minute},
			AI:       AIConfig{Provider: "gateway"},
			Research: ResearchConfig{Extractor: "naive"},
			Store:    StoreConfig{Type: "supabase"},
			Batch:    BatchConfig{Count: 100, Delay: 100 * time.Millisecond},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"bad timeout", func(c *Config) { c.Server.RequestTimeout = 0 }, "request_timeout"},
		{"bad provider", func(c *Config) { c.AI.Provider = "claude" }, "ai.provider"},
		{"bad extractor", func(c *Config) { c.Research.Extractor = "regex" }, "research.extractor"},
		{"bad store", func(c *Config) { c.Store.Type = "redis" }, "store.type"},
		{"sql without dsn", func(c *Config) { c.Store.Type = "sql" }, "store.dsn"},
		{"bad count", func(c *Config) { c.Batch.Count = 0 }, "batch.count"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR", "test-value")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple substitution", "${TEST_VAR}", "test-value"},
		{"substitution in string", "prefix-${TEST_VAR}-suffix", "prefix-test-value-suffix"},
		{"no substitution", "plain-string", "plain-string"},
		{"undefined var", "${UNDEFINED_VAR}", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := substituteEnvVars(tt.input)
			if got != tt.want {
				t.Errorf("substituteEnvVars() = %v, want %v", got, tt.want)
			}
		})
	}
}
