// Package config loads gateway configuration from config.yaml and STORY_
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultPath is read when Load is given an empty path.
const DefaultPath = "config.yaml"

const envPrefix = "STORY_"

// DefaultAIBaseURL is the OpenAI-compatible AI gateway endpoint.
const DefaultAIBaseURL = "https://ai.gateway.lovable.dev/v1"

type Config struct {
	Server     ServerConfig    `koanf:"server"`
	Log        LogConfig       `koanf:"log"`
	Telemetry  TelemetryConfig `koanf:"telemetry"`
	Auth       AuthConfig      `koanf:"auth"`
	AI         AIConfig        `koanf:"ai"`
	Story      StoryConfig     `koanf:"story"`
	TTS        TTSConfig       `koanf:"tts"`
	Research   ResearchConfig  `koanf:"research"`
	Firecrawl  ProviderConfig  `koanf:"firecrawl"`
	Perplexity ProviderConfig  `koanf:"perplexity"`
	Store      StoreConfig     `koanf:"store"`
	Batch      BatchConfig     `koanf:"batch"`
}

type ServerConfig struct {
	Port           int           `koanf:"port"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
	// DenyPrivateNetworks blocks upstream connections to private addresses.
	DenyPrivateNetworks bool `koanf:"deny_private_networks"`
}

type LogConfig struct {
	Level      string `koanf:"level"`
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
}

type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	ServiceName string `koanf:"service_name"`
}

type AuthConfig struct {
	// JWTSecret enables bearer token verification when set.
	JWTSecret string `koanf:"jwt_secret"`
}

type AIConfig struct {
	Provider string `koanf:"provider"` // gateway, gemini
	APIKey   string `koanf:"api_key"`
	BaseURL  string `koanf:"base_url"`
	Model    string `koanf:"model"`
}

type StoryConfig struct {
	StrictGenre bool `koanf:"strict_genre"`
}

type TTSConfig struct {
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url"`
	Model   string `koanf:"model"`
	Voice   string `koanf:"voice"`
}

type ResearchConfig struct {
	Extractor string `koanf:"extractor"` // naive, ai
}

type ProviderConfig struct {
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url"`
	Model   string `koanf:"model"`
}

type StoreConfig struct {
	Type         string `koanf:"type"` // supabase, sql, memory
	SupabaseURL  string `koanf:"supabase_url"`
	ServiceKey   string `koanf:"service_key"`
	Driver       string `koanf:"driver"` // sqlite, postgres
	DSN          string `koanf:"dsn"`
	CreateSchema bool   `koanf:"create_schema"`
}

type BatchConfig struct {
	Count       int           `koanf:"count"`
	Delay       time.Duration `koanf:"delay"`
	ResearchURL string        `koanf:"research_url"`
	APIKey      string        `koanf:"api_key"`
}

var defaults = map[string]any{
	"server.port":            8080,
	"server.request_timeout": "60s",
	"log.level":              "info",
	"log.max_size_mb":        100,
	"log.max_backups":        3,
	"log.max_age_days":       28,
	"telemetry.service_name": "story-gateway",
	"ai.provider":            "gateway",
	"ai.base_url":            DefaultAIBaseURL,
	"ai.model":               "google/gemini-2.5-flash",
	"tts.model":              "tts-1",
	"tts.voice":              "alloy",
	"research.extractor":     "naive",
	"firecrawl.base_url":     "https://api.firecrawl.dev",
	"perplexity.base_url":    "https://api.perplexity.ai",
	"perplexity.model":       "sonar",
	"store.type":             "supabase",
	"batch.count":            100,
	"batch.delay":            "100ms",
}

// wellKnownEnv lets deployments keep the plain provider variable names.
// Explicit configuration wins.
var wellKnownEnv = map[string]string{
	"ai.api_key":         "LOVABLE_API_KEY",
	"tts.api_key":        "OPENAI_API_KEY",
	"firecrawl.api_key":  "FIRECRAWL_API_KEY",
	"perplexity.api_key": "PERPLEXITY_API_KEY",
	"store.supabase_url": "SUPABASE_URL",
	"store.service_key":  "SUPABASE_SERVICE_ROLE_KEY",
	"auth.jwt_secret":    "SUPABASE_JWT_SECRET",
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads path (DefaultPath when empty), then STORY_ environment variables,
// e.g. STORY_AI__API_KEY for ai.api_key. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	k := koanf.New(".")

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		// File not found is OK, we'll use env vars
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	// Load environment variables (can override file config)
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	for key, envName := range wellKnownEnv {
		if k.String(key) == "" {
			if v := os.Getenv(envName); v != "" {
				k.Set(key, v)
			}
		}
	}

	for key, value := range defaults {
		if !k.Exists(key) {
			k.Set(key, value)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	cfg.expandSecrets()

	return &cfg, nil
}

// expandSecrets substitutes ${VAR} references so secrets can stay out of
// config.yaml.
func (c *Config) expandSecrets() {
	for _, s := range []*string{
		&c.Auth.JWTSecret,
		&c.AI.APIKey,
		&c.TTS.APIKey,
		&c.Firecrawl.APIKey,
		&c.Perplexity.APIKey,
		&c.Store.SupabaseURL,
		&c.Store.ServiceKey,
		&c.Store.DSN,
		&c.Batch.APIKey,
	} {
		*s = substituteEnvVars(*s)
	}
}

func substituteEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks enumerations and numeric ranges. Missing credentials are
// not an error here: the affected routes answer with a configuration error
// instead.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, errors.New("server.request_timeout must be positive"))
	}
	switch c.AI.Provider {
	case "gateway", "gemini":
	default:
		errs = append(errs, fmt.Errorf("ai.provider %q must be gateway or gemini", c.AI.Provider))
	}
	switch c.Research.Extractor {
	case "naive", "ai":
	default:
		errs = append(errs, fmt.Errorf("research.extractor %q must be naive or ai", c.Research.Extractor))
	}
	switch c.Store.Type {
	case "supabase", "memory":
	case "sql":
		if c.Store.Driver == "" || c.Store.DSN == "" {
			errs = append(errs, errors.New("store.driver and store.dsn are required when store.type is sql"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.type %q must be supabase, sql or memory", c.Store.Type))
	}
	if c.Batch.Count <= 0 {
		errs = append(errs, fmt.Errorf("batch.count %d must be positive", c.Batch.Count))
	}
	if c.Batch.Delay < 0 {
		errs = append(errs, errors.New("batch.delay must not be negative"))
	}

	return errors.Join(errs...)
}
