// Package gateway provides the public API for embedding the story backend
// in another program.
package gateway

import (
	"github.com/tjfontaine/story-gateway/internal/config"
	"github.com/tjfontaine/story-gateway/internal/runtime"
)

// Gateway serves the story routes. See internal/runtime.Gateway.
type Gateway = runtime.Gateway

// Option is a functional option for configuring a Gateway.
type Option = runtime.Option

// Config is the gateway configuration.
type Config = config.Config

// New creates a new Gateway with the given options.
// Example:
//
//	cfg, _ := gateway.LoadConfig("config.yaml")
//	gw, err := gateway.New(
//	    gateway.WithConfig(cfg),
//	    gateway.WithSQLite("./data/stories.db"),
//	)
var New = runtime.New

// LoadConfig reads config.yaml and STORY_ environment variables.
var LoadConfig = config.Load

// Configuration options
var (
	WithConfig = runtime.WithConfig
	WithLogger = runtime.WithLogger

	// Upstreams
	WithHTTPClient = runtime.WithHTTPClient
	WithChatModel  = runtime.WithChatModel

	// Storage
	WithSQLite       = runtime.WithSQLite
	WithSegmentStore = runtime.WithSegmentStore
)
