// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all client configuration loaded from defaults, an optional
// config file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Failed to load config")
//	}
//	backend := client.NewBreakerClient(&cfg.Backend, &cfg.Breaker)
type Config struct {
	Backend        BackendConfig        `koanf:"backend"`
	Breaker        BreakerConfig        `koanf:"breaker"`
	Generation     GenerationConfig     `koanf:"generation"`
	History        HistoryConfig        `koanf:"history"`
	Recommendation RecommendationConfig `koanf:"recommendation"`
	Bridge         BridgeConfig         `koanf:"bridge"`
	Logging        LoggingConfig        `koanf:"logging"`
}

// BackendConfig describes how to reach the lyric analysis/generation service.
//
// Environment Variables:
//   - API_URL: Base URL including the /api prefix (default: http://localhost:5000/api)
//   - API_TIMEOUT: Per-request timeout (default: 30s)
//   - USER_ID: Optional user id forwarded as user_id on every call
//   - API_MAX_RETRIES: Retries on HTTP 429 (default: 5)
//   - API_RATE_LIMIT: Client-side requests per second, 0 disables (default: 10)
type BackendConfig struct {
	URL            string        `koanf:"url" validate:"required,url"`
	Timeout        time.Duration `koanf:"timeout" validate:"gt=0"`
	UserID         int64         `koanf:"user_id" validate:"gte=0"`
	MaxRetries     int           `koanf:"max_retries" validate:"gte=0,lte=10"`
	RetryBaseDelay time.Duration `koanf:"retry_base_delay" validate:"gte=0"`
	RateLimit      float64       `koanf:"rate_limit" validate:"gte=0"`
	RateBurst      int           `koanf:"rate_burst" validate:"gte=1"`
}

// HasUser reports whether a user id should be sent with requests.
func (b *BackendConfig) HasUser() bool {
	return b.UserID > 0
}

// BreakerConfig tunes the circuit breaker wrapped around the backend client.
type BreakerConfig struct {
	MaxRequests  uint32        `koanf:"max_requests" validate:"gte=1"`
	Interval     time.Duration `koanf:"interval" validate:"gte=0"`
	Timeout      time.Duration `koanf:"timeout" validate:"gt=0"`
	MinRequests  uint32        `koanf:"min_requests" validate:"gte=1"`
	FailureRatio float64       `koanf:"failure_ratio" validate:"gt=0,lte=1"`
}

// GenerationConfig carries the defaults the strategy resolver falls back to.
type GenerationConfig struct {
	DefaultLength int    `koanf:"default_length" validate:"gte=1"`
	MinLength     int    `koanf:"min_length" validate:"gte=1"`
	MaxLength     int    `koanf:"max_length" validate:"gtefield=MinLength"`
	DefaultStyle  string `koanf:"default_style" validate:"required"`
	DefaultTheme  string `koanf:"default_theme" validate:"required"`
	// ConvertStyle is the preselected target style for style conversion.
	ConvertStyle string `koanf:"convert_style" validate:"required"`
}

// HistoryConfig controls history list size and detail caching.
type HistoryConfig struct {
	Limit           int           `koanf:"limit" validate:"gte=1,lte=500"`
	DetailCacheSize int           `koanf:"detail_cache_size" validate:"gte=1"`
	DetailCacheTTL  time.Duration `koanf:"detail_cache_ttl" validate:"gt=0"`
}

// RecommendationConfig controls recommendation requests.
type RecommendationConfig struct {
	TopK int `koanf:"top_k" validate:"gte=1,lte=50"`
}

// BridgeConfig configures the local HTTP/WebSocket bridge used by `cadence serve`.
//
// Environment Variables:
//   - BRIDGE_HOST / BRIDGE_PORT: Listen address (default: 127.0.0.1:5173)
//   - BRIDGE_CORS_ORIGINS: Comma-separated allowed origins (default: *)
//   - BRIDGE_RATE_LIMIT: Mutating requests per window per client IP (default: 30)
type BridgeConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"gte=1,lte=65535"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`

	// RateLimit caps POST and DELETE requests per RateWindow, per client IP.
	// Each one costs a backend call.
	RateLimit  int           `koanf:"rate_limit" validate:"gte=1"`
	RateWindow time.Duration `koanf:"rate_window" validate:"gt=0"`
}

// Addr returns host:port for net/http.
func (b *BridgeConfig) Addr() string {
	return net.JoinHostPort(b.Host, strconv.Itoa(b.Port))
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level" validate:"oneof=trace debug info warn warning error fatal panic disabled"`

	// Format is the output format: json or console.
	// Default: console (the CLI is interactive)
	Format string `koanf:"format" validate:"oneof=json console"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// Load loads configuration using Koanf with layered sources.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
