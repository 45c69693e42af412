package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Global singleton for call sites without injected config
var globalConfig *Config

// Config holds all environment backed configuration for the session engine.
type Config struct {
	// HTTP Server
	HTTPPort    int           `env:"HTTP_PORT" envDefault:"8080"`
	MetricsPort int           `env:"METRICS_PORT" envDefault:"9091"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`

	// PostgreSQL; empty means the in-memory store is used
	DatabaseURL string `env:"DATABASE_URL"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`

	// Turn engine
	SystemPrompt       string        `env:"SYSTEM_PROMPT" envDefault:"You are a knowledgeable, encouraging learning mentor. Answer clearly and concisely."`
	ContextWindowSize  int           `env:"CONTEXT_WINDOW_SIZE" envDefault:"15"`
	TurnTimeout        time.Duration `env:"TURN_TIMEOUT" envDefault:"120s"`
	StreamWriteTimeout time.Duration `env:"STREAM_WRITE_TIMEOUT" envDefault:"10s"`
	MaxResponseTokens  int           `env:"MAX_RESPONSE_TOKENS" envDefault:"0"`
	RateLimitPerMin    int           `env:"RATE_LIMIT_PER_MINUTE" envDefault:"60"`

	// Model providers. The yaml file wins when enabled; otherwise the single
	// default provider below is used.
	ProviderConfigsEnabled bool                     `env:"PROVIDER_CONFIGS" envDefault:"false"`
	ProviderConfigFile     string                   `env:"PROVIDER_CONFIGS_FILE"`
	ProviderConfigSet      string                   `env:"PROVIDER_CONFIG_SET" envDefault:"default"`
	DefaultProviderName    string                   `env:"DEFAULT_PROVIDER_NAME" envDefault:"local"`
	DefaultProviderKind    string                   `env:"DEFAULT_PROVIDER_KIND" envDefault:"openai-compatible"`
	DefaultProviderURL     string                   `env:"DEFAULT_PROVIDER_URL" envDefault:"http://localhost:8001/v1"`
	DefaultProviderAPIKey  string                   `env:"DEFAULT_PROVIDER_API_KEY"`
	DefaultModel           string                   `env:"DEFAULT_MODEL"`
	ProviderBootstrap      *ProviderBootstrapConfig `env:"-"`

	// Observability / Logging
	OTLPEndpoint     string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPHeaders      string `env:"OTEL_EXPORTER_OTLP_HEADERS"`
	ServiceName      string `env:"SERVICE_NAME" envDefault:"session-engine"`
	ServiceNamespace string `env:"SERVICE_NAMESPACE" envDefault:"corp1o1"`
	Environment      string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat        string `env:"LOG_FORMAT" envDefault:"console"`

	// Internal
	EnvReloadedAt time.Time
}

// Load parses environment variables into Config and performs minimal validation.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.ProviderConfigSet = strings.TrimSpace(cfg.ProviderConfigSet)
	if cfg.ProviderConfigSet == "" {
		cfg.ProviderConfigSet = "default"
	}

	if cfg.ProviderConfigsEnabled {
		configFile := strings.TrimSpace(cfg.ProviderConfigFile)
		if configFile == "" {
			configFile = DefaultProviderConfigFile
		}
		bootstrap, err := LoadProviderBootstrapConfig(configFile)
		if err != nil {
			return nil, fmt.Errorf("load provider configs: %w", err)
		}
		cfg.ProviderBootstrap = bootstrap
		if len(bootstrap.ProvidersForSet(cfg.ProviderConfigSet)) == 0 {
			return nil, fmt.Errorf("provider config set %q is missing or empty in %s", cfg.ProviderConfigSet, configFile)
		}
	}

	if cfg.ContextWindowSize <= 0 {
		return nil, fmt.Errorf("CONTEXT_WINDOW_SIZE must be positive, got %d", cfg.ContextWindowSize)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.EnvReloadedAt = time.Now()

	globalConfig = cfg

	return cfg, nil
}

// ProviderBootstrapEntries returns the provider definitions for the active set.
// Without a bootstrap file it falls back to the single default provider from
// the environment.
func (c *Config) ProviderBootstrapEntries() []ProviderBootstrapEntry {
	if c == nil {
		return nil
	}
	if c.ProviderBootstrap != nil {
		return c.ProviderBootstrap.ProvidersForSet(c.ProviderConfigSet)
	}
	return []ProviderBootstrapEntry{{
		Name:         c.DefaultProviderName,
		Kind:         c.DefaultProviderKind,
		BaseURL:      c.DefaultProviderURL,
		APIKey:       c.DefaultProviderAPIKey,
		DefaultModel: c.DefaultModel,
	}}
}

// GetGlobal returns the global config instance.
// Deprecated: Use dependency injection with Load() instead.
func GetGlobal() *Config {
	return globalConfig
}

var Version = "dev"

func IsDev() bool {
	return strings.HasPrefix(Version, "dev")
}
