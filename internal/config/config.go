package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for the service and the CLI.
type Config struct {
	// Server
	Port      int    `envconfig:"PORT" default:"80"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"` // json or console

	// EasyPost
	EasyPostAPIKey  string        `envconfig:"EASYPOST_API_KEY"`
	EasyPostAPIBase string        `envconfig:"EASYPOST_API_BASE" default:"https://api.easypost.com/v2"`
	EasyPostTimeout time.Duration `envconfig:"EASYPOST_TIMEOUT" default:"0s"`
	EasyPostEnabled bool          `envconfig:"EASYPOST_ENABLED" default:"true"`
	EasyPostUseMock bool          `envconfig:"EASYPOST_USE_MOCK" default:"false"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"easypost-bridge"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cfg.EasyPostTimeout < 0 {
		return nil, fmt.Errorf("loading config: EASYPOST_TIMEOUT must not be negative, got %s", cfg.EasyPostTimeout)
	}
	return &cfg, nil
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.Bool("easypost.enabled", c.EasyPostEnabled),
		attribute.Bool("easypost.mock", c.EasyPostUseMock),
		attribute.String("easypost.api_base", c.EasyPostAPIBase),
	}
}
