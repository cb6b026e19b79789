package main

import (
	"context"

	"github.com/tournevent/easypost/internal/config"
	"github.com/tournevent/easypost/internal/telemetry"
	"github.com/tournevent/easypost/pkg/easypost"
	"github.com/tournevent/easypost/pkg/shipper"
	epshipper "github.com/tournevent/easypost/pkg/shipper/easypost"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
)

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func initLogger(level, format string) (*otelzap.Logger, error) {
	return telemetry.NewLogger(level, format)
}

func initTracer(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return func(context.Context) error { return nil }, nil
	}

	_, shutdown, err := telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Version)
	return shutdown, err
}

// initEasyPostClient builds the API client used by the CLI commands.
// metrics may be nil.
func initEasyPostClient(cfg *config.Config, logger *otelzap.Logger, metrics *telemetry.Metrics) *easypost.Client {
	epCfg := easypost.Config{
		APIBase: cfg.EasyPostAPIBase,
		APIKey:  cfg.EasyPostAPIKey,
		Timeout: cfg.EasyPostTimeout,
	}
	if metrics != nil {
		epCfg.Recorder = metrics
	}
	return easypost.New(epCfg, logger, otel.Tracer(cfg.ServiceName))
}

func initShipperRegistry(cfg *config.Config, logger *otelzap.Logger, metrics *telemetry.Metrics) *shipper.Registry {
	registry := shipper.NewRegistry()
	tracer := otel.Tracer(cfg.ServiceName)

	var recorder easypost.Recorder
	if metrics != nil {
		recorder = metrics
	}

	if cfg.EasyPostEnabled {
		registry.Register(epshipper.New(epshipper.Config{
			APIKey:   cfg.EasyPostAPIKey,
			APIBase:  cfg.EasyPostAPIBase,
			Timeout:  cfg.EasyPostTimeout,
			UseMock:  cfg.EasyPostUseMock,
			Recorder: recorder,
		}, logger, tracer))
	}

	return registry
}
