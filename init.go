package main

import (
	"context"

	"github.com/tournevent/sameday/internal/config"
	"github.com/tournevent/sameday/internal/telemetry"
	"github.com/tournevent/sameday/pkg/sameday"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
)

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func initLogger(level string, outputs ...string) (*otelzap.Logger, error) {
	return telemetry.NewLogger(level, outputs...)
}

func initTracer(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return func(context.Context) error { return nil }, nil
	}

	_, shutdown, err := telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.Attributes()...)
	return shutdown, err
}

// initClient builds the Sameday client. The tracer comes from the global
// provider, so initTracer must run first for spans to be exported.
func initClient(cfg *config.Config, logger *otelzap.Logger) (*sameday.Client, error) {
	tracer := otel.GetTracerProvider().Tracer(cfg.ServiceName)
	return sameday.New(cfg.Sameday(), logger, tracer)
}
