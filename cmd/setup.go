package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/etnz/tracker"
	"github.com/etnz/tracker/agent"
	"github.com/etnz/tracker/store"
	"github.com/etnz/tracker/yahoo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Setup installs the logger and, with -trace, the span exporter.
// It must be called after flag parsing, the returned function flushes both.
func Setup(ctx context.Context) (func(), error) {
	logger, err := newLogger(*Verbose)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	tracker.SetLogger(logger)
	yahoo.SetLogger(logger.Named("yahoo"))
	store.SetLogger(logger.Named("store"))
	agent.SetLogger(logger.Named("agent"))

	shutdown := func() { _ = logger.Sync() }
	if !*traceRuns {
		return shutdown, nil
	}
	tp, err := newTracerProvider(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating tracer: %w", err)
	}
	otel.SetTracerProvider(tp)
	return func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Warn("flushing spans", zap.Error(err))
		}
		shutdown()
	}, nil
}

// newLogger logs warnings on stderr, or everything with verbose.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

func newTracerProvider(ctx context.Context) (*sdktrace.TracerProvider, error) {
	exp, err := stdouttrace.New(stdouttrace.WithWriter(os.Stderr), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName("ptrack")))
	if err != nil {
		return nil, err
	}
	return sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp), sdktrace.WithResource(res)), nil
}
