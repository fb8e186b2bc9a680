// Package telemetry configures OpenTelemetry tracing for the fraud
// pipeline: a span per ingested request and per evaluator run, exported
// via OTLP, stdout, or not at all.
package telemetry

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Config holds telemetry configuration.
type Config struct {
	Enabled     bool   `yaml:"enabled"`
	Exporter    string `yaml:"exporter"` // "otlp", "stdout", or "none"
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
	Insecure    bool   `yaml:"insecure"`
}

// Provider manages the process-wide TracerProvider.
type Provider struct {
	config   Config
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
}

// NewProvider builds a Provider. When cfg.Enabled is false, or the
// exporter is unset/"none", Provider still returns a usable no-op-backed
// tracer so callers never need a nil check.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "fraud-pipeline"
	}

	if !cfg.Enabled {
		return &Provider{config: cfg, tracer: otel.Tracer(cfg.ServiceName)}, nil
	}

	slog.Info("telemetry: creating exporter", "type", cfg.Exporter)

	var exporter sdktrace.SpanExporter
	var err error
	switch cfg.Exporter {
	case "otlp":
		exporter, err = createOTLPExporter(cfg)
		if err != nil {
			return nil, fmt.Errorf("telemetry: otlp exporter: %w", err)
		}
		slog.Info("telemetry: OTLP exporter initialized", "endpoint", cfg.Endpoint)
	case "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("telemetry: stdout exporter: %w", err)
		}
		slog.Info("telemetry: stdout exporter initialized")
	default:
		return &Provider{config: cfg, tracer: otel.Tracer(cfg.ServiceName)}, nil
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)

	return &Provider{
		config:   cfg,
		tracer:   tp.Tracer(cfg.ServiceName),
		provider: tp,
	}, nil
}

func createOTLPExporter(cfg Config) (sdktrace.SpanExporter, error) {
	ctx := context.Background()
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	return otlptracegrpc.New(ctx, opts...)
}

// Tracer returns the tracer for creating spans.
func (p *Provider) Tracer() trace.Tracer { return p.tracer }

// Shutdown drains and stops the exporter, if any.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.provider != nil {
		return p.provider.Shutdown(ctx)
	}
	return nil
}

// Enabled reports whether a real exporter is wired up.
func (p *Provider) Enabled() bool {
	return p.config.Enabled && p.provider != nil
}

// Span attribute keys. The HTTP request span sets AttrRequestPath and
// AttrStatusCode; the evaluator's span sets its own keys and does not
// use AttrSessionID, AttrVerdict or AttrSignalCount.
const (
	AttrSessionID   = "fraud.session.id"
	AttrVerdict     = "fraud.verdict"
	AttrSignalCount = "fraud.signal.count"
	AttrRequestPath = "url.path"
	AttrStatusCode  = "http.response.status_code"
)

// StartRequestSpan starts a span for one HTTP request.
func (p *Provider) StartRequestSpan(ctx context.Context, method, path string) (context.Context, trace.Span) {
	return p.tracer.Start(ctx, "fraud.request",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String(AttrRequestPath, path),
		),
	)
}

// EndRequestSpan closes span with the final status code and error, if any.
func EndRequestSpan(span trace.Span, statusCode int, err error) {
	span.SetAttributes(attribute.Int(AttrStatusCode, statusCode))
	if err != nil {
		span.RecordError(err)
	}
	span.End()
}
