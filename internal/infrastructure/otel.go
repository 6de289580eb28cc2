package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/eyecrackcodes/agentsummary/pkg/contracts"
)

const (
	ServiceName = "agent-production-analytics"
	MeterName   = "agentsummary"
)

// OTelConfig holds OpenTelemetry configuration.
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	EnableTracing  bool
	EnableMetrics  bool
	TraceExporter  string // "stdout" or "none"
	SampleRatio    float64
}

// OTelProviders holds the initialized OpenTelemetry providers and the
// Prometheus exposition handler for /metrics.
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	PrometheusHTTP http.Handler
	Logger         *slog.Logger
}

// DefaultOTelConfig returns the default observability configuration.
func DefaultOTelConfig() *OTelConfig {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	return &OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: contracts.Version,
		Environment:    env,
		EnableTracing:  env == "development",
		EnableMetrics:  true,
		TraceExporter:  "stdout",
		SampleRatio:    1.0,
	}
}

// InitializeOTel sets up tracing and metrics according to cfg.
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = DefaultOTelConfig()
	}
	ctx := context.Background()

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
	)

	providers := &OTelProviders{Logger: logger}

	if cfg.EnableTracing {
		if err := initializeTracing(cfg, res, providers); err != nil {
			return nil, fmt.Errorf("initialize tracing: %w", err)
		}
	}
	if cfg.EnableMetrics {
		if err := initializeMetrics(res, providers); err != nil {
			return nil, fmt.Errorf("initialize metrics: %w", err)
		}
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.InfoContext(ctx, "opentelemetry initialized",
		slog.String("service", cfg.ServiceName),
		slog.String("environment", cfg.Environment),
		slog.Bool("tracing", cfg.EnableTracing),
		slog.Bool("metrics", cfg.EnableMetrics),
	)
	return providers, nil
}

func initializeTracing(cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	}

	if cfg.TraceExporter == "stdout" {
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return fmt.Errorf("create stdout trace exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	providers.TracerProvider = sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(providers.TracerProvider)
	providers.Tracer = providers.TracerProvider.Tracer(MeterName)
	return nil
}

func initializeMetrics(res *resource.Resource, providers *OTelProviders) error {
	exporter, err := prometheus.New()
	if err != nil {
		return fmt.Errorf("create prometheus exporter: %w", err)
	}

	providers.MeterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(providers.MeterProvider)
	providers.Meter = providers.MeterProvider.Meter(MeterName)
	providers.PrometheusHTTP = promhttp.Handler()
	return nil
}

// PipelineMetrics carries the instruments the analytics service records:
// dataset ingestion, pipeline passes, the content cache, the HTTP surface,
// and the WebSocket refresh channel.
type PipelineMetrics struct {
	DatasetsLoaded    metric.Int64Counter
	RowsNormalized    metric.Int64Counter
	DataDefects       metric.Int64Counter
	SnapshotsComputed metric.Int64Counter
	PipelineDuration  metric.Float64Histogram
	CacheHits         metric.Int64Counter
	CacheMisses       metric.Int64Counter

	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	WSClientsConnected metric.Int64UpDownCounter
}

// CreatePipelineMetrics registers every pipeline instrument on the meter.
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	var m PipelineMetrics
	var err error

	if m.DatasetsLoaded, err = meter.Int64Counter(
		"datasets_loaded_total",
		metric.WithDescription("Total number of production datasets loaded"),
	); err != nil {
		return nil, err
	}
	if m.RowsNormalized, err = meter.Int64Counter(
		"rows_normalized_total",
		metric.WithDescription("Total number of raw table rows normalized"),
	); err != nil {
		return nil, err
	}
	if m.DataDefects, err = meter.Int64Counter(
		"data_defects_total",
		metric.WithDescription("Recoverable data defects by category"),
	); err != nil {
		return nil, err
	}
	if m.SnapshotsComputed, err = meter.Int64Counter(
		"snapshots_computed_total",
		metric.WithDescription("Total number of analysis snapshots computed"),
	); err != nil {
		return nil, err
	}
	if m.PipelineDuration, err = meter.Float64Histogram(
		"pipeline_duration_seconds",
		metric.WithDescription("Analysis pipeline pass duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.CacheHits, err = meter.Int64Counter(
		"snapshot_cache_hits_total",
		metric.WithDescription("Snapshot cache hits"),
	); err != nil {
		return nil, err
	}
	if m.CacheMisses, err = meter.Int64Counter(
		"snapshot_cache_misses_total",
		metric.WithDescription("Snapshot cache misses"),
	); err != nil {
		return nil, err
	}
	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	); err != nil {
		return nil, err
	}
	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.HTTPActiveRequests, err = meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
	); err != nil {
		return nil, err
	}
	if m.WSClientsConnected, err = meter.Int64UpDownCounter(
		"websocket_clients_connected",
		metric.WithDescription("Connected WebSocket dashboard clients"),
	); err != nil {
		return nil, err
	}

	return &m, nil
}

// Shutdown flushes and stops the providers.
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error
	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("opentelemetry shutdown errors: %v", errs)
	}
	return nil
}
