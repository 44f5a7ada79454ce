package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/injectkit/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Resolution modes used as the "mode" attribute.
const (
	ModeClass  = "class"
	ModeType   = "type"
	ModeSystem = "system"
)

// ResolverMetrics holds the instruments recorded by an injector tree.
// A nil *ResolverMetrics records nothing.
type ResolverMetrics struct {
	compileTotal     metric.Int64Counter
	compileDuration  metric.Float64Histogram
	resolveTotal     metric.Int64Counter
	singletonCreated metric.Int64Counter
	errorTotal       metric.Int64Counter
	systemsCreated   metric.Int64Counter
}

// NewResolverMetrics creates the resolver instruments on the given meter.
func NewResolverMetrics(meter metric.Meter) (*ResolverMetrics, error) {
	compileTotal, err := meter.Int64Counter("di.compile.total",
		metric.WithDescription("Total number of compiled resolver arrays"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.compile.total counter: %w", err)
	}

	compileDuration, err := meter.Float64Histogram("di.compile.duration",
		metric.WithDescription("Duration of resolver compilation in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.compile.duration histogram: %w", err)
	}

	resolveTotal, err := meter.Int64Counter("di.resolve.total",
		metric.WithDescription("Total number of resolution requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.resolve.total counter: %w", err)
	}

	singletonCreated, err := meter.Int64Counter("di.singleton.created",
		metric.WithDescription("Total number of singleton instances created"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.singleton.created counter: %w", err)
	}

	errorTotal, err := meter.Int64Counter("di.error.total",
		metric.WithDescription("Total resolution errors by code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.error.total counter: %w", err)
	}

	systemsCreated, err := meter.Int64Counter("di.systems.created",
		metric.WithDescription("Total number of system instances created for entities"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.systems.created counter: %w", err)
	}

	return &ResolverMetrics{
		compileTotal:     compileTotal,
		compileDuration:  compileDuration,
		resolveTotal:     resolveTotal,
		singletonCreated: singletonCreated,
		errorTotal:       errorTotal,
		systemsCreated:   systemsCreated,
	}, nil
}

// RecordCompile records one resolver compilation for typeName.
func (m *ResolverMetrics) RecordCompile(ctx context.Context, typeName, mode string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("type", typeName),
		attribute.String("mode", mode),
	)
	m.compileTotal.Add(ctx, 1, attrs)
	m.compileDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordResolve records a resolution request.
func (m *ResolverMetrics) RecordResolve(ctx context.Context, mode string) {
	if m == nil {
		return
	}
	m.resolveTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", mode)))
}

// RecordSingleton records the creation of a singleton instance.
func (m *ResolverMetrics) RecordSingleton(ctx context.Context, typeName string) {
	if m == nil {
		return
	}
	m.singletonCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("type", typeName)))
}

// RecordError records a failed resolution or compilation by error code.
func (m *ResolverMetrics) RecordError(ctx context.Context, code, mode string) {
	if m == nil {
		return
	}
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
		attribute.String("mode", mode),
	))
}

// RecordSystems records count system instances created for an entity class.
func (m *ResolverMetrics) RecordSystems(ctx context.Context, entityType string, count int) {
	if m == nil || count == 0 {
		return
	}
	m.systemsCreated.Add(ctx, int64(count), metric.WithAttributes(attribute.String("entity", entityType)))
}
