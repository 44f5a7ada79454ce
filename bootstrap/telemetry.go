package bootstrap

import (
	"context"
	stderrors "errors"
	"fmt"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/injectkit/config"
	"github.com/kbukum/injectkit/observability"
)

const instrumentationName = "github.com/kbukum/injectkit/di"

// telemetry holds the instruments handed to the root injector and the
// providers bootstrap created and therefore shuts down.
type telemetry struct {
	metrics  *observability.ResolverMetrics
	tracer   trace.Tracer
	shutdown []func(context.Context) error
}

func setupTelemetry(ctx context.Context, base *config.Config, o *appOptions) (*telemetry, error) {
	tel := &telemetry{}
	obs := base.Observability

	mp := o.meterProvider
	if mp == nil && obs.Metrics {
		p, err := observability.InitMeter(ctx, &observability.MeterConfig{
			ServiceName:    base.Name,
			ServiceVersion: base.Version,
			Environment:    base.Environment,
			Endpoint:       obs.Endpoint,
			Insecure:       obs.Insecure,
			Interval:       obs.Interval,
		})
		if err != nil {
			return nil, fmt.Errorf("meter: %w", err)
		}
		tel.shutdown = append(tel.shutdown, p.Shutdown)
		mp = p
	}
	if mp != nil {
		m, err := observability.NewResolverMetrics(mp.Meter(instrumentationName, metric.WithInstrumentationVersion(base.Version)))
		if err != nil {
			_ = tel.close(ctx)
			return nil, fmt.Errorf("resolver metrics: %w", err)
		}
		tel.metrics = m
	}

	tp := o.tracerProvider
	if tp == nil && obs.Tracing {
		p, err := observability.InitTracer(ctx, &observability.TracerConfig{
			ServiceName:    base.Name,
			ServiceVersion: base.Version,
			Environment:    base.Environment,
			Endpoint:       obs.Endpoint,
			Insecure:       obs.Insecure,
			SampleRate:     obs.SampleRate,
		})
		if err != nil {
			_ = tel.close(ctx)
			return nil, fmt.Errorf("tracer: %w", err)
		}
		tel.shutdown = append(tel.shutdown, p.Shutdown)
		tp = p
	}
	if tp != nil {
		tel.tracer = tp.Tracer(instrumentationName)
	}

	return tel, nil
}

// close shuts the owned providers down in reverse creation order.
func (t *telemetry) close(ctx context.Context) error {
	var errs []error
	for i := len(t.shutdown) - 1; i >= 0; i-- {
		if err := t.shutdown[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	t.shutdown = nil
	return stderrors.Join(errs...)
}
