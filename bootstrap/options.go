package bootstrap

import (
	"io"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/injectkit/config"
	"github.com/kbukum/injectkit/di"
	"github.com/kbukum/injectkit/logger"
	"github.com/kbukum/injectkit/observability"
)

// Option configures the App during creation.
// Options are non-generic so they can be used with any config type.
type Option func(*appOptions)

// appOptions collects all option values before applying to App.
type appOptions struct {
	logger          *logger.Logger
	gracefulTimeout *time.Duration
	meterProvider   metric.MeterProvider
	tracerProvider  trace.TracerProvider
	injectorOpts    []di.Option
	checkers        []observability.HealthChecker
	summaryOut      io.Writer
	loaderOpts      []config.LoaderOption
}

// resolveOptions applies all options and returns the collected values.
func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom logger for the application.
// If not set, the logger is initialized from the config's Logging field.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithGracefulTimeout sets the maximum duration for graceful shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = &d
	}
}

// WithMeterProvider records injector metrics through mp instead of an OTLP
// exporter built from config. The caller owns mp's shutdown.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *appOptions) {
		o.meterProvider = mp
	}
}

// WithTracerProvider traces compilation through tp instead of an OTLP
// exporter built from config. The caller owns tp's shutdown.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *appOptions) {
		o.tracerProvider = tp
	}
}

// WithInjectorOptions appends options for the root injector. They are
// applied after the ones derived from config.
func WithInjectorOptions(opts ...di.Option) Option {
	return func(o *appOptions) {
		o.injectorOpts = append(o.injectorOpts, opts...)
	}
}

// WithHealthCheckers adds checkers to the ready check next to the injector.
func WithHealthCheckers(checkers ...observability.HealthChecker) Option {
	return func(o *appOptions) {
		o.checkers = append(o.checkers, checkers...)
	}
}

// WithSummaryOutput sets where the startup summary is printed. Defaults to
// stdout.
func WithSummaryOutput(w io.Writer) Option {
	return func(o *appOptions) {
		o.summaryOut = w
	}
}

// WithLoaderOptions passes options to config.LoadConfig when the App is
// created with Load.
func WithLoaderOptions(opts ...config.LoaderOption) Option {
	return func(o *appOptions) {
		o.loaderOpts = append(o.loaderOpts, opts...)
	}
}
