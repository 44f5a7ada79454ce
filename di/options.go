package di

import (
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/injectkit/logger"
	"github.com/kbukum/injectkit/observability"
)

// Option configures an injector created with New. Children inherit the
// options of their parent.
type Option func(*options)

type options struct {
	name          string
	log           *logger.Logger
	metrics       *observability.ResolverMetrics
	tracer        trace.Tracer
	warnUnmatched bool
	entityTypes   []*Type
}

func defaultOptions() options {
	return options{
		name:          "root",
		warnUnmatched: true,
	}
}

// WithName sets the diagnostic name of the root injector.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithLogger sets the logger. The default is the global logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithMetrics records resolver metrics on m.
func WithMetrics(m *observability.ResolverMetrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithTracer wraps every resolver compilation in a span from tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) { o.tracer = tracer }
}

// WithUnmatchedSystemWarnings controls the warning logged when a system
// matches no registered entity class. Enabled by default.
func WithUnmatchedSystemWarnings(enabled bool) Option {
	return func(o *options) { o.warnUnmatched = enabled }
}

// WithEntityTypes registers entity classes at construction.
func WithEntityTypes(types ...*Type) Option {
	return func(o *options) { o.entityTypes = append(o.entityTypes, types...) }
}
