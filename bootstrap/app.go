package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/kbukum/injectkit/config"
	"github.com/kbukum/injectkit/di"
	"github.com/kbukum/injectkit/errors"
	"github.com/kbukum/injectkit/logger"
	"github.com/kbukum/injectkit/observability"
)

// App is an application built around a root injector.
// The type parameter C is the config type; any struct embedding
// config.Config satisfies Config.
type App[C Config] struct {
	Name     string
	Version  string
	Cfg      C
	Injector *di.Injector
	Logger   *logger.Logger
	Metrics  *observability.ResolverMetrics
	Summary  *Summary

	gracefulTimeout time.Duration
	checkers        []observability.HealthChecker
	telemetry       *telemetry
	onConfigure     []func(ctx context.Context, app *App[C]) error

	onStart []Hook
	onReady []Hook
	onStop  []Hook

	stopOnce sync.Once
	stopErr  error
}

// New creates an application from a typed config. It applies defaults,
// validates, initializes the logger and telemetry, builds the root injector
// and applies the configured bindings, resolving type names through catalog.
// catalog may be nil when the config declares no bindings.
func New[C Config](cfg C, catalog *di.Catalog, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	base := cfg.GetConfig()
	o := resolveOptions(opts)

	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		gracefulTimeout: 15 * time.Second,
		checkers:        o.checkers,
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}

	// Logger: use custom if provided, otherwise init from config.
	if o.logger != nil {
		app.Logger = o.logger
	} else {
		app.Logger = logger.New(&base.Logging, base.Name)
		logger.SetGlobalLogger(app.Logger)
		logger.RegisterDefaults("inspect")
	}
	logger.Register(base.Name, app.Logger)

	ctx := context.Background()
	tel, err := setupTelemetry(ctx, base, o)
	if err != nil {
		return nil, err
	}
	app.telemetry = tel
	app.Metrics = tel.metrics

	if err := app.build(ctx, base, catalog, o); err != nil {
		_ = tel.close(ctx)
		return nil, err
	}

	app.Summary = NewSummary(base.Name, base.Version, o.summaryOut)
	return app, nil
}

// Load fills cfg with config.LoadConfig and then creates the App with New.
// name selects the config and .env files, and becomes the app name when the
// loaded config sets none.
func Load[C Config](name string, cfg C, catalog *di.Catalog, opts ...Option) (*App[C], error) {
	o := resolveOptions(opts)
	if err := config.LoadConfig(name, cfg, o.loaderOpts...); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if base := cfg.GetConfig(); base.Name == "" {
		base.Name = name
	}
	return New(cfg, catalog, opts...)
}

// build creates the root injector, registers bindings and optionally
// validates the graph, inside one span when tracing is on.
func (a *App[C]) build(ctx context.Context, base *config.Config, catalog *di.Catalog, o *appOptions) (err error) {
	if a.telemetry.tracer != nil {
		_, span := a.telemetry.tracer.Start(ctx, observability.SpanBootstrapBuild)
		defer func() { observability.EndSpan(span, err) }()
	}

	injOpts := []di.Option{
		di.WithName(base.Name),
		di.WithLogger(a.Logger),
		di.WithUnmatchedSystemWarnings(base.Injector.WarnUnmatched()),
	}
	if a.telemetry.metrics != nil {
		injOpts = append(injOpts, di.WithMetrics(a.telemetry.metrics))
	}
	if a.telemetry.tracer != nil {
		injOpts = append(injOpts, di.WithTracer(a.telemetry.tracer))
	}
	a.Injector = di.New(append(injOpts, o.injectorOpts...)...)

	if err := applyBindings(a.Injector, catalog, base); err != nil {
		return err
	}

	if base.Injector.ValidateOnBuild {
		if err := a.Injector.Validate(); err != nil {
			return fmt.Errorf("injector validation: %w", err)
		}
	}
	return nil
}

func applyBindings(inj *di.Injector, catalog *di.Catalog, base *config.Config) error {
	if len(base.Bindings) == 0 && len(base.TypeBindings) == 0 {
		return nil
	}
	if catalog == nil {
		return errors.InvalidConfig("bindings configured without a catalog")
	}

	classes := make([]di.Binding, len(base.Bindings))
	for i, b := range base.Bindings {
		classes[i] = di.Binding{Type: b.Type, ID: di.ID(b.ID), Scope: b.Scope}
	}
	types := make([]di.TypeBinding, len(base.TypeBindings))
	for i, b := range base.TypeBindings {
		types[i] = di.TypeBinding{ID: di.ID(b.ID), Class: b.Class, ClassID: di.ID(b.ClassID), Scope: b.Scope}
	}
	return inj.ApplyBindings(catalog, classes, types)
}

// OnConfigure registers a callback to run during the configure phase.
// Use this to map business types and resolve the objects the app needs.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.onConfigure = append(a.onConfigure, fn)
}

// Health aggregates the root injector and the extra checkers.
func (a *App[C]) Health(ctx context.Context) *observability.ServiceHealth {
	checkers := append([]observability.HealthChecker{a.Injector}, a.checkers...)
	return observability.CheckAll(ctx, a.Name, a.Version, checkers...)
}

// ReadyCheck verifies that every checked component is up.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var unhealthy []string
	for _, h := range a.Health(ctx).Components {
		if h.Status != observability.HealthStatusUp {
			detail := h.Name + "=" + string(h.Status)
			if h.Message != "" {
				detail += "(" + h.Message + ")"
			}
			unhealthy = append(unhealthy, detail)
		}
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %s", strings.Join(unhealthy, ", "))
	}
	return nil
}

// Run executes the full lifecycle for long-running services:
// OnStart hooks → Configure → ReadyCheck → OnReady hooks →
// Block on signal → Shutdown.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		_ = a.Shutdown(context.Background())
		return err
	}

	a.Logger.Info("Application ready, waiting for shutdown signal")
	a.WaitForSignal(ctx)

	return a.Shutdown(context.Background())
}

// RunTask executes a finite task with the full bootstrap lifecycle and
// shuts down when the task returns or the context is canceled (e.g. via
// SIGINT/SIGTERM). The task error wins over a shutdown error.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		_ = a.Shutdown(context.Background())
		return err
	}

	taskCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	taskErr := task(taskCtx)

	if stopErr := a.Shutdown(context.Background()); stopErr != nil && taskErr == nil {
		return stopErr
	}
	return taskErr
}

// startup performs the initialization sequence shared by Run and RunTask.
func (a *App[C]) startup(ctx context.Context) error {
	start := time.Now()

	a.Logger.Info("Starting application", map[string]interface{}{
		"name":     a.Name,
		"version":  a.Version,
		"registry": a.Injector.ID(),
	})

	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}

	if err := a.configure(ctx); err != nil {
		return fmt.Errorf("configuration failed: %w", err)
	}

	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if err := runHooks(ctx, a.onReady); err != nil {
		return fmt.Errorf("onReady hook failed: %w", err)
	}

	elapsed := time.Since(start)
	a.Logger.Info("Startup complete", logger.DurationFields("startup", elapsed))
	a.Summary.SetStartupDuration(elapsed)
	a.DisplaySummary(ctx)

	return nil
}

// configure runs registered configuration callbacks.
func (a *App[C]) configure(ctx context.Context) error {
	if len(a.onConfigure) == 0 {
		return nil
	}

	a.Logger.Info("Running configuration callbacks", map[string]interface{}{
		"count": len(a.onConfigure),
	})

	for _, fn := range a.onConfigure {
		if err := fn(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// DisplaySummary prints the registry tree and live health.
func (a *App[C]) DisplaySummary(ctx context.Context) {
	a.Summary.Display(a.Injector.Tree(), a.Health(ctx))
}

// WaitForSignal blocks until an OS interrupt/term signal or context cancellation.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal", map[string]interface{}{
			"signal": sig.String(),
		})
		return sig
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
		return nil
	}
}

// Shutdown runs OnStop hooks, disposes the root injector and flushes the
// telemetry providers bootstrap created, all within the graceful timeout.
// Later calls return the first result.
func (a *App[C]) Shutdown(ctx context.Context) error {
	a.stopOnce.Do(func() {
		a.stopErr = a.stop(ctx)
	})
	return a.stopErr
}

func (a *App[C]) stop(parent context.Context) error {
	a.Logger.Info("Shutting down application", map[string]interface{}{
		"timeout": a.gracefulTimeout.String(),
	})

	ctx, cancel := context.WithTimeout(parent, a.gracefulTimeout)
	defer cancel()

	var shutdownErr error

	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", logger.ErrorFields("shutdown", err))
		shutdownErr = err
	}

	a.Injector.Dispose()

	if err := a.telemetry.close(ctx); err != nil {
		a.Logger.Error("Telemetry shutdown error", logger.ErrorFields("shutdown", err))
		if shutdownErr == nil {
			shutdownErr = err
		}
	}

	a.Logger.Info("Application shutdown complete")
	return shutdownErr
}
