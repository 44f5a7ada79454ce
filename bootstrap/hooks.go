package bootstrap

import (
	"context"
	"fmt"
)

// Hook is a lifecycle callback that runs during application startup or shutdown.
type Hook func(ctx context.Context) error

// OnStart registers a hook that runs first during startup, before the
// configure callbacks.
func (a *App[C]) OnStart(hooks ...Hook) {
	a.onStart = append(a.onStart, hooks...)
}

// OnReady registers a hook that runs after the ready check.
func (a *App[C]) OnReady(hooks ...Hook) {
	a.onReady = append(a.onReady, hooks...)
}

// OnStop registers a hook that runs during shutdown before the injector is
// disposed.
func (a *App[C]) OnStop(hooks ...Hook) {
	a.onStop = append(a.onStop, hooks...)
}

// runHooks executes a slice of hooks sequentially, returning the first error.
func runHooks(ctx context.Context, hooks []Hook) error {
	for i, h := range hooks {
		if err := h(ctx); err != nil {
			return fmt.Errorf("hook %d failed: %w", i, err)
		}
	}
	return nil
}
