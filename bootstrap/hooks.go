package bootstrap

import (
	"context"
	"fmt"
)

// Hook is a lifecycle callback that runs during startup or shutdown.
type Hook func(ctx context.Context) error

// OnStart registers hooks that run after components are started and before
// configuration readiness is resolved.
func (a *App[C]) OnStart(hooks ...Hook) {
	a.onStart = append(a.onStart, hooks...)
}

// OnReady registers hooks that run once configuration is resolved and the
// ready callbacks have finished.
func (a *App[C]) OnReady(hooks ...Hook) {
	a.onReady = append(a.onReady, hooks...)
}

// OnStop registers hooks that run during shutdown before components stop.
func (a *App[C]) OnStop(hooks ...Hook) {
	a.onStop = append(a.onStop, hooks...)
}

func runHooks(ctx context.Context, hooks []Hook) error {
	for i, h := range hooks {
		if err := h(ctx); err != nil {
			return fmt.Errorf("hook %d failed: %w", i, err)
		}
	}
	return nil
}
