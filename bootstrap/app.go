package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kapeta/sdk-go-redis/component"
	"github.com/kapeta/sdk-go-redis/config"
	"github.com/kapeta/sdk-go-redis/logger"
	"github.com/kapeta/sdk-go-redis/version"
)

const (
	defaultGracefulTimeout = 15 * time.Second
	defaultReadyTimeout    = 30 * time.Second
)

// App runs a service with uniform lifecycle management. C is the config type.
//
// Startup starts registered components, runs OnStart hooks, resolves Ready
// with the configuration provider, waits for the ready callbacks and runs
// OnReady hooks. Shutdown runs OnStop hooks and stops components in reverse.
//
//	app, err := bootstrap.NewApp(&cfg)
//	cache := redis.NewDB(app.Ready, "cache", nil)
//	app.RegisterComponent(cache)
//	app.Run(ctx)
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Components *component.Registry
	Logger     *logger.Logger
	Ready      *config.Readiness

	provider        config.Provider
	gracefulTimeout time.Duration
	readyTimeout    time.Duration

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// NewApp applies config defaults, validates the config and initializes the
// logger.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	base := cfg.GetServiceConfig()
	if base.Version == "" {
		base.Version = version.Get().Version
	}
	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		Components:      component.NewRegistry(),
		Ready:           config.NewReadiness(),
		gracefulTimeout: defaultGracefulTimeout,
		readyTimeout:    defaultReadyTimeout,
	}

	o := resolveOptions(opts)
	app.provider = o.provider
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}
	if o.readyTimeout != nil {
		app.readyTimeout = *o.readyTimeout
	}
	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(&base.Logging)
		app.Logger = logger.GetGlobalLogger()
	}
	return app, nil
}

// RegisterComponent adds a component to the application's registry.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// ReadyCheck verifies that all registered components are healthy.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var unhealthy []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status == component.StatusHealthy {
			continue
		}
		detail := h.Name + "=" + string(h.Status)
		if h.Message != "" {
			detail += "(" + h.Message + ")"
		}
		unhealthy = append(unhealthy, detail)
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %v", unhealthy)
	}
	return nil
}

// Run starts the application, blocks until a shutdown signal or ctx is
// canceled, then shuts down gracefully.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}

	a.Logger.Info("Application ready, waiting for shutdown signal")
	a.WaitForSignal(ctx)
	return a.stop()
}

// RunTask starts the application, runs task and shuts down when it returns.
// SIGINT and SIGTERM cancel the task's context. The task error takes
// precedence over shutdown errors.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.Start(ctx); err != nil {
		return err
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("Received signal, canceling task", logger.Fields("signal", sig.String()))
			cancel()
		case <-taskCtx.Done():
		}
	}()

	taskErr := task(taskCtx)
	if stopErr := a.stop(); stopErr != nil && taskErr == nil {
		return stopErr
	}
	return taskErr
}

// Start runs the startup sequence without blocking. Pair it with Shutdown
// when managing the lifecycle yourself.
func (a *App[C]) Start(ctx context.Context) error {
	start := time.Now()
	a.Logger.Info("Starting application", logger.Fields("name", a.Name, "version", a.Version))

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}

	if err := a.resolveConfiguration(ctx); err != nil {
		return fmt.Errorf("configuration failed: %w", err)
	}

	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", logger.Fields(logger.FieldError, err.Error()))
	}

	if err := runHooks(ctx, a.onReady); err != nil {
		return fmt.Errorf("onReady hook failed: %w", err)
	}

	a.logSummary(ctx, time.Since(start))
	return nil
}

// resolveConfiguration resolves Ready and waits, up to the ready timeout,
// for the dispatched callbacks.
func (a *App[C]) resolveConfiguration(ctx context.Context) error {
	provider, err := a.buildProvider()
	if err != nil {
		return err
	}
	if err := a.Ready.Resolve(ctx, provider); err != nil {
		return err
	}

	done := make(chan struct{})
	go func() {
		a.Ready.Wait()
		close(done)
	}()

	timer := time.NewTimer(a.readyTimeout)
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
		a.Logger.Warn("Configuration ready callbacks still running", logger.Fields(
			"timeout", a.readyTimeout.String(),
		))
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// buildProvider returns the WithProvider provider, or the declared
// kapeta.resources followed by the platform environment.
func (a *App[C]) buildProvider() (config.Provider, error) {
	if a.provider != nil {
		return a.provider, nil
	}
	static, err := config.NewStaticProvider(a.Cfg.GetKapetaConfig().Resources)
	if err != nil {
		return nil, fmt.Errorf("kapeta.resources: %w", err)
	}
	return config.Chain(static, config.NewEnvProvider()), nil
}

// WaitForSignal blocks until SIGINT, SIGTERM or ctx cancellation.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal", logger.Fields("signal", sig.String()))
		return sig
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
		return nil
	}
}

// Shutdown performs graceful shutdown.
func (a *App[C]) Shutdown(_ context.Context) error {
	return a.stop()
}

func (a *App[C]) stop() error {
	a.Logger.Info("Shutting down application", logger.Fields("timeout", a.gracefulTimeout.String()))

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var shutdownErr error
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", logger.Fields(logger.FieldError, err.Error()))
		shutdownErr = err
	}
	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("Shutdown completed with errors", logger.Fields(logger.FieldError, err.Error()))
		if shutdownErr == nil {
			shutdownErr = err
		}
	}

	a.Logger.Info("Application shutdown complete")
	return shutdownErr
}
