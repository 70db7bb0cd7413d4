package bootstrap

import (
	"time"

	"github.com/kapeta/sdk-go-redis/config"
	"github.com/kapeta/sdk-go-redis/logger"
)

// Option configures the App during creation.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	provider        config.Provider
	gracefulTimeout *time.Duration
	readyTimeout    *time.Duration
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom logger. By default the global logger is
// initialized from the config's Logging section.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithProvider sets the configuration provider resolved at startup instead
// of the one built from kapeta.resources and the environment.
func WithProvider(p config.Provider) Option {
	return func(o *appOptions) {
		o.provider = p
	}
}

// WithGracefulTimeout sets the maximum duration for graceful shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = &d
	}
}

// WithReadyTimeout bounds how long startup waits for configuration-ready
// callbacks, such as redis.DB connections, to finish.
func WithReadyTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.readyTimeout = &d
	}
}
