package config

import (
	"context"
	stderrors "errors"
	"sync"

	"github.com/kapeta/sdk-go-redis/logger"
)

// ErrAlreadyResolved is returned by Resolve after the first call.
var ErrAlreadyResolved = stderrors.New("configuration readiness already resolved")

// ReadyFunc is called once a configuration Provider is available.
type ReadyFunc func(ctx context.Context, provider Provider)

// Readiness is a one-shot signal carrying the Provider once configuration
// is available. Each callback runs at most once in its own goroutine;
// callbacks registered after resolution are dispatched immediately.
type Readiness struct {
	mu        sync.Mutex
	provider  Provider
	ctx       context.Context
	resolved  bool
	callbacks []ReadyFunc
	done      chan struct{}
	inflight  int
	idle      *sync.Cond
}

// NewReadiness creates an unresolved Readiness.
func NewReadiness() *Readiness {
	r := &Readiness{done: make(chan struct{})}
	r.idle = sync.NewCond(&r.mu)
	return r
}

// OnReady registers fn to run when the Readiness resolves.
func (r *Readiness) OnReady(fn ReadyFunc) {
	if fn == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.resolved {
		r.callbacks = append(r.callbacks, fn)
		return
	}
	r.dispatch(r.ctx, r.provider, fn)
}

// Resolve stores the provider and dispatches every registered callback.
// Callbacks get a context that keeps ctx's values but not its cancellation.
func (r *Readiness) Resolve(ctx context.Context, provider Provider) error {
	if provider == nil {
		return stderrors.New("configuration readiness requires a provider")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.resolved {
		return ErrAlreadyResolved
	}

	r.resolved = true
	r.provider = provider
	r.ctx = context.WithoutCancel(ctx)
	close(r.done)

	pending := r.callbacks
	r.callbacks = nil

	logger.Debug("Configuration ready", logger.Fields("callbacks", len(pending)))
	for _, fn := range pending {
		r.dispatch(r.ctx, provider, fn)
	}
	return nil
}

// Done returns a channel closed when the Readiness resolves.
func (r *Readiness) Done() <-chan struct{} {
	return r.done
}

// Provider returns the resolved provider, or nil before resolution.
func (r *Readiness) Provider() Provider {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.provider
}

// Wait blocks until no dispatched callback is running, including callbacks
// registered after resolution. It returns immediately before Resolve.
func (r *Readiness) Wait() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for r.inflight > 0 {
		r.idle.Wait()
	}
}

// dispatch must be called with r.mu held.
func (r *Readiness) dispatch(ctx context.Context, provider Provider, fn ReadyFunc) {
	r.inflight++
	go func() {
		defer func() {
			r.mu.Lock()
			r.inflight--
			if r.inflight == 0 {
				r.idle.Broadcast()
			}
			r.mu.Unlock()
		}()
		fn(ctx, provider)
	}()
}
