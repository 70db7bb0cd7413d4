package component

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
)

// State is the lifecycle state of a Deferred value.
type State int

const (
	StatePending State = iota
	StateInitializing
	StateReady
	StateFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	// ErrAlreadyInitialized is returned when Initialize is called more than once.
	ErrAlreadyInitialized = stderrors.New("initialization already attempted")
	// ErrClosed is returned by Initialize once the cell has been closed.
	ErrClosed = stderrors.New("deferred value closed")
)

// Deferred holds a value produced by a single asynchronous initialization.
// The value moves from absent to present at most once and is never visible
// while the initializer is still running.
type Deferred[T any] struct {
	name      string
	mu        sync.RWMutex
	state     State
	value     T
	lastError error
	done      chan struct{}
	closer    func(T) error
}

// NewDeferred creates an empty Deferred cell.
func NewDeferred[T any](name string) *Deferred[T] {
	return &Deferred[T]{
		name: name,
		done: make(chan struct{}),
	}
}

// WithCloser sets the function used by Close to release a ready value.
func (d *Deferred[T]) WithCloser(fn func(T) error) *Deferred[T] {
	d.closer = fn
	return d
}

// Name returns the cell name.
func (d *Deferred[T]) Name() string {
	return d.name
}

// Initialize runs fn and stores its result. Only the first call runs fn;
// any later call returns ErrAlreadyInitialized, whatever the outcome of the first.
// A failed initialization leaves the cell permanently empty.
//
// If the cell is closed while fn runs, the value is released with the closer
// instead of being published and Initialize returns ErrClosed.
func (d *Deferred[T]) Initialize(ctx context.Context, fn func(context.Context) (T, error)) error {
	d.mu.Lock()
	switch d.state {
	case StatePending:
	case StateClosed:
		d.mu.Unlock()
		return ErrClosed
	default:
		d.mu.Unlock()
		return ErrAlreadyInitialized
	}
	d.state = StateInitializing
	d.mu.Unlock()

	value, err := fn(ctx)

	d.mu.Lock()
	if d.state == StateClosed {
		d.mu.Unlock()
		if err != nil {
			return stderrors.Join(ErrClosed, err)
		}
		if d.closer != nil {
			if cerr := d.closer(value); cerr != nil {
				return stderrors.Join(ErrClosed, cerr)
			}
		}
		return ErrClosed
	}
	defer d.mu.Unlock()
	if err != nil {
		d.state = StateFailed
		d.lastError = err
		return err
	}
	d.value = value
	d.state = StateReady
	close(d.done)
	return nil
}

// Get returns the value and true once the cell is ready.
func (d *Deferred[T]) Get() (T, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.state != StateReady {
		var zero T
		return zero, false
	}
	return d.value, true
}

// IsReady reports whether the value is available.
func (d *Deferred[T]) IsReady() bool {
	_, ok := d.Get()
	return ok
}

// State returns the current lifecycle state.
func (d *Deferred[T]) State() State {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

// Err returns the initialization error, if the initializer failed.
func (d *Deferred[T]) Err() error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lastError
}

// Done returns a channel closed when the value becomes available.
// It never closes if initialization fails.
func (d *Deferred[T]) Done() <-chan struct{} {
	return d.done
}

// Close marks the cell closed and releases a ready value using the closer.
// A pending cell never initializes afterwards; a value still being produced
// is released by Initialize when it arrives.
func (d *Deferred[T]) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch d.state {
	case StatePending, StateInitializing:
		d.state = StateClosed
		return nil
	case StateReady:
	default:
		return nil
	}
	value := d.value
	var zero T
	d.value = zero
	d.state = StateClosed
	if d.closer != nil {
		return d.closer(value)
	}
	return nil
}
