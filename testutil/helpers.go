package testutil

import (
	"context"
	"testing"
)

// Setup starts c and returns a function that stops it.
func Setup(ctx context.Context, c TestComponent) (func() error, error) {
	if err := c.Start(ctx); err != nil {
		return nil, err
	}
	return func() error { return c.Stop(ctx) }, nil
}

// THelper binds component helpers to a testing.T, failing the test on error.
type THelper struct {
	t   testing.TB
	ctx context.Context
}

// T wraps t.
//
//	func TestCache(t *testing.T) {
//	    srv := redistest.NewComponent()
//	    testutil.T(t).Setup(srv) // stopped when the test ends
//	}
func T(t testing.TB) *THelper {
	return &THelper{t: t, ctx: context.Background()}
}

// WithContext sets the context passed to the component.
func (h *THelper) WithContext(ctx context.Context) *THelper {
	h.ctx = ctx
	return h
}

// Setup starts c and stops it during test cleanup.
func (h *THelper) Setup(c TestComponent) {
	h.t.Helper()
	if err := c.Start(h.ctx); err != nil {
		h.t.Fatalf("failed to start component %s: %v", c.Name(), err)
	}
	h.t.Cleanup(func() {
		if err := c.Stop(h.ctx); err != nil {
			h.t.Errorf("failed to stop component %s: %v", c.Name(), err)
		}
	})
}

// Reset resets c.
func (h *THelper) Reset(c TestComponent) {
	h.t.Helper()
	if err := c.Reset(h.ctx); err != nil {
		h.t.Fatalf("failed to reset component %s: %v", c.Name(), err)
	}
}

// Snapshot captures the state of c.
func (h *THelper) Snapshot(c TestComponent) interface{} {
	h.t.Helper()
	snapshot, err := c.Snapshot(h.ctx)
	if err != nil {
		h.t.Fatalf("failed to snapshot component %s: %v", c.Name(), err)
	}
	return snapshot
}

// Restore restores c to snapshot.
func (h *THelper) Restore(c TestComponent, snapshot interface{}) {
	h.t.Helper()
	if err := c.Restore(h.ctx, snapshot); err != nil {
		h.t.Fatalf("failed to restore component %s: %v", c.Name(), err)
	}
}
