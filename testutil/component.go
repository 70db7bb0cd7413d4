package testutil

import (
	"context"

	"github.com/kapeta/sdk-go-redis/component"
)

// TestComponent is a component whose state tests can reset, capture and
// restore between cases.
type TestComponent interface {
	component.Component

	// Reset returns the component to its initial state.
	Reset(ctx context.Context) error

	// Snapshot captures the current state for a later Restore.
	Snapshot(ctx context.Context) (interface{}, error)

	// Restore returns the component to a state captured by Snapshot.
	Restore(ctx context.Context, snapshot interface{}) error
}
