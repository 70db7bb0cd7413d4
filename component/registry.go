package component

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kapeta/sdk-go-redis/errors"
	"github.com/kapeta/sdk-go-redis/logger"
)

const defaultStopTimeout = 10 * time.Second

type componentEntry struct {
	component Component
	started   bool
}

// Registry manages component lifecycle with deterministic ordering.
// Components are started in registration order and stopped in reverse order.
type Registry struct {
	entries []*componentEntry
	lookup  map[string]*componentEntry
	log     *logger.Logger
	mu      sync.RWMutex
}

// NewRegistry creates a new component registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make([]*componentEntry, 0),
		lookup:  make(map[string]*componentEntry),
		log:     logger.WithComponent("registry"),
	}
}

// Register adds a component to the registry.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, exists := r.lookup[name]; exists {
		return errors.AlreadyExists("component " + name)
	}

	entry := &componentEntry{component: c}
	r.entries = append(r.entries, entry)
	r.lookup[name] = entry

	r.log.Debug("Component registered", logger.Fields(logger.FieldComponent, name))
	return nil
}

// StartAll starts all components in registration order and stops at the first failure.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, entry := range r.entries {
		if entry.started {
			continue
		}
		name := entry.component.Name()
		if err := entry.component.Start(ctx); err != nil {
			r.log.Error("Component start failed", logger.Fields(
				logger.FieldComponent, name,
				logger.FieldError, err.Error(),
			))
			return fmt.Errorf("failed to start %s: %w", name, err)
		}
		entry.started = true

		fields := logger.Fields(logger.FieldComponent, name)
		if d, ok := entry.component.(Describable); ok {
			desc := d.Describe()
			fields["type"] = desc.Type
			fields["details"] = desc.Details
		}
		r.log.Debug("Component started", fields)
	}
	return nil
}

// StopAll stops started components in reverse registration order.
// Every component is attempted; errors are collected.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for i := len(r.entries) - 1; i >= 0; i-- {
		entry := r.entries[i]
		if !entry.started {
			continue
		}

		name := entry.component.Name()
		stopCtx, cancel := context.WithTimeout(ctx, defaultStopTimeout)
		if err := entry.component.Stop(stopCtx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop %s: %w", name, err))
			r.log.Error("Component stop failed", logger.Fields(
				logger.FieldComponent, name,
				logger.FieldError, err.Error(),
			))
		}
		entry.started = false
		cancel()
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

// HealthAll returns health status for all registered components.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]Health, 0, len(r.entries))
	for _, entry := range r.entries {
		results = append(results, entry.component.Health(ctx))
	}
	return results
}

// Get returns a registered component by name, or nil if not found.
func (r *Registry) Get(name string) Component {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if entry, exists := r.lookup[name]; exists {
		return entry.component
	}
	return nil
}

// All returns all registered components in registration order.
func (r *Registry) All() []Component {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Component, 0, len(r.entries))
	for _, entry := range r.entries {
		result = append(result, entry.component)
	}
	return result
}
