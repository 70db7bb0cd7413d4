package testutil

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/kapeta/sdk-go-redis/component"
	"github.com/kapeta/sdk-go-redis/config"
	"github.com/kapeta/sdk-go-redis/testutil"
)

// Component is an in-memory Redis server backed by miniredis that can be
// declared as a Kapeta Redis resource.
type Component struct {
	username string
	password string

	mini    *miniredis.Miniredis
	client  *goredis.Client
	started bool
	mu      sync.RWMutex
}

var (
	_ component.Component    = (*Component)(nil)
	_ testutil.TestComponent = (*Component)(nil)
)

// Option configures a Component.
type Option func(*Component)

// WithCredentials makes the server require username and password.
func WithCredentials(username, password string) Option {
	return func(c *Component) {
		c.username = username
		c.password = password
	}
}

// NewComponent creates a new in-memory Redis test component.
func NewComponent(opts ...Option) *Component {
	c := &Component{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the component name.
func (c *Component) Name() string { return "redis-test" }

// Start launches the in-memory Redis server.
func (c *Component) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return fmt.Errorf("component already started")
	}

	mini, err := miniredis.Run()
	if err != nil {
		return fmt.Errorf("failed to start miniredis: %w", err)
	}
	if c.username != "" {
		mini.RequireUserAuth(c.username, c.password)
	}

	c.mini = mini
	c.client = goredis.NewClient(&goredis.Options{
		Addr:     mini.Addr(),
		Username: c.username,
		Password: c.password,
	})
	c.started = true
	return nil
}

// Stop shuts down the in-memory Redis server.
func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return nil
	}
	_ = c.client.Close()
	c.mini.Close()
	c.started = false
	return nil
}

// Health reports healthy while the server runs.
func (c *Component) Health(_ context.Context) component.Health {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.started {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Client returns a go-redis client for seeding and inspecting data, or nil
// before Start.
func (c *Component) Client() *goredis.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.client
}

// Server returns the miniredis instance, or nil before Start.
func (c *Component) Server() *miniredis.Miniredis {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mini
}

// Addr returns the server's host:port.
func (c *Component) Addr() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.mini == nil {
		return ""
	}
	return c.mini.Addr()
}

// Host returns the server's host.
func (c *Component) Host() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.mini == nil {
		return ""
	}
	return c.mini.Host()
}

// Port returns the server's port.
func (c *Component) Port() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.mini == nil {
		return 0
	}
	port, _ := strconv.Atoi(c.mini.Port())
	return port
}

// Declaration returns the server as a Redis resource declaration.
func (c *Component) Declaration() config.ResourceDeclaration {
	decl := config.ResourceDeclaration{
		Type:     "kapeta/resource-type-redis",
		PortType: "redis",
		Host:     c.Host(),
		Port:     c.Port(),
	}
	if c.username != "" {
		decl.Credentials = &config.Credentials{Username: c.username, Password: c.password}
	}
	return decl
}

// ResourceInfo returns the server as resolved resource information.
func (c *Component) ResourceInfo() *config.ResourceInfo {
	decl := c.Declaration()
	return &config.ResourceInfo{
		Type:        decl.Type,
		Host:        decl.Host,
		Port:        decl.Port,
		Credentials: decl.Credentials,
	}
}

// Provider returns a provider declaring the server under resourceName.
func (c *Component) Provider(resourceName string) (*config.StaticProvider, error) {
	return config.NewStaticProvider(map[string]config.ResourceDeclaration{
		resourceName: c.Declaration(),
	})
}

// Reset flushes all keys.
func (c *Component) Reset(_ context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.started {
		return fmt.Errorf("component not started")
	}
	c.mini.FlushAll()
	return nil
}

// Snapshot captures all string keys as a map[string]string.
func (c *Component) Snapshot(_ context.Context) (interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.started {
		return nil, fmt.Errorf("component not started")
	}

	snapshot := make(map[string]string)
	for _, key := range c.mini.Keys() {
		if val, err := c.mini.Get(key); err == nil {
			snapshot[key] = val
		}
	}
	return snapshot, nil
}

// Restore replaces all keys with a snapshot taken by Snapshot.
func (c *Component) Restore(_ context.Context, snap interface{}) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.started {
		return fmt.Errorf("component not started")
	}

	snapshot, ok := snap.(map[string]string)
	if !ok {
		return fmt.Errorf("invalid snapshot type: expected map[string]string, got %T", snap)
	}

	c.mini.FlushAll()
	for key, val := range snapshot {
		if err := c.mini.Set(key, val); err != nil {
			return fmt.Errorf("failed to restore key %q: %w", key, err)
		}
	}
	return nil
}
