package redis

import (
	"context"
	stderrors "errors"
	"fmt"
	"maps"

	"github.com/kapeta/sdk-go-redis/component"
	"github.com/kapeta/sdk-go-redis/config"
	"github.com/kapeta/sdk-go-redis/errors"
	"github.com/kapeta/sdk-go-redis/logger"
)

// DB is a Redis client handle that connects once configuration is ready.
// Client fails with NOT_READY until the connection has been established.
// A failed connection is logged and leaves the handle permanently not ready.
type DB struct {
	resourceName string
	options      Options
	connectOpts  []ConnectOption
	cell         *component.Deferred[*Client]
	log          *logger.Logger
}

var (
	_ component.Component   = (*DB)(nil)
	_ component.Describable = (*DB)(nil)
)

// NewDB creates a handle for the named resource and registers its
// initialization on ready. It never blocks. options are copied.
func NewDB(ready *config.Readiness, resourceName string, options Options, opts ...ConnectOption) *DB {
	db := &DB{
		resourceName: resourceName,
		options:      maps.Clone(options),
		connectOpts:  opts,
		cell: component.NewDeferred[*Client](handleName(resourceName)).
			WithCloser(func(c *Client) error { return c.Close() }),
		log: newConnectConfig(opts).log,
	}
	ready.OnReady(db.init)
	return db
}

func handleName(resourceName string) string {
	return "RedisDB " + resourceName
}

func (db *DB) init(ctx context.Context, provider config.Provider) {
	err := db.cell.Initialize(ctx, func(ctx context.Context) (*Client, error) {
		return CreateClient(ctx, provider, db.resourceName, db.options, db.connectOpts...)
	})
	switch {
	case err == nil:
	case stderrors.Is(err, component.ErrAlreadyInitialized):
		db.log.Debug("Redis initialization already attempted", logger.Fields(logger.FieldResource, db.resourceName))
	case stderrors.Is(err, component.ErrClosed):
		db.log.Debug("Redis handle stopped before initialization completed", logger.Fields(logger.FieldResource, db.resourceName))
	default:
		db.log.Error("Redis initialization failed", logger.Fields(
			logger.FieldResource, db.resourceName,
			logger.FieldError, err.Error(),
		))
	}
}

// Client returns the connected client, the same one on every call.
func (db *DB) Client() (*Client, error) {
	if client, ok := db.cell.Get(); ok {
		return client, nil
	}
	return nil, errors.NotReady(handleName(db.resourceName))
}

// Ready returns a channel closed once the client is connected. It never
// closes if initialization fails.
func (db *DB) Ready() <-chan struct{} {
	return db.cell.Done()
}

// ResourceName returns the resource the handle connects to.
func (db *DB) ResourceName() string {
	return db.resourceName
}

// Name returns the component name.
func (db *DB) Name() string {
	return "redis:" + db.resourceName
}

// Start is a no-op; the handle connects when configuration is ready.
func (db *DB) Start(context.Context) error {
	return nil
}

// Stop closes the client if it was connected. A connection still being
// established is closed as soon as it completes and never handed out.
func (db *DB) Stop(context.Context) error {
	return db.cell.Close()
}

// Health reports unhealthy until connected, then the result of a PING.
func (db *DB) Health(ctx context.Context) component.Health {
	client, err := db.Client()
	if err != nil {
		return component.Health{
			Name:    db.Name(),
			Status:  component.StatusUnhealthy,
			Message: db.cell.State().String(),
		}
	}
	if err := client.Ping(ctx); err != nil {
		return component.Health{
			Name:    db.Name(),
			Status:  component.StatusUnhealthy,
			Message: fmt.Sprintf("ping failed: %v", err),
		}
	}
	return component.Health{Name: db.Name(), Status: component.StatusHealthy}
}

// Describe summarizes the handle for the startup log.
func (db *DB) Describe() component.Description {
	details := fmt.Sprintf("resource=%s state=%s", db.resourceName, db.cell.State())
	if client, ok := db.cell.Get(); ok {
		details += " addr=" + client.Addr()
	}
	return component.Description{Name: "Redis", Type: "redis", Details: details}
}
