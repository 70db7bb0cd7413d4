package redis

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kapeta/sdk-go-redis/logger"
)

// Nil is returned by Get and GetJSON when the key does not exist.
const Nil = goredis.Nil

// IsNil reports whether err means the key does not exist.
func IsNil(err error) bool {
	return stderrors.Is(err, goredis.Nil)
}

// Client is a connected go-redis client bound to a Kapeta resource.
type Client struct {
	rdb          *goredis.Client
	log          *logger.Logger
	resourceName string
	addr         string
	closed       bool
	mu           sync.Mutex
}

func newClient(rdb *goredis.Client, log *logger.Logger, resourceName, addr string) *Client {
	return &Client{rdb: rdb, log: log, resourceName: resourceName, addr: addr}
}

// Ping verifies the Redis connection is alive.
func (c *Client) Ping(ctx context.Context) error {
	pong, err := c.rdb.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	if pong != "PONG" {
		return fmt.Errorf("unexpected redis ping response: %s", pong)
	}
	return nil
}

// Get retrieves a value by key.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	return c.rdb.Get(ctx, key).Result()
}

// Set stores a value with a key and expiration. Zero expiration means none.
func (c *Client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.rdb.Set(ctx, key, value, expiration).Err()
}

// Del deletes one or more keys.
func (c *Client) Del(ctx context.Context, keys ...string) error {
	return c.rdb.Del(ctx, keys...).Err()
}

// Exists returns how many of the keys exist.
func (c *Client) Exists(ctx context.Context, keys ...string) (int64, error) {
	return c.rdb.Exists(ctx, keys...).Result()
}

// GetJSON decodes the JSON value stored at key into dest.
func (c *Client) GetJSON(ctx context.Context, key string, dest interface{}) error {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("redis get json %q: %w", key, err)
	}
	return nil
}

// SetJSON stores value at key as JSON.
func (c *Client) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("redis set json %q: %w", key, err)
	}
	return c.rdb.Set(ctx, key, data, expiration).Err()
}

// Close closes the Redis connection. Safe to call multiple times.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.log.Info("Closing Redis connection", logger.Fields(
		logger.FieldResource, c.resourceName,
		logger.FieldAddr, c.addr,
	))
	c.closed = true
	return c.rdb.Close()
}

// Unwrap returns the underlying go-redis client for advanced operations.
func (c *Client) Unwrap() *goredis.Client {
	return c.rdb
}

// Addr returns the host:port the client is connected to.
func (c *Client) Addr() string {
	return c.addr
}

// ResourceName returns the Kapeta resource the client was created for.
func (c *Client) ResourceName() string {
	return c.resourceName
}

// Name identifies the client in logs and health reports.
func (c *Client) Name() string {
	return "redis:" + c.resourceName
}

// IsAvailable reports whether the client is open and answers PING.
func (c *Client) IsAvailable(ctx context.Context) bool {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return false
	}
	return c.rdb.Ping(ctx).Err() == nil
}
