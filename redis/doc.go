// Package redis resolves Kapeta Redis resources and connects go-redis clients
// to them.
//
// A resource is looked up by name through a config.Provider, turned into a
// redis:// URL and connected with a PING handshake:
//
//	client, err := redis.CreateClient(ctx, provider, "cache", redis.Options{"pool_size": 20})
//
// Services that are constructed before configuration is available use a DB,
// which connects once the configuration readiness resolves:
//
//	cache := redis.NewDB(app.Ready, "cache", nil)
//	...
//	client, err := cache.Client() // NOT_READY until connected
//
// Resource options override caller options; the synthesized url always wins.
package redis
