// Package testutil provides an in-memory Redis server for tests.
//
//	srv := testutil.NewComponent(testutil.WithCredentials("alice", "p@ss"))
//	sdktestutil.T(t).Setup(srv)
//
//	provider, _ := srv.Provider("cache")
//	client, err := redis.CreateClient(ctx, provider, "cache", nil)
//
// Reset flushes all keys; Snapshot and Restore capture and restore string keys.
package testutil
