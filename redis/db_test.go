package redis

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/kapeta/sdk-go-redis/component"
	"github.com/kapeta/sdk-go-redis/config"
	"github.com/kapeta/sdk-go-redis/errors"
	"github.com/kapeta/sdk-go-redis/logger"
)

func waitReady(t *testing.T, db *DB) {
	t.Helper()
	select {
	case <-db.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("DB did not become ready")
	}
}

func testProvider(t *testing.T) (config.Provider, func() int) {
	t.Helper()
	srv := startServer(t)
	provider, err := srv.Provider("cache")
	if err != nil {
		t.Fatalf("Provider failed: %v", err)
	}
	return provider, srv.Server().CurrentConnectionCount
}

func TestDB_NotReadyBeforeConfiguration(t *testing.T) {
	ready := config.NewReadiness()
	db := NewDB(ready, "cache", nil, WithLogger(logger.Nop()))

	client, err := db.Client()
	if client != nil {
		t.Error("expected no client before configuration")
	}
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.Code != errors.ErrCodeNotReady {
		t.Errorf("expected NOT_READY, got %s", appErr.Code)
	}
	if appErr.Message != "RedisDB cache not ready" {
		t.Errorf("unexpected message %q", appErr.Message)
	}
}

func TestDB_ReadyReturnsSameClient(t *testing.T) {
	provider, _ := testProvider(t)

	ready := config.NewReadiness()
	db := NewDB(ready, "cache", nil, WithLogger(logger.Nop()))
	t.Cleanup(func() { _ = db.Stop(context.Background()) })

	if err := ready.Resolve(context.Background(), provider); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	waitReady(t, db)

	first, err := db.Client()
	if err != nil {
		t.Fatalf("Client failed: %v", err)
	}
	second, err := db.Client()
	if err != nil {
		t.Fatalf("Client failed: %v", err)
	}
	if first != second {
		t.Error("expected the same client on every call")
	}
	if err := first.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestDB_RegisteredAfterResolve(t *testing.T) {
	provider, _ := testProvider(t)

	ready := config.NewReadiness()
	if err := ready.Resolve(context.Background(), provider); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	db := NewDB(ready, "cache", nil, WithLogger(logger.Nop()))
	t.Cleanup(func() { _ = db.Stop(context.Background()) })
	waitReady(t, db)

	if _, err := db.Client(); err != nil {
		t.Errorf("Client failed: %v", err)
	}
}

func TestDB_FailureStaysNotReady(t *testing.T) {
	provider, err := config.NewStaticProvider(nil)
	if err != nil {
		t.Fatalf("NewStaticProvider failed: %v", err)
	}
	log, buf := testLogger()

	ready := config.NewReadiness()
	db := NewDB(ready, "cache", nil, WithLogger(log))

	if err := ready.Resolve(context.Background(), provider); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	ready.Wait()

	if _, err := db.Client(); !errors.HasCode(err, errors.ErrCodeNotReady) {
		t.Errorf("expected NOT_READY, got %v", err)
	}

	select {
	case <-db.Ready():
		t.Fatal("Ready must not close after a failed initialization")
	default:
	}

	h := db.Health(context.Background())
	if h.Status != component.StatusUnhealthy || h.Message != "failed" {
		t.Errorf("expected unhealthy/failed, got %s/%s", h.Status, h.Message)
	}

	assertLogged(t, buf.String(), "Redis initialization failed", "Resource cache not found")
}

func TestDB_SecondInitializationIgnored(t *testing.T) {
	provider, _ := testProvider(t)
	log, buf := testLogger()

	ready := config.NewReadiness()
	db := NewDB(ready, "cache", nil, WithLogger(log))
	t.Cleanup(func() { _ = db.Stop(context.Background()) })

	if err := ready.Resolve(context.Background(), provider); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	waitReady(t, db)
	first, _ := db.Client()

	db.init(context.Background(), provider)

	second, err := db.Client()
	if err != nil {
		t.Fatalf("Client failed: %v", err)
	}
	if first != second {
		t.Error("a repeated initialization must not replace the client")
	}

	out := buf.String()
	assertLogged(t, out, "Redis initialization already attempted")
	if strings.Contains(out, "Redis initialization failed") {
		t.Errorf("repeated initialization must not be logged as a failure:\n%s", out)
	}
}

func TestDB_StopDuringInitialization(t *testing.T) {
	provider, connections := testProvider(t)
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	blocking := config.ProviderFunc(func(ctx context.Context, resourceType, portType, name string) (*config.ResourceInfo, error) {
		close(entered)
		<-release
		return provider.GetResourceInfo(ctx, resourceType, portType, name)
	})

	ready := config.NewReadiness()
	db := NewDB(ready, "cache", nil, WithLogger(logger.Nop()))
	if err := ready.Resolve(ctx, blocking); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("initialization did not start")
	}
	if err := db.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	close(release)
	ready.Wait()

	if _, err := db.Client(); !errors.HasCode(err, errors.ErrCodeNotReady) {
		t.Errorf("expected NOT_READY after Stop, got %v", err)
	}
	if h := db.Health(ctx); h.Message != "closed" {
		t.Errorf("expected closed state, got %q", h.Message)
	}
	select {
	case <-db.Ready():
		t.Error("Ready must not close for a stopped handle")
	default:
	}

	deadline := time.Now().Add(5 * time.Second)
	for connections() > 0 {
		if time.Now().After(deadline) {
			t.Fatalf("connection still open after Stop: %d", connections())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestDB_StopBeforeConfiguration(t *testing.T) {
	provider, connections := testProvider(t)
	ctx := context.Background()

	ready := config.NewReadiness()
	db := NewDB(ready, "cache", nil, WithLogger(logger.Nop()))
	if err := db.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if err := ready.Resolve(ctx, provider); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	ready.Wait()

	if _, err := db.Client(); !errors.HasCode(err, errors.ErrCodeNotReady) {
		t.Errorf("expected NOT_READY, got %v", err)
	}
	if n := connections(); n != 0 {
		t.Errorf("a stopped handle must not connect, got %d connections", n)
	}
}

func TestDB_OptionsSnapshot(t *testing.T) {
	provider, _ := testProvider(t)

	opts := Options{"client_name": "orders"}
	ready := config.NewReadiness()
	db := NewDB(ready, "cache", opts, WithLogger(logger.Nop()))
	t.Cleanup(func() { _ = db.Stop(context.Background()) })

	opts["client_name"] = "changed"

	if err := ready.Resolve(context.Background(), provider); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	waitReady(t, db)

	client, err := db.Client()
	if err != nil {
		t.Fatalf("Client failed: %v", err)
	}
	if name := client.Unwrap().Options().ClientName; name != "orders" {
		t.Errorf("expected options snapshot at construction, got client_name %q", name)
	}
}

func TestDB_Component(t *testing.T) {
	srv := startServer(t)
	provider, err := srv.Provider("cache")
	if err != nil {
		t.Fatalf("Provider failed: %v", err)
	}
	ctx := context.Background()

	ready := config.NewReadiness()
	db := NewDB(ready, "cache", nil, WithLogger(logger.Nop()))

	registry := component.NewRegistry()
	if err := registry.Register(db); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := registry.StartAll(ctx); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}

	if db.Name() != "redis:cache" || db.ResourceName() != "cache" {
		t.Errorf("unexpected names %q/%q", db.Name(), db.ResourceName())
	}
	if db.Health(ctx).Status != component.StatusUnhealthy {
		t.Error("expected unhealthy before configuration")
	}
	if d := db.Describe().Details; !strings.Contains(d, "state=pending") {
		t.Errorf("unexpected details %q", d)
	}

	if err := ready.Resolve(ctx, provider); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	waitReady(t, db)

	if db.Health(ctx).Status != component.StatusHealthy {
		t.Error("expected healthy once connected")
	}
	d := db.Describe().Details
	if !strings.Contains(d, "state=ready") || !strings.Contains(d, "addr="+srv.Addr()) {
		t.Errorf("unexpected details %q", d)
	}

	if err := registry.StopAll(ctx); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	if _, err := db.Client(); !errors.HasCode(err, errors.ErrCodeNotReady) {
		t.Errorf("expected NOT_READY after stop, got %v", err)
	}
	if d := db.Describe().Details; !strings.Contains(d, "state=closed") {
		t.Errorf("unexpected details %q", d)
	}
}
