package config

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/kapeta/sdk-go-redis/errors"
)

const (
	redisType = "kapeta/resource-type-redis"
	redisPort = "redis"
)

func cacheDecl() ResourceDeclaration {
	return ResourceDeclaration{
		Type:        redisType,
		PortType:    redisPort,
		Host:        "db.local",
		Port:        6379,
		Credentials: &Credentials{Username: "alice", Password: "p@ss"},
		Options:     map[string]any{"db": 2},
	}
}

func newCacheProvider(t *testing.T) *StaticProvider {
	t.Helper()
	p, err := NewStaticProvider(map[string]ResourceDeclaration{"cache": cacheDecl()})
	if err != nil {
		t.Fatalf("NewStaticProvider failed: %v", err)
	}
	return p
}

func TestStaticProvider_Lookup(t *testing.T) {
	p := newCacheProvider(t)

	info, err := p.GetResourceInfo(context.Background(), redisType, redisPort, "cache")
	if err != nil {
		t.Fatalf("GetResourceInfo failed: %v", err)
	}
	if info == nil {
		t.Fatal("expected the declared resource")
	}
	if info.Host != "db.local" || info.Port != 6379 {
		t.Errorf("unexpected address %s:%d", info.Host, info.Port)
	}
	if info.Credentials == nil || info.Credentials.Username != "alice" {
		t.Errorf("unexpected credentials %+v", info.Credentials)
	}
	if info.Options["db"] != 2 {
		t.Errorf("unexpected options %v", info.Options)
	}
	if names := p.Names(); !reflect.DeepEqual(names, []string{"cache"}) {
		t.Errorf("unexpected names %v", names)
	}
}

func TestStaticProvider_Absent(t *testing.T) {
	p := newCacheProvider(t)
	ctx := context.Background()

	tests := []struct {
		name, resourceType, portType, resource string
	}{
		{"unknown name", redisType, redisPort, "sessions"},
		{"other type", "kapeta/resource-type-postgresql", redisPort, "cache"},
		{"other port type", redisType, "postgres", "cache"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			info, err := p.GetResourceInfo(ctx, tc.resourceType, tc.portType, tc.resource)
			if err != nil {
				t.Errorf("absence must not be an error, got %v", err)
			}
			if info != nil {
				t.Errorf("expected no resource, got %+v", info)
			}
		})
	}
}

func TestStaticProvider_ReturnsCopies(t *testing.T) {
	p := newCacheProvider(t)
	ctx := context.Background()

	first, _ := p.GetResourceInfo(ctx, redisType, redisPort, "cache")
	first.Credentials.Username = "mallory"
	first.Options["db"] = 9

	second, _ := p.GetResourceInfo(ctx, redisType, redisPort, "cache")
	if second.Credentials.Username != "alice" {
		t.Errorf("credentials leaked between lookups: %q", second.Credentials.Username)
	}
	if second.Options["db"] != 2 {
		t.Errorf("options leaked between lookups: %v", second.Options)
	}
}

func TestStaticProvider_Validation(t *testing.T) {
	bad := cacheDecl()
	bad.Host = ""
	bad.Port = 0

	_, err := NewStaticProvider(map[string]ResourceDeclaration{"cache": bad})
	if err == nil {
		t.Fatal("expected a validation error")
	}
	for _, want := range []string{"resource cache", "host: is required"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error to contain %q, got %v", want, err)
		}
	}
	if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestStaticProvider_DeclareDuplicate(t *testing.T) {
	p, err := NewStaticProvider(nil)
	if err != nil {
		t.Fatalf("NewStaticProvider failed: %v", err)
	}

	if err := p.Declare("cache", cacheDecl()); err != nil {
		t.Fatalf("Declare failed: %v", err)
	}
	if err := p.Declare("cache", cacheDecl()); !errors.HasCode(err, errors.ErrCodeAlreadyExists) {
		t.Errorf("expected ALREADY_EXISTS, got %v", err)
	}
	if err := p.Declare("", cacheDecl()); !errors.HasCode(err, errors.ErrCodeMissingField) {
		t.Errorf("expected MISSING_FIELD, got %v", err)
	}
}

func TestEnvProvider(t *testing.T) {
	env := map[string]string{
		"KAPETA_CONSUMER_RESOURCE_CACHE_REDIS":    `{"host":"db.local","port":"6379","credentials":{"username":"alice"},"options":{"db":1}}`,
		"KAPETA_CONSUMER_RESOURCE_MY_CACHE_REDIS": `{"host":"other","port":6380,"type":"kapeta/resource-type-redis"}`,
		"KAPETA_CONSUMER_RESOURCE_BROKEN_REDIS":   `{not json`,
		"KAPETA_CONSUMER_RESOURCE_POSTGRES_REDIS": `{"host":"pg","port":5432,"type":"kapeta/resource-type-postgresql"}`,
		"KAPETA_CONSUMER_RESOURCE_BLANK_REDIS":    "  ",
	}
	p := NewEnvProviderWithLookup(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	ctx := context.Background()

	info, err := p.GetResourceInfo(ctx, redisType, redisPort, "cache")
	if err != nil {
		t.Fatalf("GetResourceInfo failed: %v", err)
	}
	if info == nil {
		t.Fatal("expected the cache resource")
	}
	if info.Host != "db.local" || info.Port != 6379 {
		t.Errorf("unexpected address %s:%d", info.Host, info.Port)
	}
	if info.Credentials == nil || info.Credentials.Username != "alice" {
		t.Errorf("unexpected credentials %+v", info.Credentials)
	}
	if info.Options["db"] != float64(1) {
		t.Errorf("unexpected options %v", info.Options)
	}

	info, err = p.GetResourceInfo(ctx, redisType, redisPort, "my-cache")
	if err != nil || info == nil {
		t.Fatalf("expected my-cache, got %+v / %v", info, err)
	}
	if info.Port != 6380 {
		t.Errorf("unexpected port %d", info.Port)
	}

	if _, err := p.GetResourceInfo(ctx, redisType, redisPort, "broken"); err == nil {
		t.Error("expected an error for malformed JSON")
	}

	for _, name := range []string{"postgres", "blank", "missing"} {
		info, err := p.GetResourceInfo(ctx, redisType, redisPort, name)
		if err != nil || info != nil {
			t.Errorf("%s: expected absence, got %+v / %v", name, info, err)
		}
	}
}

func TestResourceEnvKey(t *testing.T) {
	tests := []struct{ name, want string }{
		{"my-cache", "KAPETA_CONSUMER_RESOURCE_MY_CACHE_REDIS"},
		{"sessions.v2", "KAPETA_CONSUMER_RESOURCE_SESSIONS_V2_REDIS"},
	}
	for _, tc := range tests {
		if got := ResourceEnvKey(tc.name, "redis"); got != tc.want {
			t.Errorf("ResourceEnvKey(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestChain(t *testing.T) {
	ctx := context.Background()
	empty := ProviderFunc(func(context.Context, string, string, string) (*ResourceInfo, error) {
		return nil, nil
	})
	static := newCacheProvider(t)

	info, err := Chain(nil, empty, static).GetResourceInfo(ctx, redisType, redisPort, "cache")
	if err != nil || info == nil {
		t.Fatalf("expected the static declaration, got %+v / %v", info, err)
	}
	if info.Host != "db.local" {
		t.Errorf("unexpected host %q", info.Host)
	}

	info, err = Chain(empty).GetResourceInfo(ctx, redisType, redisPort, "cache")
	if err != nil || info != nil {
		t.Errorf("expected absence, got %+v / %v", info, err)
	}

	boom := errors.Internal(nil)
	failing := ProviderFunc(func(context.Context, string, string, string) (*ResourceInfo, error) {
		return nil, boom
	})
	if _, err := Chain(failing, static).GetResourceInfo(ctx, redisType, redisPort, "cache"); err != boom {
		t.Errorf("expected the first error to stop the chain, got %v", err)
	}
}

func TestResourceInfoClone(t *testing.T) {
	var nilInfo *ResourceInfo
	if nilInfo.Clone() != nil {
		t.Error("expected nil clone of nil info")
	}

	info := &ResourceInfo{Host: "h", Port: 1}
	clone := info.Clone()
	if clone == info {
		t.Error("expected a distinct copy")
	}
	if !reflect.DeepEqual(info, clone) {
		t.Errorf("clone differs: %+v vs %+v", clone, info)
	}
}
