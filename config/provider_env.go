package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// ResourceEnvPrefix prefixes the environment variables read by EnvProvider.
const ResourceEnvPrefix = "KAPETA_CONSUMER_RESOURCE_"

// EnvProvider reads resource information injected by the platform as JSON
// in KAPETA_CONSUMER_RESOURCE_<NAME>_<PORTTYPE> environment variables.
type EnvProvider struct {
	lookup func(string) (string, bool)
}

// NewEnvProvider creates a provider backed by the process environment.
func NewEnvProvider() *EnvProvider {
	return &EnvProvider{lookup: os.LookupEnv}
}

// NewEnvProviderWithLookup creates a provider backed by a custom lookup,
// e.g. a map in tests.
func NewEnvProviderWithLookup(lookup func(string) (string, bool)) *EnvProvider {
	return &EnvProvider{lookup: lookup}
}

// ResourceEnvKey returns the variable name holding a resource's information.
func ResourceEnvKey(resourceName, portType string) string {
	return ResourceEnvPrefix + envSegment(resourceName) + "_" + envSegment(portType)
}

// GetResourceInfo decodes the resource's variable. A missing variable, or a
// value declaring a different type, means the resource is not declared.
func (p *EnvProvider) GetResourceInfo(_ context.Context, resourceType, portType, resourceName string) (*ResourceInfo, error) {
	key := ResourceEnvKey(resourceName, portType)
	raw, ok := p.lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}

	var info ResourceInfo
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &info,
	})
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	if err := dec.Decode(doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}

	if info.Type != "" && info.Type != resourceType {
		return nil, nil
	}
	return &info, nil
}

func envSegment(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
