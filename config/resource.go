package config

import (
	"context"
	"maps"
)

// Credentials holds optional authentication for a resource.
type Credentials struct {
	Username string `yaml:"username" mapstructure:"username" json:"username,omitempty"`
	Password string `yaml:"password" mapstructure:"password" json:"password,omitempty"`
}

// ResourceInfo is the connection metadata resolved for a logical resource.
// Values returned by a Provider belong to the caller.
type ResourceInfo struct {
	Type        string         `yaml:"type" mapstructure:"type" json:"type,omitempty"`
	Host        string         `yaml:"host" mapstructure:"host" json:"host"`
	Port        int            `yaml:"port" mapstructure:"port" json:"port"`
	Credentials *Credentials   `yaml:"credentials" mapstructure:"credentials" json:"credentials,omitempty"`
	Options     map[string]any `yaml:"options" mapstructure:"options" json:"options,omitempty"`
}

// Clone returns a deep-enough copy: credentials and the top level of options
// are not shared with the receiver.
func (r *ResourceInfo) Clone() *ResourceInfo {
	if r == nil {
		return nil
	}
	out := *r
	if r.Credentials != nil {
		creds := *r.Credentials
		out.Credentials = &creds
	}
	if r.Options != nil {
		out.Options = maps.Clone(r.Options)
	}
	return &out
}

// Provider looks up resource information by declared type, port type and name.
// A nil info with a nil error means the resource is not declared.
type Provider interface {
	GetResourceInfo(ctx context.Context, resourceType, portType, resourceName string) (*ResourceInfo, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, resourceType, portType, resourceName string) (*ResourceInfo, error)

// GetResourceInfo calls f.
func (f ProviderFunc) GetResourceInfo(ctx context.Context, resourceType, portType, resourceName string) (*ResourceInfo, error) {
	return f(ctx, resourceType, portType, resourceName)
}

// Chain returns a Provider that asks each provider in order and returns the
// first declared resource. Lookup errors stop the chain.
func Chain(providers ...Provider) Provider {
	return ProviderFunc(func(ctx context.Context, resourceType, portType, resourceName string) (*ResourceInfo, error) {
		for _, p := range providers {
			if p == nil {
				continue
			}
			info, err := p.GetResourceInfo(ctx, resourceType, portType, resourceName)
			if err != nil {
				return nil, err
			}
			if info != nil {
				return info, nil
			}
		}
		return nil, nil
	})
}
