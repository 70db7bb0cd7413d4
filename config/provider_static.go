package config

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kapeta/sdk-go-redis/errors"
	"github.com/kapeta/sdk-go-redis/validation"
)

// ResourceDeclaration declares a resource in the service configuration file:
//
//	kapeta:
//	  resources:
//	    cache:
//	      type: kapeta/resource-type-redis
//	      port_type: redis
//	      host: localhost
//	      port: 6379
type ResourceDeclaration struct {
	Type        string         `yaml:"type" mapstructure:"type" json:"type" validate:"required"`
	PortType    string         `yaml:"port_type" mapstructure:"port_type" json:"port_type" validate:"required"`
	Host        string         `yaml:"host" mapstructure:"host" json:"host" validate:"required"`
	Port        int            `yaml:"port" mapstructure:"port" json:"port" validate:"min=1,max=65535"`
	Credentials *Credentials   `yaml:"credentials" mapstructure:"credentials" json:"credentials,omitempty"`
	Options     map[string]any `yaml:"options" mapstructure:"options" json:"options,omitempty"`
}

// KapetaConfig is the `kapeta` section of a service configuration.
type KapetaConfig struct {
	Resources map[string]ResourceDeclaration `yaml:"resources" mapstructure:"resources"`
}

// StaticProvider serves resources declared up front, typically from the
// service configuration file.
type StaticProvider struct {
	mu        sync.RWMutex
	resources map[string]ResourceDeclaration
}

// NewStaticProvider creates a provider from validated declarations.
func NewStaticProvider(decls map[string]ResourceDeclaration) (*StaticProvider, error) {
	p := &StaticProvider{resources: make(map[string]ResourceDeclaration, len(decls))}

	names := make([]string, 0, len(decls))
	for name := range decls {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := p.Declare(name, decls[name]); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Declare adds a resource declaration.
func (p *StaticProvider) Declare(name string, decl ResourceDeclaration) error {
	if name == "" {
		return errors.MissingField("resource_name")
	}
	if err := validation.Validate(decl); err != nil {
		return fmt.Errorf("resource %s: %w", name, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.resources[name]; exists {
		return errors.AlreadyExists("resource " + name)
	}
	p.resources[name] = decl
	return nil
}

// Names returns the declared resource names in sorted order.
func (p *StaticProvider) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, 0, len(p.resources))
	for name := range p.resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetResourceInfo returns a copy of the matching declaration, or nil when
// the name is unknown or declared with a different type or port type.
func (p *StaticProvider) GetResourceInfo(_ context.Context, resourceType, portType, resourceName string) (*ResourceInfo, error) {
	p.mu.RLock()
	decl, ok := p.resources[resourceName]
	p.mu.RUnlock()

	if !ok || decl.Type != resourceType || decl.PortType != portType {
		return nil, nil
	}

	info := &ResourceInfo{
		Type:        decl.Type,
		Host:        decl.Host,
		Port:        decl.Port,
		Credentials: decl.Credentials,
		Options:     decl.Options,
	}
	return info.Clone(), nil
}
