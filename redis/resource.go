package redis

import (
	"context"

	"github.com/kapeta/sdk-go-redis/config"
	"github.com/kapeta/sdk-go-redis/errors"
)

const (
	// ResourceType is the declared type of Redis resources.
	ResourceType = "kapeta/resource-type-redis"
	// PortType is the port label Redis resources are consumed on.
	PortType = "redis"
	// Scheme prefixes every connection URL.
	Scheme = "redis://"
)

// Resolve looks up the named Redis resource with a single provider call.
// An undeclared resource yields a RESOURCE_NOT_FOUND error; lookup errors
// are returned as is.
func Resolve(ctx context.Context, provider config.Provider, resourceName string) (*config.ResourceInfo, error) {
	if resourceName == "" {
		return nil, errors.MissingField("resource_name")
	}
	if provider == nil {
		return nil, errors.InvalidInput("provider", "configuration provider is nil")
	}

	info, err := provider.GetResourceInfo(ctx, ResourceType, PortType, resourceName)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, errors.ResourceNotFound(resourceName)
	}
	return info, nil
}
