package config

import (
	"fmt"

	"github.com/kapeta/sdk-go-redis/logger"
)

// ServiceConfig contains the fields every service needs. Services embed it
// in their own config structs:
//
//	type MyConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	}
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
	Kapeta      KapetaConfig  `yaml:"kapeta" mapstructure:"kapeta"`
}

// GetServiceConfig returns the base ServiceConfig. The method is promoted to
// embedding structs.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}

// GetKapetaConfig returns the declared resources section.
func (c *ServiceConfig) GetKapetaConfig() *KapetaConfig {
	return &c.Kapeta
}

// ApplyDefaults applies default values to the base configuration.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Logging.ServiceName == "" && c.Name != "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()
}

// Validate validates the base configuration fields.
func (c *ServiceConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config.name is required")
	}
	validEnvs := []string{"development", "staging", "production"}
	found := false
	for _, v := range validEnvs {
		if c.Environment == v {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("config.environment must be one of %v (got: %s)", validEnvs, c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}
