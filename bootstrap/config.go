package bootstrap

import (
	"github.com/kapeta/sdk-go-redis/config"
)

// Config is the constraint for application configuration types. Any struct
// embedding config.ServiceConfig satisfies it through promoted methods:
//
//	type MyConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	}
//
//	app, err := bootstrap.NewApp[*MyConfig](&cfg)
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	GetKapetaConfig() *config.KapetaConfig
	ApplyDefaults()
	Validate() error
}
