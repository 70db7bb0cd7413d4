// Package config is the configuration side of resource resolution.
//
// It loads service configuration with Viper (YAML files, .env files and
// environment variables), describes resources through ResourceInfo, looks
// them up through a Provider, and announces availability of a Provider
// through a one-shot Readiness.
//
//	var cfg MyConfig
//	err := config.LoadConfig("orders", &cfg)
//	provider, err := config.NewStaticProvider(cfg.Kapeta.Resources)
//
//	ready := config.NewReadiness()
//	ready.OnReady(func(ctx context.Context, p config.Provider) { ... })
//	ready.Resolve(ctx, provider)
//
// Environment variables override file values using underscore-separated
// paths (e.g. KAPETA_RESOURCES_CACHE_HOST).
package config
