// Package bootstrap runs a service: typed config, component registry,
// configuration readiness and startup/shutdown hooks.
//
//	var cfg MyConfig
//	if err := config.LoadConfig("orders", &cfg); err != nil { ... }
//
//	app, err := bootstrap.NewApp(&cfg)
//	cache := redis.NewDB(app.Ready, "cache", nil)
//	app.RegisterComponent(cache)
//
//	if err := app.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Unless WithProvider is given, resources are looked up in the config's
// kapeta.resources section first and in KAPETA_CONSUMER_RESOURCE_*
// environment variables second.
package bootstrap
