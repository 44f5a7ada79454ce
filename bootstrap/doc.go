// Package bootstrap builds an application around a root injector.
//
// New applies config defaults, validates, creates the logger and optional
// OpenTelemetry providers, builds the root injector and registers the
// configured bindings:
//
//	catalog, _ := di.NewCatalog(Clock, Greeter)
//	app, err := bootstrap.New(&cfg, catalog)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*MyConfig]) error {
//	    _, err := a.Injector.Get(Greeter)
//	    return err
//	})
//	if err := app.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Load reads the config with config.LoadConfig first:
//
//	app, err := bootstrap.Load("greeter", &MyConfig{}, catalog,
//	    bootstrap.WithLoaderOptions(config.WithConfigFile("greeter.yml")))
//
// Shutdown runs OnStop hooks, disposes the injector and flushes telemetry.
package bootstrap
