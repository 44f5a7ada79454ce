// Package config loads and validates the configuration of an
// injectkit application.
//
// LoadConfig uses Viper to read a YAML file and godotenv to load a .env
// file into the environment. Without explicit paths it probes <name>.yml,
// config/<name>.yml and config.yml, then .env.<name> and .env:
//
//	var cfg config.Config
//	err := config.LoadConfig("greeter", &cfg, config.WithConfigFile("greeter.yml"))
//	cfg.ApplyDefaults()
//	err = cfg.Validate()
//
// Environment variables override file values for every scalar key of the
// config struct: GREETER_LOGGING_LEVEL sets logging.level. Bindings and
// TypeBindings declare injector mappings by type name and are applied at
// bootstrap through a di.Catalog.
package config
