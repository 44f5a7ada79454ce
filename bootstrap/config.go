package bootstrap

import (
	"github.com/kbukum/injectkit/config"
)

// Config is the interface constraint for application configuration types.
// Any struct that embeds config.Config (value embedding) satisfies it via
// promoted methods.
//
// Example:
//
//	type MyConfig struct {
//	    config.Config `yaml:",inline" mapstructure:",squash"`
//	    Greeting string `yaml:"greeting" mapstructure:"greeting"`
//	}
//
//	app, err := bootstrap.New(&cfg, catalog)
type Config interface {
	GetConfig() *config.Config
	ApplyDefaults()
	Validate() error
}
