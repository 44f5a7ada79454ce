package config

import (
	"fmt"
	"time"

	"github.com/kbukum/injectkit/logger"
	"github.com/kbukum/injectkit/util"
	"github.com/kbukum/injectkit/validation"
)

// Config is the configuration of an application built around an injector.
//
// Projects extend it by embedding:
//
//	type MyConfig struct {
//	    config.Config `yaml:",inline" mapstructure:",squash"`
//	    Greeting string `yaml:"greeting" mapstructure:"greeting"`
//	}
type Config struct {
	Name          string              `yaml:"name" mapstructure:"name" validate:"required"`
	Environment   string              `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Version       string              `yaml:"version" mapstructure:"version"`
	Debug         bool                `yaml:"debug" mapstructure:"debug"`
	Logging       logger.Config       `yaml:"logging" mapstructure:"logging"`
	Injector      InjectorConfig      `yaml:"injector" mapstructure:"injector"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
	Bindings      []BindingConfig     `yaml:"bindings" mapstructure:"bindings" validate:"dive"`
	TypeBindings  []TypeBindingConfig `yaml:"type_bindings" mapstructure:"type_bindings" validate:"dive"`
}

// InjectorConfig tunes the root injector.
type InjectorConfig struct {
	// ValidateOnBuild checks the mapping graph for gaps and cycles at startup.
	ValidateOnBuild bool `yaml:"validate_on_build" mapstructure:"validate_on_build"`
	// WarnUnmatchedSystems is nil when unset and then defaults to true.
	WarnUnmatchedSystems *bool `yaml:"warn_unmatched_systems" mapstructure:"warn_unmatched_systems"`
}

// WarnUnmatched reports whether system registrations matching no known
// entity class are logged.
func (c InjectorConfig) WarnUnmatched() bool {
	return util.DerefOr(c.WarnUnmatchedSystems, true)
}

// ObservabilityConfig enables OpenTelemetry exporters.
type ObservabilityConfig struct {
	Metrics    bool          `yaml:"metrics" mapstructure:"metrics"`
	Tracing    bool          `yaml:"tracing" mapstructure:"tracing"`
	Endpoint   string        `yaml:"endpoint" mapstructure:"endpoint" validate:"omitempty,hostname_port"`
	Insecure   bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64       `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	Interval   time.Duration `yaml:"interval" mapstructure:"interval"`
}

// Enabled reports whether any exporter is configured.
func (c ObservabilityConfig) Enabled() bool {
	return c.Metrics || c.Tracing
}

// BindingConfig maps a catalog type, optionally under an identifier.
type BindingConfig struct {
	Type  string `yaml:"type" mapstructure:"type" validate:"required"`
	ID    string `yaml:"id" mapstructure:"id"`
	Scope string `yaml:"scope" mapstructure:"scope" validate:"omitempty,oneof=instance singleton"`
}

// TypeBindingConfig maps an identifier to a catalog type.
type TypeBindingConfig struct {
	ID      string `yaml:"id" mapstructure:"id" validate:"required"`
	Class   string `yaml:"class" mapstructure:"class" validate:"required"`
	ClassID string `yaml:"class_id" mapstructure:"class_id"`
	Scope   string `yaml:"scope" mapstructure:"scope" validate:"omitempty,oneof=class singleton mapping"`
}

// GetConfig returns the base Config. When Config is embedded the method is
// promoted, so callers can reach it from the outer struct.
func (c *Config) GetConfig() *Config {
	return c
}

// ApplyDefaults applies default values.
// Embedding structs that override this should call c.Config.ApplyDefaults() first.
func (c *Config) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	c.Logging.ApplyDefaults()
	if c.Observability.Enabled() {
		c.Observability.Endpoint = util.Coalesce(c.Observability.Endpoint, "localhost:4318")
		c.Observability.SampleRate = util.Coalesce(c.Observability.SampleRate, 1)
		c.Observability.Interval = util.Coalesce(c.Observability.Interval, 15*time.Second)
	}
}

// Validate checks struct tags, the logging block, and that no binding is
// declared twice.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}

	v := validation.New()
	for i, b := range c.Bindings {
		v.Unique("bindings", fmt.Sprintf("bindings[%d]", i), b.Type+"/"+b.ID)
	}
	for i, b := range c.TypeBindings {
		v.Unique("type_bindings", fmt.Sprintf("type_bindings[%d]", i), b.ID)
		v.Custom(b.ClassID == "" || b.Scope == "mapping",
			fmt.Sprintf("type_bindings[%d].class_id", i), "is only allowed with scope mapping")
	}
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}
