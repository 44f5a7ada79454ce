package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/injectkit/errors"
	"github.com/kbukum/injectkit/logger"
	"github.com/kbukum/injectkit/util"
)

// FileSystem is the file access LoadConfig needs. Tests swap it out.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

type osFileSystem struct{}

func (osFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (osFileSystem) LoadEnv(path string) error { return godotenv.Load(path) }

// LoaderConfig holds the loader's optional overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string         // explicit YAML file, skips the search
	EnvFile    string         // explicit .env file, skips the search
	EnvPrefix  string         // prefix of override variables, defaults to the service name
	Defaults   map[string]any // values used when neither file nor env sets a key
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets the filesystem the loader probes.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithEnvPrefix makes overrides read PREFIX_LOGGING_LEVEL instead of
// <SERVICE>_LOGGING_LEVEL.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvPrefix = prefix }
}

// WithDefaults sets fallback values keyed by dotted config path,
// e.g. "logging.level". Repeated calls merge.
func WithDefaults(defaults map[string]any) LoaderOption {
	return func(lc *LoaderConfig) {
		if lc.Defaults == nil {
			lc.Defaults = make(map[string]any, len(defaults))
		}
		for k, v := range defaults {
			lc.Defaults[k] = v
		}
	}
}

// configCandidates lists the YAML files probed for name, in order.
func configCandidates(name string) []string {
	return []string{
		name + ".yml",
		name + ".yaml",
		"config/" + name + ".yml",
		"config.yml",
		"config/config.yml",
	}
}

func envCandidates(name string) []string {
	return []string{".env." + name, ".env", "config/.env"}
}

func firstExisting(fs FileSystem, paths []string) string {
	for _, p := range paths {
		if fs.Exists(p) {
			return p
		}
	}
	return ""
}

// LoadConfig fills cfg from, in rising precedence: defaults, the YAML
// config file, and environment variables prefixed with the service name. The .env file is loaded into
// the environment first. Only keys cfg declares through mapstructure tags
// are read from the environment; lists such as bindings come from the file.
func LoadConfig(name string, cfg any, opts ...LoaderOption) error {
	lc := LoaderConfig{FileSystem: osFileSystem{}}
	for _, opt := range opts {
		opt(&lc)
	}

	configFile := util.Coalesce(lc.ConfigFile, firstExisting(lc.FileSystem, configCandidates(name)))
	envFile := util.Coalesce(lc.EnvFile, firstExisting(lc.FileSystem, envCandidates(name)))

	v := viper.New()
	for k, val := range lc.Defaults {
		v.SetDefault(k, val)
	}

	if configFile != "" && lc.FileSystem.Exists(configFile) {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return errors.InvalidConfig(fmt.Sprintf("config file %s: %v", configFile, err)).
				WithDetail("file", configFile).
				WithCause(err)
		}
	}

	if envFile != "" && lc.FileSystem.Exists(envFile) {
		if err := lc.FileSystem.LoadEnv(envFile); err != nil {
			logger.Warn("failed to load env file", logger.Fields(
				"file", envFile, logger.FieldError, err.Error(),
			))
		}
	}

	for _, key := range EnvKeys(cfg) {
		if val, ok := os.LookupEnv(EnvName(util.Coalesce(lc.EnvPrefix, name), key)); ok {
			v.Set(key, util.SanitizeEnvValue(val))
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config for %s: %w", name, err)
	}

	logger.Debug("config loaded", logger.Fields(
		"service", name,
		"file", configFile,
		"env_file", envFile,
	))
	return nil
}

var envReplacer = strings.NewReplacer(".", "_", "-", "_")

// EnvName is the variable that overrides key: "injector.validate_on_build"
// with prefix "my-app" is MY_APP_INJECTOR_VALIDATE_ON_BUILD.
func EnvName(prefix, key string) string {
	name := strings.ToUpper(envReplacer.Replace(key))
	if prefix == "" {
		return name
	}
	return strings.ToUpper(envReplacer.Replace(prefix)) + "_" + name
}

// EnvKeys returns the dotted keys of the scalar fields of cfg, following
// mapstructure names. Squashed embedded structs share their parent's
// prefix; slices of structs are skipped.
func EnvKeys(cfg any) []string {
	return envKeys(reflect.TypeOf(cfg), "")
}

func envKeys(t reflect.Type, prefix string) []string {
	t = indirect(t)
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}

	var keys []string
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "-" {
			continue
		}
		ft := indirect(f.Type)
		if f.Anonymous && strings.Contains(opts, "squash") {
			keys = append(keys, envKeys(ft, prefix)...)
			continue
		}
		if name == "" {
			name = strings.ToLower(f.Name)
		}
		key := name
		if prefix != "" {
			key = prefix + "." + name
		}

		switch {
		case ft.Kind() == reflect.Struct:
			keys = append(keys, envKeys(ft, key)...)
		case ft.Kind() == reflect.Map,
			ft.Kind() == reflect.Slice && indirect(ft.Elem()).Kind() == reflect.Struct:
			// file only
		default:
			keys = append(keys, key)
		}
	}
	return keys
}

func indirect(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
