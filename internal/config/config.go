// Package config loads appcaller settings from defaults, a YAML config file,
// a .env file, CALLER_* environment variables and command line flags, in
// increasing order of priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"appcaller/internal/executor"
	"appcaller/internal/logger"
)

// Configuration keys. Flags bound with viper.BindPFlag must use these names.
const (
	KeyLogLevel         = "log_level"
	KeyLogFile          = "log_file"
	KeyTimeout          = "timeout"
	KeyAllowFailure     = "allow_failure"
	KeyPositionalsFirst = "positionals_first"
	KeyCatalogDirs      = "catalog_dirs"
	KeyEnvFile          = "env_file"
	KeyWorkdir          = "workdir"
)

// EnvPrefix is the prefix of environment variables read as settings.
const EnvPrefix = "CALLER"

// DefaultEnvFile is read when env_file is not set. It may be absent.
const DefaultEnvFile = ".env"

// Config holds the resolved settings.
type Config struct {
	LogLevel         string        `mapstructure:"log_level"`
	LogFile          string        `mapstructure:"log_file"`
	Timeout          time.Duration `mapstructure:"timeout"`
	AllowFailure     bool          `mapstructure:"allow_failure"`
	PositionalsFirst bool          `mapstructure:"positionals_first"`
	CatalogDirs      []string      `mapstructure:"catalog_dirs"`
	EnvFile          string        `mapstructure:"env_file"`
	Workdir          string        `mapstructure:"workdir"`

	// Env holds the non CALLER_ entries of the .env file; they are passed to
	// the wrapped program's environment
	Env map[string]string `mapstructure:"-"`

	// ConfigFile is the config file that was read, if any
	ConfigFile string `mapstructure:"-"`
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyLogLevel, "")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyTimeout, time.Duration(0))
	v.SetDefault(KeyAllowFailure, false)
	v.SetDefault(KeyPositionalsFirst, false)
	v.SetDefault(KeyCatalogDirs, []string{})
	v.SetDefault(KeyEnvFile, "")
	v.SetDefault(KeyWorkdir, "")
}

// Load resolves the configuration. configFile names an explicit config file;
// when empty, caller.yaml is looked up in the user config directory and the
// working directory, and a missing file is not an error.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("caller")
		v.SetConfigType("yaml")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "appcaller"))
		}
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	envFile := v.GetString(KeyEnvFile)
	required := envFile != ""
	if !required {
		envFile = DefaultEnvFile
	}
	env, err := loadDotEnv(v, envFile, required)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("invalid timeout %s: must not be negative", cfg.Timeout)
	}
	cfg.Env = env
	cfg.ConfigFile = v.ConfigFileUsed()

	logger.Debug("Configuration loaded", "config_file", cfg.ConfigFile, "env_file", envFile, "env_vars", len(env))
	return &cfg, nil
}

// loadDotEnv reads a .env file. CALLER_ entries are merged into the config
// layer of v, above the config file but below real environment variables
// and flags. Everything else is returned for the wrapped program.
func loadDotEnv(v *viper.Viper, envPath string, required bool) (map[string]string, error) {
	data, err := os.ReadFile(envPath)
	if err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read .env file %s: %w", envPath, err)
	}

	envMap, err := godotenv.Unmarshal(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse .env file %s: %w", envPath, err)
	}

	settings := make(map[string]any)
	env := make(map[string]string)
	for key, value := range envMap {
		if name, ok := strings.CutPrefix(key, EnvPrefix+"_"); ok {
			settings[strings.ToLower(name)] = value
			continue
		}
		env[key] = value
	}
	if len(settings) > 0 {
		if err := v.MergeConfigMap(settings); err != nil {
			return nil, fmt.Errorf("failed to apply settings from %s: %w", envPath, err)
		}
	}
	return env, nil
}

// ExecutorOptions returns the executor settings implied by the configuration.
func (c *Config) ExecutorOptions() []executor.Option {
	var opts []executor.Option
	if c.Timeout > 0 {
		opts = append(opts, executor.WithTimeout(c.Timeout))
	}
	if c.Workdir != "" {
		opts = append(opts, executor.WithDir(c.Workdir))
	}
	if len(c.Env) > 0 {
		opts = append(opts, executor.WithEnv(c.Env))
	}
	return opts
}
