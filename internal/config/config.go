// Package config provides configuration management for octoshim using Viper.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/octoshim/octoshim/internal/paths"
)

// AppName is the application name used for config file naming.
const AppName = "octoshim"

// Config represents the top-level configuration structure.
type Config struct {
	// Provider selects the forge backend the shim translates to.
	Provider string `mapstructure:"provider" yaml:"provider"`

	// CLITool overrides the native CLI binary. It may be a bare name
	// resolved via PATH or an absolute path.
	CLITool string `mapstructure:"cli_tool" yaml:"cli_tool"`

	// Instance points commands at a self-hosted forge instance.
	Instance string `mapstructure:"instance" yaml:"instance"`

	// Passthrough forwards invocations with no registered translation to
	// the native CLI verbatim instead of failing closed.
	Passthrough bool `mapstructure:"passthrough" yaml:"passthrough"`
}

// Init initializes Viper with default configuration.
// Call this once at application startup before accessing config values.
// Calling it again resets any previously loaded state.
func Init() {
	viper.Reset()

	// Config file settings. No SetConfigType: the type comes from the
	// file extension, so both config.yaml and config.toml load.
	viper.SetConfigName("config")

	// Search paths (in order of precedence)
	if dir := os.Getenv("OCTOSHIM_CONFIG_DIR"); dir != "" {
		viper.AddConfigPath(dir)
	} else {
		viper.AddConfigPath(".") // Current directory
		viper.AddConfigPath(paths.ConfigDir())
	}

	// Environment variable support: OCTOSHIM_PROVIDER, OCTOSHIM_CLI_TOOL,
	// OCTOSHIM_INSTANCE, OCTOSHIM_PASSTHROUGH
	viper.SetEnvPrefix("OCTOSHIM")
	viper.AutomaticEnv()

	// Defaults. Every key gets one so AutomaticEnv can surface it through
	// Unmarshal even when no config file exists.
	viper.SetDefault("provider", paths.ProviderGitLab)
	viper.SetDefault("cli_tool", "")
	viper.SetDefault("instance", "")
	viper.SetDefault("passthrough", false)
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches in the default locations.
// Returns the loaded configuration or default values if no file is found
// (when path is empty). The result is always validated.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		// If config file not found...
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// If user specified a path, this is an error
			if path != "" {
				return nil, fmt.Errorf("config file not found at %s: %w", path, err)
			}
			// Otherwise (implicit load), it's fine to use defaults
		} else {
			// Real read error (parsing, permissions, etc)
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, fmt.Errorf("validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// Default returns a configuration with sensible defaults: the GitLab
// provider, native binary resolution via PATH, and fail-closed dispatch.
func Default() *Config {
	return &Config{
		Provider: paths.ProviderGitLab,
	}
}

// FileUsed returns the path of the config file the last Load read, or an
// empty string when defaults are in effect.
func FileUsed() string {
	return viper.ConfigFileUsed()
}
