// Package config provides configuration management for the octoshim CLI.
//
// This package handles loading and validating the shim's own configuration
// file. It is distinct from the native CLI's configuration (glab or gh keep
// their own), which the shim only ever reads through the paths package.
//
// # Configuration File
//
// The default configuration file location is ~/.config/octoshim/config.yaml.
// The configuration file uses YAML format with the following structure:
//
//	provider: gitlab           # forge backend (gitlab, github)
//	cli_tool: /usr/bin/glab    # optional: native CLI override
//	instance: gitlab.corp.com  # optional: self-hosted instance
//	passthrough: false         # forward untranslated commands verbatim
//
// # Environment Variables
//
// Every key can be overridden through the OCTOSHIM_ prefix:
//
//	OCTOSHIM_PROVIDER, OCTOSHIM_CLI_TOOL, OCTOSHIM_INSTANCE,
//	OCTOSHIM_PASSTHROUGH
//
// OCTOSHIM_CONFIG_DIR relocates the config search path entirely, which the
// tests use to isolate themselves from the developer's real config.
//
// # Loading Configuration
//
//	config.Init()
//	cfg, err := config.Load("")
//	if err != nil {
//	    return fmt.Errorf("loading config: %w", err)
//	}
//
// Loaded configurations are validated automatically; [Validate] is exposed
// for callers that construct a Config by hand.
package config
