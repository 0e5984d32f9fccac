package config

import (
	"errors"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/octoshim/octoshim/internal/paths"
)

// Validation errors for configuration fields.
var (
	// ErrInvalidProvider indicates an unrecognized provider name.
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrInvalidInstance indicates the instance value is not a usable host.
	ErrInvalidInstance = errors.New("invalid instance")

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")
)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	// Empty provider means "use the default"; anything else must be known
	if cfg.Provider != "" && !paths.ValidProvider(cfg.Provider) {
		errs = append(errs, &ProviderError{
			Provider: cfg.Provider,
			Err:      ErrInvalidProvider,
		})
	}

	if cfg.Instance != "" {
		if err := validateInstance(cfg.Instance); err != nil {
			errs = append(errs, &InstanceError{
				Instance: cfg.Instance,
				Err:      err,
			})
		}
	}

	if cfg.CLITool != "" {
		if err := validatePath(cfg.CLITool); err != nil {
			errs = append(errs, &PathError{
				Field: "cli_tool",
				Path:  cfg.CLITool,
				Err:   err,
			})
		}
	}

	return errs
}

// validateInstance checks that an instance value is a bare hostname or an
// http(s) URL. It does not resolve the host.
func validateInstance(instance string) error {
	if strings.ContainsAny(instance, " \t\n") {
		return ErrInvalidInstance
	}

	// Bare hostnames like gitlab.example.com are accepted as-is
	if !strings.Contains(instance, "://") {
		return nil
	}

	parsed, err := url.Parse(instance)
	if err != nil {
		return ErrInvalidInstance
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ErrInvalidInstance
	}
	if parsed.Host == "" {
		return ErrInvalidInstance
	}
	return nil
}

// validatePath checks if a path string is well-formed.
// It does not check if the path exists, only that it's syntactically valid.
func validatePath(path string) error {
	// Empty paths are valid (they mean "use default")
	if path == "" {
		return nil
	}

	// Check for null bytes which are never valid in paths
	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}

	// Clean the path and check it's not empty after cleaning
	cleaned := filepath.Clean(path)
	if cleaned == "" || cleaned == "." {
		return ErrInvalidPath
	}

	return nil
}

// ProviderError represents an error for a specific provider value.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return e.Err.Error() + ": " + e.Provider
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// InstanceError represents an error for a specific instance value.
type InstanceError struct {
	Instance string
	Err      error
}

func (e *InstanceError) Error() string {
	return e.Err.Error() + ": " + e.Instance
}

func (e *InstanceError) Unwrap() error {
	return e.Err
}

// PathError represents an error for a specific path field.
type PathError struct {
	Field string
	Path  string
	Err   error
}

func (e *PathError) Error() string {
	return e.Field + ": " + e.Err.Error() + ": " + e.Path
}

func (e *PathError) Unwrap() error {
	return e.Err
}
