package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
)

// Provider identifiers for supported forge backends.
const (
	ProviderGitLab = "gitlab"
	ProviderGitHub = "github"
)

// nativeConfigDirs maps provider names to the config directory of the
// native CLI, relative to the XDG config home.
var nativeConfigDirs = map[string]string{
	ProviderGitLab: "glab-cli",
	ProviderGitHub: "gh",
}

// nativeConfigDirEnv maps provider names to the environment variable the
// native CLI itself honors for relocating its config directory. The shim
// respects the same variable so both tools agree on what they read.
var nativeConfigDirEnv = map[string]string{
	ProviderGitLab: "GLAB_CONFIG_DIR",
	ProviderGitHub: "GH_CONFIG_DIR",
}

// nativeBinaries maps provider names to the default native CLI binary.
var nativeBinaries = map[string]string{
	ProviderGitLab: "glab",
	ProviderGitHub: "gh",
}

// installHints maps provider names to a short instruction for installing
// the native CLI the shim drives.
var installHints = map[string]string{
	ProviderGitLab: "Install glab: https://gitlab.com/gitlab-org/cli#installation",
	ProviderGitHub: "Install gh: https://cli.github.com",
}

// Sentinel errors for path resolution.
var (
	// ErrHomeDirNotFound indicates the user's home directory could not be determined.
	ErrHomeDirNotFound = errors.New("home directory not found")
)

// DefaultDirPerm is the default permission for newly created directories (private).
const DefaultDirPerm = 0o700

// EnsureDir creates the directory and any necessary parents with specified permissions.
// If perm is 0, DefaultDirPerm (0700) is used.
// This function is idempotent; it returns nil if the directory already exists.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return os.MkdirAll(path, perm)
}

// Home returns the user's home directory.
// This is a thin wrapper around os.UserHomeDir for consistency.
// Note: It returns an empty string on error.
// Use ResolveHome for proper error handling.
func Home() string {
	h, _ := ResolveHome()
	return h
}

// ResolveHome returns the user's home directory.
// Returns ErrHomeDirNotFound if the directory cannot be determined.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
	}
	return home, nil
}

// ConfigHome returns the XDG config home directory.
// On Linux: ~/.config
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func ConfigHome() string {
	return xdg.ConfigHome
}

// ConfigDir returns octoshim's own config directory.
// Returns: <ConfigHome>/octoshim/
func ConfigDir() string {
	return filepath.Join(ConfigHome(), "octoshim")
}

// ValidProvider returns true if the provider name is recognized.
func ValidProvider(provider string) bool {
	_, ok := nativeConfigDirs[provider]
	return ok
}

// Providers returns a slice of all supported provider identifiers.
func Providers() []string {
	return []string{
		ProviderGitLab,
		ProviderGitHub,
	}
}

// NativeBinary returns the default binary name of a provider's native CLI.
// Returns an empty string for unknown providers.
func NativeBinary(provider string) string {
	return nativeBinaries[provider]
}

// InstallHint returns a one-line installation instruction for a provider's
// native CLI. Returns an empty string for unknown providers.
func InstallHint(provider string) string {
	return installHints[provider]
}

// NativeConfigDir returns the config directory of a provider's native CLI.
//
// The native CLI's own override variable wins when set:
//   - gitlab: $GLAB_CONFIG_DIR, else ~/.config/glab-cli/
//   - github: $GH_CONFIG_DIR, else ~/.config/gh/
//
// Returns an empty string for unknown providers.
func NativeConfigDir(provider string) string {
	relPath, ok := nativeConfigDirs[provider]
	if !ok {
		return ""
	}
	if env := nativeConfigDirEnv[provider]; env != "" {
		if dir := os.Getenv(env); dir != "" {
			return dir
		}
	}
	return filepath.Join(ConfigHome(), relPath)
}

// NativeConfigFile returns the main config file of a provider's native CLI.
//
// Provider paths:
//   - gitlab: <NativeConfigDir>/config.yml
//   - github: <NativeConfigDir>/hosts.yml
//
// Returns an empty string for unknown providers.
func NativeConfigFile(provider string) string {
	dir := NativeConfigDir(provider)
	if dir == "" {
		return ""
	}
	switch provider {
	case ProviderGitLab:
		return filepath.Join(dir, "config.yml")
	case ProviderGitHub:
		return filepath.Join(dir, "hosts.yml")
	}
	return ""
}
