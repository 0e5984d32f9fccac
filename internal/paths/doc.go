// Package paths provides path resolution for octoshim and the native CLIs
// it wraps.
//
// This package knows where octoshim's own configuration lives and where the
// wrapped forge CLIs (glab, gh) keep theirs, so the instance resolver and
// doctor checks can find them without duplicating the lookup rules.
//
// # XDG Base Directory Compliance
//
// The package wraps github.com/adrg/xdg for cross-platform XDG Base Directory
// Specification compliance. On Linux and macOS, paths follow XDG conventions
// (~/.config, ~/.local/share, ~/.cache).
//
// # Provider Constants
//
// Use the provided provider constants when calling provider-specific
// functions:
//
//	paths.NativeConfigDir(paths.ProviderGitLab) // ~/.config/glab-cli/
//	paths.NativeConfigDir(paths.ProviderGitHub) // ~/.config/gh/
//
// Both honor the native CLI's own directory override variable
// (GLAB_CONFIG_DIR, GH_CONFIG_DIR) before falling back to the XDG default.
//
// # Error Handling
//
// Functions that accept a provider parameter return empty strings for
// unknown providers. Use [ValidProvider] to check validity before calling.
package paths
