package gitlab

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/octoshim/octoshim/internal/paths"
	"github.com/octoshim/octoshim/internal/provider"
)

// defaultHost is the public instance. It needs no host override: glab
// already defaults to it.
const defaultHost = "gitlab.com"

// ResolveHost normalizes an instance setting to the host[:port] form
// GITLAB_HOST expects. The public default instance resolves to the empty
// string, meaning no override.
func ResolveHost(instance string) (string, error) {
	host, err := provider.NormalizeHost(instance)
	if err != nil || host == "" {
		return "", err
	}
	if host == defaultHost {
		return "", nil
	}
	return host, nil
}

// nativeConfigHost reads the top-level host glab itself is configured to
// talk to. Best effort: a missing or unreadable config means no opinion.
func nativeConfigHost() string {
	data, err := os.ReadFile(paths.NativeConfigFile(paths.ProviderGitLab))
	if err != nil {
		return ""
	}
	var cfg struct {
		Host string `yaml:"host"`
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ""
	}
	return strings.TrimSpace(cfg.Host)
}
