// Package provider defines the contract between the shim core and a forge
// backend.
//
// A backend lives in its own subpackage and registers a Factory from init,
// keyed by the provider name used in configuration. The command layer
// blank-imports the backends it ships and resolves the configured one with
// New. Registration is init-time only; the factory table is never written
// after that.
package provider

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/octoshim/octoshim/internal/dispatch"
	"github.com/octoshim/octoshim/internal/logging"
)

// CompatVersion is the GitHub CLI version the shim reports, for automation
// that parses `gh --version` output.
const CompatVersion = "2.45.0"

// CompatBanner renders the --version line: recognizable to gh-version
// parsers while naming the shim and the active backend.
func CompatBanner(shimVersion, providerName string) string {
	return fmt.Sprintf("gh version %s (octoshim %s, provider %s)",
		CompatVersion, shimVersion, providerName)
}

// Context carries the per-process settings a backend builds its registry
// from. Resolved once from config and environment, then read-only.
type Context struct {
	// Instance is the configured forge host or URL. Empty selects the
	// backend's public default instance.
	Instance string

	// CLITool overrides the native CLI binary name or path.
	CLITool string

	// Passthrough appends the catch-all passthrough handler to backends
	// that fail closed by default.
	Passthrough bool

	// Version is the shim's own version, for the compat banner.
	Version string

	Logger *slog.Logger
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// WithDefaults fills unset context fields with process defaults. Backends
// call it first so translated invocations always have streams and a logger.
func WithDefaults(c Context) Context {
	if c.Logger == nil {
		c.Logger = logging.NewDiscard()
	}
	if c.Stdin == nil {
		c.Stdin = os.Stdin
	}
	if c.Stdout == nil {
		c.Stdout = os.Stdout
	}
	if c.Stderr == nil {
		c.Stderr = os.Stderr
	}
	if c.Version == "" {
		c.Version = "dev"
	}
	return c
}

// Provider is one forge backend.
type Provider interface {
	// Name is the configuration name of the backend.
	Name() string

	// Registry returns the backend's ordered capability registry.
	Registry() *dispatch.Registry
}

// Factory builds a backend from the resolved context.
type Factory func(Context) (Provider, error)

var factories = make(map[string]Factory)

// Register places a backend factory in the table. It panics on an empty
// name, a nil factory, or a duplicate registration; backends register from
// static init funcs, so these are programmer errors.
func Register(name string, f Factory) {
	if name == "" {
		panic("provider: registered with empty name")
	}
	if f == nil {
		panic(fmt.Sprintf("provider: %q registered with nil factory", name))
	}
	if _, dup := factories[name]; dup {
		panic(fmt.Sprintf("provider: %q registered twice", name))
	}
	factories[name] = f
}

// New builds the named backend.
func New(name string, pctx Context) (Provider, error) {
	f, ok := factories[name]
	if !ok {
		return nil, errors.Newf("unknown provider %q (have %s)",
			name, strings.Join(Names(), ", "))
	}
	return f(pctx)
}

// Names returns the registered backend names, sorted.
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NormalizeHost reduces an instance setting to the host[:port] form a
// native CLI's host variable expects: schemes and paths stripped, case
// folded, bare hosts and ports accepted. Empty input stays empty; each
// backend decides what its default instance is.
func NormalizeHost(instance string) (string, error) {
	s := strings.TrimSpace(instance)
	if s == "" {
		return "", nil
	}

	host := s
	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return "", errors.Wrapf(err, "invalid instance %q", instance)
		}
		host = u.Host
	} else if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}

	host = strings.ToLower(host)
	if host == "" {
		return "", errors.Newf("invalid instance %q: no host", instance)
	}
	return host, nil
}
