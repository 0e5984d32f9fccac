// Package github is the reference backend. The shim already speaks gh's
// vocabulary, so everything passes through verbatim; it exists as the
// contract the translating backends are measured against.
package github

import (
	"fmt"

	"github.com/octoshim/octoshim/internal/dispatch"
	"github.com/octoshim/octoshim/internal/executor"
	"github.com/octoshim/octoshim/internal/paths"
	"github.com/octoshim/octoshim/internal/provider"
)

const defaultHost = "github.com"

func init() {
	provider.Register(paths.ProviderGitHub, func(pctx provider.Context) (provider.Provider, error) {
		return New(pctx)
	})
}

// Provider is the gh backend.
type Provider struct {
	ctx      provider.Context
	env      []string
	registry *dispatch.Registry
}

// New resolves the instance host and builds the two-entry registry.
func New(pctx provider.Context) (*Provider, error) {
	pctx = provider.WithDefaults(pctx)

	host, err := provider.NormalizeHost(pctx.Instance)
	if err != nil {
		return nil, err
	}
	if host == defaultHost {
		host = ""
	}

	p := &Provider{ctx: pctx}
	if host != "" {
		p.env = []string{"GH_HOST=" + host}
	}

	b := dispatch.NewBuilder()
	b.Handle("version", dispatch.MatchAnyOf(
		dispatch.MatchBareFlag("--version"),
		dispatch.MatchVerbOnly("version"),
	), p.version)
	b.Handle("passthrough", dispatch.MatchAny(), p.passthrough)
	p.registry = b.Build()
	return p, nil
}

// Name implements provider.Provider.
func (p *Provider) Name() string { return paths.ProviderGitHub }

// Registry implements provider.Provider.
func (p *Provider) Registry() *dispatch.Registry { return p.registry }

func (p *Provider) version(dispatch.Invocation) (*executor.NativeInvocation, error) {
	fmt.Fprintln(p.ctx.Stdout, provider.CompatBanner(p.ctx.Version, p.Name()))
	return nil, nil
}

func (p *Provider) passthrough(inv dispatch.Invocation) (*executor.NativeInvocation, error) {
	path := p.ctx.CLITool
	if path == "" {
		path = paths.NativeBinary(paths.ProviderGitHub)
	}
	return &executor.NativeInvocation{
		Path:        path,
		Args:        append([]string(nil), inv.Argv...),
		Env:         p.env,
		InstallHint: paths.InstallHint(paths.ProviderGitHub),
	}, nil
}
