// Package gitlab is the GitLab backend: it translates the supported
// GitHub CLI surface into glab invocations.
//
// The registry is assembled in a fixed order and the order is part of the
// backend's contract; tests pin it. Commands with a --json/--jq surface
// attach an output filter that maps glab's JSON back into GitHub
// vocabulary before projecting and querying it.
package gitlab

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/octoshim/octoshim/internal/dispatch"
	shimerrors "github.com/octoshim/octoshim/internal/errors"
	"github.com/octoshim/octoshim/internal/executor"
	"github.com/octoshim/octoshim/internal/fieldmap"
	"github.com/octoshim/octoshim/internal/paths"
	"github.com/octoshim/octoshim/internal/provider"
	"github.com/octoshim/octoshim/internal/translate"
)

func init() {
	provider.Register(paths.ProviderGitLab, func(pctx provider.Context) (provider.Provider, error) {
		return New(pctx)
	})
}

// Provider is the glab backend.
type Provider struct {
	ctx      provider.Context
	env      []string
	registry *dispatch.Registry
}

// New resolves the instance host and assembles the capability registry.
func New(pctx provider.Context) (*Provider, error) {
	pctx = provider.WithDefaults(pctx)

	host, err := ResolveHost(pctx.Instance)
	if err != nil {
		return nil, err
	}
	if host == "" && pctx.Instance == "" {
		// Nothing configured: follow the host glab itself is set up for
		// instead of assuming the public instance.
		if h := nativeConfigHost(); h != "" {
			if resolved, rerr := ResolveHost(h); rerr == nil {
				host = resolved
			}
		}
	}

	p := &Provider{ctx: pctx}
	if host != "" {
		p.env = []string{"GITLAB_HOST=" + host}
	}
	p.registry = p.build()
	return p, nil
}

// Name implements provider.Provider.
func (p *Provider) Name() string { return paths.ProviderGitLab }

// Registry implements provider.Provider.
func (p *Provider) Registry() *dispatch.Registry { return p.registry }

func (p *Provider) build() *dispatch.Registry {
	b := dispatch.NewBuilder()

	b.Handle("version", dispatch.MatchAnyOf(
		dispatch.MatchBareFlag("--version"),
		dispatch.MatchVerbOnly("version"),
	), p.version)

	b.Handle("auth status", dispatch.MatchExact("auth", "status"),
		p.exec([]string{"auth", "status"}, authStatusRules, nil))
	b.Handle("auth login", dispatch.MatchExact("auth", "login"),
		p.exec([]string{"auth", "login"}, authLoginRules, nil))

	b.Handle("issue view", dispatch.MatchExact("issue", "view"),
		p.exec([]string{"issue", "view"}, issueViewRules, issueTable))
	b.Handle("issue create", dispatch.MatchExact("issue", "create"),
		p.exec([]string{"issue", "create"}, issueCreateRules, nil))
	b.Handle("issue edit", dispatch.MatchExact("issue", "edit"),
		p.exec([]string{"issue", "update"}, issueEditRules, nil))
	b.Handle("issue comment", dispatch.MatchExact("issue", "comment"),
		p.exec([]string{"issue", "note"}, issueCommentRules, nil))
	b.Handle("issue close", dispatch.MatchExact("issue", "close"),
		p.exec([]string{"issue", "close"}, issueCloseRules, nil))
	b.Handle("issue reopen", dispatch.MatchExact("issue", "reopen"),
		p.exec([]string{"issue", "reopen"}, issueReopenRules, nil))
	b.Handle("issue list", dispatch.MatchExact("issue", "list"),
		p.exec([]string{"issue", "list"}, issueListRules, issueTable))

	b.Handle("repo view", dispatch.MatchExact("repo", "view"),
		p.exec([]string{"repo", "view"}, repoViewRules, repoTable))

	b.Handle("label create", dispatch.MatchExact("label", "create"),
		p.exec([]string{"label", "create"}, labelCreateRules, nil))
	b.Handle("label list", dispatch.MatchExact("label", "list"),
		p.exec([]string{"label", "list"}, labelListRules, labelTable))
	b.Handle("label edit", dispatch.MatchExact("label", "edit"),
		p.exec([]string{"label", "update"}, labelEditRules, nil))
	b.Handle("label delete", dispatch.MatchExact("label", "delete"),
		p.exec([]string{"label", "delete"}, labelDeleteRules, nil))

	b.Deny("label", "clone")
	b.Deny("extension", "list")

	if p.ctx.Passthrough {
		b.Handle("passthrough", dispatch.MatchAny(), p.passthrough)
	}
	return b.Build()
}

// exec binds one native command to its rule set and optional field table.
func (p *Provider) exec(words []string, rules *translate.RuleSet, table *fieldmap.Table) dispatch.TranslateFunc {
	return func(inv dispatch.Invocation) (*executor.NativeInvocation, error) {
		return p.invoke(words, rules, table, inv)
	}
}

func (p *Provider) invoke(words []string, rules *translate.RuleSet, table *fieldmap.Table, inv dispatch.Invocation) (*executor.NativeInvocation, error) {
	res, err := rules.Apply(translate.Input{
		Args:           inv.Rest(),
		Stdin:          p.ctx.Stdin,
		StdinAvailable: inv.StdinAvailable,
	})
	if err != nil {
		return nil, err
	}
	for _, w := range res.Warnings {
		p.ctx.Logger.Warn(w)
	}

	nat := &executor.NativeInvocation{
		Path:        p.cliTool(),
		Args:        append(append([]string(nil), words...), res.Args...),
		Env:         p.env,
		Cleanup:     res.Cleanup,
		InstallHint: paths.InstallHint(paths.ProviderGitLab),
	}

	fields, expr := res.Captured["json"], res.Captured["jq"]
	if expr != "" && fields == "" {
		if res.Cleanup != nil {
			_ = res.Cleanup()
		}
		return nil, errors.Wrap(shimerrors.ErrTranslation, "--jq requires --json")
	}
	if fields != "" {
		nat.Args = append(nat.Args, "--output", "json")
		nat.Filter = jsonFilter(table, fields, expr)
	}
	return nat, nil
}

func (p *Provider) cliTool() string {
	if p.ctx.CLITool != "" {
		return p.ctx.CLITool
	}
	return paths.NativeBinary(paths.ProviderGitLab)
}

// version answers in-shim: there is no native invocation to run.
func (p *Provider) version(dispatch.Invocation) (*executor.NativeInvocation, error) {
	fmt.Fprintln(p.ctx.Stdout, provider.CompatBanner(p.ctx.Version, p.Name()))
	return nil, nil
}

// passthrough forwards the argument vector verbatim. Reachable only when
// the permissive fallback is enabled; it sits last in the registry.
func (p *Provider) passthrough(inv dispatch.Invocation) (*executor.NativeInvocation, error) {
	return &executor.NativeInvocation{
		Path:        p.cliTool(),
		Args:        append([]string(nil), inv.Argv...),
		Env:         p.env,
		InstallHint: paths.InstallHint(paths.ProviderGitLab),
	}, nil
}

// jsonFilter is the postprocess pipeline behind --json/--jq: map the
// native payload into GitHub vocabulary, project the requested fields,
// then evaluate the query when one was given.
func jsonFilter(table *fieldmap.Table, fields, expr string) executor.OutputFilter {
	return func(out []byte) ([]byte, error) {
		doc, err := table.Apply(string(out), fieldmap.ToGitHub)
		if err != nil {
			return nil, err
		}
		doc, err = fieldmap.Project(doc, splitFields(fields))
		if err != nil {
			return nil, err
		}
		if expr == "" {
			return []byte(fieldmap.Compact(doc) + "\n"), nil
		}
		lines, err := fieldmap.Query(doc, expr)
		if err != nil {
			return nil, err
		}
		if len(lines) == 0 {
			return nil, nil
		}
		return []byte(strings.Join(lines, "\n") + "\n"), nil
	}
}

func splitFields(csv string) []string {
	parts := strings.Split(csv, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
