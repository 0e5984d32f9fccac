// Package dispatch routes GitHub-CLI-shaped invocations to translation
// handlers.
//
// The registry is an ordered list built once at process start. Dispatch
// walks it front to back and the first handler whose predicate accepts the
// invocation wins, so registration order is part of the contract: a broad
// predicate registered early shadows everything behind it. Tests assert
// the order.
package dispatch

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	shimerrors "github.com/octoshim/octoshim/internal/errors"
	"github.com/octoshim/octoshim/internal/executor"
)

// Invocation is one parsed command line in GitHub CLI vocabulary.
// Immutable once constructed; one per process invocation.
type Invocation struct {
	// Verb is the first argument ("issue", "auth", or a bare flag like
	// "--version"). Empty for an empty command line.
	Verb string

	// Subcommand is the second argument when present ("view", "create").
	Subcommand string

	// Argv is the full original argument vector, verb included.
	Argv []string

	// StdinAvailable reports whether stdin carries piped data. Translations
	// that require piped input (--with-token) check it before reading.
	StdinAvailable bool
}

// ParseInvocation builds an Invocation from raw argv. It never fails:
// empty and single-element vectors produce partially filled invocations
// that dispatch will reject as unsupported.
func ParseInvocation(argv []string, stdinAvailable bool) Invocation {
	inv := Invocation{
		Argv:           argv,
		StdinAvailable: stdinAvailable,
	}
	if len(argv) > 0 {
		inv.Verb = argv[0]
	}
	if len(argv) > 1 {
		inv.Subcommand = argv[1]
	}
	return inv
}

// String returns the literal command text, for diagnostics.
func (inv Invocation) String() string {
	return strings.Join(inv.Argv, " ")
}

// Rest returns the arguments after the verb and subcommand positions.
func (inv Invocation) Rest() []string {
	if len(inv.Argv) > 2 {
		return inv.Argv[2:]
	}
	return nil
}

// MatchFunc reports whether a handler services an invocation.
// Predicates must be pure and must bounds-check anything beyond the verb
// and subcommand positions.
type MatchFunc func(Invocation) bool

// TranslateFunc builds the native invocation for an accepted command.
// It must be total over what its predicate claims: structural failures are
// bugs, missing user input surfaces as a translation error. A handler that
// answers the invocation itself (the compat version banner) returns
// (nil, nil) and the caller skips execution.
type TranslateFunc func(Invocation) (*executor.NativeInvocation, error)

// Handler is one registered command translation.
type Handler struct {
	// Name is a diagnostic label, unique within a registry.
	Name string

	// Match decides whether this handler claims the invocation.
	Match MatchFunc

	// Translate produces the native invocation for a claimed command.
	Translate TranslateFunc
}

// MatchExact matches a literal verb/subcommand pair.
func MatchExact(verb, subcommand string) MatchFunc {
	return func(inv Invocation) bool {
		return inv.Verb == verb && inv.Subcommand == subcommand
	}
}

// MatchVerbOnly matches a verb regardless of what follows it.
func MatchVerbOnly(verb string) MatchFunc {
	return func(inv Invocation) bool {
		return inv.Verb == verb
	}
}

// MatchBareFlag matches an invocation whose verb position holds a flag,
// such as --version.
func MatchBareFlag(flag string) MatchFunc {
	return func(inv Invocation) bool {
		return inv.Verb == flag
	}
}

// MatchAnyOf matches when any of the given predicates matches. Used for
// commands with spelling variants, like version's flag and verb forms.
func MatchAnyOf(matches ...MatchFunc) MatchFunc {
	return func(inv Invocation) bool {
		for _, m := range matches {
			if m(inv) {
				return true
			}
		}
		return false
	}
}

// MatchAny accepts every non-empty invocation. Used for the opt-in
// passthrough tail; anything registered after it is unreachable.
func MatchAny() MatchFunc {
	return func(inv Invocation) bool {
		return inv.Verb != ""
	}
}

// Builder assembles the ordered handler list.
type Builder struct {
	handlers []Handler
	names    map[string]struct{}
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		names: make(map[string]struct{}),
	}
}

// Handle appends a handler. It panics on an empty or duplicate name and on
// nil funcs; registration happens from static code at process start, so
// these are programmer errors, not runtime conditions.
func (b *Builder) Handle(name string, match MatchFunc, translate TranslateFunc) *Builder {
	if name == "" {
		panic("dispatch: handler name must not be empty")
	}
	if match == nil || translate == nil {
		panic(fmt.Sprintf("dispatch: handler %q has nil match or translate", name))
	}
	if _, dup := b.names[name]; dup {
		panic(fmt.Sprintf("dispatch: handler %q registered twice", name))
	}
	b.names[name] = struct{}{}
	b.handlers = append(b.handlers, Handler{
		Name:      name,
		Match:     match,
		Translate: translate,
	})
	return b
}

// Deny registers a handler that resolves the pair to UnsupportedCommand
// deliberately: the provider has no native equivalent and passthrough must
// not pick it up.
func (b *Builder) Deny(verb, subcommand string) *Builder {
	pair := verb + " " + subcommand
	return b.Handle("deny "+pair, MatchExact(verb, subcommand),
		func(inv Invocation) (*executor.NativeInvocation, error) {
			return nil, errors.Wrapf(shimerrors.ErrUnsupportedCommand,
				"%s has no native equivalent", pair)
		})
}

// Build returns the immutable registry.
func (b *Builder) Build() *Registry {
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	return &Registry{handlers: handlers}
}

// Registry is the ordered capability list. Read-only after Build.
type Registry struct {
	handlers []Handler
}

// Dispatch returns the first handler whose predicate accepts the
// invocation. No match is an UnsupportedCommand error carrying the literal
// command text, distinct from any native CLI runtime failure.
func (r *Registry) Dispatch(inv Invocation) (*Handler, error) {
	for i := range r.handlers {
		if r.handlers[i].Match(inv) {
			return &r.handlers[i], nil
		}
	}

	if len(inv.Argv) == 0 {
		return nil, errors.Wrap(shimerrors.ErrUnsupportedCommand, "no command given")
	}
	return nil, errors.Wrapf(shimerrors.ErrUnsupportedCommand, "%s", inv.String())
}

// Names returns the handler names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.handlers))
	for i, h := range r.handlers {
		names[i] = h.Name
	}
	return names
}

// Len returns the number of registered handlers.
func (r *Registry) Len() int {
	return len(r.handlers)
}
