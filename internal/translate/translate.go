// Package translate rewrites GitHub-CLI flag vectors into a native CLI's
// vocabulary.
//
// A RuleSet describes one recognized command: what each source flag
// becomes, what happens to positionals, and which flags are required.
// Applying a rule set is a single left-to-right scan over the argument
// vector; rules emit their output at the position of the source flag, so
// relative argument order survives translation.
package translate

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"

	shimerrors "github.com/octoshim/octoshim/internal/errors"
)

// ruleKind selects the translation behavior of a Rule.
type ruleKind int

const (
	kindRename ruleKind = iota
	kindPassBool
	kindSplitList
	kindValueFunc
	kindValueSwitch
	kindFileOrStdin
	kindFileToValue
	kindTokenFromStdin
	kindDrop
	kindDropWarn
	kindCapture
)

// Rule describes the translation of one source flag. Construct rules with
// the package's constructor functions; the zero value is not valid.
type Rule struct {
	source     string
	aliases    []string
	takesValue bool
	kind       ruleKind
	target     string
	valueFn    func(string) (string, error)
	cases      map[string]string
	warning    string
	captureKey string
}

// Pass forwards a value-taking flag unchanged.
func Pass(flag string, aliases ...string) Rule {
	return Rename(flag, flag, aliases...)
}

// PassBool forwards a boolean flag unchanged.
func PassBool(flag string, aliases ...string) Rule {
	return Rule{source: flag, aliases: aliases, kind: kindPassBool, target: flag}
}

// Rename emits the target flag with the source's value passed through.
func Rename(source, target string, aliases ...string) Rule {
	return Rule{source: source, aliases: aliases, takesValue: true, kind: kindRename, target: target}
}

// SplitList explodes a comma-joined value into repeated target flags.
// Repeated source occurrences are preserved in order.
func SplitList(source, target string, aliases ...string) Rule {
	return Rule{source: source, aliases: aliases, takesValue: true, kind: kindSplitList, target: target}
}

// ValueFunc emits the target flag with the value rewritten by fn.
func ValueFunc(source, target string, fn func(string) (string, error), aliases ...string) Rule {
	return Rule{source: source, aliases: aliases, takesValue: true, kind: kindValueFunc, target: target, valueFn: fn}
}

// ValueSwitch maps each accepted source value to a boolean target flag.
// An empty target means the value translates to the native default and
// emits nothing. Values outside the case table are translation errors.
func ValueSwitch(source string, cases map[string]string, aliases ...string) Rule {
	return Rule{source: source, aliases: aliases, takesValue: true, kind: kindValueSwitch, cases: cases}
}

// FileOrStdin renames a file-path flag. The sentinel value "-" reads
// standard input and materializes it to a temp file, since the native CLI
// has no stdin sentinel; the caller must run Result.Cleanup.
func FileOrStdin(source, target string, aliases ...string) Rule {
	return Rule{source: source, aliases: aliases, takesValue: true, kind: kindFileOrStdin, target: target}
}

// FileToValue reads the content of a file-path flag (or standard input for
// "-") and emits it as the target flag's literal value, for native flags
// that take a message instead of a file.
func FileToValue(source, target string, aliases ...string) Rule {
	return Rule{source: source, aliases: aliases, takesValue: true, kind: kindFileToValue, target: target}
}

// TokenFromStdin handles boolean source flags that demand piped input
// (--with-token): standard input is read in full and passed as the target
// flag's value, with surrounding whitespace trimmed.
func TokenFromStdin(source, target string) Rule {
	return Rule{source: source, kind: kindTokenFromStdin, target: target}
}

// Drop consumes the flag (and its value when takesValue) without emitting
// anything.
func Drop(source string, takesValue bool, aliases ...string) Rule {
	return Rule{source: source, aliases: aliases, takesValue: takesValue, kind: kindDrop}
}

// DropWarn consumes the flag like Drop and records a warning for stderr.
func DropWarn(source string, takesValue bool, warning string, aliases ...string) Rule {
	return Rule{source: source, aliases: aliases, takesValue: takesValue, kind: kindDropWarn, warning: warning}
}

// Capture consumes a value flag and stores it in Result.Captured under key
// instead of emitting it. Repeated occurrences accumulate comma-joined.
func Capture(source, key string, aliases ...string) Rule {
	return Rule{source: source, aliases: aliases, takesValue: true, kind: kindCapture, captureKey: key}
}

// Positionals is a RuleSet's policy for non-flag arguments.
type Positionals struct {
	// Min and Max bound how many positionals the command accepts.
	// Max of -1 means unlimited.
	Min, Max int

	// Name describes the positional in error messages ("issue number").
	Name string

	// MoveToFlag, when set, emits each positional as this native flag's
	// value instead of passing it through in place.
	MoveToFlag string
}

// NoPositionals is the policy for commands that take flags only.
var NoPositionals = Positionals{Min: 0, Max: 0}

// RuleSet holds the translation rules for one recognized command.
// Immutable after construction; safe to share.
type RuleSet struct {
	positionals Positionals
	bySource    map[string]*Rule
	required    []string
}

// NewRuleSet builds a RuleSet. It panics on duplicate flag names across
// rules and aliases: rule tables are static code, so a collision is a
// programmer error.
func NewRuleSet(positionals Positionals, rules ...Rule) *RuleSet {
	rs := &RuleSet{
		positionals: positionals,
		bySource:    make(map[string]*Rule),
	}
	for i := range rules {
		r := &rules[i]
		for _, name := range append([]string{r.source}, r.aliases...) {
			if name == "" {
				panic("translate: rule with empty flag name")
			}
			if _, dup := rs.bySource[name]; dup {
				panic(fmt.Sprintf("translate: flag %s claimed by two rules", name))
			}
			rs.bySource[name] = r
		}
	}
	return rs
}

// Require marks source flags as mandatory. Applying the rule set fails
// with a translation error when any of them is absent.
func (rs *RuleSet) Require(flags ...string) *RuleSet {
	for _, f := range flags {
		if _, known := rs.bySource[f]; !known {
			panic(fmt.Sprintf("translate: required flag %s has no rule", f))
		}
	}
	rs.required = append(rs.required, flags...)
	return rs
}

// Input carries the runtime inputs of one translation.
type Input struct {
	// Args is the argument vector after the verb and subcommand.
	Args []string

	// Stdin is where sentinel values read from. Nil means os.Stdin.
	Stdin io.Reader

	// StdinAvailable reports whether stdin carries piped data.
	StdinAvailable bool
}

// Result is the outcome of applying a RuleSet.
type Result struct {
	// Args is the translated argument vector, without the native command
	// words (the handler prepends those).
	Args []string

	// Captured holds values consumed by Capture rules, keyed by rule key.
	Captured map[string]string

	// Warnings collects DropWarn messages for the caller to log to stderr.
	Warnings []string

	// Cleanup removes temp files created for stdin sentinels. Nil when
	// nothing was materialized.
	Cleanup func() error
}

// Apply scans the argument vector and produces the native vector.
// The scan handles --flag value and --flag=value forms, treats "--" as the
// end of flags, and rejects unknown flags for the command.
func (rs *RuleSet) Apply(in Input) (*Result, error) {
	res := &Result{
		Captured: make(map[string]string),
	}
	var (
		tempFiles   []string
		positionals int
		seen        = make(map[string]bool)
		flagsEnded  bool
	)

	cleanup := func() error {
		var first error
		for _, f := range tempFiles {
			if err := os.Remove(f); err != nil && first == nil {
				first = err
			}
		}
		return first
	}
	fail := func(err error) (*Result, error) {
		// Nothing partial escapes: drop temp files on any failure.
		_ = cleanup()
		return nil, err
	}

	args := in.Args
	for i := 0; i < len(args); i++ {
		tok := args[i]

		if flagsEnded || !strings.HasPrefix(tok, "-") || tok == "-" {
			if err := rs.emitPositional(res, tok, &positionals); err != nil {
				return fail(err)
			}
			continue
		}
		if tok == "--" {
			flagsEnded = true
			continue
		}

		name, inline, hasInline := strings.Cut(tok, "=")
		rule, known := rs.bySource[name]
		if !known {
			return fail(errors.Wrapf(shimerrors.ErrTranslation, "unsupported flag: %s", name))
		}
		seen[rule.source] = true

		var value string
		if rule.takesValue {
			if hasInline {
				value = inline
			} else {
				if i+1 >= len(args) {
					return fail(errors.Wrapf(shimerrors.ErrTranslation, "flag needs an argument: %s", name))
				}
				i++
				value = args[i]
			}
		} else if hasInline {
			// Boolean flag written as --flag=true/false.
			switch inline {
			case "true":
			case "false":
				continue
			default:
				return fail(errors.Wrapf(shimerrors.ErrTranslation, "invalid value %q for %s", inline, name))
			}
		}

		path, err := rule.emit(res, value, in)
		if err != nil {
			return fail(err)
		}
		if path != "" {
			tempFiles = append(tempFiles, path)
		}
	}

	for _, req := range rs.required {
		if !seen[req] {
			_ = cleanup()
			return nil, errors.Wrapf(shimerrors.ErrTranslation, "required flag not provided: %s", req)
		}
	}
	if positionals < rs.positionals.Min {
		_ = cleanup()
		name := rs.positionals.Name
		if name == "" {
			name = "argument"
		}
		return nil, errors.Wrapf(shimerrors.ErrTranslation, "missing required argument: <%s>", name)
	}

	if len(tempFiles) > 0 {
		res.Cleanup = cleanup
	}
	return res, nil
}

// emitPositional applies the positional policy to one non-flag token.
func (rs *RuleSet) emitPositional(res *Result, tok string, count *int) error {
	if rs.positionals.Max >= 0 && *count >= rs.positionals.Max {
		return errors.Wrapf(shimerrors.ErrTranslation, "unexpected argument: %q", tok)
	}
	*count++
	if rs.positionals.MoveToFlag != "" {
		res.Args = append(res.Args, rs.positionals.MoveToFlag, tok)
		return nil
	}
	res.Args = append(res.Args, tok)
	return nil
}

// emit applies one matched rule. It returns the path of a temp file it
// materialized, if any.
func (r *Rule) emit(res *Result, value string, in Input) (string, error) {
	switch r.kind {
	case kindRename:
		res.Args = append(res.Args, r.target, value)

	case kindPassBool:
		res.Args = append(res.Args, r.target)

	case kindSplitList:
		for _, item := range strings.Split(value, ",") {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			res.Args = append(res.Args, r.target, item)
		}

	case kindValueFunc:
		out, err := r.valueFn(value)
		if err != nil {
			return "", errors.Wrapf(shimerrors.ErrTranslation, "invalid value %q for %s: %v", value, r.source, err)
		}
		res.Args = append(res.Args, r.target, out)

	case kindValueSwitch:
		target, ok := r.cases[value]
		if !ok {
			return "", errors.Wrapf(shimerrors.ErrTranslation, "invalid value %q for %s", value, r.source)
		}
		if target != "" {
			res.Args = append(res.Args, target)
		}

	case kindFileOrStdin:
		if value != "-" {
			res.Args = append(res.Args, r.target, value)
			return "", nil
		}
		path, err := materializeStdin(in)
		if err != nil {
			return "", err
		}
		res.Args = append(res.Args, r.target, path)
		return path, nil

	case kindFileToValue:
		content, err := readFileOrStdin(value, in)
		if err != nil {
			return "", err
		}
		res.Args = append(res.Args, r.target, content)

	case kindTokenFromStdin:
		if !in.StdinAvailable {
			return "", errors.Wrapf(shimerrors.ErrTranslation, "%s requires a token on standard input", r.source)
		}
		data, err := io.ReadAll(stdin(in))
		if err != nil {
			return "", errors.Wrapf(shimerrors.ErrTranslation, "reading token from stdin: %v", err)
		}
		res.Args = append(res.Args, r.target, strings.TrimSpace(string(data)))

	case kindDrop:
		// Consumed, nothing emitted.

	case kindDropWarn:
		res.Warnings = append(res.Warnings, r.warning)

	case kindCapture:
		if prev, ok := res.Captured[r.captureKey]; ok && prev != "" {
			res.Captured[r.captureKey] = prev + "," + value
		} else {
			res.Captured[r.captureKey] = value
		}
	}
	return "", nil
}

func stdin(in Input) io.Reader {
	if in.Stdin != nil {
		return in.Stdin
	}
	return os.Stdin
}

// materializeStdin copies standard input into a temp file and returns its
// path. The native CLI reads the file where gh would have read the pipe.
func materializeStdin(in Input) (string, error) {
	f, err := os.CreateTemp("", "octoshim-body-*.md")
	if err != nil {
		return "", errors.Wrap(err, "creating temp file for stdin")
	}
	_, copyErr := io.Copy(f, stdin(in))
	closeErr := f.Close()
	if copyErr != nil {
		os.Remove(f.Name())
		return "", errors.Wrap(copyErr, "reading stdin")
	}
	if closeErr != nil {
		os.Remove(f.Name())
		return "", errors.Wrap(closeErr, "writing temp file")
	}
	return f.Name(), nil
}

// readFileOrStdin returns the content behind a file-path value, honoring
// the "-" sentinel.
func readFileOrStdin(value string, in Input) (string, error) {
	if value == "-" {
		data, err := io.ReadAll(stdin(in))
		if err != nil {
			return "", errors.Wrap(err, "reading stdin")
		}
		return string(data), nil
	}
	data, err := os.ReadFile(value)
	if err != nil {
		return "", errors.Wrapf(shimerrors.ErrTranslation, "reading %s: %v", value, err)
	}
	return string(data), nil
}
