// Package executor runs translated native CLI invocations, preserving the
// wrapper's exit-code and stdout/stderr contract.
package executor

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/octoshim/octoshim/internal/doctor"
	shimerrors "github.com/octoshim/octoshim/internal/errors"
)

// OutputFilter rewrites the native CLI's captured stdout before it reaches
// the caller. Handlers use it for JSON postprocessing (field mapping,
// projection, queries).
type OutputFilter func([]byte) ([]byte, error)

// NativeInvocation is the fully translated command, ready to exec.
// It is always executed as an argv list, never through a shell.
type NativeInvocation struct {
	// Path is the executable name or path. Bare names resolve via PATH.
	Path string

	// Args is the argument vector, in the exact order the native CLI's
	// parser expects.
	Args []string

	// Env holds KEY=VALUE overrides appended to the child's environment.
	// The parent environment is never mutated.
	Env []string

	// Filter, when set, buffers the child's stdout and rewrites it before
	// the wrapper prints it. When nil the child inherits the streams.
	Filter OutputFilter

	// Cleanup releases resources the translation materialized (temp files
	// for stdin sentinels). It always runs, regardless of exec outcome.
	Cleanup func() error

	// InstallHint names where to get the native CLI if it is missing.
	InstallHint string
}

// Executor runs native invocations. The zero value is not usable; construct
// with New.
type Executor struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
}

// New creates an Executor bound to the process's standard streams.
func New(logger *slog.Logger) *Executor {
	return &Executor{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		logger: logger,
	}
}

// NewWithStreams creates an Executor with explicit streams, for tests and
// for callers that capture output.
func NewWithStreams(stdin io.Reader, stdout, stderr io.Writer, logger *slog.Logger) *Executor {
	return &Executor{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		logger: logger,
	}
}

// Run executes the native invocation and returns nil on a zero exit.
// A non-zero child exit comes back as a silent ExitError carrying the
// child's code verbatim; the child's stderr has already reached the caller.
func (e *Executor) Run(ctx context.Context, inv *NativeInvocation) (err error) {
	if inv.Cleanup != nil {
		defer func() {
			if cerr := inv.Cleanup(); cerr != nil {
				e.logger.Warn("cleanup failed", "error", cerr)
			}
		}()
	}

	path, lookErr := exec.LookPath(inv.Path)
	if lookErr != nil {
		return shimerrors.NewSystemError(
			errors.Wrapf(shimerrors.ErrNativeCLIMissing, "%s", inv.Path),
			inv.InstallHint,
		)
	}

	e.logger.Debug("exec", "path", path, "args", redactedArgs(inv.Args))
	if len(inv.Env) > 0 {
		e.logger.Debug("env overrides", "env", strings.Join(inv.Env, " "))
	}

	cmd := exec.CommandContext(ctx, path, inv.Args...)
	cmd.Env = append(os.Environ(), inv.Env...)
	cmd.Stdin = e.stdin
	cmd.Stderr = e.stderr

	if inv.Filter == nil {
		cmd.Stdout = e.stdout
		return exitResult(cmd.Run())
	}

	var buf bytes.Buffer
	cmd.Stdout = &buf

	if runErr := cmd.Run(); runErr != nil {
		// Child failed: its stdout goes through untouched, the filter
		// never runs, and the exit code propagates.
		if buf.Len() > 0 {
			_, _ = e.stdout.Write(buf.Bytes())
		}
		return exitResult(runErr)
	}

	filtered, ferr := inv.Filter(buf.Bytes())
	if ferr != nil {
		return ferr
	}
	_, werr := e.stdout.Write(filtered)
	return werr
}

// exitResult converts an exec error into the wrapper's error taxonomy.
func exitResult(err error) error {
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code < 0 {
			// Terminated by signal; exit codes cannot be negative.
			code = 1
		}
		return shimerrors.NewExitError(nil, code)
	}

	if errors.Is(err, exec.ErrNotFound) {
		return errors.Wrap(shimerrors.ErrNativeCLIMissing, err.Error())
	}

	return shimerrors.NewExitError(errors.Wrap(err, "executing native CLI"), shimerrors.ExitSystem)
}

// redactedArgs joins argv for the debug echo with token-shaped values masked.
func redactedArgs(args []string) string {
	out := make([]string, len(args))
	for i, a := range args {
		if doctor.ContainsTokenPrefix(a) {
			out[i] = doctor.MaskValue(a)
		} else {
			out[i] = a
		}
	}
	return strings.Join(out, " ")
}
