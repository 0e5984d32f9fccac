package errors

import (
	"errors"
	"fmt"
)

// Exit codes for the octoshim CLI.
//
// Downstream automation keys off these, so they are part of the public
// contract: wrapper-level failures use the fixed codes below, while a
// native CLI failure propagates the child's own exit code verbatim.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitUser indicates a user-related error (bad flag, missing required
	// value, malformed JSON input).
	ExitUser = 1

	// ExitSystem indicates a system-related error (wrapped CLI not
	// installed, exec plumbing failure).
	ExitSystem = 2

	// ExitUnsupported indicates the command has no registered translation.
	// Distinct from ExitUser so CI can distinguish "missing translation"
	// from ordinary usage errors.
	ExitUnsupported = 4
)

// Sentinel errors for the translation engine's failure taxonomy.
var (
	// ErrUnsupportedCommand indicates no handler claimed the invocation.
	// The error message always carries the literal verb/subcommand text.
	ErrUnsupportedCommand = errors.New("unsupported command")

	// ErrTranslation indicates a required flag or value was missing or
	// malformed while rewriting an invocation. Fatal to that invocation.
	ErrTranslation = errors.New("translation failed")

	// ErrMalformedInput indicates the field mapper was handed invalid
	// JSON. The input is never partially rewritten.
	ErrMalformedInput = errors.New("malformed JSON input")

	// ErrNativeCLIMissing indicates the wrapped executable could not be
	// found. Callers attach install guidance via ExitError.Suggestion.
	ErrNativeCLIMissing = errors.New("native CLI not found")
)

// ExitError wraps an error with an exit code and optional suggestion.
// It implements the error interface and supports unwrapping via
// errors.Unwrap.
type ExitError struct {
	// Err is the underlying error that caused the exit.
	Err error

	// Code is the exit code to return to the operating system.
	Code int

	// Suggestion is an optional actionable suggestion for the user.
	Suggestion string
}

// NewExitError creates an ExitError with the given underlying error and
// exit code. If err is nil the ExitError is silent: main exits with the
// code without printing anything, which is how a native CLI failure
// propagates (the child already wrote its own stderr).
func NewExitError(err error, code int) *ExitError {
	return &ExitError{
		Err:  err,
		Code: code,
	}
}

// NewUserError creates an ExitError with ExitUser code and a suggestion.
func NewUserError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: suggestion,
	}
}

// NewSystemError creates an ExitError with ExitSystem code and a suggestion.
func NewSystemError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitSystem,
		Suggestion: suggestion,
	}
}

// Error returns the error message from the underlying error.
// If the underlying error is nil, it returns a generic message with the
// exit code.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error, enabling errors.Is and errors.As
// to examine the error chain.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// Silent reports whether the error carries no message of its own.
// Native CLI failures are silent: the child's stderr already went through.
func (e *ExitError) Silent() bool {
	return e.Err == nil
}

// Code maps an error to its process exit code.
// An explicit ExitError wins; otherwise the taxonomy sentinels decide,
// and anything unclassified is a user error.
func Code(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	switch {
	case errors.Is(err, ErrUnsupportedCommand):
		return ExitUnsupported
	case errors.Is(err, ErrNativeCLIMissing):
		return ExitSystem
	default:
		return ExitUser
	}
}
