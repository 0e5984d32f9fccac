// Package errors provides error handling conventions for the octoshim CLI.
//
// This package defines the translation engine's failure taxonomy as
// sentinel errors, an ExitError type for CLI exit code handling, and the
// exit code constants that form part of the shim's compatibility contract.
//
// # Sentinel Errors
//
// Sentinel errors allow callers to check for specific failure classes
// using [errors.Is]:
//
//	if errors.Is(err, shimerrors.ErrUnsupportedCommand) {
//	    // no handler claimed the invocation
//	}
//
// # Exit Codes
//
// Wrapper-level failures use fixed codes; native CLI failures propagate
// the child's exit code verbatim:
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): User-related error (bad flag, missing value, bad JSON)
//   - ExitSystem (2): System-related error (wrapped CLI missing, exec failure)
//   - ExitUnsupported (4): No translation registered for the command
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code and optional
// suggestion. It supports error unwrapping via [errors.Unwrap] and
// [errors.As]:
//
//	err := shimerrors.NewSystemError(shimerrors.ErrNativeCLIMissing,
//	    "Install glab: https://gitlab.com/gitlab-org/cli#installation")
//	var exitErr *shimerrors.ExitError
//	if errors.As(err, &exitErr) {
//	    if exitErr.Suggestion != "" {
//	        fmt.Fprintln(os.Stderr, exitErr.Suggestion)
//	    }
//	    os.Exit(exitErr.Code)
//	}
//
// An ExitError with a nil underlying error is silent: it carries only the
// exit code of a native CLI child whose stderr already reached the caller.
package errors
