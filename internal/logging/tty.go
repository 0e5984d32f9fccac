package logging

import (
	"io"
	"os"

	"golang.org/x/term"
)

// fdWriter is any writer exposing an underlying file descriptor, which
// os.File and most of its wrappers do.
type fdWriter interface {
	Fd() uintptr
}

// IsTTY reports whether w writes to a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(fdWriter)
	return ok && term.IsTerminal(int(f.Fd()))
}

// StdinIsPiped reports whether stdin is not a terminal, meaning data was
// piped or redirected in. Translations that read a body from "-" or a
// token from stdin use this to reject interactive invocations up front.
func StdinIsPiped() bool {
	return !term.IsTerminal(int(os.Stdin.Fd()))
}

// SupportsColor reports whether w can take ANSI color codes: it must be
// a TTY, NO_COLOR must be unset, and TERM must not be "dumb".
func SupportsColor(w io.Writer) bool {
	return supportsColor(w, IsTTY(w))
}

func supportsColor(_ io.Writer, isTTY bool) bool {
	// NO_COLOR is checked for presence, not value (https://no-color.org).
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isTTY
}
