package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
)

// Format selects how log records are rendered.
type Format string

const (
	// FormatText renders single-line text for terminals.
	FormatText Format = "text"
	// FormatJSON renders one JSON object per record.
	FormatJSON Format = "json"
)

// LevelTrace sits one step below slog.LevelDebug. It carries the raw argv
// echo of every native invocation, which is too noisy for normal debug runs.
const LevelTrace = slog.Level(-8)

// Config describes the logger New builds.
type Config struct {
	// Level is the minimum level emitted.
	Level slog.Level
	// Format picks text or JSON rendering. Unknown values mean text.
	Format Format
	// Output receives the records; nil means os.Stderr.
	Output io.Writer
}

// New builds a logger from cfg.
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	return slog.New(handlerFor(cfg.Format, out, &slog.HandlerOptions{Level: cfg.Level}))
}

func handlerFor(f Format, out io.Writer, opts *slog.HandlerOptions) slog.Handler {
	if f == FormatJSON {
		return slog.NewJSONHandler(out, opts)
	}
	return NewHandler(out, opts)
}

// Default returns the logger a plain shim run uses: text to stderr at
// Warn, so nothing is added to stderr unless something is actually wrong.
func Default() *slog.Logger {
	return New(Config{Level: slog.LevelWarn})
}

// NewDiscard returns a logger that drops everything.
func NewDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// LevelFromVerbosity maps a verbosity count to a level: 0 warns only,
// 1 adds info, 2 adds debug, anything higher adds the trace echo.
func LevelFromVerbosity(v int) slog.Level {
	switch {
	case v <= 0:
		return slog.LevelWarn
	case v == 1:
		return slog.LevelInfo
	case v == 2:
		return slog.LevelDebug
	default:
		return LevelTrace
	}
}

// testWriter routes handler output into a test's log.
type testWriter struct {
	t *testing.T
}

func (w *testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	// t.Log appends its own newline.
	w.t.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}

// ForTest returns a trace-level logger whose output lands in t's log, so
// it is shown only for failing tests or under -v.
func ForTest(t *testing.T) *slog.Logger {
	t.Helper()
	return New(Config{
		Level:  LevelTrace,
		Output: &testWriter{t: t},
	})
}
