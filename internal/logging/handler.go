package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/octoshim/octoshim/internal/doctor"
)

// Handler is a slog.Handler that renders compact single-line text for
// terminals. Colors are enabled only when the writer is a color-capable
// TTY, and credential-shaped attribute values are masked before they
// reach the output.
type Handler struct {
	opts     slog.HandlerOptions
	out      io.Writer
	mu       *sync.Mutex
	attrs    []slog.Attr
	groups   []string
	useColor bool
	colors   palette
}

// palette groups the colors one handler renders with.
type palette struct {
	time  *color.Color
	trace *color.Color
	debug *color.Color
	info  *color.Color
	warn  *color.Color
	err   *color.Color
	key   *color.Color
}

func newPalette() palette {
	return palette{
		time:  color.New(color.FgHiBlack),
		trace: color.New(color.FgHiBlack),
		debug: color.New(color.FgMagenta),
		info:  color.New(color.FgGreen),
		warn:  color.New(color.FgYellow),
		err:   color.New(color.FgRed, color.Bold),
		key:   color.New(color.FgCyan),
	}
}

func (p palette) forLevel(l slog.Level) *color.Color {
	switch {
	case l >= slog.LevelError:
		return p.err
	case l >= slog.LevelWarn:
		return p.warn
	case l >= slog.LevelInfo:
		return p.info
	case l >= slog.LevelDebug:
		return p.debug
	default:
		return p.trace
	}
}

// NewHandler creates a text handler writing to out. A nil opts means
// default options (info level).
func NewHandler(out io.Writer, opts *slog.HandlerOptions) *Handler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	h := &Handler{
		opts: *opts,
		out:  out,
		mu:   &sync.Mutex{},
	}
	if SupportsColor(out) {
		h.useColor = true
		h.colors = newPalette()
	}
	return h
}

// Enabled reports whether records at level would be written.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	min := slog.LevelInfo
	if h.opts.Level != nil {
		min = h.opts.Level.Level()
	}
	return level >= min
}

// Handle renders one record as "TIME LEVEL message k=v ...". The line is
// assembled off-lock and written in a single call so records from
// concurrent goroutines never interleave.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var line strings.Builder

	if !r.Time.IsZero() {
		stamp := r.Time.Format(time.Kitchen)
		if h.useColor {
			stamp = h.colors.time.Sprint(stamp)
		}
		line.WriteString(stamp)
		line.WriteByte(' ')
	}

	level := levelString(r.Level)
	if h.useColor {
		level = h.colors.forLevel(r.Level).Sprint(level)
	}
	fmt.Fprintf(&line, "%-5s ", level)

	line.WriteString(r.Message)

	for _, a := range h.attrs {
		h.writeAttr(&line, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(&line, a)
		return true
	})
	line.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, line.String())
	return err
}

// levelString renders trace as its own name instead of slog's DEBUG-4.
func levelString(level slog.Level) string {
	if level <= LevelTrace {
		return "TRACE"
	}
	return level.String()
}

func (h *Handler) writeAttr(line *strings.Builder, a slog.Attr) {
	key := a.Key
	if h.useColor {
		key = h.colors.key.Sprint(key)
	}

	value := a.Value.Any()

	// Token material moves through the shim when commands like
	// "auth login --with-token" are translated; it must never land
	// in diagnostics.
	if doctor.ShouldMask(a.Key) {
		value = doctor.MaskValue(fmt.Sprint(value))
	} else if s, ok := value.(string); ok && doctor.ContainsTokenPrefix(s) {
		value = doctor.MaskValue(s)
	}

	fmt.Fprintf(line, " %s=%v", key, value)
}

// WithAttrs returns a handler that renders attrs on every record, ahead
// of the record's own attributes.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

// WithGroup returns a handler scoped to name. Groups only track nesting;
// keys are not prefixed.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string{}, h.groups...), name)
	return &clone
}
