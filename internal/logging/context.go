package logging

import (
	"context"
	"log/slog"
)

// ctxKey is an unexported type to prevent collisions with context keys
// from other packages.
type ctxKey struct{}

// NewContext returns a new context with the provided logger embedded.
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext extracts the logger from a context. If no logger is found,
// it returns the default logger so callers never need a nil check.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
