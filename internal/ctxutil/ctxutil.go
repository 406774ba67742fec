// Package ctxutil provides context utilities that can be safely imported anywhere.
// This package has no internal dependencies to avoid import cycles.
package ctxutil

import (
	"context"
	"log/slog"
)

// LoggerKey is the context key for a request-scoped logger.
// Exported so it can be used consistently across packages.
type LoggerKey struct{}

// WithLogger returns a context carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey{}, logger)
}

// Logger returns the logger stored in ctx, or fallback if none is set.
func Logger(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if v, ok := ctx.Value(LoggerKey{}).(*slog.Logger); ok && v != nil {
		return v
	}
	return fallback
}
