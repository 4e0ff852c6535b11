// Package logging is the structured logger used by the client and the stub
// API. SlogLogger backs it with log/slog.
package logging

import "context"

// Logger takes a message followed by alternating keys and values:
//
//	log.Debug(ctx, "gateway response", "method", "GET", "path", path, "status", status)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	// Warn is for conditions the program recovers from, such as falling
	// back to the local mirror.
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a logger that adds args to every record, e.g.
	// logger.With("module", "session").
	With(args ...any) Logger
}
