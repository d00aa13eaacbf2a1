// Package observability provides logging helpers, Prometheus collectors and tracing setup.
package observability

import (
	"context"
	"log/slog"
	"time"
)

// Logger is the slog logger used by the helpers below. The middleware
// package installs the application's context-aware logger here on init.
var Logger = slog.Default()

// SetLogger replaces the logger used by the async helpers.
func SetLogger(l *slog.Logger) {
	if l != nil {
		Logger = l
	}
}

func attrsFrom(base []any, fields map[string]any) []any {
	for k, v := range fields {
		base = append(base, slog.Any(k, v))
	}
	return base
}

// LogAsyncOperationStart logs the start of an asynchronous operation.
func LogAsyncOperationStart(ctx context.Context, operation string, fields map[string]any) {
	attrs := attrsFrom([]any{
		slog.String("operation", operation),
		slog.String("type", "async_start"),
	}, fields)
	Logger.InfoContext(ctx, "async operation started", attrs...)
}

// LogAsyncOperationEnd logs the completion of an asynchronous operation.
func LogAsyncOperationEnd(ctx context.Context, operation string, started time.Time, fields map[string]any) {
	attrs := attrsFrom([]any{
		slog.String("operation", operation),
		slog.String("type", "async_end"),
		slog.Duration("duration", time.Since(started)),
	}, fields)
	Logger.InfoContext(ctx, "async operation completed", attrs...)
}

// LogAsyncOperationError logs an error in an asynchronous operation.
func LogAsyncOperationError(ctx context.Context, operation string, err error, fields map[string]any) {
	attrs := attrsFrom([]any{
		slog.String("operation", operation),
		slog.String("type", "async_error"),
		slog.String("error", err.Error()),
	}, fields)
	Logger.ErrorContext(ctx, "async operation failed", attrs...)
}
