// Package logger wraps log/slog with the fields and helpers the lookup
// service logs with: request IDs, lookup outcomes and source failures.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

type contextKey string

// RequestIDKey is the context key httpkit.RequestID stores the request ID under.
const RequestIDKey contextKey = "request_id"

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New logs to stdout: text at debug level in development, JSON otherwise.
func New(env string) *Logger {
	return NewWithWriter(env, os.Stdout)
}

// NewWithWriter creates a logger writing to w.
func NewWithWriter(env string, w io.Writer) *Logger {
	if strings.EqualFold(env, "development") {
		return &Logger{Logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))}
	}
	return &Logger{Logger: slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return NewWithWriter("production", io.Discard)
}

// WithContext tags the logger with the request ID carried by ctx, if any.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}
	if id, ok := ctx.Value(RequestIDKey).(string); ok && id != "" {
		return &Logger{Logger: l.With(slog.String("request_id", id))}
	}
	return l
}

// HTTPRequest logs an HTTP request
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// SourceFailure logs a lookup source that errored or timed out. The lookup
// carries on without that source.
func (l *Logger) SourceFailure(source, number string, err error) {
	l.Warn("lookup_source_failure",
		slog.String("source", source),
		slog.String("number", number),
		slog.String("error", err.Error()),
	)
}

// LookupResolved logs the outcome of a consolidated lookup.
func (l *Logger) LookupResolved(number, nameSource string, cached bool, took time.Duration) {
	l.Debug("lookup_resolved",
		slog.String("number", number),
		slog.String("name_source", nameSource),
		slog.Bool("cached", cached),
		slog.Duration("took", took),
	)
}

// DatabaseError logs database errors
func (l *Logger) DatabaseError(operation string, err error) {
	l.Error("database_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
