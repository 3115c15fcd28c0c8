// Package logger provides structured logging infrastructure for the
// application. This is part of the platform layer and contains no business
// logic.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Context key types for storing values in context
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// ActorIDKey is the context key for the acting user ID
	ActorIDKey contextKey = "actor_id"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithContext returns a logger with request_id and actor_id extracted from
// the context when present.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	out := l

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		out = &Logger{Logger: out.With(slog.String("request_id", requestID))}
	}

	if actorID, ok := ctx.Value(ActorIDKey).(string); ok && actorID != "" {
		out = &Logger{Logger: out.With(slog.String("actor_id", actorID))}
	}

	return out
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

// RemoteSyncError logs a failed write-behind persistence attempt. The local
// cache already holds the mutation, so this is reported, never retried here.
func (l *Logger) RemoteSyncError(entityType, entityID string, attempt int, err error) {
	l.Error("remote_sync_error",
		slog.String("entity_type", entityType),
		slog.String("entity_id", entityID),
		slog.Int("attempt", attempt),
		slog.String("error", err.Error()),
	)
}

// DatabaseError logs database errors
func (l *Logger) DatabaseError(operation string, err error) {
	l.Error("database_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// RateLimitExceeded logs rate limit events
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
