// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

const (
	// RequestIDKey is the context key for request ID.
	RequestIDKey contextKey = "request_id"
	// AccountIDKey is the context key for the tenant account ID.
	AccountIDKey contextKey = "account_id"
)

// Logger wraps slog.Logger for structured logging.
type Logger struct {
	*slog.Logger
}

// New creates a logger based on environment: human-readable text output in
// development, JSON everywhere else.
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

	return &Logger{Logger: slog.New(handler)}
}

// WithContext returns a logger annotated with request/tenant values from ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	out := l

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		out = &Logger{Logger: out.With(slog.String("request_id", requestID))}
	}
	if accountID, ok := ctx.Value(AccountIDKey).(string); ok && accountID != "" {
		out = &Logger{Logger: out.With(slog.String("account_id", accountID))}
	}

	return out
}

// WithAccount returns a logger annotated with the tenant account ID.
func (l *Logger) WithAccount(accountID uuid.UUID) *Logger {
	return &Logger{Logger: l.With(slog.String("account_id", accountID.String()))}
}

// HTTPRequest logs an HTTP request.
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// DatabaseError logs database errors.
func (l *Logger) DatabaseError(operation string, err error) {
	l.Error("database_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// CaptureEvent logs a lead capture run.
func (l *Logger) CaptureEvent(accountID, conversationID uuid.UUID, intent string, created bool, score int) {
	l.Info("lead_capture",
		slog.String("account_id", accountID.String()),
		slog.String("conversation_id", conversationID.String()),
		slog.String("intent", intent),
		slog.Bool("created", created),
		slog.Int("score", score),
	)
}

// SweepResult logs the outcome of a stale-lead sweep.
func (l *Logger) SweepResult(marked int64, batches int) {
	l.Info("stale_sweep",
		slog.Int64("marked", marked),
		slog.Int("batches", batches),
	)
}

// WebhookEvent logs inbound webhook deliveries.
func (l *Logger) WebhookEvent(event string, accountID uuid.UUID, messages int) {
	l.Info("webhook_event",
		slog.String("event", event),
		slog.String("account_id", accountID.String()),
		slog.Int("messages", messages),
	)
}

// RateLimitExceeded logs rate limit events.
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
