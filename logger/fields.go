package logger

import (
	"context"

	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across cpisync.
const (
	// Identity and context
	FieldRunID     = "run_id"
	FieldTrigger   = "trigger"
	FieldComponent = "component"

	// Requests
	FieldURL    = "url"
	FieldMethod = "method"
	FieldStatus = "status"

	// Periods
	FieldCursor = "cursor"
	FieldNext   = "next"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError     = "error"
	FieldErrorCode = "error_code"

	// Counts and sizes
	FieldCount = "count"
	FieldSize  = "size"
	FieldItems = "items"

	// Files and paths
	FieldFile = "file"
)

type contextKey string

const (
	runIDKey   contextKey = "logger_run_id"
	triggerKey contextKey = "logger_trigger"
)

// WithRunID adds a run ID to the context for logging
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// WithTrigger records what started the run (cli, nats, ticker)
func WithTrigger(ctx context.Context, trigger string) context.Context {
	return context.WithValue(ctx, triggerKey, trigger)
}

// RunIDFromContext returns the run ID stored in ctx, if any.
func RunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey).(string)
	return id
}

// FieldsFromContext extracts logging fields from context.
// Returns key-value pairs suitable for use with Infow/Errorw/etc.
func FieldsFromContext(ctx context.Context) []interface{} {
	var fields []interface{}

	if runID, ok := ctx.Value(runIDKey).(string); ok && runID != "" {
		fields = append(fields, FieldRunID, runID)
	}
	if trigger, ok := ctx.Value(triggerKey).(string); ok && trigger != "" {
		fields = append(fields, FieldTrigger, trigger)
	}

	return fields
}

// FromContext returns base enriched with the fields stored in ctx.
// A nil base falls back to the global Logger.
func FromContext(ctx context.Context, base *zap.SugaredLogger) *zap.SugaredLogger {
	if base == nil {
		base = Logger
	}
	fields := FieldsFromContext(ctx)
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	type Client struct {
//	    logger *zap.SugaredLogger
//	}
//
//	func NewClient() *Client {
//	    return &Client{logger: logger.ComponentLogger("store")}
//	}
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}
