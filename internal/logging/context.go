package logging

import (
	"context"
	"log/slog"

	"sppin/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldAuthority is the standardized structured logging key for authority names.
	FieldAuthority = "authority"
	// FieldSearchKey is the standardized structured logging key for search keys.
	FieldSearchKey = "search_key"
	// FieldTier is the standardized structured logging key for resolver tiers.
	FieldTier = "tier"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldEventType classifies a log line for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint carries the suggested next step for warnings and errors.
	FieldErrorHint = "error_hint"
	// FieldStatus is the envelope status at the time of logging.
	FieldStatus = "status"
	// FieldStatusMessage is the envelope status message at the time of logging.
	FieldStatusMessage = "status_message"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if authority, ok := services.AuthorityFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldAuthority, authority))
	}
	if key, ok := services.SearchKeyFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldSearchKey, key))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
