package logging

import (
	"context"
	"log/slog"

	"conveyor/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldItemID is the standardized structured logging key for work item identifiers.
	FieldItemID = "item_id"
	// FieldItemKind is the standardized structured logging key for work item kinds.
	FieldItemKind = "item_kind"
	// FieldWorker is the standardized structured logging key for consumer loop names.
	FieldWorker = "worker"
	// FieldTarget is the standardized structured logging key for health probe target names.
	FieldTarget = "target"
	// FieldPath is the standardized structured logging key for filesystem paths.
	FieldPath = "path"
	// FieldEventType is the standardized structured logging key for machine-readable event names.
	FieldEventType = "event_type"
	// FieldErrorHint is the standardized structured logging key for operator next steps.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldAlert flags warnings or anomalies that should stand out in structured logs.
	FieldAlert = "alert"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if id, ok := services.ItemIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldItemID, id))
	}
	if kind, ok := services.ItemKindFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldItemKind, kind))
	}
	if worker, ok := services.WorkerFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldWorker, worker))
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
	return logger.With(attrsToArgs(fields)...)
}
