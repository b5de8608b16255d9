package services

import "context"

type contextKey string

const (
	itemIDKey    contextKey = "item_id"
	itemKindKey  contextKey = "item_kind"
	workerKey    contextKey = "worker"
	requestIDKey contextKey = "request_id"
)

// WithItemID annotates context with the work item identifier.
func WithItemID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, itemIDKey, id)
}

// ItemIDFromContext extracts the work item identifier if present.
func ItemIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(itemIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithItemKind annotates context with the work item kind.
func WithItemKind(ctx context.Context, kind string) context.Context {
	if kind == "" {
		return ctx
	}
	return context.WithValue(ctx, itemKindKey, kind)
}

// ItemKindFromContext returns the work item kind if present.
func ItemKindFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(itemKindKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithWorker annotates context with the consumer loop name.
func WithWorker(ctx context.Context, worker string) context.Context {
	if worker == "" {
		return ctx
	}
	return context.WithValue(ctx, workerKey, worker)
}

// WorkerFromContext returns the consumer loop name if present.
func WorkerFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(workerKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
