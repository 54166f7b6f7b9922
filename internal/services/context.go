package services

import "context"

type contextKey string

const (
	taskIDKey    contextKey = "task_id"
	surfaceKey   contextKey = "surface"
	requestIDKey contextKey = "request_id"
)

// WithTaskID annotates context with the render task identifier.
func WithTaskID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, taskIDKey, id)
}

// TaskIDFromContext extracts the render task identifier if present.
func TaskIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(taskIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithSurface annotates context with the preview surface name.
func WithSurface(ctx context.Context, surface string) context.Context {
	if surface == "" {
		return ctx
	}
	return context.WithValue(ctx, surfaceKey, surface)
}

// SurfaceFromContext returns the preview surface name if present.
func SurfaceFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(surfaceKey).(string); ok && v != "" {
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
