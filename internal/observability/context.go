package observability

import "context"

// ContextKey is the type for context keys used for log correlation.
type ContextKey string

const (
	// RequestIDKey is the context key for per-turn request IDs.
	RequestIDKey ContextKey = "request_id"

	// SessionIDKey is the context key for session IDs.
	SessionIDKey ContextKey = "session_id"

	// TaskIDKey is the context key for escalation task IDs.
	TaskIDKey ContextKey = "task_id"
)

// WithRequestID returns a context carrying the request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// WithSessionID returns a context carrying the session ID.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, SessionIDKey, id)
}

// WithTaskID returns a context carrying the escalation task ID.
func WithTaskID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, TaskIDKey, id)
}

// RequestID returns the request ID from the context, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// SessionID returns the session ID from the context, if any.
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(SessionIDKey).(string)
	return id
}

// TaskID returns the escalation task ID from the context, if any.
func TaskID(ctx context.Context) string {
	id, _ := ctx.Value(TaskIDKey).(string)
	return id
}
