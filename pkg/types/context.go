package types

import "context"

// ContextKey is the type for context values set by the server middleware.
type ContextKey string

const (
	ContextKeyUserID        ContextKey = "user_id"
	ContextKeyQueryID       ContextKey = "query_id"
	ContextKeyRequestSource ContextKey = "request_source"
)

// QueryIDFromContext returns the per-request query id, or "" outside a
// server request.
func QueryIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ContextKeyQueryID).(string); ok {
		return v
	}
	return ""
}
