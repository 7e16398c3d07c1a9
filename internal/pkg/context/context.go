package context

import (
	"context"
)

// ContextKey represents a key for context values
type ContextKey string

const (
	// RequestIDKey is the key for the HTTP request id
	RequestIDKey ContextKey = "request_id"
	// ConnIDKey is the key for the WebSocket connection id a call came from
	ConnIDKey ContextKey = "conn_id"
)

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithConnID tags ctx with the connection that issued a call
func WithConnID(ctx context.Context, connID string) context.Context {
	if connID == "" {
		return ctx
	}
	return context.WithValue(ctx, ConnIDKey, connID)
}

// GetConnID retrieves the connection id from context
func GetConnID(ctx context.Context) string {
	if connID, ok := ctx.Value(ConnIDKey).(string); ok {
		return connID
	}
	return ""
}
