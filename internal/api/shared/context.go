package shared

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// ContextKey is the type of the request context keys set by the API layer.
type ContextKey string

// Context keys for various values
const (
	// UserIDContextKey holds the authenticated Discord user id (string)
	UserIDContextKey ContextKey = "discordUserID"

	// TraceIDKey is the key for the trace ID in the request context
	TraceIDKey ContextKey = "traceID"

	// TraceIDLength is the number of bytes used to generate the trace ID
	TraceIDLength = 16 // 32 hex characters
)

// SetTraceID adds a trace ID to the context. The chi request id is reused when
// present so access logs and error responses carry the same identifier.
func SetTraceID(ctx context.Context) context.Context {
	traceID := middleware.GetReqID(ctx)
	if traceID == "" {
		traceID = generateTraceID()
	}
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID retrieves the trace ID from the context.
// If no trace ID exists, it returns an empty string.
func GetTraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(TraceIDKey).(string)
	return traceID
}

// WithUserID returns a copy of ctx carrying the authenticated Discord user id.
func WithUserID(ctx context.Context, discordUserID string) context.Context {
	return context.WithValue(ctx, UserIDContextKey, discordUserID)
}

// GetUserID extracts the authenticated Discord user id from ctx.
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDContextKey).(string)
	return userID, ok && userID != ""
}

func generateTraceID() string {
	b := make([]byte, TraceIDLength)
	if _, err := rand.Read(b); err != nil {
		// uuid keeps its own entropy source
		return uuid.NewString()
	}
	return hex.EncodeToString(b)
}
