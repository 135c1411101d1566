package shared

import (
	"context"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
)

func TestSetTraceID(t *testing.T) {
	t.Run("generates an id", func(t *testing.T) {
		ctx := SetTraceID(context.Background())
		assert.Len(t, GetTraceID(ctx), TraceIDLength*2)
	})

	t.Run("reuses the chi request id", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "host/abc-000001")
		assert.Equal(t, "host/abc-000001", GetTraceID(SetTraceID(ctx)))
	})

	t.Run("missing", func(t *testing.T) {
		assert.Empty(t, GetTraceID(context.Background()))
	})
}

func TestUserID(t *testing.T) {
	_, ok := GetUserID(context.Background())
	assert.False(t, ok)

	_, ok = GetUserID(WithUserID(context.Background(), ""))
	assert.False(t, ok)

	id, ok := GetUserID(WithUserID(context.Background(), "123456789012345678"))
	assert.True(t, ok)
	assert.Equal(t, "123456789012345678", id)
}
