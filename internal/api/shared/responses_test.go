package shared

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/memberguard/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondWithJSON(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	RespondWithJSON(w, r, http.StatusCreated, map[string]int{"count": 2})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"count":2}`, w.Body.String())
}

func TestRespondWithError(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = r.WithContext(context.WithValue(r.Context(), TraceIDKey, "trace-123"))

	RespondWithError(w, r, http.StatusNotFound, "Channel not found")

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Channel not found", resp.Error)
	assert.Equal(t, "trace-123", resp.TraceID)
}

func TestRespondWithErrorAndLog(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		opts      []ResponseOption
		wantLevel string
	}{
		{name: "server error", status: http.StatusInternalServerError, wantLevel: "ERROR"},
		{name: "rate limited", status: http.StatusTooManyRequests, wantLevel: "WARN"},
		{name: "client error", status: http.StatusBadRequest, wantLevel: "DEBUG"},
		{
			name:      "elevated client error",
			status:    http.StatusUnauthorized,
			opts:      []ResponseOption{WithElevatedLogLevel()},
			wantLevel: "WARN",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/memberships", nil)
			r = r.WithContext(logger.WithLogger(r.Context(), l))

			err := errors.New("dial postgres://user:secret@db:5432/app failed")
			RespondWithErrorAndLog(w, r, tc.status, "Something went wrong", err, tc.opts...)

			assert.Equal(t, tc.status, w.Code)
			assert.NotContains(t, w.Body.String(), "postgres", "raw errors never reach the client")

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tc.wantLevel, entry["level"])
			assert.NotContains(t, entry["error"], "secret")
		})
	}
}
