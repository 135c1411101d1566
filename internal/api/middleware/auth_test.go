package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/memberguard/internal/api/shared"
	"github.com/phrazzld/memberguard/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validatorFunc func(ctx context.Context, token string) (*auth.Claims, error)

func (f validatorFunc) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	return f(ctx, token)
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	t.Parallel()

	const userID = "123456789012345678"

	tests := []struct {
		name           string
		authHeader     string
		validateErr    error
		expectedStatus int
	}{
		{name: "valid token", authHeader: "Bearer valid-token", expectedStatus: http.StatusOK},
		{name: "lowercase scheme", authHeader: "bearer valid-token", expectedStatus: http.StatusOK},
		{name: "missing auth header", authHeader: "", expectedStatus: http.StatusUnauthorized},
		{name: "invalid auth format", authHeader: "InvalidFormat", expectedStatus: http.StatusUnauthorized},
		{
			name:           "expired token",
			authHeader:     "Bearer expired-token",
			validateErr:    auth.ErrExpiredToken,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "state token",
			authHeader:     "Bearer state-token",
			validateErr:    auth.ErrWrongTokenType,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "unexpected error",
			authHeader:     "Bearer token",
			validateErr:    errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mw := NewAuthMiddleware(validatorFunc(func(ctx context.Context, token string) (*auth.Claims, error) {
				if tc.validateErr != nil {
					return nil, tc.validateErr
				}
				return &auth.Claims{DiscordUserID: userID}, nil
			}))

			var gotUserID string
			handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUserID, _ = shared.GetUserID(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/memberships", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tc.expectedStatus, w.Code)
			if tc.expectedStatus == http.StatusOK {
				assert.Equal(t, userID, gotUserID)
				return
			}
			var resp shared.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestAuthMiddleware_RealTokens(t *testing.T) {
	svc := auth.RequireTestJWTService(t)
	mw := NewAuthMiddleware(svc)
	handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", auth.AuthHeaderForTestingT(t, svc, "123456789012345678"))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}
