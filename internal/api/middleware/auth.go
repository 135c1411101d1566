package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/phrazzld/memberguard/internal/api/shared"
	"github.com/phrazzld/memberguard/internal/platform/logger"
	"github.com/phrazzld/memberguard/internal/service/auth"
)

// TokenValidator validates dashboard access tokens.
type TokenValidator interface {
	ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error)
}

// AuthMiddleware provides JWT authentication for routes.
type AuthMiddleware struct {
	tokens TokenValidator
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(tokens TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Authenticate validates the bearer token and stores the Discord user id in
// the request context. The request logger is tagged with the user id.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		claims, err := m.tokens.ValidateToken(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Token expired", err)
			case errors.Is(err, auth.ErrInvalidToken),
				errors.Is(err, auth.ErrWrongTokenType),
				errors.Is(err, auth.ErrTokenNotYetValid):
				shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Invalid token", err,
					shared.WithElevatedLogLevel())
			default:
				shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Authentication error", err)
			}
			return
		}

		ctx := shared.WithUserID(r.Context(), claims.DiscordUserID)
		log := logger.FromContext(ctx).With("discord_user_id", claims.DiscordUserID)
		ctx = logger.WithLogger(ctx, log)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
