package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/memberguard/internal/api/shared"
	"github.com/phrazzld/memberguard/internal/domain"
	"github.com/phrazzld/memberguard/internal/platform/logger"
	"github.com/phrazzld/memberguard/internal/service/auth"
)

// requireUserID extracts the authenticated Discord user id from the request
// context. It writes a 401 and returns false when none is present.
func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := shared.GetUserID(r.Context())
	if !ok {
		logger.FromContextOrDefault(r.Context(), slog.Default()).
			Warn("user ID not found in request context")
		HandleAPIError(w, r, auth.ErrMissingToken, "")
		return "", false
	}
	return userID, true
}

// parseUUID parses a request supplied identifier.
func parseUUID(name, value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, domain.NewValidationError(name, "is required", domain.ErrValidation)
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(name, "has invalid format", domain.ErrInvalidID)
	}
	return id, nil
}
