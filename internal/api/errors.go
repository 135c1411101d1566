package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/memberguard/internal/api/shared"
	"github.com/phrazzld/memberguard/internal/domain"
	"github.com/phrazzld/memberguard/internal/platform/youtube"
	"github.com/phrazzld/memberguard/internal/service"
	"github.com/phrazzld/memberguard/internal/service/auth"
	"github.com/phrazzld/memberguard/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrNotMember):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, service.ErrChannelNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, service.ErrNotLinked),
		errors.Is(err, youtube.ErrAuthorizationRevoked):
		return http.StatusConflict

	// Unprocessable content
	case errors.Is(err, service.ErrEvidenceRejected),
		errors.Is(err, youtube.ErrNoChannel),
		errors.Is(err, youtube.ErrNoRefreshToken):
		return http.StatusUnprocessableEntity

	// Upstream failures
	case errors.Is(err, service.ErrRecognitionFailed),
		errors.Is(err, service.ErrRoleGrantFailed),
		errors.Is(err, youtube.ErrVideoNotFound):
		return http.StatusBadGateway

	// Bad request errors
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, auth.ErrInvalidState),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidSnowflake),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, shared.ErrMissingFile):
		return http.StatusBadRequest

	case errors.Is(err, shared.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidState):
		return "Authorization request expired, start linking again"

	case errors.Is(err, service.ErrNotMember):
		return "Your YouTube account is not a member of this channel"

	case errors.Is(err, service.ErrChannelNotFound):
		return "Channel not found"

	case errors.Is(err, service.ErrNotLinked):
		return "Link your YouTube account first"

	case errors.Is(err, youtube.ErrAuthorizationRevoked):
		return "YouTube access was revoked, link your account again"

	case errors.Is(err, youtube.ErrNoChannel):
		return "Your Google account has no YouTube channel"

	case errors.Is(err, youtube.ErrNoRefreshToken):
		return "Google did not grant offline access, link your account again"

	case errors.Is(err, service.ErrEvidenceRejected):
		return "Screenshot does not prove an active membership"

	case errors.Is(err, service.ErrRecognitionFailed):
		return "Could not read the screenshot, try again later"

	case errors.Is(err, service.ErrRoleGrantFailed):
		return "Membership verified but the role could not be granted, try again"

	case errors.Is(err, youtube.ErrVideoNotFound):
		return "The channel's members-only video is unavailable"

	case errors.Is(err, shared.ErrFileTooLarge):
		return "Screenshot is too large"

	case errors.Is(err, shared.ErrMissingFile):
		return "Screenshot is required"

	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidSnowflake):
		return SanitizeValidationError(err)

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
	}

	var valErr *domain.ValidationError
	if errors.As(err, &valErr) {
		return fmt.Sprintf("Invalid %s: %s", valErr.Field, valErr.Message)
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "uuid", "uuid4":
		return "invalid identifier"
	case "numeric":
		return "must be numeric"
	case "min":
		return "too short"
	case "max":
		return "too long"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the status and safe message for err and logs the raw
// error. fallbackMsg replaces the generic message for unmapped errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallbackMsg string) {
	status := MapErrorToStatusCode(err)
	msg := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallbackMsg != "" {
		msg = fallbackMsg
	}
	shared.RespondWithErrorAndLog(w, r, status, msg, err)
}
