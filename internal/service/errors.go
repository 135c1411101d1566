package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in service-specific error types
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer and the bot map service errors to user-facing responses
var (
	// ErrChannelNotFound indicates the channel being verified is not configured.
	// API layer should map this to HTTP 404 Not Found.
	ErrChannelNotFound = errors.New("channel not found")

	// ErrChannelExists indicates the guild already has the YouTube channel configured.
	ErrChannelExists = errors.New("channel already registered")

	// ErrNotLinked indicates the user has not linked a YouTube account.
	// API layer should map this to HTTP 409 Conflict.
	ErrNotLinked = errors.New("youtube account not linked")

	// ErrNotMember indicates the linked account has no access to the members-only video.
	// API layer should map this to HTTP 403 Forbidden.
	ErrNotMember = errors.New("not a channel member")

	// ErrRecognitionFailed indicates the OCR job did not produce a result.
	// The cause is logged by the OCR queue. API layer should map this to HTTP 502.
	ErrRecognitionFailed = errors.New("screenshot recognition failed")

	// ErrEvidenceRejected indicates the screenshot text does not prove a membership.
	// The wrapped error names the failed check. API layer should map this to HTTP 422.
	ErrEvidenceRejected = errors.New("screenshot does not prove membership")

	// ErrRoleGrantFailed indicates the membership was recorded but the Discord role
	// could not be granted. Retrying the verification is safe.
	ErrRoleGrantFailed = errors.New("failed to grant discord role")

	// ErrInvalidInput indicates a request argument failed validation.
	// API layer should map this to HTTP 400 Bad Request.
	ErrInvalidInput = errors.New("invalid input")
)
