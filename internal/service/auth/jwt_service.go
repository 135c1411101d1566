package auth

import (
	"context"
	"time"
)

// Token types carried in the "type" claim.
const (
	TokenTypeAccess = "access"
	TokenTypeState  = "oauth_state"
)

// JWTService defines operations for managing JWT authentication tokens.
//
// Access tokens authenticate dashboard requests. State tokens travel through
// the Google consent screen as the OAuth state parameter and bind the callback
// to the Discord user who started the link.
type JWTService interface {
	// GenerateToken creates a signed access token for a Discord user.
	GenerateToken(ctx context.Context, discordUserID string) (string, error)

	// ValidateToken validates an access token and extracts its claims.
	// Returns ErrExpiredToken, ErrInvalidToken or ErrWrongTokenType on failure.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// GenerateStateToken creates a short-lived OAuth state token for a Discord user.
	GenerateStateToken(ctx context.Context, discordUserID string) (string, error)

	// ValidateStateToken validates an OAuth state token.
	// Any failure is reported as ErrInvalidState.
	ValidateStateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the custom claims structure for the JWT tokens.
type Claims struct {
	// DiscordUserID is the Discord snowflake of the user the token was issued for.
	DiscordUserID string `json:"uid,omitempty"`

	// TokenType indicates the purpose of the token.
	TokenType string `json:"type,omitempty"`

	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
