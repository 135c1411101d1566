package auth

import (
	"context"
	"testing"

	"github.com/phrazzld/memberguard/internal/config"
	"github.com/stretchr/testify/require"
)

// DefaultJWTConfig returns a standard configuration for JWT authentication suitable for testing.
func DefaultJWTConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:            "test-jwt-secret-that-is-32-chars-long",
		TokenLifetimeMinutes: 60,
		EncryptionKey:        "test-encryption-key-that-is-32-chars",
	}
}

// RequireTestJWTService creates a test JWT service and uses require to handle errors.
func RequireTestJWTService(t *testing.T) JWTService {
	t.Helper()
	service, err := NewJWTService(DefaultJWTConfig())
	require.NoError(t, err, "Failed to create test JWT service")
	return service
}

// AuthHeaderForTestingT creates an Authorization header value carrying a
// valid access token for discordUserID.
func AuthHeaderForTestingT(t *testing.T, svc JWTService, discordUserID string) string {
	t.Helper()
	token, err := svc.GenerateToken(context.Background(), discordUserID)
	require.NoError(t, err, "Failed to generate auth header")
	return "Bearer " + token
}
