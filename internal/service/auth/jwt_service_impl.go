package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/memberguard/internal/config"
	"github.com/phrazzld/memberguard/internal/platform/logger"
)

// stateTokenLifetime bounds how long a user may sit on the Google consent screen.
const stateTokenLifetime = 10 * time.Minute

// hmacJWTService is an implementation of JWTService using HMAC-SHA signing.
type hmacJWTService struct {
	signingKey         []byte
	tokenLifetime      time.Duration
	stateTokenLifetime time.Duration
	timeFunc           func() time.Time // Injectable for testing
	clockSkew          time.Duration    // Allowed time difference for validation to handle clock drift
}

// jwtCustomClaims defines the structure of JWT claims we use
type jwtCustomClaims struct {
	DiscordUserID string `json:"uid"`
	TokenType     string `json:"type"`
	jwt.RegisteredClaims
}

// Ensure hmacJWTService implements JWTService interface
var _ JWTService = (*hmacJWTService)(nil)

// NewJWTService creates a new JWT service using HMAC-SHA signing.
func NewJWTService(cfg config.AuthConfig) (JWTService, error) {
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 characters")
	}
	if cfg.TokenLifetimeMinutes <= 0 {
		return nil, fmt.Errorf("token lifetime must be positive")
	}

	return newHMACJWTService(
		cfg.JWTSecret,
		time.Duration(cfg.TokenLifetimeMinutes)*time.Minute,
		time.Now,
	), nil
}

func newHMACJWTService(secret string, lifetime time.Duration, timeFunc func() time.Time) *hmacJWTService {
	return &hmacJWTService{
		signingKey:         []byte(secret),
		tokenLifetime:      lifetime,
		stateTokenLifetime: stateTokenLifetime,
		timeFunc:           timeFunc,
		clockSkew:          2 * time.Minute,
	}
}

// GenerateToken creates a signed JWT access token with user claims.
func (s *hmacJWTService) GenerateToken(ctx context.Context, discordUserID string) (string, error) {
	return s.generate(ctx, discordUserID, TokenTypeAccess, s.tokenLifetime)
}

// ValidateToken validates a JWT access token and returns the claims if valid.
func (s *hmacJWTService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	return s.validate(ctx, tokenString, TokenTypeAccess)
}

// GenerateStateToken creates a signed OAuth state token.
func (s *hmacJWTService) GenerateStateToken(ctx context.Context, discordUserID string) (string, error) {
	return s.generate(ctx, discordUserID, TokenTypeState, s.stateTokenLifetime)
}

// ValidateStateToken validates an OAuth state token. The callers only need to
// know whether the state is acceptable, so every failure maps to ErrInvalidState.
func (s *hmacJWTService) ValidateStateToken(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := s.validate(ctx, tokenString, TokenTypeState)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	return claims, nil
}

func (s *hmacJWTService) generate(
	ctx context.Context,
	discordUserID string,
	tokenType string,
	lifetime time.Duration,
) (string, error) {
	log := logger.FromContext(ctx)
	now := s.timeFunc()

	claims := jwtCustomClaims{
		DiscordUserID: discordUserID,
		TokenType:     tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   discordUserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.signingKey)
	if err != nil {
		log.Error("failed to sign JWT",
			"error", err,
			"discord_user_id", discordUserID,
			"token_type", tokenType,
			"signing_method", jwt.SigningMethodHS256.Name)
		return "", fmt.Errorf("failed to sign %s token with HMAC-SHA256: %w", tokenType, err)
	}

	return signedToken, nil
}

func (s *hmacJWTService) validate(ctx context.Context, tokenString string, tokenType string) (*Claims, error) {
	log := logger.FromContext(ctx)
	now := s.timeFunc()

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(s.clockSkew),
		jwt.WithTimeFunc(func() time.Time {
			return now
		}),
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&jwtCustomClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		parserOpts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			log.Debug("token validation failed: token expired", "error", err, "token_type", tokenType)
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			log.Debug("token validation failed: token not yet valid", "error", err, "token_type", tokenType)
			return nil, ErrTokenNotYetValid
		default:
			log.Debug("token validation failed",
				"error", err,
				"token_type", tokenType,
				"error_type", fmt.Sprintf("%T", err))
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*jwtCustomClaims)
	if !ok || !token.Valid {
		log.Debug("token validation failed: invalid claims")
		return nil, ErrInvalidToken
	}
	if claims.TokenType != tokenType {
		log.Debug("token validation failed: wrong token type",
			"expected", tokenType,
			"actual", claims.TokenType)
		return nil, ErrWrongTokenType
	}
	if claims.DiscordUserID == "" {
		return nil, ErrInvalidToken
	}

	log.Debug("token validated successfully",
		"discord_user_id", claims.DiscordUserID,
		"token_type", tokenType,
		"token_id", claims.ID)

	return &Claims{
		DiscordUserID: claims.DiscordUserID,
		TokenType:     claims.TokenType,
		Subject:       claims.Subject,
		IssuedAt:      claims.IssuedAt.Time,
		ExpiresAt:     claims.ExpiresAt.Time,
		ID:            claims.ID,
	}, nil
}
