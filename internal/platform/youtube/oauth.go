package youtube

import (
	"context"
	"errors"
	"fmt"

	"github.com/phrazzld/memberguard/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/youtube/v3"
)

// ErrNoRefreshToken is returned when Google did not grant offline access.
var ErrNoRefreshToken = errors.New("authorization did not include a refresh token")

// OAuth wraps the Google OAuth client used to link YouTube accounts.
type OAuth struct {
	cfg *oauth2.Config
}

// NewOAuth creates the OAuth client from configuration.
func NewOAuth(cfg config.YouTubeConfig) *OAuth {
	return newOAuth(cfg, google.Endpoint)
}

func newOAuth(cfg config.YouTubeConfig, endpoint oauth2.Endpoint) *OAuth {
	return &OAuth{
		cfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       []string{youtube.YoutubeForceSslScope},
		},
	}
}

// AuthURL returns the consent page URL. state is echoed back to the callback.
func (o *OAuth) AuthURL(state string) string {
	// consent is forced so Google always returns a refresh token
	return o.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for a token that includes a refresh token.
func (o *OAuth) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := o.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	if token.RefreshToken == "" {
		return nil, ErrNoRefreshToken
	}
	return token, nil
}

// TokenSource returns a token source that refreshes access tokens from refreshToken.
func (o *OAuth) TokenSource(ctx context.Context, refreshToken string) oauth2.TokenSource {
	return o.cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
}
