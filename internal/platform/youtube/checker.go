package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// Checker errors.
var (
	// ErrVideoNotFound means the configured members-only video does not exist.
	ErrVideoNotFound = errors.New("members-only video not found")

	// ErrNoChannel means the authorized Google account owns no YouTube channel.
	ErrNoChannel = errors.New("account has no YouTube channel")

	// ErrAuthorizationRevoked means the stored refresh token is no longer valid.
	ErrAuthorizationRevoked = errors.New("youtube authorization revoked")
)

// Checker queries the YouTube Data API on behalf of linked accounts.
type Checker struct {
	logger *slog.Logger
	opts   []option.ClientOption
}

// NewChecker creates a Checker. opts are appended to every service client and
// are mostly useful to point the client at a test server.
func NewChecker(logger *slog.Logger, opts ...option.ClientOption) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{
		logger: logger.With("component", "youtube_checker"),
		opts:   opts,
	}
}

func (c *Checker) service(ctx context.Context, ts oauth2.TokenSource) (*youtube.Service, error) {
	opts := append([]option.ClientOption{option.WithTokenSource(ts)}, c.opts...)
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}
	return svc, nil
}

// IsMember reports whether the account behind ts can read the comments of
// the members-only video videoID.
func (c *Checker) IsMember(ctx context.Context, ts oauth2.TokenSource, videoID string) (bool, error) {
	svc, err := c.service(ctx, ts)
	if err != nil {
		return false, err
	}

	_, err = svc.CommentThreads.List([]string{"id"}).
		VideoId(videoID).
		MaxResults(1).
		Context(ctx).
		Do()
	if err == nil {
		return true, nil
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusForbidden:
			c.logger.DebugContext(ctx, "members-only video not accessible",
				"video_id", videoID)
			return false, nil
		case http.StatusNotFound:
			return false, fmt.Errorf("%w: %s", ErrVideoNotFound, videoID)
		}
	}
	if isRevoked(err) {
		return false, ErrAuthorizationRevoked
	}
	return false, fmt.Errorf("failed to list comment threads: %w", err)
}

// ChannelID returns the id of the channel owned by the account behind ts.
func (c *Checker) ChannelID(ctx context.Context, ts oauth2.TokenSource) (string, error) {
	svc, err := c.service(ctx, ts)
	if err != nil {
		return "", err
	}

	resp, err := svc.Channels.List([]string{"id"}).Mine(true).Context(ctx).Do()
	if err != nil {
		if isRevoked(err) {
			return "", ErrAuthorizationRevoked
		}
		return "", fmt.Errorf("failed to list channels: %w", err)
	}
	if len(resp.Items) == 0 {
		return "", ErrNoChannel
	}
	return resp.Items[0].Id, nil
}

// isRevoked detects a refresh failure caused by an invalid or revoked grant.
func isRevoked(err error) bool {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return retrieveErr.ErrorCode == "invalid_grant"
	}
	return false
}
