package domain

import (
	"errors"
	"time"
)

// ErrEmptyRefreshToken is returned when a link carries no sealed token.
var ErrEmptyRefreshToken = errors.New("refresh token cannot be empty")

// YouTubeLink ties a Discord user to the YouTube account they authorized.
type YouTubeLink struct {
	DiscordUserID    string
	YouTubeChannelID string
	// SealedRefreshToken is the OAuth refresh token encrypted at rest.
	SealedRefreshToken []byte
	UpdatedAt          time.Time
}

// Validate checks if the YouTubeLink has valid data.
func (l *YouTubeLink) Validate() error {
	if err := ValidateSnowflake(l.DiscordUserID); err != nil {
		return err
	}
	if l.YouTubeChannelID == "" {
		return ErrEmptyYouTubeChannelID
	}
	if len(l.SealedRefreshToken) == 0 {
		return ErrEmptyRefreshToken
	}
	return nil
}
