package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Channel
var (
	ErrEmptyYouTubeChannelID = errors.New("youtube channel ID cannot be empty")
	ErrEmptyChannelTitle     = errors.New("channel title cannot be empty")
	ErrEmptyMembersVideoID   = errors.New("members-only video ID cannot be empty")
)

// Channel is a YouTube channel whose members receive a role in a Discord guild.
type Channel struct {
	ID               uuid.UUID `json:"id"`
	GuildID          string    `json:"guild_id"`
	YouTubeChannelID string    `json:"youtube_channel_id"`
	Title            string    `json:"title"`
	// MembersVideoID is a members-only video; access to its comments proves membership.
	MembersVideoID string    `json:"members_video_id"`
	RoleID         string    `json:"role_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewChannel creates a validated Channel with a fresh ID.
func NewChannel(guildID, youtubeChannelID, title, membersVideoID, roleID string) (*Channel, error) {
	now := time.Now().UTC()
	c := &Channel{
		ID:               uuid.New(),
		GuildID:          guildID,
		YouTubeChannelID: strings.TrimSpace(youtubeChannelID),
		Title:            strings.TrimSpace(title),
		MembersVideoID:   strings.TrimSpace(membersVideoID),
		RoleID:           roleID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks if the Channel has valid data.
func (c *Channel) Validate() error {
	if c.ID == uuid.Nil {
		return fmt.Errorf("%w: channel", ErrInvalidID)
	}
	if err := ValidateSnowflake(c.GuildID); err != nil {
		return fmt.Errorf("guild: %w", err)
	}
	if err := ValidateSnowflake(c.RoleID); err != nil {
		return fmt.Errorf("role: %w", err)
	}
	if c.YouTubeChannelID == "" {
		return ErrEmptyYouTubeChannelID
	}
	if c.Title == "" {
		return ErrEmptyChannelTitle
	}
	if c.MembersVideoID == "" {
		return ErrEmptyMembersVideoID
	}
	return nil
}

// ValidateSnowflake reports whether id looks like a Discord snowflake.
func ValidateSnowflake(id string) error {
	if len(id) < 15 || len(id) > 21 {
		return fmt.Errorf("%w: %q", ErrInvalidSnowflake, id)
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: %q", ErrInvalidSnowflake, id)
		}
	}
	return nil
}
