package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/memberguard/internal/domain"
)

// Common request/response structures

// VerifyOAuthRequest defines the payload for the OAuth verification endpoint.
type VerifyOAuthRequest struct {
	ChannelID string `json:"channel_id" validate:"required,uuid"`
}

// ListChannelsQuery holds the query parameters of the channel listing endpoint.
type ListChannelsQuery struct {
	GuildID string `validate:"required,numeric,min=15,max=21"`
}

// MembershipResponse defines the response payload for a membership.
type MembershipResponse struct {
	ID         uuid.UUID  `json:"id"`
	ChannelID  uuid.UUID  `json:"channel_id"`
	Method     string     `json:"method"`
	Status     string     `json:"status"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	VerifiedAt time.Time  `json:"verified_at"`
}

// ChannelResponse defines the response payload for a configured channel.
// Role and video ids are internal and not exposed.
type ChannelResponse struct {
	ID               uuid.UUID `json:"id"`
	GuildID          string    `json:"guild_id"`
	YouTubeChannelID string    `json:"youtube_channel_id"`
	Title            string    `json:"title"`
}

// LinkResponse describes the YouTube account linked to the caller.
type LinkResponse struct {
	YouTubeChannelID string    `json:"youtube_channel_id"`
	LinkedAt         time.Time `json:"linked_at"`
}

// AuthURLResponse carries the Google consent URL that starts account linking.
type AuthURLResponse struct {
	URL string `json:"url"`
}

// QueueResponse reports the load of a job queue.
type QueueResponse struct {
	Name        string `json:"name"`
	Concurrency int    `json:"concurrency"`
	Running     int64  `json:"running"`
	Pending     int64  `json:"pending"`
}

func membershipToResponse(m *domain.Membership) MembershipResponse {
	return MembershipResponse{
		ID:         m.ID,
		ChannelID:  m.ChannelID,
		Method:     string(m.Method),
		Status:     string(m.Status),
		ExpiresAt:  m.ExpiresAt,
		VerifiedAt: m.VerifiedAt,
	}
}

func channelToResponse(c *domain.Channel) ChannelResponse {
	return ChannelResponse{
		ID:               c.ID,
		GuildID:          c.GuildID,
		YouTubeChannelID: c.YouTubeChannelID,
		Title:            c.Title,
	}
}
