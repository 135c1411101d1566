package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// VerificationMethod records how a membership was proven.
type VerificationMethod string

// Supported verification methods
const (
	MethodOAuth      VerificationMethod = "oauth"
	MethodScreenshot VerificationMethod = "screenshot"
)

// MembershipStatus is the lifecycle state of a membership.
type MembershipStatus string

// Possible membership status values
const (
	MembershipStatusActive  MembershipStatus = "active"
	MembershipStatusRevoked MembershipStatus = "revoked"
)

// Common validation errors for Membership
var (
	ErrInvalidMethod           = errors.New("invalid verification method")
	ErrInvalidMembershipStatus = errors.New("invalid membership status")
	ErrMissingExpiry           = errors.New("screenshot memberships require an expiry")
)

// Membership grants a Discord user the role of a Channel.
type Membership struct {
	ID            uuid.UUID          `json:"id"`
	DiscordUserID string             `json:"discord_user_id"`
	ChannelID     uuid.UUID          `json:"channel_id"`
	Method        VerificationMethod `json:"method"`
	Status        MembershipStatus   `json:"status"`
	// ExpiresAt is the next billing date read from a screenshot. OAuth
	// memberships have no expiry and are re-checked instead.
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	VerifiedAt time.Time  `json:"verified_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// NewMembership creates an active, validated Membership verified now.
func NewMembership(
	discordUserID string,
	channelID uuid.UUID,
	method VerificationMethod,
	expiresAt *time.Time,
) (*Membership, error) {
	now := time.Now().UTC()
	m := &Membership{
		ID:            uuid.New(),
		DiscordUserID: discordUserID,
		ChannelID:     channelID,
		Method:        method,
		Status:        MembershipStatusActive,
		ExpiresAt:     expiresAt,
		VerifiedAt:    now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks if the Membership has valid data.
func (m *Membership) Validate() error {
	if m.ID == uuid.Nil {
		return fmt.Errorf("%w: membership", ErrInvalidID)
	}
	if m.ChannelID == uuid.Nil {
		return fmt.Errorf("%w: channel", ErrInvalidID)
	}
	if err := ValidateSnowflake(m.DiscordUserID); err != nil {
		return fmt.Errorf("user: %w", err)
	}
	switch m.Method {
	case MethodOAuth:
	case MethodScreenshot:
		if m.ExpiresAt == nil {
			return ErrMissingExpiry
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMethod, m.Method)
	}
	if m.Status != MembershipStatusActive && m.Status != MembershipStatusRevoked {
		return fmt.Errorf("%w: %q", ErrInvalidMembershipStatus, m.Status)
	}
	return nil
}

// Expired reports whether a membership with an expiry has passed it.
func (m *Membership) Expired(now time.Time) bool {
	return m.ExpiresAt != nil && !now.Before(*m.ExpiresAt)
}

// Active reports whether the membership currently grants its role.
func (m *Membership) Active() bool {
	return m.Status == MembershipStatusActive
}
