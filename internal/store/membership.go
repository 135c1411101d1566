package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/memberguard/internal/domain"
)

// ChannelStore persists the YouTube channels configured for each guild.
type ChannelStore interface {
	// Create saves a new channel. Returns ErrDuplicate if the guild already
	// has an entry for the same YouTube channel.
	Create(ctx context.Context, channel *domain.Channel) error

	// GetByID retrieves a channel by its ID.
	// Returns ErrChannelNotFound if the channel does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Channel, error)

	// ListByGuild returns the channels configured for a guild.
	ListByGuild(ctx context.Context, guildID string) ([]*domain.Channel, error)
}

// MembershipStore persists granted memberships.
type MembershipStore interface {
	// Upsert creates or replaces the membership of a user for a channel.
	// There is at most one membership per (user, channel) pair.
	Upsert(ctx context.Context, membership *domain.Membership) error

	// Get returns the membership of a user for a channel.
	// Returns ErrMembershipNotFound if there is none.
	Get(ctx context.Context, discordUserID string, channelID uuid.UUID) (*domain.Membership, error)

	// ListByUser returns all memberships of a user, newest first.
	ListByUser(ctx context.Context, discordUserID string) ([]*domain.Membership, error)

	// ListActive returns every active membership.
	ListActive(ctx context.Context) ([]*domain.Membership, error)

	// UpdateStatus changes the status of a membership and records when it was last checked.
	// Returns ErrMembershipNotFound if the membership does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.MembershipStatus, checkedAt time.Time) error
}

// LinkStore persists linked YouTube accounts.
type LinkStore interface {
	// Save creates or replaces the link of a user.
	Save(ctx context.Context, link *domain.YouTubeLink) error

	// Get returns the link of a user. Returns ErrLinkNotFound if there is none.
	Get(ctx context.Context, discordUserID string) (*domain.YouTubeLink, error)

	// Delete removes the link of a user. Returns ErrLinkNotFound if there is none.
	Delete(ctx context.Context, discordUserID string) error
}
