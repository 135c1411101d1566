package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/memberguard/internal/domain"
	"github.com/phrazzld/memberguard/internal/platform/logger"
	"github.com/phrazzld/memberguard/internal/store"
)

// PostgresChannelStore implements store.ChannelStore on PostgreSQL.
type PostgresChannelStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// Ensure PostgresChannelStore implements store.ChannelStore interface
var _ store.ChannelStore = (*PostgresChannelStore)(nil)

// NewPostgresChannelStore creates a channel store. If logger is nil, a default logger will be used.
func NewPostgresChannelStore(db store.DBTX, logger *slog.Logger) *PostgresChannelStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresChannelStore{
		db:     db,
		logger: logger.With(slog.String("component", "channel_store")),
	}
}

// Create implements store.ChannelStore.Create
func (s *PostgresChannelStore) Create(ctx context.Context, channel *domain.Channel) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := channel.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO channels (id, guild_id, youtube_channel_id, title, members_video_id, role_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		channel.ID,
		channel.GuildID,
		channel.YouTubeChannelID,
		channel.Title,
		channel.MembersVideoID,
		channel.RoleID,
		channel.CreatedAt,
		channel.UpdatedAt,
	)
	if IsUniqueViolation(err) {
		log.Info("channel already registered",
			slog.String("guild_id", channel.GuildID),
			slog.String("youtube_channel_id", channel.YouTubeChannelID))
		return fmt.Errorf("%w: channel already registered for guild", store.ErrDuplicate)
	}
	if err != nil {
		log.Error("failed to create channel",
			slog.String("error", err.Error()),
			slog.String("guild_id", channel.GuildID),
			slog.String("youtube_channel_id", channel.YouTubeChannelID))
		return MapError(err)
	}

	log.Info("channel created",
		slog.String("channel_id", channel.ID.String()),
		slog.String("guild_id", channel.GuildID))
	return nil
}

// GetByID implements store.ChannelStore.GetByID
func (s *PostgresChannelStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Channel, error) {
	query := `
		SELECT id, guild_id, youtube_channel_id, title, members_video_id, role_id, created_at, updated_at
		FROM channels
		WHERE id = $1
	`

	var c domain.Channel
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID,
		&c.GuildID,
		&c.YouTubeChannelID,
		&c.Title,
		&c.MembersVideoID,
		&c.RoleID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrNotFound) {
			return nil, store.ErrChannelNotFound
		}
		return nil, fmt.Errorf("failed to get channel: %w", mapped)
	}
	return &c, nil
}

// ListByGuild implements store.ChannelStore.ListByGuild
func (s *PostgresChannelStore) ListByGuild(ctx context.Context, guildID string) ([]*domain.Channel, error) {
	query := `
		SELECT id, guild_id, youtube_channel_id, title, members_video_id, role_id, created_at, updated_at
		FROM channels
		WHERE guild_id = $1
		ORDER BY title ASC
	`

	rows, err := s.db.QueryContext(ctx, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	channels := []*domain.Channel{}
	for rows.Next() {
		var c domain.Channel
		if err := rows.Scan(
			&c.ID,
			&c.GuildID,
			&c.YouTubeChannelID,
			&c.Title,
			&c.MembersVideoID,
			&c.RoleID,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan channel: %w", err)
		}
		channels = append(channels, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate channels: %w", err)
	}
	return channels, nil
}
