package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/memberguard/internal/domain"
	"github.com/phrazzld/memberguard/internal/platform/logger"
	"github.com/phrazzld/memberguard/internal/store"
)

// PostgresLinkStore implements store.LinkStore on PostgreSQL.
type PostgresLinkStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// Ensure PostgresLinkStore implements store.LinkStore interface
var _ store.LinkStore = (*PostgresLinkStore)(nil)

// NewPostgresLinkStore creates a link store. If logger is nil, a default logger will be used.
func NewPostgresLinkStore(db store.DBTX, logger *slog.Logger) *PostgresLinkStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresLinkStore{
		db:     db,
		logger: logger.With(slog.String("component", "link_store")),
	}
}

// Save implements store.LinkStore.Save
func (s *PostgresLinkStore) Save(ctx context.Context, link *domain.YouTubeLink) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := link.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO youtube_links (discord_user_id, youtube_channel_id, sealed_refresh_token, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (discord_user_id) DO UPDATE SET
			youtube_channel_id   = EXCLUDED.youtube_channel_id,
			sealed_refresh_token = EXCLUDED.sealed_refresh_token,
			updated_at           = EXCLUDED.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query,
		link.DiscordUserID,
		link.YouTubeChannelID,
		link.SealedRefreshToken,
		link.UpdatedAt,
	); err != nil {
		log.Error("failed to save youtube link",
			slog.String("error", err.Error()),
			slog.String("discord_user_id", link.DiscordUserID))
		return MapError(err)
	}

	log.Info("youtube link saved", slog.String("discord_user_id", link.DiscordUserID))
	return nil
}

// Get implements store.LinkStore.Get
func (s *PostgresLinkStore) Get(ctx context.Context, discordUserID string) (*domain.YouTubeLink, error) {
	query := `
		SELECT discord_user_id, youtube_channel_id, sealed_refresh_token, updated_at
		FROM youtube_links
		WHERE discord_user_id = $1
	`

	var link domain.YouTubeLink
	err := s.db.QueryRowContext(ctx, query, discordUserID).Scan(
		&link.DiscordUserID,
		&link.YouTubeChannelID,
		&link.SealedRefreshToken,
		&link.UpdatedAt,
	)
	if err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrNotFound) {
			return nil, store.ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get youtube link: %w", mapped)
	}
	return &link, nil
}

// Delete implements store.LinkStore.Delete
func (s *PostgresLinkStore) Delete(ctx context.Context, discordUserID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM youtube_links WHERE discord_user_id = $1`, discordUserID)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrLinkNotFound)
}
