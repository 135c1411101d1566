package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/memberguard/internal/domain"
	"github.com/phrazzld/memberguard/internal/platform/logger"
	"github.com/phrazzld/memberguard/internal/store"
)

const membershipColumns = `id, discord_user_id, channel_id, method, status, expires_at, verified_at, created_at, updated_at`

// PostgresMembershipStore implements store.MembershipStore on PostgreSQL.
type PostgresMembershipStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// Ensure PostgresMembershipStore implements store.MembershipStore interface
var _ store.MembershipStore = (*PostgresMembershipStore)(nil)

// NewPostgresMembershipStore creates a membership store. If logger is nil, a default logger will be used.
func NewPostgresMembershipStore(db store.DBTX, logger *slog.Logger) *PostgresMembershipStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresMembershipStore{
		db:     db,
		logger: logger.With(slog.String("component", "membership_store")),
	}
}

// Upsert implements store.MembershipStore.Upsert
// A re-verification keeps the original id and created_at of the row.
func (s *PostgresMembershipStore) Upsert(ctx context.Context, m *domain.Membership) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := m.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO memberships (` + membershipColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (discord_user_id, channel_id) DO UPDATE SET
			method      = EXCLUDED.method,
			status      = EXCLUDED.status,
			expires_at  = EXCLUDED.expires_at,
			verified_at = EXCLUDED.verified_at,
			updated_at  = EXCLUDED.updated_at
		RETURNING id, created_at
	`
	err := s.db.QueryRowContext(ctx, query,
		m.ID,
		m.DiscordUserID,
		m.ChannelID,
		m.Method,
		m.Status,
		m.ExpiresAt,
		m.VerifiedAt,
		m.CreatedAt,
		m.UpdatedAt,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		log.Error("failed to upsert membership",
			slog.String("error", err.Error()),
			slog.String("discord_user_id", m.DiscordUserID),
			slog.String("channel_id", m.ChannelID.String()))
		return MapError(err)
	}

	log.Info("membership saved",
		slog.String("membership_id", m.ID.String()),
		slog.String("method", string(m.Method)),
		slog.String("status", string(m.Status)))
	return nil
}

// Get implements store.MembershipStore.Get
func (s *PostgresMembershipStore) Get(ctx context.Context, discordUserID string, channelID uuid.UUID) (*domain.Membership, error) {
	query := `SELECT ` + membershipColumns + ` FROM memberships WHERE discord_user_id = $1 AND channel_id = $2`

	m, err := scanMembership(s.db.QueryRowContext(ctx, query, discordUserID, channelID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrMembershipNotFound
		}
		return nil, fmt.Errorf("failed to get membership: %w", MapError(err))
	}
	return m, nil
}

// ListByUser implements store.MembershipStore.ListByUser
func (s *PostgresMembershipStore) ListByUser(ctx context.Context, discordUserID string) ([]*domain.Membership, error) {
	query := `SELECT ` + membershipColumns + ` FROM memberships WHERE discord_user_id = $1 ORDER BY created_at DESC`
	return s.list(ctx, query, discordUserID)
}

// ListActive implements store.MembershipStore.ListActive
func (s *PostgresMembershipStore) ListActive(ctx context.Context) ([]*domain.Membership, error) {
	query := `SELECT ` + membershipColumns + ` FROM memberships WHERE status = $1 ORDER BY verified_at ASC`
	return s.list(ctx, query, domain.MembershipStatusActive)
}

// UpdateStatus implements store.MembershipStore.UpdateStatus
func (s *PostgresMembershipStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.MembershipStatus,
	checkedAt time.Time,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if status != domain.MembershipStatusActive && status != domain.MembershipStatusRevoked {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrInvalidMembershipStatus)
	}

	query := `UPDATE memberships SET status = $1, verified_at = $2, updated_at = $3 WHERE id = $4`
	result, err := s.db.ExecContext(ctx, query, status, checkedAt.UTC(), time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update membership status",
			slog.String("error", err.Error()),
			slog.String("membership_id", id.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrMembershipNotFound)
}

func (s *PostgresMembershipStore) list(ctx context.Context, query string, args ...any) ([]*domain.Membership, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	memberships := []*domain.Membership{}
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		memberships = append(memberships, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate memberships: %w", err)
	}
	return memberships, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMembership(row rowScanner) (*domain.Membership, error) {
	var m domain.Membership
	var method, status string
	var expiresAt sql.NullTime

	if err := row.Scan(
		&m.ID,
		&m.DiscordUserID,
		&m.ChannelID,
		&method,
		&status,
		&expiresAt,
		&m.VerifiedAt,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return nil, err
	}

	m.Method = domain.VerificationMethod(method)
	m.Status = domain.MembershipStatus(status)
	if expiresAt.Valid {
		t := expiresAt.Time
		m.ExpiresAt = &t
	}
	return &m, nil
}
