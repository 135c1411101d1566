package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/memberguard/internal/domain"
	"github.com/phrazzld/memberguard/internal/jobqueue"
	"github.com/phrazzld/memberguard/internal/ocr"
	"github.com/phrazzld/memberguard/internal/platform/logger"
	"github.com/phrazzld/memberguard/internal/store"
	"golang.org/x/oauth2"
)

// Recognizer extracts text from an image.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, mimeType string) (string, error)
}

// OAuthClient exchanges authorization codes and refreshes YouTube access.
type OAuthClient interface {
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	TokenSource(ctx context.Context, refreshToken string) oauth2.TokenSource
}

// YouTubeChecker queries YouTube on behalf of a linked account.
type YouTubeChecker interface {
	IsMember(ctx context.Context, ts oauth2.TokenSource, videoID string) (bool, error)
	ChannelID(ctx context.Context, ts oauth2.TokenSource) (string, error)
}

// TokenSealer encrypts refresh tokens at rest.
type TokenSealer interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}

// RoleManager grants and revokes Discord roles.
type RoleManager interface {
	GrantRole(ctx context.Context, guildID, userID, roleID string) error
	RevokeRole(ctx context.Context, guildID, userID, roleID string) error
}

// MembershipService verifies memberships and grants the matching roles.
type MembershipService interface {
	// VerifyScreenshot recognizes a membership screenshot on the OCR queue and,
	// when it proves an active membership, records it and grants the role.
	VerifyScreenshot(
		ctx context.Context,
		discordUserID string,
		channelID uuid.UUID,
		image []byte,
		mimeType string,
	) (*domain.Membership, error)

	// LinkYouTube completes the OAuth flow and stores the sealed refresh token.
	LinkYouTube(ctx context.Context, discordUserID, code string) (*domain.YouTubeLink, error)

	// UnlinkYouTube forgets the linked account. Existing memberships are left
	// for reconciliation to revoke.
	UnlinkYouTube(ctx context.Context, discordUserID string) error

	// VerifyOAuth checks the linked account against the channel's members-only
	// video and, for members, records the membership and grants the role.
	VerifyOAuth(ctx context.Context, discordUserID string, channelID uuid.UUID) (*domain.Membership, error)

	// ListMemberships returns the memberships of a user.
	ListMemberships(ctx context.Context, discordUserID string) ([]*domain.Membership, error)

	// ListChannels returns the channels configured for a guild.
	ListChannels(ctx context.Context, guildID string) ([]*domain.Channel, error)

	// RegisterChannel configures a YouTube channel for a guild: members proven by
	// the members-only video or a screenshot receive roleID.
	RegisterChannel(ctx context.Context, guildID, youtubeChannelID, title, membersVideoID, roleID string) (*domain.Channel, error)
}

// MembershipServiceError wraps errors from the membership service with context.
type MembershipServiceError struct {
	// Operation is the operation that failed (e.g., "verify_screenshot")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for MembershipServiceError.
func (e *MembershipServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("membership service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("membership service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *MembershipServiceError) Unwrap() error {
	return e.Err
}

// NewMembershipServiceError creates a new MembershipServiceError.
// Store sentinels are translated into service sentinels and returned unwrapped.
func NewMembershipServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, store.ErrChannelNotFound):
		return ErrChannelNotFound
	case errors.Is(err, store.ErrLinkNotFound):
		return ErrNotLinked
	case errors.Is(err, store.ErrDuplicate):
		return ErrChannelExists
	}

	return &MembershipServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// MembershipDeps groups the collaborators of the membership service.
type MembershipDeps struct {
	Channels    store.ChannelStore
	Memberships store.MembershipStore
	Links       store.LinkStore
	OCRQueue    *jobqueue.Queue
	Recognizer  Recognizer
	OAuth       OAuthClient
	YouTube     YouTubeChecker
	Sealer      TokenSealer
	Roles       RoleManager
}

func (d MembershipDeps) validate() error {
	deps := map[string]any{
		"channels":    d.Channels,
		"memberships": d.Memberships,
		"links":       d.Links,
		"ocrQueue":    d.OCRQueue,
		"recognizer":  d.Recognizer,
		"oauth":       d.OAuth,
		"youtube":     d.YouTube,
		"sealer":      d.Sealer,
		"roles":       d.Roles,
	}
	for name, dep := range deps {
		if isNil(dep) {
			return domain.NewValidationError(name, "cannot be nil", domain.ErrValidation)
		}
	}
	return nil
}

// isNil catches both untyped nil and typed nil pointers stored in interfaces.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	if q, ok := v.(*jobqueue.Queue); ok {
		return q == nil
	}
	return false
}

// membershipServiceImpl implements the MembershipService interface
type membershipServiceImpl struct {
	deps   MembershipDeps
	logger *slog.Logger
	now    func() time.Time
}

// NewMembershipService creates a new membership service.
func NewMembershipService(deps MembershipDeps, logger *slog.Logger) (MembershipService, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &membershipServiceImpl{
		deps:   deps,
		logger: logger.With(slog.String("component", "membership_service")),
		now:    time.Now,
	}, nil
}

func (s *membershipServiceImpl) log(ctx context.Context) *slog.Logger {
	return logger.FromContextOrDefault(ctx, s.logger)
}

// VerifyScreenshot implements MembershipService.VerifyScreenshot
func (s *membershipServiceImpl) VerifyScreenshot(
	ctx context.Context,
	discordUserID string,
	channelID uuid.UUID,
	image []byte,
	mimeType string,
) (*domain.Membership, error) {
	log := s.log(ctx).With("discord_user_id", discordUserID, "channel_id", channelID)

	if len(image) == 0 {
		return nil, fmt.Errorf("%w: screenshot is empty", ErrInvalidInput)
	}

	channel, err := s.deps.Channels.GetByID(ctx, channelID)
	if err != nil {
		return nil, NewMembershipServiceError("verify_screenshot", "failed to load channel", err)
	}

	outcome := jobqueue.Add(ctx, s.deps.OCRQueue, func(ctx context.Context) (string, error) {
		return s.deps.Recognizer.Recognize(ctx, image, mimeType)
	})
	if !outcome.Success {
		return nil, ErrRecognitionFailed
	}

	evidence, err := ocr.ParseEvidence(outcome.Value, channel.Title, s.now())
	if err != nil {
		log.InfoContext(ctx, "screenshot rejected", "reason", err)
		return nil, fmt.Errorf("%w: %w", ErrEvidenceRejected, err)
	}

	expiresAt := evidence.ExpiresAt
	membership, err := domain.NewMembership(discordUserID, channel.ID, domain.MethodScreenshot, &expiresAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if err := s.grant(ctx, channel, membership); err != nil {
		return nil, err
	}

	log.InfoContext(ctx, "membership verified by screenshot", "expires_at", expiresAt)
	return membership, nil
}

// LinkYouTube implements MembershipService.LinkYouTube
func (s *membershipServiceImpl) LinkYouTube(
	ctx context.Context,
	discordUserID, code string,
) (*domain.YouTubeLink, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: authorization code is empty", ErrInvalidInput)
	}

	token, err := s.deps.OAuth.Exchange(ctx, code)
	if err != nil {
		return nil, NewMembershipServiceError("link_youtube", "failed to exchange code", err)
	}

	ytChannelID, err := s.deps.YouTube.ChannelID(ctx, s.deps.OAuth.TokenSource(ctx, token.RefreshToken))
	if err != nil {
		return nil, NewMembershipServiceError("link_youtube", "failed to resolve youtube channel", err)
	}

	sealed, err := s.deps.Sealer.Seal([]byte(token.RefreshToken))
	if err != nil {
		return nil, NewMembershipServiceError("link_youtube", "failed to seal refresh token", err)
	}

	link := &domain.YouTubeLink{
		DiscordUserID:      discordUserID,
		YouTubeChannelID:   ytChannelID,
		SealedRefreshToken: sealed,
		UpdatedAt:          s.now().UTC(),
	}
	if err := link.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := s.deps.Links.Save(ctx, link); err != nil {
		return nil, NewMembershipServiceError("link_youtube", "failed to save link", err)
	}

	s.log(ctx).InfoContext(ctx, "youtube account linked",
		"discord_user_id", discordUserID,
		"youtube_channel_id", ytChannelID)
	return link, nil
}

// UnlinkYouTube implements MembershipService.UnlinkYouTube
func (s *membershipServiceImpl) UnlinkYouTube(ctx context.Context, discordUserID string) error {
	if err := s.deps.Links.Delete(ctx, discordUserID); err != nil {
		return NewMembershipServiceError("unlink_youtube", "failed to delete link", err)
	}
	return nil
}

// VerifyOAuth implements MembershipService.VerifyOAuth
func (s *membershipServiceImpl) VerifyOAuth(
	ctx context.Context,
	discordUserID string,
	channelID uuid.UUID,
) (*domain.Membership, error) {
	log := s.log(ctx).With("discord_user_id", discordUserID, "channel_id", channelID)

	channel, err := s.deps.Channels.GetByID(ctx, channelID)
	if err != nil {
		return nil, NewMembershipServiceError("verify_oauth", "failed to load channel", err)
	}

	link, err := s.deps.Links.Get(ctx, discordUserID)
	if err != nil {
		return nil, NewMembershipServiceError("verify_oauth", "failed to load link", err)
	}

	refreshToken, err := s.deps.Sealer.Open(link.SealedRefreshToken)
	if err != nil {
		return nil, NewMembershipServiceError("verify_oauth", "failed to open refresh token", err)
	}

	ts := s.deps.OAuth.TokenSource(ctx, string(refreshToken))
	member, err := s.deps.YouTube.IsMember(ctx, ts, channel.MembersVideoID)
	if err != nil {
		return nil, NewMembershipServiceError("verify_oauth", "failed to check membership", err)
	}
	if !member {
		log.InfoContext(ctx, "linked account is not a member")
		return nil, ErrNotMember
	}

	membership, err := domain.NewMembership(discordUserID, channel.ID, domain.MethodOAuth, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if err := s.grant(ctx, channel, membership); err != nil {
		return nil, err
	}

	log.InfoContext(ctx, "membership verified by oauth")
	return membership, nil
}

// grant records an active membership and gives the user the channel's role.
func (s *membershipServiceImpl) grant(ctx context.Context, channel *domain.Channel, m *domain.Membership) error {
	if err := s.deps.Memberships.Upsert(ctx, m); err != nil {
		return NewMembershipServiceError("grant", "failed to save membership", err)
	}
	if err := s.deps.Roles.GrantRole(ctx, channel.GuildID, m.DiscordUserID, channel.RoleID); err != nil {
		s.log(ctx).ErrorContext(ctx, "membership saved but role grant failed",
			"error", err,
			"membership_id", m.ID,
			"role_id", channel.RoleID)
		return fmt.Errorf("%w: %w", ErrRoleGrantFailed, err)
	}
	return nil
}

// ListMemberships implements MembershipService.ListMemberships
func (s *membershipServiceImpl) ListMemberships(
	ctx context.Context,
	discordUserID string,
) ([]*domain.Membership, error) {
	memberships, err := s.deps.Memberships.ListByUser(ctx, discordUserID)
	if err != nil {
		return nil, NewMembershipServiceError("list_memberships", "failed to list memberships", err)
	}
	return memberships, nil
}

// ListChannels implements MembershipService.ListChannels
func (s *membershipServiceImpl) ListChannels(ctx context.Context, guildID string) ([]*domain.Channel, error) {
	if err := domain.ValidateSnowflake(guildID); err != nil {
		return nil, fmt.Errorf("%w: guild id: %w", ErrInvalidInput, err)
	}
	channels, err := s.deps.Channels.ListByGuild(ctx, guildID)
	if err != nil {
		return nil, NewMembershipServiceError("list_channels", "failed to list channels", err)
	}
	return channels, nil
}

// RegisterChannel implements MembershipService.RegisterChannel
func (s *membershipServiceImpl) RegisterChannel(
	ctx context.Context,
	guildID, youtubeChannelID, title, membersVideoID, roleID string,
) (*domain.Channel, error) {
	channel, err := domain.NewChannel(guildID, youtubeChannelID, title, membersVideoID, roleID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if err := s.deps.Channels.Create(ctx, channel); err != nil {
		return nil, NewMembershipServiceError("register_channel", "failed to create channel", err)
	}

	s.log(ctx).InfoContext(ctx, "channel registered",
		"channel_id", channel.ID,
		"guild_id", guildID,
		"youtube_channel_id", channel.YouTubeChannelID,
		"role_id", roleID)
	return channel, nil
}
