package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/memberguard/internal/domain"
)

// mockMembershipService is a mock implementation of service.MembershipService.
// Unset functions panic so tests fail loudly on unexpected calls.
type mockMembershipService struct {
	verifyScreenshotFn func(ctx context.Context, userID string, channelID uuid.UUID, image []byte, mimeType string) (*domain.Membership, error)
	linkFn             func(ctx context.Context, userID, code string) (*domain.YouTubeLink, error)
	unlinkFn           func(ctx context.Context, userID string) error
	verifyOAuthFn      func(ctx context.Context, userID string, channelID uuid.UUID) (*domain.Membership, error)
	listMembershipsFn  func(ctx context.Context, userID string) ([]*domain.Membership, error)
	listChannelsFn     func(ctx context.Context, guildID string) ([]*domain.Channel, error)
	registerChannelFn  func(ctx context.Context, guildID, youtubeChannelID, title, videoID, roleID string) (*domain.Channel, error)
}

func (m *mockMembershipService) VerifyScreenshot(
	ctx context.Context,
	userID string,
	channelID uuid.UUID,
	image []byte,
	mimeType string,
) (*domain.Membership, error) {
	return m.verifyScreenshotFn(ctx, userID, channelID, image, mimeType)
}

func (m *mockMembershipService) LinkYouTube(ctx context.Context, userID, code string) (*domain.YouTubeLink, error) {
	return m.linkFn(ctx, userID, code)
}

func (m *mockMembershipService) UnlinkYouTube(ctx context.Context, userID string) error {
	return m.unlinkFn(ctx, userID)
}

func (m *mockMembershipService) VerifyOAuth(
	ctx context.Context,
	userID string,
	channelID uuid.UUID,
) (*domain.Membership, error) {
	return m.verifyOAuthFn(ctx, userID, channelID)
}

func (m *mockMembershipService) ListMemberships(ctx context.Context, userID string) ([]*domain.Membership, error) {
	return m.listMembershipsFn(ctx, userID)
}

func (m *mockMembershipService) ListChannels(ctx context.Context, guildID string) ([]*domain.Channel, error) {
	return m.listChannelsFn(ctx, guildID)
}

func (m *mockMembershipService) RegisterChannel(
	ctx context.Context,
	guildID, youtubeChannelID, title, membersVideoID, roleID string,
) (*domain.Channel, error) {
	return m.registerChannelFn(ctx, guildID, youtubeChannelID, title, membersVideoID, roleID)
}

type consentStub struct{}

func (consentStub) AuthURL(state string) string {
	return "https://accounts.example.com/o/oauth2/auth?state=" + state
}
