package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/memberguard/internal/domain"
	"github.com/stretchr/testify/mock"
	"golang.org/x/oauth2"
)

// MockChannelStore mocks the store.ChannelStore interface
type MockChannelStore struct {
	mock.Mock
}

func (m *MockChannelStore) Create(ctx context.Context, channel *domain.Channel) error {
	args := m.Called(ctx, channel)
	return args.Error(0)
}

func (m *MockChannelStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Channel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Channel), args.Error(1)
}

func (m *MockChannelStore) ListByGuild(ctx context.Context, guildID string) ([]*domain.Channel, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Channel), args.Error(1)
}

// MockMembershipStore mocks the store.MembershipStore interface
type MockMembershipStore struct {
	mock.Mock
}

func (m *MockMembershipStore) Upsert(ctx context.Context, membership *domain.Membership) error {
	args := m.Called(ctx, membership)
	return args.Error(0)
}

func (m *MockMembershipStore) Get(
	ctx context.Context,
	discordUserID string,
	channelID uuid.UUID,
) (*domain.Membership, error) {
	args := m.Called(ctx, discordUserID, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Membership), args.Error(1)
}

func (m *MockMembershipStore) ListByUser(ctx context.Context, discordUserID string) ([]*domain.Membership, error) {
	args := m.Called(ctx, discordUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Membership), args.Error(1)
}

func (m *MockMembershipStore) ListActive(ctx context.Context) ([]*domain.Membership, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Membership), args.Error(1)
}

func (m *MockMembershipStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.MembershipStatus,
	checkedAt time.Time,
) error {
	args := m.Called(ctx, id, status, checkedAt)
	return args.Error(0)
}

// MockLinkStore mocks the store.LinkStore interface
type MockLinkStore struct {
	mock.Mock
}

func (m *MockLinkStore) Save(ctx context.Context, link *domain.YouTubeLink) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *MockLinkStore) Get(ctx context.Context, discordUserID string) (*domain.YouTubeLink, error) {
	args := m.Called(ctx, discordUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.YouTubeLink), args.Error(1)
}

func (m *MockLinkStore) Delete(ctx context.Context, discordUserID string) error {
	args := m.Called(ctx, discordUserID)
	return args.Error(0)
}

// MockRecognizer mocks the Recognizer interface
type MockRecognizer struct {
	mock.Mock
}

func (m *MockRecognizer) Recognize(ctx context.Context, image []byte, mimeType string) (string, error) {
	args := m.Called(ctx, image, mimeType)
	return args.String(0), args.Error(1)
}

// MockOAuthClient mocks the OAuthClient interface
type MockOAuthClient struct {
	mock.Mock
}

func (m *MockOAuthClient) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth2.Token), args.Error(1)
}

func (m *MockOAuthClient) TokenSource(ctx context.Context, refreshToken string) oauth2.TokenSource {
	args := m.Called(ctx, refreshToken)
	return args.Get(0).(oauth2.TokenSource)
}

// MockYouTubeChecker mocks the YouTubeChecker interface
type MockYouTubeChecker struct {
	mock.Mock
}

func (m *MockYouTubeChecker) IsMember(ctx context.Context, ts oauth2.TokenSource, videoID string) (bool, error) {
	args := m.Called(ctx, ts, videoID)
	return args.Bool(0), args.Error(1)
}

func (m *MockYouTubeChecker) ChannelID(ctx context.Context, ts oauth2.TokenSource) (string, error) {
	args := m.Called(ctx, ts)
	return args.String(0), args.Error(1)
}

// MockSealer mocks the TokenSealer interface
type MockSealer struct {
	mock.Mock
}

func (m *MockSealer) Seal(plaintext []byte) ([]byte, error) {
	args := m.Called(plaintext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockSealer) Open(sealed []byte) ([]byte, error) {
	args := m.Called(sealed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockRoleManager mocks the RoleManager interface
type MockRoleManager struct {
	mock.Mock
}

func (m *MockRoleManager) GrantRole(ctx context.Context, guildID, userID, roleID string) error {
	args := m.Called(ctx, guildID, userID, roleID)
	return args.Error(0)
}

func (m *MockRoleManager) RevokeRole(ctx context.Context, guildID, userID, roleID string) error {
	args := m.Called(ctx, guildID, userID, roleID)
	return args.Error(0)
}
