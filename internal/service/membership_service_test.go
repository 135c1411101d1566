package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/memberguard/internal/domain"
	"github.com/phrazzld/memberguard/internal/jobqueue"
	"github.com/phrazzld/memberguard/internal/ocr"
	"github.com/phrazzld/memberguard/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const (
	testUserID  = "123456789012345678"
	testGuildID = "223456789012345678"
	testRoleID  = "323456789012345678"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type serviceFixture struct {
	svc         *membershipServiceImpl
	channels    *MockChannelStore
	memberships *MockMembershipStore
	links       *MockLinkStore
	recognizer  *MockRecognizer
	oauth       *MockOAuthClient
	youtube     *MockYouTubeChecker
	sealer      *MockSealer
	roles       *MockRoleManager
	channel     *domain.Channel
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	queue, err := jobqueue.New("ocr", jobqueue.DefaultConfig(), logger)
	require.NoError(t, err)

	channel, err := domain.NewChannel(testGuildID, "UCabc", "Lofi Girl", "members-video", testRoleID)
	require.NoError(t, err)

	f := &serviceFixture{
		channels:    &MockChannelStore{},
		memberships: &MockMembershipStore{},
		links:       &MockLinkStore{},
		recognizer:  &MockRecognizer{},
		oauth:       &MockOAuthClient{},
		youtube:     &MockYouTubeChecker{},
		sealer:      &MockSealer{},
		roles:       &MockRoleManager{},
		channel:     channel,
	}

	svc, err := NewMembershipService(MembershipDeps{
		Channels:    f.channels,
		Memberships: f.memberships,
		Links:       f.links,
		OCRQueue:    queue,
		Recognizer:  f.recognizer,
		OAuth:       f.oauth,
		YouTube:     f.youtube,
		Sealer:      f.sealer,
		Roles:       f.roles,
	}, logger)
	require.NoError(t, err)

	f.svc = svc.(*membershipServiceImpl)
	f.svc.now = func() time.Time { return testNow }
	return f
}

func (f *serviceFixture) assertExpectations(t *testing.T) {
	f.channels.AssertExpectations(t)
	f.memberships.AssertExpectations(t)
	f.links.AssertExpectations(t)
	f.recognizer.AssertExpectations(t)
	f.oauth.AssertExpectations(t)
	f.youtube.AssertExpectations(t)
	f.sealer.AssertExpectations(t)
	f.roles.AssertExpectations(t)
}

func TestNewMembershipService_NilDependency(t *testing.T) {
	_, err := NewMembershipService(MembershipDeps{}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestVerifyScreenshot_Success(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	image := []byte("png-bytes")

	f.channels.On("GetByID", mock.Anything, f.channel.ID).Return(f.channel, nil)
	f.recognizer.On("Recognize", mock.Anything, image, "image/png").
		Return("Lofi Girl\nMembership\nNext billing date: Mar 15, 2026", nil)
	f.memberships.On("Upsert", mock.Anything, mock.MatchedBy(func(m *domain.Membership) bool {
		return m.Method == domain.MethodScreenshot &&
			m.DiscordUserID == testUserID &&
			m.ExpiresAt != nil &&
			m.ExpiresAt.Month() == time.March && m.ExpiresAt.Day() == 15
	})).Return(nil)
	f.roles.On("GrantRole", mock.Anything, testGuildID, testUserID, testRoleID).Return(nil)

	m, err := f.svc.VerifyScreenshot(ctx, testUserID, f.channel.ID, image, "image/png")

	require.NoError(t, err)
	assert.Equal(t, domain.MembershipStatusActive, m.Status)
	f.assertExpectations(t)
}

func TestVerifyScreenshot_Failures(t *testing.T) {
	t.Run("empty image", func(t *testing.T) {
		f := newServiceFixture(t)
		_, err := f.svc.VerifyScreenshot(context.Background(), testUserID, f.channel.ID, nil, "image/png")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("channel not found", func(t *testing.T) {
		f := newServiceFixture(t)
		id := uuid.New()
		f.channels.On("GetByID", mock.Anything, id).Return(nil, store.ErrChannelNotFound)

		_, err := f.svc.VerifyScreenshot(context.Background(), testUserID, id, []byte{1}, "image/png")
		assert.ErrorIs(t, err, ErrChannelNotFound)
	})

	t.Run("recognition fails", func(t *testing.T) {
		f := newServiceFixture(t)
		f.channels.On("GetByID", mock.Anything, f.channel.ID).Return(f.channel, nil)
		f.recognizer.On("Recognize", mock.Anything, mock.Anything, mock.Anything).
			Return("", errors.New("quota exceeded"))

		_, err := f.svc.VerifyScreenshot(context.Background(), testUserID, f.channel.ID, []byte{1}, "image/png")
		assert.ErrorIs(t, err, ErrRecognitionFailed)
		f.memberships.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("evidence rejected", func(t *testing.T) {
		f := newServiceFixture(t)
		f.channels.On("GetByID", mock.Anything, f.channel.ID).Return(f.channel, nil)
		f.recognizer.On("Recognize", mock.Anything, mock.Anything, mock.Anything).
			Return("Another Channel membership Mar 15, 2026", nil)

		_, err := f.svc.VerifyScreenshot(context.Background(), testUserID, f.channel.ID, []byte{1}, "image/png")
		assert.ErrorIs(t, err, ErrEvidenceRejected)
		assert.ErrorIs(t, err, ocr.ErrChannelNotMentioned)
		f.roles.AssertNotCalled(t, "GrantRole", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("role grant fails", func(t *testing.T) {
		f := newServiceFixture(t)
		f.channels.On("GetByID", mock.Anything, f.channel.ID).Return(f.channel, nil)
		f.recognizer.On("Recognize", mock.Anything, mock.Anything, mock.Anything).
			Return("Lofi Girl membership Mar 15, 2026", nil)
		f.memberships.On("Upsert", mock.Anything, mock.Anything).Return(nil)
		f.roles.On("GrantRole", mock.Anything, testGuildID, testUserID, testRoleID).
			Return(errors.New("missing permissions"))

		_, err := f.svc.VerifyScreenshot(context.Background(), testUserID, f.channel.ID, []byte{1}, "image/png")
		assert.ErrorIs(t, err, ErrRoleGrantFailed)
	})
}

func TestLinkYouTube(t *testing.T) {
	f := newServiceFixture(t)
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "access"})

	f.oauth.On("Exchange", mock.Anything, "code").
		Return(&oauth2.Token{AccessToken: "access", RefreshToken: "refresh"}, nil)
	f.oauth.On("TokenSource", mock.Anything, "refresh").Return(ts)
	f.youtube.On("ChannelID", mock.Anything, ts).Return("UCmine", nil)
	f.sealer.On("Seal", []byte("refresh")).Return([]byte("sealed"), nil)
	f.links.On("Save", mock.Anything, mock.MatchedBy(func(l *domain.YouTubeLink) bool {
		return l.DiscordUserID == testUserID && l.YouTubeChannelID == "UCmine" && string(l.SealedRefreshToken) == "sealed"
	})).Return(nil)

	link, err := f.svc.LinkYouTube(context.Background(), testUserID, "code")

	require.NoError(t, err)
	assert.Equal(t, "UCmine", link.YouTubeChannelID)
	f.assertExpectations(t)
}

func TestLinkYouTube_EmptyCode(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.svc.LinkYouTube(context.Background(), testUserID, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUnlinkYouTube_NotLinked(t *testing.T) {
	f := newServiceFixture(t)
	f.links.On("Delete", mock.Anything, testUserID).Return(store.ErrLinkNotFound)

	err := f.svc.UnlinkYouTube(context.Background(), testUserID)
	assert.ErrorIs(t, err, ErrNotLinked)
}

func (f *serviceFixture) expectLinkedAccount(ts oauth2.TokenSource) {
	f.channels.On("GetByID", mock.Anything, f.channel.ID).Return(f.channel, nil)
	f.links.On("Get", mock.Anything, testUserID).Return(&domain.YouTubeLink{
		DiscordUserID:      testUserID,
		YouTubeChannelID:   "UCmine",
		SealedRefreshToken: []byte("sealed"),
	}, nil)
	f.sealer.On("Open", []byte("sealed")).Return([]byte("refresh"), nil)
	f.oauth.On("TokenSource", mock.Anything, "refresh").Return(ts)
}

func TestVerifyOAuth(t *testing.T) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "access"})

	t.Run("member", func(t *testing.T) {
		f := newServiceFixture(t)
		f.expectLinkedAccount(ts)
		f.youtube.On("IsMember", mock.Anything, ts, "members-video").Return(true, nil)
		f.memberships.On("Upsert", mock.Anything, mock.MatchedBy(func(m *domain.Membership) bool {
			return m.Method == domain.MethodOAuth && m.ExpiresAt == nil
		})).Return(nil)
		f.roles.On("GrantRole", mock.Anything, testGuildID, testUserID, testRoleID).Return(nil)

		m, err := f.svc.VerifyOAuth(context.Background(), testUserID, f.channel.ID)
		require.NoError(t, err)
		assert.Equal(t, f.channel.ID, m.ChannelID)
		f.assertExpectations(t)
	})

	t.Run("not member", func(t *testing.T) {
		f := newServiceFixture(t)
		f.expectLinkedAccount(ts)
		f.youtube.On("IsMember", mock.Anything, ts, "members-video").Return(false, nil)

		_, err := f.svc.VerifyOAuth(context.Background(), testUserID, f.channel.ID)
		assert.ErrorIs(t, err, ErrNotMember)
		f.memberships.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("check error", func(t *testing.T) {
		f := newServiceFixture(t)
		f.expectLinkedAccount(ts)
		f.youtube.On("IsMember", mock.Anything, ts, "members-video").Return(false, errors.New("backend error"))

		_, err := f.svc.VerifyOAuth(context.Background(), testUserID, f.channel.ID)
		var svcErr *MembershipServiceError
		assert.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "verify_oauth", svcErr.Operation)
	})

	t.Run("not linked", func(t *testing.T) {
		f := newServiceFixture(t)
		f.channels.On("GetByID", mock.Anything, f.channel.ID).Return(f.channel, nil)
		f.links.On("Get", mock.Anything, testUserID).Return(nil, store.ErrLinkNotFound)

		_, err := f.svc.VerifyOAuth(context.Background(), testUserID, f.channel.ID)
		assert.ErrorIs(t, err, ErrNotLinked)
	})
}

func TestListChannels_InvalidGuild(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.svc.ListChannels(context.Background(), "not-a-guild")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNewMembershipServiceError(t *testing.T) {
	assert.Nil(t, NewMembershipServiceError("op", "msg", nil))
	assert.Equal(t, ErrChannelNotFound, NewMembershipServiceError("op", "msg", store.ErrChannelNotFound))
	assert.Equal(t, ErrNotLinked, NewMembershipServiceError("op", "msg", store.ErrLinkNotFound))
	assert.Equal(t, ErrChannelExists, NewMembershipServiceError("op", "msg",
		fmt.Errorf("%w: channel already registered for guild", store.ErrDuplicate)))

	err := NewMembershipServiceError("upsert", "failed", errors.New("boom"))
	assert.EqualError(t, err, "membership service upsert failed: failed: boom")
}

func TestRegisterChannel(t *testing.T) {
	t.Run("creates channel", func(t *testing.T) {
		f := newServiceFixture(t)
		f.channels.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.Channel) bool {
			return c.GuildID == testGuildID &&
				c.YouTubeChannelID == "UCnew" &&
				c.Title == "New Channel" &&
				c.MembersVideoID == "members-only" &&
				c.RoleID == testRoleID
		})).Return(nil).Once()

		channel, err := f.svc.RegisterChannel(context.Background(),
			testGuildID, " UCnew ", "New Channel", "members-only", testRoleID)

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, channel.ID)
		assert.Equal(t, "UCnew", channel.YouTubeChannelID, "input is trimmed")
		f.assertExpectations(t)
	})

	t.Run("already registered", func(t *testing.T) {
		f := newServiceFixture(t)
		f.channels.On("Create", mock.Anything, mock.Anything).
			Return(fmt.Errorf("%w: channel already registered for guild", store.ErrDuplicate)).Once()

		_, err := f.svc.RegisterChannel(context.Background(),
			testGuildID, "UCabc", "Lofi Girl", "members-video", testRoleID)

		assert.ErrorIs(t, err, ErrChannelExists)
		f.assertExpectations(t)
	})

	t.Run("invalid role", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.svc.RegisterChannel(context.Background(),
			testGuildID, "UCabc", "Lofi Girl", "members-video", "role")

		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.ErrorIs(t, err, domain.ErrInvalidSnowflake)
		f.channels.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
