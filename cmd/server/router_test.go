package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/memberguard/internal/api"
	"github.com/phrazzld/memberguard/internal/config"
	"github.com/phrazzld/memberguard/internal/domain"
	"github.com/phrazzld/memberguard/internal/jobqueue"
	"github.com/phrazzld/memberguard/internal/service"
	"github.com/phrazzld/memberguard/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserID = "123456789012345678"

type stubMemberships struct {
	service.MembershipService
}

func (stubMemberships) ListMemberships(_ context.Context, userID string) ([]*domain.Membership, error) {
	return []*domain.Membership{{
		ID:            uuid.New(),
		DiscordUserID: userID,
		ChannelID:     uuid.New(),
		Method:        domain.MethodOAuth,
		Status:        domain.MembershipStatusActive,
	}}, nil
}

type stubConsent struct{}

func (stubConsent) AuthURL(state string) string { return "https://consent.example.com/?state=" + state }

func newTestApplication(t *testing.T) *application {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ocrQueue, err := jobqueue.New("ocr", jobqueue.DefaultConfig(), logger)
	require.NoError(t, err)
	reconcileQueue, err := jobqueue.New("reconcile", jobqueue.DefaultConfig(), logger)
	require.NoError(t, err)

	return &application{
		config: &config.Config{
			Discord: config.DiscordConfig{DashboardURL: "https://members.example.com"},
		},
		logger:            logger,
		ocrQueue:          ocrQueue,
		reconcileQueue:    reconcileQueue,
		jwtService:        auth.RequireTestJWTService(t),
		consent:           stubConsent{},
		membershipService: stubMemberships{},
	}
}

func TestRouter_Health(t *testing.T) {
	router := newTestApplication(t).setupRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	router := newTestApplication(t).setupRouter()

	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/memberships"},
		{http.MethodPost, "/api/verifications/oauth"},
		{http.MethodPost, "/api/verifications/screenshot"},
		{http.MethodGet, "/api/channels"},
		{http.MethodGet, "/api/queues"},
		{http.MethodGet, "/api/oauth/youtube/url"},
		{http.MethodDelete, "/api/oauth/youtube"},
	}
	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(route.method, route.path, nil))

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.NotEmpty(t, w.Header().Get("Content-Type"))
		})
	}
}

func TestRouter_AuthenticatedRequest(t *testing.T) {
	app := newTestApplication(t)
	router := app.setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/memberships", nil)
	req.Header.Set("Authorization", auth.AuthHeaderForTestingT(t, app.jwtService, testUserID))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp []api.MembershipResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "oauth", resp[0].Method)
}

func TestRouter_Queues(t *testing.T) {
	app := newTestApplication(t)
	router := app.setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/queues", nil)
	req.Header.Set("Authorization", auth.AuthHeaderForTestingT(t, app.jwtService, testUserID))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `"name":"ocr"`))
	assert.True(t, strings.Contains(w.Body.String(), `"name":"reconcile"`))
}

func TestRouter_CallbackIsPublic(t *testing.T) {
	router := newTestApplication(t).setupRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/oauth/youtube/callback?code=c&state=bogus", nil))

	// rejected for the state, not for a missing bearer token
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQueueConfig(t *testing.T) {
	cfg := queueConfig(3, 0, time.Minute)
	assert.Equal(t, 3, cfg.Concurrency)
	assert.Equal(t, time.Minute, cfg.Timeout)
	assert.Zero(t, cfg.IntervalCap)
	assert.True(t, cfg.ThrowOnTimeout)

	limited := queueConfig(1, 30, 0)
	assert.Equal(t, 30, limited.IntervalCap)
	assert.Equal(t, time.Minute, limited.Interval)

	_, err := jobqueue.New("limited", limited, nil)
	assert.NoError(t, err)
}
