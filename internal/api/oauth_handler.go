package api

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/phrazzld/memberguard/internal/api/shared"
	"github.com/phrazzld/memberguard/internal/platform/logger"
	"github.com/phrazzld/memberguard/internal/service"
	"github.com/phrazzld/memberguard/internal/service/auth"
)

// ConsentURLBuilder builds the Google consent URL for an OAuth state.
type ConsentURLBuilder interface {
	AuthURL(state string) string
}

// OAuthHandler handles YouTube account linking.
type OAuthHandler struct {
	memberships  service.MembershipService
	tokens       auth.JWTService
	consent      ConsentURLBuilder
	dashboardURL string
	logger       *slog.Logger
}

// NewOAuthHandler creates a new OAuthHandler. After a successful link the
// callback redirects to dashboardURL with a fresh access token in the fragment.
func NewOAuthHandler(
	memberships service.MembershipService,
	tokens auth.JWTService,
	consent ConsentURLBuilder,
	dashboardURL string,
	logger *slog.Logger,
) *OAuthHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for OAuthHandler")
	}

	return &OAuthHandler{
		memberships:  memberships,
		tokens:       tokens,
		consent:      consent,
		dashboardURL: dashboardURL,
		logger:       logger.With(slog.String("component", "oauth_handler")),
	}
}

// AuthURL handles GET /oauth/youtube/url requests.
// It returns a consent URL bound to the authenticated user.
func (h *OAuthHandler) AuthURL(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	state, err := h.tokens.GenerateStateToken(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start account linking")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthURLResponse{URL: h.consent.AuthURL(state)})
}

// Callback handles GET /oauth/youtube/callback requests from Google.
// The state parameter identifies the Discord user who started the link.
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	query := r.URL.Query()

	if errParam := query.Get("error"); errParam != "" {
		log.Info("user declined youtube authorization", slog.String("reason", errParam))
		shared.RespondWithError(w, r, http.StatusBadRequest, "YouTube authorization was not granted")
		return
	}

	claims, err := h.tokens.ValidateStateToken(r.Context(), query.Get("state"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	code := query.Get("code")
	if code == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Authorization code is required")
		return
	}

	link, err := h.memberships.LinkYouTube(r.Context(), claims.DiscordUserID, code)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to link YouTube account")
		return
	}

	accessToken, err := h.tokens.GenerateToken(r.Context(), claims.DiscordUserID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create session")
		return
	}

	log.Info("youtube account linked via callback",
		slog.String("discord_user_id", link.DiscordUserID),
		slog.String("youtube_channel_id", link.YouTubeChannelID))

	http.Redirect(w, r, h.redirectURL(accessToken), http.StatusFound)
}

// Unlink handles DELETE /oauth/youtube requests.
func (h *OAuthHandler) Unlink(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.memberships.UnlinkYouTube(r.Context(), userID); err != nil {
		HandleAPIError(w, r, err, "Failed to unlink YouTube account")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *OAuthHandler) redirectURL(accessToken string) string {
	fragment := url.Values{}
	fragment.Set("token", accessToken)
	fragment.Set("linked", "youtube")

	u, err := url.Parse(h.dashboardURL)
	if err != nil {
		return "/"
	}
	u.Fragment = fragment.Encode()
	return u.String()
}
