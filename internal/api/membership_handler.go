package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/memberguard/internal/api/shared"
	"github.com/phrazzld/memberguard/internal/platform/logger"
	"github.com/phrazzld/memberguard/internal/service"
)

// MaxScreenshotBytes bounds uploaded membership screenshots.
const MaxScreenshotBytes = 8 << 20

// multipartOverhead allows for the form fields around the screenshot.
const multipartOverhead = 1 << 20

// MembershipHandler handles membership verification HTTP requests
type MembershipHandler struct {
	memberships service.MembershipService
	logger      *slog.Logger
}

// NewMembershipHandler creates a new MembershipHandler
func NewMembershipHandler(memberships service.MembershipService, logger *slog.Logger) *MembershipHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for MembershipHandler")
	}

	return &MembershipHandler{
		memberships: memberships,
		logger:      logger.With(slog.String("component", "membership_handler")),
	}
}

// ListMemberships handles GET /memberships requests.
// It returns every membership recorded for the authenticated user.
func (h *MembershipHandler) ListMemberships(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	memberships, err := h.memberships.ListMemberships(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list memberships")
		return
	}

	response := make([]MembershipResponse, 0, len(memberships))
	for _, m := range memberships {
		response = append(response, membershipToResponse(m))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, response)
}

// VerifyOAuth handles POST /verifications/oauth requests.
// It checks the caller's linked YouTube account against a channel.
func (h *MembershipHandler) VerifyOAuth(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req VerifyOAuthRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		log.Debug("invalid verification request body", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	channelID, err := parseUUID("channel_id", req.ChannelID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	membership, err := h.memberships.VerifyOAuth(r.Context(), userID, channelID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to verify membership")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, membershipToResponse(membership))
}

// VerifyScreenshot handles POST /verifications/screenshot requests.
// The multipart form carries channel_id and the screenshot file.
func (h *MembershipHandler) VerifyScreenshot(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxScreenshotBytes+multipartOverhead)
	if err := r.ParseMultipartForm(MaxScreenshotBytes + multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			HandleAPIError(w, r, shared.ErrFileTooLarge, "")
			return
		}
		log.Debug("invalid multipart form", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	channelID, err := parseUUID("channel_id", r.FormValue("channel_id"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	file, err := shared.ReadFormFile(r, "screenshot", MaxScreenshotBytes)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to read screenshot")
		return
	}

	membership, err := h.memberships.VerifyScreenshot(r.Context(), userID, channelID, file.Data, file.ContentType)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to verify screenshot")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, membershipToResponse(membership))
}

// ListChannels handles GET /channels?guild_id= requests.
func (h *MembershipHandler) ListChannels(w http.ResponseWriter, r *http.Request) {
	query := ListChannelsQuery{GuildID: r.URL.Query().Get("guild_id")}
	if err := shared.ValidateRequest(&query); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	channels, err := h.memberships.ListChannels(r.Context(), query.GuildID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list channels")
		return
	}

	response := make([]ChannelResponse, 0, len(channels))
	for _, c := range channels {
		response = append(response, channelToResponse(c))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, response)
}
