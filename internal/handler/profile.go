package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/devforum/internal/apperror"
	"github.com/sakif/devforum/internal/auth"
	"github.com/sakif/devforum/internal/model"
	"github.com/sakif/devforum/internal/service"
)

// ProfileHandler exposes public profiles, the caller's own profile update,
// and the admin moderation write.
type ProfileHandler struct {
	profiles *service.ProfileService
	logger   *slog.Logger
}

func NewProfileHandler(profiles *service.ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: logger}
}

// profileResponse hides the email; profiles are public.
type profileResponse struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
	Status      string `json:"status"`
	AvatarURL   string `json:"avatarUrl"`
}

func toProfileResponse(u *model.User) profileResponse {
	return profileResponse{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		Status:      u.Status,
		AvatarURL:   u.AvatarURL,
	}
}

// HandleGet returns a user's public profile.
//
// GET /api/profiles/{id}
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, err := idParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.profiles.Get(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(user))
}

// HandleUpdate changes the caller's display name and/or avatar.
//
// PUT /api/profiles/me (multipart)
//
//	displayName — optional scalar field
//	avatar      — optional file
func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("login required"))
		return
	}
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, apperror.ValidationFailed("body", "request must be multipart form data"))
		return
	}

	var avatar *service.Upload
	avatars, err := formUploads(r, "avatar")
	if err != nil {
		writeError(w, err)
		return
	}
	if len(avatars) > 0 {
		avatar = &avatars[0]
	}

	user, err := h.profiles.Update(r.Context(), userID, formOptionalString(r, "displayName"), avatar)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(user))
}

type setUserStatusRequest struct {
	Status string `json:"status"`
}

// HandleSetStatus is the moderation write: an admin suspends, bans, or
// reactivates an account.
//
// PATCH /api/profiles/{id}/status
func (h *ProfileHandler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	actingID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("login required"))
		return
	}
	targetID, err := idParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req setUserStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	if err := h.profiles.Suspend(r.Context(), actingID, targetID, req.Status); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}
