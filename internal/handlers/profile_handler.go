package handlers

import (
	"errors"
	"net/http"

	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/service"
	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/validation"
)

// ProfileHandler handles display-name profile requests
type ProfileHandler struct {
	profileService *service.ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

type profileResponse struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

// GetProfile handles GET /api/profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := GetUserIDFromContext(r.Context())

	profile, err := h.profileService.GetProfile(userID)
	if err != nil {
		respondWithError(w, http.StatusServiceUnavailable, "Failed to load profile", "Failed to get profile", err)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		UserID:      profile.UserID,
		DisplayName: profile.DisplayName,
	})
}

// UpdateProfile handles PUT /api/profile
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := GetUserIDFromContext(r.Context())

	var req struct {
		DisplayName string `json:"display_name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.profileService.UpdateProfile(userID, req.DisplayName)
	if err != nil {
		var valErr validation.ValidationError
		if errors.As(err, &valErr) {
			respondWithError(w, http.StatusBadRequest, valErr.Error(), "", nil)
			return
		}
		respondWithError(w, http.StatusServiceUnavailable, "Failed to update profile", "Failed to update profile", err)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		UserID:      profile.UserID,
		DisplayName: profile.DisplayName,
	})
}
