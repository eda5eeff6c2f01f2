package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/models"
	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/service"
)

// FamilyHandler handles family group and invite code requests
type FamilyHandler struct {
	groupService  *service.GroupService
	inviteService *service.InviteService
}

// NewFamilyHandler creates a new family handler
func NewFamilyHandler(groupService *service.GroupService, inviteService *service.InviteService) *FamilyHandler {
	return &FamilyHandler{
		groupService:  groupService,
		inviteService: inviteService,
	}
}

type groupResponse struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	CreatedAt time.Time             `json:"created_at"`
	Role      string                `json:"role,omitempty"`
	Members   []rosterEntryResponse `json:"members,omitempty"`
}

type rosterEntryResponse struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	JoinedAt    time.Time `json:"joined_at"`
}

type codeResponse struct {
	Code             string    `json:"code"`
	ExpiresAt        time.Time `json:"expires_at"`
	SecondsRemaining int64     `json:"seconds_remaining"`
}

// GetMyGroup handles GET /api/family
func (h *FamilyHandler) GetMyGroup(w http.ResponseWriter, r *http.Request) {
	userID := GetUserIDFromContext(r.Context())

	state, err := h.groupService.GetMyGroupState(userID)
	if err != nil {
		respondWithError(w, http.StatusServiceUnavailable, "Failed to load group", "Failed to get group state", err)
		return
	}
	if state == nil {
		respondWithError(w, http.StatusNotFound, "Not in a family group", "", nil)
		return
	}

	resp := groupResponse{
		ID:        state.Group.ID,
		Name:      state.Group.Name,
		CreatedAt: state.Group.CreatedAt,
		Role:      string(state.Role),
	}
	for _, m := range state.Members {
		resp.Members = append(resp.Members, rosterEntryResponse{
			UserID:      m.UserID,
			DisplayName: m.DisplayName,
			Role:        string(m.Role),
			JoinedAt:    m.JoinedAt,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// CreateGroup handles POST /api/family
func (h *FamilyHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	userID := GetUserIDFromContext(r.Context())

	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	group, err := h.groupService.CreateGroup(userID, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidName):
			respondWithError(w, http.StatusBadRequest, "Group name must not be empty", "", nil)
		case errors.Is(err, service.ErrAlreadyInGroup):
			respondWithError(w, http.StatusConflict, "You already belong to a family group", "", nil)
		default:
			respondWithError(w, http.StatusServiceUnavailable, "Failed to create group", "Failed to create group", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, groupResponse{
		ID:        group.ID,
		Name:      group.Name,
		CreatedAt: group.CreatedAt,
		Role:      string(models.RoleOwner),
	})
}

// LeaveGroup handles POST /api/family/leave
func (h *FamilyHandler) LeaveGroup(w http.ResponseWriter, r *http.Request) {
	userID := GetUserIDFromContext(r.Context())

	if err := h.groupService.LeaveGroup(userID); err != nil {
		switch {
		case errors.Is(err, service.ErrNotInGroup):
			respondWithError(w, http.StatusNotFound, "Not in a family group", "", nil)
		case errors.Is(err, service.ErrOwnerCannotLeave):
			respondWithError(w, http.StatusConflict, "Transfer is not supported: all other members must leave first", "", nil)
		default:
			respondWithError(w, http.StatusServiceUnavailable, "Failed to leave group", "Failed to leave group", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "left"})
}

// GenerateCode handles POST /api/family/code
func (h *FamilyHandler) GenerateCode(w http.ResponseWriter, r *http.Request) {
	userID := GetUserIDFromContext(r.Context())

	var req struct {
		Email string `json:"email"`
	}
	if r.ContentLength > 0 && !decodeJSON(w, r, &req) {
		return
	}

	code, err := h.inviteService.GenerateCode(r.Context(), userID, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotInGroup):
			respondWithError(w, http.StatusNotFound, "Not in a family group", "", nil)
		case errors.Is(err, service.ErrNotOwner):
			respondWithError(w, http.StatusForbidden, "Only the group owner can generate invite codes", "", nil)
		default:
			respondWithError(w, http.StatusServiceUnavailable, "Failed to generate code", "Failed to generate code", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, codeResponse{
		Code:             code.Code,
		ExpiresAt:        code.ExpiresAt,
		SecondsRemaining: code.SecondsRemaining(),
	})
}

// CodeStatus handles GET /api/family/code
func (h *FamilyHandler) CodeStatus(w http.ResponseWriter, r *http.Request) {
	userID := GetUserIDFromContext(r.Context())

	code, err := h.inviteService.CodeStatus(userID)
	if err != nil {
		if errors.Is(err, service.ErrNotInGroup) {
			respondWithError(w, http.StatusNotFound, "Not in a family group", "", nil)
			return
		}
		respondWithError(w, http.StatusServiceUnavailable, "Failed to check code", "Failed to check code status", err)
		return
	}
	if code == nil {
		respondWithError(w, http.StatusNotFound, "No active invite code", "", nil)
		return
	}

	writeJSON(w, http.StatusOK, codeResponse{
		Code:             code.Code,
		ExpiresAt:        code.ExpiresAt,
		SecondsRemaining: code.SecondsRemaining(),
	})
}

// RedeemCode handles POST /api/family/join
func (h *FamilyHandler) RedeemCode(w http.ResponseWriter, r *http.Request) {
	userID := GetUserIDFromContext(r.Context())

	var req struct {
		Code string `json:"code"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	group, err := h.inviteService.RedeemCode(userID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidOrExpiredCode):
			respondWithError(w, http.StatusGone, "Invite code is invalid or expired", "", nil)
		case errors.Is(err, service.ErrAlreadyInGroup):
			respondWithError(w, http.StatusConflict, "You already belong to a family group", "", nil)
		default:
			respondWithError(w, http.StatusServiceUnavailable, "Failed to join group", "Failed to redeem code", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, groupResponse{
		ID:        group.ID,
		Name:      group.Name,
		CreatedAt: group.CreatedAt,
		Role:      string(models.RoleMember),
	})
}
