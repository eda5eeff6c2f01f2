package handlers

import (
	"errors"
	"net/http"

	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/service"
	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/validation"
)

// AuthHandler handles registration and login requests
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type authResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		DisplayName string `json:"display_name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	user, token, err := h.authService.Register(r.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		var valErr validation.ValidationError
		switch {
		case errors.As(err, &valErr):
			respondWithError(w, http.StatusBadRequest, valErr.Error(), "", nil)
		case errors.Is(err, service.ErrEmailTaken):
			respondWithError(w, http.StatusConflict, "Email already registered", "", nil)
		default:
			respondWithError(w, http.StatusServiceUnavailable, "Failed to register", "Failed to register user", err)
		}
		return
	}

	resp := authResponse{Token: token}
	resp.User.ID = user.ID
	resp.User.Email = user.Email
	writeJSON(w, http.StatusCreated, resp)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	user, token, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondWithError(w, http.StatusUnauthorized, "Invalid email or password", "", nil)
			return
		}
		respondWithError(w, http.StatusServiceUnavailable, "Failed to log in", "Failed to log in user", err)
		return
	}

	resp := authResponse{Token: token}
	resp.User.ID = user.ID
	resp.User.Email = user.Email
	writeJSON(w, http.StatusOK, resp)
}
