package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/service"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// OAuthHandler handles the Google sign-in flow
type OAuthHandler struct {
	authService     *service.AuthService
	config          *oauth2.Config
	redirectBaseURL string
	appBaseURL      string
}

// NewOAuthHandler creates a new OAuth handler. With no client ID
// configured the handler still serves its routes but rejects sign-in
// attempts.
func NewOAuthHandler(authService *service.AuthService, clientID, clientSecret, redirectBaseURL, appBaseURL string) *OAuthHandler {
	return &OAuthHandler{
		authService: authService,
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		redirectBaseURL: redirectBaseURL,
		appBaseURL:      appBaseURL,
	}
}

func (h *OAuthHandler) configured() bool {
	return h.config.ClientID != "" && h.config.ClientSecret != ""
}

// Start handles GET /auth/google/start
func (h *OAuthHandler) Start(w http.ResponseWriter, r *http.Request) {
	if !h.configured() {
		respondWithError(w, http.StatusBadRequest, "Google sign-in not configured", "", nil)
		return
	}

	state, err := randomState()
	if err != nil {
		respondWithError(w, http.StatusServiceUnavailable, "Failed to start sign-in", "Failed to generate state", err)
		return
	}

	h.setTempCookie(w, r, "oauth_state", state, 10*time.Minute)

	config := *h.config
	config.RedirectURL = h.redirectURL(r)
	authURL := config.AuthCodeURL(state, oauth2.AccessTypeOnline)
	http.Redirect(w, r, authURL, http.StatusFound)
}

// Callback handles GET /auth/google/callback
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if !h.configured() {
		respondWithError(w, http.StatusBadRequest, "Google sign-in not configured", "", nil)
		return
	}

	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if code == "" {
		respondWithError(w, http.StatusBadRequest, "Missing authorization code", "", nil)
		return
	}

	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || stateCookie.Value != state {
		respondWithError(w, http.StatusBadRequest, "Invalid OAuth state", "", nil)
		return
	}
	h.clearTempCookie(w, r, "oauth_state")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	config := *h.config
	config.RedirectURL = h.redirectURL(r)

	token, err := config.Exchange(ctx, code)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to exchange OAuth code", "OAuth exchange failed", err)
		return
	}

	userInfo, err := fetchGoogleUser(ctx, token)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to fetch Google profile", "Google userinfo fetch failed", err)
		return
	}

	_, appToken, err := h.authService.OAuthLogin(ctx, "google", userInfo.ID, userInfo.Email, userInfo.Name)
	if err != nil {
		respondWithError(w, http.StatusServiceUnavailable, "Failed to sign in", "OAuth login failed", err)
		return
	}

	redirect := fmt.Sprintf("%s/auth/complete#token=%s",
		strings.TrimRight(h.appBaseURL, "/"), url.QueryEscape(appToken))
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}

type googleUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func fetchGoogleUser(ctx context.Context, token *oauth2.Token) (googleUser, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return googleUser{}, fmt.Errorf("failed to fetch Google user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return googleUser{}, fmt.Errorf("google user info returned status %d", resp.StatusCode)
	}

	var payload googleUser
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return googleUser{}, fmt.Errorf("failed to parse Google user info: %w", err)
	}
	if payload.ID == "" || payload.Email == "" {
		return googleUser{}, fmt.Errorf("google user info missing id or email")
	}

	return payload, nil
}

func (h *OAuthHandler) redirectURL(r *http.Request) string {
	baseURL := strings.TrimSpace(h.redirectBaseURL)
	if baseURL == "" {
		scheme := "http"
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s", scheme, r.Host)
	}
	return strings.TrimRight(baseURL, "/") + "/auth/google/callback"
}

func (h *OAuthHandler) setTempCookie(w http.ResponseWriter, r *http.Request, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
	})
}

func (h *OAuthHandler) clearTempCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func randomState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
