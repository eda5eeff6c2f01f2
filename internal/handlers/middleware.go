package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/security"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// UserIDContextKey holds the authenticated user's ID
	UserIDContextKey ContextKey = "user_id"
)

// Middleware holds dependencies for middleware functions
type Middleware struct {
	tokenIssuer *security.TokenIssuer
	rateLimiter *security.RateLimiter
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(tokenIssuer *security.TokenIssuer, rateLimiter *security.RateLimiter) *Middleware {
	return &Middleware{
		tokenIssuer: tokenIssuer,
		rateLimiter: rateLimiter,
	}
}

// RequireAuth is middleware that requires a valid bearer token
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondWithError(w, http.StatusUnauthorized, "Authentication required", "", nil)
			return
		}

		userID, err := m.tokenIssuer.Verify(token)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Invalid or expired token", "", nil)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDContextKey, userID)
		next(w, r.WithContext(ctx))
	}
}

// RateLimit is middleware that limits requests per client IP
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := security.GetClientIP(r)
		if !m.rateLimiter.Allow(ip) {
			respondWithError(w, http.StatusTooManyRequests, "Too many requests", "", nil)
			return
		}
		next(w, r)
	}
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// GetUserIDFromContext retrieves the authenticated user ID from the
// request context, or "" when the request is unauthenticated
func GetUserIDFromContext(ctx context.Context) string {
	userID, ok := ctx.Value(UserIDContextKey).(string)
	if !ok {
		return ""
	}
	return userID
}
