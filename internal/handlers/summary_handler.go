package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/models"
	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/service"
	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/validation"
)

// SummaryHandler handles stored summary record requests
type SummaryHandler struct {
	summaryService *service.SummaryService
}

// NewSummaryHandler creates a new summary handler
func NewSummaryHandler(summaryService *service.SummaryService) *SummaryHandler {
	return &SummaryHandler{summaryService: summaryService}
}

type summaryResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Language    string    `json:"language"`
	IsPrivate   bool      `json:"is_private"`
	CreatedAt   time.Time `json:"created_at"`
}

func toSummaryResponse(s *models.Summary) summaryResponse {
	return summaryResponse{
		ID:          s.ID,
		UserID:      s.UserID,
		DisplayName: s.DisplayName,
		Title:       s.Title,
		Content:     s.Content,
		Language:    s.Language,
		IsPrivate:   s.IsPrivate,
		CreatedAt:   s.CreatedAt,
	}
}

// ListSummaries handles GET /api/summaries
func (h *SummaryHandler) ListSummaries(w http.ResponseWriter, r *http.Request) {
	userID := GetUserIDFromContext(r.Context())

	summaries, err := h.summaryService.ListSummaries(userID)
	if err != nil {
		respondWithError(w, http.StatusServiceUnavailable, "Failed to load summaries", "Failed to list summaries", err)
		return
	}

	resp := make([]summaryResponse, 0, len(summaries))
	for i := range summaries {
		resp = append(resp, toSummaryResponse(&summaries[i]))
	}

	writeJSON(w, http.StatusOK, resp)
}

// CreateSummary handles POST /api/summaries
func (h *SummaryHandler) CreateSummary(w http.ResponseWriter, r *http.Request) {
	userID := GetUserIDFromContext(r.Context())

	var req struct {
		Title     string `json:"title"`
		Content   string `json:"content"`
		Language  string `json:"language"`
		IsPrivate bool   `json:"is_private"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	summary, err := h.summaryService.CreateSummary(userID, req.Title, req.Content, req.Language, req.IsPrivate)
	if err != nil {
		var valErr validation.ValidationError
		if errors.As(err, &valErr) {
			respondWithError(w, http.StatusBadRequest, valErr.Error(), "", nil)
			return
		}
		respondWithError(w, http.StatusServiceUnavailable, "Failed to save summary", "Failed to create summary", err)
		return
	}

	writeJSON(w, http.StatusCreated, toSummaryResponse(summary))
}

// GetSummary handles GET /api/summaries/{id}
func (h *SummaryHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	userID := GetUserIDFromContext(r.Context())
	id := r.PathValue("id")

	summary, err := h.summaryService.GetSummary(id, userID)
	if err != nil {
		if errors.Is(err, service.ErrSummaryNotFound) {
			respondWithError(w, http.StatusNotFound, "Summary not found", "", nil)
			return
		}
		respondWithError(w, http.StatusServiceUnavailable, "Failed to load summary", "Failed to get summary", err)
		return
	}

	writeJSON(w, http.StatusOK, toSummaryResponse(summary))
}

// SetPrivacy handles POST /api/summaries/{id}/privacy
func (h *SummaryHandler) SetPrivacy(w http.ResponseWriter, r *http.Request) {
	userID := GetUserIDFromContext(r.Context())
	id := r.PathValue("id")

	var req struct {
		IsPrivate bool `json:"is_private"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.summaryService.SetPrivacy(id, userID, req.IsPrivate); err != nil {
		if errors.Is(err, service.ErrSummaryNotFound) {
			respondWithError(w, http.StatusNotFound, "Summary not found", "", nil)
			return
		}
		respondWithError(w, http.StatusServiceUnavailable, "Failed to update summary", "Failed to set privacy", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"is_private": req.IsPrivate})
}
