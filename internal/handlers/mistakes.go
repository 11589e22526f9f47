package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"dersdefteri/internal/contextutil"
)

// MistakesHandler serves the mistake tracker.
type MistakesHandler struct {
	mistakes MistakeService
}

// NewMistakesHandler creates a new MistakesHandler.
func NewMistakesHandler(mistakes MistakeService) *MistakesHandler {
	return &MistakesHandler{mistakes: mistakes}
}

// MasteryRequest sets the mastery level of a mistake.
type MasteryRequest struct {
	MasteryLevel *int `json:"mastery_level"`
}

// List returns the most frequent mistakes.
func (h *MistakesHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}
	mistakes, err := h.mistakes.Top(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r.Context(), err, "Failed to load mistakes")
		return
	}
	writeJSON(w, r.Context(), http.StatusOK, mistakes)
}

// Update changes the mastery level of one mistake.
func (h *MistakesHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	var req MasteryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MasteryLevel == nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "invalid request body", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	mistake, err := h.mistakes.SetMastery(ctx, userID, chi.URLParam(r, "id"), *req.MasteryLevel)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to update mistake")
		return
	}
	writeJSON(w, ctx, http.StatusOK, mistake)
}
