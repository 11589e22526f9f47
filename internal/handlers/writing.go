package handlers

import (
	"encoding/json"
	"net/http"

	"dersdefteri/internal/contextutil"
	"dersdefteri/internal/writing"
)

// WritingHandler serves the daily writing exercise and the idiom library.
type WritingHandler struct {
	writing WritingService
}

// NewWritingHandler creates a new WritingHandler.
func NewWritingHandler(writing WritingService) *WritingHandler {
	return &WritingHandler{writing: writing}
}

// PromptResponse carries one writing prompt.
type PromptResponse struct {
	Prompt string `json:"prompt"`
}

// Prompt returns a random prompt.
func (h *WritingHandler) Prompt(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r.Context(), http.StatusOK, PromptResponse{Prompt: h.writing.Prompt()})
}

// Submit has a text corrected.
func (h *WritingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	var sub writing.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "invalid request body", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.writing.Submit(ctx, userID, sub)
	if err != nil {
		handleServiceError(w, ctx, err, "Fehler bei der Analyse")
		return
	}
	writeJSON(w, ctx, http.StatusCreated, result)
}

// History lists past exercises with their corrections.
func (h *WritingHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}
	exercises, err := h.writing.History(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r.Context(), err, "Failed to load exercises")
		return
	}
	writeJSON(w, r.Context(), http.StatusOK, exercises)
}

// Idioms lists collected deyimler, filtered by the query parameter q.
func (h *WritingHandler) Idioms(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}
	idioms, err := h.writing.Idioms(r.Context(), userID, r.URL.Query().Get("q"))
	if err != nil {
		handleServiceError(w, r.Context(), err, "Failed to load idioms")
		return
	}
	writeJSON(w, r.Context(), http.StatusOK, idioms)
}
