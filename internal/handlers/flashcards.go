package handlers

import (
	"net/http"
	"strconv"

	"dersdefteri/internal/deck"
)

// FlashcardsHandler serves the grouped flashcard views, exports and search.
type FlashcardsHandler struct {
	deck DeckService
}

// NewFlashcardsHandler creates a new FlashcardsHandler.
func NewFlashcardsHandler(deck DeckService) *FlashcardsHandler {
	return &FlashcardsHandler{deck: deck}
}

// GroupResponse is one displayed group of cards.
type GroupResponse struct {
	deck.Group
	Label       string `json:"label"`
	ChapterInfo string `json:"chapter_info"`
}

// List returns the user's cards, grammar groups first.
func (h *FlashcardsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}
	groups, err := h.deck.Grouped(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r.Context(), err, "Failed to load flashcards")
		return
	}

	resp := make([]GroupResponse, len(groups))
	for i, g := range groups {
		resp[i] = GroupResponse{Group: g, Label: g.Label(), ChapterInfo: g.ChapterInfo()}
	}
	writeJSON(w, r.Context(), http.StatusOK, resp)
}

// Export returns the cards as an XLSX download.
func (h *FlashcardsHandler) Export(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}
	data, err := h.deck.ExportXLSX(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r.Context(), err, "Export fehlgeschlagen.")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="karteikarten.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Sheet returns the cards as a printable HTML study sheet.
func (h *FlashcardsHandler) Sheet(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}
	page, err := h.deck.StudySheet(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r.Context(), err, "Failed to render study sheet")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

// Search returns cards similar to the query parameter q.
func (h *FlashcardsHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			WriteError(w, http.StatusBadRequest, "k must be a positive integer")
			return
		}
		limit = n
	}

	results, err := h.deck.Search(r.Context(), userID, r.URL.Query().Get("q"), limit)
	if err != nil {
		handleServiceError(w, r.Context(), err, "Suche fehlgeschlagen.")
		return
	}
	writeJSON(w, r.Context(), http.StatusOK, results)
}
