package handlers

import (
	"net/http"

	"dersdefteri/internal/contextutil"
)

// DashboardHandler handles HTTP requests for the progress dashboard.
type DashboardHandler struct {
	dashboard DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboard DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// ServeHTTP handles GET /api/dashboard.
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodGet {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "method not allowed", "method", r.Method)
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}
	stats, err := h.dashboard.Stats(ctx, userID)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to load dashboard")
		return
	}
	writeJSON(w, ctx, http.StatusOK, stats)
}
