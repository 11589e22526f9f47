package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"dersdefteri/internal/contextutil"
	"dersdefteri/internal/extract"
	"dersdefteri/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Raw     string `json:"raw,omitempty"`
}

// MessageResponse carries a German confirmation text.
type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, ctx context.Context, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// WriteError writes an error response.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	writeErrorResponse(w, statusCode, ErrorResponse{Error: message})
}

func writeErrorResponse(w http.ResponseWriter, statusCode int, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

// statusFor maps the service error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, service.ErrTransport),
		errors.Is(err, service.ErrExternalService),
		errors.Is(err, service.ErrParse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// handleServiceError maps service errors to appropriate HTTP status codes and responses.
// Client errors and known backend messages are shown in German; upstream
// failures keep defaultMsg and carry the cause in details.
func handleServiceError(w http.ResponseWriter, ctx context.Context, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(ctx, "service error", "error", err, "status", status)
	} else {
		logger.WarnContext(ctx, "request rejected", "error", err, "status", status)
	}

	resp := ErrorResponse{Error: defaultMsg}
	if status < http.StatusInternalServerError {
		resp.Error = service.GermanMessage(err)
	} else if status != http.StatusInternalServerError {
		if msg, ok := service.Translate(err); ok {
			resp.Error = msg
		} else {
			resp.Details = err.Error()
		}
	}

	var parseErr *extract.ParseError
	if errors.As(err, &parseErr) {
		resp.Raw = parseErr.Raw
	}
	var stageErr *service.StageError
	if errors.As(err, &stageErr) && stageErr.Filename != "" {
		resp.Error = stageErr.Filename + ": " + resp.Error
	}

	writeErrorResponse(w, status, resp)
}

// requestUserID returns the authenticated user, set by the auth middleware.
func requestUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := contextutil.UserIDFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, service.MsgNotSignedIn)
	}
	return userID, ok
}
