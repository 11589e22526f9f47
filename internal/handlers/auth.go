package handlers

import (
	"encoding/json"
	"net/http"

	"dersdefteri/internal/contextutil"
)

// AuthHandler handles registration, sign-in and the current user.
type AuthHandler struct {
	auth AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// CredentialsRequest is the body of register and login.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "invalid request body", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.auth.Register(ctx, req.Email, req.Password)
	if err != nil {
		handleServiceError(w, ctx, err, "Registrierung fehlgeschlagen.")
		return
	}
	writeJSON(w, ctx, http.StatusCreated, user)
}

// Login signs a user in and returns the bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "invalid request body", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		handleServiceError(w, ctx, err, "Anmeldung fehlgeschlagen.")
		return
	}
	writeJSON(w, ctx, http.StatusOK, session)
}

// Me returns the signed-in user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}
	user, err := h.auth.Me(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r.Context(), err, "Failed to load user")
		return
	}
	writeJSON(w, r.Context(), http.StatusOK, user)
}
