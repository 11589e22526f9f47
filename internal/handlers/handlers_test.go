package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"dersdefteri/internal/contextutil"
)

const testUserID = "6f1c2a4e-8b3d-4c5e-9f7a-1b2c3d4e5f60"

// authed marks the request as coming from testUserID.
func authed(req *http.Request) *http.Request {
	return req.WithContext(contextutil.WithUserID(req.Context(), testUserID))
}

// withParams adds chi URL parameters given as key, value pairs.
func withParams(req *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp
}
