package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"os"
	"path"

	"github.com/go-chi/chi/v5"

	"dersdefteri/internal/contextutil"
	"dersdefteri/internal/service"
)

// ObjectReader serves stored objects behind signed URLs.
type ObjectReader interface {
	Bucket() string
	Verify(objectPath, expires, signature string) error
	Open(objectPath string) (*os.File, error)
}

// DownloadHandler serves GET /storage/v1/object/sign/{bucket}/*.
type DownloadHandler struct {
	objects ObjectReader
}

// NewDownloadHandler creates a new DownloadHandler.
func NewDownloadHandler(objects ObjectReader) *DownloadHandler {
	return &DownloadHandler{objects: objects}
}

// ServeHTTP streams the object when the signature verifies.
func (h *DownloadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if chi.URLParam(r, "bucket") != h.objects.Bucket() {
		WriteError(w, http.StatusNotFound, "Object not found")
		return
	}

	objectPath, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid object path")
		return
	}

	q := r.URL.Query()
	if err := h.objects.Verify(objectPath, q.Get("expires"), q.Get("signature")); err != nil {
		logger.WarnContext(ctx, "rejected signed url", "path", objectPath, "error", err)
		WriteError(w, http.StatusForbidden, err.Error())
		return
	}

	f, err := h.objects.Open(objectPath)
	if errors.Is(err, service.ErrNotFound) {
		WriteError(w, http.StatusNotFound, "Object not found")
		return
	}
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to open object")
		return
	}
	defer func() {
		_ = f.Close()
	}()

	info, err := f.Stat()
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to open object")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	http.ServeContent(w, r, path.Base(objectPath), info.ModTime(), f)
}
