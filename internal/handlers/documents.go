package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"dersdefteri/internal/contextutil"
	"dersdefteri/internal/ingest"
	"dersdefteri/internal/service"
	"dersdefteri/internal/storage"
)

// DocumentsHandler handles source document upload, listing, deletion and processing.
type DocumentsHandler struct {
	docs           DocumentService
	uploader       Uploader
	processor      Processor
	maxUploadBytes int64
}

// NewDocumentsHandler creates a new DocumentsHandler.
func NewDocumentsHandler(docs DocumentService, uploader Uploader, processor Processor, maxUploadBytes int64) *DocumentsHandler {
	return &DocumentsHandler{
		docs:           docs,
		uploader:       uploader,
		processor:      processor,
		maxUploadBytes: maxUploadBytes,
	}
}

// UploadResponse is returned after a batch upload.
type UploadResponse struct {
	Documents []storage.Document `json:"documents"`
	Message   string             `json:"message"`
}

// UploadErrorResponse names the file that stopped a batch.
type UploadErrorResponse struct {
	ErrorResponse
	Uploaded []storage.Document `json:"uploaded"`
}

// ProcessResponse is returned after a document was turned into flashcards.
type ProcessResponse struct {
	*ingest.Result
	Message string `json:"message"`
}

// List returns the user's documents, newest first.
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}
	docs, err := h.docs.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r.Context(), err, "Failed to list documents")
		return
	}
	writeJSON(w, r.Context(), http.StatusOK, docs)
}

// Upload stores the PDFs of the multipart field "files", one after another.
func (h *DocumentsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	if r.ContentLength > h.maxUploadBytes {
		WriteError(w, http.StatusRequestEntityTooLarge, "Die Dateien sind zu groß.")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		logger.WarnContext(ctx, "invalid multipart body", "error", err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, http.StatusRequestEntityTooLarge, "Die Dateien sind zu groß.")
			return
		}
		WriteError(w, http.StatusBadRequest, "Invalid multipart body")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	headers := r.MultipartForm.File["files"]
	files := make([]ingest.File, len(headers))
	for i, fh := range headers {
		files[i] = ingest.File{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Open:        openPart(fh),
		}
	}

	docs, err := h.uploader.Upload(ctx, userID, files, func(p ingest.Progress) {
		logger.InfoContext(ctx, "uploading", "current", p.Current, "total", p.Total, "filename", p.Filename)
	})
	if err != nil {
		var batchErr *ingest.BatchError
		if errors.As(err, &batchErr) {
			logger.ErrorContext(ctx, "upload stopped", "filename", batchErr.Filename, "index", batchErr.Index, "error", batchErr.Err)
			status := statusFor(batchErr.Err)
			writeJSON(w, ctx, status, UploadErrorResponse{
				ErrorResponse: ErrorResponse{Error: batchErr.Filename + ": " + service.GermanMessage(batchErr.Err)},
				Uploaded:      batchErr.Uploaded,
			})
			return
		}
		handleServiceError(w, ctx, err, "Fehler beim Hochladen.")
		return
	}

	writeJSON(w, ctx, http.StatusCreated, UploadResponse{Documents: docs, Message: ingest.UploadSummary(len(docs))})
}

// Delete removes a document, its stored object and its flashcards.
func (h *DocumentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}
	if err := h.docs.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, r.Context(), err, "Failed to delete document")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Process extracts flashcards from a document.
func (h *DocumentsHandler) Process(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}
	result, err := h.processor.Process(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r.Context(), err, "Fehler bei der Verarbeitung")
		return
	}
	writeJSON(w, r.Context(), http.StatusOK, ProcessResponse{
		Result:  result,
		Message: ingest.SuccessMessage(result.Document.Filename, len(result.Cards)),
	})
}

func openPart(fh *multipart.FileHeader) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		return fh.Open()
	}
}
