package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"dersdefteri/internal/contextutil"
	"dersdefteri/internal/extract"
	"dersdefteri/internal/llm"
	"dersdefteri/internal/service"
)

// ProcessPDFHandler extracts the chapter JSON of one PDF URL.
type ProcessPDFHandler struct {
	extractor Extractor
}

// NewProcessPDFHandler creates a new ProcessPDFHandler.
func NewProcessPDFHandler(extractor Extractor) *ProcessPDFHandler {
	return &ProcessPDFHandler{extractor: extractor}
}

// ProcessPDFRequest is the body of a process-pdf call.
type ProcessPDFRequest struct {
	PDFURL   string `json:"pdfUrl"`
	Filename string `json:"filename"`
	PDFID    string `json:"pdfId"`
}

// ServeHTTP handles POST /functions/process-pdf.
// The located JSON object of the model response is returned unchanged.
func (h *ProcessPDFHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req ProcessPDFRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if strings.TrimSpace(req.PDFURL) == "" {
		WriteError(w, http.StatusBadRequest, "pdfUrl is required")
		return
	}

	logger.InfoContext(ctx, "process-pdf started", "filename", req.Filename, "pdf_id", req.PDFID)
	raw, err := h.extractor.Extract(ctx, extract.Request{PDFURL: req.PDFURL, Filename: req.Filename, DocumentID: req.PDFID})
	if err != nil {
		h.writeExtractError(w, r, err)
		return
	}

	payload, err := extract.Parse(raw)
	if err != nil {
		h.writeExtractError(w, r, err)
		return
	}
	logger.InfoContext(ctx, "process-pdf finished", "chapters", len(payload.Chapters))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(payload.JSON))
}

func (h *ProcessPDFHandler) writeExtractError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "process-pdf failed", "error", err)

	var (
		downloadErr *extract.DownloadError
		apiErr      *llm.APIError
		parseErr    *extract.ParseError
	)
	switch {
	case errors.As(err, &downloadErr):
		WriteError(w, http.StatusBadGateway, downloadErr.Error())
	case errors.Is(err, extract.ErrDownload):
		writeErrorResponse(w, http.StatusBadGateway, ErrorResponse{Error: "Failed to download PDF", Details: err.Error()})
	case errors.Is(err, llm.ErrMissingAPIKey):
		WriteError(w, http.StatusInternalServerError, "Anthropic API key not configured")
	case errors.As(err, &apiErr):
		writeErrorResponse(w, http.StatusBadGateway, ErrorResponse{
			Error:   "Anthropic API error",
			Details: fmt.Sprintf("status %d: %s", apiErr.StatusCode, apiErr.Body),
		})
	case errors.Is(err, llm.ErrRequestFailed):
		writeErrorResponse(w, http.StatusBadGateway, ErrorResponse{Error: "Anthropic fetch failed", Details: err.Error()})
	case errors.As(err, &parseErr):
		writeErrorResponse(w, http.StatusBadGateway, ErrorResponse{
			Error:   "Failed to parse JSON from Anthropic response",
			Details: parseErr.Err.Error(),
			Raw:     parseErr.Raw,
		})
	case errors.Is(err, service.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, service.GermanMessage(err))
	default:
		writeErrorResponse(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal error", Details: err.Error()})
	}
}
