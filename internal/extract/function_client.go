package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"dersdefteri/internal/contextutil"
	"dersdefteri/internal/service"
)

// FunctionError is a non-2xx answer from a remote process-pdf endpoint.
type FunctionError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *FunctionError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("process-pdf returned %d: %s: %s", e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("process-pdf returned %d: %s", e.StatusCode, e.Message)
}

func (e *FunctionError) Unwrap() error {
	return service.ErrExternalService
}

// TokenFunc returns the bearer token to present to the remote endpoint.
type TokenFunc func(ctx context.Context) (string, error)

// FunctionClient delegates extraction to a remote process-pdf endpoint.
type FunctionClient struct {
	URL    string
	token  TokenFunc
	client *http.Client
}

// NewFunctionClient creates a FunctionClient posting to url.
func NewFunctionClient(url string, token TokenFunc) *FunctionClient {
	return &FunctionClient{
		URL:    url,
		token:  token,
		client: &http.Client{},
	}
}

type functionRequest struct {
	PDFURL   string `json:"pdfUrl"`
	Filename string `json:"filename,omitempty"`
	PDFID    string `json:"pdfId,omitempty"`
}

type functionErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// Extract posts the request and returns the response body as raw text.
func (f *FunctionClient) Extract(ctx context.Context, req Request) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	body, err := json.Marshal(functionRequest{PDFURL: req.PDFURL, Filename: req.Filename, PDFID: req.DocumentID})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, f.URL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if f.token != nil {
		token, err := f.token(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to obtain token: %w", err)
		}
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	logger.InfoContext(ctx, "invoking process-pdf", "url", f.URL, "document_id", req.DocumentID)
	resp, err := f.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to invoke process-pdf: %w: %w", service.ErrTransport, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w: %w", service.ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		fe := &FunctionError{StatusCode: resp.StatusCode, Message: string(raw)}
		var eb functionErrorBody
		if json.Unmarshal(raw, &eb) == nil && eb.Error != "" {
			fe.Message = eb.Error
			fe.Details = eb.Details
		}
		return "", fe
	}
	return string(raw), nil
}
