package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"dersdefteri/internal/contextutil"
	"dersdefteri/internal/service"
)

// ErrDownload is returned when the signed document URL cannot be fetched.
var ErrDownload = fmt.Errorf("failed to download PDF: %w", service.ErrTransport)

// DownloadError reports a non-2xx answer from the document URL.
type DownloadError struct {
	StatusCode int
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("Failed to download PDF: %d", e.StatusCode)
}

func (e *DownloadError) Unwrap() error {
	return ErrDownload
}

// Request identifies the document an Extractor should analyze.
type Request struct {
	PDFURL     string
	Filename   string
	DocumentID string
}

// Extractor turns a document URL into the model's raw response text.
type Extractor interface {
	Extract(ctx context.Context, req Request) (string, error)
}

// DocumentAnalyzer sends a PDF and an instruction to a language model.
type DocumentAnalyzer interface {
	AnalyzeDocument(ctx context.Context, pdf []byte, instruction string, maxTokens int) (string, error)
}

// Invoker downloads the document and sends it to the model in one request.
type Invoker struct {
	analyzer  DocumentAnalyzer
	client    *http.Client
	maxTokens int
}

// NewInvoker creates an Invoker.
func NewInvoker(analyzer DocumentAnalyzer, maxTokens int) *Invoker {
	return &Invoker{
		analyzer:  analyzer,
		client:    &http.Client{},
		maxTokens: maxTokens,
	}
}

// Extract downloads req.PDFURL and returns the model's response text.
func (i *Invoker) Extract(ctx context.Context, req Request) (string, error) {
	logger := contextutil.LoggerFromContext(ctx).With("filename", displayName(req.Filename))
	logger.InfoContext(ctx, "starting pdf processing")

	pdf, err := i.download(ctx, req.PDFURL)
	if err != nil {
		logger.ErrorContext(ctx, "pdf download failed", "error", err)
		return "", err
	}
	logger.InfoContext(ctx, "pdf downloaded", "size_mb", fmt.Sprintf("%.2f", float64(len(pdf))/1024/1024))

	start := time.Now()
	text, err := i.analyzer.AnalyzeDocument(ctx, pdf, Instruction, i.maxTokens)
	if err != nil {
		return "", err
	}
	logger.InfoContext(ctx, "extraction finished",
		"duration_s", fmt.Sprintf("%.2f", time.Since(start).Seconds()),
		"response_len", len(text))
	return text, nil
}

func (i *Invoker) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownload, err)
	}
	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownload, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &DownloadError{StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownload, err)
	}
	return data, nil
}

func displayName(filename string) string {
	if filename == "" {
		return "unknown"
	}
	return filename
}

