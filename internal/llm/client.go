package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"dersdefteri/internal/contextutil"
	"dersdefteri/internal/service"
)

// AnthropicVersion is the API version header sent with every request.
const AnthropicVersion = "2023-06-01"

var (
	// ErrMissingAPIKey is returned when no API key is configured.
	ErrMissingAPIKey = errors.New("anthropic api key not configured")
	// ErrRequestFailed is returned when the request never produced a response.
	ErrRequestFailed = fmt.Errorf("anthropic fetch failed: %w", service.ErrTransport)
)

// APIError is returned when the API answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("anthropic api error: status %d: %s", e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error {
	return service.ErrExternalService
}

// Client is a client for the Anthropic Messages API.
type Client struct {
	BaseURL string
	APIKey  string
	Model   string
	client  *http.Client
}

// NewClient creates a new Messages API client.
// The HTTP client has no timeout of its own; callers bound requests with their context.
func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		client:  &http.Client{},
	}
}

// CreateMessage sends one Messages API request and returns the response text.
// The text is the first content block's text, else the legacy completion
// field, else the raw response body.
func (c *Client) CreateMessage(ctx context.Context, params ChatParams, messages []Message) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if c.APIKey == "" {
		return "", ErrMissingAPIKey
	}

	model := params.Model
	if model == "" {
		model = c.Model
	}

	payload := MessagesRequest{
		Model:     model,
		MaxTokens: params.MaxTokens,
		System:    params.System,
		Messages:  messages,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/messages", c.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", AnthropicVersion)

	logger.InfoContext(ctx, "calling anthropic api", "model", model, "max_tokens", params.MaxTokens)
	start := time.Now()

	resp, err := c.client.Do(req)
	duration := time.Since(start).Seconds()
	if err != nil {
		logger.ErrorContext(ctx, "anthropic fetch failed", "duration_s", duration, "error", err)
		return "", fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	logger.InfoContext(ctx, "anthropic api responded", "status", resp.StatusCode, "duration_s", duration)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %w", ErrRequestFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.ErrorContext(ctx, "anthropic api error", "status", resp.StatusCode, "body", string(raw))
		return "", &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	text := responseText(raw)
	logger.InfoContext(ctx, "anthropic response received", "response_len", len(text))
	return text, nil
}

// AnalyzeDocument sends a PDF together with an instruction and returns the response text.
func (c *Client) AnalyzeDocument(ctx context.Context, pdf []byte, instruction string, maxTokens int) (string, error) {
	return c.CreateMessage(ctx, ChatParams{MaxTokens: maxTokens}, []Message{
		{
			Role: "user",
			Content: []ContentBlock{
				PDFBlock(base64.StdEncoding.EncodeToString(pdf)),
				TextBlock(instruction),
			},
		},
	})
}

// Complete sends a single text prompt with an optional system prompt.
func (c *Client) Complete(ctx context.Context, system, prompt string, maxTokens int) (string, error) {
	return c.CreateMessage(ctx, ChatParams{MaxTokens: maxTokens, System: system}, []Message{
		{Role: "user", Content: []ContentBlock{TextBlock(prompt)}},
	})
}

// responseText picks the text out of a successful response body.
func responseText(raw []byte) string {
	var msg MessagesResponse
	if err := json.Unmarshal(raw, &msg); err != nil {
		return string(raw)
	}
	if len(msg.Content) > 0 && msg.Content[0].Text != "" {
		return msg.Content[0].Text
	}
	if msg.Completion != "" {
		return msg.Completion
	}
	return string(raw)
}
