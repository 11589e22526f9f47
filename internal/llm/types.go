package llm

// Message is one turn of a Messages API conversation.
type Message struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// ContentBlock is a text or document part of a message.
type ContentBlock struct {
	Type   string          `json:"type"`
	Text   string          `json:"text,omitempty"`
	Source *DocumentSource `json:"source,omitempty"`
}

// DocumentSource carries an inline, base64 encoded document.
type DocumentSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// TextBlock returns a text content block.
func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: "text", Text: text}
}

// PDFBlock returns a document content block for base64 encoded PDF data.
func PDFBlock(base64Data string) ContentBlock {
	return ContentBlock{
		Type: "document",
		Source: &DocumentSource{
			Type:      "base64",
			MediaType: "application/pdf",
			Data:      base64Data,
		},
	}
}

// ChatParams holds parameters for a Messages API request.
type ChatParams struct {
	// Model specifies the model to use. If empty, the client's default model is used.
	Model string

	// MaxTokens is the maximum number of tokens to generate. Required by the API.
	MaxTokens int

	// System is an optional system prompt.
	System string
}

// MessagesRequest is the request payload for the Messages API.
type MessagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
}

// ResponseBlock is one content block of a Messages API response.
type ResponseBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// MessagesResponse is the response payload of the Messages API.
// Completion is only set by the legacy completions endpoint shape.
type MessagesResponse struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Role       string          `json:"role"`
	Model      string          `json:"model"`
	Content    []ResponseBlock `json:"content"`
	Completion string          `json:"completion"`
	StopReason string          `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}
