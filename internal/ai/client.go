package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/david/contract-finder/internal/models"
	"github.com/david/contract-finder/internal/value"
)

// Client talks to the analysis backend that generates structured contract
// summaries and answers chat turns.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 120 * time.Second},
	}
}

type analyzeRequest struct {
	ResourceLinks []string `json:"resourceLinks"`
}

type parseRequest struct {
	Description string `json:"description"`
}

type chatRequest struct {
	Summary     value.Value          `json:"summary"`
	ChatHistory []models.ChatMessage `json:"chatHistory"`
	UserMessage string               `json:"userMessage"`
}

type chatResponse struct {
	Message string `json:"message"`
}

// GenerateFromLinks asks the backend to analyze the full set of solicitation
// documents. The returned value is always a non-empty map; anything else is
// an error, never an empty-but-valid summary.
func (c *Client) GenerateFromLinks(ctx context.Context, links []string) (value.Value, error) {
	return c.generate(ctx, "/analyze-solicitations", analyzeRequest{ResourceLinks: links})
}

// GenerateFromText asks the backend to analyze raw description text.
func (c *Client) GenerateFromText(ctx context.Context, text string) (value.Value, error) {
	return c.generate(ctx, "/parse-description", parseRequest{Description: text})
}

func (c *Client) generate(ctx context.Context, path string, payload any) (value.Value, error) {
	body, err := c.post(ctx, path, payload)
	if err != nil {
		return value.Value{}, err
	}

	var doc value.Value
	if err := json.Unmarshal(body, &doc); err != nil {
		return value.Value{}, fmt.Errorf("failed to decode summary response: %w", err)
	}
	if doc.Kind() != value.KindMap || doc.Len() == 0 {
		return value.Value{}, fmt.Errorf("backend returned an empty summary")
	}
	return doc, nil
}

// SendChatTurn submits the seeding summary, the entire transcript, and the
// new user message, and returns the assistant's reply. Full context goes out
// on every turn; the backend never sees a delta.
func (c *Client) SendChatTurn(ctx context.Context, summary value.Value, transcript []models.ChatMessage, userText string) (string, error) {
	body, err := c.post(ctx, "/message-chat", chatRequest{
		Summary:     summary,
		ChatHistory: transcript,
		UserMessage: userText,
	})
	if err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	if parsed.Message == "" {
		return "", fmt.Errorf("backend returned an empty chat reply")
	}
	return parsed.Message, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backend returned status: %d", resp.StatusCode)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return buf.Bytes(), nil
}
