package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	config "github.com/postpilot/postpilot-api/configs"
	"github.com/postpilot/postpilot-api/internal/apperrors"
)

const maxErrorBody = 2048

// OpenAIClient talks to any OpenAI-compatible /chat/completions endpoint.
type OpenAIClient struct {
	http    *http.Client
	baseURL string
	apiKey  string
	model   string
}

func NewOpenAIClient(cfg config.AI) *OpenAIClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &OpenAIClient{
		http:    &http.Client{Timeout: timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float32      `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	if c.baseURL == "" {
		return "", &apperrors.ConfigurationError{Setting: "AI_BASE_URL"}
	}
	if c.apiKey == "" {
		return "", &apperrors.ConfigurationError{Setting: "AI_API_KEY"}
	}

	model := req.Model
	if model == "" {
		model = c.model
	}

	var userContent any = req.User
	if req.ImageURL != "" {
		userContent = []contentPart{
			{Type: "text", Text: req.User},
			{Type: "image_url", ImageURL: &imageURL{URL: req.ImageURL}},
		}
	}

	body, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: userContent},
		},
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("error marshalling payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("AI request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		slog.Warn("AI gateway returned an error", "status", resp.StatusCode, "model", model)
		return "", &apperrors.UpstreamError{Service: "AI gateway", Status: resp.StatusCode, Body: string(b)}
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("error decoding AI response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", &apperrors.MalformedResponseError{Err: fmt.Errorf("no choices returned")}
	}

	slog.Debug("AI completion finished", "model", model, "elapsed", time.Since(start))
	return out.Choices[0].Message.Content, nil
}
