package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/h2non/filetype"
	genai "google.golang.org/genai"

	config "github.com/postpilot/postpilot-api/configs"
	"github.com/postpilot/postpilot-api/internal/apperrors"
)

const maxImageBytes = 10 << 20

// GeminiClient is the Gemini API backend. Images are fetched and sent inline.
type GeminiClient struct {
	cli     *genai.Client
	http    *http.Client
	model   string
	timeout time.Duration
}

func NewGeminiClient(ctx context.Context, cfg config.AI) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, &apperrors.ConfigurationError{Setting: "AI_API_KEY"}
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("init gemini client: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &GeminiClient{
		cli:     cli,
		http:    &http.Client{Timeout: 30 * time.Second},
		model:   strings.TrimPrefix(cfg.Model, "google/"),
		timeout: timeout,
	}, nil
}

func (g *GeminiClient) Complete(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	model := strings.TrimPrefix(req.Model, "google/")
	if model == "" {
		model = g.model
	}

	parts := []*genai.Part{{Text: req.User}}
	if req.ImageURL != "" {
		data, mime, err := g.loadImage(ctx, req.ImageURL)
		if err != nil {
			return "", err
		}
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: mime, Data: data}})
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: req.System}}},
		Temperature:       req.Temperature,
	}

	resp, err := g.cli.Models.GenerateContent(ctx, model, []*genai.Content{{Role: "user", Parts: parts}}, cfg)
	if err != nil {
		return "", &apperrors.UpstreamError{Service: "Gemini", Status: http.StatusBadGateway, Body: err.Error()}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &apperrors.MalformedResponseError{Err: fmt.Errorf("no candidates returned")}
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil {
			sb.WriteString(p.Text)
		}
	}
	return sb.String(), nil
}

func (g *GeminiClient) loadImage(ctx context.Context, src string) ([]byte, string, error) {
	var data []byte
	if strings.HasPrefix(src, "data:") {
		comma := strings.Index(src, ",")
		if comma < 0 {
			return nil, "", apperrors.Validation("imageUrl", "Invalid data URL")
		}
		decoded, err := base64.StdEncoding.DecodeString(src[comma+1:])
		if err != nil {
			return nil, "", apperrors.Validation("imageUrl", "Invalid base64 image data")
		}
		data = decoded
	} else {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
		if err != nil {
			return nil, "", fmt.Errorf("error creating image request: %w", err)
		}
		resp, err := g.http.Do(req)
		if err != nil {
			return nil, "", fmt.Errorf("error downloading image: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, "", &apperrors.UpstreamError{Service: "image download", Status: resp.StatusCode}
		}
		data, err = io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
		if err != nil {
			return nil, "", fmt.Errorf("error reading image: %w", err)
		}
	}

	kind, err := filetype.Match(data)
	if err != nil || !filetype.IsImage(data) {
		return nil, "", apperrors.Validation("imageUrl", "Unsupported image type")
	}
	return data, kind.MIME.Value, nil
}
