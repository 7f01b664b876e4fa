// Package ai sends chat-completion requests to the configured model provider and returns raw text.
package ai

import (
	"context"
	"fmt"

	config "github.com/postpilot/postpilot-api/configs"
)

// Request is a single system + user exchange. ImageURL, when set, is attached to the user turn.
type Request struct {
	System      string
	User        string
	Model       string
	Temperature *float32
	ImageURL    string
}

type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// New returns the backend selected by cfg.Provider.
func New(ctx context.Context, cfg config.AI) (Client, error) {
	switch cfg.Provider {
	case "", "openai":
		return NewOpenAIClient(cfg), nil
	case "gemini":
		return NewGeminiClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}

func Temperature(t float32) *float32 {
	return &t
}
