package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"diff-review-planner/internal/types"

	"google.golang.org/genai"
)

// GeminiGenerator produces JSON completions through the Gemini API.
type GeminiGenerator struct {
	cli     *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiGenerator creates a generator backed by the Gemini API. An
// empty apiKey lets the genai client fall back to its environment
// variables.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiGenerator{
		cli:     cli,
		model:   model,
		timeout: 120 * time.Second,
	}, nil
}

// SetTimeout sets the per-request timeout.
func (g *GeminiGenerator) SetTimeout(d time.Duration) {
	g.timeout = d
}

// Name identifies the backend and model.
func (g *GeminiGenerator) Name() string {
	return "gemini-" + g.model
}

// GenerateJSON sends one prompt pair with a JSON response MIME type and
// returns the raw completion text. A response without candidates or
// parts is reported as a schema mismatch.
func (g *GeminiGenerator) GenerateJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	cfg := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	if systemPrompt != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}}
	}

	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: userPrompt}}}},
		cfg,
	)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return "", types.NewSchemaMismatchError(errors.New("no object generated"))
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
