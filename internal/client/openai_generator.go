package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"diff-review-planner/internal/types"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"
)

// OpenAIGenerator produces JSON completions through the official OpenAI
// client. Pointing it at a compatible endpoint (vLLM, LiteLLM, Azure)
// works as well.
type OpenAIGenerator struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	sem     chan struct{}
}

// NewOpenAIGenerator creates a generator for the given client and model.
// maxConcurrency caps in-flight requests; zero or negative means no cap.
func NewOpenAIGenerator(client *openai.Client, model string, maxConcurrency int) *OpenAIGenerator {
	var sem chan struct{}
	if maxConcurrency > 0 {
		sem = make(chan struct{}, maxConcurrency)
	}
	return &OpenAIGenerator{
		client:  client,
		model:   model,
		timeout: 120 * time.Second,
		sem:     sem,
	}
}

// SetTimeout sets the per-request timeout.
func (g *OpenAIGenerator) SetTimeout(d time.Duration) {
	g.timeout = d
}

// Name identifies the backend and model.
func (g *OpenAIGenerator) Name() string {
	return "openai-" + g.model
}

// Ping sends a minimal request to verify the connection.
func (g *OpenAIGenerator) Ping(ctx context.Context) error {
	slog.Info("checking llm connection...")
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage("hello"),
		},
		MaxTokens: openai.Int(1),
	}
	if _, err := g.client.Chat.Completions.New(ctx, params); err != nil {
		return fmt.Errorf("llm ping failed: %w", err)
	}
	slog.Info("llm connection verified")
	return nil
}

// GenerateJSON sends one prompt pair in JSON object mode and returns the
// raw completion text. An empty choice list is reported as a schema
// mismatch so the caller's retry loop can handle it.
func (g *OpenAIGenerator) GenerateJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	if g.sem != nil {
		select {
		case g.sem <- struct{}{}:
			defer func() { <-g.sem }()
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if systemPrompt != "" {
		messages = append(messages, openai.SystemMessage(systemPrompt))
	}
	messages = append(messages, openai.UserMessage(userPrompt))

	jsonObject := shared.NewResponseFormatJSONObjectParam()
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(g.model),
		Messages: messages,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &jsonObject,
		},
	}

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", types.NewSchemaMismatchError(errors.New("no object generated"))
	}
	return resp.Choices[0].Message.Content, nil
}
