package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"diff-review-planner/internal/types"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// LangChainGenerator produces JSON completions through LangChainGo's
// OpenAI-compatible LLM. It exists for gateways that need LangChain's
// request shaping rather than the official client.
type LangChainGenerator struct {
	llm     *openai.LLM
	model   string
	timeout time.Duration
}

// NewLangChainGenerator creates a generator for the given endpoint and
// model.
func NewLangChainGenerator(endpoint, apiKey, model string) (*LangChainGenerator, error) {
	llm, err := openai.New(
		openai.WithModel(model),
		openai.WithBaseURL(endpoint),
		openai.WithToken(apiKey),
	)
	if err != nil {
		return nil, fmt.Errorf("create langchain llm: %w", err)
	}
	return &LangChainGenerator{
		llm:     llm,
		model:   model,
		timeout: 120 * time.Second,
	}, nil
}

// SetTimeout sets the per-request timeout.
func (g *LangChainGenerator) SetTimeout(d time.Duration) {
	g.timeout = d
}

// Name identifies the backend and model.
func (g *LangChainGenerator) Name() string {
	return "langchain-" + g.model
}

// GenerateJSON sends one prompt pair in JSON mode and returns the raw
// completion text. An empty choice list is reported as a schema
// mismatch.
func (g *LangChainGenerator) GenerateJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	var messages []llms.MessageContent
	if systemPrompt != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, userPrompt))

	resp, err := g.llm.GenerateContent(ctx, messages, llms.WithJSONMode())
	if err != nil {
		return "", fmt.Errorf("langchain request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", types.NewSchemaMismatchError(errors.New("no object generated"))
	}
	return resp.Choices[0].Content, nil
}
