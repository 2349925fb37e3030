// Package client provides the model generation backends. Each backend
// satisfies llm.Generator; the factory picks one from configuration.
package client

import (
	"context"
	"fmt"

	"diff-review-planner/internal/config"
	"diff-review-planner/internal/llm"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// NewGenerator creates the generation backend selected by
// cfg.LLM.Backend.
//
// The returned generator is safe for concurrent use as long as its
// configuration is not modified after creation, which is the standard
// contract for http.Client based libraries.
func NewGenerator(ctx context.Context, cfg *config.Config) (llm.Generator, error) {
	switch cfg.LLM.Backend {
	case config.BackendOpenAI:
		cli := openai.NewClient(
			option.WithAPIKey(cfg.LLM.APIKey),
			option.WithBaseURL(cfg.LLM.Endpoint),
		)
		// Server.ConcurrencyLimit also caps in-flight model requests.
		gen := NewOpenAIGenerator(&cli, cfg.LLM.Model, int(cfg.Server.ConcurrencyLimit))
		if cfg.LLM.Timeout > 0 {
			gen.SetTimeout(cfg.LLM.Timeout)
		}
		return gen, nil

	case config.BackendGemini:
		gen, err := NewGeminiGenerator(ctx, cfg.LLM.APIKey, cfg.LLM.Model)
		if err != nil {
			return nil, err
		}
		if cfg.LLM.Timeout > 0 {
			gen.SetTimeout(cfg.LLM.Timeout)
		}
		return gen, nil

	case config.BackendLangChain:
		gen, err := NewLangChainGenerator(cfg.LLM.Endpoint, cfg.LLM.APIKey, cfg.LLM.Model)
		if err != nil {
			return nil, err
		}
		if cfg.LLM.Timeout > 0 {
			gen.SetTimeout(cfg.LLM.Timeout)
		}
		return gen, nil

	default:
		return nil, fmt.Errorf("unknown llm backend %q", cfg.LLM.Backend)
	}
}
