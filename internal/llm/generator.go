package llm

import "context"

// Generator is the seam between the planner and a concrete model
// provider. Implementations send a single prompt pair, request a JSON
// object response where the provider supports it, and return the raw
// completion text.
//
// Implementations are safe for concurrent use as long as their
// configuration is not modified after creation.
type Generator interface {
	// GenerateJSON sends one system/user prompt pair and returns the
	// model's text output.
	GenerateJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	// Name identifies the backend and model for logging.
	Name() string
}
