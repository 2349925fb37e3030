// Package agent implements the model-assisted planning adapter. It
// anchors a bounded prompt on the heuristic baseline, sends it through
// the configured generation backend, and hard-validates whatever comes
// back. Schema mismatches are retried within the attempt budget; every
// other failure propagates to the caller. The baseline is never
// silently substituted for a failed model pass.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"diff-review-planner/internal/config"
	"diff-review-planner/internal/domain"
	"diff-review-planner/internal/grouper"
	"diff-review-planner/internal/llm"
	"diff-review-planner/internal/metrics"
	"diff-review-planner/internal/types"
	"diff-review-planner/internal/validator"

	"github.com/tidwall/gjson"
)

// PlanAgent raises a heuristic baseline plan through a generation
// backend.
type PlanAgent struct {
	generator llm.Generator
	heuristic *grouper.PlanBuilder
	cfg       config.PlannerConfig
}

// NewPlanAgent creates an adapter around the given generation backend.
func NewPlanAgent(generator llm.Generator, cfg config.PlannerConfig) (*PlanAgent, error) {
	if generator == nil {
		return nil, fmt.Errorf("generator is nil")
	}

	if cfg.MaxModelAttempts <= 0 {
		cfg.MaxModelAttempts = config.DefaultMaxModelAttempts
	}
	if cfg.PromptMaxFiles <= 0 {
		cfg.PromptMaxFiles = config.DefaultPromptMaxFiles
	}
	if cfg.PromptMaxHunks <= 0 {
		cfg.PromptMaxHunks = config.DefaultPromptMaxHunks
	}

	return &PlanAgent{
		generator: generator,
		heuristic: grouper.NewPlanBuilder(),
		cfg:       cfg,
	}, nil
}

// BuildPlan produces a model-raised plan for index. meta may be nil.
// baseline may be nil, in which case the heuristic engine computes one.
// An empty index returns the baseline directly, without a model call.
func (a *PlanAgent) BuildPlan(ctx context.Context, index *domain.DiffIndex, meta *domain.PRMetadata, baseline *domain.ReviewPlan) (*domain.ReviewPlan, error) {
	title, description := "", ""
	if meta != nil {
		title, description = meta.Title, meta.Description
	}

	if baseline == nil {
		var err error
		baseline, err = a.heuristic.BuildPlan(index, title, description)
		if err != nil {
			return nil, fmt.Errorf("baseline plan: %w", err)
		}
	}

	if len(index.Files) == 0 {
		slog.Debug("empty index, returning baseline without model call")
		return baseline, nil
	}

	userPrompt := buildPlanPrompt(index, meta, baseline, a.cfg)

	var lastSchemaErr error
	for attempt := 1; attempt <= a.cfg.MaxModelAttempts; attempt++ {
		raw, err := a.generator.GenerateJSON(ctx, planSystemPrompt, userPrompt)
		if err != nil {
			if types.IsSchemaMismatch(err) {
				metrics.ModelAttempts.WithLabelValues("schema_mismatch").Inc()
				lastSchemaErr = err
				slog.Warn("model produced no usable object", "attempt", attempt, "error", err)
				continue
			}
			metrics.ModelAttempts.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("generate plan: %w", err)
		}

		plan, err := a.decodePlan(raw, index)
		if err != nil {
			metrics.ModelAttempts.WithLabelValues("schema_mismatch").Inc()
			lastSchemaErr = err
			slog.Warn("model plan rejected", "attempt", attempt, "error", err)
			continue
		}

		metrics.ModelAttempts.WithLabelValues("success").Inc()
		slog.Info("model plan accepted",
			"attempt", attempt,
			"steps", len(plan.Steps),
			"backend", a.generator.Name())
		return plan, nil
	}

	return nil, fmt.Errorf("model plan rejected after %d attempts: %w", a.cfg.MaxModelAttempts, lastSchemaErr)
}

// decodePlan cleans, unwraps, unmarshals and validates raw model
// output. Every failure in here is a schema mismatch.
func (a *PlanAgent) decodePlan(raw string, index *domain.DiffIndex) (*domain.ReviewPlan, error) {
	cleaned := types.CleanJSONFromMarkdown(raw)

	if !gjson.Valid(cleaned) {
		extracted := types.ExtractJSONObject(cleaned)
		if extracted == "" || !gjson.Valid(extracted) {
			return nil, types.NewSchemaMismatchError(fmt.Errorf("invalid JSON in model output"))
		}
		cleaned = extracted
	}

	// Some models wrap the object in a top-level "plan" key.
	if wrapped := gjson.Get(cleaned, "plan"); wrapped.IsObject() {
		cleaned = wrapped.Raw
	}

	var plan domain.ReviewPlan
	if err := json.Unmarshal([]byte(cleaned), &plan); err != nil {
		return nil, types.NewSchemaMismatchError(fmt.Errorf("unmarshal plan: %w", err))
	}

	if err := validator.ValidatePlan(&plan, index); err != nil {
		return nil, types.NewSchemaMismatchError(err)
	}
	return &plan, nil
}
