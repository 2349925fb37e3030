// Package processor orchestrates parsing, validation and the two
// planning strategies behind the HTTP layer.
package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"diff-review-planner/internal/config"
	"diff-review-planner/internal/diffparse"
	"diff-review-planner/internal/domain"
	"diff-review-planner/internal/grouper"
	"diff-review-planner/internal/metrics"
	"diff-review-planner/internal/types"
	"diff-review-planner/internal/validator"

	"golang.org/x/sync/errgroup"
)

// ErrModelDisabled is returned when no generation backend is
// configured.
var ErrModelDisabled = errors.New("model planning is not configured")

// ModelPlanner is the model-assisted strategy seam.
type ModelPlanner interface {
	BuildPlan(ctx context.Context, index *domain.DiffIndex, meta *domain.PRMetadata, baseline *domain.ReviewPlan) (*domain.ReviewPlan, error)
}

// PlanRequest is one unit of planning work.
type PlanRequest struct {
	Diff        string `json:"diff"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// BatchResult carries the outcome of one batch item. Exactly one of
// Plan and Error is set.
type BatchResult struct {
	Plan  *domain.ReviewPlan `json:"plan,omitempty"`
	Error string             `json:"error,omitempty"`
}

// PlanProcessor wires the parser, the heuristic engine and the
// optional model adapter together.
type PlanProcessor struct {
	heuristic *grouper.PlanBuilder
	model     ModelPlanner // nil when no backend is configured
	cfg       config.PlannerConfig
}

// NewPlanProcessor creates a processor. model may be nil, which
// disables the model strategy while the heuristic endpoints keep
// working.
func NewPlanProcessor(model ModelPlanner, cfg config.PlannerConfig) *PlanProcessor {
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = config.DefaultBatchConcurrency
	}
	if cfg.BatchMaxRequests <= 0 {
		cfg.BatchMaxRequests = config.DefaultBatchMaxRequests
	}
	return &PlanProcessor{
		heuristic: grouper.NewPlanBuilder(),
		model:     model,
		cfg:       cfg,
	}
}

// ModelEnabled reports whether the model strategy is available.
func (p *PlanProcessor) ModelEnabled() bool {
	return p.model != nil
}

// ParseDiff parses raw diff text into an index and self-checks the
// result. A failed self-check means a parser bug, not bad input; the
// parser itself accepts anything.
func (p *PlanProcessor) ParseDiff(diff string) (*domain.DiffIndex, error) {
	index := diffparse.Parse(diff)
	if err := validator.ValidateIndex(index); err != nil {
		return nil, types.NewEngineViolationError(fmt.Errorf("parser produced an invalid index: %w", err))
	}

	metrics.ParsedFiles.Observe(float64(len(index.Files)))
	slog.Debug("diff parsed", "files", len(index.Files), "hunks", index.TotalHunks())
	return index, nil
}

// HeuristicPlan parses the diff and produces the deterministic plan.
func (p *PlanProcessor) HeuristicPlan(req *PlanRequest) (*domain.ReviewPlan, error) {
	start := time.Now()

	index, err := p.ParseDiff(req.Diff)
	if err != nil {
		metrics.PlansTotal.WithLabelValues("heuristic", "error").Inc()
		return nil, err
	}

	plan, err := p.heuristic.BuildPlan(index, req.Title, req.Description)
	if err != nil {
		metrics.PlansTotal.WithLabelValues("heuristic", "error").Inc()
		return nil, err
	}

	metrics.PlansTotal.WithLabelValues("heuristic", "success").Inc()
	metrics.PlanDuration.WithLabelValues("heuristic").Observe(time.Since(start).Seconds())
	return plan, nil
}

// ModelPlan parses the diff and raises the heuristic baseline through
// the model adapter.
func (p *PlanProcessor) ModelPlan(ctx context.Context, req *PlanRequest) (*domain.ReviewPlan, error) {
	if p.model == nil {
		return nil, ErrModelDisabled
	}
	start := time.Now()

	index, err := p.ParseDiff(req.Diff)
	if err != nil {
		metrics.PlansTotal.WithLabelValues("model", "error").Inc()
		return nil, err
	}

	baseline, err := p.heuristic.BuildPlan(index, req.Title, req.Description)
	if err != nil {
		metrics.PlansTotal.WithLabelValues("model", "error").Inc()
		return nil, err
	}

	meta := &domain.PRMetadata{Title: req.Title, Description: req.Description}
	plan, err := p.model.BuildPlan(ctx, index, meta, baseline)
	if err != nil {
		metrics.PlansTotal.WithLabelValues("model", "error").Inc()
		return nil, fmt.Errorf("model plan: %w", err)
	}

	metrics.PlansTotal.WithLabelValues("model", "success").Inc()
	metrics.PlanDuration.WithLabelValues("model").Observe(time.Since(start).Seconds())
	return plan, nil
}

// PlanBatch plans every request concurrently and returns one result
// per request, in input order. Item failures land in their result
// slot; the error return covers batch-level problems only.
func (p *PlanProcessor) PlanBatch(ctx context.Context, reqs []PlanRequest, useModel bool) ([]BatchResult, error) {
	if len(reqs) == 0 {
		return nil, fmt.Errorf("empty batch")
	}
	if len(reqs) > p.cfg.BatchMaxRequests {
		return nil, fmt.Errorf("batch of %d exceeds the limit of %d", len(reqs), p.cfg.BatchMaxRequests)
	}
	if useModel && p.model == nil {
		return nil, ErrModelDisabled
	}

	metrics.BatchItems.Observe(float64(len(reqs)))
	slog.Info("planning batch", "items", len(reqs), "model", useModel)

	results := make([]BatchResult, len(reqs))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.BatchConcurrency)

	for i := range reqs {
		i := i
		g.Go(func() error {
			var plan *domain.ReviewPlan
			var err error
			if useModel {
				plan, err = p.ModelPlan(gCtx, &reqs[i])
			} else {
				plan, err = p.HeuristicPlan(&reqs[i])
			}
			if err != nil {
				slog.Error("batch item failed", "item", i, "error", err)
				results[i] = BatchResult{Error: err.Error()}
				// Item failures do not cancel the rest of the batch.
				return nil
			}
			results[i] = BatchResult{Plan: plan}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
