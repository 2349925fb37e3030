// Package grouper implements the deterministic heuristic planning
// engine. It partitions the files of a diff index into review groups,
// caps the group count at the step budget, and renders each group into
// a fixed-template review step. The same index and metadata always
// produce a byte-identical plan.
package grouper

import (
	"fmt"
	"sort"

	"diff-review-planner/internal/domain"
	"diff-review-planner/internal/types"
	"diff-review-planner/internal/validator"
)

// PlanBuilder synthesizes review plans from diff indexes without any
// model involvement.
type PlanBuilder struct{}

// NewPlanBuilder creates a new heuristic plan builder.
func NewPlanBuilder() *PlanBuilder {
	return &PlanBuilder{}
}

// groupContext accumulates the files of one review group.
type groupContext struct {
	key      string
	category category
	segment  string // top path segment, feature groups only
	files    []domain.DiffFileEntry
}

// hunkCount is the group weight used when capping.
func (g *groupContext) hunkCount() int {
	n := 0
	for i := range g.files {
		n += len(g.files[i].Hunks)
	}
	return n
}

// BuildPlan produces the heuristic plan for index. An empty index
// yields the canonical empty plan. The returned plan is validated
// against the index before it is handed back; a validation failure
// here is a bug in the engine itself and is returned as an error
// rather than papered over.
func (b *PlanBuilder) BuildPlan(index *domain.DiffIndex, prTitle, prDescription string) (*domain.ReviewPlan, error) {
	var plan *domain.ReviewPlan
	if len(index.Files) == 0 {
		plan = emptyPlan()
	} else {
		groups := groupFiles(index)
		groups = capGroups(groups)
		sortGroups(groups)

		steps := make([]domain.ReviewStep, 0, len(groups))
		for _, g := range groups {
			steps = append(steps, synthesizeStep(g))
		}
		for i := range steps {
			steps[i].StepID = domain.StepID(i + 1)
		}

		plan = &domain.ReviewPlan{
			Version:    domain.ReviewPlanVersion,
			PROverview: buildOverview(index, prTitle, groups),
			Steps:      steps,
			EndState:   buildEndState(groups),
		}
	}

	if err := validator.ValidatePlan(plan, index); err != nil {
		return nil, types.NewEngineViolationError(fmt.Errorf("heuristic plan failed self-validation: %w", err))
	}
	return plan, nil
}

// groupFiles partitions index files into groups, preserving first-seen
// group order and first-seen file order within each group.
func groupFiles(index *domain.DiffIndex) []*groupContext {
	var groups []*groupContext
	byKey := make(map[string]*groupContext)

	for i := range index.Files {
		f := index.Files[i]
		cat, key := classify(&f)
		g, ok := byKey[key]
		if !ok {
			g = &groupContext{key: key, category: cat}
			if cat == categoryFeature {
				g.segment = topSegment(f.FileID)
			}
			byKey[key] = g
			groups = append(groups, g)
		}
		g.files = append(g.files, f)
	}
	return groups
}

// capGroups enforces the step budget. With more groups than
// domain.MaxPlanSteps, the top five by rank survive and the rest merge
// into a single consolidated group, their files appended in rank order.
func capGroups(groups []*groupContext) []*groupContext {
	if len(groups) <= domain.MaxPlanSteps {
		return groups
	}

	ranked := make([]*groupContext, len(groups))
	copy(ranked, groups)
	sort.Slice(ranked, func(i, j int) bool { return rankBefore(ranked[i], ranked[j]) })

	keep := domain.MaxPlanSteps - 1
	misc := &groupContext{key: keyMisc, category: categoryMisc}
	for _, g := range ranked[keep:] {
		misc.files = append(misc.files, g.files...)
	}

	capped := make([]*groupContext, 0, domain.MaxPlanSteps)
	capped = append(capped, ranked[:keep]...)
	return append(capped, misc)
}

// sortGroups puts groups into final step order.
func sortGroups(groups []*groupContext) {
	sort.Slice(groups, func(i, j int) bool { return orderBefore(groups[i], groups[j]) })
}

// rankBefore is the capping rank: hunk count descending, then the final
// step order as tie-break.
func rankBefore(a, b *groupContext) bool {
	if ah, bh := a.hunkCount(), b.hunkCount(); ah != bh {
		return ah > bh
	}
	return orderBefore(a, b)
}

// orderBefore is the final step order: category rank ascending, then
// file count descending, then group key ascending. Keys are unique, so
// this is a total order.
func orderBefore(a, b *groupContext) bool {
	if a.category != b.category {
		return a.category < b.category
	}
	if la, lb := len(a.files), len(b.files); la != lb {
		return la > lb
	}
	return a.key < b.key
}
