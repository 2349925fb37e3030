package processor

import (
	"context"
	"errors"
	"testing"

	"diff-review-planner/internal/config"
	"diff-review-planner/internal/domain"
)

const sampleDiff = `diff --git a/src/app.ts b/src/app.ts
index 83db48f..bf269f4 100644
--- a/src/app.ts
+++ b/src/app.ts
@@ -10,6 +10,8 @@ export class App {
 context
-old line
+new line
+another line
diff --git a/docs/guide.md b/docs/guide.md
new file mode 100644
index 0000000..e69de29
--- /dev/null
+++ b/docs/guide.md
@@ -0,0 +1,3 @@
+# Guide
+
+Text
`

// fakeModelPlanner records its inputs and plays back a canned result.
type fakeModelPlanner struct {
	plan         *domain.ReviewPlan
	err          error
	calls        int
	lastMeta     *domain.PRMetadata
	lastBaseline *domain.ReviewPlan
}

func (f *fakeModelPlanner) BuildPlan(_ context.Context, _ *domain.DiffIndex, meta *domain.PRMetadata, baseline *domain.ReviewPlan) (*domain.ReviewPlan, error) {
	f.calls++
	f.lastMeta = meta
	f.lastBaseline = baseline
	if f.err != nil {
		return nil, f.err
	}
	if f.plan != nil {
		return f.plan, nil
	}
	return baseline, nil
}

func TestParseDiff(t *testing.T) {
	p := NewPlanProcessor(nil, config.PlannerConfig{})

	index, err := p.ParseDiff(sampleDiff)
	if err != nil {
		t.Fatalf("ParseDiff() error = %v", err)
	}
	if index.Version != domain.DiffIndexVersion {
		t.Errorf("Version = %d, want %d", index.Version, domain.DiffIndexVersion)
	}
	if len(index.Files) != 2 {
		t.Fatalf("len(Files) = %d, want 2", len(index.Files))
	}
	if index.Files[0].FileID != "src/app.ts" || index.Files[0].Status != domain.StatusModified {
		t.Errorf("Files[0] = %+v, want modified src/app.ts", index.Files[0])
	}
	if index.Files[1].FileID != "docs/guide.md" || index.Files[1].Status != domain.StatusAdded {
		t.Errorf("Files[1] = %+v, want added docs/guide.md", index.Files[1])
	}
}

func TestHeuristicPlan(t *testing.T) {
	p := NewPlanProcessor(nil, config.PlannerConfig{})

	plan, err := p.HeuristicPlan(&PlanRequest{Diff: sampleDiff, Title: "Add guide"})
	if err != nil {
		t.Fatalf("HeuristicPlan() error = %v", err)
	}
	if len(plan.Steps) != 2 {
		t.Fatalf("len(Steps) = %d, want 2", len(plan.Steps))
	}
	if plan.Steps[0].Title != "Review documentation updates" {
		t.Errorf("Steps[0].Title = %q, want docs step first", plan.Steps[0].Title)
	}
	if plan.Steps[1].DiffRefs[0].FileID != "src/app.ts" {
		t.Errorf("Steps[1] references %q, want src/app.ts", plan.Steps[1].DiffRefs[0].FileID)
	}
	if plan.PROverview.Title != "Add guide" {
		t.Errorf("PROverview.Title = %q, want request title", plan.PROverview.Title)
	}
}

func TestHeuristicPlan_EmptyDiff(t *testing.T) {
	p := NewPlanProcessor(nil, config.PlannerConfig{})

	plan, err := p.HeuristicPlan(&PlanRequest{Diff: ""})
	if err != nil {
		t.Fatalf("HeuristicPlan() error = %v", err)
	}
	if len(plan.Steps) != 0 {
		t.Errorf("len(Steps) = %d, want 0 for empty diff", len(plan.Steps))
	}
	if plan.PROverview.Title != "No diff content detected" {
		t.Errorf("Title = %q, want canonical empty title", plan.PROverview.Title)
	}
}

func TestModelPlan_Disabled(t *testing.T) {
	p := NewPlanProcessor(nil, config.PlannerConfig{})

	if p.ModelEnabled() {
		t.Error("ModelEnabled() = true, want false")
	}
	_, err := p.ModelPlan(context.Background(), &PlanRequest{Diff: sampleDiff})
	if !errors.Is(err, ErrModelDisabled) {
		t.Errorf("ModelPlan() error = %v, want ErrModelDisabled", err)
	}
}

func TestModelPlan_PassesBaselineAndMeta(t *testing.T) {
	fake := &fakeModelPlanner{}
	p := NewPlanProcessor(fake, config.PlannerConfig{})

	plan, err := p.ModelPlan(context.Background(), &PlanRequest{
		Diff:        sampleDiff,
		Title:       "Add guide",
		Description: "Adds the user guide.",
	})
	if err != nil {
		t.Fatalf("ModelPlan() error = %v", err)
	}

	if fake.calls != 1 {
		t.Errorf("model calls = %d, want 1", fake.calls)
	}
	if fake.lastMeta == nil || fake.lastMeta.Title != "Add guide" {
		t.Errorf("meta = %+v, want request title", fake.lastMeta)
	}
	if fake.lastBaseline == nil || len(fake.lastBaseline.Steps) != 2 {
		t.Fatalf("baseline = %+v, want a two-step heuristic plan", fake.lastBaseline)
	}
	if plan != fake.lastBaseline {
		t.Error("ModelPlan() did not return the adapter's plan")
	}
}

func TestModelPlan_Error(t *testing.T) {
	fake := &fakeModelPlanner{err: errors.New("backend down")}
	p := NewPlanProcessor(fake, config.PlannerConfig{})

	_, err := p.ModelPlan(context.Background(), &PlanRequest{Diff: sampleDiff})
	if err == nil {
		t.Fatal("ModelPlan() error = nil, want backend error")
	}
}

func TestPlanBatch_OrderPreserved(t *testing.T) {
	p := NewPlanProcessor(nil, config.PlannerConfig{BatchConcurrency: 2})

	reqs := []PlanRequest{
		{Diff: sampleDiff, Title: "first"},
		{Diff: sampleDiff, Title: "second"},
		{Diff: sampleDiff, Title: "third"},
	}
	results, err := p.PlanBatch(context.Background(), reqs, false)
	if err != nil {
		t.Fatalf("PlanBatch() error = %v", err)
	}
	if len(results) != len(reqs) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(reqs))
	}
	for i, want := range []string{"first", "second", "third"} {
		if results[i].Error != "" {
			t.Errorf("results[%d].Error = %q, want success", i, results[i].Error)
			continue
		}
		if got := results[i].Plan.PROverview.Title; got != want {
			t.Errorf("results[%d] title = %q, want %q", i, got, want)
		}
	}
}

func TestPlanBatch_SizeLimit(t *testing.T) {
	p := NewPlanProcessor(nil, config.PlannerConfig{BatchMaxRequests: 2})

	reqs := []PlanRequest{{Diff: ""}, {Diff: ""}, {Diff: ""}}
	if _, err := p.PlanBatch(context.Background(), reqs, false); err == nil {
		t.Error("PlanBatch() error = nil, want size limit error")
	}

	if _, err := p.PlanBatch(context.Background(), nil, false); err == nil {
		t.Error("PlanBatch() with no items should fail")
	}
}

func TestPlanBatch_ModelDisabled(t *testing.T) {
	p := NewPlanProcessor(nil, config.PlannerConfig{})

	_, err := p.PlanBatch(context.Background(), []PlanRequest{{Diff: sampleDiff}}, true)
	if !errors.Is(err, ErrModelDisabled) {
		t.Errorf("PlanBatch() error = %v, want ErrModelDisabled", err)
	}
}

func TestPlanBatch_ItemFailuresIsolated(t *testing.T) {
	fake := &fakeModelPlanner{err: errors.New("backend down")}
	p := NewPlanProcessor(fake, config.PlannerConfig{})

	reqs := []PlanRequest{{Diff: sampleDiff}, {Diff: sampleDiff}}
	results, err := p.PlanBatch(context.Background(), reqs, true)
	if err != nil {
		t.Fatalf("PlanBatch() error = %v, want item-level failures only", err)
	}
	for i, res := range results {
		if res.Error == "" {
			t.Errorf("results[%d].Error empty, want backend failure recorded", i)
		}
		if res.Plan != nil {
			t.Errorf("results[%d].Plan = %+v, want nil on failure", i, res.Plan)
		}
	}
}
