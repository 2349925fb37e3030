//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"diff-review-planner/internal/api"
	"diff-review-planner/internal/config"
	"diff-review-planner/internal/diffparse"
	"diff-review-planner/internal/domain"
	"diff-review-planner/internal/processor"
	"diff-review-planner/internal/validator"

	"github.com/joho/godotenv"
)

// prDiff is a five-file pull request crossing every group category:
// docs, tests, config and two feature areas.
const prDiff = `diff --git a/README.md b/README.md
index 3c5f8a1..9d2b4e7 100644
--- a/README.md
+++ b/README.md
@@ -12,6 +12,9 @@ ## Usage
 Run the server:
+
+See the token flow section before enabling auth.
+
diff --git a/cmd/server/main.go b/cmd/server/main.go
index 7e1a2b3..8f4c5d6 100644
--- a/cmd/server/main.go
+++ b/cmd/server/main.go
@@ -20,4 +20,9 @@ func main() {
 	srv := newServer(cfg)
+	srv.useAuth()
 	srv.run()
diff --git a/internal/auth/token.go b/internal/auth/token.go
new file mode 100644
index 0000000..a1b2c3d
--- /dev/null
+++ b/internal/auth/token.go
@@ -0,0 +1,14 @@
+package auth
+
+// Issue signs a token for the given subject.
+func Issue(subject string) (string, error) {
+	return sign(subject)
+}
diff --git a/internal/auth/token_test.go b/internal/auth/token_test.go
new file mode 100644
index 0000000..d4e5f6a
--- /dev/null
+++ b/internal/auth/token_test.go
@@ -0,0 +1,9 @@
+package auth
+
+func TestIssue(t *testing.T) {
+	t.Skip()
+}
diff --git a/config/app.yaml b/config/app.yaml
index 1f2e3d4..5a6b7c8 100644
--- a/config/app.yaml
+++ b/config/app.yaml
@@ -3,3 +3,5 @@ server:
 port: 8080
+auth:
+  enabled: true
`

// TestE2E_Main exercises the full HTTP stack with the heuristic
// strategy: parse, plan, batch and readiness, all against a running
// server. No external services are needed.
func TestE2E_Main(t *testing.T) {
	// 1. Load Environment & Config (optional for the heuristic path)
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			t.Logf("Warning: .env not found in current dir or root: %v", err)
		}
	}
	cfg := config.LoadConfig()

	// 2. Setup Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)

	// 3. Full server, heuristic strategy only
	proc := processor.NewPlanProcessor(nil, cfg.Planner)
	ts := httptest.NewServer(api.New(cfg, proc).Handler())
	defer ts.Close()

	// 4. Parse the diff
	body, err := json.Marshal(map[string]string{"diff": prDiff})
	if err != nil {
		t.Fatalf("marshal parse request: %v", err)
	}
	resp, err := http.Post(ts.URL+"/api/parse", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /api/parse: %v", err)
	}
	var index domain.DiffIndex
	if err := json.NewDecoder(resp.Body).Decode(&index); err != nil {
		t.Fatalf("decode index: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("parse status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if len(index.Files) != 5 {
		t.Fatalf("parsed %d files, want 5", len(index.Files))
	}

	// 5. Build a plan with PR metadata
	body, err = json.Marshal(map[string]string{
		"diff":        prDiff,
		"title":       "Add token auth",
		"description": "Issues signed tokens and wires them into server startup.",
	})
	if err != nil {
		t.Fatalf("marshal plan request: %v", err)
	}
	resp, err = http.Post(ts.URL+"/api/plan", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /api/plan: %v", err)
	}
	var plan domain.ReviewPlan
	if err := json.NewDecoder(resp.Body).Decode(&plan); err != nil {
		t.Fatalf("decode plan: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("plan status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	// The served plan must satisfy the same contract enforced internally
	if err := validator.ValidatePlan(&plan, diffparse.Parse(prDiff)); err != nil {
		t.Errorf("served plan fails validation: %v", err)
	}
	if plan.PROverview.Title != "Add token auth" {
		t.Errorf("overview title = %q, want the PR title", plan.PROverview.Title)
	}

	wantTitles := []string{
		"Review documentation updates",
		"Review test coverage changes",
		"Review configuration changes",
		"Review Cmd changes",
		"Review Internal changes",
	}
	if len(plan.Steps) != len(wantTitles) {
		t.Fatalf("plan has %d steps, want %d", len(plan.Steps), len(wantTitles))
	}
	for i, want := range wantTitles {
		if plan.Steps[i].Title != want {
			t.Errorf("Steps[%d].Title = %q, want %q", i, plan.Steps[i].Title, want)
		}
	}

	// 6. Batch planning keeps request order
	batchBody, err := json.Marshal(map[string]any{
		"requests": []map[string]string{{"diff": prDiff, "title": "first"}, {"diff": ""}},
	})
	if err != nil {
		t.Fatalf("marshal batch request: %v", err)
	}
	resp, err = http.Post(ts.URL+"/api/plan/batch", "application/json", bytes.NewReader(batchBody))
	if err != nil {
		t.Fatalf("POST /api/plan/batch: %v", err)
	}
	var batch struct {
		Results []processor.BatchResult `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&batch); err != nil {
		t.Fatalf("decode batch response: %v", err)
	}
	resp.Body.Close()
	if len(batch.Results) != 2 {
		t.Fatalf("batch returned %d results, want 2", len(batch.Results))
	}
	if got := batch.Results[0].Plan.PROverview.Title; got != "first" {
		t.Errorf("Results[0] title = %q, want %q", got, "first")
	}

	// 7. Readiness reports the disabled model
	resp, err = http.Get(ts.URL + "/health/ready")
	if err != nil {
		t.Fatalf("GET /health/ready: %v", err)
	}
	var ready struct {
		ModelEnabled bool `json:"model_enabled"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ready); err != nil {
		t.Fatalf("decode ready response: %v", err)
	}
	resp.Body.Close()
	if ready.ModelEnabled {
		t.Error("readiness reports model enabled without a backend")
	}

	// 8. Print Report
	fmt.Println("\n=== E2E Plan Summary ===")
	for _, step := range plan.Steps {
		fmt.Printf("%s [%s] %s (%d files)\n", step.StepID, step.Priority, step.Title, len(step.DiffRefs))
	}
}
