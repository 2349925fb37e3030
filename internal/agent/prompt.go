package agent

import (
	"fmt"
	"strings"

	"diff-review-planner/internal/config"
	"diff-review-planner/internal/domain"
)

// planSystemPrompt frames the model as a review planner.
const planSystemPrompt = `You are a senior code reviewer planning a pull request walkthrough. ` +
	`You receive a machine-generated diff summary and a baseline plan. ` +
	`Respond with a single JSON object and nothing else.`

// planInstructionBlock pins the output contract and is appended to
// every prompt.
const planInstructionBlock = `Produce a review plan as a JSON object with this exact shape:
{
  "version": 1,
  "pr_overview": {"title": "...", "summary": "..."},
  "steps": [
    {
      "step_id": "step-1",
      "title": "...",
      "description": "...",
      "objective": "...",
      "priority": "high",
      "diff_refs": [{"file_id": "...", "hunk_ids": ["..."]}],
      "notes_suggested": ["..."],
      "badges": ["..."]
    }
  ],
  "end_state": {"acceptance_checks": ["..."], "risk_calls": ["..."]}
}

Rules:
- Produce between 2 and 6 steps ordered for a sequential read of the change.
- step_id values are "step-1", "step-2", ... with no gaps.
- priority is one of "high", "medium", "low".
- Reference only file ids and hunk ids from the diff summary above. Never invent identifiers.
- Every step carries at least one diff ref with at least one hunk id.
- acceptance_checks and risk_calls must not be empty.
- Improve on the baseline: sharper grouping, concrete objectives, real risks.`

// buildPlanPrompt renders the bounded user prompt: PR metadata, a
// capped diff summary, the baseline as compact lines, and the
// instruction block.
func buildPlanPrompt(index *domain.DiffIndex, meta *domain.PRMetadata, baseline *domain.ReviewPlan, cfg config.PlannerConfig) string {
	var sb strings.Builder

	if meta != nil && strings.TrimSpace(meta.Title) != "" {
		fmt.Fprintf(&sb, "PR title: %s\n", meta.Title)
	}
	if meta != nil && strings.TrimSpace(meta.Description) != "" {
		fmt.Fprintf(&sb, "PR description:\n%s\n", meta.Description)
	}

	fmt.Fprintf(&sb, "\nDiff summary (%d files, %d hunks):\n", len(index.Files), index.TotalHunks())
	shown := len(index.Files)
	if cfg.PromptMaxFiles > 0 && shown > cfg.PromptMaxFiles {
		shown = cfg.PromptMaxFiles
	}
	for i := 0; i < shown; i++ {
		f := &index.Files[i]
		fmt.Fprintf(&sb, "- %s [%s] hunks: %s\n", f.FileID, fileTag(f), hunkList(f, cfg.PromptMaxHunks))
	}
	if omitted := len(index.Files) - shown; omitted > 0 {
		fmt.Fprintf(&sb, config.MarkerMoreFilesOmitted+"\n", omitted)
	}

	sb.WriteString("\nBaseline plan:\n")
	for _, step := range baseline.Steps {
		fmt.Fprintf(&sb, "%s %s ->", step.StepID, step.Title)
		for _, ref := range step.DiffRefs {
			fmt.Fprintf(&sb, " %s[%d hunks]", ref.FileID, len(ref.HunkIDs))
		}
		sb.WriteByte('\n')
	}

	sb.WriteByte('\n')
	sb.WriteString(planInstructionBlock)
	return sb.String()
}

// fileTag renders the status and, when known, the language of a file.
func fileTag(f *domain.DiffFileEntry) string {
	if f.Language != "" {
		return fmt.Sprintf("%s, %s", f.Status, f.Language)
	}
	return string(f.Status)
}

// hunkList renders a file's hunk ids, collapsed past the configured
// cap.
func hunkList(f *domain.DiffFileEntry, maxHunks int) string {
	ids := f.HunkIDs()
	if maxHunks > 0 && len(ids) > maxHunks {
		return strings.Join(ids[:maxHunks], " ") +
			fmt.Sprintf(config.MarkerMoreHunksOmitted, len(ids)-maxHunks)
	}
	return strings.Join(ids, " ")
}
