// Package validator enforces the structural invariants of DiffIndex and
// ReviewPlan artifacts. A validation failure on an artifact produced by
// this service's own engines indicates a programming error, not bad
// input.
package validator

import (
	"fmt"
	"strings"

	"diff-review-planner/internal/domain"
)

// RefSet is the lookup of valid file and hunk identifiers derived from a
// DiffIndex. Plans are checked against it so every reference they carry
// resolves into the source index.
type RefSet struct {
	hunks map[string]map[string]bool // file_id -> hunk_id set
}

// NewRefSet builds the reference lookup for an index.
func NewRefSet(index *domain.DiffIndex) *RefSet {
	rs := &RefSet{hunks: make(map[string]map[string]bool, len(index.Files))}
	for i := range index.Files {
		f := &index.Files[i]
		set := make(map[string]bool, len(f.Hunks))
		for _, h := range f.Hunks {
			set[h.HunkID] = true
		}
		rs.hunks[f.FileID] = set
	}
	return rs
}

// HasFile reports whether the index contains the file.
func (rs *RefSet) HasFile(fileID string) bool {
	_, ok := rs.hunks[fileID]
	return ok
}

// HasHunk reports whether the index contains the hunk under the file.
func (rs *RefSet) HasHunk(fileID, hunkID string) bool {
	return rs.hunks[fileID][hunkID]
}

// ValidateIndex checks a DiffIndex against its invariants: version,
// non-empty file IDs, known statuses, non-empty hunk lists, sequential
// hunk IDs, and sane hunk fields.
func ValidateIndex(index *domain.DiffIndex) error {
	var errs []string

	if index.Version != domain.DiffIndexVersion {
		errs = append(errs, fmt.Sprintf("version is %d, want %d", index.Version, domain.DiffIndexVersion))
	}

	for i := range index.Files {
		f := &index.Files[i]
		if f.FileID == "" {
			errs = append(errs, fmt.Sprintf("files[%d]: empty file_id", i))
			continue
		}
		if !f.Status.Valid() {
			errs = append(errs, fmt.Sprintf("files[%d] %s: unknown status %q", i, f.FileID, f.Status))
		}
		if len(f.Hunks) == 0 {
			errs = append(errs, fmt.Sprintf("files[%d] %s: no hunks", i, f.FileID))
		}
		for j, h := range f.Hunks {
			if want := domain.HunkID(f.FileID, j); h.HunkID != want {
				errs = append(errs, fmt.Sprintf("files[%d] %s: hunk %d has id %q, want %q", i, f.FileID, j, h.HunkID, want))
			}
			if h.OldStart < 0 || h.NewStart < 0 {
				errs = append(errs, fmt.Sprintf("files[%d] %s: hunk %d has negative start", i, f.FileID, j))
			}
			if h.Header == "" {
				errs = append(errs, fmt.Sprintf("files[%d] %s: hunk %d has empty header", i, f.FileID, j))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("index invalid: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ValidatePlan checks a ReviewPlan against its invariants and against the
// source index: version, step count bounds, sequential step IDs, known
// priorities, non-empty overview and end state, and full reference
// integrity. A plan may have zero steps only when the index has zero
// files.
func ValidatePlan(plan *domain.ReviewPlan, index *domain.DiffIndex) error {
	var errs []string
	refs := NewRefSet(index)

	if plan.Version != domain.ReviewPlanVersion {
		errs = append(errs, fmt.Sprintf("version is %d, want %d", plan.Version, domain.ReviewPlanVersion))
	}

	if plan.PROverview.Title == "" {
		errs = append(errs, "overview title is empty")
	}
	if plan.PROverview.Summary == "" {
		errs = append(errs, "overview summary is empty")
	}

	if len(plan.Steps) > domain.MaxPlanSteps {
		errs = append(errs, fmt.Sprintf("%d steps exceed the maximum of %d", len(plan.Steps), domain.MaxPlanSteps))
	}
	if len(index.Files) == 0 && len(plan.Steps) != 0 {
		errs = append(errs, fmt.Sprintf("%d steps for an empty index, want 0", len(plan.Steps)))
	}
	if len(index.Files) > 0 && len(plan.Steps) == 0 {
		errs = append(errs, "no steps for a non-empty index")
	}

	for i := range plan.Steps {
		s := &plan.Steps[i]
		if want := domain.StepID(i + 1); s.StepID != want {
			errs = append(errs, fmt.Sprintf("steps[%d] has id %q, want %q", i, s.StepID, want))
		}
		if s.Title == "" {
			errs = append(errs, fmt.Sprintf("steps[%d]: empty title", i))
		}
		if s.Objective == "" {
			errs = append(errs, fmt.Sprintf("steps[%d]: empty objective", i))
		}
		if !s.Priority.Valid() {
			errs = append(errs, fmt.Sprintf("steps[%d]: unknown priority %q", i, s.Priority))
		}
		if len(s.DiffRefs) == 0 {
			errs = append(errs, fmt.Sprintf("steps[%d]: no diff refs", i))
		}
		for j, ref := range s.DiffRefs {
			if !refs.HasFile(ref.FileID) {
				errs = append(errs, fmt.Sprintf("steps[%d] refs[%d]: file %q not in index", i, j, ref.FileID))
				continue
			}
			if len(ref.HunkIDs) == 0 {
				errs = append(errs, fmt.Sprintf("steps[%d] refs[%d] %s: no hunk ids", i, j, ref.FileID))
			}
			for _, hid := range ref.HunkIDs {
				if !refs.HasHunk(ref.FileID, hid) {
					errs = append(errs, fmt.Sprintf("steps[%d] refs[%d] %s: hunk %q not in index", i, j, ref.FileID, hid))
				}
			}
		}
	}

	if len(plan.EndState.AcceptanceChecks) == 0 {
		errs = append(errs, "no acceptance checks")
	}
	if len(plan.EndState.RiskCalls) == 0 {
		errs = append(errs, "no risk calls")
	}

	if len(errs) > 0 {
		return fmt.Errorf("plan invalid: %s", strings.Join(errs, "; "))
	}
	return nil
}
