package domain

import "fmt"

// Version constants for the serialized boundary artifacts.
const (
	DiffIndexVersion  = 1
	ReviewPlanVersion = 1
)

// MaxPlanSteps bounds the number of steps in any review plan.
const MaxPlanSteps = 6

// FileStatus describes how a file changed within a diff.
type FileStatus string

const (
	StatusAdded    FileStatus = "added"
	StatusDeleted  FileStatus = "deleted"
	StatusModified FileStatus = "modified"
	StatusRenamed  FileStatus = "renamed"
	StatusCopied   FileStatus = "copied"
)

// Valid reports whether s is one of the recognized statuses.
func (s FileStatus) Valid() bool {
	switch s {
	case StatusAdded, StatusDeleted, StatusModified, StatusRenamed, StatusCopied:
		return true
	}
	return false
}

// Priority ranks a review step.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Valid reports whether p is one of the recognized priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// DiffHunk is a single change region within a file. The hunk ID is
// "<file_id>#h<n>" with n counted from zero in encounter order, and stays
// stable for a given input diff.
type DiffHunk struct {
	HunkID   string `json:"hunk_id"`
	OldStart int    `json:"old_start"`
	NewStart int    `json:"new_start"`
	// Header is the verbatim "@@ ... @@" line from the diff.
	Header string `json:"header"`
}

// DiffFileEntry is one changed file in a DiffIndex. FileID is the current
// path, or the pre-delete path for deletions. Language is the lowercase
// extension of the final path segment and is omitted when the segment has
// no usable extension. Binary files and files without hunks are never
// represented as entries.
type DiffFileEntry struct {
	FileID   string     `json:"file_id"`
	Status   FileStatus `json:"status"`
	Language string     `json:"language,omitempty"`
	Hunks    []DiffHunk `json:"hunks"`
}

// HunkIDs returns the IDs of the entry's hunks in order.
func (f *DiffFileEntry) HunkIDs() []string {
	ids := make([]string, len(f.Hunks))
	for i, h := range f.Hunks {
		ids[i] = h.HunkID
	}
	return ids
}

// DiffIndex is the normalized form of a unified diff: the canonical input
// to the planning engines. Files appear in first-appearance order.
type DiffIndex struct {
	Version int             `json:"diff_index_version"`
	Files   []DiffFileEntry `json:"files"`
}

// TotalHunks counts the hunks across all files.
func (idx *DiffIndex) TotalHunks() int {
	n := 0
	for i := range idx.Files {
		n += len(idx.Files[i].Hunks)
	}
	return n
}

// File returns the entry with the given ID, or nil.
func (idx *DiffIndex) File(id string) *DiffFileEntry {
	for i := range idx.Files {
		if idx.Files[i].FileID == id {
			return &idx.Files[i]
		}
	}
	return nil
}

// DiffRef ties a review step to a file and an ordered, non-empty list of
// its hunk IDs. Every referenced ID must exist in the source index.
type DiffRef struct {
	FileID  string   `json:"file_id"`
	HunkIDs []string `json:"hunk_ids"`
}

// ReviewStep is one ordered unit of a review plan. Step IDs are
// "step-<n>", 1-based, assigned after final ordering.
type ReviewStep struct {
	StepID         string    `json:"step_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Objective      string    `json:"objective"`
	Priority       Priority  `json:"priority"`
	DiffRefs       []DiffRef `json:"diff_refs"`
	NotesSuggested []string  `json:"notes_suggested"`
	Badges         []string  `json:"badges"`
}

// PROverview summarizes the change under review.
type PROverview struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// EndState lists what a reviewer should have confirmed after walking the
// plan, and the risks worth calling out. Both lists are always non-empty.
type EndState struct {
	AcceptanceChecks []string `json:"acceptance_checks"`
	RiskCalls        []string `json:"risk_calls"`
}

// ReviewPlan is the planning output: an overview, at most six ordered
// steps, and an end state. A plan has zero steps only when the source
// index had zero files.
type ReviewPlan struct {
	Version    int          `json:"version"`
	PROverview PROverview   `json:"pr_overview"`
	Steps      []ReviewStep `json:"steps"`
	EndState   EndState     `json:"end_state"`
}

// Step returns the step with the given ID, or nil.
func (p *ReviewPlan) Step(id string) *ReviewStep {
	for i := range p.Steps {
		if p.Steps[i].StepID == id {
			return &p.Steps[i]
		}
	}
	return nil
}

// PRMetadata carries the optional title and description of the change,
// supplied by the caller alongside the raw diff.
type PRMetadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// StepID formats the 1-based step identifier.
func StepID(n int) string { return fmt.Sprintf("step-%d", n) }

// HunkID formats the hunk identifier for the i-th hunk of a file, counted
// from zero.
func HunkID(fileID string, i int) string { return fmt.Sprintf("%s#h%d", fileID, i) }
