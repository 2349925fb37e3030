package grouper

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"diff-review-planner/internal/domain"
)

// Fixed text of the canonical plan for an empty index.
const (
	emptyPlanTitle      = "No diff content detected"
	emptyPlanSummary    = "The supplied diff contains no reviewable hunks."
	emptyPlanAcceptance = "Confirm the source diff was generated correctly and is not empty."
	emptyPlanRisk       = "An empty diff may indicate an upstream fetch or generation failure."
)

// categoryLabels is the overview vocabulary per category.
var categoryLabels = map[category]string{
	categoryDocs:    "documentation",
	categoryTests:   "tests",
	categoryConfig:  "configuration",
	categoryFeature: "code",
	categoryMisc:    "mixed",
}

// statusVerbs maps file statuses to the change verbs used in step
// descriptions.
var statusVerbs = map[domain.FileStatus]string{
	domain.StatusAdded:    "added",
	domain.StatusDeleted:  "removed",
	domain.StatusModified: "updated",
	domain.StatusRenamed:  "renamed",
	domain.StatusCopied:   "copied",
}

// acceptanceByCategory holds the end state check contributed by each
// category present in the plan.
var acceptanceByCategory = map[category]string{
	categoryDocs:    "Documentation reflects the shipped behavior.",
	categoryTests:   "Updated tests cover the behavior changed in this diff.",
	categoryConfig:  "Configuration changes are consistent across environments.",
	categoryFeature: "Core code changes are understood and free of regressions.",
	categoryMisc:    "Consolidated remainder files contain no surprises.",
}

// riskByCategory holds the risk call contributed by each category.
var riskByCategory = map[category]string{
	categoryDocs:    "Documentation may drift from the implementation it describes.",
	categoryTests:   "Weakened or deleted tests can hide regressions.",
	categoryConfig:  "A configuration change can alter runtime behavior in every environment.",
	categoryFeature: "Behavior changes in core code may break dependent callers.",
	categoryMisc:    "Files merged into the consolidated step get less scrutiny.",
}

// Fallback end state sentences when no category contributed any.
const (
	fallbackAcceptance = "The full diff has been read end to end."
	fallbackRisk       = "No category-specific risks were identified automatically."
)

// emptyPlan returns the canonical plan for an index without files.
func emptyPlan() *domain.ReviewPlan {
	return &domain.ReviewPlan{
		Version: domain.ReviewPlanVersion,
		PROverview: domain.PROverview{
			Title:   emptyPlanTitle,
			Summary: emptyPlanSummary,
		},
		Steps: []domain.ReviewStep{},
		EndState: domain.EndState{
			AcceptanceChecks: []string{emptyPlanAcceptance},
			RiskCalls:        []string{emptyPlanRisk},
		},
	}
}

// synthesizeStep renders one group into a review step. Step IDs are
// assigned by the caller after final ordering.
func synthesizeStep(g *groupContext) domain.ReviewStep {
	fileList := summarizeFileList(g.files)
	statuses := summarizeStatuses(g.files)

	var step domain.ReviewStep
	switch g.category {
	case categoryDocs:
		step = domain.ReviewStep{
			Title:          "Review documentation updates",
			Description:    fmt.Sprintf("Documentation changes in %s (%s).", fileList, statuses),
			Objective:      "Confirm the documentation matches the behavior this change ships.",
			Priority:       domain.PriorityLow,
			NotesSuggested: []string{"Watch for references to renamed or removed code."},
			Badges:         []string{"docs"},
		}
	case categoryTests:
		step = domain.ReviewStep{
			Title:          "Review test coverage changes",
			Description:    fmt.Sprintf("Test changes in %s (%s).", fileList, statuses),
			Objective:      "Check that the tests exercise the behavior changed elsewhere in this diff.",
			Priority:       domain.PriorityMedium,
			NotesSuggested: []string{"Look for assertions weakened to keep tests green."},
			Badges:         []string{"tests"},
		}
	case categoryConfig:
		step = domain.ReviewStep{
			Title:          "Review configuration changes",
			Description:    fmt.Sprintf("Configuration changes in %s (%s).", fileList, statuses),
			Objective:      "Verify configuration edits are intentional and consistent.",
			Priority:       domain.PriorityMedium,
			NotesSuggested: []string{"Check defaults and environment overrides stay in sync."},
			Badges:         []string{"config"},
		}
	case categoryFeature:
		label := humanizeSegment(g.segment)
		step = domain.ReviewStep{
			Title:          fmt.Sprintf("Review %s changes", label),
			Description:    fmt.Sprintf("Changes under %s in %s (%s).", g.segment, fileList, statuses),
			Objective:      fmt.Sprintf("Understand the %s changes and check them for regressions.", label),
			Priority:       domain.PriorityHigh,
			NotesSuggested: []string{"Trace the main code paths the hunks touch."},
			Badges:         []string{"feature"},
		}
	default:
		step = domain.ReviewStep{
			Title:          "Review consolidated updates",
			Description:    fmt.Sprintf("Remaining changes in %s (%s).", fileList, statuses),
			Objective:      "Skim the consolidated remainder for unexpected edits.",
			Priority:       domain.PriorityMedium,
			NotesSuggested: []string{"Flag anything here that deserves its own follow-up review."},
			Badges:         []string{"misc"},
		}
	}

	step.DiffRefs = buildRefs(g.files)
	return step
}

// buildRefs references every file of a group with its full hunk list, in
// accumulated file order.
func buildRefs(files []domain.DiffFileEntry) []domain.DiffRef {
	refs := make([]domain.DiffRef, len(files))
	for i := range files {
		refs[i] = domain.DiffRef{FileID: files[i].FileID, HunkIDs: files[i].HunkIDs()}
	}
	return refs
}

// summarizeFileList renders a group's files as "a", "a and b", or
// "a, b +N more".
func summarizeFileList(files []domain.DiffFileEntry) string {
	switch len(files) {
	case 1:
		return files[0].FileID
	case 2:
		return files[0].FileID + " and " + files[1].FileID
	default:
		return fmt.Sprintf("%s, %s +%d more", files[0].FileID, files[1].FileID, len(files)-2)
	}
}

// summarizeStatuses lists the unique change verbs of a group in first
// appearance order.
func summarizeStatuses(files []domain.DiffFileEntry) string {
	verbs := newOrderedSet()
	for i := range files {
		verbs.add(statusVerbs[files[i].Status])
	}
	return joinNatural(verbs.values())
}

// joinNatural joins items as "x", "x and y", or "x, y and z".
func joinNatural(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}

// humanizeSegment turns a top path segment into a readable label.
func humanizeSegment(seg string) string {
	switch seg {
	case rootSegment:
		return "root files"
	case "src":
		return "source code"
	}
	label := strings.NewReplacer("-", " ", "_", " ").Replace(seg)
	r, size := utf8.DecodeRuneInString(label)
	if size == 0 {
		return label
	}
	return strings.ToUpper(string(r)) + label[size:]
}

// buildOverview assembles the plan overview. A non-blank PR title is
// used verbatim.
func buildOverview(index *domain.DiffIndex, prTitle string, groups []*groupContext) domain.PROverview {
	title := prTitle
	if strings.TrimSpace(title) == "" {
		title = fmt.Sprintf("Heuristic walkthrough across %d files", len(index.Files))
	}

	labels := newOrderedSet()
	for _, g := range groups {
		labels.add(categoryLabels[g.category])
	}
	focus := "general diff inspection"
	if labels.len() > 0 {
		focus = joinNatural(labels.values()) + " updates"
	}

	summary := fmt.Sprintf(
		"This walkthrough covers %d files in %d steps, focused on %s. "+
			"Steps are ordered so supporting changes are read before the core code. "+
			"Work through them in sequence and use the end state to close out the review.",
		len(index.Files), len(groups), focus)

	return domain.PROverview{Title: title, Summary: summary}
}

// buildEndState accumulates one acceptance check and one risk call per
// category present, deduplicated in step order.
func buildEndState(groups []*groupContext) domain.EndState {
	checks := newOrderedSet()
	risks := newOrderedSet()
	for _, g := range groups {
		checks.add(acceptanceByCategory[g.category])
		risks.add(riskByCategory[g.category])
	}

	if checks.len() == 0 {
		checks.add(fallbackAcceptance)
	}
	if risks.len() == 0 {
		risks.add(fallbackRisk)
	}

	return domain.EndState{AcceptanceChecks: checks.values(), RiskCalls: risks.values()}
}

// orderedSet deduplicates strings while preserving insertion order.
type orderedSet struct {
	seen  map[string]bool
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]bool)}
}

// add inserts v unless it is empty or already present.
func (s *orderedSet) add(v string) {
	if v == "" || s.seen[v] {
		return
	}
	s.seen[v] = true
	s.items = append(s.items, v)
}

func (s *orderedSet) len() int { return len(s.items) }

func (s *orderedSet) values() []string { return s.items }
