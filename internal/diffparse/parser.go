// Package diffparse converts raw unified diff text into a normalized
// domain.DiffIndex. Parsing is total: unrecognized lines are skipped,
// malformed sections are dropped, and no input ever produces an error.
package diffparse

import (
	"regexp"
	"strconv"
	"strings"

	"diff-review-planner/internal/domain"
)

// Line markers recognized inside a file section.
const (
	markerDiffGit     = "diff --git "
	markerOldPath     = "--- "
	markerNewPath     = "+++ "
	markerBinaryFiles = "Binary files "
	markerBinaryPatch = "GIT binary patch"
	markerNewMode     = "new file mode"
	markerDeletedMode = "deleted file mode"
	markerRenameFrom  = "rename from "
	markerRenameTo    = "rename to "
	markerCopyFrom    = "copy from "
	markerCopyTo      = "copy to "
)

// hunkHeaderPattern matches "@@ -<old>[,len] +<new>[,len] @@" headers.
var hunkHeaderPattern = regexp.MustCompile(`^@@ -(\d+)(?:,\d+)? \+(\d+)(?:,\d+)? @@`)

// rawHunk is a hunk before IDs are assigned.
type rawHunk struct {
	oldStart int
	newStart int
	header   string
}

// fileAccumulator collects everything seen for one file section between
// "diff --git" markers. Paths hold "" when the side is absent. A path
// set from rename/copy metadata is fixed and no longer refinable by
// "---"/"+++" lines.
type fileAccumulator struct {
	oldPath      string
	newPath      string
	oldPathFixed bool
	newPathFixed bool
	status       domain.FileStatus
	statusSet    bool
	binary       bool
	hunks        []rawHunk
}

func (acc *fileAccumulator) setStatus(s domain.FileStatus) {
	acc.status = s
	acc.statusSet = true
}

// inferStatus records a status derived from a null-device path. Explicit
// metadata wins over inference.
func (acc *fileAccumulator) inferStatus(s domain.FileStatus) {
	if !acc.statusSet {
		acc.status = s
	}
}

// Parse converts unified diff text into a DiffIndex. Carriage returns
// are normalized away first. Lines before the first "diff --git" marker,
// and every line following a marker whose paths cannot be extracted, are
// ignored.
func Parse(diffText string) *domain.DiffIndex {
	text := strings.ReplaceAll(diffText, "\r\n", "\n")

	index := domain.DiffIndex{
		Version: domain.DiffIndexVersion,
		Files:   []domain.DiffFileEntry{},
	}

	var cur *fileAccumulator
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, markerDiffGit) {
			if entry, ok := finalize(cur); ok {
				index.Files = append(index.Files, entry)
			}
			cur = startFile(line)
			continue
		}
		if cur == nil {
			continue
		}
		consumeLine(cur, line)
	}
	if entry, ok := finalize(cur); ok {
		index.Files = append(index.Files, entry)
	}

	return &index
}

// startFile opens an accumulator from a "diff --git" marker line.
// Returns nil when the two paths cannot be extracted.
func startFile(line string) *fileAccumulator {
	rest := strings.TrimSpace(line[len(markerDiffGit):])

	oldRaw, rest, ok := takePathToken(rest)
	if !ok {
		return nil
	}
	newRaw, _, ok := takePathToken(rest)
	if !ok {
		return nil
	}

	return &fileAccumulator{
		oldPath: resolvePath(oldRaw),
		newPath: resolvePath(newRaw),
		status:  domain.StatusModified,
	}
}

// consumeLine applies one body line to the accumulator, in priority
// order: binary markers, hunk headers, path lines, status metadata.
// Once a section is marked binary all further lines are ignored.
func consumeLine(acc *fileAccumulator, line string) {
	if acc.binary {
		return
	}

	switch {
	case strings.HasPrefix(line, markerBinaryFiles), strings.HasPrefix(line, markerBinaryPatch):
		acc.binary = true

	case strings.HasPrefix(line, "@@"):
		m := hunkHeaderPattern.FindStringSubmatch(line)
		if m == nil {
			return
		}
		oldStart, _ := strconv.Atoi(m[1])
		newStart, _ := strconv.Atoi(m[2])
		acc.hunks = append(acc.hunks, rawHunk{oldStart: oldStart, newStart: newStart, header: line})

	case strings.HasPrefix(line, markerOldPath):
		target, isNull := pathLineTarget(line[len(markerOldPath):])
		if isNull {
			acc.inferStatus(domain.StatusAdded)
			if !acc.oldPathFixed {
				acc.oldPath = ""
			}
			return
		}
		if target != "" && !acc.oldPathFixed {
			acc.oldPath = target
		}

	case strings.HasPrefix(line, markerNewPath):
		target, isNull := pathLineTarget(line[len(markerNewPath):])
		if isNull {
			acc.inferStatus(domain.StatusDeleted)
			if !acc.newPathFixed {
				acc.newPath = ""
			}
			return
		}
		if target != "" && !acc.newPathFixed {
			acc.newPath = target
		}

	case strings.HasPrefix(line, markerNewMode):
		acc.setStatus(domain.StatusAdded)

	case strings.HasPrefix(line, markerDeletedMode):
		acc.setStatus(domain.StatusDeleted)

	case strings.HasPrefix(line, markerRenameFrom):
		acc.setStatus(domain.StatusRenamed)
		if p, _ := pathLineTarget(line[len(markerRenameFrom):]); p != "" {
			acc.oldPath = p
			acc.oldPathFixed = true
		}

	case strings.HasPrefix(line, markerRenameTo):
		acc.setStatus(domain.StatusRenamed)
		if p, _ := pathLineTarget(line[len(markerRenameTo):]); p != "" {
			acc.newPath = p
			acc.newPathFixed = true
		}

	case strings.HasPrefix(line, markerCopyFrom):
		acc.setStatus(domain.StatusCopied)
		if p, _ := pathLineTarget(line[len(markerCopyFrom):]); p != "" {
			acc.oldPath = p
			acc.oldPathFixed = true
		}

	case strings.HasPrefix(line, markerCopyTo):
		acc.setStatus(domain.StatusCopied)
		if p, _ := pathLineTarget(line[len(markerCopyTo):]); p != "" {
			acc.newPath = p
			acc.newPathFixed = true
		}
	}
}

// finalize converts a completed accumulator into an index entry. Binary
// sections, sections without hunks, and sections with no resolvable path
// yield no entry. Deletions resolve to the old path, everything else to
// the new path, falling back to the other side when one is absent.
func finalize(acc *fileAccumulator) (domain.DiffFileEntry, bool) {
	if acc == nil || acc.binary || len(acc.hunks) == 0 {
		return domain.DiffFileEntry{}, false
	}

	var fileID string
	if acc.status == domain.StatusDeleted {
		fileID = firstNonEmpty(acc.oldPath, acc.newPath)
	} else {
		fileID = firstNonEmpty(acc.newPath, acc.oldPath)
	}
	if fileID == "" {
		return domain.DiffFileEntry{}, false
	}

	entry := domain.DiffFileEntry{
		FileID:   fileID,
		Status:   acc.status,
		Language: languageFor(fileID),
		Hunks:    make([]domain.DiffHunk, len(acc.hunks)),
	}
	for i, h := range acc.hunks {
		entry.Hunks[i] = domain.DiffHunk{
			HunkID:   domain.HunkID(fileID, i),
			OldStart: h.oldStart,
			NewStart: h.newStart,
			Header:   h.header,
		}
	}
	return entry, true
}

// takePathToken cuts one path off the front of s, honoring the quoted
// form git uses for paths with special characters.
func takePathToken(s string) (token, rest string, ok bool) {
	s = strings.TrimLeft(s, " ")
	if s == "" {
		return "", "", false
	}

	if s[0] == '"' {
		end := -1
		for i := 1; i < len(s); i++ {
			if s[i] == '\\' {
				i++
				continue
			}
			if s[i] == '"' {
				end = i
				break
			}
		}
		if end == -1 {
			return "", "", false
		}
		unquoted, err := strconv.Unquote(s[:end+1])
		if err != nil {
			return "", "", false
		}
		return unquoted, s[end+1:], true
	}

	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i], s[i+1:], true
	}
	return s, "", true
}

// pathLineTarget extracts the path from the remainder of a "---"/"+++"
// or rename/copy metadata line. Handles quoted paths and the trailing
// tab-separated timestamp some diff tools append. isNull reports that
// the path was the null device.
func pathLineTarget(s string) (path string, isNull bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}

	var raw string
	if s[0] == '"' {
		token, _, ok := takePathToken(s)
		if !ok {
			return "", false
		}
		raw = token
	} else {
		raw = s
		if i := strings.IndexByte(raw, '\t'); i >= 0 {
			raw = raw[:i]
		}
	}

	p := domain.NormalizePath(raw)
	if p == domain.NullDevice {
		return "", true
	}
	return p, false
}

// resolvePath normalizes a marker-line path; the null device resolves to
// absent.
func resolvePath(raw string) string {
	p := domain.NormalizePath(raw)
	if p == domain.NullDevice {
		return ""
	}
	return p
}

// languageFor derives the language tag from the final path segment: the
// lowercased extension, or "" when the segment has no dot, a leading
// dot, or a trailing dot.
func languageFor(fileID string) string {
	base := fileID
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	dot := strings.LastIndexByte(base, '.')
	if dot <= 0 || dot == len(base)-1 {
		return ""
	}
	return strings.ToLower(base[dot+1:])
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
