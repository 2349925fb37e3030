package grouper

import (
	"strings"

	"diff-review-planner/internal/domain"
)

// category partitions changed files for grouping. The declaration order
// is the category rank used when ordering steps.
type category int

const (
	categoryDocs category = iota
	categoryTests
	categoryConfig
	categoryFeature
	categoryMisc
)

// Group keys. Feature groups use keyFeaturePrefix plus the top path
// segment.
const (
	keyDocs          = "docs"
	keyTests         = "tests"
	keyConfig        = "config"
	keyMisc          = "misc"
	keyFeaturePrefix = "feature:"
)

// rootSegment labels files living at the repository root.
const rootSegment = "(root)"

// docExtensions is the fixed documentation extension set.
var docExtensions = map[string]bool{
	"md":       true,
	"mdx":      true,
	"markdown": true,
	"rst":      true,
	"adoc":     true,
	"txt":      true,
}

// configExtensions is the fixed configuration extension set.
var configExtensions = map[string]bool{
	"json":       true,
	"yaml":       true,
	"yml":        true,
	"toml":       true,
	"ini":        true,
	"cfg":        true,
	"conf":       true,
	"env":        true,
	"properties": true,
	"lock":       true,
}

// configFilenames are well-known configuration files matched by lowercase
// base name, for files whose extension alone does not give them away.
var configFilenames = map[string]bool{
	"dockerfile":     true,
	"makefile":       true,
	"justfile":       true,
	"go.mod":         true,
	"go.sum":         true,
	".gitignore":     true,
	".gitattributes": true,
	".dockerignore":  true,
	".editorconfig":  true,
	".nvmrc":         true,
	".prettierrc":    true,
	".eslintrc":      true,
	".babelrc":       true,
}

// classify assigns a file to its category and group key. Rules apply in
// fixed order and the first match wins: docs, tests, config, then
// feature keyed by the top path segment.
func classify(f *domain.DiffFileEntry) (category, string) {
	path := strings.ToLower(f.FileID)

	if docExtensions[f.Language] || hasDirSegment(path, "docs") ||
		strings.Contains(path, "readme") || strings.Contains(path, "changelog") {
		return categoryDocs, keyDocs
	}

	if strings.Contains(path, "__tests__") || strings.Contains(path, "spec") ||
		strings.Contains(path, "test") || strings.Contains(path, "fixture") {
		return categoryTests, keyTests
	}

	if configExtensions[f.Language] || configFilenames[baseName(path)] ||
		hasDirSegment(path, "config") || strings.Contains(path, ".github/") {
		return categoryConfig, keyConfig
	}

	return categoryFeature, keyFeaturePrefix + topSegment(f.FileID)
}

// hasDirSegment reports whether path contains dir as a complete path
// segment, either leading or internal.
func hasDirSegment(path, dir string) bool {
	return strings.HasPrefix(path, dir+"/") || strings.Contains(path, "/"+dir+"/")
}

// topSegment returns the first path segment, or the root sentinel for
// separator-free paths.
func topSegment(fileID string) string {
	if i := strings.IndexByte(fileID, '/'); i >= 0 {
		return fileID[:i]
	}
	return rootSegment
}

func baseName(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}
