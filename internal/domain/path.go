package domain

import "strings"

// NullDevice is the path git uses for the missing side of an added or
// deleted file.
const NullDevice = "/dev/null"

// Prefixes attached to paths by diff tooling.
const (
	// PathPrefixGitSource is the standard git source prefix.
	PathPrefixGitSource = "a/"
	// PathPrefixGitDestination is the standard git destination prefix.
	PathPrefixGitDestination = "b/"
)

// NormalizePath normalizes a path taken from a diff line: separators are
// standardized to forward slashes and at most one leading VCS prefix is
// removed. The null device is returned unchanged.
func NormalizePath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	if path == NullDevice {
		return path
	}

	prefixes := []string{
		PathPrefixGitSource,
		PathPrefixGitDestination,
		"src://",
		"dst://",
	}
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return path[len(p):]
		}
	}
	return path
}
