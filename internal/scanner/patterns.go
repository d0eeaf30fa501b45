package scanner

import (
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// ExcludeMatcher decides whether a relative key is excluded from a sync.
// Patterns use shell-style globs (including doublestar "**") and are
// matched against the slash-separated key relative to the sync root.
type ExcludeMatcher struct {
	patterns []string
}

// NewExcludeMatcher creates a matcher over the given glob patterns.
func NewExcludeMatcher(patterns []string) *ExcludeMatcher {
	return &ExcludeMatcher{patterns: patterns}
}

// Match reports whether relKey matches any exclude pattern.
// Path separators are normalized to forward slashes before matching, so
// callers can pass host-native relative paths.
func (m *ExcludeMatcher) Match(relKey string) bool {
	relKey = filepath.ToSlash(relKey)
	for _, pattern := range m.patterns {
		if ok, err := doublestar.Match(pattern, relKey); err == nil && ok {
			return true
		}
	}
	return false
}

// Validate reports the first syntactically invalid pattern, if any.
func (m *ExcludeMatcher) Validate() error {
	for _, pattern := range m.patterns {
		if !doublestar.ValidatePattern(pattern) {
			return &PatternError{Pattern: pattern}
		}
	}
	return nil
}

// PatternError represents an invalid exclude pattern.
type PatternError struct {
	Pattern string
}

func (e *PatternError) Error() string {
	return "invalid exclude pattern: " + e.Pattern
}
