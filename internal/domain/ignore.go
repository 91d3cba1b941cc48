package domain

import "path/filepath"

// DefaultIgnore skips Time Machine backup bundles. They use directory hard
// links, which confuse tools walking the tree.
var DefaultIgnore = []string{"*.backupdb"}

// IgnoreSet holds glob patterns matched against directory base names.
// A matching directory is neither descended into nor recorded.
type IgnoreSet struct {
	patterns []string
}

// NewIgnoreSet validates the patterns and returns the set.
func NewIgnoreSet(patterns []string) (IgnoreSet, error) {
	for _, p := range patterns {
		if _, err := filepath.Match(p, ""); err != nil {
			return IgnoreSet{}, err
		}
	}
	return IgnoreSet{patterns: patterns}, nil
}

// Match reports whether name matches any pattern in the set.
func (s IgnoreSet) Match(name string) bool {
	for _, p := range s.patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

// Patterns returns the configured patterns.
func (s IgnoreSet) Patterns() []string {
	return s.patterns
}
