// Package pattern provides deterministic multi-language keyword matching
// over conversation text. A compiled Set is immutable and safe for
// concurrent use; scanning never fails and never performs I/O.
package pattern

import (
	"errors"
	"sort"
)

// Errors for pattern set construction.
var (
	// ErrPatternCompile indicates a malformed pattern definition. It is
	// fatal at detector construction time and prevents registration.
	ErrPatternCompile = errors.New("pattern compilation failed")
)

// Definition is the raw pattern input supplied by a framework detector:
// category name -> language tag -> keywords.
type Definition map[string]map[string][]string

// ScanResult is the outcome of one quick scan. It is created fresh per
// call and never mutated afterwards.
type ScanResult struct {
	Framework     string              `json:"framework"`
	HasPatterns   bool                `json:"has_patterns"`
	PatternsFound map[string][]string `json:"patterns_found,omitempty"`
}

// Categories returns the matched category names in deterministic
// (lexicographic) order.
func (r ScanResult) Categories() []string {
	if len(r.PatternsFound) == 0 {
		return nil
	}
	names := make([]string, 0, len(r.PatternsFound))
	for name := range r.PatternsFound {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
