package policy

import (
	"fmt"

	"github.com/gobwas/glob"
)

// Matcher reports whether a request path is excluded from gating. Patterns use glob
// syntax with "/" as separator: "*" stays within a segment, "**" crosses segments and
// "{a,b}" lists alternatives.
type Matcher struct {
	patterns []string
	globs    []glob.Glob
}

// NewMatcher compiles patterns. A nil or empty list excludes nothing.
func NewMatcher(patterns []string) (*Matcher, error) {
	m := &Matcher{patterns: append([]string(nil), patterns...)}
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("exclude pattern %q: %w", p, err)
		}
		m.globs = append(m.globs, g)
	}
	return m, nil
}

// Match reports whether path matches any exclusion pattern.
func (m *Matcher) Match(path string) bool {
	if m == nil {
		return false
	}
	for _, g := range m.globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}

// Patterns returns the source patterns.
func (m *Matcher) Patterns() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.patterns...)
}
