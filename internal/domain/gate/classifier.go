package gate

// Package gate holds the pure request-gating model: route classification and the
// allow/redirect/rewrite decision. It performs no I/O.

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	domainauth "github.com/lumicrm/portalgate/internal/domain/auth"
)

// RouteClass is the sensitivity class of a request path.
type RouteClass int

const (
	// ClassPublic paths are served without looking at the session.
	ClassPublic RouteClass = iota
	// ClassAuthOnly paths are the sign-in and sign-up pages.
	ClassAuthOnly
	// ClassProtected paths require an authenticated session.
	ClassProtected
)

func (c RouteClass) String() string {
	switch c {
	case ClassPublic:
		return "public"
	case ClassAuthOnly:
		return "auth_only"
	case ClassProtected:
		return "protected"
	default:
		return "unknown"
	}
}

// Classification is the result of classifying a path.
// Required is nil when no permission check applies below the session check.
type Classification struct {
	Path     string
	Class    RouteClass
	Required domainauth.PermissionSet
}

// Rule maps a path (exact) or path prefix to the permissions it requires.
type Rule struct {
	Path     string
	Exact    bool
	Required domainauth.PermissionSet
}

// ClassifierConfig is the static route table.
type ClassifierConfig struct {
	AuthPages       []string
	ProtectedRoots  []string
	RestrictedRoots []string
	Rules           []Rule
}

// Classifier maps request paths to route classes and required permissions.
// It is immutable after construction and safe for concurrent use.
type Classifier struct {
	authPages       map[string]struct{}
	protectedRoots  []string
	restrictedRoots []string
	exact           map[string]domainauth.PermissionSet
	prefixes        []Rule // longest first
}

// NewClassifier validates cfg and builds a Classifier.
func NewClassifier(cfg ClassifierConfig) (*Classifier, error) {
	c := &Classifier{
		authPages: make(map[string]struct{}, len(cfg.AuthPages)),
		exact:     make(map[string]domainauth.PermissionSet),
	}

	for _, p := range cfg.AuthPages {
		n, err := normalizeConfigPath(p)
		if err != nil {
			return nil, fmt.Errorf("auth page: %w", err)
		}
		c.authPages[n] = struct{}{}
	}

	if len(cfg.ProtectedRoots) == 0 {
		return nil, errors.New("at least one protected root is required")
	}
	for _, p := range cfg.ProtectedRoots {
		n, err := normalizeConfigPath(p)
		if err != nil {
			return nil, fmt.Errorf("protected root: %w", err)
		}
		c.protectedRoots = append(c.protectedRoots, n)
	}

	for _, p := range cfg.RestrictedRoots {
		n, err := normalizeConfigPath(p)
		if err != nil {
			return nil, fmt.Errorf("restricted root: %w", err)
		}
		if !underAny(n, c.protectedRoots) {
			return nil, fmt.Errorf("restricted root %q is not under a protected root", n)
		}
		c.restrictedRoots = append(c.restrictedRoots, n)
	}

	for page := range c.authPages {
		if underAny(page, c.protectedRoots) {
			return nil, fmt.Errorf("auth page %q is under a protected root", page)
		}
	}

	seen := make(map[string]bool, len(cfg.Rules))
	for _, r := range cfg.Rules {
		n, err := normalizeConfigPath(r.Path)
		if err != nil {
			return nil, fmt.Errorf("rule: %w", err)
		}
		if !underAny(n, c.protectedRoots) {
			return nil, fmt.Errorf("rule %q is not under a protected root", n)
		}
		if len(r.Required) == 0 {
			return nil, fmt.Errorf("rule %q requires no permissions", n)
		}
		key := fmt.Sprintf("%t:%s", r.Exact, n)
		if seen[key] {
			return nil, fmt.Errorf("duplicate rule %q", n)
		}
		seen[key] = true

		if r.Exact {
			c.exact[n] = r.Required
			continue
		}
		c.prefixes = append(c.prefixes, Rule{Path: n, Required: r.Required})
	}
	sort.SliceStable(c.prefixes, func(i, j int) bool {
		return len(c.prefixes[i].Path) > len(c.prefixes[j].Path)
	})

	return c, nil
}

// Classify normalizes p and returns its classification.
func (c *Classifier) Classify(p string) Classification {
	n := NormalizePath(p)
	if _, ok := c.authPages[n]; ok {
		return Classification{Path: n, Class: ClassAuthOnly}
	}
	if !underAny(n, c.protectedRoots) {
		return Classification{Path: n, Class: ClassPublic}
	}
	required, _ := c.RequiredPermissions(n)
	return Classification{Path: n, Class: ClassProtected, Required: required}
}

// RequiredPermissions returns the permission set needed to view p, or false when p
// carries no permission requirement. Lookup order: exact rule, longest matching prefix
// rule, then the wildcard requirement for anything under a restricted root.
func (c *Classifier) RequiredPermissions(p string) (domainauth.PermissionSet, bool) {
	n := NormalizePath(p)
	if req, ok := c.exact[n]; ok {
		return req, true
	}
	for _, r := range c.prefixes {
		if under(n, r.Path) {
			return r.Required, true
		}
	}
	if underAny(n, c.restrictedRoots) {
		return domainauth.NewPermissionSet(domainauth.PermAll), true
	}
	return nil, false
}

// NormalizePath cleans p into the canonical form used for lookups: a rooted path
// without dot segments, duplicate or trailing slashes.
func NormalizePath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

func normalizeConfigPath(p string) (string, error) {
	p = strings.TrimSpace(p)
	if !strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("path %q must start with /", p)
	}
	return NormalizePath(p), nil
}

func under(p, root string) bool {
	if root == "/" {
		return true
	}
	return p == root || strings.HasPrefix(p, root+"/")
}

func underAny(p string, roots []string) bool {
	for _, r := range roots {
		if under(p, r) {
			return true
		}
	}
	return false
}
