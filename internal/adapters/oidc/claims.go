package oidc

import (
	"fmt"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"
)

// Default claim expressions cover both standard OIDC claims and the AD/ADFS shape.
const (
	DefaultUserIDExpr     = "samaccountname || preferred_username || sub"
	DefaultEmailExpr      = "mail || email"
	DefaultGivenNameExpr  = "firstname || given_name"
	DefaultFamilyNameExpr = "lastname || family_name"
	DefaultGroupsExpr     = "memberof || groups"
)

// ClaimsConfig holds JMESPath expressions that locate identity fields in token claims.
// Empty fields use the defaults above.
type ClaimsConfig struct {
	UserIDExpr     string
	EmailExpr      string
	GivenNameExpr  string
	FamilyNameExpr string
	GroupsExpr     string
}

func (c ClaimsConfig) withDefaults() ClaimsConfig {
	c.UserIDExpr = firstNonEmpty(c.UserIDExpr, DefaultUserIDExpr)
	c.EmailExpr = firstNonEmpty(c.EmailExpr, DefaultEmailExpr)
	c.GivenNameExpr = firstNonEmpty(c.GivenNameExpr, DefaultGivenNameExpr)
	c.FamilyNameExpr = firstNonEmpty(c.FamilyNameExpr, DefaultFamilyNameExpr)
	c.GroupsExpr = firstNonEmpty(c.GroupsExpr, DefaultGroupsExpr)
	return c
}

// Validate compiles every expression.
func (c ClaimsConfig) Validate() error {
	c = c.withDefaults()
	for name, expr := range map[string]string{
		"user id":     c.UserIDExpr,
		"email":       c.EmailExpr,
		"given name":  c.GivenNameExpr,
		"family name": c.FamilyNameExpr,
		"groups":      c.GroupsExpr,
	} {
		if _, err := jmespath.Compile(expr); err != nil {
			return fmt.Errorf("invalid %s claim expression %q: %w", name, expr, err)
		}
	}
	return nil
}

type idFields struct {
	userID     string
	email      string
	givenName  string
	familyName string
	groups     []string
}

func (f idFields) complete() bool { return f.userID != "" && f.email != "" }

// extractFields evaluates cfg against raw claims. Fields already set in f are kept,
// which lets UserInfo claims fill only what the ID token left out.
func extractFields(cfg ClaimsConfig, claims map[string]any, f *idFields) error {
	cfg = cfg.withDefaults()

	fill := func(dst *string, expr string) error {
		if *dst != "" {
			return nil
		}
		v, err := searchString(expr, claims)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
	if err := fill(&f.userID, cfg.UserIDExpr); err != nil {
		return err
	}
	if err := fill(&f.email, cfg.EmailExpr); err != nil {
		return err
	}
	if err := fill(&f.givenName, cfg.GivenNameExpr); err != nil {
		return err
	}
	if err := fill(&f.familyName, cfg.FamilyNameExpr); err != nil {
		return err
	}
	if len(f.groups) == 0 {
		groups, err := searchStrings(cfg.GroupsExpr, claims)
		if err != nil {
			return err
		}
		f.groups = groups
	}
	return nil
}

func searchString(expr string, data map[string]any) (string, error) {
	v, err := jmespath.Search(expr, data)
	if err != nil {
		return "", fmt.Errorf("evaluate %q: %w", expr, err)
	}
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(t), nil
	case float64, bool:
		return fmt.Sprint(t), nil
	default:
		return "", fmt.Errorf("claim expression %q produced %T, want string", expr, v)
	}
}

// searchStrings accepts either a list of strings or a single string (some IdPs emit a
// bare string when the user is in exactly one group).
func searchStrings(expr string, data map[string]any) ([]string, error) {
	v, err := jmespath.Search(expr, data)
	if err != nil {
		return nil, fmt.Errorf("evaluate %q: %w", expr, err)
	}
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		if t == "" {
			return nil, nil
		}
		return []string{t}, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("claim expression %q produced non-string element %T", expr, item)
			}
			if s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("claim expression %q produced %T, want list of strings", expr, v)
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
