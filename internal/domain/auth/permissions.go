package auth

import (
	"slices"
	"strings"
)

// Permission is a capability tag granted to a user.
// The set of tags is closed; anything else read from storage is rejected.
type Permission string

const (
	// PermAll is the universal wildcard.
	PermAll         Permission = "all"
	PermFinance     Permission = "finance"
	PermWarehouse   Permission = "warehouse"
	PermTeamContent Permission = "team_content"
	PermDocuments   Permission = "documents"
	PermEducation   Permission = "education"
	PermOrders      Permission = "orders"
	PermCatalog     Permission = "catalog"
	PermBonuses     Permission = "bonuses"
	PermUsers       Permission = "users"
)

var knownPermissions = map[Permission]struct{}{
	PermAll:         {},
	PermFinance:     {},
	PermWarehouse:   {},
	PermTeamContent: {},
	PermDocuments:   {},
	PermEducation:   {},
	PermOrders:      {},
	PermCatalog:     {},
	PermBonuses:     {},
	PermUsers:       {},
}

// Valid reports whether p is a known permission tag.
func (p Permission) Valid() bool {
	_, ok := knownPermissions[p]
	return ok
}

// Permissions returns every known permission tag, sorted.
func Permissions() []Permission {
	out := make([]Permission, 0, len(knownPermissions))
	for p := range knownPermissions {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// PermissionSet is an immutable-by-convention set of permission tags.
// The zero value is an empty set and grants nothing.
type PermissionSet map[Permission]struct{}

// NewPermissionSet builds a set from the given tags.
func NewPermissionSet(perms ...Permission) PermissionSet {
	s := make(PermissionSet, len(perms))
	for _, p := range perms {
		s[p] = struct{}{}
	}
	return s
}

// ParsePermissions validates raw tags read from storage or config.
// Unknown or blank tags are returned in rejected and left out of the set.
func ParsePermissions(raw []string) (set PermissionSet, rejected []string) {
	set = make(PermissionSet, len(raw))
	for _, r := range raw {
		p := Permission(strings.ToLower(strings.TrimSpace(r)))
		if !p.Valid() {
			rejected = append(rejected, r)
			continue
		}
		set[p] = struct{}{}
	}
	return set, rejected
}

// Has reports whether p is in the set. It does not expand the wildcard.
func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// IsUniversal reports whether the set carries the wildcard tag.
func (s PermissionSet) IsUniversal() bool { return s.Has(PermAll) }

// Grants reports whether the set satisfies a requirement: the wildcard always does,
// otherwise at least one tag must be shared. An empty requirement is never satisfied.
func (s PermissionSet) Grants(required PermissionSet) bool {
	if len(required) == 0 {
		return false
	}
	if s.IsUniversal() {
		return true
	}
	for p := range required {
		if s.Has(p) {
			return true
		}
	}
	return false
}

// Union returns a new set with the tags of both sets.
func (s PermissionSet) Union(other PermissionSet) PermissionSet {
	out := make(PermissionSet, len(s)+len(other))
	for p := range s {
		out[p] = struct{}{}
	}
	for p := range other {
		out[p] = struct{}{}
	}
	return out
}

// Without returns a new set without the given tags.
func (s PermissionSet) Without(other PermissionSet) PermissionSet {
	out := make(PermissionSet, len(s))
	for p := range s {
		if !other.Has(p) {
			out[p] = struct{}{}
		}
	}
	return out
}

// Sorted returns the tags in lexical order.
func (s PermissionSet) Sorted() []Permission {
	out := make([]Permission, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// Strings returns the tags in lexical order as plain strings, for storage.
func (s PermissionSet) Strings() []string {
	sorted := s.Sorted()
	out := make([]string, len(sorted))
	for i, p := range sorted {
		out[i] = string(p)
	}
	return out
}

// DefaultPermissions returns the tags granted to a newly provisioned user of the role.
// Tags only gate the admin area, so dealer, celebrity and plain users start with none.
func DefaultPermissions(r Role) PermissionSet {
	switch r {
	case RoleAdmin:
		return NewPermissionSet(PermAll)
	case RoleFinancier:
		return NewPermissionSet(PermFinance, PermBonuses)
	default:
		return NewPermissionSet()
	}
}
