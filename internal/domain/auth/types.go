package auth

// Package auth contains domain-level types for authentication, sessions and permissions.
// It is pure and free of framework/adapter concerns.

import (
	"fmt"
	"strings"
	"time"
)

// Role represents a portal user's role.
// Keep string form for easy persistence and cookies.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleDealer    Role = "dealer"
	RoleCelebrity Role = "celebrity"
	RoleFinancier Role = "financier"
	RoleUser      Role = "user"
)

// Roles lists every valid role in display order.
func Roles() []Role {
	return []Role{RoleAdmin, RoleDealer, RoleCelebrity, RoleFinancier, RoleUser}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDealer, RoleCelebrity, RoleFinancier, RoleUser:
		return true
	default:
		return false
	}
}

// ParseRole parses a role name case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Identity represents the authenticated principal returned by an IdP.
// Adapters map provider-specific claims into this shape.
type Identity struct {
	UserID    string // stable user identifier (sub or account name)
	FirstName string
	LastName  string
	Email     string
	Groups    []string
	ExpiresAt time.Time // absolute expiry from IdP token
}

// Session is the server-side record we persist for an authenticated user.
// ID is an opaque session identifier.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool { return !now.Before(s.ExpiresAt) }

// ExpiresWithin reports whether the session expires within d of now.
func (s Session) ExpiresWithin(now time.Time, d time.Duration) bool {
	return s.ExpiresAt.Sub(now) <= d
}

// Principal is the identity making a request, with its resolved permissions.
type Principal struct {
	ID          string
	Role        Role
	Permissions PermissionSet
}

// Access is the role and permission projection of a user record.
type Access struct {
	Role        Role
	Permissions PermissionSet
}

// User is the stored user record backing a principal.
type User struct {
	ID          string
	Email       string
	FirstName   string
	LastName    string
	Role        Role
	Permissions PermissionSet
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
