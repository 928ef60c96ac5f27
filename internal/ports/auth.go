package ports

// Package ports defines interfaces (hexagonal ports) for auth and gating behavior.
// Implementations live in internal/adapters and internal/data; orchestration in internal/service.

import (
	"context"
	"errors"
	"net/http"
	"time"

	domainauth "github.com/lumicrm/portalgate/internal/domain/auth"
)

// BeginInput carries inputs for initiating an auth flow.
// LoginHint is passed to the IdP as login_hint; the dev provider uses it to pick a persona.
type BeginInput struct {
	RedirectURL string
	LoginHint   string
}

// AuthProvider initiates and completes an authentication flow against an IdP.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns the authenticated identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// ErrSessionNotFound is returned by SessionStore.Get for missing or expired sessions.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists and retrieves user sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// RoleMapper maps provider groups to application roles.
type RoleMapper interface {
	Map(groups []string) domainauth.Role
}

// SessionToken is the verified content of a session cookie.
type SessionToken struct {
	SessionID string
	Subject   string
	ExpiresAt time.Time
}

// SessionCodec signs and verifies the session cookie value.
type SessionCodec interface {
	Encode(sess domainauth.Session) (string, error)
	Decode(raw string) (SessionToken, error)
}

// SessionResolution is the outcome of reading the session from a request.
// Principal is nil for anonymous requests. Cookies are mutations the resolver made
// (refresh or clear) that must be written on whatever response is produced.
type SessionResolution struct {
	Principal *domainauth.Principal
	Session   *domainauth.Session
	Cookies   []*http.Cookie
}

// SessionResolver reads the current principal from a request's cookies.
type SessionResolver interface {
	ResolveSession(ctx context.Context, r *http.Request) (SessionResolution, error)
}

// UserAccessStore is the keyed read of a user's role and permissions.
type UserAccessStore interface {
	GetAccess(ctx context.Context, userID string) (domainauth.Access, error)
}

// UserDirectory provisions and edits user records.
type UserDirectory interface {
	UserAccessStore
	Upsert(ctx context.Context, in UpsertUserInput) (*domainauth.User, error)
	Get(ctx context.Context, userID string) (*domainauth.User, error)
	SetRole(ctx context.Context, userID string, role domainauth.Role) error
	SetPermissions(ctx context.Context, userID string, perms domainauth.PermissionSet) error
}

// UpsertUserInput carries profile fields refreshed on every sign-in.
// DefaultPermissions are applied only when the user record is created.
type UpsertUserInput struct {
	ID                 string
	Email              string
	FirstName          string
	LastName           string
	Role               domainauth.Role
	DefaultPermissions domainauth.PermissionSet
}

// PermissionResolver returns the permission set of a principal, failing closed.
type PermissionResolver interface {
	Resolve(ctx context.Context, principalID string) (domainauth.PermissionSet, error)
}
