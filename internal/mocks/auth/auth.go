package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are stateful, which makes them a better fit than gomock for sign-in round trips.

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	domainauth "github.com/lumicrm/portalgate/internal/domain/auth"
	apperrors "github.com/lumicrm/portalgate/internal/errors"
	"github.com/lumicrm/portalgate/internal/ports"
)

var (
	_ ports.AuthProvider  = (*MockAuthProvider)(nil)
	_ ports.SessionStore  = (*MemorySessionStore)(nil)
	_ ports.UserDirectory = (*MemoryUserDirectory)(nil)
)

// MockAuthProvider simulates an IdP with deterministic state and nonce values.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error)

	AuthURL     string
	DefaultUser domainauth.Identity

	mu        sync.Mutex
	callCount int
	lastBegin ports.BeginInput
}

// NewMockAuthProvider creates a MockAuthProvider signing everyone in as a dealer.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		AuthURL: "https://mock-idp/auth",
		DefaultUser: domainauth.Identity{
			UserID:    "mock-user-1",
			FirstName: "Mock",
			LastName:  "Dealer",
			Email:     "mock.dealer@example.com",
			Groups:    []string{"portal-dealers"},
		},
	}
}

func (m *MockAuthProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++
	m.lastBegin = in

	authURL := m.AuthURL
	if authURL == "" {
		authURL = "https://mock-idp/auth"
	}
	return authURL, fmt.Sprintf("state-%d", m.callCount), fmt.Sprintf("nonce-%d", m.callCount), nil
}

// LastBegin returns the input of the most recent Begin call.
func (m *MockAuthProvider) LastBegin() ports.BeginInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastBegin
}

func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}
	user := m.DefaultUser
	user.Groups = slices.Clone(user.Groups)
	user.ExpiresAt = time.Now().Add(time.Hour)
	return user, nil
}

// MemorySessionStore is an in-memory ports.SessionStore.
type MemorySessionStore struct {
	Now func() time.Time

	mu       sync.Mutex
	sessions map[string]domainauth.Session
}

// NewMemorySessionStore creates an empty store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]domainauth.Session)}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	if m.Now != nil && sess.Expired(m.Now()) {
		delete(m.sessions, id)
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len returns the number of stored sessions.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// MemoryUserDirectory is an in-memory ports.UserDirectory with the same upsert
// semantics as the Postgres repository.
type MemoryUserDirectory struct {
	Err error

	mu    sync.Mutex
	users map[string]domainauth.User
}

// NewMemoryUserDirectory creates a directory seeded with users.
func NewMemoryUserDirectory(users ...domainauth.User) *MemoryUserDirectory {
	d := &MemoryUserDirectory{users: make(map[string]domainauth.User, len(users))}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

func (d *MemoryUserDirectory) GetAccess(ctx context.Context, userID string) (domainauth.Access, error) {
	u, err := d.Get(ctx, userID)
	if err != nil {
		return domainauth.Access{}, err
	}
	return domainauth.Access{Role: u.Role, Permissions: u.Permissions}, nil
}

func (d *MemoryUserDirectory) Get(_ context.Context, userID string) (*domainauth.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	u, ok := d.users[userID]
	if !ok {
		return nil, apperrors.NotFoundf("user %q not found", userID)
	}
	return &u, nil
}

func (d *MemoryUserDirectory) Upsert(_ context.Context, in ports.UpsertUserInput) (*domainauth.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	if in.ID == "" {
		return nil, apperrors.ValidationField("id", "user id is required")
	}

	now := time.Now()
	u, ok := d.users[in.ID]
	if !ok {
		u = domainauth.User{ID: in.ID, Permissions: in.DefaultPermissions, CreatedAt: now}
		if u.Permissions == nil {
			u.Permissions = domainauth.NewPermissionSet()
		}
	}
	u.Email, u.FirstName, u.LastName, u.Role = in.Email, in.FirstName, in.LastName, in.Role
	u.UpdatedAt = now
	d.users[in.ID] = u
	return &u, nil
}

func (d *MemoryUserDirectory) SetRole(_ context.Context, userID string, role domainauth.Role) error {
	return d.update(userID, func(u *domainauth.User) { u.Role = role })
}

func (d *MemoryUserDirectory) SetPermissions(_ context.Context, userID string, perms domainauth.PermissionSet) error {
	return d.update(userID, func(u *domainauth.User) { u.Permissions = perms })
}

func (d *MemoryUserDirectory) update(userID string, fn func(*domainauth.User)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	u, ok := d.users[userID]
	if !ok {
		return apperrors.NotFoundf("user %q not found", userID)
	}
	fn(&u)
	u.UpdatedAt = time.Now()
	d.users[userID] = u
	return nil
}
