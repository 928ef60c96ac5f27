package devauth

// Package devauth provides a config-driven AuthProvider for local development.
// It lets a developer sign in as any of a fixed set of personas without an IdP.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"time"

	domainauth "github.com/lumicrm/portalgate/internal/domain/auth"
	"github.com/lumicrm/portalgate/internal/ports"
)

// Persona is one sign-in identity offered by the dev provider.
// Code selects the persona on /auth/login?as=<code>.
type Persona struct {
	Code      string
	UserID    string
	Email     string
	FirstName string
	LastName  string
	Groups    []string
}

// Config controls the dev auth provider behavior.
type Config struct {
	Personas []Persona
	// DefaultPersona is used when the login hint names no persona; defaults to the first.
	DefaultPersona  string
	SessionDuration time.Duration // default 8h when zero
	Now             func() time.Time
}

// Provider implements ports.AuthProvider for local development.
// Begin short-circuits the OAuth flow by redirecting straight to our own callback,
// carrying the persona code as the authorization code.
type Provider struct {
	personas        map[string]Persona
	defaultCode     string
	sessionDuration time.Duration
	now             func() time.Time
}

var _ ports.AuthProvider = (*Provider)(nil)

// DefaultPersonas returns one persona per role, mapped through the given group names.
func DefaultPersonas(adminGroup, financierGroup, dealerGroup, celebrityGroup string) []Persona {
	return []Persona{
		{Code: "admin", UserID: "dev-admin", Email: "admin@portal.local", FirstName: "Aziza", LastName: "Admin", Groups: nonEmpty(adminGroup)},
		{Code: "financier", UserID: "dev-financier", Email: "finance@portal.local", FirstName: "Farrukh", LastName: "Finance", Groups: nonEmpty(financierGroup)},
		{Code: "dealer", UserID: "dev-dealer", Email: "dealer@portal.local", FirstName: "Dilnoza", LastName: "Dealer", Groups: nonEmpty(dealerGroup)},
		{Code: "celebrity", UserID: "dev-celebrity", Email: "star@portal.local", FirstName: "Sevara", LastName: "Star", Groups: nonEmpty(celebrityGroup)},
		{Code: "user", UserID: "dev-user", Email: "user@portal.local", FirstName: "Umid", LastName: "User"},
	}
}

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if len(cfg.Personas) == 0 {
		return nil, errors.New("dev auth: at least one persona is required")
	}
	p := &Provider{
		personas:        make(map[string]Persona, len(cfg.Personas)),
		sessionDuration: cfg.SessionDuration,
		now:             cfg.Now,
	}
	if p.sessionDuration == 0 {
		p.sessionDuration = 8 * time.Hour
	}
	if p.now == nil {
		p.now = time.Now
	}
	for _, persona := range cfg.Personas {
		if persona.Code == "" || persona.UserID == "" || persona.Email == "" {
			return nil, fmt.Errorf("dev auth: persona %q needs code, user ID and email", persona.Code)
		}
		if _, dup := p.personas[persona.Code]; dup {
			return nil, fmt.Errorf("dev auth: duplicate persona %q", persona.Code)
		}
		p.personas[persona.Code] = persona
	}

	p.defaultCode = cfg.DefaultPersona
	if p.defaultCode == "" {
		p.defaultCode = cfg.Personas[0].Code
	}
	if _, ok := p.personas[p.defaultCode]; !ok {
		return nil, fmt.Errorf("dev auth: default persona %q is not configured", p.defaultCode)
	}
	return p, nil
}

// Begin returns a local callback URL and cryptographically secure state and nonce.
func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	state, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}

	code := p.defaultCode
	if _, ok := p.personas[in.LoginHint]; ok {
		code = in.LoginHint
	}

	q := url.Values{}
	q.Set("code", code)
	q.Set("state", state)
	return "/auth/callback?" + q.Encode(), state, nonce, nil
}

// Exchange returns the persona named by the code. State and nonce are checked by the handler.
func (p *Provider) Exchange(_ context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	persona, ok := p.personas[in.Code]
	if !ok {
		return domainauth.Identity{}, fmt.Errorf("dev auth: unknown persona %q", in.Code)
	}
	return domainauth.Identity{
		UserID:    persona.UserID,
		FirstName: persona.FirstName,
		LastName:  persona.LastName,
		Email:     persona.Email,
		Groups:    append([]string(nil), persona.Groups...),
		ExpiresAt: p.now().Add(p.sessionDuration),
	}, nil
}

func nonEmpty(group string) []string {
	if group == "" {
		return nil
	}
	return []string{group}
}

func randomString(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:n], nil
}
