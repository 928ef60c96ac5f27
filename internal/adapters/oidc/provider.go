package oidc

// Package oidc provides the OIDC/OAuth2 sign-in adapter for portalgate.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	domainauth "github.com/lumicrm/portalgate/internal/domain/auth"
	"github.com/lumicrm/portalgate/internal/ports"
)

// Provider implements ports.AuthProvider using OIDC discovery and the authorization code flow.
type Provider struct {
	config     *oauth2.Config
	httpClient *http.Client
	claims     ClaimsConfig
	now        func() time.Time

	oidcProvider *gooidc.Provider
	verifier     *gooidc.IDTokenVerifier
}

var _ ports.AuthProvider = (*Provider)(nil)

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scope        string
	DiscoveryURL string
	Claims       ClaimsConfig
	HTTPClient   *http.Client // optional, defaults to a client with a 30s timeout
}

// DiscoveryDocument is the subset of the OIDC discovery document we rely on.
type DiscoveryDocument struct {
	Issuer                string `json:"issuer"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	UserinfoEndpoint      string `json:"userinfo_endpoint"`
	JwksURI               string `json:"jwks_uri"`
}

// NewProvider performs discovery against cfg.DiscoveryURL and builds the provider.
func NewProvider(ctx context.Context, cfg ProviderConfig) (*Provider, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if cfg.ClientSecret == "" {
		return nil, errors.New("client secret is required")
	}
	if cfg.RedirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}
	if cfg.DiscoveryURL == "" {
		return nil, errors.New("discovery URL is required")
	}
	if err := cfg.Claims.Validate(); err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	issuer := strings.TrimSuffix(cfg.DiscoveryURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")

	op, err := gooidc.NewProvider(gooidc.ClientContext(ctx, httpClient), issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}

	return &Provider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       strings.Fields(cfg.Scope),
			Endpoint:     op.Endpoint(),
		},
		httpClient:   httpClient,
		claims:       cfg.Claims.withDefaults(),
		now:          time.Now,
		oidcProvider: op,
		verifier:     op.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
	}, nil
}

func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	if in.RedirectURL == "" {
		return "", "", "", errors.New("redirect URL is required")
	}

	state, err := generateRandomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := generateRandomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}

	// redirect_uri is not overridden; it must match the registered RedirectURL exactly.
	opts := []oauth2.AuthCodeOption{
		gooidc.Nonce(nonce),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	}
	if in.LoginHint != "" {
		opts = append(opts, oauth2.SetAuthURLParam("login_hint", in.LoginHint))
	}
	return p.config.AuthCodeURL(state, opts...), state, nonce, nil
}

func (p *Provider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if in.Code == "" {
		return domainauth.Identity{}, errors.New("authorization code is required")
	}
	if in.State == "" {
		return domainauth.Identity{}, errors.New("state is required")
	}
	if in.Nonce == "" {
		return domainauth.Identity{}, errors.New("nonce is required")
	}

	ctx = gooidc.ClientContext(ctx, p.httpClient)
	token, err := p.config.Exchange(ctx, in.Code)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("exchange code for token: %w", err)
	}

	var fields idFields
	if p.hasOpenIDScope() {
		claims, verr := p.verifyIDToken(ctx, token, in.Nonce)
		if verr != nil {
			return domainauth.Identity{}, fmt.Errorf("extract id_token: %w", verr)
		}
		if err := extractFields(p.claims, claims, &fields); err != nil {
			return domainauth.Identity{}, fmt.Errorf("map id_token claims: %w", err)
		}
	}

	if !fields.complete() {
		claims, uerr := p.userInfoClaims(ctx, token)
		if uerr != nil {
			return domainauth.Identity{}, fmt.Errorf("get user info: %w", uerr)
		}
		if err := extractFields(p.claims, claims, &fields); err != nil {
			return domainauth.Identity{}, fmt.Errorf("map user info claims: %w", err)
		}
	}
	if fields.userID == "" {
		return domainauth.Identity{}, errors.New("identity has no user id claim")
	}

	expiresAt := p.now().Add(time.Hour)
	if !token.Expiry.IsZero() {
		expiresAt = token.Expiry
	}

	return domainauth.Identity{
		UserID:    fields.userID,
		FirstName: fields.givenName,
		LastName:  fields.familyName,
		Email:     fields.email,
		Groups:    fields.groups,
		ExpiresAt: expiresAt,
	}, nil
}

func (p *Provider) verifyIDToken(ctx context.Context, tok *oauth2.Token, expectedNonce string) (map[string]any, error) {
	rawID, err := getIDTokenFromToken(tok)
	if err != nil {
		return nil, err
	}
	idTok, err := p.verifier.Verify(ctx, rawID)
	if err != nil {
		return nil, fmt.Errorf("verify id_token: %w", err)
	}
	if idTok.Nonce != expectedNonce {
		return nil, errors.New("invalid nonce")
	}
	var claims map[string]any
	if err := idTok.Claims(&claims); err != nil {
		return nil, fmt.Errorf("parse id_token claims: %w", err)
	}
	return claims, nil
}

func (p *Provider) userInfoClaims(ctx context.Context, tok *oauth2.Token) (map[string]any, error) {
	ui, err := p.oidcProvider.UserInfo(ctx, oauth2.StaticTokenSource(tok))
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	var claims map[string]any
	if err := ui.Claims(&claims); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}
	return claims, nil
}

func (p *Provider) hasOpenIDScope() bool {
	return slices.Contains(p.config.Scopes, "openid")
}

// generateRandomString returns a URL-safe random string of exactly length characters.
func generateRandomString(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:length], nil
}

func getIDTokenFromToken(tok *oauth2.Token) (string, error) {
	if tok == nil {
		return "", errors.New("nil token")
	}
	s, ok := tok.Extra("id_token").(string)
	if !ok || s == "" {
		return "", errors.New("missing id_token in token response")
	}
	return s, nil
}
