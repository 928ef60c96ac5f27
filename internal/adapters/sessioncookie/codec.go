package sessioncookie

// Package sessioncookie signs session cookies as compact HS256 tokens so that forged or
// expired cookies are rejected before the session store is consulted.

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	domainauth "github.com/lumicrm/portalgate/internal/domain/auth"
	"github.com/lumicrm/portalgate/internal/ports"
)

const minKeyLength = 32

var (
	// ErrInvalidToken is returned for malformed, forged or otherwise unusable cookies.
	ErrInvalidToken = errors.New("invalid session token")
	// ErrExpiredToken is returned when the cookie is well formed but past its expiry.
	ErrExpiredToken = errors.New("session token expired")
)

// Config holds codec settings.
type Config struct {
	Key    []byte
	Issuer string
	Leeway time.Duration
	// Now is optional; defaults to time.Now.
	Now func() time.Time
}

// Codec implements ports.SessionCodec.
type Codec struct {
	key    []byte
	issuer string
	leeway time.Duration
	now    func() time.Time
}

var _ ports.SessionCodec = (*Codec)(nil)

type claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// NewCodec validates cfg and constructs a Codec.
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.Key) < minKeyLength {
		return nil, fmt.Errorf("session signing key must be at least %d bytes", minKeyLength)
	}
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = "portalgate"
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Codec{
		key:    append([]byte(nil), cfg.Key...),
		issuer: issuer,
		leeway: cfg.Leeway,
		now:    now,
	}, nil
}

// RandomKey returns a fresh signing key. Cookies signed with it do not survive a restart.
func RandomKey() ([]byte, error) {
	b := make([]byte, minKeyLength)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}
	return b, nil
}

// Encode signs a token for sess.
func (c *Codec) Encode(sess domainauth.Session) (string, error) {
	if sess.ID == "" {
		return "", errors.New("session ID cannot be empty")
	}
	if sess.UserID == "" {
		return "", errors.New("session user ID cannot be empty")
	}
	issuedAt := sess.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = c.now()
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		SessionID: sess.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   sess.UserID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	})
	signed, err := tok.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Decode verifies raw and returns its content.
func (c *Codec) Decode(raw string) (ports.SessionToken, error) {
	if raw == "" {
		return ports.SessionToken{}, ErrInvalidToken
	}

	var cl claims
	_, err := jwt.ParseWithClaims(raw, &cl, func(*jwt.Token) (any, error) {
		return c.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(c.leeway),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ports.SessionToken{}, fmt.Errorf("%w: %w", ErrExpiredToken, err)
		}
		return ports.SessionToken{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if cl.SessionID == "" || cl.Subject == "" {
		return ports.SessionToken{}, fmt.Errorf("%w: missing sid or sub", ErrInvalidToken)
	}

	return ports.SessionToken{
		SessionID: cl.SessionID,
		Subject:   cl.Subject,
		ExpiresAt: cl.ExpiresAt.Time,
	}, nil
}
