package service

import (
	"net/http"
	"strings"
	"time"
)

// DefaultSessionCookieName is used when CookieSettings.Name is empty.
const DefaultSessionCookieName = "portal_session"

// CookieSettings describes how session and flow cookies are written.
// Secure forces the Secure attribute; otherwise it follows the request scheme.
type CookieSettings struct {
	Name   string
	Domain string
	Secure bool
}

// SessionName returns the configured session cookie name.
func (c CookieSettings) SessionName() string {
	if c.Name == "" {
		return DefaultSessionCookieName
	}
	return c.Name
}

// Session builds the session cookie carrying value until expiresAt.
func (c CookieSettings) Session(r *http.Request, value string, expiresAt, now time.Time) *http.Cookie {
	maxAge := int(expiresAt.Sub(now).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	return c.build(r, c.SessionName(), value, maxAge)
}

// Temporary builds a short-lived cookie used during the sign-in round trip.
func (c CookieSettings) Temporary(r *http.Request, name, value string, ttl time.Duration) *http.Cookie {
	return c.build(r, name, value, int(ttl.Seconds()))
}

// Clear builds a cookie that deletes name. Attributes mirror the ones used when
// setting it so every browser drops it.
func (c CookieSettings) Clear(r *http.Request, name string) *http.Cookie {
	ck := c.build(r, name, "", -1)
	ck.Expires = time.Unix(0, 0).UTC()
	return ck
}

func (c CookieSettings) build(r *http.Request, name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   c.Secure || IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
}

// IsSecureRequest reports whether r arrived over TLS, directly or via a proxy.
func IsSecureRequest(r *http.Request) bool {
	if r == nil {
		return false
	}
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
