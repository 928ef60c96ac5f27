package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeOAuth uses OAuth/OIDC for authentication.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeMock signs in as a configured persona (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "oauth", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oauth, mock)", v)
	}
}

// OAuthConfig contains OAuth/OIDC configuration.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email groups"`
	DiscoveryURL string `env:"DISCOVERY_URL"`

	// JMESPath expressions locating identity fields in ID token or userinfo claims.
	// Empty values use the provider defaults.
	UserIDExpr     string `env:"USER_ID_EXPR"`
	EmailExpr      string `env:"EMAIL_EXPR"`
	GivenNameExpr  string `env:"GIVEN_NAME_EXPR"`
	FamilyNameExpr string `env:"FAMILY_NAME_EXPR"`
	GroupsExpr     string `env:"GROUPS_EXPR"`
}

// Validate checks the settings OIDC discovery cannot work without.
func (c OAuthConfig) Validate() error {
	var missing []string
	if c.ClientID == "" {
		missing = append(missing, "OAUTH_CLIENT_ID")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "OAUTH_CLIENT_SECRET")
	}
	if c.DiscoveryURL == "" {
		missing = append(missing, "OAUTH_DISCOVERY_URL")
	}
	if c.RedirectURL == "" {
		missing = append(missing, "OAUTH_REDIRECT_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("oauth mode requires %s", strings.Join(missing, ", "))
	}
	return nil
}

// DevAuthConfig controls mock sign-in. Used when AUTH_MODE=mock.
type DevAuthConfig struct {
	// DefaultPersona is used when /auth/login carries no ?as= hint.
	DefaultPersona string `env:"DEFAULT_PERSONA" envDefault:"dealer"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which authentication provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oauth"`

	// OAuth configuration (used when Mode=oauth).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// IdP groups mapped to portal roles. Members of none of them are plain users.
	AdminGroup     string `env:"ADMIN_GROUP"     envDefault:"portal-admins"`
	FinancierGroup string `env:"FINANCIER_GROUP" envDefault:"portal-financiers"`
	DealerGroup    string `env:"DEALER_GROUP"    envDefault:"portal-dealers"`
	CelebrityGroup string `env:"CELEBRITY_GROUP" envDefault:"portal-celebrities"`
}

// Sanitize trims group names so stray whitespace in env files cannot disable a mapping.
func (c *AuthConfig) Sanitize() {
	c.AdminGroup = strings.TrimSpace(c.AdminGroup)
	c.FinancierGroup = strings.TrimSpace(c.FinancierGroup)
	c.DealerGroup = strings.TrimSpace(c.DealerGroup)
	c.CelebrityGroup = strings.TrimSpace(c.CelebrityGroup)
	c.OAuth.DiscoveryURL = strings.TrimSpace(c.OAuth.DiscoveryURL)
	c.DevAuth.DefaultPersona = strings.ToLower(strings.TrimSpace(c.DevAuth.DefaultPersona))
}

const minSigningKeyLength = 32

// SessionConfig controls the session cookie and its server-side record.
type SessionConfig struct {
	CookieName string `env:"COOKIE_NAME" envDefault:"portal_session"`
	// SigningKey signs session cookies. Empty generates a per-process key (development only).
	SigningKey    string        `env:"SIGNING_KEY"`
	TTL           time.Duration `env:"TTL"            envDefault:"8h"`
	RefreshWindow time.Duration `env:"REFRESH_WINDOW" envDefault:"30m"`
	// KeyPrefix namespaces session keys in Redis.
	KeyPrefix string `env:"KEY_PREFIX" envDefault:"portal:session:"`
	// SecureCookies forces the Secure attribute even on plain HTTP requests.
	SecureCookies bool `env:"SECURE_COOKIES" envDefault:"false"`
}

// Sanitize applies defaults to out-of-range values.
func (c *SessionConfig) Sanitize() {
	c.CookieName = strings.TrimSpace(c.CookieName)
	if c.CookieName == "" {
		c.CookieName = "portal_session"
	}
	if c.TTL <= 0 {
		c.TTL = 8 * time.Hour
	}
	if c.RefreshWindow <= 0 || c.RefreshWindow >= c.TTL {
		c.RefreshWindow = min(30*time.Minute, c.TTL/2)
	}
}

// Validate checks the signing key length.
func (c SessionConfig) Validate() error {
	if c.SigningKey != "" && len(c.SigningKey) < minSigningKeyLength {
		return errors.New("SESSION_SIGNING_KEY must be at least 32 bytes")
	}
	return nil
}
