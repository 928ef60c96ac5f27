package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: sign-in provider and session configuration
//   - gate.go: route policy and resolver configuration
//   - database.go: Postgres and Redis configuration
//   - http.go: HTTP server and upstream configuration
//   - observability.go: metrics sinks
type AppConfig struct {
	// IsDev relaxes production guardrails (mock sign-in, random signing key).
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	Auth    AuthConfig
	Session SessionConfig `envPrefix:"SESSION_"`
	Gate    GateConfig    `envPrefix:"GATE_"`

	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	HTTP HTTPConfig

	I18n I18nConfig `envPrefix:"I18N_"`

	Observability ObservabilityConfig
}

// I18nConfig selects the fallback language for gate-rendered pages.
type I18nConfig struct {
	DefaultLanguage string `env:"DEFAULT_LANGUAGE" envDefault:"en"`
	// LanguageCookie overrides Accept-Language when it names a supported language.
	LanguageCookie string `env:"LANGUAGE_COOKIE" envDefault:"lang"`
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.detectDevMode()

	c.HTTP.Sanitize()
	c.Session.Sanitize()
	c.Gate.Sanitize()
	c.Auth.Sanitize()
	c.Observability.Sanitize()

	c.I18n.DefaultLanguage = strings.ToLower(strings.TrimSpace(c.I18n.DefaultLanguage))
	if c.I18n.DefaultLanguage == "" {
		c.I18n.DefaultLanguage = "en"
	}
}

// Validate reports configuration that cannot run safely. Call it after Sanitize.
func (c *AppConfig) Validate() error {
	var errs []error
	if c.Auth.Mode == AuthModeMock && !c.IsDev {
		errs = append(errs, errors.New("AUTH_MODE=mock requires DEV=true"))
	}
	if c.Session.SigningKey == "" && !c.IsDev {
		errs = append(errs, errors.New("SESSION_SIGNING_KEY is required outside development"))
	}
	if err := c.Session.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Auth.Mode == AuthModeOAuth {
		if err := c.Auth.OAuth.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}
