package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lumicrm/portalgate/config"
	"github.com/lumicrm/portalgate/internal/adapters/authroles"
	"github.com/lumicrm/portalgate/internal/adapters/devauth"
	"github.com/lumicrm/portalgate/internal/adapters/oidc"
	redisadapter "github.com/lumicrm/portalgate/internal/adapters/redis"
	"github.com/lumicrm/portalgate/internal/adapters/sessioncookie"
	"github.com/lumicrm/portalgate/internal/observability/metrics"
	"github.com/lumicrm/portalgate/internal/ports"
	"github.com/lumicrm/portalgate/internal/service"
)

// AuthConfig contains configuration for the auth service.
type AuthConfig struct {
	Auth        config.AuthConfig
	Session     config.SessionConfig
	Gate        config.GateConfig
	HTTP        config.HTTPConfig
	RedisClient redis.UniversalClient
	Users       ports.UserDirectory
	Metrics     metrics.GateMetrics
	Logger      *slog.Logger
}

// BuildAuthService wires the configured provider, the Redis session store and the
// cookie codec into an AuthService.
func BuildAuthService(ctx context.Context, cfg AuthConfig) (*service.AuthService, error) {
	if cfg.RedisClient == nil {
		return nil, fmt.Errorf("auth service requires a redis client")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	roles := RoleMapper(cfg.Auth)

	provider, err := BuildAuthProvider(ctx, cfg.Auth, cfg.Session.TTL, logger)
	if err != nil {
		return nil, err
	}

	codec, err := BuildSessionCodec(cfg.Session, logger)
	if err != nil {
		return nil, err
	}

	return service.NewAuthService(service.AuthServiceOptions{
		Provider: provider,
		Sessions: redisadapter.NewSessionStore(cfg.RedisClient, redisadapter.WithPrefix(cfg.Session.KeyPrefix)),
		Roles:    roles,
		Users:    cfg.Users,
		Codec:    codec,
		Cookies: service.CookieSettings{
			Name:   cfg.Session.CookieName,
			Domain: cfg.HTTP.CookieDomain,
			Secure: cfg.Session.SecureCookies,
		},
		SessionTTL:    cfg.Session.TTL,
		RefreshWindow: cfg.Session.RefreshWindow,
		Timeout:       cfg.Gate.ResolveTimeout,
		Metrics:       cfg.Metrics,
		Logger:        logger,
	}), nil
}

// RoleMapper maps the configured IdP groups to portal roles.
func RoleMapper(cfg config.AuthConfig) authroles.StaticRoleMapper {
	return authroles.StaticRoleMapper{
		AdminGroup:     cfg.AdminGroup,
		FinancierGroup: cfg.FinancierGroup,
		DealerGroup:    cfg.DealerGroup,
		CelebrityGroup: cfg.CelebrityGroup,
	}
}

// BuildAuthProvider returns the OIDC provider or, in mock mode, the persona provider.
//
//nolint:ireturn // the provider kind is chosen at runtime.
func BuildAuthProvider(ctx context.Context, cfg config.AuthConfig, sessionTTL time.Duration, logger *slog.Logger) (ports.AuthProvider, error) {
	switch cfg.Mode {
	case config.AuthModeMock:
		logger.WarnContext(ctx, "mock sign-in enabled; do not use in production",
			"default_persona", cfg.DevAuth.DefaultPersona)
		prov, err := devauth.NewProvider(devauth.Config{
			Personas:        devauth.DefaultPersonas(cfg.AdminGroup, cfg.FinancierGroup, cfg.DealerGroup, cfg.CelebrityGroup),
			DefaultPersona:  cfg.DevAuth.DefaultPersona,
			SessionDuration: sessionTTL,
		})
		if err != nil {
			return nil, fmt.Errorf("build dev auth provider: %w", err)
		}
		return prov, nil

	case config.AuthModeOAuth:
		o := cfg.OAuth
		prov, err := oidc.NewProvider(ctx, oidc.ProviderConfig{
			ClientID:     o.ClientID,
			ClientSecret: o.ClientSecret,
			RedirectURL:  o.RedirectURL,
			Scope:        o.Scope,
			DiscoveryURL: o.DiscoveryURL,
			Claims: oidc.ClaimsConfig{
				UserIDExpr:     o.UserIDExpr,
				EmailExpr:      o.EmailExpr,
				GivenNameExpr:  o.GivenNameExpr,
				FamilyNameExpr: o.FamilyNameExpr,
				GroupsExpr:     o.GroupsExpr,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("build oidc provider: %w", err)
		}
		logger.InfoContext(ctx, "oidc provider ready", "discovery_url", o.DiscoveryURL)
		return prov, nil

	default:
		return nil, fmt.Errorf("unsupported auth mode %q", cfg.Mode)
	}
}

// BuildSessionCodec returns the cookie signer. Without a configured key a random one
// is generated, so sessions do not survive a restart.
func BuildSessionCodec(cfg config.SessionConfig, logger *slog.Logger) (*sessioncookie.Codec, error) {
	key := []byte(cfg.SigningKey)
	if len(key) == 0 {
		var err error
		if key, err = sessioncookie.RandomKey(); err != nil {
			return nil, err
		}
		if logger != nil {
			logger.Warn("SESSION_SIGNING_KEY not set; using a random key for this process")
		}
	}
	codec, err := sessioncookie.NewCodec(sessioncookie.Config{Key: key, Leeway: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("build session codec: %w", err)
	}
	return codec, nil
}
