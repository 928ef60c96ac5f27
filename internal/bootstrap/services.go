package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/lumicrm/portalgate/config"
	"github.com/lumicrm/portalgate/internal/data"
	"github.com/lumicrm/portalgate/internal/i18n"
	"github.com/lumicrm/portalgate/internal/observability/metrics"
	"github.com/lumicrm/portalgate/internal/policy"
	"github.com/lumicrm/portalgate/internal/service"
)

// ServiceContainer holds everything the HTTP layer needs.
type ServiceContainer struct {
	Policy      *policy.Policy
	Catalog     *i18n.Catalog
	Users       *data.UserRepo
	Auth        *service.AuthService
	Permissions *service.PermissionService
	Gate        *service.GateService
	Metrics     *Metrics
}

// ServicesConfig groups the dependencies for BuildServices.
type ServicesConfig struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Metrics     *Metrics
	Logger      *slog.Logger
}

// BuildServices loads the route policy and translations and builds the gate services.
func BuildServices(ctx context.Context, cfg ServicesConfig) (*ServiceContainer, error) {
	appCfg := cfg.Config
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.Metrics == nil {
		cfg.Metrics = &Metrics{Gate: metrics.Noop{}}
	}

	pol, err := policy.Load(appCfg.Gate.PolicyFile)
	if err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}
	logger.InfoContext(ctx, "route policy loaded",
		"source", pol.Source,
		"version", pol.Version,
		"unauthenticated", string(pol.Settings.Unauthenticated),
	)

	catalog, err := i18n.NewCatalog(i18n.Options{Default: appCfg.I18n.DefaultLanguage, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("load translations: %w", err)
	}

	users := data.NewUserRepo(cfg.DB, logger)

	authSvc, err := BuildAuthService(ctx, AuthConfig{
		Auth:        appCfg.Auth,
		Session:     appCfg.Session,
		Gate:        appCfg.Gate,
		HTTP:        appCfg.HTTP,
		RedisClient: cfg.RedisClient,
		Users:       users,
		Metrics:     cfg.Metrics.Gate,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	perms := service.NewPermissionService(service.PermissionServiceOptions{
		Store:   users,
		Timeout: appCfg.Gate.ResolveTimeout,
		Metrics: cfg.Metrics.Gate,
		Logger:  logger,
	})

	gateSvc := service.NewGateService(service.GateServiceOptions{
		Classifier:  pol.Classifier,
		Settings:    pol.Settings,
		Sessions:    authSvc,
		Permissions: perms,
		Metrics:     cfg.Metrics.Gate,
		Logger:      logger,
	})

	return &ServiceContainer{
		Policy:      pol,
		Catalog:     catalog,
		Users:       users,
		Auth:        authSvc,
		Permissions: perms,
		Gate:        gateSvc,
		Metrics:     cfg.Metrics,
	}, nil
}
