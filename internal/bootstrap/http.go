package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/lumicrm/portalgate/config"
	httpx "github.com/lumicrm/portalgate/internal/http"
)

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config      *config.AppConfig
	Services    *ServiceContainer
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// BuildHTTPHandler assembles the router for the configured services.
func BuildHTTPHandler(cfg *HTTPServerConfig) (http.Handler, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	svcs := cfg.Services

	var upstream http.Handler
	if appCfg.HTTP.UpstreamURL != "" {
		proxy, err := httpx.NewUpstream(httpx.UpstreamOptions{URL: appCfg.HTTP.UpstreamURL, Logger: logger})
		if err != nil {
			return nil, err
		}
		upstream = proxy
	} else {
		logger.Warn("UPSTREAM_URL not set; serving gate pages only")
	}

	readiness := map[string]httpx.ReadinessCheck{}
	if cfg.DB != nil {
		readiness["postgres"] = cfg.DB.PingContext
	}
	if cfg.RedisClient != nil {
		client := cfg.RedisClient
		readiness["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	}

	var metricsHandler http.Handler
	if svcs.Metrics != nil {
		metricsHandler = svcs.Metrics.Handler
	}

	return httpx.NewRouter(httpx.RouterServices{
		Gate:           svcs.Gate,
		Settings:       svcs.Policy.Settings,
		Exclude:        svcs.Policy.Exclude,
		Auth:           svcs.Auth,
		Permissions:    svcs.Permissions,
		Catalog:        svcs.Catalog,
		Upstream:       upstream,
		Metrics:        metricsHandler,
		Readiness:      readiness,
		LanguageCookie: appCfg.I18n.LanguageCookie,
		Logger:         logger,
	}), nil
}

// ServeHTTP listens on the configured address until ctx is cancelled, then drains
// in-flight requests within HTTP_SHUTDOWN_TIMEOUT.
func ServeHTTP(ctx context.Context, cfg *HTTPServerConfig, handler http.Handler) error {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	httpCfg := cfg.Config.HTTP

	server := &http.Server{
		Addr:              httpCfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: httpCfg.ReadTimeout,
		ReadTimeout:       httpCfg.ReadTimeout,
		WriteTimeout:      httpCfg.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.InfoContext(gctx, "starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), httpCfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		logger.Info("HTTP server stopped")
		return nil
	})
	return g.Wait()
}
