package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lumicrm/portalgate/config"
)

// Run connects to Postgres and Redis, builds the gate and serves HTTP until ctx is done.
func Run(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (err error) {
	dbCfg := DatabaseConfig{DBConfig: cfg.Postgres, RedisConfig: cfg.Redis, Logger: logger}

	db, err := ConnectDB(ctx, dbCfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close database: %w", cerr))
		}
	}()

	if cfg.Postgres.RunMigrationsOnStart {
		if err := RunMigrations(ctx, db, logger); err != nil {
			return err
		}
	}

	redisClient, err := ConnectRedis(ctx, dbCfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := redisClient.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close redis: %w", cerr))
		}
	}()

	m, err := BuildMetrics(ctx, cfg.Observability.Metrics, logger)
	if err != nil {
		return fmt.Errorf("build metrics: %w", err)
	}
	defer func() {
		if cerr := m.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close metrics: %w", cerr))
		}
	}()

	svcs, err := BuildServices(ctx, ServicesConfig{
		Config:      cfg,
		DB:          db,
		RedisClient: redisClient,
		Metrics:     m,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	httpCfg := &HTTPServerConfig{
		Config:      cfg,
		Services:    svcs,
		DB:          db,
		RedisClient: redisClient,
		Logger:      logger,
	}
	handler, err := BuildHTTPHandler(httpCfg)
	if err != nil {
		return err
	}
	return ServeHTTP(ctx, httpCfg, handler)
}
