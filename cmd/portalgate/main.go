package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lumicrm/portalgate/config"
	"github.com/lumicrm/portalgate/internal/bootstrap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		stop()
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	logStartupInfo(ctx, logger, &cfg)

	return bootstrap.Run(ctx, &cfg, logger)
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting portalgate",
		"addr", cfg.HTTP.Addr,
		"auth_mode", cfg.Auth.Mode,
		"dev", cfg.IsDev,
		"upstream", cfg.HTTP.UpstreamURL != "",
		"policy_file", cfg.Gate.PolicyFile,
		"db_host", cfg.Postgres.Host,
		"db_name", cfg.Postgres.Name)
}
