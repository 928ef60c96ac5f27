package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/lumicrm/portalgate/config"
	"github.com/lumicrm/portalgate/internal/bootstrap"
	"github.com/lumicrm/portalgate/internal/data"
	domainauth "github.com/lumicrm/portalgate/internal/domain/auth"
	"github.com/lumicrm/portalgate/internal/migrate"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	Out    io.Writer
}

// userStore is the subset of the user repository the admin commands need.
type userStore interface {
	Get(ctx context.Context, userID string) (*domainauth.User, error)
	List(ctx context.Context, opts data.ListUsersOptions) ([]*domainauth.User, error)
	SetRole(ctx context.Context, userID string, role domainauth.Role) error
	SetPermissions(ctx context.Context, userID string, perms domainauth.PermissionSet) error
}

const (
	defaultMigrationTimeout = 5 * time.Minute
	defaultCommandTimeout   = 30 * time.Second
)

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		Config: cfg,
		Out:    os.Stdout,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"migrate": {
			name:        "migrate",
			description: "Run database migrations (-status lists them instead)",
			run:         runMigrations,
		},
		"user-show": {
			name:        "user-show",
			description: "Show a user's role and permission tags",
			run:         runUserShow,
		},
		"user-list": {
			name:        "user-list",
			description: "List users, optionally filtered by role",
			run:         runUserList,
		},
		"user-set-role": {
			name:        "user-set-role",
			description: "Change a user's role",
			run:         runUserSetRole,
		},
		"user-grant": {
			name:        "user-grant",
			description: "Add permission tags to a user",
			run:         runUserGrant,
		},
		"user-revoke": {
			name:        "user-revoke",
			description: "Remove permission tags from a user",
			run:         runUserRevoke,
		},
		"policy-check": {
			name:        "policy-check",
			description: "Validate a route policy file",
			run:         runPolicyCheck,
		},
		"policy-explain": {
			name:        "policy-explain",
			description: "Show the gate decision for a path and a hypothetical caller",
			run:         runPolicyExplain,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: portalgate-admin <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(w, "Available commands:\n"); err != nil {
		return err
	}
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writef(w, "  %-18s %s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return nil
}

type migrateOptions struct {
	Timeout time.Duration
	Status  bool
}

func parseMigrateFlags(args []string) (migrateOptions, error) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := migrateOptions{Timeout: defaultMigrationTimeout}
	fs.DurationVar(&opts.Timeout, "timeout", defaultMigrationTimeout, "Maximum duration to wait for migrations to complete")
	fs.BoolVar(&opts.Status, "status", false, "List migrations and their applied time without changing anything")

	if err := fs.Parse(args); err != nil {
		return migrateOptions{}, err
	}
	if opts.Timeout <= 0 {
		return migrateOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func runMigrations(cmdCtx *commandContext, args []string) error {
	opts, err := parseMigrateFlags(args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		if opts.Status {
			list, statusErr := migrate.Status(ctx, db)
			if statusErr != nil {
				return fmt.Errorf("migration status: %w", statusErr)
			}
			return printMigrations(cmdCtx.Out, list)
		}

		cmdCtx.Logger.Info("running database migrations")
		if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
			return migrateErr
		}
		cmdCtx.Logger.Info("migrations completed successfully")
		return nil
	})
}

func printMigrations(w io.Writer, list []migrate.Migration) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writef(tw, "VERSION\tAPPLIED\n"); err != nil {
		return err
	}
	for _, m := range list {
		applied := "pending"
		if m.AppliedAt != nil {
			applied = m.AppliedAt.UTC().Format(time.RFC3339)
		}
		if err := writef(tw, "%s\t%s\n", m.Version, applied); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func withDatabase(
	cmdCtx *commandContext,
	timeout time.Duration,
	f func(context.Context, *sql.DB) error,
) error {
	ctx, stop := signal.NotifyContext(cmdCtx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	db, err := bootstrap.ConnectDB(ctx, bootstrap.DatabaseConfig{
		DBConfig: cmdCtx.Config.Postgres,
		Logger:   cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			cmdCtx.Logger.Warn("db close failed", "error", cerr)
		}
	}()

	return f(ctx, db)
}

func withUsers(cmdCtx *commandContext, f func(context.Context, userStore) error) error {
	return withDatabase(cmdCtx, defaultCommandTimeout, func(ctx context.Context, db *sql.DB) error {
		return f(ctx, data.NewUserRepo(db, cmdCtx.Logger))
	})
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

// splitList accepts repeated and comma separated values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
