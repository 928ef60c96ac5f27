package migrate

// Package migrate applies the embedded SQL migrations that create the user store schema.

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/lumicrm/portalgate/internal/data/pgxutil"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// lockKey serializes concurrent Run calls from several gate replicas.
const lockKey = 7_215_349_001

// Migration describes one embedded migration and whether it has been applied.
type Migration struct {
	Version   string
	AppliedAt *time.Time
}

// Run applies all pending migrations in version order. It is safe to call repeatedly
// and from several processes at once.
func Run(ctx context.Context, db *sql.DB) error {
	if err := ensureTable(ctx, db); err != nil {
		return err
	}
	versions, err := embeddedVersions()
	if err != nil {
		return err
	}

	logger := slog.Default().With("component", "migrations")
	for _, v := range versions {
		applied, err := apply(ctx, db, v)
		if err != nil {
			return err
		}
		if applied {
			logger.InfoContext(ctx, "applied migration", "version", v)
		}
	}
	return nil
}

// Status lists every embedded migration with its applied timestamp, if any.
func Status(ctx context.Context, db *sql.DB) ([]Migration, error) {
	if err := ensureTable(ctx, db); err != nil {
		return nil, err
	}
	versions, err := embeddedVersions()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT version, applied_at FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]time.Time)
	for rows.Next() {
		var v string
		var at time.Time
		if err := rows.Scan(&v, &at); err != nil {
			return nil, fmt.Errorf("scan applied migration: %w", err)
		}
		applied[v] = at
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}

	out := make([]Migration, 0, len(versions))
	for _, v := range versions {
		m := Migration{Version: v}
		if at, ok := applied[v]; ok {
			m.AppliedAt = &at
		}
		out = append(out, m)
	}
	return out, nil
}

func ensureTable(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}
	return nil
}

func embeddedVersions() ([]string, error) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	var versions []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			versions = append(versions, strings.TrimSuffix(e.Name(), ".sql"))
		}
	}
	sort.Strings(versions)
	return versions, nil
}

// apply runs one migration inside a transaction holding the advisory lock.
// It reports false when the version was already recorded.
func apply(ctx context.Context, db *sql.DB, version string) (bool, error) {
	body, err := migrationsFS.ReadFile("migrations/" + version + ".sql")
	if err != nil {
		return false, fmt.Errorf("read migration %s: %w", version, err)
	}

	var applied bool
	err = pgxutil.WithSQLTx(ctx, db, pgxutil.SQLTxConfig{Fn: func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, lockKey); err != nil {
			return fmt.Errorf("lock migrations: %w", err)
		}

		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, version,
		).Scan(&exists); err != nil {
			return fmt.Errorf("check migration %s: %w", version, err)
		}
		if exists {
			return nil
		}

		if _, err := tx.ExecContext(ctx, string(body)); err != nil {
			return fmt.Errorf("exec migration %s: %w", version, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
			return fmt.Errorf("record migration %s: %w", version, err)
		}
		applied = true
		return nil
	}})
	return applied, err
}
