package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/lumicrm/portalgate/internal/data/pgxutil"
	domainauth "github.com/lumicrm/portalgate/internal/domain/auth"
	apperrors "github.com/lumicrm/portalgate/internal/errors"
	"github.com/lumicrm/portalgate/internal/ports"
)

const userColumns = `id, email, first_name, last_name, role, permissions, created_at, updated_at`

// UserRepo reads and writes portal user records, including their role and permission tags.
type UserRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

var _ ports.UserDirectory = (*UserRepo)(nil)

// NewUserRepo creates a UserRepo with the real time provider.
func NewUserRepo(db *sql.DB, logger *slog.Logger) *UserRepo {
	return NewUserRepoWithTimeProvider(db, logger, &RealTimeProvider{})
}

// NewUserRepoWithTimeProvider creates a UserRepo with a custom time provider (useful for tests).
func NewUserRepoWithTimeProvider(db *sql.DB, logger *slog.Logger, tp TimeProvider) *UserRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserRepo{DB: db, timeProvider: tp, logger: logger.With("component", "user_repo")}
}

// GetAccess is the single keyed read the gate performs per request.
// Unknown permission tags and roles are dropped here so nothing downstream sees them.
func (r *UserRepo) GetAccess(ctx context.Context, userID string) (domainauth.Access, error) {
	if strings.TrimSpace(userID) == "" {
		return domainauth.Access{}, apperrors.ValidationField("id", "user id is required")
	}

	var (
		role  *string
		perms []string
	)
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, `SELECT role, permissions FROM users WHERE id = $1`, userID).
			Scan(&role, &perms)
	})
	if err != nil {
		return domainauth.Access{}, wrapUserErr(err, userID)
	}

	return domainauth.Access{
		Role:        r.parseRole(ctx, userID, role),
		Permissions: r.parsePermissions(ctx, userID, perms),
	}, nil
}

// Get returns the full user record.
func (r *UserRepo) Get(ctx context.Context, userID string) (*domainauth.User, error) {
	var u *domainauth.User
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		var scanErr error
		u, scanErr = r.scanUser(ctx, conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
		return scanErr
	})
	if err != nil {
		return nil, wrapUserErr(err, userID)
	}
	return u, nil
}

// Upsert creates the user on first sign-in and refreshes profile fields and role afterwards.
// DefaultPermissions only apply to the insert; existing permission tags are never overwritten.
func (r *UserRepo) Upsert(ctx context.Context, in ports.UpsertUserInput) (*domainauth.User, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, apperrors.ValidationField("id", "user id is required")
	}
	if !in.Role.Valid() {
		return nil, apperrors.ValidationField("role", fmt.Sprintf("unknown role %q", in.Role))
	}

	now := r.timeProvider.Now().UTC()
	defaults := in.DefaultPermissions.Strings()

	var u *domainauth.User
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		var scanErr error
		u, scanErr = r.scanUser(ctx, conn.QueryRow(ctx, `
			INSERT INTO users (id, email, first_name, last_name, role, permissions, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
			ON CONFLICT (id) DO UPDATE SET
				email = EXCLUDED.email,
				first_name = EXCLUDED.first_name,
				last_name = EXCLUDED.last_name,
				role = EXCLUDED.role,
				updated_at = EXCLUDED.updated_at
			RETURNING `+userColumns,
			in.ID, strings.TrimSpace(in.Email), strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName),
			string(in.Role), defaults, now,
		))
		return scanErr
	})
	if err != nil {
		return nil, wrapUserErr(err, in.ID)
	}
	return u, nil
}

// SetRole changes a user's role.
func (r *UserRepo) SetRole(ctx context.Context, userID string, role domainauth.Role) error {
	if !role.Valid() {
		return apperrors.ValidationField("role", fmt.Sprintf("unknown role %q", role))
	}
	return r.update(ctx, userID, `UPDATE users SET role = $2, updated_at = $3 WHERE id = $1`, string(role))
}

// SetPermissions replaces a user's permission tags.
func (r *UserRepo) SetPermissions(ctx context.Context, userID string, perms domainauth.PermissionSet) error {
	return r.update(ctx, userID, `UPDATE users SET permissions = $2, updated_at = $3 WHERE id = $1`, perms.Strings())
}

// ListUsersOptions filters and pages List.
type ListUsersOptions struct {
	Role   domainauth.Role
	Limit  int
	Offset int
}

// List returns users ordered by id.
func (r *UserRepo) List(ctx context.Context, opts ListUsersOptions) ([]*domainauth.User, error) {
	limit := opts.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := `SELECT ` + userColumns + ` FROM users`
	args := []any{limit, max(opts.Offset, 0)}
	if opts.Role != "" {
		query += ` WHERE role = $3`
		args = append(args, string(opts.Role))
	}
	query += ` ORDER BY id LIMIT $1 OFFSET $2`

	var out []*domainauth.User
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			u, err := r.scanUser(ctx, rows)
			if err != nil {
				return err
			}
			out = append(out, u)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, wrapDBErr(err, "list users")
	}
	return out, nil
}

func (r *UserRepo) update(ctx context.Context, userID, query string, value any) error {
	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, err := conn.Exec(ctx, query, userID, value, r.timeProvider.Now().UTC())
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return wrapUserErr(err, userID)
	}
	if affected == 0 {
		return apperrors.NotFoundf("user %q not found", userID)
	}
	return nil
}

func (r *UserRepo) scanUser(ctx context.Context, row pgx.Row) (*domainauth.User, error) {
	var (
		u     domainauth.User
		role  *string
		perms []string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &role, &perms, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = r.parseRole(ctx, u.ID, role)
	u.Permissions = r.parsePermissions(ctx, u.ID, perms)
	return &u, nil
}

func (r *UserRepo) parseRole(ctx context.Context, userID string, raw *string) domainauth.Role {
	if raw == nil {
		return domainauth.RoleUser
	}
	role, err := domainauth.ParseRole(*raw)
	if err != nil {
		r.logger.WarnContext(ctx, "user record has unknown role", "user_id", userID, "role", *raw)
		return domainauth.RoleUser
	}
	return role
}

func (r *UserRepo) parsePermissions(ctx context.Context, userID string, raw []string) domainauth.PermissionSet {
	set, rejected := domainauth.ParsePermissions(raw)
	if len(rejected) > 0 {
		r.logger.WarnContext(ctx, "user record has unknown permission tags",
			"user_id", userID, "rejected", rejected)
	}
	return set
}

func wrapUserErr(err error, userID string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return wrapDBErr(err, fmt.Sprintf("user %q not found", userID))
	}
	return wrapDBErr(err, fmt.Sprintf("user %q", userID))
}

// wrapDBErr maps err to an AppError and prefixes msg, keeping the mapped code.
func wrapDBErr(err error, msg string) error {
	mapped := apperrors.MapDBError(err)
	code := apperrors.GetCode(mapped)
	if code == "" {
		code = apperrors.ErrCodeInternal
	}
	return apperrors.Wrap(mapped, code, msg)
}
