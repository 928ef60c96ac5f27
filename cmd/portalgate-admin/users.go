package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/lumicrm/portalgate/internal/data"
	domainauth "github.com/lumicrm/portalgate/internal/domain/auth"
)

type userOptions struct {
	ID    string
	Role  string
	Perms []string
}

type userListOptions struct {
	Role   string
	Limit  int
	Offset int
}

// parseUserFlags parses -id plus any positional permission tags.
func parseUserFlags(name string, args []string, withRole bool) (userOptions, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts userOptions
	fs.StringVar(&opts.ID, "id", "", "User id (the identity provider subject)")
	if withRole {
		fs.StringVar(&opts.Role, "role", "", "Role: admin, dealer, celebrity, financier or user")
	}

	if err := fs.Parse(args); err != nil {
		return userOptions{}, err
	}
	opts.ID = strings.TrimSpace(opts.ID)
	if opts.ID == "" {
		return userOptions{}, errors.New("--id is required")
	}
	if withRole && strings.TrimSpace(opts.Role) == "" {
		return userOptions{}, errors.New("--role is required")
	}
	opts.Perms = splitList(fs.Args())
	return opts, nil
}

func parseUserListFlags(args []string) (userListOptions, error) {
	fs := flag.NewFlagSet("user-list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := userListOptions{Limit: 50}
	fs.StringVar(&opts.Role, "role", "", "Only list users with this role")
	fs.IntVar(&opts.Limit, "limit", 50, "Maximum number of users to list")
	fs.IntVar(&opts.Offset, "offset", 0, "Number of users to skip")

	if err := fs.Parse(args); err != nil {
		return userListOptions{}, err
	}
	if opts.Limit <= 0 {
		return userListOptions{}, errors.New("--limit must be greater than zero")
	}
	if opts.Offset < 0 {
		return userListOptions{}, errors.New("--offset cannot be negative")
	}
	return opts, nil
}

func runUserShow(cmdCtx *commandContext, args []string) error {
	opts, err := parseUserFlags("user-show", args, false)
	if err != nil {
		return err
	}
	return withUsers(cmdCtx, func(ctx context.Context, users userStore) error {
		return showUser(ctx, users, cmdCtx.Out, opts.ID)
	})
}

func runUserList(cmdCtx *commandContext, args []string) error {
	opts, err := parseUserListFlags(args)
	if err != nil {
		return err
	}
	return withUsers(cmdCtx, func(ctx context.Context, users userStore) error {
		return listUsers(ctx, users, cmdCtx.Out, opts)
	})
}

func runUserSetRole(cmdCtx *commandContext, args []string) error {
	opts, err := parseUserFlags("user-set-role", args, true)
	if err != nil {
		return err
	}
	role, err := domainauth.ParseRole(opts.Role)
	if err != nil {
		return err
	}
	return withUsers(cmdCtx, func(ctx context.Context, users userStore) error {
		if setErr := users.SetRole(ctx, opts.ID, role); setErr != nil {
			return fmt.Errorf("set role: %w", setErr)
		}
		cmdCtx.Logger.InfoContext(ctx, "user role updated", "user_id", opts.ID, "role", role)
		return showUser(ctx, users, cmdCtx.Out, opts.ID)
	})
}

func runUserGrant(cmdCtx *commandContext, args []string) error {
	return runPermissionChange(cmdCtx, "user-grant", args, domainauth.PermissionSet.Union)
}

func runUserRevoke(cmdCtx *commandContext, args []string) error {
	return runPermissionChange(cmdCtx, "user-revoke", args, domainauth.PermissionSet.Without)
}

func runPermissionChange(
	cmdCtx *commandContext,
	name string,
	args []string,
	apply func(current, change domainauth.PermissionSet) domainauth.PermissionSet,
) error {
	opts, err := parseUserFlags(name, args, false)
	if err != nil {
		return err
	}
	change, err := parsePermissionArgs(opts.Perms)
	if err != nil {
		return err
	}
	return withUsers(cmdCtx, func(ctx context.Context, users userStore) error {
		if changeErr := changePermissions(ctx, users, opts.ID, change, apply); changeErr != nil {
			return changeErr
		}
		cmdCtx.Logger.InfoContext(ctx, "user permissions updated",
			"command", name, "user_id", opts.ID, "permissions", change.Strings())
		return showUser(ctx, users, cmdCtx.Out, opts.ID)
	})
}

// parsePermissionArgs rejects unknown tags so typos never reach the store.
func parsePermissionArgs(raw []string) (domainauth.PermissionSet, error) {
	if len(raw) == 0 {
		return nil, errors.New("at least one permission tag is required")
	}
	set, rejected := domainauth.ParsePermissions(raw)
	if len(rejected) > 0 {
		return nil, fmt.Errorf("unknown permission tags: %s", strings.Join(rejected, ", "))
	}
	return set, nil
}

func changePermissions(
	ctx context.Context,
	users userStore,
	userID string,
	change domainauth.PermissionSet,
	apply func(current, change domainauth.PermissionSet) domainauth.PermissionSet,
) error {
	u, err := users.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if err := users.SetPermissions(ctx, userID, apply(u.Permissions, change)); err != nil {
		return fmt.Errorf("set permissions: %w", err)
	}
	return nil
}

func showUser(ctx context.Context, users userStore, w io.Writer, userID string) error {
	u, err := users.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	return printUser(w, u)
}

func printUser(w io.Writer, u *domainauth.User) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"ID", u.ID},
		{"Email", u.Email},
		{"Name", strings.TrimSpace(u.FirstName + " " + u.LastName)},
		{"Role", string(u.Role)},
		{"Permissions", formatPermissions(u.Permissions)},
		{"Updated", u.UpdatedAt.UTC().Format(time.RFC3339)},
	}
	for _, row := range rows {
		if err := writef(tw, "%s:\t%s\n", row[0], row[1]); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func listUsers(ctx context.Context, users userStore, w io.Writer, opts userListOptions) error {
	listOpts := data.ListUsersOptions{Limit: opts.Limit, Offset: opts.Offset}
	if opts.Role != "" {
		role, err := domainauth.ParseRole(opts.Role)
		if err != nil {
			return err
		}
		listOpts.Role = role
	}

	list, err := users.List(ctx, listOpts)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	if len(list) == 0 {
		return writef(w, "no users found\n")
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writef(tw, "ID\tEMAIL\tROLE\tPERMISSIONS\n"); err != nil {
		return err
	}
	for _, u := range list {
		if err := writef(tw, "%s\t%s\t%s\t%s\n", u.ID, u.Email, u.Role, formatPermissions(u.Permissions)); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func formatPermissions(set domainauth.PermissionSet) string {
	if len(set) == 0 {
		return "-"
	}
	return strings.Join(set.Strings(), ",")
}
