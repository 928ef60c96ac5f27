package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumicrm/portalgate/internal/data"
	domainauth "github.com/lumicrm/portalgate/internal/domain/auth"
	"github.com/lumicrm/portalgate/internal/migrate"
	"github.com/lumicrm/portalgate/internal/policy"
)

type fakeUserStore struct {
	users    map[string]*domainauth.User
	listOpts data.ListUsersOptions
}

func newFakeUserStore(users ...*domainauth.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[string]*domainauth.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

var errUserMissing = errors.New("user not found")

func (s *fakeUserStore) Get(_ context.Context, id string) (*domainauth.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, errUserMissing
	}
	cp := *u
	return &cp, nil
}

func (s *fakeUserStore) List(_ context.Context, opts data.ListUsersOptions) ([]*domainauth.User, error) {
	s.listOpts = opts
	var out []*domainauth.User
	for _, u := range s.users {
		if opts.Role == "" || u.Role == opts.Role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *fakeUserStore) SetRole(_ context.Context, id string, role domainauth.Role) error {
	u, ok := s.users[id]
	if !ok {
		return errUserMissing
	}
	u.Role = role
	return nil
}

func (s *fakeUserStore) SetPermissions(_ context.Context, id string, perms domainauth.PermissionSet) error {
	u, ok := s.users[id]
	if !ok {
		return errUserMissing
	}
	u.Permissions = perms
	return nil
}

func TestPrintUsageListsCommands(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printUsage(&buf))

	out := buf.String()
	for name := range commands() {
		assert.Contains(t, out, name)
	}
	assert.Less(t, strings.Index(out, "migrate"), strings.Index(out, "user-list"))
}

func TestParseMigrateFlags(t *testing.T) {
	opts, err := parseMigrateFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, defaultMigrationTimeout, opts.Timeout)
	assert.False(t, opts.Status)

	opts, err = parseMigrateFlags([]string{"-status", "-timeout", "10s"})
	require.NoError(t, err)
	assert.True(t, opts.Status)
	assert.Equal(t, 10*time.Second, opts.Timeout)

	_, err = parseMigrateFlags([]string{"-timeout", "0s"})
	assert.Error(t, err)
}

func TestPrintMigrations(t *testing.T) {
	at := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)
	var buf bytes.Buffer
	require.NoError(t, printMigrations(&buf, []migrate.Migration{
		{Version: "0001_users", AppliedAt: &at},
		{Version: "0002_user_permissions_index"},
	}))

	out := buf.String()
	assert.Contains(t, out, "0001_users")
	assert.Contains(t, out, "2026-04-02T09:30:00Z")
	assert.Contains(t, out, "pending")
}

func TestParseUserFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		withRole bool
		want     userOptions
		wantErr  bool
	}{
		{name: "id only", args: []string{"-id", "u1"}, want: userOptions{ID: "u1"}},
		{name: "permissions", args: []string{"-id", "u1", "finance,bonuses", "orders"}, want: userOptions{ID: "u1", Perms: []string{"finance", "bonuses", "orders"}}},
		{name: "role", args: []string{"-id", "u1", "-role", "financier"}, withRole: true, want: userOptions{ID: "u1", Role: "financier"}},
		{name: "missing id", args: []string{"finance"}, wantErr: true},
		{name: "missing role", args: []string{"-id", "u1"}, withRole: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseUserFlags("test", tt.args, tt.withRole)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseUserListFlags(t *testing.T) {
	opts, err := parseUserListFlags([]string{"-role", "dealer", "-limit", "10", "-offset", "20"})
	require.NoError(t, err)
	assert.Equal(t, userListOptions{Role: "dealer", Limit: 10, Offset: 20}, opts)

	_, err = parseUserListFlags([]string{"-limit", "0"})
	assert.Error(t, err)
	_, err = parseUserListFlags([]string{"-offset", "-1"})
	assert.Error(t, err)
}

func TestParsePermissionArgs(t *testing.T) {
	set, err := parsePermissionArgs([]string{"Finance", "orders"})
	require.NoError(t, err)
	assert.Equal(t, domainauth.NewPermissionSet(domainauth.PermFinance, domainauth.PermOrders), set)

	_, err = parsePermissionArgs([]string{"finance", "root"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "root")

	_, err = parsePermissionArgs(nil)
	assert.Error(t, err)
}

func TestChangePermissions(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore(&domainauth.User{
		ID:          "u1",
		Role:        domainauth.RoleFinancier,
		Permissions: domainauth.NewPermissionSet(domainauth.PermFinance),
	})

	require.NoError(t, changePermissions(ctx, store, "u1",
		domainauth.NewPermissionSet(domainauth.PermBonuses, domainauth.PermFinance), domainauth.PermissionSet.Union))
	assert.Equal(t, []string{"bonuses", "finance"}, store.users["u1"].Permissions.Strings())

	require.NoError(t, changePermissions(ctx, store, "u1",
		domainauth.NewPermissionSet(domainauth.PermFinance), domainauth.PermissionSet.Without))
	assert.Equal(t, []string{"bonuses"}, store.users["u1"].Permissions.Strings())

	err := changePermissions(ctx, store, "missing", domainauth.NewPermissionSet(domainauth.PermFinance), domainauth.PermissionSet.Union)
	assert.ErrorIs(t, err, errUserMissing)
}

func TestShowUser(t *testing.T) {
	store := newFakeUserStore(&domainauth.User{
		ID:          "u1",
		Email:       "anna@example.com",
		FirstName:   "Anna",
		LastName:    "Petrova",
		Role:        domainauth.RoleAdmin,
		Permissions: domainauth.NewPermissionSet(domainauth.PermAll),
	})

	var buf bytes.Buffer
	require.NoError(t, showUser(context.Background(), store, &buf, "u1"))
	out := buf.String()
	assert.Contains(t, out, "anna@example.com")
	assert.Contains(t, out, "Anna Petrova")
	assert.Contains(t, out, "admin")
	assert.Contains(t, out, "all")

	assert.ErrorIs(t, showUser(context.Background(), store, &buf, "nobody"), errUserMissing)
}

func TestListUsers(t *testing.T) {
	store := newFakeUserStore(
		&domainauth.User{ID: "d1", Email: "dealer@example.com", Role: domainauth.RoleDealer},
		&domainauth.User{ID: "a1", Email: "admin@example.com", Role: domainauth.RoleAdmin, Permissions: domainauth.NewPermissionSet(domainauth.PermAll)},
	)

	var buf bytes.Buffer
	require.NoError(t, listUsers(context.Background(), store, &buf, userListOptions{Role: "Dealer", Limit: 5}))
	assert.Equal(t, domainauth.RoleDealer, store.listOpts.Role)
	assert.Equal(t, 5, store.listOpts.Limit)
	assert.Contains(t, buf.String(), "dealer@example.com")
	assert.NotContains(t, buf.String(), "admin@example.com")

	buf.Reset()
	require.NoError(t, listUsers(context.Background(), store, &buf, userListOptions{Role: "celebrity", Limit: 5}))
	assert.Equal(t, "no users found\n", buf.String())

	assert.Error(t, listUsers(context.Background(), store, &buf, userListOptions{Role: "root", Limit: 5}))
}

func TestParsePolicyExplainFlags(t *testing.T) {
	opts, err := parsePolicyExplainFlags([]string{"-perm", "finance", "-perm", "orders,bonuses", "/admin/finance", "/dealer"})
	require.NoError(t, err)
	assert.Equal(t, []string{"finance", "orders", "bonuses"}, opts.Perms)
	assert.Equal(t, []string{"/admin/finance", "/dealer"}, opts.Paths)
	assert.False(t, opts.Anonymous)

	_, err = parsePolicyExplainFlags([]string{"-anonymous"})
	assert.Error(t, err)

	_, err = parsePolicyExplainFlags([]string{"-anonymous", "-perm", "finance", "/admin"})
	assert.Error(t, err)
}

func TestExplainPaths(t *testing.T) {
	p, err := policy.Default()
	require.NoError(t, err)

	tests := []struct {
		name  string
		opts  policyExplainOptions
		wants []string
	}{
		{
			name:  "anonymous admin is hidden",
			opts:  policyExplainOptions{Anonymous: true, Paths: []string{"/admin/finance"}},
			wants: []string{"protected", "finance", "rewrite_not_found", "/not-found", "unauthenticated"},
		},
		{
			name:  "finance grants finance",
			opts:  policyExplainOptions{Perms: []string{"finance"}, Paths: []string{"/admin/finance/reports"}},
			wants: []string{"allow", "permitted"},
		},
		{
			name:  "warehouse cannot see finance",
			opts:  policyExplainOptions{Perms: []string{"warehouse"}, Paths: []string{"/admin/finance"}},
			wants: []string{"rewrite_not_found", "forbidden"},
		},
		{
			name:  "signed in user leaves sign-in",
			opts:  policyExplainOptions{Paths: []string{"/signin"}},
			wants: []string{"auth_only", "redirect_home"},
		},
		{
			name:  "static assets are excluded",
			opts:  policyExplainOptions{Anonymous: true, Paths: []string{"/_next/static/chunk.js"}},
			wants: []string{"excluded", "allow"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, explainPaths(&buf, p, tt.opts))
			for _, want := range tt.wants {
				assert.Contains(t, buf.String(), want)
			}
		})
	}

	var buf bytes.Buffer
	assert.Error(t, explainPaths(&buf, p, policyExplainOptions{Perms: []string{"superuser"}, Paths: []string{"/admin"}}))
}

func TestPolicyCheck(t *testing.T) {
	cmdCtx := &commandContext{Ctx: context.Background()}

	var buf bytes.Buffer
	cmdCtx.Out = &buf
	require.NoError(t, runPolicyCheck(cmdCtx, nil))
	assert.Contains(t, buf.String(), "embedded:default.yaml")
	assert.Contains(t, buf.String(), "is valid")

	bad := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("version: 1\nroutes: nope\n"), 0o600))
	assert.Error(t, runPolicyCheck(cmdCtx, []string{bad}))
}
