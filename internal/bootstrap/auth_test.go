package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/lumicrm/portalgate/config"
	"github.com/lumicrm/portalgate/internal/adapters/devauth"
	domainauth "github.com/lumicrm/portalgate/internal/domain/auth"
	authmocks "github.com/lumicrm/portalgate/internal/mocks/auth"
	"github.com/lumicrm/portalgate/internal/ports"
	"github.com/lumicrm/portalgate/internal/service"
	"github.com/lumicrm/portalgate/internal/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildAuthServiceRequiresRedis(t *testing.T) {
	_, err := BuildAuthService(context.Background(), AuthConfig{
		Auth:   config.AuthConfig{Mode: config.AuthModeMock},
		Logger: discardLogger(),
	})
	if err == nil {
		t.Fatal("expected error without redis client")
	}
}

func TestBuildAuthService_MockMode(t *testing.T) {
	client, _ := testutil.NewMiniRedis(t)
	users := authmocks.NewMemoryUserDirectory()

	svc, err := BuildAuthService(context.Background(), AuthConfig{
		Auth: config.AuthConfig{
			Mode:        config.AuthModeMock,
			AdminGroup:  "portal-admins",
			DealerGroup: "portal-dealers",
			DevAuth:     config.DevAuthConfig{DefaultPersona: "admin"},
		},
		Session:     config.SessionConfig{CookieName: "gate_sid", TTL: time.Hour, RefreshWindow: 10 * time.Minute, KeyPrefix: "t:session:"},
		Gate:        config.GateConfig{ResolveTimeout: time.Second},
		HTTP:        config.HTTPConfig{CookieDomain: "portal.example.com"},
		RedisClient: client,
		Users:       users,
		Logger:      discardLogger(),
	})
	if err != nil {
		t.Fatalf("BuildAuthService() error = %v", err)
	}

	if got := svc.Cookies().SessionName(); got != "gate_sid" {
		t.Fatalf("cookie name = %q, want gate_sid", got)
	}
	if got := svc.Cookies().Domain; got != "portal.example.com" {
		t.Fatalf("cookie domain = %q", got)
	}

	begin, err := svc.BeginLogin(context.Background(), service.BeginLoginInput{RedirectURL: "/admin"})
	if err != nil {
		t.Fatalf("BeginLogin() error = %v", err)
	}
	if !strings.Contains(begin.AuthURL, "code=admin") {
		t.Fatalf("expected dev provider to pick the default persona, got %q", begin.AuthURL)
	}
}

func TestBuildAuthProvider(t *testing.T) {
	ctx := context.Background()

	prov, err := BuildAuthProvider(ctx, config.AuthConfig{Mode: config.AuthModeMock, DevAuth: config.DevAuthConfig{DefaultPersona: "dealer"}}, time.Hour, discardLogger())
	if err != nil {
		t.Fatalf("mock provider: %v", err)
	}
	if _, ok := prov.(*devauth.Provider); !ok {
		t.Fatalf("expected *devauth.Provider, got %T", prov)
	}

	if _, err := BuildAuthProvider(ctx, config.AuthConfig{Mode: config.AuthModeMock, DevAuth: config.DevAuthConfig{DefaultPersona: "ghost"}}, time.Hour, discardLogger()); err == nil {
		t.Fatal("expected unknown persona to fail")
	}

	if _, err := BuildAuthProvider(ctx, config.AuthConfig{Mode: "saml"}, time.Hour, discardLogger()); err == nil {
		t.Fatal("expected unsupported mode to fail")
	}

	if _, err := BuildAuthProvider(ctx, config.AuthConfig{Mode: config.AuthModeOAuth}, time.Hour, discardLogger()); err == nil {
		t.Fatal("expected incomplete oauth config to fail")
	}
}

func TestBuildSessionCodec(t *testing.T) {
	codec, err := BuildSessionCodec(config.SessionConfig{}, discardLogger())
	if err != nil {
		t.Fatalf("random key: %v", err)
	}
	raw, err := codec.Encode(domainauth.Session{ID: "s", UserID: "u", ExpiresAt: time.Now().Add(time.Hour)})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := codec.Decode(raw); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if _, err := BuildSessionCodec(config.SessionConfig{SigningKey: "short"}, discardLogger()); err == nil {
		t.Fatal("expected short key to fail")
	}
}

func TestRoleMapper(t *testing.T) {
	m := RoleMapper(config.AuthConfig{AdminGroup: "a", FinancierGroup: "f", DealerGroup: "d", CelebrityGroup: "c"})
	cases := map[string]domainauth.Role{
		"a": domainauth.RoleAdmin,
		"f": domainauth.RoleFinancier,
		"d": domainauth.RoleDealer,
		"c": domainauth.RoleCelebrity,
		"x": domainauth.RoleUser,
	}
	for group, want := range cases {
		if got := m.Map([]string{group}); got != want {
			t.Errorf("Map(%q) = %q, want %q", group, got, want)
		}
	}
}

var _ ports.RoleMapper = RoleMapper(config.AuthConfig{})
