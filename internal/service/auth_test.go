package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/lumicrm/portalgate/internal/adapters/authroles"
	"github.com/lumicrm/portalgate/internal/adapters/sessioncookie"
	domainauth "github.com/lumicrm/portalgate/internal/domain/auth"
	"github.com/lumicrm/portalgate/internal/mocks"
	authmocks "github.com/lumicrm/portalgate/internal/mocks/auth"
	"github.com/lumicrm/portalgate/internal/observability/metrics"
	"github.com/lumicrm/portalgate/internal/ports"
)

var authTestKey = []byte("0123456789abcdef0123456789abcdef")

type authFixture struct {
	svc      *AuthService
	provider *authmocks.MockAuthProvider
	sessions *authmocks.MemorySessionStore
	users    *authmocks.MemoryUserDirectory
	codec    *sessioncookie.Codec
	clock    *clock
	metrics  *recordingMetrics
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		provider: authmocks.NewMockAuthProvider(),
		sessions: authmocks.NewMemorySessionStore(),
		users:    authmocks.NewMemoryUserDirectory(),
		clock:    newClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)),
		metrics:  &recordingMetrics{},
	}
	f.sessions.Now = f.clock.Now

	codec, err := sessioncookie.NewCodec(sessioncookie.Config{Key: authTestKey, Now: f.clock.Now})
	require.NoError(t, err)
	f.codec = codec

	f.svc = NewAuthService(AuthServiceOptions{
		Provider:      f.provider,
		Sessions:      f.sessions,
		Roles:         authroles.StaticRoleMapper{AdminGroup: "portal-admins", DealerGroup: "portal-dealers"},
		Users:         f.users,
		Codec:         codec,
		Cookies:       CookieSettings{Name: "portal_session"},
		SessionTTL:    8 * time.Hour,
		RefreshWindow: 30 * time.Minute,
		Metrics:       f.metrics,
		Now:           f.clock.Now,
	})
	return f
}

// login signs the default user in and returns a request carrying the session cookie.
func (f *authFixture) login(t *testing.T, path string) (*http.Request, *CompleteLoginResult) {
	t.Helper()
	res, err := f.svc.CompleteLogin(context.Background(), CompleteLoginInput{Code: "c", State: "s", Nonce: "n"})
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodGet, path, nil)
	r.AddCookie(&http.Cookie{Name: "portal_session", Value: res.Token})
	return r, res
}

func TestAuthService_BeginLogin(t *testing.T) {
	f := newAuthFixture(t)

	res, err := f.svc.BeginLogin(context.Background(), BeginLoginInput{RedirectURL: "/auth/callback", LoginHint: "admin"})
	require.NoError(t, err)
	assert.Equal(t, "https://mock-idp/auth", res.AuthURL)
	assert.Equal(t, "state-1", res.State)
	assert.Equal(t, "nonce-1", res.Nonce)
	assert.Equal(t, "admin", f.provider.LastBegin().LoginHint)

	_, err = f.svc.BeginLogin(context.Background(), BeginLoginInput{})
	assert.ErrorContains(t, err, "redirect URL is required")
}

func TestAuthService_BeginLogin_ProviderError(t *testing.T) {
	f := newAuthFixture(t)
	f.provider.BeginFunc = func(context.Context, ports.BeginInput) (string, string, string, error) {
		return "", "", "", errors.New("provider error")
	}

	res, err := f.svc.BeginLogin(context.Background(), BeginLoginInput{RedirectURL: "/"})
	assert.Nil(t, res)
	assert.ErrorContains(t, err, "begin auth flow")
}

func TestAuthService_CompleteLogin_ProvisionsUserAndSession(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	res, err := f.svc.CompleteLogin(ctx, CompleteLoginInput{Code: "c", State: "s", Nonce: "n"})
	require.NoError(t, err)

	assert.Equal(t, "mock-user-1", res.Session.UserID)
	assert.Equal(t, domainauth.RoleDealer, res.Session.Role)
	assert.Equal(t, f.clock.Now().Add(8*time.Hour), res.Session.ExpiresAt)
	assert.Equal(t, 1, f.sessions.Len())

	user, err := f.users.Get(ctx, "mock-user-1")
	require.NoError(t, err)
	assert.Equal(t, domainauth.DefaultPermissions(domainauth.RoleDealer).Sorted(), user.Permissions.Sorted())

	tok, err := f.codec.Decode(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.Session.ID, tok.SessionID)
	assert.Equal(t, "mock-user-1", tok.Subject)
	assert.Equal(t, []string{metrics.ResultSuccess}, f.metrics.logins)
}

func TestAuthService_CompleteLogin_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   CompleteLoginInput
		setup   func(f *authFixture)
		wantErr string
	}{
		{"missing code", CompleteLoginInput{State: "s", Nonce: "n"}, nil, "authorization code is required"},
		{"missing state", CompleteLoginInput{Code: "c", Nonce: "n"}, nil, "state parameter is required"},
		{"missing nonce", CompleteLoginInput{Code: "c", State: "s"}, nil, "nonce parameter is required"},
		{
			"exchange fails",
			CompleteLoginInput{Code: "c", State: "s", Nonce: "n"},
			func(f *authFixture) {
				f.provider.ExchangeFunc = func(context.Context, ports.ExchangeInput) (domainauth.Identity, error) {
					return domainauth.Identity{}, errors.New("bad code")
				}
			},
			"exchange authorization code",
		},
		{
			"user store down",
			CompleteLoginInput{Code: "c", State: "s", Nonce: "n"},
			func(f *authFixture) { f.users.Err = errors.New("db down") },
			"provision user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}
			res, err := f.svc.CompleteLogin(context.Background(), tt.input)
			assert.Nil(t, res)
			assert.ErrorContains(t, err, tt.wantErr)
			assert.Equal(t, 0, f.sessions.Len())
			assert.Equal(t, []string{metrics.ResultError}, f.metrics.logins)
		})
	}
}

func TestAuthService_ResolveSession_Anonymous(t *testing.T) {
	f := newAuthFixture(t)
	r := httptest.NewRequest(http.MethodGet, "/dealer", nil)

	res, err := f.svc.ResolveSession(context.Background(), r)
	require.NoError(t, err)
	assert.Nil(t, res.Principal)
	assert.Empty(t, res.Cookies)
}

func TestAuthService_ResolveSession_ValidCookie(t *testing.T) {
	f := newAuthFixture(t)
	r, login := f.login(t, "/dealer/dashboard")

	res, err := f.svc.ResolveSession(context.Background(), r)
	require.NoError(t, err)
	require.NotNil(t, res.Principal)
	assert.Equal(t, "mock-user-1", res.Principal.ID)
	assert.Equal(t, domainauth.RoleDealer, res.Principal.Role)
	assert.Equal(t, login.Session.ID, res.Session.ID)
	assert.Empty(t, res.Cookies, "fresh sessions are not refreshed")
}

func TestAuthService_ResolveSession_ClearsStaleCookies(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, f *authFixture) *http.Request
	}{
		{
			"forged cookie",
			func(_ *testing.T, _ *authFixture) *http.Request {
				r := httptest.NewRequest(http.MethodGet, "/", nil)
				r.AddCookie(&http.Cookie{Name: "portal_session", Value: "not-a-token"})
				return r
			},
		},
		{
			"session removed server side",
			func(t *testing.T, f *authFixture) *http.Request {
				r, login := f.login(t, "/")
				require.NoError(t, f.sessions.Delete(context.Background(), login.Session.ID))
				return r
			},
		},
		{
			"session expired",
			func(t *testing.T, f *authFixture) *http.Request {
				r, _ := f.login(t, "/")
				f.clock.Advance(9 * time.Hour)
				return r
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			r := tt.setup(t, f)

			res, err := f.svc.ResolveSession(context.Background(), r)
			require.NoError(t, err)
			assert.Nil(t, res.Principal)
			require.Len(t, res.Cookies, 1)
			assert.Equal(t, "portal_session", res.Cookies[0].Name)
			assert.Equal(t, -1, res.Cookies[0].MaxAge)
		})
	}
}

func TestAuthService_ResolveSession_RefreshesNearExpiry(t *testing.T) {
	f := newAuthFixture(t)
	r, login := f.login(t, "/dealer")
	f.clock.Advance(8*time.Hour - 10*time.Minute)

	res, err := f.svc.ResolveSession(context.Background(), r)
	require.NoError(t, err)
	require.NotNil(t, res.Principal)
	require.Len(t, res.Cookies, 1)

	ck := res.Cookies[0]
	assert.Equal(t, "portal_session", ck.Name)
	assert.True(t, ck.HttpOnly)
	assert.Equal(t, int((8 * time.Hour).Seconds()), ck.MaxAge)

	tok, err := f.codec.Decode(ck.Value)
	require.NoError(t, err)
	assert.Equal(t, login.Session.ID, tok.SessionID)
	assert.Equal(t, f.clock.Now().Add(8*time.Hour).Unix(), tok.ExpiresAt.Unix())

	stored, err := f.sessions.Get(context.Background(), login.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, f.clock.Now().Add(8*time.Hour), stored.ExpiresAt)
	assert.Equal(t, []string{metrics.ResultSuccess}, f.metrics.refreshes)
}

func TestAuthService_ResolveSession_StoreErrors(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	codec, err := sessioncookie.NewCodec(sessioncookie.Config{Key: authTestKey, Now: func() time.Time { return now }})
	require.NoError(t, err)
	sess := domainauth.Session{ID: "s1", UserID: "u1", Role: domainauth.RoleAdmin, ExpiresAt: now.Add(5 * time.Minute)}
	token, err := codec.Encode(sess)
	require.NoError(t, err)

	newReq := func() *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/admin", nil)
		r.AddCookie(&http.Cookie{Name: DefaultSessionCookieName, Value: token})
		return r
	}

	t.Run("get failure is returned", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mocks.NewMockSessionStore(ctrl)
		store.EXPECT().Get(gomock.Any(), "s1").Return(domainauth.Session{}, errors.New("redis down"))
		svc := NewAuthService(AuthServiceOptions{Sessions: store, Codec: codec, Now: func() time.Time { return now }})

		res, err := svc.ResolveSession(context.Background(), newReq())
		require.ErrorContains(t, err, "redis down")
		assert.Nil(t, res.Principal)
		assert.Empty(t, res.Cookies)
	})

	t.Run("refresh failure keeps the session", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mocks.NewMockSessionStore(ctrl)
		rec := &recordingMetrics{}
		store.EXPECT().Get(gomock.Any(), "s1").Return(sess, nil)
		store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("redis read-only"))
		svc := NewAuthService(AuthServiceOptions{Sessions: store, Codec: codec, Metrics: rec, Now: func() time.Time { return now }})

		res, err := svc.ResolveSession(context.Background(), newReq())
		require.NoError(t, err)
		require.NotNil(t, res.Principal)
		assert.Equal(t, "u1", res.Principal.ID)
		assert.Empty(t, res.Cookies)
		assert.Equal(t, []string{metrics.ResultError}, rec.refreshes)
	})
}

func TestAuthService_Logout(t *testing.T) {
	f := newAuthFixture(t)
	_, login := f.login(t, "/")

	require.NoError(t, f.svc.Logout(context.Background(), login.Token))
	assert.Equal(t, 0, f.sessions.Len())

	assert.NoError(t, f.svc.Logout(context.Background(), ""))
	assert.NoError(t, f.svc.Logout(context.Background(), "garbage"))
}

func TestCookieSettings(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := CookieSettings{Domain: "portal.example"}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	ck := c.Session(r, "v", now.Add(time.Hour), now)
	assert.Equal(t, DefaultSessionCookieName, ck.Name)
	assert.Equal(t, "portal.example", ck.Domain)
	assert.Equal(t, 3600, ck.MaxAge)
	assert.False(t, ck.Secure)
	assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)

	r.Header.Set("X-Forwarded-Proto", "https")
	assert.True(t, c.Clear(r, "oauth_state").Secure)
	assert.Equal(t, -1, c.Clear(r, "oauth_state").MaxAge)

	assert.True(t, CookieSettings{Secure: true}.Temporary(httptest.NewRequest(http.MethodGet, "/", nil), "x", "y", time.Minute).Secure)
}
