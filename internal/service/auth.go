package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/lumicrm/portalgate/internal/domain/auth"
	"github.com/lumicrm/portalgate/internal/observability/metrics"
	"github.com/lumicrm/portalgate/internal/ports"
)

// Session lifetime defaults.
const (
	DefaultSessionTTL    = 8 * time.Hour
	DefaultRefreshWindow = 30 * time.Minute
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider ports.AuthProvider
	Sessions ports.SessionStore
	Roles    ports.RoleMapper
	Users    ports.UserDirectory
	Codec    ports.SessionCodec
	Cookies  CookieSettings

	SessionTTL    time.Duration
	RefreshWindow time.Duration
	// Timeout bounds each session store call made while resolving a request.
	Timeout time.Duration

	Metrics metrics.GateMetrics
	Logger  *slog.Logger
	Now     func() time.Time
}

// AuthService runs the sign-in flow and owns the session lifecycle: it creates sessions
// at sign-in, resolves and refreshes them per request, and removes them at sign-out.
type AuthService struct {
	provider ports.AuthProvider
	sessions ports.SessionStore
	roles    ports.RoleMapper
	users    ports.UserDirectory
	codec    ports.SessionCodec
	cookies  CookieSettings

	ttl           time.Duration
	refreshWindow time.Duration
	timeout       time.Duration

	metrics metrics.GateMetrics
	logger  *slog.Logger
	now     func() time.Time
}

var _ ports.SessionResolver = (*AuthService)(nil)

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	s := &AuthService{
		provider:      opts.Provider,
		sessions:      opts.Sessions,
		roles:         opts.Roles,
		users:         opts.Users,
		codec:         opts.Codec,
		cookies:       opts.Cookies,
		ttl:           opts.SessionTTL,
		refreshWindow: opts.RefreshWindow,
		timeout:       opts.Timeout,
		metrics:       opts.Metrics,
		logger:        opts.Logger,
		now:           opts.Now,
	}
	if s.ttl <= 0 {
		s.ttl = DefaultSessionTTL
	}
	if s.refreshWindow <= 0 || s.refreshWindow >= s.ttl {
		s.refreshWindow = min(DefaultRefreshWindow, s.ttl/2)
	}
	if s.timeout <= 0 {
		s.timeout = DefaultResolveTimeout
	}
	if s.metrics == nil {
		s.metrics = metrics.Noop{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Cookies returns the cookie settings used for session and flow cookies.
func (s *AuthService) Cookies() CookieSettings { return s.cookies }

// BeginLoginInput groups parameters for starting a login flow.
type BeginLoginInput struct {
	RedirectURL string
	// LoginHint is forwarded to the provider; the dev provider uses it to pick a persona.
	LoginHint string
}

// BeginLoginResult contains the result of beginning a login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginLogin initiates an authentication flow and returns the provider auth URL with state and nonce.
func (s *AuthService) BeginLogin(ctx context.Context, in BeginLoginInput) (*BeginLoginResult, error) {
	if in.RedirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	authURL, state, nonce, err := s.provider.Begin(ctx, ports.BeginInput{
		RedirectURL: in.RedirectURL,
		LoginHint:   in.LoginHint,
	})
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}

	return &BeginLoginResult{AuthURL: authURL, State: state, Nonce: nonce}, nil
}

// CompleteLoginInput groups parameters for completing a login flow.
type CompleteLoginInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteLoginResult contains the persisted session, the signed cookie value for it,
// and the user record as stored after sign-in.
type CompleteLoginResult struct {
	Session domainauth.Session
	Token   string
	User    *domainauth.User
}

// CompleteLogin exchanges the code for an identity, maps the role, provisions the user
// record and persists a new session.
func (s *AuthService) CompleteLogin(ctx context.Context, in CompleteLoginInput) (*CompleteLoginResult, error) {
	res, err := s.completeLogin(ctx, in)
	s.metrics.IncLogin(metricsResult(err))
	return res, err
}

func (s *AuthService) completeLogin(ctx context.Context, in CompleteLoginInput) (*CompleteLoginResult, error) {
	if in.Code == "" {
		return nil, errors.New("authorization code is required")
	}
	if in.State == "" {
		return nil, errors.New("state parameter is required")
	}
	if in.Nonce == "" {
		return nil, errors.New("nonce parameter is required")
	}

	identity, err := s.provider.Exchange(ctx, ports.ExchangeInput{
		Code:  in.Code,
		State: in.State,
		Nonce: in.Nonce,
	})
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	role := s.roles.Map(identity.Groups)
	user, err := s.users.Upsert(ctx, ports.UpsertUserInput{
		ID:                 identity.UserID,
		Email:              identity.Email,
		FirstName:          identity.FirstName,
		LastName:           identity.LastName,
		Role:               role,
		DefaultPermissions: domainauth.DefaultPermissions(role),
	})
	if err != nil {
		return nil, fmt.Errorf("provision user: %w", err)
	}

	now := s.now()
	session := domainauth.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Role:      user.Role,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}

	token, err := s.codec.Encode(session)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.logger.InfoContext(ctx, "user signed in", "user_id", user.ID, "role", user.Role)
	return &CompleteLoginResult{Session: session, Token: token, User: user}, nil
}

// ResolveSession reads the principal behind the request's session cookie.
//
// A missing, forged, expired or unknown cookie is a normal anonymous request; the stale
// cookie is cleared through the returned Cookies. Sessions inside the refresh window are
// extended and re-signed. Only session store failures are returned as errors.
func (s *AuthService) ResolveSession(ctx context.Context, r *http.Request) (ports.SessionResolution, error) {
	ck, err := r.Cookie(s.cookies.SessionName())
	if err != nil || ck.Value == "" {
		return ports.SessionResolution{}, nil
	}
	anon := ports.SessionResolution{Cookies: []*http.Cookie{s.cookies.Clear(r, s.cookies.SessionName())}}

	tok, err := s.codec.Decode(ck.Value)
	if err != nil {
		s.logger.DebugContext(ctx, "rejected session cookie", "error", err)
		return anon, nil
	}

	sess, err := s.getSession(ctx, tok.SessionID)
	switch {
	case errors.Is(err, ports.ErrSessionNotFound):
		return anon, nil
	case err != nil:
		return ports.SessionResolution{}, fmt.Errorf("get session: %w", err)
	}
	if sess.UserID != tok.Subject {
		s.logger.WarnContext(ctx, "session subject mismatch", "session_id", sess.ID)
		return anon, nil
	}

	now := s.now()
	if sess.Expired(now) {
		s.deleteQuietly(ctx, sess.ID)
		return anon, nil
	}

	res := ports.SessionResolution{
		Principal: &domainauth.Principal{ID: sess.UserID, Role: sess.Role},
		Session:   &sess,
	}
	if sess.ExpiresWithin(now, s.refreshWindow) {
		if refreshed, cookie, ok := s.refresh(ctx, r, sess, now); ok {
			res.Session = &refreshed
			res.Cookies = []*http.Cookie{cookie}
		}
	}
	return res, nil
}

// refresh extends sess by the session TTL. Failures keep the current session usable.
func (s *AuthService) refresh(ctx context.Context, r *http.Request, sess domainauth.Session, now time.Time) (domainauth.Session, *http.Cookie, bool) {
	sess.ExpiresAt = now.Add(s.ttl)

	token, err := s.codec.Encode(sess)
	if err == nil {
		sctx, cancel := context.WithTimeout(ctx, s.timeout)
		err = s.sessions.Save(sctx, sess)
		cancel()
	}
	if err != nil {
		s.metrics.IncSessionRefresh(metrics.ResultError)
		s.logger.WarnContext(ctx, "session refresh failed", "session_id", sess.ID, "error", err)
		return domainauth.Session{}, nil, false
	}

	s.metrics.IncSessionRefresh(metrics.ResultSuccess)
	return sess, s.cookies.Session(r, token, sess.ExpiresAt, now), true
}

func (s *AuthService) getSession(ctx context.Context, id string) (domainauth.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	sess, err := s.sessions.Get(ctx, id)
	if errors.Is(err, ports.ErrSessionNotFound) {
		s.metrics.ObserveStep(metrics.StepSession, time.Since(start), nil)
		return sess, err
	}
	s.metrics.ObserveStep(metrics.StepSession, time.Since(start), err)
	return sess, err
}

func (s *AuthService) deleteQuietly(ctx context.Context, id string) {
	if err := s.sessions.Delete(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "delete expired session", "session_id", id, "error", err)
	}
}

// Logout removes the session referenced by the raw cookie value. Unreadable cookies
// have nothing server-side to remove.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}
	tok, err := s.codec.Decode(rawToken)
	if err != nil {
		return nil
	}
	if err := s.sessions.Delete(ctx, tok.SessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func metricsResult(err error) string {
	if err != nil {
		return metrics.ResultError
	}
	return metrics.ResultSuccess
}
