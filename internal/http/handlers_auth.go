package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lumicrm/portalgate/internal/domain/gate"
	"github.com/lumicrm/portalgate/internal/ports"
	"github.com/lumicrm/portalgate/internal/service"
)

const (
	stateCookie         = "oauth_state"
	nonceCookie         = "oauth_nonce"
	postLoginCookie     = "post_login_redirect"
	flowCookieLifetime  = 10 * time.Minute
	defaultSignedOutURL = "/signin"
)

// AuthServiceInterface defines the auth service operations used by the handlers.
type AuthServiceInterface interface {
	BeginLogin(ctx context.Context, in service.BeginLoginInput) (*service.BeginLoginResult, error)
	CompleteLogin(ctx context.Context, in service.CompleteLoginInput) (*service.CompleteLoginResult, error)
	ResolveSession(ctx context.Context, r *http.Request) (ports.SessionResolution, error)
	Logout(ctx context.Context, rawToken string) error
	Cookies() service.CookieSettings
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc         AuthServiceInterface
	Permissions ports.PermissionResolver // optional; enriches /auth/status
	// SignInPath is where sign-out lands.
	SignInPath    string
	RedirectParam string
	Logger        *slog.Logger
	Now           func() time.Time
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *AuthHandlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// Login starts the sign-in flow.
// GET /auth/login?redirect_uri=<path>&as=<login hint>.
// The sign-in page may pass its own redirectTo parameter instead of redirect_uri.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	candidate := q.Get("redirect_uri")
	if candidate == "" {
		candidate = q.Get(h.redirectParam())
	}
	redirectURI := gate.SafeRedirectPath(candidate, "/")

	hint := q.Get("as")
	if hint == "" {
		hint = q.Get("login_hint")
	}

	result, err := h.Svc.BeginLogin(r.Context(), service.BeginLoginInput{RedirectURL: redirectURI, LoginHint: hint})
	if err != nil {
		h.logger().ErrorContext(r.Context(), "begin login failed", "error", err)
		WriteError(w, r, ErrorParams{
			Code:       http.StatusInternalServerError,
			ErrCode:    "login_failed",
			MessageKey: "auth.login_failed",
			Err:        err,
		})
		return
	}

	cookies := h.Svc.Cookies()
	http.SetCookie(w, cookies.Temporary(r, stateCookie, result.State, flowCookieLifetime))
	http.SetCookie(w, cookies.Temporary(r, nonceCookie, result.Nonce, flowCookieLifetime))
	http.SetCookie(w, cookies.Temporary(r, postLoginCookie, redirectURI, flowCookieLifetime))

	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// Callback completes the sign-in flow.
// GET /auth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" {
		WriteError(w, r, ErrorParams{Code: http.StatusBadRequest, ErrCode: "missing_code", Err: errors.New("authorization code is required")})
		return
	}
	if state == "" {
		WriteError(w, r, ErrorParams{Code: http.StatusBadRequest, ErrCode: "missing_state", Err: errors.New("state parameter is required")})
		return
	}

	sc, err := r.Cookie(stateCookie)
	if err != nil || sc.Value != state {
		WriteError(w, r, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_state", MessageKey: "auth.invalid_state"})
		return
	}
	nc, err := r.Cookie(nonceCookie)
	if err != nil || nc.Value == "" {
		WriteError(w, r, ErrorParams{Code: http.StatusBadRequest, ErrCode: "missing_nonce", MessageKey: "auth.invalid_state"})
		return
	}

	result, err := h.Svc.CompleteLogin(r.Context(), service.CompleteLoginInput{Code: code, State: state, Nonce: nc.Value})
	if err != nil {
		h.logger().WarnContext(r.Context(), "complete login failed", "error", err)
		WriteError(w, r, ErrorParams{
			Code:       http.StatusInternalServerError,
			ErrCode:    "login_completion_failed",
			MessageKey: "auth.callback_failed",
			Err:        err,
		})
		return
	}

	cookies := h.Svc.Cookies()
	http.SetCookie(w, cookies.Session(r, result.Token, result.Session.ExpiresAt, h.now()))
	http.SetCookie(w, cookies.Clear(r, stateCookie))
	http.SetCookie(w, cookies.Clear(r, nonceCookie))

	redirectURI := "/"
	if rc, err := r.Cookie(postLoginCookie); err == nil {
		redirectURI = gate.SafeRedirectPath(rc.Value, "/")
		http.SetCookie(w, cookies.Clear(r, postLoginCookie))
	}
	http.Redirect(w, r, redirectURI, http.StatusFound)
}

// Logout ends the session.
// POST /auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	cookies := h.Svc.Cookies()
	if sc, err := r.Cookie(cookies.SessionName()); err == nil {
		if err := h.Svc.Logout(r.Context(), sc.Value); err != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", err)
		}
	}
	http.SetCookie(w, cookies.Clear(r, cookies.SessionName()))

	target := h.SignInPath
	if target == "" {
		target = defaultSignedOutURL
	}
	if isAJAX(r) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "success", "redirect_to": target})
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// Status reports the current principal.
// GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	res, err := h.Svc.ResolveSession(r.Context(), r)
	for _, c := range res.Cookies {
		http.SetCookie(w, c)
	}
	w.Header().Set("Cache-Control", "no-store")
	if err != nil {
		h.logger().WarnContext(r.Context(), "status: session resolution failed", "error", err)
		WriteError(w, r, ErrorParams{Code: http.StatusServiceUnavailable, ErrCode: "session_unavailable"})
		return
	}
	if res.Principal == nil || res.Session == nil {
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	permissions := []string{}
	if h.Permissions != nil {
		perms, perr := h.Permissions.Resolve(r.Context(), res.Principal.ID)
		if perr != nil {
			h.logger().WarnContext(r.Context(), "status: permission resolution failed", "error", perr)
		}
		permissions = perms.Strings()
	}

	s := res.Session
	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user": map[string]any{
			"id":          s.UserID,
			"first_name":  s.FirstName,
			"last_name":   s.LastName,
			"email":       s.Email,
			"role":        s.Role,
			"permissions": permissions,
		},
		"expires_at": s.ExpiresAt,
	})
}

func (h *AuthHandlers) redirectParam() string {
	if h.RedirectParam == "" {
		return gate.DefaultRedirectParam
	}
	return h.RedirectParam
}

func isAJAX(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest")
}
