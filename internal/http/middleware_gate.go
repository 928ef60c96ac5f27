package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/lumicrm/portalgate/internal/domain/gate"
	"github.com/lumicrm/portalgate/internal/service"
)

// GateEvaluator decides what happens to a request.
type GateEvaluator interface {
	Evaluate(ctx context.Context, r *http.Request) service.GateResult
}

// PathMatcher reports whether a path bypasses the gate.
type PathMatcher interface {
	Match(path string) bool
}

// GateOptions configures the Gate middleware.
type GateOptions struct {
	Evaluator GateEvaluator
	// Exclude lists requests (static assets, images) the gate never sees. Optional.
	Exclude PathMatcher
	Logger  *slog.Logger
}

// Gate returns a middleware that applies the gate decision to every request:
// allowed requests continue with the principal in context, redirects answer 303, and
// hidden requests continue with their path rewritten to the not-found page so the
// browser address bar is unchanged. Cookies set while resolving the session are
// written on every branch.
func Gate(opts GateOptions) func(http.Handler) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if opts.Exclude != nil && opts.Exclude.Match(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			res := opts.Evaluator.Evaluate(r.Context(), r)
			for _, c := range res.Cookies {
				http.SetCookie(w, c)
			}
			if info, ok := GetGateInfo(r.Context()); ok {
				info.OriginalPath = r.URL.Path
				info.Decision = res.Decision
			}

			ctx := SetPrincipalInContext(r.Context(), res.Principal)
			switch res.Decision.Outcome {
			case gate.Allow:
				next.ServeHTTP(w, r.WithContext(ctx))
			case gate.RedirectToSignIn, gate.RedirectToHome:
				w.Header().Set("Cache-Control", "no-store")
				http.Redirect(w, r, res.Decision.Target, http.StatusSeeOther)
			case gate.RewriteToNotFound:
				w.Header().Set("Cache-Control", "no-store")
				next.ServeHTTP(w, rewritePath(r.WithContext(ctx), res.Decision.Target))
			default:
				logger.ErrorContext(r.Context(), "unknown gate outcome", "outcome", res.Decision.Outcome.String())
				http.NotFound(w, r)
			}
		})
	}
}

// rewritePath returns a shallow copy of r addressed to target. The query string is
// dropped so nothing from the hidden URL reaches the not-found page.
func rewritePath(r *http.Request, target string) *http.Request {
	r2 := r.Clone(r.Context())
	r2.URL.Path = target
	r2.URL.RawPath = ""
	r2.URL.RawQuery = ""
	r2.RequestURI = target
	return r2
}
