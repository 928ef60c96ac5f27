package gate

import (
	"net/url"
	"strings"

	domainauth "github.com/lumicrm/portalgate/internal/domain/auth"
)

// Outcome is the kind of gate decision.
type Outcome int

const (
	Allow Outcome = iota
	RedirectToSignIn
	RedirectToHome
	RewriteToNotFound
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case RedirectToSignIn:
		return "redirect_signin"
	case RedirectToHome:
		return "redirect_home"
	case RewriteToNotFound:
		return "rewrite_not_found"
	default:
		return "unknown"
	}
}

// Reason explains which branch produced a decision. It is for logs and metrics only
// and is never shown to the caller.
type Reason string

const (
	ReasonPublic          Reason = "public"
	ReasonAnonymous       Reason = "anonymous"
	ReasonSignedIn        Reason = "signed_in"
	ReasonAuthenticated   Reason = "authenticated"
	ReasonPermitted       Reason = "permitted"
	ReasonUnauthenticated Reason = "unauthenticated"
	ReasonForbidden       Reason = "forbidden"
	// ReasonResolveFailed marks decisions taken because a session or permission lookup failed.
	ReasonResolveFailed Reason = "resolve_failed"
)

// Decision is the gate's verdict for one request.
// Target is the redirect location or the rewrite path; empty for Allow.
type Decision struct {
	Outcome Outcome
	Target  string
	Reason  Reason
}

// UnauthenticatedAction selects what happens to anonymous requests for protected paths.
type UnauthenticatedAction string

const (
	// UnauthenticatedRewrite serves the not-found page so protected routes stay hidden.
	UnauthenticatedRewrite UnauthenticatedAction = "rewrite"
	// UnauthenticatedRedirect sends the caller to the sign-in page with a return path.
	UnauthenticatedRedirect UnauthenticatedAction = "redirect"
)

// Settings are the decision targets configured by the policy.
type Settings struct {
	SignInPath      string
	HomePath        string
	NotFoundPath    string
	RedirectParam   string
	Unauthenticated UnauthenticatedAction
}

// DefaultRedirectParam is the query parameter carrying the post-sign-in destination.
const DefaultRedirectParam = "redirectTo"

// Input is everything a decision depends on.
// Permissions is only consulted when Classification.Required is non-nil.
type Input struct {
	Classification Classification
	// ReturnPath is the original path and query, used for sign-in redirects.
	ReturnPath string
	// RedirectTo is the raw redirect query parameter of the request, if any.
	RedirectTo    string
	Authenticated bool
	Permissions   domainauth.PermissionSet
	// ClassifyTarget classifies the post-sign-in target. Targets that land on an
	// auth-only page fall back to the home path. Nil skips the check.
	ClassifyTarget func(path string) Classification
}

// Decide computes the gate decision. It is a pure function of s and in.
func Decide(s Settings, in Input) Decision {
	switch in.Classification.Class {
	case ClassPublic:
		return Decision{Outcome: Allow, Reason: ReasonPublic}

	case ClassAuthOnly:
		if !in.Authenticated {
			return Decision{Outcome: Allow, Reason: ReasonAnonymous}
		}
		return Decision{
			Outcome: RedirectToHome,
			Target:  signedInTarget(s, in),
			Reason:  ReasonSignedIn,
		}

	case ClassProtected:
		if !in.Authenticated {
			if s.Unauthenticated == UnauthenticatedRedirect {
				return Decision{Outcome: RedirectToSignIn, Target: SignInURL(s, in.ReturnPath), Reason: ReasonUnauthenticated}
			}
			return Decision{Outcome: RewriteToNotFound, Target: s.NotFoundPath, Reason: ReasonUnauthenticated}
		}
		if in.Classification.Required == nil {
			return Decision{Outcome: Allow, Reason: ReasonAuthenticated}
		}
		if in.Permissions.Grants(in.Classification.Required) {
			return Decision{Outcome: Allow, Reason: ReasonPermitted}
		}
		return Decision{Outcome: RewriteToNotFound, Target: s.NotFoundPath, Reason: ReasonForbidden}
	}

	// Unknown classes fail closed.
	return Decision{Outcome: RewriteToNotFound, Target: s.NotFoundPath, Reason: ReasonForbidden}
}

// Deny returns the fail-closed decision for a classification, used when resolution fails.
// Protected paths are hidden; everything else proceeds.
func Deny(s Settings, c Classification, reason Reason) Decision {
	if c.Class == ClassProtected {
		return Decision{Outcome: RewriteToNotFound, Target: s.NotFoundPath, Reason: reason}
	}
	return Decision{Outcome: Allow, Reason: reason}
}

// signedInTarget picks where a signed-in caller leaving an auth-only page goes.
// A target that is itself auth-only would redirect forever, so it becomes the home path.
func signedInTarget(s Settings, in Input) string {
	target := SafeRedirectPath(in.RedirectTo, s.HomePath)
	if target == s.HomePath || in.ClassifyTarget == nil {
		return target
	}
	u, err := url.Parse(target)
	if err != nil || in.ClassifyTarget(u.Path).Class == ClassAuthOnly {
		return s.HomePath
	}
	return target
}

// SignInURL builds the sign-in redirect carrying returnPath.
func SignInURL(s Settings, returnPath string) string {
	param := s.RedirectParam
	if param == "" {
		param = DefaultRedirectParam
	}
	u := url.URL{Path: s.SignInPath}
	if rp := SafeRedirectPath(returnPath, ""); rp != "" {
		q := url.Values{}
		q.Set(param, rp)
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// SafeRedirectPath returns candidate when it is a same-origin relative path starting
// with "/", and fallback otherwise.
func SafeRedirectPath(candidate, fallback string) string {
	if candidate == "" {
		return fallback
	}
	if strings.HasPrefix(candidate, "//") || strings.ContainsAny(candidate, "\\\r\n") {
		return fallback
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return fallback
	}
	return candidate
}
