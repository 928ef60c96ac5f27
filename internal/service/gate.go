package service

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	domainauth "github.com/lumicrm/portalgate/internal/domain/auth"
	"github.com/lumicrm/portalgate/internal/domain/gate"
	"github.com/lumicrm/portalgate/internal/observability/metrics"
	"github.com/lumicrm/portalgate/internal/ports"
)

// RouteClassifier classifies request paths.
type RouteClassifier interface {
	Classify(path string) gate.Classification
}

// GateServiceOptions groups dependencies for GateService.
type GateServiceOptions struct {
	Classifier  RouteClassifier
	Settings    gate.Settings
	Sessions    ports.SessionResolver
	Permissions ports.PermissionResolver
	Metrics     metrics.GateMetrics
	Logger      *slog.Logger
}

// GateService evaluates the gate for one request at a time. It keeps no per-request
// state, so every evaluation reads the session and permissions afresh.
type GateService struct {
	classifier  RouteClassifier
	settings    gate.Settings
	sessions    ports.SessionResolver
	permissions ports.PermissionResolver
	metrics     metrics.GateMetrics
	logger      *slog.Logger
}

// NewGateService constructs a GateService.
func NewGateService(opts GateServiceOptions) *GateService {
	switch {
	case opts.Classifier == nil:
		panic("RouteClassifier is required")
	case opts.Sessions == nil:
		panic("SessionResolver is required")
	case opts.Permissions == nil:
		panic("PermissionResolver is required")
	}
	s := &GateService{
		classifier:  opts.Classifier,
		settings:    opts.Settings,
		sessions:    opts.Sessions,
		permissions: opts.Permissions,
		metrics:     opts.Metrics,
		logger:      opts.Logger,
	}
	if s.settings.RedirectParam == "" {
		s.settings.RedirectParam = gate.DefaultRedirectParam
	}
	if s.metrics == nil {
		s.metrics = metrics.Noop{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Settings returns the decision settings in effect.
func (s *GateService) Settings() gate.Settings { return s.settings }

// GateResult is the outcome of evaluating a request.
// Cookies must be written on whatever response the caller produces.
type GateResult struct {
	Decision       gate.Decision
	Classification gate.Classification
	Principal      *domainauth.Principal
	Cookies        []*http.Cookie
}

// Evaluate classifies r, resolves its session and permissions as needed, and decides.
// Public paths never touch the session resolver. Resolution failures fail closed on
// protected paths and let every other path through.
func (s *GateService) Evaluate(ctx context.Context, r *http.Request) GateResult {
	start := time.Now()
	c := s.classifier.Classify(r.URL.Path)
	res := s.evaluateRecovered(ctx, r, c)
	s.metrics.ObserveDecision(metrics.Decision{
		Class:    res.Classification.Class.String(),
		Outcome:  res.Decision.Outcome.String(),
		Reason:   string(res.Decision.Reason),
		Duration: time.Since(start),
	})
	return res
}

// evaluateRecovered turns a panic in a resolver into the fail-closed decision for c.
func (s *GateService) evaluateRecovered(ctx context.Context, r *http.Request, c gate.Classification) (res GateResult) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.ErrorContext(ctx, "gate evaluation panicked",
				"path", c.Path, "class", c.Class.String(), "panic", rec)
			res = GateResult{Classification: c, Decision: gate.Deny(s.settings, c, gate.ReasonResolveFailed)}
		}
	}()
	return s.evaluate(ctx, r, c)
}

func (s *GateService) evaluate(ctx context.Context, r *http.Request, c gate.Classification) GateResult {
	res := GateResult{Classification: c}
	if c.Class == gate.ClassPublic {
		res.Decision = gate.Decide(s.settings, gate.Input{Classification: c})
		return res
	}

	sess, err := s.sessions.ResolveSession(ctx, r)
	if err != nil {
		s.logger.WarnContext(ctx, "session resolution failed",
			"path", c.Path, "class", c.Class.String(), "error", err)
		res.Decision = gate.Deny(s.settings, c, gate.ReasonResolveFailed)
		return res
	}
	res.Cookies = sess.Cookies
	res.Principal = sess.Principal

	in := gate.Input{
		Classification: c,
		ReturnPath:     r.URL.RequestURI(),
		RedirectTo:     r.URL.Query().Get(s.settings.RedirectParam),
		Authenticated:  sess.Principal != nil,
		ClassifyTarget: s.classifier.Classify,
	}

	if c.Class == gate.ClassProtected && sess.Principal != nil && c.Required != nil {
		perms, perr := s.permissions.Resolve(ctx, sess.Principal.ID)
		if perr != nil {
			s.logger.WarnContext(ctx, "permission resolution failed",
				"path", c.Path, "principal_id", sess.Principal.ID, "error", perr)
			res.Decision = gate.Deny(s.settings, c, gate.ReasonResolveFailed)
			return res
		}
		principal := *sess.Principal
		principal.Permissions = perms
		res.Principal = &principal
		in.Permissions = perms
	}

	res.Decision = gate.Decide(s.settings, in)
	if res.Decision.Outcome == gate.RewriteToNotFound {
		s.logger.DebugContext(ctx, "request hidden",
			"path", c.Path, "reason", string(res.Decision.Reason))
	}
	return res
}
