package httpx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/lumicrm/portalgate/internal/domain/gate"
	"github.com/lumicrm/portalgate/internal/i18n"
	"github.com/lumicrm/portalgate/internal/ports"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Gate        GateEvaluator
	Settings    gate.Settings
	Exclude     PathMatcher
	Auth        AuthServiceInterface // optional; nil disables /auth routes
	Permissions ports.PermissionResolver
	Catalog     *i18n.Catalog
	// Upstream serves allowed and rewritten requests. Nil serves the local not-found page.
	Upstream http.Handler
	// Metrics is mounted at /metrics when set.
	Metrics        http.Handler
	Readiness      map[string]ReadinessCheck
	ReadyTimeout   time.Duration
	LanguageCookie string
	Logger         *slog.Logger
}

// NewRouter wires health, metrics and auth endpoints and puts the gate in front of
// everything else.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", healthHandler)
	mux.HandleFunc("HEAD /healthz", healthHandler)
	mux.Handle("GET /readyz", readyHandler(services.Readiness, services.ReadyTimeout))
	if services.Metrics != nil {
		mux.Handle("GET /metrics", services.Metrics)
	}
	if services.Auth != nil {
		registerAuthRoutes(mux, &AuthHandlers{
			Svc:           services.Auth,
			Permissions:   services.Permissions,
			SignInPath:    services.Settings.SignInPath,
			RedirectParam: services.Settings.RedirectParam,
			Logger:        logger,
		})
	}

	notFound := &NotFoundPage{
		RewritePath: services.Settings.NotFoundPath,
		HomePath:    services.Settings.HomePath,
		Logger:      logger,
	}
	app := services.Upstream
	if app == nil {
		app = notFound
	}
	mux.Handle("/", Gate(GateOptions{
		Evaluator: services.Gate,
		Exclude:   services.Exclude,
		Logger:    logger,
	})(app))

	handler := http.Handler(mux)
	if services.Catalog != nil {
		handler = Localize(services.Catalog, services.LanguageCookie)(handler)
	}
	return Chain(handler, Recover(logger), Logging(logger))
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("GET /auth/login", h.Login)
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/status", h.Status)
}
