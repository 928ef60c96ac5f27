package httpx

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"
)

// UpstreamOptions configures the portal reverse proxy.
type UpstreamOptions struct {
	URL       string
	Transport http.RoundTripper // optional
	Logger    *slog.Logger
}

// NewUpstream returns a reverse proxy to the portal application. Requests arrive after
// the gate, so a rewritten request is forwarded with the not-found path.
func NewUpstream(opts UpstreamOptions) (http.Handler, error) {
	target, err := url.Parse(strings.TrimSpace(opts.URL))
	if err != nil {
		return nil, fmt.Errorf("parse upstream url: %w", err)
	}
	if target.Scheme != "http" && target.Scheme != "https" || target.Host == "" {
		return nil, fmt.Errorf("upstream url %q must be absolute http(s)", opts.URL)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	transport := opts.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			MaxIdleConnsPerHost:   64,
			IdleConnTimeout:       90 * time.Second,
			ResponseHeaderTimeout: 30 * time.Second,
		}
	}

	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			pr.Out.Host = pr.In.Host
		},
		Transport: transport,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.ErrorContext(r.Context(), "upstream request failed", "path", r.URL.Path, "error", err)
			WriteError(w, r, ErrorParams{Code: http.StatusBadGateway, ErrCode: "upstream_unavailable"})
		},
	}, nil
}
