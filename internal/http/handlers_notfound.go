package httpx

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/lumicrm/portalgate/internal/i18n"
)

//go:embed pages/not_found.html
var pagesFS embed.FS

var notFoundTemplate = template.Must(template.ParseFS(pagesFS, "pages/not_found.html"))

type notFoundData struct {
	Lang      string
	Title     string
	Body      string
	HomePath  string
	HomeLabel string
}

// NotFoundPage renders the local not-found page. Requests rewritten to RewritePath
// answer 200 so a hidden route looks like any other page; every other path answers 404.
type NotFoundPage struct {
	RewritePath string
	HomePath    string
	Logger      *slog.Logger
}

func (p *NotFoundPage) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l := i18n.FromContext(r.Context())
	home := p.HomePath
	if home == "" {
		home = "/"
	}

	var buf bytes.Buffer
	err := notFoundTemplate.Execute(&buf, notFoundData{
		Lang:      l.Lang,
		Title:     l.T("not_found.title"),
		Body:      l.T("not_found.body"),
		HomePath:  home,
		HomeLabel: l.T("not_found.home"),
	})
	if err != nil {
		if p.Logger != nil {
			p.Logger.ErrorContext(r.Context(), "render not-found page", "error", err)
		}
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}

	status := http.StatusNotFound
	if r.URL.Path == p.RewritePath {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		_, _ = buf.WriteTo(w)
	}
}
