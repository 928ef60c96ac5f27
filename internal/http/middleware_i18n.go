package httpx

import (
	"net/http"

	"github.com/lumicrm/portalgate/internal/i18n"
)

// DefaultLanguageCookie overrides Accept-Language when it names a supported language.
const DefaultLanguageCookie = "lang"

// Localize negotiates the response language and stores a Localizer in the request context.
func Localize(catalog *i18n.Catalog, cookieName string) func(http.Handler) http.Handler {
	if cookieName == "" {
		cookieName = DefaultLanguageCookie
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var preferred string
			if c, err := r.Cookie(cookieName); err == nil {
				preferred = c.Value
			}
			lang := catalog.Negotiate(preferred, r.Header.Get("Accept-Language"))
			w.Header().Add("Vary", "Accept-Language")
			next.ServeHTTP(w, r.WithContext(i18n.WithLocalizer(r.Context(), catalog.For(lang))))
		})
	}
}
