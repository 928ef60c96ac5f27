package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumicrm/portalgate/internal/i18n"
)

func newTestCatalog(t *testing.T) *i18n.Catalog {
	t.Helper()
	c, err := i18n.NewCatalog(i18n.Options{Default: "en"})
	require.NoError(t, err)
	return c
}

func TestNotFoundPage_Status(t *testing.T) {
	page := &NotFoundPage{RewritePath: "/not-found", HomePath: "/"}

	tests := []struct {
		name string
		path string
		want int
	}{
		{"rewrite target answers 200", "/not-found", http.StatusOK},
		{"other paths answer 404", "/nothing-here", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			page.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
			assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
		})
	}
}

func TestNotFoundPage_Localized(t *testing.T) {
	h := Localize(newTestCatalog(t), "")(&NotFoundPage{RewritePath: "/not-found", HomePath: "/home"})

	req := httptest.NewRequest(http.MethodGet, "/not-found", nil)
	req.Header.Set("Accept-Language", "ru-RU,ru;q=0.9,en;q=0.5")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<html lang="ru">`)
	assert.Contains(t, rec.Body.String(), "Страница не найдена")
	assert.Contains(t, rec.Body.String(), `href="/home"`)
	assert.Contains(t, rec.Header().Values("Vary"), "Accept-Language")
}

func TestNotFoundPage_LanguageCookieWins(t *testing.T) {
	h := Localize(newTestCatalog(t), "")(&NotFoundPage{RewritePath: "/not-found"})

	req := httptest.NewRequest(http.MethodGet, "/not-found", nil)
	req.Header.Set("Accept-Language", "ru")
	req.AddCookie(&http.Cookie{Name: DefaultLanguageCookie, Value: "en"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Contains(t, rec.Body.String(), "Page not found")
}

func TestNotFoundPage_Head(t *testing.T) {
	rec := httptest.NewRecorder()
	(&NotFoundPage{RewritePath: "/not-found"}).ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/not-found", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}
