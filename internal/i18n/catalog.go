// Package i18n holds the translation catalog used by pages the gate renders itself.
// A Catalog is created once at startup and passed to whoever needs it; each language
// is loaded on first use.
package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var embeddedLocales embed.FS

// Options configures a Catalog.
type Options struct {
	// FS holds <lang>.json files under Dir. Defaults to the embedded locales.
	FS  fs.FS
	Dir string
	// Default is the fallback language; it must be present in FS.
	Default string
	Logger  *slog.Logger
}

// Catalog resolves message keys per language. It is safe for concurrent use.
type Catalog struct {
	fsys      fs.FS
	dir       string
	def       string
	languages []string
	matcher   language.Matcher
	logger    *slog.Logger

	mu     sync.RWMutex
	loaded map[string]map[string]string
	group  singleflight.Group
}

// NewCatalog discovers the available languages and eagerly loads the default one.
func NewCatalog(opts Options) (*Catalog, error) {
	c := &Catalog{
		fsys:   opts.FS,
		dir:    opts.Dir,
		def:    strings.ToLower(strings.TrimSpace(opts.Default)),
		logger: opts.Logger,
		loaded: make(map[string]map[string]string),
	}
	if c.fsys == nil {
		c.fsys, c.dir = embeddedLocales, "locales"
	}
	if c.dir == "" {
		c.dir = "."
	}
	if c.def == "" {
		c.def = "en"
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	entries, err := fs.ReadDir(c.fsys, c.dir)
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".json" {
			continue
		}
		c.languages = append(c.languages, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(c.languages)

	// The default goes first so the matcher falls back to it.
	tags := []language.Tag{language.Make(c.def)}
	found := false
	for _, l := range c.languages {
		if l == c.def {
			found = true
			continue
		}
		tags = append(tags, language.Make(l))
	}
	if !found {
		return nil, fmt.Errorf("default language %q has no catalog", c.def)
	}
	c.matcher = language.NewMatcher(tags)

	if _, err := c.messages(c.def); err != nil {
		return nil, err
	}
	return c, nil
}

// Languages returns the available language codes, sorted.
func (c *Catalog) Languages() []string {
	return append([]string(nil), c.languages...)
}

// DefaultLanguage returns the fallback language code.
func (c *Catalog) DefaultLanguage() string { return c.def }

// Negotiate picks a supported language. An explicit preference (e.g. a cookie) wins when
// it is supported; otherwise the Accept-Language header is matched.
func (c *Catalog) Negotiate(preferred, acceptLanguage string) string {
	if p := strings.ToLower(strings.TrimSpace(preferred)); p != "" && c.supports(p) {
		return p
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return c.def
	}
	_, idx, conf := c.matcher.Match(tags...)
	if conf == language.No {
		return c.def
	}
	if idx == 0 {
		return c.def
	}
	return c.others()[idx-1]
}

// T returns the message for key in lang, falling back to the default language and then
// to the key itself. args, when given, are applied with fmt.Sprintf.
func (c *Catalog) T(lang, key string, args ...any) string {
	msg, ok := c.lookup(lang, key)
	if !ok && lang != c.def {
		msg, ok = c.lookup(c.def, key)
	}
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}

func (c *Catalog) lookup(lang, key string) (string, bool) {
	if !c.supports(lang) {
		return "", false
	}
	msgs, err := c.messages(lang)
	if err != nil {
		c.logger.Warn("load translations", "lang", lang, "error", err)
		return "", false
	}
	msg, ok := msgs[key]
	return msg, ok
}

// messages returns the catalog for lang, loading it once.
func (c *Catalog) messages(lang string) (map[string]string, error) {
	c.mu.RLock()
	msgs, ok := c.loaded[lang]
	c.mu.RUnlock()
	if ok {
		return msgs, nil
	}

	v, err, _ := c.group.Do(lang, func() (any, error) {
		c.mu.RLock()
		cached, ok := c.loaded[lang]
		c.mu.RUnlock()
		if ok {
			return cached, nil
		}

		data, err := fs.ReadFile(c.fsys, path.Join(c.dir, lang+".json"))
		if err != nil {
			return nil, fmt.Errorf("read %s catalog: %w", lang, err)
		}
		var parsed map[string]string
		if err := json.Unmarshal(data, &parsed); err != nil {
			return nil, fmt.Errorf("decode %s catalog: %w", lang, err)
		}

		c.mu.Lock()
		c.loaded[lang] = parsed
		c.mu.Unlock()
		return parsed, nil
	})
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]string)
	if !ok {
		return nil, errors.New("unexpected catalog type")
	}
	return m, nil
}

func (c *Catalog) supports(lang string) bool {
	i := sort.SearchStrings(c.languages, lang)
	return i < len(c.languages) && c.languages[i] == lang
}

// others returns the non-default languages in matcher order.
func (c *Catalog) others() []string {
	out := make([]string, 0, len(c.languages))
	for _, l := range c.languages {
		if l != c.def {
			out = append(out, l)
		}
	}
	return out
}

type ctxKey struct{}

// Localizer binds a Catalog to the language negotiated for one request.
type Localizer struct {
	Lang    string
	catalog *Catalog
}

// For returns a Localizer for lang.
func (c *Catalog) For(lang string) Localizer {
	return Localizer{Lang: lang, catalog: c}
}

// T translates key in the bound language.
func (l Localizer) T(key string, args ...any) string {
	if l.catalog == nil {
		return key
	}
	return l.catalog.T(l.Lang, key, args...)
}

// WithLocalizer stores l in ctx.
func WithLocalizer(ctx context.Context, l Localizer) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request's Localizer. Without one, T returns keys unchanged.
func FromContext(ctx context.Context) Localizer {
	if l, ok := ctx.Value(ctxKey{}).(Localizer); ok {
		return l
	}
	return Localizer{}
}
