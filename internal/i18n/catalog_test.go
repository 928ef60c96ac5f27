package i18n

import (
	"context"
	"io/fs"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingFS counts file opens per name.
type countingFS struct {
	fs.FS
	opens sync.Map
}

func (c *countingFS) Open(name string) (fs.File, error) {
	n, _ := c.opens.LoadOrStore(name, new(atomic.Int32))
	n.(*atomic.Int32).Add(1)
	return c.FS.Open(name)
}

func (c *countingFS) count(name string) int32 {
	n, ok := c.opens.Load(name)
	if !ok {
		return 0
	}
	return n.(*atomic.Int32).Load()
}

func testFS() *countingFS {
	return &countingFS{FS: fstest.MapFS{
		"l/en.json": {Data: []byte(`{"greet":"Hello, %s","only_en":"English only"}`)},
		"l/ru.json": {Data: []byte(`{"greet":"Привет, %s"}`)},
		"l/uz.json": {Data: []byte(`{"greet":"Salom, %s"}`)},
		"l/README":  {Data: []byte("ignored")},
	}}
}

func TestEmbeddedCatalog(t *testing.T) {
	c, err := NewCatalog(Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"en", "ru", "uz"}, c.Languages())
	assert.Equal(t, "Page not found", c.T("en", "not_found.title"))
	assert.Equal(t, "Страница не найдена", c.T("ru", "not_found.title"))
	// uz has no error.internal entry
	assert.Equal(t, "Something went wrong on our side.", c.T("uz", "error.internal"))
}

func TestCatalog_Fallbacks(t *testing.T) {
	c, err := NewCatalog(Options{FS: testFS(), Dir: "l", Default: "en"})
	require.NoError(t, err)

	assert.Equal(t, "Привет, Ann", c.T("ru", "greet", "Ann"))
	assert.Equal(t, "English only", c.T("ru", "only_en"))
	assert.Equal(t, "missing.key", c.T("ru", "missing.key"))
	assert.Equal(t, "Hello, Ann", c.T("fr", "greet", "Ann"))
}

func TestCatalog_Negotiate(t *testing.T) {
	c, err := NewCatalog(Options{FS: testFS(), Dir: "l", Default: "en"})
	require.NoError(t, err)

	tests := []struct {
		preferred, accept, want string
	}{
		{"", "", "en"},
		{"", "ru-RU,ru;q=0.9,en;q=0.8", "ru"},
		{"", "uz-Latn-UZ", "uz"},
		{"", "de-DE", "en"},
		{"uz", "ru", "uz"},
		{"fr", "ru", "ru"},
		{"", "not a header;;", "en"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Negotiate(tt.preferred, tt.accept), "%q/%q", tt.preferred, tt.accept)
	}
}

func TestCatalog_LoadsEachLanguageOnce(t *testing.T) {
	fsys := testFS()
	c, err := NewCatalog(Options{FS: fsys, Dir: "l", Default: "en"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), fsys.count("l/en.json"))
	assert.Equal(t, int32(0), fsys.count("l/ru.json"), "non-default languages load on demand")

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.T("ru", "greet", "x")
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), fsys.count("l/ru.json"))
	assert.Equal(t, int32(1), fsys.count("l/en.json"))
}

func TestNewCatalog_Errors(t *testing.T) {
	_, err := NewCatalog(Options{FS: testFS(), Dir: "l", Default: "de"})
	assert.ErrorContains(t, err, "no catalog")

	_, err = NewCatalog(Options{FS: fstest.MapFS{"en.json": {Data: []byte("{")}}})
	assert.ErrorContains(t, err, "decode en catalog")

	_, err = NewCatalog(Options{FS: fstest.MapFS{}, Dir: "nope"})
	assert.Error(t, err)
}

func TestLocalizerContext(t *testing.T) {
	c, err := NewCatalog(Options{FS: testFS(), Dir: "l"})
	require.NoError(t, err)

	ctx := WithLocalizer(context.Background(), c.For("uz"))
	l := FromContext(ctx)
	assert.Equal(t, "uz", l.Lang)
	assert.Equal(t, "Salom, Bob", l.T("greet", "Bob"))

	assert.Equal(t, "greet", FromContext(context.Background()).T("greet"))
}
