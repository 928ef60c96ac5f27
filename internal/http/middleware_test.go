package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumicrm/portalgate/internal/domain/gate"
	"github.com/lumicrm/portalgate/internal/service"
)

func bufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { order = append(order, "handler") }),
		mw("outer"), mw("inner"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestRecover(t *testing.T) {
	var buf bytes.Buffer
	h := Recover(bufferLogger(&buf))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dealer", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), `"msg":"panic"`)
	assert.Contains(t, buf.String(), "boom")
}

func TestRecover_AbortHandlerPropagates(t *testing.T) {
	h := Recover(slog.Default())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestLogging_IncludesGateDecision(t *testing.T) {
	var buf bytes.Buffer
	ev := &fakeEvaluator{evaluate: func(*http.Request) service.GateResult {
		return service.GateResult{Decision: gate.Decision{
			Outcome: gate.RewriteToNotFound, Target: "/not-found", Reason: gate.ReasonForbidden,
		}}
	}}
	app := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })
	h := Chain(app, Logging(bufferLogger(&buf)), Gate(GateOptions{Evaluator: ev}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/admin/finance", nil))

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "/admin/finance", line["path"])
	assert.Equal(t, float64(http.StatusTeapot), line["status"])
	assert.Equal(t, "rewrite_not_found", line["gate"])
	assert.Equal(t, "forbidden", line["gate_reason"])
}

func TestLogging_UngatedRequest(t *testing.T) {
	var buf bytes.Buffer
	h := Logging(bufferLogger(&buf))(http.HandlerFunc(healthHandler))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Contains(t, buf.String(), `"path":"/healthz"`)
	assert.NotContains(t, buf.String(), `"gate"`)
}

func TestWriteError(t *testing.T) {
	cat := newTestCatalog(t)
	tests := []struct {
		name string
		p    ErrorParams
		want string
	}{
		{"client error shows cause", ErrorParams{Code: 400, ErrCode: "bad", Err: errors.New("code is required")}, "code is required"},
		{"server error hidden", ErrorParams{Code: 502, ErrCode: "upstream", Err: errors.New("dial 10.1.1.1")}, "Something went wrong on our side."},
		{"message key", ErrorParams{Code: 400, ErrCode: "invalid_state", MessageKey: "auth.invalid_state"}, "Your sign-in link has expired. Please sign in again."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h := Localize(cat, "")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { WriteError(w, r, tt.p) }))
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.p.Code, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.p.ErrCode, body["error"])
			assert.Equal(t, tt.want, body["message"])
		})
	}
}

func TestWriteError_WithoutCatalogFallsBackToKey(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, httptest.NewRequest(http.MethodGet, "/", nil), ErrorParams{Code: 500, ErrCode: "x"})
	assert.True(t, strings.Contains(rec.Body.String(), "error.internal"))
}
