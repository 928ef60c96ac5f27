package httpx

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/lumicrm/portalgate/internal/i18n"
)

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = buf.WriteTo(w)
}

// ErrorParams groups parameters for WriteError.
// MessageKey names a translation; when empty the error text is shown for 4xx codes.
type ErrorParams struct {
	Code       int
	ErrCode    string
	MessageKey string
	Err        error
}

// WriteError writes a JSON error body. Server errors never expose the underlying error.
func WriteError(w http.ResponseWriter, r *http.Request, p ErrorParams) {
	l := i18n.FromContext(r.Context())
	var msg string
	switch {
	case p.MessageKey != "":
		msg = l.T(p.MessageKey)
	case p.Code >= http.StatusInternalServerError || p.Err == nil:
		msg = l.T("error.internal")
	default:
		msg = p.Err.Error()
	}
	WriteJSON(w, p.Code, map[string]string{"error": p.ErrCode, "message": msg})
}
