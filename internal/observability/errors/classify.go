// Package errors turns errors into low-cardinality labels for metrics and logs.
package errors

import (
	"context"
	goerrors "errors"
	"reflect"
	"strings"

	apperrors "github.com/lumicrm/portalgate/internal/errors"
)

// Classify returns a normalized label for err. Context deadlines and cancellations,
// and application error codes, take precedence; anything else is named after the
// innermost error type in snake_case, e.g. "redis_error" or "pgconn_pgerror".
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case goerrors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case goerrors.Is(err, context.Canceled):
		return "canceled"
	}
	if code := apperrors.GetCode(err); code != "" {
		return string(code)
	}

	for {
		inner := goerrors.Unwrap(err)
		if inner == nil {
			break
		}
		err = inner
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}

	name := strings.ToLower(t.String())
	name = strings.ReplaceAll(name, ".", "_")
	if name == "" {
		return "unknown"
	}
	return name
}
