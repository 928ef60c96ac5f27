package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	assert.Equal(t, "user not found", NotFoundf("user %s", "not found").Error())

	wrapped := Wrap(errors.New("boom"), ErrCodeInternal, "load user")
	assert.Equal(t, "load user: boom", wrapped.Error())
}

func TestAppError_UnwrapThroughChain(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("resolve: %w", Wrap(cause, ErrCodeUnavailable, "db"))

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsUnavailable(err))
	assert.False(t, IsNotFound(err))
}

func TestWrap_Nil(t *testing.T) {
	assert.NoError(t, Wrap(nil, ErrCodeInternal, "x"))
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		err  error
		pred func(error) bool
	}{
		{NotFoundf("x"), IsNotFound},
		{Validationf("x"), IsValidation},
		{ValidationField("role", "bad"), IsValidation},
		{&AppError{Code: ErrCodeConflict}, IsConflict},
		{&AppError{Code: ErrCodeTimeout}, IsTimeout},
		{&AppError{Code: ErrCodeCanceled}, IsCanceled},
	}
	for _, tt := range tests {
		assert.True(t, tt.pred(tt.err), "%v", tt.err)
	}
	assert.Equal(t, ErrorCode(""), GetCode(errors.New("plain")))
}

func TestGetField(t *testing.T) {
	assert.Equal(t, "role", GetField(ValidationField("role", "unknown role")))
	assert.Empty(t, GetField(errors.New("plain")))
}
