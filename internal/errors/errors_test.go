package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeAlreadyExists, http.StatusConflict},
		{CodeConflict, http.StatusConflict},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeInvalidCredentials, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeValidation, http.StatusBadRequest},
		{CodeUpstreamUnavailable, http.StatusServiceUnavailable},
		{CodeInternal, http.StatusInternalServerError},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.code.HTTPStatus(), "code %s", tt.code)
	}
}

func TestError_Is(t *testing.T) {
	err := NotFound("video not found")
	assert.True(t, Is(err, ErrNotFound))
	assert.False(t, Is(err, ErrValidation))

	wrapped := fmt.Errorf("get feed: %w", err)
	assert.True(t, Is(wrapped, ErrNotFound))
}

func TestError_WithCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Internal("store watch").WithCause(cause)

	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, cause, Unwrap(err))
	assert.True(t, Is(err, ErrInternal))
}

func TestError_WithDetails(t *testing.T) {
	err := ValidationWithDetails("invalid request", map[string]string{
		"watch_time": "must not be NaN",
	})

	details, ok := err.Details.(map[string]string)
	assert.True(t, ok)
	assert.Equal(t, "must not be NaN", details["watch_time"])
}

func TestWrap_PreservesCode(t *testing.T) {
	inner := Validation("watch_time out of range")
	err := Wrap(inner, "record watch")

	assert.Equal(t, CodeValidation, err.Code)
	assert.True(t, Is(err, ErrValidation))
}

func TestWrap_DefaultsToInternal(t *testing.T) {
	err := Wrap(fmt.Errorf("boom"), "record watch")
	assert.Equal(t, CodeInternal, err.Code)
}
