package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	cause := errors.New("connection refused")
	wrapped := fmt.Errorf("append: %w", Unavailable("store unavailable", cause))

	assert.Equal(t, CodeUnavailable, CodeOf(wrapped))
	assert.True(t, Is(wrapped, CodeUnavailable))
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
	assert.False(t, Is(nil, CodeNotFound))
}

func TestMessageHidesCause(t *testing.T) {
	err := Unavailable("store unavailable", errors.New("dial tcp 10.0.0.1:3306"))
	assert.Equal(t, "store unavailable", Message(err))
	assert.Contains(t, err.Error(), "dial tcp")
	assert.Equal(t, "internal error", Message(errors.New("boom")))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeInvalidInput:    http.StatusBadRequest,
		CodeNotFound:        http.StatusNotFound,
		CodeForbidden:       http.StatusForbidden,
		CodeUnauthenticated: http.StatusUnauthorized,
		CodeRateLimited:     http.StatusTooManyRequests,
		CodeUnavailable:     http.StatusServiceUnavailable,
		CodeInternal:        http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, HTTPStatus(code), code)
	}
}
