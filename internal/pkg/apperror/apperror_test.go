package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/piresc/arbiter/internal/pkg/constants"
	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesCode(t *testing.T) {
	err := Forbidden("admin only")

	assert.True(t, errors.Is(err, ErrForbidden))
	assert.False(t, errors.Is(err, ErrNotFound))

	wrapped := fmt.Errorf("dispatch: %w", err)
	assert.True(t, errors.Is(wrapped, ErrForbidden))
}

func TestError_UnwrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := BadGateway(cause)

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, constants.ErrorBadGateway, err.Code)
}

func TestFrom(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{name: "typed error passes through", err: NotFound("no such table"), wantCode: constants.ErrorNotFound},
		{name: "wrapped typed error is found", err: fmt.Errorf("leaf: %w", AlreadyExists("x")), wantCode: constants.ErrorAlreadyExists},
		{name: "plain error becomes unknown", err: errors.New("boom"), wantCode: constants.ErrorUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, From(tt.err).Code)
		})
	}

	assert.Nil(t, From(nil))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{Expired(), http.StatusUnauthorized},
		{Unauthorized("bad credentials"), http.StatusUnauthorized},
		{Forbidden(""), http.StatusForbidden},
		{NotFound(""), http.StatusNotFound},
		{AlreadyExists(""), http.StatusConflict},
		{InvalidParams(errors.New("x")), http.StatusBadRequest},
		{BadGateway(errors.New("x")), http.StatusBadGateway},
		{errors.New("x"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}

func TestKnownCode(t *testing.T) {
	assert.True(t, KnownCode("not_found"))
	assert.True(t, KnownCode("invalid_params"))
	assert.False(t, KnownCode("teapot"))
	assert.False(t, KnownCode(""))
}
