package httperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaxonomyStatuses(t *testing.T) {
	tests := []struct {
		kind   Kind
		status int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindBadRequest, http.StatusBadRequest},
		{KindUnauthorized, http.StatusUnauthorized},
		{KindAuthentication, http.StatusForbidden},
		{KindAuthorization, http.StatusForbidden},
		{KindPasswordMismatch, http.StatusForbidden},
		{KindInvalidToken, http.StatusForbidden},
		{KindNotFound, http.StatusNotFound},
		{KindTokenIssuance, http.StatusInternalServerError},
		{KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			err := New(tt.kind, "")
			assert.Equal(t, tt.status, err.Status)
			assert.Equal(t, tt.kind, err.Kind)
			assert.NotEmpty(t, err.Message)
			assert.NotEmpty(t, err.Details)
		})
	}
}

func TestNew_CustomMessageKeepsDefaultDetails(t *testing.T) {
	err := Validation("Username already exists")
	assert.Equal(t, "Username already exists", err.Message)
	assert.Equal(t, "Request data did not pass validation.", err.Details)
}

func TestNew_UnknownKindPanics(t *testing.T) {
	assert.Panics(t, func() {
		New(Kind("NoSuchError"), "boom")
	})
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("underlying failure")
	err := Internal("").WithCause(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "underlying failure")
}

func TestFrom(t *testing.T) {
	t.Run("tagged error passes through", func(t *testing.T) {
		tagged := NotFound("User not found")
		assert.Same(t, tagged, From(tagged))
	})

	t.Run("wrapped tagged error is recovered", func(t *testing.T) {
		tagged := Unauthorized("")
		wrapped := fmt.Errorf("handler: %w", tagged)
		assert.Same(t, tagged, From(wrapped))
	})

	t.Run("unknown error is coerced to internal", func(t *testing.T) {
		plain := errors.New("disk on fire")
		coerced := From(plain)
		require.NotNil(t, coerced)
		assert.Equal(t, KindInternal, coerced.Kind)
		assert.Equal(t, http.StatusInternalServerError, coerced.Status)
		assert.ErrorIs(t, coerced, plain)
	})
}

func TestIsKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", PasswordMismatch(""))
	assert.True(t, IsKind(err, KindPasswordMismatch))
	assert.False(t, IsKind(err, KindValidation))
	assert.False(t, IsKind(errors.New("plain"), KindInternal))
}
