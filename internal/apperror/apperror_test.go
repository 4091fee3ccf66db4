package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		code Code
		want int
	}{
		{CodeInvalidArgument, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodePermissionDenied, http.StatusForbidden},
		{CodeUnauthenticated, http.StatusUnauthorized},
		{CodeInternal, http.StatusInternalServerError},
		{CodeUnknown, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		err := From(New(tc.code, "boom"))
		require.NotNil(t, err)
		assert.Equal(t, tc.want, err.HTTPStatus(), "code %s", tc.code)
	}
}

func TestFrom(t *testing.T) {
	t.Run("extracts through wrapping", func(t *testing.T) {
		inner := NotFound("missing thing")
		wrapped := fmt.Errorf("outer context: %w", inner)

		appErr := From(wrapped)
		require.NotNil(t, appErr)
		assert.Equal(t, CodeNotFound, appErr.Code)
		assert.Equal(t, "missing thing", appErr.Message)
	})

	t.Run("returns nil for plain errors", func(t *testing.T) {
		assert.Nil(t, From(errors.New("plain")))
		assert.Nil(t, From(nil))
	})
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", Conflict("already there"))
	assert.True(t, IsCode(err, CodeConflict))
	assert.False(t, IsCode(err, CodeNotFound))
	assert.False(t, IsCode(errors.New("plain"), CodeConflict))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(CodeInternal, "something broke", cause)
	assert.True(t, errors.Is(err, cause))
}
