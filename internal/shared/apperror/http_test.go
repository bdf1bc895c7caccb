package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToHTTP(t *testing.T) {
	t.Run("app error", func(t *testing.T) {
		got := ToHTTP(ErrNotFound)
		assert.Equal(t, http.StatusNotFound, got.Status)
		assert.Equal(t, CodeNotFound, got.Code)
		assert.Equal(t, "Resource not found", got.Message)
	})

	t.Run("wrapped app error", func(t *testing.T) {
		got := ToHTTP(fmt.Errorf("update leave: %w", ErrForbidden))
		assert.Equal(t, http.StatusForbidden, got.Status)
		assert.Equal(t, CodeForbidden, got.Code)
	})

	t.Run("details", func(t *testing.T) {
		err := ErrInvalidInput.WithDetails("month must be between 1 and 12")

		got := ToHTTP(err)
		assert.Equal(t, http.StatusBadRequest, got.Status)
		assert.Equal(t, "month must be between 1 and 12", got.Details)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("unknown error", func(t *testing.T) {
		got := ToHTTP(errors.New("pq: connection refused"))
		assert.Equal(t, http.StatusInternalServerError, got.Status)
		assert.Equal(t, CodeInternalError, got.Code)
		assert.Equal(t, "Internal server error", got.Message)
	})
}

func TestMapValidationError_Fallback(t *testing.T) {
	err := MapValidationError(errors.New("EOF"))

	var appErr *AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
	assert.Equal(t, "Invalid input", appErr.Message)
}
