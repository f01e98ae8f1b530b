package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAppError_WrappedAppErrorKeepsCode(t *testing.T) {
	err := fmt.Errorf("loading visitor: %w", NewNotFoundError("Visitor"))

	appErr := GetAppError(err)
	require.Equal(t, http.StatusNotFound, appErr.Code)
	require.Equal(t, "Visitor not found", appErr.Message)
	assert.True(t, IsNotFound(err))
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestGetAppError_PlainErrorHidesDetails(t *testing.T) {
	appErr := GetAppError(errors.New("mongo: connection refused"))

	require.Equal(t, http.StatusInternalServerError, appErr.Code)
	require.Equal(t, "Internal server error", appErr.Message)
	assert.False(t, IsAppError(errors.New("x")))
}

func TestNewFieldError(t *testing.T) {
	err := NewFieldError("email", "email or phone is required")

	require.Equal(t, http.StatusUnprocessableEntity, err.Code)
	require.Len(t, err.Errors, 1)
	assert.Equal(t, "email", err.Errors[0].Field)
	assert.True(t, errors.Is(err, ErrUnprocessable))
	assert.False(t, errors.Is(err, ErrConflict))
}
