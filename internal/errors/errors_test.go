package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Is(t *testing.T) {
	err := NotFound("sound not found")
	assert.True(t, Is(err, ErrNotFound))
	assert.False(t, Is(err, ErrConflict))

	wrapped := fmt.Errorf("handler: %w", err)
	assert.True(t, Is(wrapped, ErrNotFound))
}

func TestError_WithCause(t *testing.T) {
	cause := fmt.Errorf("disk gone")
	err := Internal("failed to persist").WithCause(cause)

	assert.True(t, Is(err, ErrInternal))
	assert.Equal(t, cause, Unwrap(err))
	assert.Contains(t, err.Error(), "disk gone")
}

func TestError_WithDetails(t *testing.T) {
	base := Validation("validation failed")
	err := base.WithDetails(map[string]string{"name": "required"})

	assert.Equal(t, CodeValidation, err.Code)
	assert.NotNil(t, err.Details)
	assert.Nil(t, base.Details, "WithDetails must not mutate the original")
}

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeNoSavedSession, http.StatusNotFound},
		{CodeAlreadyExists, http.StatusConflict},
		{CodeConflict, http.StatusConflict},
		{CodeValidation, http.StatusBadRequest},
		{CodeAccessDenied, http.StatusForbidden},
		{CodePermissionDenied, http.StatusForbidden},
		{CodeReadOnlyMode, http.StatusPreconditionFailed},
		{CodeNoActiveSession, http.StatusPreconditionFailed},
		{CodeUnsupported, http.StatusNotImplemented},
		{CodeInternal, http.StatusInternalServerError},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.code.HTTPStatus(), "code %s", tt.code)
	}
}
