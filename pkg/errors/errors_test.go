package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidationError("missing patientId or query"), http.StatusBadRequest},
		{"not found", NewNotFoundError("no such stage"), http.StatusNotFound},
		{"dependency", NewDependencyError("completion failed", errors.New("timeout")), http.StatusInternalServerError},
		{"wrapped validation", fmt.Errorf("decode: %w", NewValidationError("bad body")), http.StatusBadRequest},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.err))
		})
	}
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "missing patientId or query", PublicMessage(NewValidationError("missing patientId or query")))
	assert.Equal(t, "record store lookup failed: connection refused",
		PublicMessage(NewDependencyError("record store lookup failed", errors.New("connection refused"))))
	assert.Equal(t, "boom", PublicMessage(errors.New("boom")))
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewDependencyError("record store lookup failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "DEPENDENCY: record store lookup failed: connection refused", err.Error())
	assert.True(t, IsValidation(NewValidationError("x")))
	assert.False(t, IsValidation(err))
	assert.False(t, IsValidation(nil))
}
