package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("activity: %w", ErrNotFound), http.StatusNotFound},
		{"forbidden", fmt.Errorf("only the author can edit: %w", ErrForbidden), http.StatusForbidden},
		{"invalid input", fmt.Errorf("%w: weight out of range", ErrInvalidInput), http.StatusBadRequest},
		{"conflict", ErrConflict, http.StatusConflict},
		{"rate limit", ErrRateLimitExceeded, http.StatusTooManyRequests},
		{"app error code wins", New(http.StatusTeapot, "short and stout", ErrNotFound), http.StatusTeapot},
		{"unknown", errors.New("database is gone"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToStatus(tt.err))
		})
	}
}

func TestAppErrorMessage(t *testing.T) {
	err := New(http.StatusBadRequest, "", ErrInvalidInput)
	assert.Equal(t, "invalid input", err.Error())
	assert.True(t, errors.Is(err, ErrInvalidInput))

	err = New(http.StatusUnauthorized, "invalid cron secret", nil)
	assert.Equal(t, "invalid cron secret", err.Error())
}
