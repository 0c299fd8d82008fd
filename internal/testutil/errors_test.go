package testutil

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMockErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"ErrMockTaskStoreUnavailable", ErrMockTaskStoreUnavailable, "task store unavailable"},
		{"ErrMockExecutorCrashed", ErrMockExecutorCrashed, "executor crashed"},
		{"ErrMockCaptureFailed", ErrMockCaptureFailed, "capture failed"},
		{"ErrMockSpeakFailed", ErrMockSpeakFailed, "speak failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, tt.err, tt.want)
		})
	}
}

func TestMockErrorsAreSentinels(t *testing.T) {
	wrapped := fmt.Errorf("enqueue: %w", ErrMockTaskStoreUnavailable)
	assert.ErrorIs(t, wrapped, ErrMockTaskStoreUnavailable)
	assert.False(t, errors.Is(wrapped, ErrMockCaptureFailed))
}
