package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorWrappers(t *testing.T) {
	originalErr := errors.New("original error")

	tests := []struct {
		name     string
		wrapper  func(string, error) error
		item     string
		expected string
	}{
		{"WrapLoadError", WrapLoadError, "snapshot", "failed to load snapshot: original error"},
		{"WrapProcessError", WrapProcessError, "bundle shop", "failed to process bundle shop: original error"},
		{"WrapWriteError", WrapWriteError, "output", "failed to write output: original error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.wrapper(tt.item, originalErr)
			assert.EqualError(t, err, tt.expected)
			assert.ErrorIs(t, err, originalErr)
		})
	}
}
