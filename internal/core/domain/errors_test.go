package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Uniqueness tests that all errors are distinct
func TestErrors_Uniqueness(t *testing.T) {
	allErrors := []error{
		ErrNotFound,
		ErrInvalidInput,
		ErrEmptyReleaseNotes,
		ErrCorpusUnavailable,
		ErrLLMUnavailable,
		ErrEmbeddingUnavailable,
		ErrUnsupportedProvider,
		ErrUnsupportedFormat,
		ErrRateLimited,
		ErrAuthInvalid,
	}

	for i, err1 := range allErrors {
		for j, err2 := range allErrors {
			if i != j {
				assert.False(t, errors.Is(err1, err2),
					"Error %v should not match error %v", err1, err2)
			}
		}
	}
}

// TestErrors_UserFacingMessages tests the messages surfaced to API clients
func TestErrors_UserFacingMessages(t *testing.T) {
	assert.Equal(t, "no input provided", ErrEmptyReleaseNotes.Error())
	assert.Equal(t, "upstream data temporarily unavailable", ErrCorpusUnavailable.Error())
	assert.Equal(t, "not found", ErrNotFound.Error())
}

// TestErrors_WithWrapping tests error wrapping behavior
func TestErrors_WithWrapping(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	wrapped := fmt.Errorf("%w: %w", ErrCorpusUnavailable, cause)

	assert.True(t, errors.Is(wrapped, ErrCorpusUnavailable))
	assert.True(t, errors.Is(wrapped, cause))
	assert.Contains(t, wrapped.Error(), "temporarily unavailable")
}

// TestErrors_ServiceErrors tests provider-related errors
func TestErrors_ServiceErrors(t *testing.T) {
	for _, err := range []error{ErrLLMUnavailable, ErrEmbeddingUnavailable, ErrCorpusUnavailable} {
		assert.Contains(t, err.Error(), "unavailable")
	}
}
