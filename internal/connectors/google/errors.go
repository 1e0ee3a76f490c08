package google

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/docgap/internal/core/domain"
)

// IsUnauthorized returns true if the error indicates invalid credentials.
func IsUnauthorized(err error) bool {
	return hasCode(err, http.StatusUnauthorized)
}

// IsForbidden returns true if the error indicates insufficient permissions.
func IsForbidden(err error) bool {
	return hasCode(err, http.StatusForbidden)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return hasCode(err, http.StatusNotFound)
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	return hasCode(err, http.StatusTooManyRequests)
}

func hasCode(err error, code int) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == code
	}
	return false
}

// WrapError attaches the matching domain sentinel to a Google API error.
// The original error stays in the chain.
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	var sentinel error
	switch {
	case gerr.Code == http.StatusUnauthorized, gerr.Code == http.StatusForbidden:
		sentinel = domain.ErrAuthInvalid
	case gerr.Code == http.StatusNotFound:
		sentinel = domain.ErrNotFound
	case gerr.Code == http.StatusTooManyRequests:
		sentinel = domain.ErrRateLimited
	case gerr.Code >= http.StatusInternalServerError:
		sentinel = domain.ErrCorpusUnavailable
	default:
		return err
	}
	return fmt.Errorf("google: %w: %w", sentinel, err)
}
