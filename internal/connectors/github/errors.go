package github

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/docgap/internal/core/domain"
)

// ErrInvalidRef reports a reference that is not owner/repo[@tag].
var ErrInvalidRef = errors.New("github: invalid release reference")

// RateLimitError is a primary or secondary rate limit. It matches
// domain.ErrRateLimited so callers need not import this package.
type RateLimitError struct {
	ResetAt   time.Time
	Remaining int
	Limit     int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("github: rate limit exceeded, resets at %s", e.ResetAt.Format(time.RFC3339))
}

func (e *RateLimitError) Unwrap() error { return domain.ErrRateLimited }

// APIError is any other non-2xx reply. 404 and 401 match
// domain.ErrNotFound and domain.ErrAuthInvalid.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrAuthInvalid
	default:
		return nil
	}
}
