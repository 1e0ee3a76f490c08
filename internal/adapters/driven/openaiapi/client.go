// Package openaiapi builds the go-openai client shared by the OpenAI
// embedding and LLM adapters and maps its errors onto domain errors.
package openaiapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/custodia-labs/docgap/internal/core/domain"
)

// ErrMissingKey is returned when no API key is configured.
var ErrMissingKey = errors.New("openai: API key is required")

// NewClient returns a client for apiKey. baseURL points it at Azure
// OpenAI or another compatible API.
func NewClient(apiKey, baseURL string, timeout time.Duration) (*goopenai.Client, error) {
	if apiKey == "" {
		return nil, ErrMissingKey
	}
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return goopenai.NewClientWithConfig(cfg), nil
}

// Ping lists models, which checks the key without running inference.
func Ping(ctx context.Context, c *goopenai.Client) error {
	if _, err := c.ListModels(ctx); err != nil {
		return Wrap("openai ping", err)
	}
	return nil
}

// Wrap prefixes err with op and tags rejected keys and exhausted quotas
// with the matching domain error.
func Wrap(op string, err error) error {
	switch status(err) {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%s: %w: %w", op, domain.ErrAuthInvalid, err)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w: %w", op, domain.ErrRateLimited, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func status(err error) int {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
