package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/docgap/internal/connectors/throttle"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// Hourly quotas with and without a token.
const (
	AuthenticatedLimit = 5000
	AnonymousLimit     = 60
)

// steadyRate keeps a full hour of calls under the authenticated quota.
const steadyRate = 1.2

// Config holds GitHub client configuration.
type Config struct {
	// Token is a personal access or OAuth token. Optional.
	Token string

	// BaseURL overrides the API endpoint, e.g. for GitHub Enterprise.
	BaseURL string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Client wraps the go-github client with rate limiting.
type Client struct {
	gh       *gh.Client
	throttle *throttle.Throttle

	mu    sync.Mutex
	quota gh.Rate
}

// NewClient creates a GitHub API client.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	var httpClient *http.Client
	limit := AnonymousLimit
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		httpClient = oauth2.NewClient(ctx, ts)
		limit = AuthenticatedLimit
	} else {
		httpClient = &http.Client{}
	}
	httpClient.Timeout = cfg.Timeout

	client := gh.NewClient(httpClient)
	if cfg.BaseURL != "" {
		base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("github base URL: %w", err)
		}
		client.BaseURL = base
	}

	return &Client{
		gh:       client,
		throttle: throttle.New(steadyRate, 5),
		quota:    gh.Rate{Limit: limit, Remaining: limit},
	}, nil
}

// LatestRelease returns the most recent published release.
func (c *Client) LatestRelease(ctx context.Context, owner, repo string) (*gh.RepositoryRelease, error) {
	if err := c.throttle.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	release, resp, err := c.gh.Repositories.GetLatestRelease(ctx, owner, repo)
	c.observe(resp)
	if err != nil {
		return nil, c.wrapError(err, "get latest release")
	}
	return release, nil
}

// ReleaseByTag returns the release for tag.
func (c *Client) ReleaseByTag(ctx context.Context, owner, repo, tag string) (*gh.RepositoryRelease, error) {
	if err := c.throttle.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	release, resp, err := c.gh.Repositories.GetReleaseByTag(ctx, owner, repo, tag)
	c.observe(resp)
	if err != nil {
		return nil, c.wrapError(err, "get release "+tag)
	}
	return release, nil
}

// ListReleases returns up to limit releases, newest first.
func (c *Client) ListReleases(ctx context.Context, owner, repo string, limit int) ([]*gh.RepositoryRelease, error) {
	opts := &gh.ListOptions{PerPage: min(max(limit, 1), 100)}
	var all []*gh.RepositoryRelease

	for len(all) < limit {
		if err := c.throttle.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		releases, resp, err := c.gh.Repositories.ListReleases(ctx, owner, repo, opts)
		c.observe(resp)
		if err != nil {
			return nil, c.wrapError(err, "list releases")
		}
		all = append(all, releases...)

		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// Quota returns the rate limit state from the last response.
func (c *Client) Quota() gh.Rate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quota
}

// observe records the quota GitHub reported and pauses the throttle when
// fewer than a fiftieth of the calls remain before the reset.
func (c *Client) observe(resp *gh.Response) {
	if resp == nil || resp.Response == nil {
		return
	}
	rate := resp.Rate

	c.mu.Lock()
	if rate.Limit > 0 {
		c.quota.Limit = rate.Limit
	}
	if resp.Header.Get("X-RateLimit-Remaining") != "" {
		c.quota.Remaining = rate.Remaining
	}
	if !rate.Reset.IsZero() {
		c.quota.Reset = rate.Reset
	}
	q := c.quota
	c.mu.Unlock()

	if q.Remaining < max(1, q.Limit/50) && !q.Reset.IsZero() {
		c.throttle.PauseUntil(q.Reset.Time)
	}
}

// wrapError converts go-github errors to our error types.
func (c *Client) wrapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		c.throttle.PauseUntil(rateLimitErr.Rate.Reset.Time)
		return &RateLimitError{
			ResetAt:   rateLimitErr.Rate.Reset.Time,
			Remaining: rateLimitErr.Rate.Remaining,
			Limit:     rateLimitErr.Rate.Limit,
		}
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		c.throttle.PauseFor(abuseErr.GetRetryAfter())
		return &RateLimitError{
			ResetAt:   c.throttle.PausedUntil(),
			Remaining: 0,
			Limit:     c.Quota().Limit,
		}
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		apiErr := &APIError{StatusCode: ghErr.Response.StatusCode, Message: ghErr.Message}
		if ghErr.Response.Request != nil {
			apiErr.URL = ghErr.Response.Request.URL.String()
		}
		return fmt.Errorf("%s: %w", operation, apiErr)
	}

	return fmt.Errorf("%s: %w", operation, err)
}
