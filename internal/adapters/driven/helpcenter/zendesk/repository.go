// Package zendesk provides a content repository backed by the Zendesk
// Help Center API.
package zendesk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/docgap/internal/adapters/driven/helpcenter/htmltext"
	"github.com/custodia-labs/docgap/internal/core/domain"
	"github.com/custodia-labs/docgap/internal/core/ports/driven"
	"github.com/custodia-labs/docgap/internal/logger"
)

// Ensure Repository implements the interface.
var _ driven.ContentRepository = (*Repository)(nil)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRequestsPerMinute is below the lowest Help Center plan limit.
	DefaultRequestsPerMinute = 400

	// MaxPerPage is the largest page size the API accepts.
	MaxPerPage = 100

	// MaxRetries is the maximum number of retries for 429 and 5xx responses.
	MaxRetries = 3

	// RetryDelay is the initial delay between retries.
	RetryDelay = time.Second

	// maxRetryAfter caps how long a Retry-After header can stall a request.
	maxRetryAfter = 30 * time.Second
)

// Config holds configuration for the Zendesk repository.
type Config struct {
	// Subdomain is the account subdomain (acme for acme.zendesk.com).
	Subdomain string

	// BaseURL overrides the URL derived from Subdomain.
	BaseURL string

	// Email and APIToken enable API token authentication.
	Email    string
	APIToken string

	// OAuthToken enables bearer authentication and takes precedence.
	OAuthToken string

	// Locale restricts listings to one locale, e.g. en-us.
	Locale string

	// RequestsPerMinute bounds outbound calls.
	RequestsPerMinute int

	// Markdown converts bodies to Markdown instead of plain text.
	Markdown bool

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Repository reads help-center articles from Zendesk.
type Repository struct {
	client     *http.Client
	baseURL    string
	host       string
	locale     string
	email      string
	apiToken   string
	markdown   bool
	limiter    *rate.Limiter
	retryDelay time.Duration
}

// article is the Help Center article resource.
type article struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	HTMLURL   string    `json:"html_url"`
	SectionID int64     `json:"section_id"`
	UpdatedAt time.Time `json:"updated_at"`
	Draft     bool      `json:"draft"`
}

type listResponse struct {
	Articles  []article `json:"articles"`
	Count     int       `json:"count"`
	Page      int       `json:"page"`
	PageCount int       `json:"page_count"`
}

type searchResponse struct {
	Results []article `json:"results"`
	Count   int       `json:"count"`
}

type showResponse struct {
	Article article `json:"article"`
}

type errorResponse struct {
	Error       any    `json:"error"`
	Description string `json:"description"`
}

// New creates a Zendesk repository.
func New(cfg Config) (*Repository, error) {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		if cfg.Subdomain == "" {
			return nil, fmt.Errorf("%w: zendesk subdomain or base URL is required", domain.ErrInvalidInput)
		}
		baseURL = "https://" + cfg.Subdomain + ".zendesk.com"
	}
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("%w: invalid zendesk base URL %q", domain.ErrInvalidInput, baseURL)
	}
	if cfg.OAuthToken == "" && (cfg.Email == "" || cfg.APIToken == "") {
		return nil, fmt.Errorf("%w: zendesk needs an OAuth token or email and API token", domain.ErrAuthInvalid)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = DefaultRequestsPerMinute
	}

	var client *http.Client
	if cfg.OAuthToken != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.OAuthToken, TokenType: "Bearer"})
		client = oauth2.NewClient(context.Background(), ts)
		client.Timeout = cfg.Timeout
	} else {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	perSecond := float64(cfg.RequestsPerMinute) / 60.0
	return &Repository{
		client:     client,
		baseURL:    baseURL,
		host:       parsed.Host,
		locale:     strings.ToLower(cfg.Locale),
		email:      cfg.Email,
		apiToken:   cfg.APIToken,
		markdown:   cfg.Markdown,
		limiter:    rate.NewLimiter(rate.Limit(perSecond), max(1, cfg.RequestsPerMinute/60)),
		retryDelay: RetryDelay,
	}, nil
}

// NewFromSettings creates a repository from help center settings.
func NewFromSettings(s domain.HelpCenterSettings) (*Repository, error) {
	return New(Config{
		Subdomain:         s.Subdomain,
		BaseURL:           s.BaseURL,
		Email:             s.Email,
		APIToken:          s.APIToken,
		OAuthToken:        s.OAuthToken,
		Locale:            s.Locale,
		RequestsPerMinute: s.RequestsPerMinute,
		Markdown:          s.MarkdownBodies,
	})
}

// Name identifies the repository in logs and cache keys.
func (r *Repository) Name() string {
	return "zendesk:" + r.host
}

// ListArticles returns one page of articles. Page is 1-based.
func (r *Repository) ListArticles(ctx context.Context, page, perPage int) (*domain.ArticlePage, error) {
	if page < 1 || perPage < 1 {
		return nil, fmt.Errorf("%w: page and perPage must be positive", domain.ErrInvalidInput)
	}
	perPage = min(perPage, MaxPerPage)

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	q.Set("sort_by", "position")

	var resp listResponse
	if err := r.get(ctx, r.helpCenterPath("/articles.json"), q, &resp); err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}

	pages := resp.PageCount
	if pages == 0 && resp.Count > 0 {
		pages = (resp.Count + perPage - 1) / perPage
	}

	logger.Debug("[zendesk] page %d/%d: %d articles", page, pages, len(resp.Articles))
	return &domain.ArticlePage{
		Articles: r.toDocuments(resp.Articles),
		Total:    resp.Count,
		Pages:    pages,
		Page:     page,
	}, nil
}

// SearchArticles runs the Help Center full-text search.
func (r *Repository) SearchArticles(ctx context.Context, query string) ([]domain.Document, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Document{}, nil
	}

	q := url.Values{}
	q.Set("query", query)
	if r.locale != "" {
		q.Set("locale", r.locale)
	}

	var resp searchResponse
	if err := r.get(ctx, "/api/v2/help_center/articles/search.json", q, &resp); err != nil {
		return nil, fmt.Errorf("search articles: %w", err)
	}
	return r.toDocuments(resp.Results), nil
}

// GetArticle fetches a single article.
// Non-numeric IDs cannot exist in Zendesk and return domain.ErrNotFound.
func (r *Repository) GetArticle(ctx context.Context, id string) (*domain.Document, error) {
	if _, err := strconv.ParseInt(id, 10, 64); err != nil {
		return nil, fmt.Errorf("article %q: %w", id, domain.ErrNotFound)
	}

	var resp showResponse
	if err := r.get(ctx, r.helpCenterPath("/articles/"+id+".json"), nil, &resp); err != nil {
		return nil, fmt.Errorf("get article %s: %w", id, err)
	}

	doc := r.toDocument(resp.Article)
	return &doc, nil
}

func (r *Repository) helpCenterPath(suffix string) string {
	if r.locale == "" {
		return "/api/v2/help_center" + suffix
	}
	return "/api/v2/help_center/" + url.PathEscape(r.locale) + suffix
}

// get performs a rate limited GET with retries on 429 and 5xx.
func (r *Repository) get(ctx context.Context, path string, query url.Values, out any) error {
	target := r.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	delay := r.retryDelay
	var lastErr error
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if attempt > 0 {
			wait := delay
			var rl *RateLimitError
			if errors.As(lastErr, &rl) && rl.RetryAfter > 0 {
				wait = min(rl.RetryAfter, maxRetryAfter)
			}
			logger.Debug("[zendesk] retry %d in %s: %v", attempt, wait, lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			delay *= 2
		}

		if err := r.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}

		lastErr = r.do(ctx, target, out)
		if lastErr == nil || !retryable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

func (r *Repository) do(ctx context.Context, target string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.apiToken != "" && r.email != "" {
		req.SetBasicAuth(r.email+"/token", r.apiToken)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %w", domain.ErrCorpusUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(body, resp.Status), URL: target}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %w", domain.ErrCorpusUnavailable, err)
	}
	return nil
}

func retryable(err error) bool {
	if IsRateLimited(err) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode >= 500
}

func parseRetryAfter(v string) time.Duration {
	if seconds, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return 0
}

func errorMessage(body []byte, status string) string {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil {
		if e.Description != "" {
			return e.Description
		}
		if s, ok := e.Error.(string); ok && s != "" {
			return s
		}
	}
	return status
}

func (r *Repository) toDocuments(articles []article) []domain.Document {
	docs := make([]domain.Document, 0, len(articles))
	for _, a := range articles {
		docs = append(docs, r.toDocument(a))
	}
	return docs
}

func (r *Repository) toDocument(a article) domain.Document {
	body := htmltext.ToText(a.Body)
	if r.markdown {
		body = htmltext.ToMarkdown(a.Body)
	}
	title := strings.TrimSpace(a.Title)
	if title == "" {
		title = htmltext.Title(a.Body)
	}

	doc := domain.Document{
		ID:        strconv.FormatInt(a.ID, 10),
		Title:     title,
		Body:      body,
		URL:       a.HTMLURL,
		UpdatedAt: a.UpdatedAt,
	}
	if a.SectionID != 0 {
		doc.Category = "section_" + strconv.FormatInt(a.SectionID, 10)
	}
	return doc
}
