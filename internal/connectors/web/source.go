// Package web reads release notes from a public web page.
package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/docgap/internal/adapters/driven/helpcenter/htmltext"
	"github.com/custodia-labs/docgap/internal/core/domain"
	"github.com/custodia-labs/docgap/internal/core/ports/driven"
	"github.com/custodia-labs/docgap/internal/logger"
)

// Verify interface compliance.
var _ driven.ReleaseNotesSource = (*Source)(nil)

const (
	// SourceName identifies web page release notes.
	SourceName = "url"

	// DefaultTimeout bounds one page fetch.
	DefaultTimeout = 30 * time.Second

	// MaxReadSize is the maximum response size (5MB).
	MaxReadSize = int64(5 * 1024 * 1024)

	// MinContentLength rejects pages that are mostly chrome or scripts.
	MinContentLength = 100

	// MaxContentLength caps the extracted text in characters.
	MaxContentLength = 10000

	userAgent = "docgap/1.0 (+https://github.com/custodia-labs/docgap)"
)

// content is tried in order; the first match with enough text wins.
var contentSelectors = []string{"main", "article", "[role='main']", "#content", ".content", "body"}

// chrome is removed before extraction.
const chrome = "nav, header, footer, aside, script, style, noscript"

// Source fetches a page and extracts its readable text.
type Source struct {
	client *http.Client
}

// NewSource creates a web source. A nil client gets DefaultTimeout.
func NewSource(client *http.Client) *Source {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &Source{client: client}
}

// Name returns the source identifier.
func (s *Source) Name() string {
	return SourceName
}

// Fetch downloads the page at ref and returns its main text.
func (s *Source) Fetch(ctx context.Context, ref string) (*domain.ReleaseNotes, error) {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: URL must start with http:// or https://", domain.ErrInvalidInput)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("fetch %s: %w", u, domain.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: failed to fetch URL: HTTP %d", domain.ErrInvalidInput, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxReadSize))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", u, err)
	}
	logger.Debug("[web] %s: %d bytes (%s)", u, len(body), resp.Header.Get("Content-Type"))

	text := string(body)
	if strings.Contains(resp.Header.Get("Content-Type"), "html") || strings.Contains(text, "</") {
		text = ExtractText(text)
	} else {
		text = strings.TrimSpace(text)
	}

	if utf8.RuneCountInString(text) < MinContentLength {
		return nil, fmt.Errorf("%w: no readable content found at URL, paste the text instead", domain.ErrInvalidInput)
	}

	return &domain.ReleaseNotes{
		Text:   truncate(text, MaxContentLength),
		Source: u.String(),
	}, nil
}

// ExtractText returns the readable text of the page's main content.
func ExtractText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return htmltext.ToText(html)
	}
	doc.Find(chrome).Remove()

	var best string
	for _, sel := range contentSelectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		inner, err := node.Html()
		if err != nil {
			continue
		}
		text := htmltext.ToText("<div>" + inner + "</div>")
		if utf8.RuneCountInString(text) >= MinContentLength {
			return text
		}
		if len(text) > len(best) {
			best = text
		}
	}
	return best
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}
