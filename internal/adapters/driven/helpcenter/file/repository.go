// Package file provides a content repository backed by a local corpus file.
//
// The file is JSON or TOML. JSON may be a bare array of articles or a
// Zendesk export object ({"articles": [...]}); TOML uses [[articles]]
// tables. HTML bodies are converted to text on load.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/docgap/internal/adapters/driven/helpcenter/htmltext"
	"github.com/custodia-labs/docgap/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docgap/internal/core/domain"
	"github.com/custodia-labs/docgap/internal/core/ports/driven"
	"github.com/custodia-labs/docgap/internal/logger"
)

// Ensure Repository implements the interface.
var _ driven.ContentRepository = (*Repository)(nil)

// Repository serves articles loaded from a file.
type Repository struct {
	*memory.ArticleStore
	path     string
	markdown bool
}

// record is one article as written in a corpus file. Field names follow
// the Zendesk article resource so exports load unchanged.
type record struct {
	ID        any    `json:"id" toml:"id"`
	Title     string `json:"title" toml:"title"`
	Body      string `json:"body" toml:"body"`
	URL       string `json:"url" toml:"url"`
	HTMLURL   string `json:"html_url" toml:"html_url"`
	Category  string `json:"category" toml:"category"`
	SectionID any    `json:"section_id" toml:"section_id"`
	UpdatedAt any    `json:"updated_at" toml:"updated_at"`
}

type corpusFile struct {
	Articles []record `json:"articles" toml:"articles"`
}

// New loads the corpus at path.
func New(path string, markdown bool) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: corpus path is required", domain.ErrInvalidInput)
	}
	r := &Repository{
		ArticleStore: memory.NewArticleStore("file:" + filepath.Base(path)),
		path:         path,
		markdown:     markdown,
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// NewFromSettings creates a repository from help center settings.
func NewFromSettings(s domain.HelpCenterSettings) (*Repository, error) {
	return New(s.Path, s.MarkdownBodies)
}

// Path returns the corpus file path.
func (r *Repository) Path() string {
	return r.path
}

// Reload re-reads the corpus file and replaces the served articles.
func (r *Repository) Reload() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("%w: read corpus: %w", domain.ErrCorpusUnavailable, err)
	}

	records, err := decode(r.path, data)
	if err != nil {
		return fmt.Errorf("%w: parse %s: %w", domain.ErrCorpusUnavailable, r.path, err)
	}

	docs := make([]domain.Document, 0, len(records))
	for i, rec := range records {
		doc, ok := r.toDocument(rec)
		if !ok {
			logger.Warn("[corpus] skipping article %d in %s: no id", i, r.path)
			continue
		}
		docs = append(docs, doc)
	}
	r.Replace(docs)
	logger.Debug("[corpus] loaded %d articles from %s", len(docs), r.path)
	return nil
}

// GetArticle fetches a single article.
func (r *Repository) GetArticle(ctx context.Context, id string) (*domain.Document, error) {
	doc, err := r.ArticleStore.GetArticle(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("article %q: %w", id, err)
	}
	return doc, nil
}

// ListArticles returns one page of articles.
func (r *Repository) ListArticles(ctx context.Context, page, perPage int) (*domain.ArticlePage, error) {
	result, err := r.ArticleStore.ListArticles(ctx, page, perPage)
	if err != nil {
		return nil, fmt.Errorf("%w: page and perPage must be positive", err)
	}
	return result, nil
}

func decode(path string, data []byte) ([]record, error) {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		var f corpusFile
		if err := toml.Unmarshal(data, &f); err != nil {
			return nil, err
		}
		return f.Articles, nil
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if trimmed[0] == '[' {
		var records []record
		if err := dec.Decode(&records); err != nil {
			return nil, err
		}
		return records, nil
	}
	var f corpusFile
	if err := dec.Decode(&f); err != nil {
		return nil, err
	}
	return f.Articles, nil
}

func (r *Repository) toDocument(rec record) (domain.Document, bool) {
	id := scalarString(rec.ID)
	if id == "" {
		return domain.Document{}, false
	}

	body := htmltext.ToText(rec.Body)
	if r.markdown {
		body = htmltext.ToMarkdown(rec.Body)
	}
	title := strings.TrimSpace(rec.Title)
	if title == "" {
		title = htmltext.Title(rec.Body)
	}

	doc := domain.Document{
		ID:       id,
		Title:    title,
		Body:     body,
		URL:      firstNonEmpty(rec.HTMLURL, rec.URL),
		Category: rec.Category,
	}
	if doc.Category == "" {
		if section := scalarString(rec.SectionID); section != "" && section != "0" {
			doc.Category = "section_" + section
		}
	}
	switch ts := rec.UpdatedAt.(type) {
	case time.Time:
		doc.UpdatedAt = ts
	case string:
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			doc.UpdatedAt = parsed
		}
	}
	return doc, true
}

// scalarString renders JSON or TOML scalars (numbers or strings) as text.
func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
