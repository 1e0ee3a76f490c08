package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/docgap/internal/core/domain"
	"github.com/custodia-labs/docgap/internal/core/ports/driven"
	"github.com/custodia-labs/docgap/internal/core/similarity"
)

// Ensure ArticleStore implements the interface.
var _ driven.ContentRepository = (*ArticleStore)(nil)

// ArticleStore is an in-memory ContentRepository.
// Articles are listed in insertion order.
type ArticleStore struct {
	mu    sync.RWMutex
	name  string
	order []string
	byID  map[string]domain.Document
}

// NewArticleStore creates an article store holding docs.
// Later documents replace earlier ones with the same ID.
func NewArticleStore(name string, docs ...domain.Document) *ArticleStore {
	s := &ArticleStore{
		name: name,
		byID: make(map[string]domain.Document),
	}
	s.Replace(docs)
	return s
}

// Replace swaps the whole corpus.
func (s *ArticleStore) Replace(docs []domain.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = s.order[:0]
	s.byID = make(map[string]domain.Document, len(docs))
	for _, doc := range docs {
		if _, exists := s.byID[doc.ID]; !exists {
			s.order = append(s.order, doc.ID)
		}
		s.byID[doc.ID] = doc
	}
}

// Name returns the repository name.
func (s *ArticleStore) Name() string {
	return s.name
}

// Len returns the number of articles.
func (s *ArticleStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// GetArticle retrieves an article by ID.
func (s *ArticleStore) GetArticle(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// ListArticles returns one page of articles.
func (s *ArticleStore) ListArticles(_ context.Context, page, perPage int) (*domain.ArticlePage, error) {
	if page < 1 || perPage < 1 {
		return nil, domain.ErrInvalidInput
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := len(s.order)
	result := &domain.ArticlePage{
		Articles: []domain.Document{},
		Total:    total,
		Pages:    (total + perPage - 1) / perPage,
		Page:     page,
	}
	start := (page - 1) * perPage
	if start >= total {
		return result, nil
	}
	end := min(start+perPage, total)
	for _, id := range s.order[start:end] {
		result.Articles = append(result.Articles, s.byID[id])
	}
	return result, nil
}

// SearchArticles returns articles sharing at least one token with query,
// best lexical match first.
func (s *ArticleStore) SearchArticles(_ context.Context, query string) ([]domain.Document, error) {
	if strings.TrimSpace(query) == "" {
		return []domain.Document{}, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	type hit struct {
		doc   domain.Document
		score float64
	}
	var hits []hit
	for _, id := range s.order {
		doc := s.byID[id]
		score := similarity.LexicalScore(query, doc.Title+" "+doc.Body)
		if score > 0 {
			hits = append(hits, hit{doc: doc, score: score})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	docs := make([]domain.Document, 0, len(hits))
	for _, h := range hits {
		docs = append(docs, h.doc)
	}
	return docs, nil
}
