package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/docgap/internal/core/domain"
	"github.com/custodia-labs/docgap/internal/core/ports/driven"
	"github.com/custodia-labs/docgap/internal/core/ports/driving"
	"github.com/custodia-labs/docgap/internal/logger"
)

// Ensure ArticleService implements the interface.
var _ driving.ArticleService = (*ArticleService)(nil)

// corpusPageSize is the page size used when walking the whole corpus.
const corpusPageSize = 100

// ArticleService provides read access to the help-center corpus.
type ArticleService struct {
	repo     driven.ContentRepository
	cache    driven.Cache
	cacheTTL time.Duration
}

// NewArticleService creates a new article service.
func NewArticleService(repo driven.ContentRepository) *ArticleService {
	return &ArticleService{
		repo:     repo,
		cacheTTL: domain.DefaultResultTTL,
	}
}

// SetCache enables corpus caching. The cache is optional.
func (s *ArticleService) SetCache(cache driven.Cache, ttl time.Duration) {
	s.cache = cache
	if ttl > 0 {
		s.cacheTTL = ttl
	}
}

// Get returns one article.
func (s *ArticleService) Get(ctx context.Context, id string) (*domain.Document, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: article id is required", domain.ErrInvalidInput)
	}
	doc, err := s.repo.GetArticle(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get article %s: %w", id, err)
	}
	return doc, nil
}

// List returns one page of articles.
func (s *ArticleService) List(ctx context.Context, page, perPage int) (*domain.ArticlePage, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 30
	}
	result, err := s.repo.ListArticles(ctx, page, perPage)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return result, nil
}

// Search returns articles matching a keyword query.
// An empty query returns no articles.
func (s *ArticleService) Search(ctx context.Context, query string) ([]domain.Document, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Document{}, nil
	}
	docs, err := s.repo.SearchArticles(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search articles: %w", err)
	}
	return docs, nil
}

// Corpus returns up to limit articles, walking every page.
// A failure on the first page with nothing cached returns an error
// wrapping domain.ErrCorpusUnavailable; a failure on a later page keeps
// the articles fetched so far.
func (s *ArticleService) Corpus(ctx context.Context, limit int) ([]domain.Document, error) {
	if limit <= 0 {
		limit = domain.DefaultMaxCorpus
	}

	key := fmt.Sprintf("corpus:%s:%d", s.repo.Name(), limit)
	if docs, ok := s.cachedCorpus(ctx, key); ok {
		logger.Debug("Corpus served from cache: %d articles", len(docs))
		return docs, nil
	}

	logger.Debug("Loading corpus from %s (limit %d)", s.repo.Name(), limit)
	var docs []domain.Document
	for page := 1; len(docs) < limit; page++ {
		result, err := s.repo.ListArticles(ctx, page, corpusPageSize)
		if err != nil {
			if page == 1 {
				return nil, fmt.Errorf("%w: %w", domain.ErrCorpusUnavailable, err)
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("load corpus: %w", err)
			}
			logger.Warn("Corpus page %d failed, continuing with %d articles: %v", page, len(docs), err)
			break
		}
		docs = append(docs, result.Articles...)
		if !result.HasMore() || len(result.Articles) == 0 {
			break
		}
	}
	docs = truncate(docs, limit)
	if docs == nil {
		docs = []domain.Document{}
	}

	s.storeCorpus(ctx, key, docs)
	logger.Info("Corpus loaded: %d articles", len(docs))
	return docs, nil
}

func (s *ArticleService) cachedCorpus(ctx context.Context, key string) ([]domain.Document, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	var docs []domain.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		logger.Warn("Discarding unreadable cached corpus: %v", err)
		return nil, false
	}
	return docs, true
}

func (s *ArticleService) storeCorpus(ctx context.Context, key string, docs []domain.Document) {
	if s.cache == nil || len(docs) == 0 {
		return
	}
	data, err := json.Marshal(docs)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		logger.Warn("Caching corpus failed: %v", err)
	}
}
