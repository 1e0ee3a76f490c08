package driven

import (
	"context"

	"github.com/custodia-labs/docgap/internal/core/domain"
)

// ContentRepository provides read access to the help-center article corpus.
//
// Implementations may include:
//   - Zendesk Help Center API
//   - A local JSON or TOML corpus file
type ContentRepository interface {
	// Name identifies the repository in logs and cache keys.
	Name() string

	// GetArticle fetches a single article.
	// Returns domain.ErrNotFound if the article does not exist.
	GetArticle(ctx context.Context, id string) (*domain.Document, error)

	// ListArticles returns one page of articles. Page is 1-based.
	ListArticles(ctx context.Context, page, perPage int) (*domain.ArticlePage, error)

	// SearchArticles returns articles matching a keyword query.
	SearchArticles(ctx context.Context, query string) ([]domain.Document, error)
}
