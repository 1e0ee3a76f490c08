package driving

import (
	"context"

	"github.com/custodia-labs/docgap/internal/core/domain"
)

// ArticleService provides read access to the help-center corpus.
type ArticleService interface {
	// Get returns one article. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// List returns one page of articles. Page is 1-based.
	List(ctx context.Context, page, perPage int) (*domain.ArticlePage, error)

	// Search returns articles matching a keyword query.
	Search(ctx context.Context, query string) ([]domain.Document, error)

	// Corpus returns every article up to limit, walking all pages.
	Corpus(ctx context.Context, limit int) ([]domain.Document, error)
}
