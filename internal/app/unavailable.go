package app

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docgap/internal/core/domain"
	"github.com/custodia-labs/docgap/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.ContentRepository = unavailable{}

// unavailable stands in for a help center that could not be opened.
type unavailable struct {
	reason string
}

func (u unavailable) Name() string { return "unavailable" }

func (u unavailable) GetArticle(context.Context, string) (*domain.Document, error) {
	return nil, u.err()
}

func (u unavailable) ListArticles(context.Context, int, int) (*domain.ArticlePage, error) {
	return nil, u.err()
}

func (u unavailable) SearchArticles(context.Context, string) ([]domain.Document, error) {
	return nil, u.err()
}

func (u unavailable) err() error {
	return fmt.Errorf("%w: %s", domain.ErrCorpusUnavailable, u.reason)
}
