package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docgap/internal/core/domain"
)

func TestArticlesListCmd(t *testing.T) {
	var gotPage, gotPerPage int
	articles := &MockArticleService{ListFunc: func(_ context.Context, page, perPage int) (*domain.ArticlePage, error) {
		gotPage, gotPerPage = page, perPage
		return &domain.ArticlePage{
			Articles: []domain.Document{{ID: "a1", Title: "Exporting data"}, {ID: "a2", Title: "Billing"}},
			Total:    12,
			Pages:    6,
			Page:     page,
		}, nil
	}}

	out, err := execute(t, &Services{Articles: articles}, "articles", "list", "--page", "2", "--per-page", "2")

	require.NoError(t, err)
	assert.Equal(t, 2, gotPage)
	assert.Equal(t, 2, gotPerPage)
	assert.Contains(t, out, "Articles (page 2 of 6, 12 total)")
	assert.Contains(t, out, "Exporting data")
	assert.Contains(t, out, "Billing")
}

func TestArticlesListCmd_Empty(t *testing.T) {
	out, err := execute(t, &Services{Articles: &MockArticleService{}}, "articles", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No articles found.")
}

func TestArticlesGetCmd(t *testing.T) {
	articles := &MockArticleService{Docs: map[string]domain.Document{
		"a1": {ID: "a1", Title: "Exporting data", URL: "https://help.example.com/a1", Category: "Data", Body: "Use Export."},
	}}

	out, err := execute(t, &Services{Articles: articles}, "article", "get", "a1", "--raw")

	require.NoError(t, err)
	assert.Contains(t, out, "# Exporting data")
	assert.Contains(t, out, "https://help.example.com/a1")
	assert.Contains(t, out, "Category: Data")
	assert.Contains(t, out, "Use Export.")
}

func TestArticlesGetCmd_NotFound(t *testing.T) {
	_, err := execute(t, &Services{Articles: &MockArticleService{}}, "articles", "get", "nope")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestArticlesSearchCmd(t *testing.T) {
	tests := []struct {
		name    string
		results []domain.Document
		err     error
		want    string
	}{
		{
			name:    "matches",
			results: []domain.Document{{ID: "a1", Title: "Exporting data", URL: "https://help.example.com/a1"}},
			want:    "1. Exporting data (a1)",
		},
		{name: "no matches", want: `No articles match "csv export".`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotQuery string
			articles := &MockArticleService{SearchFunc: func(_ context.Context, q string) ([]domain.Document, error) {
				gotQuery = q
				return tt.results, tt.err
			}}

			out, err := execute(t, &Services{Articles: articles}, "articles", "search", "csv", "export")

			require.NoError(t, err)
			assert.Equal(t, "csv export", gotQuery)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestArticlesCmd_NoService(t *testing.T) {
	for _, args := range [][]string{
		{"articles", "list"},
		{"articles", "get", "a1"},
		{"articles", "search", "x"},
	} {
		_, err := execute(t, &Services{}, args...)
		require.Error(t, err, args)
		assert.Contains(t, err.Error(), "article service not configured")
	}
}

func TestArticlesSearchCmd_Unavailable(t *testing.T) {
	articles := &MockArticleService{SearchFunc: func(context.Context, string) ([]domain.Document, error) {
		return nil, errors.Join(domain.ErrCorpusUnavailable, errors.New("401"))
	}}

	_, err := execute(t, &Services{Articles: articles}, "articles", "search", "x")

	assert.ErrorIs(t, err, domain.ErrCorpusUnavailable)
}
