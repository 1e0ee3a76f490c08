package driving

import (
	"context"

	"github.com/custodia-labs/docgap/internal/core/domain"
)

// DraftingService drives LLM calls that assess and rewrite articles.
// Every method returns domain.ErrLLMUnavailable if no LLM is configured.
type DraftingService interface {
	// AnalyzeImpact assesses how the release notes affect the article.
	// An unparseable response is returned as a ParseFailure, not an error.
	AnalyzeImpact(ctx context.Context, notes string, article domain.Document) (domain.ImpactResult, error)

	// GenerateUpdate drafts an updated version of the article.
	GenerateUpdate(ctx context.Context, notes string, article domain.Document) (*domain.Draft, error)

	// Compare runs impact analysis and update generation for one article.
	Compare(ctx context.Context, notes string, article domain.Document) (*domain.Comparison, error)

	// SuggestUpdate returns short advice on how to update the article.
	SuggestUpdate(ctx context.Context, notes string, article domain.Document) (string, error)

	// DraftArticle writes a new article for an undocumented topic.
	DraftArticle(ctx context.Context, notes string, topic domain.Topic) (*domain.Draft, error)

	// Translate translates documentation text into language.
	Translate(ctx context.Context, text, language string) (string, error)

	// ExtractReleaseNotes categorises the release notes.
	ExtractReleaseNotes(ctx context.Context, notes string) (domain.Parsed[domain.ReleaseNotesExtraction], error)
}
