package driving

import (
	"context"

	"github.com/custodia-labs/docgap/internal/core/domain"
)

// AnalysisService runs the release-notes analysis pipeline.
type AnalysisService interface {
	// Analyze matches release notes against the corpus and reports gaps.
	// Returns domain.ErrEmptyReleaseNotes before any external call when the
	// notes are blank, and domain.ErrCorpusUnavailable when no corpus can be loaded.
	Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error)

	// DetectGaps returns only the uncovered topics of the release notes.
	DetectGaps(ctx context.Context, req domain.AnalysisRequest) ([]domain.Gap, error)

	// SuggestGaps asks the LLM for feature-level gap candidates and keeps
	// the ones the corpus does not cover.
	// Returns domain.ErrLLMUnavailable if no LLM is configured.
	SuggestGaps(ctx context.Context, req domain.AnalysisRequest) ([]domain.Gap, error)

	// Classify maps a score on the given scale to a suggestion label.
	Classify(score float64, scale domain.Scale) domain.Label
}
