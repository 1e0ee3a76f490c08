package driven

import (
	"io"

	"github.com/custodia-labs/docgap/internal/core/domain"
)

// Exporter serialises analysis results in one format.
type Exporter interface {
	// Format returns the format this exporter writes.
	Format() domain.ExportFormat

	// ExportAnalysis writes the analysis result to w.
	ExportAnalysis(w io.Writer, result *domain.AnalysisResult) error
}

// DraftExporter is implemented by exporters that can also write a
// generated article.
type DraftExporter interface {
	Exporter

	// ExportDraft writes the draft to w.
	ExportDraft(w io.Writer, draft *domain.Draft) error
}
