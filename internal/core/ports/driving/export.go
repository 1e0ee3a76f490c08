package driving

import (
	"io"

	"github.com/custodia-labs/docgap/internal/core/domain"
)

// ExportService serialises results for download.
type ExportService interface {
	// ExportAnalysis writes result to w in the given format.
	// Returns domain.ErrUnsupportedFormat for unknown formats.
	ExportAnalysis(w io.Writer, format domain.ExportFormat, result *domain.AnalysisResult) error

	// ExportDraft writes a generated article to w.
	// Only formats that support drafts are accepted.
	ExportDraft(w io.Writer, format domain.ExportFormat, draft *domain.Draft) error

	// Formats returns the registered formats.
	Formats() []domain.ExportFormat
}
