package services

import (
	"fmt"
	"io"
	"sort"

	"github.com/custodia-labs/docgap/internal/core/domain"
	"github.com/custodia-labs/docgap/internal/core/ports/driven"
	"github.com/custodia-labs/docgap/internal/core/ports/driving"
)

// Ensure ExportService implements the interface.
var _ driving.ExportService = (*ExportService)(nil)

// ExportService dispatches to the registered exporter for a format.
type ExportService struct {
	exporters map[domain.ExportFormat]driven.Exporter
}

// NewExportService creates an export service with the given exporters.
// A later exporter for the same format replaces an earlier one.
func NewExportService(exporters ...driven.Exporter) *ExportService {
	s := &ExportService{exporters: make(map[domain.ExportFormat]driven.Exporter)}
	for _, e := range exporters {
		s.Register(e)
	}
	return s
}

// Register adds an exporter.
func (s *ExportService) Register(e driven.Exporter) {
	s.exporters[e.Format()] = e
}

// ExportAnalysis writes result to w in the given format.
func (s *ExportService) ExportAnalysis(w io.Writer, format domain.ExportFormat, result *domain.AnalysisResult) error {
	if result == nil {
		return fmt.Errorf("%w: no analysis result", domain.ErrInvalidInput)
	}
	e, ok := s.exporters[format]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, format)
	}
	if err := e.ExportAnalysis(w, result); err != nil {
		return fmt.Errorf("export %s: %w", format, err)
	}
	return nil
}

// ExportDraft writes a generated article to w.
func (s *ExportService) ExportDraft(w io.Writer, format domain.ExportFormat, draft *domain.Draft) error {
	if draft == nil {
		return fmt.Errorf("%w: no draft", domain.ErrInvalidInput)
	}
	e, ok := s.exporters[format].(driven.DraftExporter)
	if !ok {
		return fmt.Errorf("%w: drafts cannot be exported as %s", domain.ErrUnsupportedFormat, format)
	}
	if err := e.ExportDraft(w, draft); err != nil {
		return fmt.Errorf("export draft %s: %w", format, err)
	}
	return nil
}

// Formats returns the registered formats in a stable order.
func (s *ExportService) Formats() []domain.ExportFormat {
	formats := make([]domain.ExportFormat, 0, len(s.exporters))
	for f := range s.exporters {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}
