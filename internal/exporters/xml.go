package exporters

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/custodia-labs/docgap/internal/core/domain"
	"github.com/custodia-labs/docgap/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.Exporter = (*XMLExporter)(nil)

// XMLExporter writes an <analysis> document.
type XMLExporter struct{}

// NewXMLExporter creates an XML exporter.
func NewXMLExporter() *XMLExporter {
	return &XMLExporter{}
}

// Format returns domain.ExportXML.
func (e *XMLExporter) Format() domain.ExportFormat {
	return domain.ExportXML
}

// ExportAnalysis writes the result as XML.
func (e *XMLExporter) ExportAnalysis(w io.Writer, result *domain.AnalysisResult) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(newReport(result)); err != nil {
		return fmt.Errorf("encode xml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
