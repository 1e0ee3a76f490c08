package exporters

import (
	"encoding/json"
	"io"

	"github.com/custodia-labs/docgap/internal/core/domain"
	"github.com/custodia-labs/docgap/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.DraftExporter = (*JSONExporter)(nil)

// JSONExporter writes indented JSON.
type JSONExporter struct{}

// NewJSONExporter creates a JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// Format returns domain.ExportJSON.
func (e *JSONExporter) Format() domain.ExportFormat {
	return domain.ExportJSON
}

// ExportAnalysis writes the result as JSON.
func (e *JSONExporter) ExportAnalysis(w io.Writer, result *domain.AnalysisResult) error {
	return encodeJSON(w, newReport(result))
}

// ExportDraft writes the draft as JSON.
func (e *JSONExporter) ExportDraft(w io.Writer, draft *domain.Draft) error {
	return encodeJSON(w, struct {
		Title    string `json:"title"`
		Body     string `json:"body"`
		Topic    string `json:"topic,omitempty"`
		Language string `json:"language,omitempty"`
	}{draft.Title, draft.Body, draft.Topic.String(), draft.Language})
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
