package domain

import "strings"

// ExportFormat identifies a serialisation of analysis results.
type ExportFormat string

// Supported export formats.
const (
	ExportJSON     ExportFormat = "json"
	ExportMarkdown ExportFormat = "markdown"
	ExportXML      ExportFormat = "xml"
	ExportHTML     ExportFormat = "html"
	ExportXLSX     ExportFormat = "xlsx"

	// ExportPaligo is a Paligo 3.0 XML document for import as a draft topic.
	ExportPaligo ExportFormat = "paligo"
)

// ParseExportFormat parses a format name. "md" is accepted for markdown.
func ParseExportFormat(s string) (ExportFormat, bool) {
	f := ExportFormat(strings.ToLower(strings.TrimSpace(s)))
	if f == "md" {
		f = ExportMarkdown
	}
	return f, f.IsValid()
}

// IsValid returns true if the format is recognised.
func (f ExportFormat) IsValid() bool {
	switch f {
	case ExportJSON, ExportMarkdown, ExportXML, ExportHTML, ExportXLSX, ExportPaligo:
		return true
	default:
		return false
	}
}

// ContentType returns the MIME type for the format.
func (f ExportFormat) ContentType() string {
	switch f {
	case ExportJSON:
		return "application/json"
	case ExportMarkdown:
		return "text/markdown; charset=utf-8"
	case ExportXML, ExportPaligo:
		return "application/xml"
	case ExportHTML:
		return "text/html; charset=utf-8"
	case ExportXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// Extension returns the file extension for the format, without a dot.
func (f ExportFormat) Extension() string {
	switch f {
	case ExportMarkdown:
		return "md"
	case ExportPaligo:
		return "paligo.xml"
	default:
		return string(f)
	}
}

// AllExportFormats returns every supported format.
func AllExportFormats() []ExportFormat {
	return []ExportFormat{ExportJSON, ExportMarkdown, ExportXML, ExportHTML, ExportXLSX, ExportPaligo}
}
