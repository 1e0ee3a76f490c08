package exporters

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/custodia-labs/docgap/internal/core/domain"
	"github.com/custodia-labs/docgap/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.DraftExporter = (*HTMLExporter)(nil)

const pageStyle = `body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; color: #1f2937; }
.container { max-width: 900px; margin: 0 auto; padding: 20px; }
h2 { color: #374151; margin-top: 30px; }
table { border-collapse: collapse; width: 100%; }
th, td { text-align: left; padding: 6px 10px; border-bottom: 1px solid #e5e7eb; }
.score { font-weight: 600; }
.high { color: #dc2626; } .medium { color: #f59e0b; } .low { color: #10b981; }
.gap { border-left: 4px solid #3b82f6; padding-left: 16px; margin: 16px 0; }`

var analysisTemplate = template.Must(template.New("analysis").Funcs(template.FuncMap{
	"band": scoreBand,
	"inc":  func(i int) int { return i + 1 },
	"css":  func() template.CSS { return pageStyle },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Documentation Gap Analysis: {{.Version}}</title>
  <style>{{css}}</style>
</head>
<body>
  <div class="container">
    <h1>Documentation Gap Analysis: {{.Version}}</h1>
    <p>Release date: {{.Date}}{{if .Timestamp}} &middot; generated {{.Timestamp}}{{end}} &middot; {{.Method}} ranking</p>
    <h2>Summary</h2>
    <p>{{.Summary}}</p>
    <h2>Articles to Update</h2>
{{- if .Articles}}
    <table>
      <tr><th>#</th><th>Article</th><th>Relevance</th><th>Suggestion</th></tr>
{{- range $i, $a := .Articles}}
      <tr><td>{{inc $i}}</td><td>{{if $a.URL}}<a href="{{$a.URL}}">{{$a.Title}}</a>{{else}}{{$a.Title}}{{end}}</td><td class="score {{band $a.Score}}">{{$a.Score}}%</td><td>{{$a.Suggestion}}</td></tr>
{{- end}}
    </table>
{{- else}}
    <p><em>No related articles found.</em></p>
{{- end}}
    <h2>Documentation Gaps</h2>
{{- range .Gaps}}
    <div class="gap"><h3>{{.Topic}}</h3><p>{{.Reason}} ({{.Mentions}} mentions)</p></div>
{{- else}}
    <p><em>No gaps identified.</em></p>
{{- end}}
  </div>
</body>
</html>
`))

var draftTemplate = template.Must(template.New("draft").Funcs(template.FuncMap{
	"css": func() template.CSS { return pageStyle },
}).Parse(`<!DOCTYPE html>
<html lang="{{if .Language}}{{.Language}}{{else}}en{{end}}">
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <style>{{css}}</style>
</head>
<body>
  <div class="container">
{{.Body}}
  </div>
</body>
</html>
`))

// HTMLExporter writes standalone HTML pages.
type HTMLExporter struct {
	md goldmark.Markdown
}

// NewHTMLExporter creates an HTML exporter.
func NewHTMLExporter() *HTMLExporter {
	return &HTMLExporter{md: goldmark.New(goldmark.WithExtensions(extension.GFM))}
}

// Format returns domain.ExportHTML.
func (e *HTMLExporter) Format() domain.ExportFormat {
	return domain.ExportHTML
}

// ExportAnalysis writes the result as an HTML report.
func (e *HTMLExporter) ExportAnalysis(w io.Writer, result *domain.AnalysisResult) error {
	return analysisTemplate.Execute(w, newReport(result))
}

// ExportDraft renders the draft's Markdown body into an HTML page.
// Raw HTML inside the body is not passed through.
func (e *HTMLExporter) ExportDraft(w io.Writer, draft *domain.Draft) error {
	body := strings.TrimSpace(draft.Body)
	if draft.Title != "" && !strings.HasPrefix(body, "# ") {
		body = "# " + draft.Title + "\n\n" + body
	}

	var buf bytes.Buffer
	if err := e.md.Convert([]byte(body), &buf); err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}

	return draftTemplate.Execute(w, struct {
		Title    string
		Language string
		Body     template.HTML
	}{draft.Title, draft.Language, template.HTML(buf.String())}) //nolint:gosec // goldmark omits raw HTML unless WithUnsafe is set
}

func scoreBand(score int) string {
	switch {
	case score >= 80:
		return "high"
	case score >= 50:
		return "medium"
	default:
		return "low"
	}
}
