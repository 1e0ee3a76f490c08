package exporters

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/docgap/internal/core/domain"
	"github.com/custodia-labs/docgap/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.DraftExporter = (*MarkdownExporter)(nil)

// MarkdownExporter writes a human-readable report.
type MarkdownExporter struct{}

// NewMarkdownExporter creates a Markdown exporter.
func NewMarkdownExporter() *MarkdownExporter {
	return &MarkdownExporter{}
}

// Format returns domain.ExportMarkdown.
func (e *MarkdownExporter) Format() domain.ExportFormat {
	return domain.ExportMarkdown
}

// ExportAnalysis writes the result as a Markdown report.
func (e *MarkdownExporter) ExportAnalysis(w io.Writer, result *domain.AnalysisResult) error {
	r := newReport(result)
	b := bufio.NewWriter(w)

	fmt.Fprintf(b, "# Documentation Gap Analysis Report\n\n")
	fmt.Fprintf(b, "**Version:** %s  \n", r.Version)
	fmt.Fprintf(b, "**Release date:** %s  \n", r.Date)
	if r.Timestamp != "" {
		fmt.Fprintf(b, "**Generated:** %s  \n", r.Timestamp)
	}
	fmt.Fprintf(b, "**Method:** %s\n\n", r.Method)

	fmt.Fprintf(b, "## Summary\n\n")
	if r.Summary != "" {
		fmt.Fprintf(b, "%s\n\n", r.Summary)
	}
	fmt.Fprintf(b, "- Articles searched: %d\n", r.TotalArticlesSearched)
	fmt.Fprintf(b, "- Articles found: %d\n", len(r.Articles))
	fmt.Fprintf(b, "- Documentation gaps: %d\n", len(r.Gaps))
	fmt.Fprintf(b, "- Coverage: %s\n\n", r.Coverage)

	fmt.Fprintf(b, "## Articles to Update\n\n")
	if len(r.Articles) == 0 {
		fmt.Fprintf(b, "_No related articles found._\n\n")
	} else {
		fmt.Fprintf(b, "| # | Article | Relevance | Suggestion |\n|---|---|---|---|\n")
		for i, a := range r.Articles {
			fmt.Fprintf(b, "| %d | %s | %d%% | %s |\n", i+1, mdLink(a.Title, a.URL), a.Score, a.Suggestion)
		}
		fmt.Fprintln(b)
	}

	fmt.Fprintf(b, "## Documentation Gaps\n\n")
	if len(r.Gaps) == 0 {
		fmt.Fprintf(b, "_No gaps identified._\n\n")
	}
	for _, g := range r.Gaps {
		fmt.Fprintf(b, "### %s\n\n%s (%d mentions)\n\n", g.Topic, g.Reason, g.Mentions)
	}

	if len(r.Topics) > 0 {
		fmt.Fprintf(b, "## Key Topics\n\n%s\n", strings.Join(r.Topics, ", "))
	}
	return b.Flush()
}

// ExportDraft writes the draft as a Markdown document.
func (e *MarkdownExporter) ExportDraft(w io.Writer, draft *domain.Draft) error {
	b := bufio.NewWriter(w)
	body := strings.TrimSpace(draft.Body)
	if draft.Title != "" && !strings.HasPrefix(body, "# ") {
		fmt.Fprintf(b, "# %s\n\n", draft.Title)
	}
	fmt.Fprintf(b, "%s\n", body)
	return b.Flush()
}

func mdLink(title, url string) string {
	title = strings.ReplaceAll(title, "|", `\|`)
	if url == "" {
		return title
	}
	return fmt.Sprintf("[%s](%s)", title, url)
}
