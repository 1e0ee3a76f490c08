package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docgap/internal/core/domain"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file|-]",
	Short: "Match release notes against the help center",
	Long: `Rank help-center articles by relevance to the release notes, classify
each match with a suggested action and list the topics no article covers.

Release notes are read from a file, from stdin with "-", or from one of
--github, --gdrive, --url or --text.

Examples:
  docgap analyze notes.md
  git log --oneline v2.3..v2.4 | docgap analyze -
  docgap analyze --github acme/modeler@v2.4 --format html --out report.html
  docgap analyze --gdrive 1AbC... --interactive`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

var exportCmd = &cobra.Command{
	Use:   "export [file|-]",
	Short: "Analyze release notes and write a report file",
	Long: `Run the analysis and write the report in the chosen format. Without
--out the file is named after the release version, for example
docgap-report-2.4.xlsx.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	for _, c := range []*cobra.Command{analyzeCmd, exportCmd} {
		addNotesFlags(c)
		c.Flags().Int("top", 0, "number of matched articles (default from settings)")
		c.Flags().Int("gaps", 0, "maximum number of gaps (default from settings)")
		c.Flags().Bool("lexical", false, "skip embeddings and rank by token overlap")
		c.Flags().StringP("out", "o", "", "write the report to a file")
	}
	analyzeCmd.Flags().StringP("format", "f", "", "report format: json, markdown, xml, html, xlsx or paligo")
	analyzeCmd.Flags().Bool("json", false, "shorthand for --format json")
	analyzeCmd.Flags().BoolP("interactive", "i", false, "browse the results in the terminal UI")
	exportCmd.Flags().StringP("format", "f", string(domain.ExportMarkdown), "report format: json, markdown, xml, html, xlsx or paligo")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(exportCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		format = string(domain.ExportJSON)
	}
	out, _ := cmd.Flags().GetString("out")
	interactive, _ := cmd.Flags().GetBool("interactive")
	if interactive && (format != "" || out != "") {
		return fmt.Errorf("%w: --interactive cannot be combined with --format or --out", domain.ErrInvalidInput)
	}

	var exportFormat domain.ExportFormat
	if format != "" {
		f, err := parseFormat(format)
		if err != nil {
			return err
		}
		exportFormat = f
	} else if out != "" {
		exportFormat = domain.ExportMarkdown
	}

	result, notes, err := analyze(cmd, argOrEmpty(args, 0))
	if err != nil {
		return err
	}

	switch {
	case interactive:
		return runViewer(cmd, result, notes)
	case exportFormat != "":
		return writeReport(cmd, exportFormat, out, result)
	default:
		printResult(cmd.OutOrStdout(), result)
		return nil
	}
}

func runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	exportFormat, err := parseFormat(format)
	if err != nil {
		return err
	}

	result, _, err := analyze(cmd, argOrEmpty(args, 0))
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = reportFileName(result.Version, exportFormat)
	}
	if err := writeReport(cmd, exportFormat, out, result); err != nil {
		return err
	}
	if out != "-" {
		cmd.Printf("Report written to %s\n", out)
	}
	return nil
}

// analyze runs the analysis and returns the result with the notes it was built from.
func analyze(cmd *cobra.Command, path string) (*domain.AnalysisResult, *domain.ReleaseNotes, error) {
	if analysisService == nil {
		return nil, nil, errors.New("analysis service not configured")
	}

	notes, err := readNotes(cmd, path)
	if err != nil {
		return nil, nil, err
	}

	req := notes.Request()
	req.TopN, _ = cmd.Flags().GetInt("top")
	req.GapCap, _ = cmd.Flags().GetInt("gaps")
	req.ForceLexical, _ = cmd.Flags().GetBool("lexical")

	result, err := analysisService.Analyze(cmd.Context(), req)
	if err != nil {
		return nil, nil, friendly(err)
	}
	return result, notes, nil
}

func writeReport(cmd *cobra.Command, format domain.ExportFormat, out string, result *domain.AnalysisResult) error {
	if exportService == nil {
		return errors.New("export service not configured")
	}
	return exportTo(cmd.OutOrStdout(), out, format, func(w io.Writer) error {
		return exportService.ExportAnalysis(w, format, result)
	})
}

// reportFileName derives a file name from the release version.
func reportFileName(version string, format domain.ExportFormat) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, strings.TrimSpace(version))
	if name == "" || name == "Unknown" {
		name = "latest"
	}
	return fmt.Sprintf("docgap-report-%s.%s", name, format.Extension())
}

// printResult writes the plain-text report.
func printResult(w io.Writer, r *domain.AnalysisResult) {
	fmt.Fprintf(w, "Documentation Gap Analysis: %s (%s)\n", r.Version, r.Date)
	fmt.Fprintf(w, "Ranking: %s\n", r.Method.Description())
	fmt.Fprintf(w, "%s\n\n", r.Summary)

	fmt.Fprintf(w, "Articles to update (%d of %d searched)\n", len(r.Articles), r.TotalArticlesSearched)
	if len(r.Articles) == 0 {
		fmt.Fprintln(w, "  No related articles found.")
	}
	for i, a := range r.Articles {
		fmt.Fprintf(w, "  %d. [%3d%%] %s\n", i+1, int(domain.Scale0To100.Present(a.RelevanceScore)), a.Document.Title)
		fmt.Fprintf(w, "       %s", a.Suggestion)
		if a.Document.URL != "" {
			fmt.Fprintf(w, "  %s", a.Document.URL)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Documentation gaps (%d)\n", len(r.Gaps))
	if len(r.Gaps) == 0 {
		fmt.Fprintln(w, "  No gaps identified.")
	}
	for _, g := range r.Gaps {
		fmt.Fprintf(w, "  - %s (%d mentions)\n", g.Topic, g.Mentions)
	}

	if r.Method == domain.ScoringLexical {
		fmt.Fprintln(w, "\nScores come from token overlap; configure an embedding provider for semantic ranking.")
	}
}
