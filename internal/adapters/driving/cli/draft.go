package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docgap/internal/core/domain"
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Assess and write articles with the LLM",
	Long: `Use the configured LLM to assess how a release affects an article,
rewrite it, draft a new article for an undocumented topic, or translate
documentation. Every subcommand needs an LLM provider; see
'docgap settings llm'.`,
}

var draftImpactCmd = &cobra.Command{
	Use:   "impact [article-id] [file|-]",
	Short: "Score how the release affects an article",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runDraftImpact,
}

var draftUpdateCmd = &cobra.Command{
	Use:   "update [article-id] [file|-]",
	Short: "Draft an updated version of an article",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runDraftUpdate,
}

var draftCompareCmd = &cobra.Command{
	Use:   "compare [article-id] [file|-]",
	Short: "Assess impact and draft the update in one step",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runDraftCompare,
}

var draftSuggestCmd = &cobra.Command{
	Use:   "suggest [article-id] [file|-]",
	Short: "Short advice on how to update an article",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runDraftSuggest,
}

var draftArticleCmd = &cobra.Command{
	Use:   "article [topic] [file|-]",
	Short: "Draft a new article for an undocumented topic",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runDraftArticle,
}

var draftTranslateCmd = &cobra.Command{
	Use:   "translate [file|-]",
	Short: "Translate documentation text",
	Long: `Translate documentation text. With DEEPL_API_KEY set, Finnish, German,
Dutch and French go to DeepL; other languages, and DeepL failures, use
the LLM.`,
	Args: cobra.MaximumNArgs(1),
	RunE:  runDraftTranslate,
}

var draftExtractCmd = &cobra.Command{
	Use:   "extract [file|-]",
	Short: "Sort release notes into features, fixes and breaking changes",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDraftExtract,
}

func init() {
	all := []*cobra.Command{
		draftImpactCmd, draftUpdateCmd, draftCompareCmd, draftSuggestCmd,
		draftArticleCmd, draftTranslateCmd, draftExtractCmd,
	}
	for _, c := range all {
		addNotesFlags(c)
		draftCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{draftUpdateCmd, draftArticleCmd, draftTranslateCmd} {
		c.Flags().StringP("format", "f", "", "write the draft as markdown, html or json")
		c.Flags().StringP("out", "o", "", "write the draft to a file")
	}
	draftTranslateCmd.Flags().StringP("lang", "l", "", "target language, for example German or de")
	_ = draftTranslateCmd.MarkFlagRequired("lang")

	rootCmd.AddCommand(draftCmd)
}

// articleAndNotes loads the article named by args[0] and the release notes.
func articleAndNotes(cmd *cobra.Command, args []string) (*domain.Document, *domain.ReleaseNotes, error) {
	if draftingService == nil {
		return nil, nil, errors.New("drafting service not configured")
	}
	if articleService == nil {
		return nil, nil, errors.New("article service not configured")
	}

	notes, err := readNotes(cmd, argOrEmpty(args, 1))
	if err != nil {
		return nil, nil, err
	}
	doc, err := articleService.Get(cmd.Context(), args[0])
	if err != nil {
		return nil, nil, friendly(err)
	}
	return doc, notes, nil
}

func runDraftImpact(cmd *cobra.Command, args []string) error {
	doc, notes, err := articleAndNotes(cmd, args)
	if err != nil {
		return err
	}

	result, err := draftingService.AnalyzeImpact(cmd.Context(), notes.Text, *doc)
	if err != nil {
		return friendly(err)
	}
	printImpact(cmd, doc.Title, result)
	return nil
}

func runDraftUpdate(cmd *cobra.Command, args []string) error {
	doc, notes, err := articleAndNotes(cmd, args)
	if err != nil {
		return err
	}

	draft, err := draftingService.GenerateUpdate(cmd.Context(), notes.Text, *doc)
	if err != nil {
		return friendly(err)
	}
	return writeDraft(cmd, draft)
}

func runDraftCompare(cmd *cobra.Command, args []string) error {
	doc, notes, err := articleAndNotes(cmd, args)
	if err != nil {
		return err
	}

	cmp, err := draftingService.Compare(cmd.Context(), notes.Text, *doc)
	if err != nil {
		return friendly(err)
	}

	printImpact(cmd, doc.Title, cmp.Impact)
	if !cmp.ShouldUpdate {
		cmd.Println("\nNo update needed.")
		return nil
	}
	cmd.Println()
	return printMarkdown(cmd.OutOrStdout(), cmp.SuggestedUpdate)
}

func runDraftSuggest(cmd *cobra.Command, args []string) error {
	doc, notes, err := articleAndNotes(cmd, args)
	if err != nil {
		return err
	}

	advice, err := draftingService.SuggestUpdate(cmd.Context(), notes.Text, *doc)
	if err != nil {
		return friendly(err)
	}
	cmd.Printf("%s\n\n", doc.Title)
	cmd.Println(advice)
	return nil
}

func runDraftArticle(cmd *cobra.Command, args []string) error {
	if draftingService == nil {
		return errors.New("drafting service not configured")
	}
	notes, err := readNotes(cmd, argOrEmpty(args, 1))
	if err != nil {
		return err
	}

	draft, err := draftingService.DraftArticle(cmd.Context(), notes.Text, domain.Topic(args[0]))
	if err != nil {
		return friendly(err)
	}
	return writeDraft(cmd, draft)
}

func runDraftTranslate(cmd *cobra.Command, args []string) error {
	if draftingService == nil {
		return errors.New("drafting service not configured")
	}
	lang, _ := cmd.Flags().GetString("lang")
	source, err := readNotes(cmd, argOrEmpty(args, 0))
	if err != nil {
		return err
	}

	text, err := draftingService.Translate(cmd.Context(), source.Text, lang)
	if err != nil {
		return friendly(err)
	}
	return writeDraft(cmd, &domain.Draft{Body: text, Language: lang})
}

func runDraftExtract(cmd *cobra.Command, args []string) error {
	if draftingService == nil {
		return errors.New("drafting service not configured")
	}
	notes, err := readNotes(cmd, argOrEmpty(args, 0))
	if err != nil {
		return err
	}

	parsed, err := draftingService.ExtractReleaseNotes(cmd.Context(), notes.Text)
	if err != nil {
		return friendly(err)
	}
	if !parsed.OK() {
		cmd.Printf("The LLM response could not be parsed (%s):\n\n%s\n", parsed.Failure.Reason, parsed.Failure.Raw)
		return nil
	}

	x := parsed.Value
	printList(cmd, "Features", x.Features)
	printList(cmd, "Bug fixes", x.BugFixes)
	printList(cmd, "Deprecations", x.Deprecations)
	printList(cmd, "Breaking changes", x.BreakingChanges)
	return nil
}

func printList(cmd *cobra.Command, heading string, items []string) {
	cmd.Printf("%s (%d)\n", heading, len(items))
	for _, item := range items {
		cmd.Printf("  - %s\n", item)
	}
	cmd.Println()
}

func printImpact(cmd *cobra.Command, title string, result domain.ImpactResult) {
	if !result.OK() {
		cmd.Printf("Impact on %q could not be parsed (%s). Raw response:\n\n%s\n",
			title, result.Failure.Reason, result.Failure.Raw)
		return
	}
	a := result.Value
	cmd.Printf("Impact on %q: %d/10 (%s)\n", title, a.Score, a.Severity)
	cmd.Printf("Suggested action: %s\n", a.Suggestion(domain.DefaultThresholds()))
	if a.Category != "" {
		cmd.Printf("Category: %s\n", a.Category)
	}
	if len(a.AffectedRoles) > 0 {
		cmd.Printf("Affected roles: %s\n", strings.Join(a.AffectedRoles, ", "))
	}
	if a.Summary != "" {
		cmd.Printf("\n%s\n", a.Summary)
	}
	if a.ActionRequired != "" {
		cmd.Printf("\nAction required: %s\n", a.ActionRequired)
	}
	if a.RiskAssessment != "" {
		cmd.Printf("Risk: %s\n", a.RiskAssessment)
	}
}

// writeDraft prints the draft, or exports it when --format or --out is set.
func writeDraft(cmd *cobra.Command, draft *domain.Draft) error {
	format, _ := cmd.Flags().GetString("format")
	out, _ := cmd.Flags().GetString("out")
	if format == "" && out == "" {
		body := draft.Body
		if draft.Title != "" && !strings.HasPrefix(strings.TrimSpace(body), "# ") {
			body = fmt.Sprintf("# %s\n\n%s", draft.Title, body)
		}
		return printMarkdown(cmd.OutOrStdout(), body)
	}

	if format == "" {
		format = string(domain.ExportMarkdown)
	}
	f, err := parseFormat(format)
	if err != nil {
		return err
	}
	if exportService == nil {
		return errors.New("export service not configured")
	}
	return exportTo(cmd.OutOrStdout(), out, f, func(w io.Writer) error {
		return exportService.ExportDraft(w, f, draft)
	})
}
