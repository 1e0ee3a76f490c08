package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docgap/internal/core/domain"
)

var gapsCmd = &cobra.Command{
	Use:   "gaps [file|-]",
	Short: "List topics in the release notes that no article covers",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runGaps,
}

var gapsSuggestCmd = &cobra.Command{
	Use:   "suggest [file|-]",
	Short: "Ask the LLM for feature-level gaps",
	Long: `Ask the LLM which features in the release notes deserve their own
article, then keep the ones the help center does not already cover.
Requires a configured LLM provider.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGapsSuggest,
}

func init() {
	for _, c := range []*cobra.Command{gapsCmd, gapsSuggestCmd} {
		addNotesFlags(c)
		c.Flags().Int("max", 0, "maximum number of gaps")
	}
	gapsCmd.Flags().Bool("lexical", false, "skip embeddings when checking coverage")
	gapsCmd.AddCommand(gapsSuggestCmd)
	rootCmd.AddCommand(gapsCmd)
}

func runGaps(cmd *cobra.Command, args []string) error {
	req, err := gapsRequest(cmd, args)
	if err != nil {
		return err
	}
	req.ForceLexical, _ = cmd.Flags().GetBool("lexical")

	gaps, err := analysisService.DetectGaps(cmd.Context(), req)
	if err != nil {
		return friendly(err)
	}
	printGaps(cmd, gaps)
	return nil
}

func runGapsSuggest(cmd *cobra.Command, args []string) error {
	req, err := gapsRequest(cmd, args)
	if err != nil {
		return err
	}

	gaps, err := analysisService.SuggestGaps(cmd.Context(), req)
	if err != nil {
		return friendly(err)
	}
	printGaps(cmd, gaps)
	return nil
}

func gapsRequest(cmd *cobra.Command, args []string) (domain.AnalysisRequest, error) {
	if analysisService == nil {
		return domain.AnalysisRequest{}, errors.New("analysis service not configured")
	}
	notes, err := readNotes(cmd, argOrEmpty(args, 0))
	if err != nil {
		return domain.AnalysisRequest{}, err
	}
	req := notes.Request()
	req.GapCap, _ = cmd.Flags().GetInt("max")
	return req, nil
}

func printGaps(cmd *cobra.Command, gaps []domain.Gap) {
	if len(gaps) == 0 {
		cmd.Println("No documentation gaps found.")
		return
	}
	cmd.Printf("Documentation gaps (%d):\n", len(gaps))
	for _, g := range gaps {
		cmd.Printf("  - %s (%d mentions)\n", g.Topic, g.Mentions)
		if g.Reason != "" {
			cmd.Printf("    %s\n", g.Reason)
		}
	}
}
