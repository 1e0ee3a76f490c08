package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docgap/internal/adapters/driving/tui"
	"github.com/custodia-labs/docgap/internal/core/domain"
)

// runApp starts a TUI app. Replaced in tests.
var runApp = func(app *tui.App) error {
	return app.Run()
}

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for docgap.

The TUI analyses release notes, shows matched articles, gaps and topics
in tabs, browses the help center and asks the LLM how to update an
article.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Analyze / Open
  Tab      - Next result tab
  s        - Suggest an update for the open article
  Esc      - Back
  q        - Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// tuiPorts builds the TUI ports from the configured services.
func tuiPorts() (*tui.Ports, error) {
	if analysisService == nil {
		return nil, errors.New("analysis service not configured")
	}
	if articleService == nil {
		return nil, errors.New("article service not configured")
	}
	ports := tui.NewPorts(analysisService, articleService)
	ports.Drafting = draftingService
	ports.Settings = settingsService
	ports.Notes = notesFetcher
	return ports, nil
}

func runTUI(cmd *cobra.Command, _ []string) error {
	return startTUI(cmd, nil, nil)
}

// runViewer opens the TUI on an analysis result.
func runViewer(cmd *cobra.Command, result *domain.AnalysisResult, notes *domain.ReleaseNotes) error {
	return startTUI(cmd, result, notes)
}

func startTUI(cmd *cobra.Command, result *domain.AnalysisResult, notes *domain.ReleaseNotes) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	ports, err := tuiPorts()
	if err != nil {
		return err
	}

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())
	if result != nil {
		app.ShowResult(result, notes)
	}

	if err := runApp(app); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
