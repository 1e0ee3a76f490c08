// Package cli implements the docgap command line interface with cobra.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docgap/internal/core/domain"
	"github.com/custodia-labs/docgap/internal/core/ports/driving"
	"github.com/custodia-labs/docgap/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// skipBootstrap marks commands that run without services.
const skipBootstrap = "skip-bootstrap"

// NotesFetcher resolves release notes from a named source.
type NotesFetcher interface {
	FetchNotes(ctx context.Context, source, ref string) (*domain.ReleaseNotes, error)
}

// CacheClearer empties the result and embedding cache.
type CacheClearer interface {
	Clear(ctx context.Context) error
}

// Services holds everything the commands call.
type Services struct {
	Analysis driving.AnalysisService
	Articles driving.ArticleService
	Drafting driving.DraftingService
	Export   driving.ExportService
	Settings driving.SettingsService
	Notes    NotesFetcher

	// Cache is nil when caching is disabled.
	Cache CacheClearer

	// Server is the HTTP API configuration.
	Server domain.ServerSettings

	// Close releases the services when the command finishes.
	Close func() error
}

// Bootstrap builds the services on first use.
type Bootstrap func(ctx context.Context) (*Services, error)

var (
	analysisService driving.AnalysisService
	articleService  driving.ArticleService
	draftingService driving.DraftingService
	exportService   driving.ExportService
	settingsService driving.SettingsService
	notesFetcher    NotesFetcher
	cacheClearer    CacheClearer
	serverSettings  domain.ServerSettings

	bootstrap Bootstrap
	closeFn   func() error
)

var rootCmd = &cobra.Command{
	Use:   "docgap",
	Short: "Find documentation gaps in release notes",
	Long: `docgap matches release notes against a help-center corpus, reports
the articles that need updating and the topics nothing documents yet, and
drafts new or updated articles with an LLM.

Release notes come from a file, stdin, a URL, a GitHub release or a
Google Drive document.`,
	SilenceUsage:      true,
	PersistentPreRunE: runBootstrap,
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "print diagnostic logs to stderr")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetServices injects the services directly.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	analysisService = s.Analysis
	articleService = s.Articles
	draftingService = s.Drafting
	exportService = s.Export
	settingsService = s.Settings
	notesFetcher = s.Notes
	cacheClearer = s.Cache
	serverSettings = s.Server
	closeFn = s.Close
}

// SetBootstrap registers the function that builds the services the first
// time a command needs them.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// Execute runs the root command.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx, which commands see as
// cmd.Context().
func ExecuteContext(ctx context.Context) error {
	defer func() {
		if closeFn != nil {
			if err := closeFn(); err != nil {
				logger.Warn("[cli] shutdown: %v", err)
			}
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

func runBootstrap(cmd *cobra.Command, _ []string) error {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err == nil && verbose {
		logger.SetVerbose(true)
	}

	if _, ok := cmd.Annotations[skipBootstrap]; ok {
		return nil
	}
	if bootstrap == nil || analysisService != nil {
		return nil
	}

	s, err := bootstrap(cmd.Context())
	if err != nil {
		return fmt.Errorf("start docgap: %w", err)
	}
	SetServices(s)
	return nil
}

// friendly rewrites errors the user can act on.
func friendly(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrLLMUnavailable):
		return fmt.Errorf("%w: configure one with 'docgap settings llm'", err)
	case errors.Is(err, domain.ErrCorpusUnavailable):
		return fmt.Errorf("%w (check 'docgap settings show')", err)
	}
	return err
}
