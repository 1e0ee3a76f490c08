package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docgap/internal/core/domain"
)

const notSet = "(not set)"

var errNoSettings = errors.New("settings service not configured")

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers, the help center and analysis options.

Settings live in ~/.docgap/config.toml. Environment variables and a .env
file override them for the current process.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a single setting",
	Long: `Set one configuration key. An empty value restores the default.

Keys:
  embedding.provider|model|base_url|api_key
  llm.provider|model|base_url|api_key|timeout
  helpcenter.kind|subdomain|base_url|email|api_token|oauth_token|locale|path
  helpcenter.requests_per_minute|markdown_bodies
  analysis.top_n|gap_cap|max_corpus|batch_size|concurrency|char_budget|topic_cap
  analysis.coverage_threshold|semantic_gaps|call_timeout|stop_words
  analysis.thresholds.related|new|priority
  cache.backend|path|redis_addr|result_ttl|embedding_ttl
  server.addr|cors_origins
  github.token|base_url
  gdrive.credentials_file|api_key|access_token
  translation.deepl_api_key|deepl_base_url

Examples:
  docgap settings set helpcenter.subdomain acme
  docgap settings set analysis.stop_words "the,and,build"
  docgap settings set cache.backend sqlite`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

// row is one "label: value" line of the settings report.
type row struct{ label, value string }

type section struct {
	title string
	rows  []row
}

func (s *section) add(label, value string) {
	s.rows = append(s.rows, row{label, value})
}

func (s *section) addf(label, format string, args ...any) {
	s.add(label, fmt.Sprintf(format, args...))
}

func writeSections(w io.Writer, sections []section) {
	for _, s := range sections {
		fmt.Fprintf(w, "[%s]\n", s.title)
		for _, r := range s.rows {
			fmt.Fprintf(w, "  %s: %s\n", r.label, r.value)
		}
		fmt.Fprintln(w)
	}
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettings
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Current Settings")
	fmt.Fprintln(out, "================")
	fmt.Fprintln(out)

	llm := providerSection("LLM", settings.LLM.Provider, settings.LLM.Model,
		settings.LLM.BaseURL, settings.LLM.APIKey,
		settings.LLM.IsConfigured(), "drafting disabled")
	llm.add("Timeout", settings.LLM.Timeout.String())

	writeSections(out, []section{
		providerSection("Embedding", settings.Embedding.Provider, settings.Embedding.Model,
			settings.Embedding.BaseURL, settings.Embedding.APIKey,
			settings.Embedding.IsConfigured(), "lexical ranking"),
		llm,
		translationSection(settings.Translation),
		helpCenterSection(settings.HelpCenter),
		analysisSection(settings.Analysis),
		cacheSection(settings.Cache),
		sourcesSection(settings.Sources),
	})

	if err := settingsService.Validate(); err != nil {
		fmt.Fprintf(out, "Warning: %v\n", err)
		fmt.Fprintln(out, "Run 'docgap settings wizard' to fix configuration issues.")
		return nil
	}
	fmt.Fprintln(out, "Configuration is valid.")
	return nil
}

func providerSection(
	title string, p domain.AIProvider, model, baseURL, apiKey string, configured bool, fallback string,
) section {
	s := section{title: title}
	s.add("Provider", p.Description())
	s.add("Model", model)
	if p.IsLocal() {
		s.add("Base URL", baseURL)
	}
	if p.RequiresAPIKey() {
		s.add("API Key", secret(apiKey))
	}
	s.add("Status", status(configured, "not configured ("+fallback+")"))
	return s
}

func translationSection(t domain.TranslationSettings) section {
	s := section{title: "Translation"}
	s.add("DeepL API Key", secret(t.DeepLAPIKey))
	if t.DeepLBaseURL != "" {
		s.add("DeepL Base URL", t.DeepLBaseURL)
	}
	s.add("Status", status(t.DeepLConfigured(), "LLM only"))
	return s
}

func helpCenterSection(hc domain.HelpCenterSettings) section {
	s := section{title: "Help Center"}
	s.add("Kind", string(hc.Kind))
	if hc.Kind == domain.HelpCenterFile {
		s.add("Path", orDefault(hc.Path, notSet))
	} else {
		s.add("Subdomain", orDefault(hc.Subdomain, notSet))
		if hc.BaseURL != "" {
			s.add("Base URL", hc.BaseURL)
		}
		if hc.OAuthToken != "" {
			s.add("OAuth token", secret(hc.OAuthToken))
		} else {
			s.add("Email", orDefault(hc.Email, notSet))
			s.add("API token", secret(hc.APIToken))
		}
		s.add("Locale", hc.Locale)
	}
	s.add("Status", status(hc.IsConfigured(), "not configured"))
	return s
}

func analysisSection(a domain.AnalysisSettings) section {
	s := section{title: "Analysis"}
	s.addf("Top articles", "%d", a.TopN)
	s.addf("Gap cap", "%d", a.GapCap)
	s.addf("Max corpus", "%d", a.MaxCorpus)
	s.addf("Coverage threshold", "%.2f", a.CoverageThreshold)
	s.addf("Semantic gap check", "%t", a.SemanticGaps)
	s.add("Call timeout", a.CallTimeout.String())
	if len(a.StopWords) > 0 {
		s.addf("Stop words", "%d custom", len(a.StopWords))
	}
	for _, t := range a.Thresholds {
		s.add(fmt.Sprintf(">= %.2f", t.Min), string(t.Label))
	}
	return s
}

func cacheSection(c domain.CacheSettings) section {
	s := section{title: "Cache"}
	s.add("Backend", string(c.Backend))
	switch c.Backend {
	case domain.CacheSQLite:
		s.add("Path", orDefault(c.Path, "~/.docgap/data"))
	case domain.CacheRedis:
		s.add("Redis", orDefault(c.RedisAddr, notSet))
	}
	s.add("Result TTL", c.ResultTTL.String())
	s.add("Embedding TTL", c.EmbeddingTTL.String())
	return s
}

func sourcesSection(src domain.SourceSettings) section {
	s := section{title: "Sources"}
	s.add("GitHub token", secret(src.GitHubToken))
	if src.GitHubBaseURL != "" {
		s.add("GitHub API", src.GitHubBaseURL)
	}
	drive := "not configured"
	switch {
	case src.DriveAccessToken != "":
		drive = "access token"
	case src.DriveCredentialsFile != "":
		drive = src.DriveCredentialsFile
	case src.DriveAPIKey != "":
		drive = "API key"
	}
	s.add("Google Drive", drive)
	return s
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNoSettings
	}

	key, value := args[0], argOrEmpty(args, 1)
	if err := settingsService.Set(key, value); err != nil {
		return err
	}
	switch {
	case value == "":
		cmd.Printf("%s reset to default\n", key)
	case isSecretKey(key):
		cmd.Printf("%s = %s\n", key, maskAPIKey(value))
	default:
		cmd.Printf("%s = %s\n", key, value)
	}
	return nil
}

func status(ok bool, otherwise string) string {
	if ok {
		return "configured"
	}
	return otherwise
}

func secret(value string) string {
	if value == "" {
		return notSet
	}
	return maskAPIKey(value)
}

func isSecretKey(key string) bool {
	return strings.HasSuffix(key, "api_key") || strings.HasSuffix(key, "token")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// maskAPIKey keeps the first and last four characters of long secrets.
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
