package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docgap/internal/core/domain"
)

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Configure the help center and AI providers step by step.`,
	RunE:  runSettingsWizard,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the embedding provider used for semantic ranking.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if settingsService == nil {
			return errNoSettings
		}
		return embeddingStep.run(newPrompter(cmd))
	},
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the LLM provider used for drafting, impact analysis and translation.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if settingsService == nil {
			return errNoSettings
		}
		return llmStep.run(newPrompter(cmd))
	},
}

func init() {
	settingsCmd.AddCommand(settingsWizardCmd, settingsEmbeddingCmd, settingsLLMCmd)
}

// prompter asks questions on the command's streams. Secrets are read
// without echo when stdin is a terminal.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
	fd  int
	tty bool
}

func newPrompter(cmd *cobra.Command) *prompter {
	in := cmd.InOrStdin()
	p := &prompter{in: bufio.NewReader(in), out: cmd.OutOrStdout()}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd, p.tty = int(f.Fd()), true
	}
	return p
}

func (p *prompter) say(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

func (p *prompter) heading(title string) {
	p.say("%s\n%s\n", title, strings.Repeat("-", len(title)))
}

// ask prints question and returns the trimmed answer, or def when blank.
func (p *prompter) ask(question, def string) string {
	if def != "" {
		p.say("%s [%s]: ", question, def)
	} else {
		p.say("%s: ", question)
	}
	line, _ := p.in.ReadString('\n')
	if answer := strings.TrimSpace(line); answer != "" {
		return answer
	}
	return def
}

func (p *prompter) confirm(question string) bool {
	answer := strings.ToLower(p.ask(question+" [Y/n]", ""))
	return answer != "n" && answer != "no"
}

// choose lists options and returns the 0-based index picked; 1 is the
// default.
func (p *prompter) choose(options []string) int {
	for i, o := range options {
		p.say("  %d. %s\n", i+1, o)
	}
	p.say("\n")
	return parseChoice(p.ask("Enter choice", "1"), len(options), 1) - 1
}

func (p *prompter) secret(question string) string {
	if !p.tty {
		return p.ask(question, "")
	}
	p.say("%s: ", question)
	b, err := term.ReadPassword(p.fd)
	p.say("\n")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func parseChoice(input string, maxVal, defaultVal int) int {
	val, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// providerStep configures one provider role: embeddings or the LLM.
type providerStep struct {
	role      string
	providers func() []domain.AIProvider
	models    func() map[domain.AIProvider]string
	save      func(p domain.AIProvider, model, apiKey string) error
	validate  func() error
}

var embeddingStep = providerStep{
	role:      "Embedding",
	providers: domain.AllEmbeddingProviders,
	models:    domain.DefaultEmbeddingModels,
	save: func(p domain.AIProvider, model, apiKey string) error {
		return settingsService.SetEmbeddingProvider(p, model, apiKey)
	},
	validate: func() error { return settingsService.ValidateEmbeddingConfig() },
}

var llmStep = providerStep{
	role:      "LLM",
	providers: domain.AllLLMProviders,
	models:    domain.DefaultLLMModels,
	save: func(p domain.AIProvider, model, apiKey string) error {
		return settingsService.SetLLMProvider(p, model, apiKey)
	},
	validate: func() error { return settingsService.ValidateLLMConfig() },
}

func (s providerStep) run(p *prompter) error {
	p.say("Select %s Provider\n", s.role)
	providers := s.providers()
	names := make([]string, len(providers))
	for i, pr := range providers {
		names[i] = pr.Description()
	}
	provider := providers[p.choose(names)]

	model := p.ask("Model name", s.models()[provider])

	var apiKey string
	if provider.RequiresAPIKey() {
		if apiKey = p.secret("API key"); apiKey == "" {
			return fmt.Errorf("%w: %s needs an API key", domain.ErrInvalidInput, provider)
		}
	}

	if err := s.save(provider, model, apiKey); err != nil {
		return fmt.Errorf("save %s provider: %w", s.role, err)
	}

	p.say("Validating configuration... ")
	if err := s.validate(); err != nil {
		p.say("FAILED: %v\n", err)
		return fmt.Errorf("%s provider check: %w", s.role, err)
	}
	p.say("OK\n%s provider configured: %s (%s)\n\n", s.role, provider.Description(), model)
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettings
	}
	p := newPrompter(cmd)
	p.say("docgap Settings Wizard\n======================\n\n")

	p.heading("Step 1: Help Center")
	if err := configureHelpCenter(p); err != nil {
		return err
	}

	p.heading("Step 2: Embedding Provider")
	p.say("Without one, articles are ranked by token overlap.\n")
	if p.confirm("Configure an embedding provider?") {
		if err := embeddingStep.run(p); err != nil {
			return err
		}
	}

	p.heading("Step 3: LLM Provider")
	p.say("Needed for drafting, impact analysis and translation.\n")
	if p.confirm("Configure an LLM provider?") {
		if err := llmStep.run(p); err != nil {
			return err
		}
	}

	if err := settingsService.Validate(); err != nil {
		p.say("Warning: %v\n", err)
		return nil
	}
	p.say("All settings are valid and saved.\n")
	return nil
}

func configureHelpCenter(p *prompter) error {
	values := map[string]string{}
	if p.choose([]string{"Zendesk Help Center", "Local corpus file (JSON or TOML)"}) == 1 {
		values["helpcenter.kind"] = string(domain.HelpCenterFile)
		values["helpcenter.path"] = p.ask("Corpus file path", "")
		if values["helpcenter.path"] == "" {
			return errors.New("corpus path is required")
		}
	} else {
		values["helpcenter.kind"] = string(domain.HelpCenterZendesk)
		values["helpcenter.subdomain"] = p.ask("Zendesk subdomain (acme for acme.zendesk.com)", "")
		if values["helpcenter.subdomain"] == "" {
			return errors.New("subdomain is required")
		}
		values["helpcenter.email"] = p.ask("Agent email", "")
		values["helpcenter.api_token"] = p.secret("API token")
		if values["helpcenter.email"] == "" || values["helpcenter.api_token"] == "" {
			return errors.New("email and API token are required")
		}
	}

	// kind first so the service validates the other keys against it
	if err := settingsService.Set("helpcenter.kind", values["helpcenter.kind"]); err != nil {
		return fmt.Errorf("save helpcenter.kind: %w", err)
	}
	delete(values, "helpcenter.kind")
	for k, v := range values {
		if err := settingsService.Set(k, v); err != nil {
			return fmt.Errorf("save %s: %w", k, err)
		}
	}
	p.say("Help center saved.\n\n")
	return nil
}
