// Package settings provides the settings configuration view for the TUI.
package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docgap/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docgap/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docgap/internal/core/domain"
	"github.com/custodia-labs/docgap/internal/core/ports/driving"
)

// errNoService is reported when the view has no settings port.
var errNoService = errors.New("settings service not available")

// Section tracks which settings section is active.
type Section int

// Settings sections, in overview order after SectionOverview.
const (
	SectionOverview Section = iota
	SectionHelpCenter
	SectionCache
	SectionEmbedding
	SectionLLM
)

// String returns the section heading.
func (s Section) String() string {
	switch s {
	case SectionOverview:
		return "Overview"
	case SectionHelpCenter:
		return "Help Center"
	case SectionCache:
		return "Cache"
	case SectionEmbedding:
		return "Embedding Provider"
	case SectionLLM:
		return "LLM Provider"
	default:
		return "Unknown"
	}
}

// overviewSections lists the editable sections shown on the overview.
var overviewSections = []Section{SectionHelpCenter, SectionCache, SectionEmbedding, SectionLLM}

// Key names shared by the section handlers.
const (
	keyUp    = "up"
	keyDown  = "down"
	keyEnter = "enter"
	keyTab   = "tab"
)

// picker selects an AI provider and, for cloud providers, its API key.
type picker struct {
	providers []domain.AIProvider
	models    map[domain.AIProvider]string
	current   func(*domain.AppSettings) domain.AIProvider
	save      func(svc driving.SettingsService, p domain.AIProvider, model, apiKey string) error
	input     textinput.Model
	keyFocus  bool
}

func newPicker(
	providers []domain.AIProvider,
	models map[domain.AIProvider]string,
	current func(*domain.AppSettings) domain.AIProvider,
	save func(driving.SettingsService, domain.AIProvider, string, string) error,
) *picker {
	in := textinput.New()
	in.Placeholder = "Enter API key"
	in.EchoMode = textinput.EchoPassword
	in.CharLimit = 256
	return &picker{providers: providers, models: models, current: current, save: save, input: in}
}

// index returns the position of the configured provider.
func (p *picker) index(s *domain.AppSettings) int {
	if s == nil {
		return 0
	}
	for i, provider := range p.providers {
		if provider == p.current(s) {
			return i
		}
	}
	return 0
}

func (p *picker) reset() {
	p.keyFocus = false
	p.input.SetValue("")
	p.input.Blur()
}

// View is the settings configuration view.
type View struct {
	styles          *styles.Styles
	settingsService driving.SettingsService

	settings *domain.AppSettings
	err      error

	section  Section
	selected int

	embedding *picker
	llm       *picker

	// helpCenterInput edits the subdomain, or the corpus path for file corpora.
	helpCenterInput textinput.Model

	width  int
	height int
	ready  bool
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	hc := textinput.New()
	hc.CharLimit = 512

	return &View{
		styles:          s,
		settingsService: settingsService,
		section:         SectionOverview,
		helpCenterInput: hc,
		embedding: newPicker(
			domain.AllEmbeddingProviders(),
			domain.DefaultEmbeddingModels(),
			func(s *domain.AppSettings) domain.AIProvider { return s.Embedding.Provider },
			func(svc driving.SettingsService, p domain.AIProvider, model, key string) error {
				return svc.SetEmbeddingProvider(p, model, key)
			},
		),
		llm: newPicker(
			domain.AllLLMProviders(),
			domain.DefaultLLMModels(),
			func(s *domain.AppSettings) domain.AIProvider { return s.LLM.Provider },
			func(svc driving.SettingsService, p domain.AIProvider, model, key string) error {
				return svc.SetLLMProvider(p, model, key)
			},
		),
	}
}

// Init loads the current settings.
func (v *View) Init() tea.Cmd {
	return v.loadSettings()
}

func (v *View) loadSettings() tea.Cmd {
	return func() tea.Msg {
		if v.settingsService == nil {
			return messages.SettingsLoaded{Err: errNoService}
		}
		settings, err := v.settingsService.Get()
		return messages.SettingsLoaded{Settings: settings, Err: err}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SettingsLoaded:
		v.err = msg.Err
		if msg.Err == nil {
			v.settings = msg.Settings
		}
		return v, nil

	case messages.SettingsSaved:
		v.err = msg.Err
		if msg.Err != nil {
			return v, nil
		}
		return v, v.loadSettings()

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.String() == "esc" {
		if v.section == SectionOverview {
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		}
		v.leaveSection()
		return v, nil
	}

	switch v.section {
	case SectionOverview:
		return v.handleOverviewKeys(msg)
	case SectionHelpCenter:
		return v.handleHelpCenterKeys(msg)
	case SectionCache:
		return v.handleCacheKeys(msg)
	case SectionEmbedding:
		return v.handlePickerKeys(v.embedding, msg)
	case SectionLLM:
		return v.handlePickerKeys(v.llm, msg)
	}
	return v, nil
}

// moveSelection applies up/down navigation within n items.
func (v *View) moveSelection(key string, n int) bool {
	switch key {
	case keyUp, "k":
		if v.selected > 0 {
			v.selected--
		}
		return true
	case keyDown, "j":
		if v.selected < n-1 {
			v.selected++
		}
		return true
	}
	return false
}

func (v *View) handleOverviewKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.moveSelection(msg.String(), len(overviewSections)) {
		return v, nil
	}
	if msg.String() != keyEnter || v.selected >= len(overviewSections) {
		return v, nil
	}

	v.section = overviewSections[v.selected]
	switch v.section {
	case SectionHelpCenter:
		v.selected = 0
		v.helpCenterInput.SetValue(v.helpCenterValue())
		return v, v.helpCenterInput.Focus()
	case SectionCache:
		v.selected = v.cacheBackendIndex()
	case SectionEmbedding:
		v.selected = v.embedding.index(v.settings)
	case SectionLLM:
		v.selected = v.llm.index(v.settings)
	}
	return v, nil
}

func (v *View) handleHelpCenterKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.String() == keyEnter {
		key := v.helpCenterKey()
		value := strings.TrimSpace(v.helpCenterInput.Value())
		return v, v.save(func(svc driving.SettingsService) error {
			return svc.Set(key, value)
		})
	}
	var cmd tea.Cmd
	v.helpCenterInput, cmd = v.helpCenterInput.Update(msg)
	return v, cmd
}

func (v *View) handleCacheKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	backends := domain.AllCacheBackends()
	if v.moveSelection(msg.String(), len(backends)) {
		return v, nil
	}
	if msg.String() == keyEnter && v.selected < len(backends) {
		backend := backends[v.selected]
		return v, v.save(func(svc driving.SettingsService) error {
			return svc.Set("cache.backend", string(backend))
		})
	}
	return v, nil
}

func (v *View) handlePickerKeys(p *picker, msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.selected >= len(p.providers) {
		return v, nil
	}
	provider := p.providers[v.selected]

	if p.keyFocus {
		switch msg.String() {
		case keyTab, "shift+tab":
			p.keyFocus = false
			p.input.Blur()
			return v, nil
		case keyEnter:
			return v, v.savePicker(p, provider, p.input.Value())
		}
		var cmd tea.Cmd
		p.input, cmd = p.input.Update(msg)
		return v, cmd
	}

	if v.moveSelection(msg.String(), len(p.providers)) {
		return v, nil
	}
	switch msg.String() {
	case keyTab:
		if provider.RequiresAPIKey() {
			p.keyFocus = true
			return v, p.input.Focus()
		}
	case keyEnter:
		if provider.RequiresAPIKey() {
			p.keyFocus = true
			return v, p.input.Focus()
		}
		return v, v.savePicker(p, provider, "")
	}
	return v, nil
}

func (v *View) savePicker(p *picker, provider domain.AIProvider, apiKey string) tea.Cmd {
	model := p.models[provider]
	return v.save(func(svc driving.SettingsService) error {
		return p.save(svc, provider, model, apiKey)
	})
}

// save runs apply and returns to the overview on success.
func (v *View) save(apply func(driving.SettingsService) error) tea.Cmd {
	return func() tea.Msg {
		if v.settingsService == nil {
			return messages.SettingsSaved{Err: errNoService}
		}
		err := apply(v.settingsService)
		if err == nil {
			v.leaveSection()
		}
		return messages.SettingsSaved{Err: err}
	}
}

// leaveSection returns to the overview and clears any input.
func (v *View) leaveSection() {
	v.section = SectionOverview
	v.selected = 0
	v.embedding.reset()
	v.llm.reset()
	v.helpCenterInput.Blur()
}

func (v *View) cacheBackendIndex() int {
	if v.settings == nil {
		return 0
	}
	for i, b := range domain.AllCacheBackends() {
		if b == v.settings.Cache.Backend {
			return i
		}
	}
	return 0
}

// helpCenterKey is the setting edited by the help-center section.
func (v *View) helpCenterKey() string {
	if v.settings != nil && v.settings.HelpCenter.Kind == domain.HelpCenterFile {
		return "helpcenter.path"
	}
	return "helpcenter.subdomain"
}

func (v *View) helpCenterValue() string {
	if v.settings == nil {
		return ""
	}
	if v.settings.HelpCenter.Kind == domain.HelpCenterFile {
		return v.settings.HelpCenter.Path
	}
	return v.settings.HelpCenter.Subdomain
}

// View renders the settings view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
	}

	if v.settings == nil {
		b.WriteString(v.styles.Muted.Render("Loading settings..."))
		return b.String()
	}

	switch v.section {
	case SectionOverview:
		b.WriteString(v.renderOverview())
	case SectionHelpCenter:
		b.WriteString(v.renderHelpCenter())
	case SectionCache:
		b.WriteString(v.renderCacheSelect())
	case SectionEmbedding:
		b.WriteString(v.renderPicker(v.embedding, "Select Embedding Provider"))
	case SectionLLM:
		b.WriteString(v.renderPicker(v.llm, "Select LLM Provider"))
	}

	b.WriteString("\n")
	b.WriteString(v.renderHelp())
	return b.String()
}

// renderRow draws one selectable line.
func (v *View) renderRow(b *strings.Builder, selected bool, text string) {
	indicator := "  "
	style := v.styles.Normal
	if selected {
		indicator = "> "
		style = v.styles.Selected
	}
	b.WriteString(style.Render(indicator + text))
	b.WriteString("\n")
}

func (v *View) status(ok bool, missing string) string {
	if ok {
		return v.styles.Success.Render("[configured]")
	}
	return v.styles.Warning.Render("[" + missing + "]")
}

func (v *View) renderOverview() string {
	var b strings.Builder
	s := v.settings

	hc := fmt.Sprintf("%s (%s)", s.HelpCenter.Kind, orNotSet(v.helpCenterValue()))
	values := map[Section]string{
		SectionHelpCenter: hc + " " + v.status(s.HelpCenter.IsConfigured(), "not configured"),
		SectionCache:      s.Cache.Backend.Description(),
		SectionEmbedding:  providerLine(s.Embedding.Provider, s.Embedding.Model) + " " + v.status(s.Embedding.IsConfigured(), "needs API key"),
		SectionLLM:        providerLine(s.LLM.Provider, s.LLM.Model) + " " + v.status(s.LLM.IsConfigured(), "needs API key"),
	}
	for i, section := range overviewSections {
		v.renderRow(&b, i == v.selected, fmt.Sprintf("%s: %s", section, values[section]))
	}

	b.WriteString("\n")
	if v.settingsService != nil {
		if err := v.settingsService.Validate(); err != nil {
			b.WriteString(v.styles.Warning.Render("Warning: " + err.Error()))
		} else {
			b.WriteString(v.styles.Success.Render("Configuration is valid"))
		}
	}
	return b.String()
}

func providerLine(p domain.AIProvider, model string) string {
	if p == "" {
		return "Not Set"
	}
	return fmt.Sprintf("%s (%s)", p.Description(), model)
}

func orNotSet(s string) string {
	if s == "" {
		return "not set"
	}
	return s
}

func (v *View) renderHelpCenter() string {
	var b strings.Builder

	label := "Zendesk subdomain"
	if v.helpCenterKey() == "helpcenter.path" {
		label = "Corpus file"
	}
	b.WriteString(v.styles.Subtitle.Render("Help Center"))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Normal.Render(label + ":"))
	b.WriteString("\n")
	b.WriteString(v.helpCenterInput.View())
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render("Credentials are set with 'docgap settings wizard'."))
	b.WriteString("\n")
	return b.String()
}

func (v *View) renderCacheSelect() string {
	var b strings.Builder

	b.WriteString(v.styles.Subtitle.Render("Select Cache Backend"))
	b.WriteString("\n\n")

	for i, backend := range domain.AllCacheBackends() {
		current := ""
		if backend == v.settings.Cache.Backend {
			current = v.styles.Success.Render(" (current)")
		}
		v.renderRow(&b, i == v.selected, backend.Description()+current)

		switch backend {
		case domain.CacheSQLite:
			if v.settings.Cache.Path != "" {
				b.WriteString(v.styles.Muted.Render("    Path: " + v.settings.Cache.Path))
				b.WriteString("\n")
			}
		case domain.CacheRedis:
			b.WriteString(v.styles.Muted.Render("    Address: " + orNotSet(v.settings.Cache.RedisAddr)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (v *View) renderPicker(p *picker, title string) string {
	var b strings.Builder

	b.WriteString(v.styles.Subtitle.Render(title))
	b.WriteString("\n\n")

	for i, provider := range p.providers {
		current := ""
		if provider == p.current(v.settings) {
			current = v.styles.Success.Render(" (current)")
		}
		v.renderRow(&b, i == v.selected && !p.keyFocus, provider.Description()+current)
		if model, found := p.models[provider]; found {
			b.WriteString(v.styles.Muted.Render("    Model: " + model))
			b.WriteString("\n")
		}
	}

	if v.selected < len(p.providers) && p.providers[v.selected].RequiresAPIKey() {
		b.WriteString("\n")
		b.WriteString(v.styles.Normal.Render("API Key:"))
		b.WriteString("\n")
		b.WriteString(p.input.View())
		b.WriteString("\n")
	}
	return b.String()
}

func (v *View) renderHelp() string {
	switch v.section {
	case SectionOverview:
		return v.styles.Help.Render("[j/k] navigate  [enter] edit  [esc] back")
	case SectionHelpCenter:
		return v.styles.Help.Render("[enter] save  [esc] back")
	case SectionCache:
		return v.styles.Help.Render("[j/k] navigate  [enter] select  [esc] back")
	case SectionEmbedding, SectionLLM:
		p := v.embedding
		if v.section == SectionLLM {
			p = v.llm
		}
		if p.keyFocus {
			return v.styles.Help.Render("[tab] back to list  [enter] save  [esc] back")
		}
		return v.styles.Help.Render("[j/k] navigate  [tab] API key  [enter] select  [esc] back")
	default:
		return ""
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Reset returns the view to the overview and clears errors.
func (v *View) Reset() {
	v.leaveSection()
	v.err = nil
	v.helpCenterInput.SetValue("")
}
