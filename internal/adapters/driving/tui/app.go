package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docgap/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docgap/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docgap/internal/adapters/driving/tui/views/analyze"
	"github.com/custodia-labs/docgap/internal/adapters/driving/tui/views/article"
	"github.com/custodia-labs/docgap/internal/adapters/driving/tui/views/articles"
	"github.com/custodia-labs/docgap/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/docgap/internal/adapters/driving/tui/views/results"
	"github.com/custodia-labs/docgap/internal/adapters/driving/tui/views/settings"
	"github.com/custodia-labs/docgap/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	menuView     *menu.View
	analyzeView  *analyze.View
	resultsView  *results.View
	articlesView *articles.View
	articleView  *article.View
	settingsView *settings.View

	// notes are the release notes behind the latest result. Article
	// suggestions are drafted against them.
	notes *domain.ReleaseNotes

	// result is the latest analysis result.
	result *domain.AnalysisResult

	// articlesLoaded is set once the article browser has fetched a page.
	articlesLoaded bool

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	return &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		menuView:     menu.NewView(s),
		analyzeView:  analyze.NewView(s, nil, ports.Analysis, ports.Notes),
		resultsView:  results.NewView(s, nil),
		articlesView: articles.NewView(s, ports.Articles),
		articleView:  article.NewView(s, ports.Articles, ports.Drafting),
		settingsView: settings.NewView(s, ports.Settings),
		currentView:  messages.ViewMenu,
	}, nil
}

// WithContext sets the context for the app and its provider calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.analyzeView.WithContext(ctx)
	a.articlesView.WithContext(ctx)
	a.articleView.WithContext(ctx)
	return a
}

// ShowResult opens the app on an existing analysis result.
func (a *App) ShowResult(result *domain.AnalysisResult, notes *domain.ReleaseNotes) *App {
	a.result = result
	a.notes = notes
	a.resultsView.SetResult(result, notes)
	a.currentView = messages.ViewResults
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("docgap"),
	)
}

// Update implements tea.Model.
//
//nolint:gocognit,gocyclo,funlen // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a, a.updateCurrent(msg)

	case messages.ViewChanged:
		a.currentView = msg.View
		switch msg.View {
		case messages.ViewAnalyze:
			a.analyzeView.Reset()
			return a, a.analyzeView.Init()
		case messages.ViewArticles:
			if !a.articlesLoaded {
				a.articlesLoaded = true
				return a, a.articlesView.Load(1)
			}
		case messages.ViewSettings:
			a.settingsView.Reset()
			return a, a.settingsView.Init()
		case messages.ViewMenu, messages.ViewResults, messages.ViewArticle, messages.ViewHelp:
			// No initialisation needed.
		}
		return a, nil

	case messages.AnalysisCompleted:
		a.analyzeView, cmd = a.analyzeView.Update(msg)
		if msg.Err != nil {
			a.err = msg.Err
			return a, cmd
		}
		a.err = nil
		a.ShowResult(msg.Result, msg.Notes)
		return a, cmd

	case messages.ArticlesLoaded:
		a.articlesView, cmd = a.articlesView.Update(msg)
		return a, cmd

	case messages.ArticleSelected:
		a.currentView = messages.ViewArticle
		return a, a.articleView.SetArticle(msg.Document, msg.From, a.notes)

	case messages.ArticleLoaded, messages.SuggestionCompleted:
		a.articleView, cmd = a.articleView.Update(msg)
		return a, cmd

	case messages.SettingsLoaded, messages.SettingsSaved:
		a.settingsView, cmd = a.settingsView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, a.updateCurrent(msg)

	case messages.Quit:
		return a, tea.Quit
	}

	// Spinner ticks and other messages go to the active view.
	return a, a.updateCurrent(msg)
}

// updateCurrent forwards msg to the active view.
func (a *App) updateCurrent(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewAnalyze:
		a.analyzeView, cmd = a.analyzeView.Update(msg)
	case messages.ViewResults:
		a.resultsView, cmd = a.resultsView.Update(msg)
	case messages.ViewArticles:
		a.articlesView, cmd = a.articlesView.Update(msg)
	case messages.ViewArticle:
		a.articleView, cmd = a.articleView.Update(msg)
	case messages.ViewSettings:
		a.settingsView, cmd = a.settingsView.Update(msg)
	case messages.ViewHelp:
		if key, ok := msg.(tea.KeyMsg); ok && (key.Type == tea.KeyEsc || key.String() == "q") {
			a.currentView = messages.ViewMenu
		}
	}
	return cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewMenu:
		return a.menuView.View()
	case messages.ViewAnalyze:
		return a.analyzeView.View()
	case messages.ViewResults:
		return a.resultsView.View()
	case messages.ViewArticles:
		return a.articlesView.View()
	case messages.ViewArticle:
		return a.articleView.View()
	case messages.ViewSettings:
		return a.settingsView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.menuView.View()
	}
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return `Help

Navigation:
  esc         Back
  ctrl+c      Quit

Analyze:
  (type)      Notes file, URL, github:owner/repo@tag or gdrive:<id>
  ctrl+l      Toggle lexical-only ranking
  enter       Run analysis

Results:
  tab         Next tab (Articles, Gaps, Topics, Summary)
  j/k, ↑/↓    Navigate articles
  enter       Open article

Article:
  j/k, ↑/↓    Scroll
  s           Ask the LLM how to update it

Articles:
  n/p         Next or previous page

[esc] back to menu`
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Result returns the latest analysis result.
func (a *App) Result() *domain.AnalysisResult {
	return a.result
}

// Notes returns the release notes behind the latest result.
func (a *App) Notes() *domain.ReleaseNotes {
	return a.notes
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on the app and every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.analyzeView.SetDimensions(width, height)
	a.resultsView.SetDimensions(width, height)
	a.articlesView.SetDimensions(width, height)
	a.articleView.SetDimensions(width, height)
	a.settingsView.SetDimensions(width, height)
}
