// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/docgap/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewAnalyze is the release-notes input form.
	ViewAnalyze
	// ViewResults shows the outcome of an analysis.
	ViewResults
	// ViewArticles lists help-center articles.
	ViewArticles
	// ViewArticle shows one article.
	ViewArticle
	// ViewSettings is the settings configuration view.
	ViewSettings
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewAnalyze:
		return "analyze"
	case ViewResults:
		return "results"
	case ViewArticles:
		return "articles"
	case ViewArticle:
		return "article"
	case ViewSettings:
		return "settings"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// AnalysisCompleted carries an analysis result back to the model.
type AnalysisCompleted struct {
	Notes  *domain.ReleaseNotes
	Result *domain.AnalysisResult
	Err    error
}

// ArticlesLoaded carries one page of help-center articles.
type ArticlesLoaded struct {
	Page *domain.ArticlePage
	Err  error
}

// ArticleSelected signals an article was chosen for reading.
type ArticleSelected struct {
	Document domain.Document
	// From is the view to return to.
	From ViewType
}

// ArticleLoaded carries the full article when the listing only held a summary.
type ArticleLoaded struct {
	Document *domain.Document
	Err      error
}

// SuggestionCompleted carries LLM advice for an article.
type SuggestionCompleted struct {
	ArticleID  string
	Suggestion string
	Err        error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// SettingsLoaded carries the application settings.
type SettingsLoaded struct {
	Settings *domain.AppSettings
	Err      error
}

// SettingsSaved signals settings were saved.
type SettingsSaved struct {
	Err error
}
