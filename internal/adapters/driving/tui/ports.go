// Package tui provides an interactive terminal user interface for docgap.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/docgap/internal/adapters/driving/tui/views/analyze"
	"github.com/custodia-labs/docgap/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Analysis ranks articles and detects gaps.
	Analysis driving.AnalysisService

	// Articles reads the help-center corpus.
	Articles driving.ArticleService

	// Drafting asks the LLM for update advice. Optional.
	Drafting driving.DraftingService

	// Settings manages application settings. Optional.
	Settings driving.SettingsService

	// Notes resolves release notes from files, URLs, GitHub and Drive. Optional.
	Notes analyze.NotesFetcher
}

// NewPorts creates a new Ports aggregate with the required services.
func NewPorts(analysis driving.AnalysisService, articles driving.ArticleService) *Ports {
	return &Ports{
		Analysis: analysis,
		Articles: articles,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Analysis == nil {
		return ErrMissingAnalysisService
	}
	if p.Articles == nil {
		return ErrMissingArticleService
	}
	return nil
}
