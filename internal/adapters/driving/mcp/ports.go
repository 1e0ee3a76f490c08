package mcp

import (
	"github.com/custodia-labs/docgap/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Analysis runs the release-notes pipeline.
	Analysis driving.AnalysisService

	// Articles reads the help center. Needed by suggest_update and the
	// article resource.
	Articles driving.ArticleService

	// Drafting drives the LLM. Needed by suggest_update.
	Drafting driving.DraftingService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Analysis == nil {
		return ErrMissingAnalysisService
	}
	return nil
}
