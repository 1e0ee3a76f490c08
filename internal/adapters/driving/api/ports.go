// Package api serves the analysis, drafting and article operations over
// JSON HTTP with gin.
package api

import (
	"errors"

	"github.com/custodia-labs/docgap/internal/core/ports/driving"
)

// ErrMissingAnalysisService is returned when the analysis port is nil.
var ErrMissingAnalysisService = errors.New("api: analysis service is required")

// Ports aggregates the driving ports the HTTP API calls.
type Ports struct {
	// Analysis runs the release-notes pipeline. Required.
	Analysis driving.AnalysisService

	// Articles reads the help center. The article routes answer 503 without it.
	Articles driving.ArticleService

	// Drafting drives the LLM. The drafting routes answer 503 without it.
	Drafting driving.DraftingService

	// Export serialises reports and drafts for /api/export.
	Export driving.ExportService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Analysis == nil {
		return ErrMissingAnalysisService
	}
	return nil
}
