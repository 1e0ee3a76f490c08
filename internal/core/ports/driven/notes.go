package driven

import (
	"context"

	"github.com/custodia-labs/docgap/internal/core/domain"
)

// ReleaseNotesSource fetches release notes from a remote system.
type ReleaseNotesSource interface {
	// Name identifies the source, e.g. "github".
	Name() string

	// Fetch returns the release notes identified by ref.
	// The ref format is source-specific (owner/repo@tag, a document ID).
	Fetch(ctx context.Context, ref string) (*domain.ReleaseNotes, error)
}
