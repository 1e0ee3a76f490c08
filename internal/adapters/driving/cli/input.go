package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docgap/internal/core/domain"
)

// Source names understood by the notes fetcher.
const (
	sourceFile   = "file"
	sourceURL    = "url"
	sourceGitHub = "github"
	sourceDrive  = "gdrive"
)

// addNotesFlags registers the flags that select where release notes come from.
func addNotesFlags(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.String("github", "", "GitHub release, owner/repo@tag or owner/repo for the latest")
	fs.String("gdrive", "", "Google Drive file ID or sharing link")
	fs.String("url", "", "web page holding the release notes")
	fs.String("text", "", "release notes given inline")
	fs.String("version-label", "", "release version shown in reports")
	fs.String("date", "", "release date shown in reports")
}

// readNotes resolves the release notes from the command's flags, or from
// the file named by path ("-" for stdin).
func readNotes(cmd *cobra.Command, path string) (*domain.ReleaseNotes, error) {
	flags := cmd.Flags()
	text, _ := flags.GetString("text")

	var selected []string
	refs := map[string]string{}
	for _, name := range []string{sourceGitHub, sourceDrive, sourceURL} {
		if ref, _ := flags.GetString(name); strings.TrimSpace(ref) != "" {
			selected = append(selected, "--"+name)
			refs[name] = strings.TrimSpace(ref)
		}
	}
	if path != "" {
		selected = append(selected, path)
	}
	if text != "" {
		selected = append(selected, "--text")
	}
	if len(selected) > 1 {
		return nil, fmt.Errorf("%w: choose one release-notes input, got %s",
			domain.ErrInvalidInput, strings.Join(selected, ", "))
	}

	var (
		notes *domain.ReleaseNotes
		err   error
	)
	switch {
	case text != "":
		notes = &domain.ReleaseNotes{Text: text}
	case len(refs) == 1:
		for source, ref := range refs {
			notes, err = fetch(cmd, source, ref)
		}
	case path != "":
		notes, err = fetch(cmd, sourceFile, path)
	default:
		return nil, domain.ErrEmptyReleaseNotes
	}
	if err != nil {
		return nil, err
	}

	if v, _ := flags.GetString("version-label"); v != "" {
		notes.Version = v
	}
	if d, _ := flags.GetString("date"); d != "" {
		notes.Date = d
	}
	if notes.IsEmpty() {
		return nil, domain.ErrEmptyReleaseNotes
	}
	return notes, nil
}

func fetch(cmd *cobra.Command, source, ref string) (*domain.ReleaseNotes, error) {
	if notesFetcher == nil {
		return nil, errors.New("release notes sources not configured")
	}
	notes, err := notesFetcher.FetchNotes(cmd.Context(), source, ref)
	if err != nil {
		return nil, fmt.Errorf("read release notes from %s: %w", source, err)
	}
	return notes, nil
}

// argOrEmpty returns args[i] or "".
func argOrEmpty(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
