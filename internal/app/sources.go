package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/docgap/internal/connectors/github"
	"github.com/custodia-labs/docgap/internal/connectors/google"
	"github.com/custodia-labs/docgap/internal/connectors/google/drive"
	"github.com/custodia-labs/docgap/internal/connectors/local"
	"github.com/custodia-labs/docgap/internal/connectors/web"
	"github.com/custodia-labs/docgap/internal/core/domain"
	"github.com/custodia-labs/docgap/internal/core/ports/driven"
)

// SourceNames lists the release-note sources Source accepts.
func SourceNames() []string {
	names := []string{local.SourceName, web.SourceName, github.SourceName, drive.SourceName}
	sort.Strings(names)
	return names
}

// Source returns the release-note source registered under name, creating
// it on first use.
func (a *App) Source(ctx context.Context, name string) (driven.ReleaseNotesSource, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if src, ok := a.sources[name]; ok {
		return src, nil
	}

	src, err := a.newSource(ctx, name)
	if err != nil {
		return nil, err
	}
	a.sources[name] = src
	return src, nil
}

// FetchNotes resolves ref with the named source.
func (a *App) FetchNotes(ctx context.Context, source, ref string) (*domain.ReleaseNotes, error) {
	src, err := a.Source(ctx, source)
	if err != nil {
		return nil, err
	}
	return src.Fetch(ctx, ref)
}

func (a *App) newSource(ctx context.Context, name string) (driven.ReleaseNotesSource, error) {
	s := a.Settings.Sources
	switch name {
	case local.SourceName:
		return local.NewSource(stdinOr(a.stdin)), nil
	case web.SourceName:
		return web.NewSource(nil), nil
	case github.SourceName:
		client, err := github.NewClient(ctx, github.Config{Token: s.GitHubToken, BaseURL: s.GitHubBaseURL})
		if err != nil {
			return nil, fmt.Errorf("github: %w", err)
		}
		return github.NewSource(client), nil
	case drive.SourceName:
		if !s.DriveConfigured() {
			return nil, fmt.Errorf("%w: google drive needs gdrive.credentials_file, gdrive.api_key or gdrive.access_token",
				domain.ErrAuthInvalid)
		}
		svc, err := google.NewDriveService(ctx, google.ServiceConfig{
			AccessToken:     s.DriveAccessToken,
			CredentialsFile: s.DriveCredentialsFile,
			APIKey:          s.DriveAPIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("google drive: %w", err)
		}
		return drive.NewSource(svc), nil
	default:
		return nil, fmt.Errorf("%w: unknown source %q", domain.ErrInvalidInput, name)
	}
}
