package github

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/docgap/internal/adapters/driven/helpcenter/htmltext"
	"github.com/custodia-labs/docgap/internal/core/domain"
	"github.com/custodia-labs/docgap/internal/core/ports/driven"
	"github.com/custodia-labs/docgap/internal/logger"
)

// Verify interface compliance.
var _ driven.ReleaseNotesSource = (*Source)(nil)

// SourceName identifies GitHub release notes.
const SourceName = "github"

// LatestTag selects the latest published release.
const LatestTag = "latest"

// Ref identifies one release of a repository.
type Ref struct {
	Owner string
	Repo  string
	// Tag is empty or LatestTag for the latest release.
	Tag string
}

// Latest reports whether the ref selects the latest release.
func (r Ref) Latest() bool {
	return r.Tag == "" || r.Tag == LatestTag
}

func (r Ref) String() string {
	if r.Latest() {
		return r.Owner + "/" + r.Repo
	}
	return r.Owner + "/" + r.Repo + "@" + r.Tag
}

// ParseRef parses "owner/repo", "owner/repo@latest" or "owner/repo@tag".
// A leading https://github.com/ prefix is tolerated.
func ParseRef(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "https://github.com/")
	s = strings.TrimSuffix(s, "/")

	repoPart, tag, _ := strings.Cut(s, "@")
	owner, repo, ok := strings.Cut(repoPart, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return Ref{}, fmt.Errorf("%w: %q (want owner/repo[@tag])", ErrInvalidRef, s)
	}
	return Ref{Owner: owner, Repo: strings.TrimSuffix(repo, ".git"), Tag: strings.TrimSpace(tag)}, nil
}

// Source fetches release notes from GitHub releases.
type Source struct {
	client *Client
}

// NewSource creates a release notes source backed by client.
func NewSource(client *Client) *Source {
	return &Source{client: client}
}

// Name returns the source identifier.
func (s *Source) Name() string {
	return SourceName
}

// Fetch returns the notes of the release named by ref.
func (s *Source) Fetch(ctx context.Context, ref string) (*domain.ReleaseNotes, error) {
	r, err := ParseRef(ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	var release *gh.RepositoryRelease
	if r.Latest() {
		release, err = s.client.LatestRelease(ctx, r.Owner, r.Repo)
	} else {
		release, err = s.client.ReleaseByTag(ctx, r.Owner, r.Repo, r.Tag)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", r, err)
	}

	notes := releaseNotes(release)
	logger.Debug("[github] %s: release %s, %d chars", r, notes.Version, len(notes.Text))
	if notes.IsEmpty() {
		return nil, fmt.Errorf("release %s has no description: %w", r, domain.ErrEmptyReleaseNotes)
	}
	return notes, nil
}

// Releases lists recent releases of owner/repo as notes, newest first.
func (s *Source) Releases(ctx context.Context, ref string, limit int) ([]*domain.ReleaseNotes, error) {
	r, err := ParseRef(ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	releases, err := s.client.ListReleases(ctx, r.Owner, r.Repo, limit)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r, err)
	}

	out := make([]*domain.ReleaseNotes, 0, len(releases))
	for _, rel := range releases {
		if rel.GetDraft() {
			continue
		}
		out = append(out, releaseNotes(rel))
	}
	return out, nil
}

func releaseNotes(rel *gh.RepositoryRelease) *domain.ReleaseNotes {
	version := rel.GetTagName()
	if version == "" {
		version = rel.GetName()
	}

	date := ""
	if ts := rel.GetPublishedAt(); !ts.IsZero() {
		date = ts.Format("2006-01-02")
	} else if ts := rel.GetCreatedAt(); !ts.IsZero() {
		date = ts.Format("2006-01-02")
	}

	return &domain.ReleaseNotes{
		Text:    cleanBody(rel.GetBody()),
		Version: version,
		Date:    date,
		Source:  rel.GetHTMLURL(),
	}
}

var (
	htmlComment = regexp.MustCompile(`(?s)<!--.*?-->`)
	mdImage     = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	mdLink      = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	mdEmphasis  = regexp.MustCompile(`(\*\*|__)(.+?)(\*\*|__)`)
)

// cleanBody strips markup that carries no topic signal. Headings and
// bullets are kept since topic extraction ignores them anyway.
func cleanBody(body string) string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	body = htmlComment.ReplaceAllString(body, "")
	if strings.Contains(body, "</") {
		body = htmltext.ToText(body)
	}
	body = mdImage.ReplaceAllString(body, "")
	body = mdLink.ReplaceAllString(body, "$1")
	body = mdEmphasis.ReplaceAllString(body, "$2")
	return strings.TrimSpace(body)
}
