// Package drive reads release notes from Google Drive.
//
// Google Docs and Slides are exported as plain text and Sheets as CSV.
// Uploaded text, Markdown and HTML files are downloaded as-is, with HTML
// reduced to readable text.
package drive

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"google.golang.org/api/drive/v3"

	"github.com/custodia-labs/docgap/internal/adapters/driven/helpcenter/htmltext"
	"github.com/custodia-labs/docgap/internal/connectors/google"
	"github.com/custodia-labs/docgap/internal/connectors/throttle"
	"github.com/custodia-labs/docgap/internal/core/domain"
	"github.com/custodia-labs/docgap/internal/core/ports/driven"
	"github.com/custodia-labs/docgap/internal/logger"
)

// Verify interface compliance.
var _ driven.ReleaseNotesSource = (*Source)(nil)

// SourceName identifies Google Drive release notes.
const SourceName = "gdrive"

// Google Workspace MIME types that can be exported.
const (
	MimeTypeGoogleDoc    = "application/vnd.google-apps.document"
	MimeTypeGoogleSheet  = "application/vnd.google-apps.spreadsheet"
	MimeTypeGoogleSlides = "application/vnd.google-apps.presentation"
	MimeTypeFolder       = "application/vnd.google-apps.folder"
)

// Export formats for Google Workspace files.
const (
	ExportMimeText = "text/plain"
	ExportMimeCSV  = "text/csv"
)

// MaxExportSize is the maximum size for exported content (5MB).
const MaxExportSize = 5 * 1024 * 1024

const metadataFields = "id, name, mimeType, modifiedTime, webViewLink, size, trashed"

var (
	pathID  = regexp.MustCompile(`/d/([A-Za-z0-9_-]+)`)
	validID = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// ParseFileID extracts a file ID from a bare ID or a Drive/Docs link.
func ParseFileID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if validID.MatchString(ref) {
		return ref, nil
	}

	u, err := url.Parse(ref)
	if err == nil && u.Host != "" {
		if m := pathID.FindStringSubmatch(u.Path); m != nil {
			return m[1], nil
		}
		if id := u.Query().Get("id"); validID.MatchString(id) {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: %q is not a Drive file ID or link", domain.ErrInvalidInput, ref)
}

// Source fetches release notes from Drive files.
type Source struct {
	svc     *drive.Service
	limiter *throttle.Throttle
}

// Drive allows 10 requests per second per user; stay below it.
const (
	requestsPerSecond = 8
	burst             = 10
)

// NewSource creates a Drive release notes source.
func NewSource(svc *drive.Service) *Source {
	return &Source{svc: svc, limiter: throttle.New(requestsPerSecond, burst)}
}

// Name returns the source identifier.
func (s *Source) Name() string {
	return SourceName
}

// Fetch returns the text of the file named by ref. The file name becomes
// the version label and its modification date the date label.
func (s *Source) Fetch(ctx context.Context, ref string) (*domain.ReleaseNotes, error) {
	id, err := ParseFileID(ref)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	file, err := s.svc.Files.Get(id).Fields(metadataFields).SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		return nil, s.wrap(fmt.Errorf("get file %s: %w", id, err))
	}
	if file.Trashed || file.MimeType == MimeTypeFolder {
		return nil, fmt.Errorf("%w: %s is not a readable file", domain.ErrInvalidInput, file.Name)
	}

	text, err := s.content(ctx, file)
	if err != nil {
		return nil, err
	}
	logger.Debug("[gdrive] %s (%s): %d chars", file.Name, file.MimeType, len(text))

	notes := &domain.ReleaseNotes{
		Text:    strings.TrimSpace(text),
		Version: file.Name,
		Date:    dateLabel(file.ModifiedTime),
		Source:  file.WebViewLink,
	}
	if notes.IsEmpty() {
		return nil, fmt.Errorf("%s: %w", file.Name, domain.ErrEmptyReleaseNotes)
	}
	return notes, nil
}

func (s *Source) content(ctx context.Context, file *drive.File) (string, error) {
	switch file.MimeType {
	case MimeTypeGoogleDoc, MimeTypeGoogleSlides:
		return s.export(ctx, file.Id, ExportMimeText)
	case MimeTypeGoogleSheet:
		return s.export(ctx, file.Id, ExportMimeCSV)
	}

	if !isTextFile(file.MimeType) {
		return "", fmt.Errorf("%w: unsupported file type %s", domain.ErrInvalidInput, file.MimeType)
	}
	if file.Size > MaxExportSize {
		return "", fmt.Errorf("%w: %s exceeds %d bytes", domain.ErrInvalidInput, file.Name, MaxExportSize)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}
	resp, err := s.svc.Files.Get(file.Id).SupportsAllDrives(true).Context(ctx).Download()
	if err != nil {
		return "", s.wrap(fmt.Errorf("download file: %w", err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxExportSize))
	if err != nil {
		return "", fmt.Errorf("read file content: %w", err)
	}

	if file.MimeType == "text/html" {
		return htmltext.ToText(string(data)), nil
	}
	return string(data), nil
}

// export exports a Google Workspace file to the specified format.
func (s *Source) export(ctx context.Context, fileID, exportMime string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}
	resp, err := s.svc.Files.Export(fileID, exportMime).Context(ctx).Download()
	if err != nil {
		return "", s.wrap(fmt.Errorf("export file: %w", err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxExportSize))
	if err != nil {
		return "", fmt.Errorf("read export: %w", err)
	}
	return string(data), nil
}

func (s *Source) wrap(err error) error {
	if google.IsRateLimited(err) {
		s.limiter.PauseFor(0)
	}
	return google.WrapError(err)
}

// dateLabel reduces an RFC 3339 timestamp to its date.
func dateLabel(ts string) string {
	if len(ts) >= len("2006-01-02") {
		return ts[:len("2006-01-02")]
	}
	return ts
}

// isTextFile checks if a MIME type is likely text content.
func isTextFile(mimeType string) bool {
	if strings.HasPrefix(mimeType, "text/") {
		return true
	}

	switch mimeType {
	case "application/json", "application/xml", "application/x-yaml":
		return true
	}
	return false
}
