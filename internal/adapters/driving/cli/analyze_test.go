package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docgap/internal/adapters/driving/tui"
	"github.com/custodia-labs/docgap/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docgap/internal/core/domain"
)

func sampleResult() *domain.AnalysisResult {
	return &domain.AnalysisResult{
		ID:      "r1",
		Version: "2.4",
		Date:    "2026-10-01",
		Articles: []domain.ScoredDocument{{
			Document:       domain.Document{ID: "a1", Title: "Exporting data", URL: "https://help.example.com/a1"},
			RelevanceScore: 0.82,
			Suggestion:     domain.LabelPriorityUpdate,
		}},
		Gaps:                  []domain.Gap{{Topic: "dark mode", Mentions: 3}},
		Summary:               "1 article needs attention.",
		Method:                domain.ScoringVector,
		TotalArticlesSearched: 40,
	}
}

func TestAnalyzeCmd_PrintsReport(t *testing.T) {
	var got domain.AnalysisRequest
	analysis := &MockAnalysisService{AnalyzeFunc: func(_ context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
		got = req
		return sampleResult(), nil
	}}

	out, err := execute(t, &Services{Analysis: analysis},
		"analyze", "--text", "Added dark mode", "--top", "3", "--gaps", "2", "--lexical", "--version-label", "2.4")

	require.NoError(t, err)
	assert.Equal(t, "Added dark mode", got.ReleaseNotes)
	assert.Equal(t, 3, got.TopN)
	assert.Equal(t, 2, got.GapCap)
	assert.True(t, got.ForceLexical)
	assert.Equal(t, "2.4", got.Version)

	assert.Contains(t, out, "Documentation Gap Analysis: 2.4 (2026-10-01)")
	assert.Contains(t, out, "Articles to update (1 of 40 searched)")
	assert.Contains(t, out, "[ 82%] Exporting data")
	assert.Contains(t, out, string(domain.LabelPriorityUpdate))
	assert.Contains(t, out, "dark mode (3 mentions)")
}

func TestAnalyzeCmd_LexicalHint(t *testing.T) {
	analysis := &MockAnalysisService{AnalyzeFunc: func(context.Context, domain.AnalysisRequest) (*domain.AnalysisResult, error) {
		r := sampleResult()
		r.Method = domain.ScoringLexical
		r.Articles = nil
		r.Gaps = nil
		return r, nil
	}}

	out, err := execute(t, &Services{Analysis: analysis}, "analyze", "--text", "notes")

	require.NoError(t, err)
	assert.Contains(t, out, "No related articles found.")
	assert.Contains(t, out, "No gaps identified.")
	assert.Contains(t, out, "configure an embedding provider")
}

func TestAnalyzeCmd_Errors(t *testing.T) {
	tests := []struct {
		name     string
		services *Services
		args     []string
		wantIs   error
		wantText string
	}{
		{
			name:     "no service",
			services: &Services{},
			args:     []string{"analyze", "--text", "x"},
			wantText: "analysis service not configured",
		},
		{
			name:     "no input",
			services: &Services{Analysis: &MockAnalysisService{}},
			args:     []string{"analyze"},
			wantIs:   domain.ErrEmptyReleaseNotes,
		},
		{
			name:     "blank text",
			services: &Services{Analysis: &MockAnalysisService{}},
			args:     []string{"analyze", "--text", "   "},
			wantIs:   domain.ErrEmptyReleaseNotes,
		},
		{
			name:     "two inputs",
			services: &Services{Analysis: &MockAnalysisService{}, Notes: &MockNotesFetcher{}},
			args:     []string{"analyze", "--text", "x", "--github", "acme/app"},
			wantIs:   domain.ErrInvalidInput,
		},
		{
			name:     "interactive with format",
			services: &Services{Analysis: &MockAnalysisService{}},
			args:     []string{"analyze", "--text", "x", "-i", "--json"},
			wantIs:   domain.ErrInvalidInput,
		},
		{
			name:     "unknown format",
			services: &Services{Analysis: &MockAnalysisService{}},
			args:     []string{"analyze", "--text", "x", "--format", "pdf"},
			wantIs:   domain.ErrUnsupportedFormat,
		},
		{
			name: "corpus unavailable",
			services: &Services{Analysis: &MockAnalysisService{
				AnalyzeFunc: func(context.Context, domain.AnalysisRequest) (*domain.AnalysisResult, error) {
					return nil, domain.ErrCorpusUnavailable
				},
			}},
			args:     []string{"analyze", "--text", "x"},
			wantIs:   domain.ErrCorpusUnavailable,
			wantText: "docgap settings show",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.services, tt.args...)

			require.Error(t, err)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
			if tt.wantText != "" {
				assert.Contains(t, err.Error(), tt.wantText)
			}
		})
	}
}

func TestAnalyzeCmd_GitHubSource(t *testing.T) {
	notes := &MockNotesFetcher{Notes: &domain.ReleaseNotes{Text: "Added SSO", Version: "v2.4"}}
	var got domain.AnalysisRequest
	analysis := &MockAnalysisService{AnalyzeFunc: func(_ context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
		got = req
		return sampleResult(), nil
	}}

	_, err := execute(t, &Services{Analysis: analysis, Notes: notes}, "analyze", "--github", " acme/app@v2.4 ")

	require.NoError(t, err)
	assert.Equal(t, sourceGitHub, notes.Source)
	assert.Equal(t, "acme/app@v2.4", notes.Ref)
	assert.Equal(t, "Added SSO", got.ReleaseNotes)
	assert.Equal(t, "v2.4", got.Version)
}

func TestAnalyzeCmd_FetchError(t *testing.T) {
	notes := &MockNotesFetcher{Err: errors.New("404")}

	_, err := execute(t, &Services{Analysis: &MockAnalysisService{}, Notes: notes}, "analyze", "notes.md")

	require.Error(t, err)
	assert.Equal(t, sourceFile, notes.Source)
	assert.Contains(t, err.Error(), "read release notes from file")
}

func TestAnalyzeCmd_JSONToStdout(t *testing.T) {
	export := &MockExportService{}
	analysis := &MockAnalysisService{AnalyzeFunc: func(context.Context, domain.AnalysisRequest) (*domain.AnalysisResult, error) {
		return sampleResult(), nil
	}}

	out, err := execute(t, &Services{Analysis: analysis, Export: export}, "analyze", "--text", "x", "--json")

	require.NoError(t, err)
	assert.Equal(t, "report:json", out)
	require.Len(t, export.Analyses, 1)
	assert.Equal(t, "r1", export.Analyses[0].ID)
}

func TestAnalyzeCmd_OutDefaultsToMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")
	services := &Services{Analysis: &MockAnalysisService{}, Export: &MockExportService{}}

	_, err := execute(t, services, "analyze", "--text", "x", "--out", path)

	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "report:markdown", string(data))
}

func TestAnalyzeCmd_Interactive(t *testing.T) {
	original := runApp
	defer func() { runApp = original }()

	var app *tui.App
	runApp = func(a *tui.App) error {
		app = a
		return nil
	}
	analysis := &MockAnalysisService{AnalyzeFunc: func(context.Context, domain.AnalysisRequest) (*domain.AnalysisResult, error) {
		return sampleResult(), nil
	}}

	_, err := execute(t, &Services{Analysis: analysis, Articles: &MockArticleService{}},
		"analyze", "--text", "Added dark mode", "-i")

	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, messages.ViewResults, app.CurrentView())
	assert.Equal(t, "r1", app.Result().ID)
	assert.Equal(t, "Added dark mode", app.Notes().Text)
}

func TestExportCmd_DefaultFileName(t *testing.T) {
	t.Chdir(t.TempDir())
	services := &Services{
		Analysis: &MockAnalysisService{AnalyzeFunc: func(context.Context, domain.AnalysisRequest) (*domain.AnalysisResult, error) {
			return sampleResult(), nil
		}},
		Export: &MockExportService{},
	}

	out, err := execute(t, services, "export", "--text", "x", "--format", "json")

	require.NoError(t, err)
	assert.Contains(t, out, "Report written to docgap-report-2.4.json")
	data, err := os.ReadFile("docgap-report-2.4.json")
	require.NoError(t, err)
	assert.Equal(t, "report:json", string(data))
}

func TestExportCmd_NoExportService(t *testing.T) {
	_, err := execute(t, &Services{Analysis: &MockAnalysisService{}}, "export", "--text", "x", "--out", "-")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "export service not configured")
}

func TestReportFileName(t *testing.T) {
	tests := []struct {
		version string
		format  domain.ExportFormat
		want    string
	}{
		{"2.4", domain.ExportXLSX, "docgap-report-2.4.xlsx"},
		{"v2.4 beta/1", domain.ExportJSON, "docgap-report-v2.4-beta-1.json"},
		{"", domain.ExportHTML, "docgap-report-latest.html"},
		{"Unknown", domain.ExportXML, "docgap-report-latest.xml"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, reportFileName(tt.version, tt.format))
		})
	}
}
