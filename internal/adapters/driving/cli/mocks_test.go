package cli

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/docgap/internal/core/domain"
	"github.com/custodia-labs/docgap/internal/core/ports/driving"
)

// MockAnalysisService implements driving.AnalysisService for CLI tests.
type MockAnalysisService struct {
	AnalyzeFunc     func(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error)
	DetectGapsFunc  func(ctx context.Context, req domain.AnalysisRequest) ([]domain.Gap, error)
	SuggestGapsFunc func(ctx context.Context, req domain.AnalysisRequest) ([]domain.Gap, error)
}

var _ driving.AnalysisService = (*MockAnalysisService)(nil)

func (m *MockAnalysisService) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, req)
	}
	return &domain.AnalysisResult{Version: req.Version, Date: req.Date, Method: domain.ScoringVector}, nil
}

func (m *MockAnalysisService) DetectGaps(ctx context.Context, req domain.AnalysisRequest) ([]domain.Gap, error) {
	if m.DetectGapsFunc != nil {
		return m.DetectGapsFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockAnalysisService) SuggestGaps(ctx context.Context, req domain.AnalysisRequest) ([]domain.Gap, error) {
	if m.SuggestGapsFunc != nil {
		return m.SuggestGapsFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockAnalysisService) Classify(score float64, scale domain.Scale) domain.Label {
	return domain.DefaultThresholds().Classify(score, scale)
}

// MockArticleService implements driving.ArticleService for CLI tests.
type MockArticleService struct {
	Docs       map[string]domain.Document
	ListFunc   func(ctx context.Context, page, perPage int) (*domain.ArticlePage, error)
	SearchFunc func(ctx context.Context, query string) ([]domain.Document, error)
}

var _ driving.ArticleService = (*MockArticleService)(nil)

func (m *MockArticleService) Get(_ context.Context, id string) (*domain.Document, error) {
	doc, ok := m.Docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

func (m *MockArticleService) List(ctx context.Context, page, perPage int) (*domain.ArticlePage, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, page, perPage)
	}
	return &domain.ArticlePage{Page: page}, nil
}

func (m *MockArticleService) Search(ctx context.Context, query string) ([]domain.Document, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query)
	}
	return nil, nil
}

func (m *MockArticleService) Corpus(_ context.Context, _ int) ([]domain.Document, error) {
	docs := make([]domain.Document, 0, len(m.Docs))
	for _, d := range m.Docs {
		docs = append(docs, d)
	}
	return docs, nil
}

// MockDraftingService implements driving.DraftingService for CLI tests.
type MockDraftingService struct {
	ImpactFunc    func(notes string, article domain.Document) (domain.ImpactResult, error)
	UpdateFunc    func(notes string, article domain.Document) (*domain.Draft, error)
	CompareFunc   func(notes string, article domain.Document) (*domain.Comparison, error)
	SuggestFunc   func(notes string, article domain.Document) (string, error)
	ArticleFunc   func(notes string, topic domain.Topic) (*domain.Draft, error)
	TranslateFunc func(text, language string) (string, error)
	ExtractFunc   func(notes string) (domain.Parsed[domain.ReleaseNotesExtraction], error)
}

var _ driving.DraftingService = (*MockDraftingService)(nil)

func (m *MockDraftingService) AnalyzeImpact(_ context.Context, notes string, a domain.Document) (domain.ImpactResult, error) {
	if m.ImpactFunc != nil {
		return m.ImpactFunc(notes, a)
	}
	return domain.ImpactResult{}, domain.ErrLLMUnavailable
}

func (m *MockDraftingService) GenerateUpdate(_ context.Context, notes string, a domain.Document) (*domain.Draft, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(notes, a)
	}
	return nil, domain.ErrLLMUnavailable
}

func (m *MockDraftingService) Compare(_ context.Context, notes string, a domain.Document) (*domain.Comparison, error) {
	if m.CompareFunc != nil {
		return m.CompareFunc(notes, a)
	}
	return nil, domain.ErrLLMUnavailable
}

func (m *MockDraftingService) SuggestUpdate(_ context.Context, notes string, a domain.Document) (string, error) {
	if m.SuggestFunc != nil {
		return m.SuggestFunc(notes, a)
	}
	return "", domain.ErrLLMUnavailable
}

func (m *MockDraftingService) DraftArticle(_ context.Context, notes string, topic domain.Topic) (*domain.Draft, error) {
	if m.ArticleFunc != nil {
		return m.ArticleFunc(notes, topic)
	}
	return nil, domain.ErrLLMUnavailable
}

func (m *MockDraftingService) Translate(_ context.Context, text, language string) (string, error) {
	if m.TranslateFunc != nil {
		return m.TranslateFunc(text, language)
	}
	return "", domain.ErrLLMUnavailable
}

func (m *MockDraftingService) ExtractReleaseNotes(
	_ context.Context, notes string,
) (domain.Parsed[domain.ReleaseNotesExtraction], error) {
	if m.ExtractFunc != nil {
		return m.ExtractFunc(notes)
	}
	return domain.Parsed[domain.ReleaseNotesExtraction]{}, domain.ErrLLMUnavailable
}

// MockExportService implements driving.ExportService by writing the format name.
type MockExportService struct {
	Analyses []*domain.AnalysisResult
	Drafts   []*domain.Draft
}

var _ driving.ExportService = (*MockExportService)(nil)

func (m *MockExportService) ExportAnalysis(w io.Writer, f domain.ExportFormat, r *domain.AnalysisResult) error {
	if !f.IsValid() {
		return domain.ErrUnsupportedFormat
	}
	m.Analyses = append(m.Analyses, r)
	_, err := io.WriteString(w, "report:"+string(f))
	return err
}

func (m *MockExportService) ExportDraft(w io.Writer, f domain.ExportFormat, d *domain.Draft) error {
	m.Drafts = append(m.Drafts, d)
	_, err := io.WriteString(w, "draft:"+string(f)+":"+d.Body)
	return err
}

func (m *MockExportService) Formats() []domain.ExportFormat {
	return []domain.ExportFormat{domain.ExportJSON, domain.ExportMarkdown}
}

// MockNotesFetcher returns canned notes and records the requested source.
type MockNotesFetcher struct {
	Notes  *domain.ReleaseNotes
	Err    error
	Source string
	Ref    string
}

func (m *MockNotesFetcher) FetchNotes(_ context.Context, source, ref string) (*domain.ReleaseNotes, error) {
	m.Source, m.Ref = source, ref
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Notes != nil {
		n := *m.Notes
		return &n, nil
	}
	return &domain.ReleaseNotes{Text: "Added dark mode.", Source: source}, nil
}

// MockCacheClearer counts Clear calls.
type MockCacheClearer struct {
	Calls int
	Err   error
}

func (m *MockCacheClearer) Clear(context.Context) error {
	m.Calls++
	return m.Err
}

// resetFlags restores every flag to its default so commands can run
// repeatedly against the shared command tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, isSlice := f.Value.(pflag.SliceValue); isSlice {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command with s injected and returns its output.
func execute(t *testing.T, s *Services, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	SetServices(s)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		SetServices(nil)
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}
