package api

import (
	"context"
	"io"

	"github.com/custodia-labs/docgap/internal/core/domain"
	"github.com/custodia-labs/docgap/internal/core/ports/driving"
)

type mockAnalysis struct {
	analyzeFunc func(req domain.AnalysisRequest) (*domain.AnalysisResult, error)
	gapsFunc    func(req domain.AnalysisRequest) ([]domain.Gap, error)
	suggestFunc func(req domain.AnalysisRequest) ([]domain.Gap, error)
}

var _ driving.AnalysisService = (*mockAnalysis)(nil)

func (m *mockAnalysis) Analyze(_ context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	if m.analyzeFunc != nil {
		return m.analyzeFunc(req)
	}
	return &domain.AnalysisResult{Version: req.Version}, nil
}

func (m *mockAnalysis) DetectGaps(_ context.Context, req domain.AnalysisRequest) ([]domain.Gap, error) {
	if m.gapsFunc != nil {
		return m.gapsFunc(req)
	}
	return nil, nil
}

func (m *mockAnalysis) SuggestGaps(_ context.Context, req domain.AnalysisRequest) ([]domain.Gap, error) {
	if m.suggestFunc != nil {
		return m.suggestFunc(req)
	}
	return nil, domain.ErrLLMUnavailable
}

func (m *mockAnalysis) Classify(score float64, scale domain.Scale) domain.Label {
	return domain.DefaultThresholds().Classify(score, scale)
}

type mockArticles struct {
	docs    map[string]domain.Document
	listErr error
}

var _ driving.ArticleService = (*mockArticles)(nil)

func (m *mockArticles) Get(_ context.Context, id string) (*domain.Document, error) {
	d, found := m.docs[id]
	if !found {
		return nil, domain.ErrNotFound
	}
	return &d, nil
}

func (m *mockArticles) List(_ context.Context, page, perPage int) (*domain.ArticlePage, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := &domain.ArticlePage{Page: page, Total: len(m.docs), Pages: 1}
	for _, d := range m.docs {
		if len(out.Articles) < perPage {
			out.Articles = append(out.Articles, d)
		}
	}
	return out, nil
}

func (m *mockArticles) Search(_ context.Context, query string) ([]domain.Document, error) {
	var out []domain.Document
	for _, d := range m.docs {
		if d.Title == query {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockArticles) Corpus(context.Context, int) ([]domain.Document, error) {
	return nil, nil
}

type mockDrafting struct {
	lastNotes   string
	lastArticle domain.Document
	err         error
}

var _ driving.DraftingService = (*mockDrafting)(nil)

func (m *mockDrafting) AnalyzeImpact(context.Context, string, domain.Document) (domain.ImpactResult, error) {
	return domain.ParsedValue(domain.ImpactAnalysis{Score: 7, Severity: domain.SeverityHigh}), m.err
}

func (m *mockDrafting) GenerateUpdate(context.Context, string, domain.Document) (*domain.Draft, error) {
	return &domain.Draft{Body: "updated"}, m.err
}

func (m *mockDrafting) Compare(_ context.Context, notes string, a domain.Document) (*domain.Comparison, error) {
	m.lastNotes, m.lastArticle = notes, a
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Comparison{
		ArticleID:       a.ID,
		ShouldUpdate:    true,
		SuggestedUpdate: "updated",
		Impact:          domain.ParsedValue(domain.ImpactAnalysis{Score: 7, Severity: domain.SeverityHigh}),
	}, nil
}

func (m *mockDrafting) SuggestUpdate(_ context.Context, notes string, a domain.Document) (string, error) {
	m.lastNotes, m.lastArticle = notes, a
	return "Add a section on SSO.", m.err
}

func (m *mockDrafting) DraftArticle(_ context.Context, _ string, topic domain.Topic) (*domain.Draft, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Draft{Title: "About " + topic.String(), Body: "body", Topic: topic}, nil
}

func (m *mockDrafting) Translate(_ context.Context, text, language string) (string, error) {
	return "[" + language + "] " + text, m.err
}

func (m *mockDrafting) ExtractReleaseNotes(context.Context, string) (domain.Parsed[domain.ReleaseNotesExtraction], error) {
	return domain.ParsedValue(domain.ReleaseNotesExtraction{}), m.err
}

type mockExport struct{}

var _ driving.ExportService = mockExport{}

func (mockExport) ExportAnalysis(w io.Writer, f domain.ExportFormat, r *domain.AnalysisResult) error {
	_, err := io.WriteString(w, string(f)+":"+r.Version)
	return err
}

func (mockExport) ExportDraft(w io.Writer, f domain.ExportFormat, d *domain.Draft) error {
	if f == domain.ExportXLSX {
		return domain.ErrUnsupportedFormat
	}
	_, err := io.WriteString(w, string(f)+":"+d.Title)
	return err
}

func (mockExport) Formats() []domain.ExportFormat {
	return domain.AllExportFormats()
}
