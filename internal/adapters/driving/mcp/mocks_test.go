package mcp

import (
	"context"

	"github.com/custodia-labs/docgap/internal/core/domain"
)

// mockAnalysisService is a mock implementation of driving.AnalysisService.
type mockAnalysisService struct {
	result   *domain.AnalysisResult
	gaps     []domain.Gap
	suggests []domain.Gap
	err      error
	lastReq  domain.AnalysisRequest
}

func (m *mockAnalysisService) Analyze(_ context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	m.lastReq = req
	return m.result, m.err
}

func (m *mockAnalysisService) DetectGaps(_ context.Context, req domain.AnalysisRequest) ([]domain.Gap, error) {
	m.lastReq = req
	return m.gaps, m.err
}

func (m *mockAnalysisService) SuggestGaps(_ context.Context, req domain.AnalysisRequest) ([]domain.Gap, error) {
	m.lastReq = req
	return m.suggests, m.err
}

func (m *mockAnalysisService) Classify(score float64, scale domain.Scale) domain.Label {
	return domain.Classify(score, scale)
}

// mockArticleService is a mock implementation of driving.ArticleService.
type mockArticleService struct {
	articles map[string]domain.Document
	page     *domain.ArticlePage
	err      error
}

func (m *mockArticleService) Get(_ context.Context, id string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	doc, ok := m.articles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

func (m *mockArticleService) List(_ context.Context, _, _ int) (*domain.ArticlePage, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.page == nil {
		return &domain.ArticlePage{Page: 1}, nil
	}
	return m.page, nil
}

func (m *mockArticleService) Search(_ context.Context, _ string) ([]domain.Document, error) {
	return nil, m.err
}

func (m *mockArticleService) Corpus(_ context.Context, _ int) ([]domain.Document, error) {
	return nil, m.err
}

// mockDraftingService is a mock implementation of driving.DraftingService.
type mockDraftingService struct {
	advice string
	err    error
	notes  string
}

func (m *mockDraftingService) AnalyzeImpact(_ context.Context, _ string, _ domain.Document) (domain.ImpactResult, error) {
	return domain.ImpactResult{}, m.err
}

func (m *mockDraftingService) GenerateUpdate(_ context.Context, _ string, _ domain.Document) (*domain.Draft, error) {
	return nil, m.err
}

func (m *mockDraftingService) Compare(_ context.Context, _ string, _ domain.Document) (*domain.Comparison, error) {
	return nil, m.err
}

func (m *mockDraftingService) SuggestUpdate(_ context.Context, notes string, _ domain.Document) (string, error) {
	m.notes = notes
	return m.advice, m.err
}

func (m *mockDraftingService) DraftArticle(_ context.Context, _ string, _ domain.Topic) (*domain.Draft, error) {
	return nil, m.err
}

func (m *mockDraftingService) Translate(_ context.Context, _, _ string) (string, error) {
	return "", m.err
}

func (m *mockDraftingService) ExtractReleaseNotes(
	_ context.Context,
	_ string,
) (domain.Parsed[domain.ReleaseNotesExtraction], error) {
	return domain.Parsed[domain.ReleaseNotesExtraction]{}, m.err
}
