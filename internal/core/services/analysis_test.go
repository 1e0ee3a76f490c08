package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docgap/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docgap/internal/core/domain"
	"github.com/custodia-labs/docgap/internal/core/ports/driven"
	"github.com/custodia-labs/docgap/internal/core/topics"
)

func newTestAnalysisService(repo driven.ContentRepository, embedder driven.EmbeddingService) *AnalysisService {
	agg := NewRelevanceAggregator(embedder, RelevanceConfig{})
	detector := NewGapDetector(agg, GapConfig{Semantic: true})
	svc := NewAnalysisService(NewArticleService(repo), agg, detector, topics.NewExtractor(topics.Config{}), AnalysisConfig{})
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC) }
	return svc
}

const ifcNotes = "Version 24.3 improves IFC export performance and adds clash grouping."

// TestAnalysisService_Analyze_EmptyNotes tests that empty notes fail before any external call.
func TestAnalysisService_Analyze_EmptyNotes(t *testing.T) {
	repo := newTestRepository()
	embedder := &mockEmbedder{}
	svc := newTestAnalysisService(repo, embedder)

	for _, notes := range []string{"", "   ", "\n\t"} {
		_, err := svc.Analyze(context.Background(), domain.AnalysisRequest{ReleaseNotes: notes})
		assert.ErrorIs(t, err, domain.ErrEmptyReleaseNotes)
		assert.EqualError(t, err, "no input provided")
	}
	assert.Zero(t, repo.listCalls.Load())
	assert.Zero(t, embedder.batchCalls.Load())
	assert.Zero(t, embedder.queryCalls.Load())
}

// TestAnalysisService_Analyze_CorpusUnavailable tests repository failure on the first page.
func TestAnalysisService_Analyze_CorpusUnavailable(t *testing.T) {
	repo := newTestRepository()
	repo.failPages = map[int]error{1: errors.New("502 bad gateway")}
	svc := newTestAnalysisService(repo, nil)

	_, err := svc.Analyze(context.Background(), domain.AnalysisRequest{ReleaseNotes: ifcNotes})

	assert.ErrorIs(t, err, domain.ErrCorpusUnavailable)
	assert.Contains(t, err.Error(), "502 bad gateway")
}

// TestAnalysisService_Analyze_Lexical tests a full run without embeddings.
func TestAnalysisService_Analyze_Lexical(t *testing.T) {
	svc := newTestAnalysisService(newTestRepository(), nil)

	result, err := svc.Analyze(context.Background(), domain.AnalysisRequest{
		ReleaseNotes: ifcNotes,
		Version:      "24.3",
		Date:         "2025-06-01",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, result.ID)
	assert.Equal(t, domain.ScoringLexical, result.Method)
	assert.Equal(t, len(testCorpus()), result.TotalArticlesSearched)
	require.NotEmpty(t, result.Articles)
	assert.Equal(t, "101", result.Articles[0].ID)
	for _, a := range result.Articles {
		assert.NotEmpty(t, a.Suggestion)
	}
	assert.Contains(t, result.Summary, "Version 24.3 (2025-06-01)")
	assert.Equal(t, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC), result.CreatedAt)

	for _, g := range result.Gaps {
		for _, a := range result.Articles {
			assert.NotEqual(t, a.TitleKey(), g.Topic.Key())
		}
	}
	assert.LessOrEqual(t, len(result.Gaps), domain.DefaultGapCap)
	assert.LessOrEqual(t, len(result.Topics), domain.DefaultTopicCap)
}

// TestAnalysisService_Analyze_RepeatedFeatureIsGap tests that a feature
// named three times with no matching title is reported with its mentions.
func TestAnalysisService_Analyze_RepeatedFeatureIsGap(t *testing.T) {
	svc := newTestAnalysisService(newTestRepository(), nil)
	notes := "Advanced Filtering arrives in the viewer. Advanced Filtering keeps presets. " +
		"Share Advanced Filtering presets with the team."

	result, err := svc.Analyze(context.Background(), domain.AnalysisRequest{ReleaseNotes: notes})

	require.NoError(t, err)
	require.NotEmpty(t, result.Gaps)
	var found bool
	for _, g := range result.Gaps {
		if g.Topic == "advanced" || g.Topic == "filtering" {
			assert.Equal(t, 3, g.Mentions)
			found = true
		}
	}
	assert.True(t, found, "gaps: %v", result.Gaps)
}

// TestAnalysisService_Analyze_Vector tests a run with embeddings and labels.
func TestAnalysisService_Analyze_Vector(t *testing.T) {
	svc := newTestAnalysisService(newTestRepository(), &mockEmbedder{})

	result, err := svc.Analyze(context.Background(), domain.AnalysisRequest{ReleaseNotes: "IFC export performance"})

	require.NoError(t, err)
	assert.Equal(t, domain.ScoringVector, result.Method)
	require.Len(t, result.Articles, 1)
	assert.Equal(t, "101", result.Articles[0].ID)
	assert.Equal(t, domain.LabelPriorityUpdate, result.Articles[0].Suggestion)
	assert.Equal(t, "Unknown", result.Version)
	assert.Contains(t, result.Summary, "Coverage: Moderate")
}

// TestAnalysisService_Analyze_ForceLexical tests that the embedding path can be skipped.
func TestAnalysisService_Analyze_ForceLexical(t *testing.T) {
	embedder := &mockEmbedder{}
	svc := newTestAnalysisService(newTestRepository(), embedder)

	result, err := svc.Analyze(context.Background(), domain.AnalysisRequest{ReleaseNotes: ifcNotes, ForceLexical: true})

	require.NoError(t, err)
	assert.Equal(t, domain.ScoringLexical, result.Method)
	assert.Zero(t, embedder.queryCalls.Load())
	assert.Zero(t, embedder.batchCalls.Load())
	for _, g := range result.Gaps {
		assert.Equal(t, reasonNoTitle, g.Reason)
	}
}

// TestAnalysisService_EmbedsCorpusOnce tests that ranking and the semantic
// gap check share one pass of corpus embeddings.
func TestAnalysisService_EmbedsCorpusOnce(t *testing.T) {
	onePass := int32((len(testCorpus()) + domain.DefaultBatchSize - 1) / domain.DefaultBatchSize)

	t.Run("analyze", func(t *testing.T) {
		embedder := &mockEmbedder{}
		svc := newTestAnalysisService(newTestRepository(), embedder)

		result, err := svc.Analyze(context.Background(), domain.AnalysisRequest{ReleaseNotes: ifcNotes})

		require.NoError(t, err)
		assert.Equal(t, domain.ScoringVector, result.Method)
		assert.Equal(t, onePass, embedder.batchCalls.Load())
		// One query for ranking plus at least one topic check.
		assert.Greater(t, embedder.queryCalls.Load(), int32(1))
	})

	t.Run("detect gaps", func(t *testing.T) {
		embedder := &mockEmbedder{}
		svc := newTestAnalysisService(newTestRepository(), embedder)

		_, err := svc.DetectGaps(context.Background(), domain.AnalysisRequest{ReleaseNotes: ifcNotes})

		require.NoError(t, err)
		assert.Equal(t, onePass, embedder.batchCalls.Load())
	})
}

// TestAnalysisService_Analyze_QueryEmbeddingFails tests that a failed query
// embedding falls back to lexical ranking and keeps every uncovered topic
// without embedding the corpus.
func TestAnalysisService_Analyze_QueryEmbeddingFails(t *testing.T) {
	embedder := &mockEmbedder{failQuery: true}
	svc := newTestAnalysisService(newTestRepository(), embedder)

	result, err := svc.Analyze(context.Background(), domain.AnalysisRequest{ReleaseNotes: ifcNotes})

	require.NoError(t, err)
	assert.Equal(t, domain.ScoringLexical, result.Method)
	assert.Zero(t, embedder.batchCalls.Load())
	assert.Equal(t, int32(1), embedder.queryCalls.Load())
	require.NotEmpty(t, result.Gaps)
	for _, g := range result.Gaps {
		assert.Equal(t, reasonCheckFailed, g.Reason, "topic %s", g.Topic)
	}
}

// TestAnalysisService_Analyze_Cache tests that repeated requests are served from cache.
func TestAnalysisService_Analyze_Cache(t *testing.T) {
	repo := newTestRepository()
	svc := newTestAnalysisService(repo, nil)
	svc.SetCache(memory.NewCache())
	req := domain.AnalysisRequest{ReleaseNotes: ifcNotes}

	first, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	// A changed corpus produces a different key.
	docs := append(testCorpus(), domain.Document{ID: "106", Title: "Advanced Filtering"})
	repo.Replace(docs)
	third, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, third.ID)
}

// TestAnalysisService_DetectGaps tests gap-only analysis.
func TestAnalysisService_DetectGaps(t *testing.T) {
	svc := newTestAnalysisService(newTestRepository(), nil)
	notes := "Advanced filtering lets you save filtering presets. Filtering works in the viewer."

	gaps, err := svc.DetectGaps(context.Background(), domain.AnalysisRequest{ReleaseNotes: notes, GapCap: 1})

	require.NoError(t, err)
	require.Len(t, gaps, 1)
	assert.Equal(t, domain.Topic("filtering"), gaps[0].Topic)
	assert.Equal(t, 3, gaps[0].Mentions)

	_, err = svc.DetectGaps(context.Background(), domain.AnalysisRequest{})
	assert.ErrorIs(t, err, domain.ErrEmptyReleaseNotes)
}

// TestAnalysisService_SuggestGaps tests LLM gap candidates validated against the corpus.
func TestAnalysisService_SuggestGaps(t *testing.T) {
	notes := "Advanced Filtering is here. Use Advanced Filtering to narrow issues. " +
		"Advanced Filtering supports presets. IFC export is faster."

	t.Run("json response", func(t *testing.T) {
		llm := &mockLLM{respond: func(string) (string, error) {
			return "Here you go:\n[\"Advanced Filtering\", \"IFC Export\"]", nil
		}}
		svc := newTestAnalysisService(newTestRepository(), nil)
		svc.SetLLMService(llm)

		gaps, err := svc.SuggestGaps(context.Background(), domain.AnalysisRequest{ReleaseNotes: notes})

		require.NoError(t, err)
		require.Len(t, gaps, 1)
		assert.Equal(t, domain.Topic("Advanced Filtering"), gaps[0].Topic)
		assert.Equal(t, 3, gaps[0].Mentions)
		require.Equal(t, 1, llm.calls())
		assert.Contains(t, llm.prompts[0], "- IFC Export Settings")
	})

	t.Run("line fallback", func(t *testing.T) {
		llm := &mockLLM{respond: func(string) (string, error) {
			return "1. Advanced Filtering\n2. Preset Sharing", nil
		}}
		svc := newTestAnalysisService(newTestRepository(), nil)
		svc.SetLLMService(llm)

		gaps, err := svc.SuggestGaps(context.Background(), domain.AnalysisRequest{ReleaseNotes: notes})

		require.NoError(t, err)
		assert.Equal(t, []string{"Advanced Filtering", "Preset Sharing"}, gapTopics(gaps))
	})

	t.Run("semantic check fails open", func(t *testing.T) {
		llm := &mockLLM{respond: func(string) (string, error) { return `["Advanced Filtering"]`, nil }}
		svc := newTestAnalysisService(newTestRepository(), &mockEmbedder{failQuery: true})
		svc.SetLLMService(llm)

		gaps, err := svc.SuggestGaps(context.Background(), domain.AnalysisRequest{ReleaseNotes: notes})

		require.NoError(t, err)
		require.Len(t, gaps, 1)
		assert.Equal(t, reasonCheckFailed, gaps[0].Reason)
	})

	t.Run("custom prompt", func(t *testing.T) {
		llm := &mockLLM{respond: func(string) (string, error) { return "[]", nil }}
		svc := newTestAnalysisService(newTestRepository(), nil)
		svc.SetLLMService(llm)
		svc.SetPromptStore(&mockPromptStore{prompts: map[string]string{
			driven.PromptSuggestGaps: "NOTES=%s TITLES=%s",
		}})

		gaps, err := svc.SuggestGaps(context.Background(), domain.AnalysisRequest{ReleaseNotes: "x"})

		require.NoError(t, err)
		assert.Empty(t, gaps)
		assert.True(t, strings.HasPrefix(llm.prompts[0], "NOTES=x TITLES="))
	})

	t.Run("no llm", func(t *testing.T) {
		svc := newTestAnalysisService(newTestRepository(), nil)
		_, err := svc.SuggestGaps(context.Background(), domain.AnalysisRequest{ReleaseNotes: notes})
		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	})

	t.Run("llm error", func(t *testing.T) {
		svc := newTestAnalysisService(newTestRepository(), nil)
		svc.SetLLMService(&mockLLM{respond: func(string) (string, error) { return "", errors.New("timeout") }})
		_, err := svc.SuggestGaps(context.Background(), domain.AnalysisRequest{ReleaseNotes: notes})
		assert.Error(t, err)
	})
}

// TestAnalysisService_SuggestGaps_Timeout tests that a stalled LLM call is
// abandoned after the configured timeout.
func TestAnalysisService_SuggestGaps_Timeout(t *testing.T) {
	agg := NewRelevanceAggregator(nil, RelevanceConfig{})
	svc := NewAnalysisService(NewArticleService(newTestRepository()), agg, NewGapDetector(agg, GapConfig{}),
		topics.NewExtractor(topics.Config{}), AnalysisConfig{LLMTimeout: 20 * time.Millisecond})
	svc.SetLLMService(&mockLLM{hang: true})

	start := time.Now()
	_, err := svc.SuggestGaps(context.Background(), domain.AnalysisRequest{ReleaseNotes: ifcNotes})

	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

// TestAnalysisService_Classify tests classification with a custom table.
func TestAnalysisService_Classify(t *testing.T) {
	agg := NewRelevanceAggregator(nil, RelevanceConfig{})
	svc := NewAnalysisService(NewArticleService(newTestRepository()), agg, NewGapDetector(agg, GapConfig{}),
		topics.NewExtractor(topics.Config{}), AnalysisConfig{
			Thresholds: domain.DefaultThresholds().With(domain.LabelPriorityUpdate, 0.95),
		})

	assert.Equal(t, domain.LabelNewInfo, svc.Classify(90, domain.Scale0To100))
	assert.Equal(t, domain.LabelPriorityUpdate, svc.Classify(9.5, domain.Scale0To10))
	assert.Equal(t, domain.LabelReview, svc.Classify(0.1, domain.Scale0To1))
}
