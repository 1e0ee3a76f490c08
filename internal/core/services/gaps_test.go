package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docgap/internal/core/domain"
)

func gapTopics(gaps []domain.Gap) []string {
	out := make([]string, 0, len(gaps))
	for _, g := range gaps {
		out = append(out, g.Topic.String())
	}
	return out
}

func toTopics(words ...string) []domain.Topic {
	out := make([]domain.Topic, 0, len(words))
	for _, w := range words {
		out = append(out, domain.Topic(w))
	}
	return out
}

// TestGapDetector_TitleCoverage tests that topics in matched or corpus titles are covered.
func TestGapDetector_TitleCoverage(t *testing.T) {
	detector := NewGapDetector(nil, GapConfig{})
	corpus := testCorpus()
	matched := []domain.ScoredDocument{domain.NewScoredDocument(corpus[0], 0.9)}
	source := "Export is faster. Clash checks improved. New filtering panel with filtering presets."

	gaps := detector.Detect(context.Background(), source, toTopics("export", "clash", "filtering"), matched, corpus)

	require.Len(t, gaps, 1)
	assert.Equal(t, domain.Topic("filtering"), gaps[0].Topic)
	assert.Equal(t, 2, gaps[0].Mentions)
	assert.Equal(t, reasonNoTitle, gaps[0].Reason)
}

// TestGapDetector_NeverReportsMatchedTitle tests that a matched title is never a gap.
func TestGapDetector_NeverReportsMatchedTitle(t *testing.T) {
	detector := NewGapDetector(nil, GapConfig{})
	corpus := testCorpus()
	matched := make([]domain.ScoredDocument, 0, len(corpus))
	candidates := make([]domain.Topic, 0, len(corpus))
	for _, doc := range corpus {
		matched = append(matched, domain.NewScoredDocument(doc, 0.5))
		candidates = append(candidates, domain.Topic(strings.ToUpper(doc.Title)))
	}

	gaps := detector.Detect(context.Background(), "notes", candidates, matched, nil)

	for _, g := range gaps {
		for _, doc := range matched {
			assert.NotEqual(t, doc.TitleKey(), g.Topic.Key())
		}
	}
	assert.Empty(t, gaps)
}

// TestGapDetector_Dedupe tests that case variants collapse to the first seen.
func TestGapDetector_Dedupe(t *testing.T) {
	detector := NewGapDetector(nil, GapConfig{})

	gaps := detector.Detect(context.Background(), "filtering", toTopics("Filtering", "filtering", " FILTERING "), nil, nil)

	require.Len(t, gaps, 1)
	assert.Equal(t, domain.Topic("Filtering"), gaps[0].Topic)
}

// TestGapDetector_OrderAndCap tests ordering by mentions and the cap.
func TestGapDetector_OrderAndCap(t *testing.T) {
	detector := NewGapDetector(nil, GapConfig{Cap: 2})
	source := "beta beta gamma gamma gamma alpha"

	gaps := detector.Detect(context.Background(), source, toTopics("alpha", "beta", "gamma"), nil, nil)

	assert.Equal(t, []string{"gamma", "beta"}, gapTopics(gaps))
	assert.Equal(t, 3, gaps[0].Mentions)
}

// TestGapDetector_EqualMentionsKeepTopicOrder tests stable ordering on ties.
func TestGapDetector_EqualMentionsKeepTopicOrder(t *testing.T) {
	detector := NewGapDetector(nil, GapConfig{})

	gaps := detector.Detect(context.Background(), "zeta eta theta", toTopics("theta", "zeta", "eta"), nil, nil)

	assert.Equal(t, []string{"theta", "zeta", "eta"}, gapTopics(gaps))
}

// TestGapDetector_LimitClamp tests DetectN limits.
func TestGapDetector_LimitClamp(t *testing.T) {
	detector := NewGapDetector(nil, GapConfig{})
	words := make([]string, 12)
	for i := range words {
		words[i] = fmt.Sprintf("topic%02d", i)
	}
	candidates := toTopics(words...)

	assert.Len(t, detector.DetectN(context.Background(), "", candidates, nil, nil, 20), domain.MaxGapCap)
	assert.Len(t, detector.DetectN(context.Background(), "", candidates, nil, nil, 0), domain.DefaultGapCap)
	assert.Len(t, detector.DetectN(context.Background(), "", candidates, nil, nil, 3), 3)

	capped := NewGapDetector(nil, GapConfig{Cap: 50})
	assert.Len(t, capped.Detect(context.Background(), "", candidates, nil, nil), domain.MaxGapCap)
}

// TestGapDetector_SemanticCoverage tests the embedding coverage check.
func TestGapDetector_SemanticCoverage(t *testing.T) {
	agg := NewRelevanceAggregator(&mockEmbedder{}, RelevanceConfig{BatchSize: 2})
	detector := NewGapDetector(agg, GapConfig{Semantic: true})
	source := "BCF round trips are faster. Filtering presets. Export performance."

	gaps := detector.Detect(context.Background(), source, toTopics("bcf", "filtering", "performance"), nil, testCorpus())

	// "bcf" is covered by the Issue Management article body.
	assert.Equal(t, []string{"filtering", "performance"}, gapTopics(gaps))
	assert.Equal(t, "no article is semantically similar enough (best 0.00 < 0.60)", gaps[0].Reason)
	assert.Contains(t, gaps[1].Reason, "best 0.27")
}

// TestGapDetector_SemanticDisabled tests that only titles count when disabled.
func TestGapDetector_SemanticDisabled(t *testing.T) {
	embedder := &mockEmbedder{}
	agg := NewRelevanceAggregator(embedder, RelevanceConfig{})
	detector := NewGapDetector(agg, GapConfig{Semantic: false})

	gaps := detector.Detect(context.Background(), "bcf", toTopics("bcf"), nil, testCorpus())

	assert.Equal(t, []string{"bcf"}, gapTopics(gaps))
	assert.Zero(t, embedder.batchCalls.Load())
}

// TestGapDetector_FailOpen tests that failed semantic checks keep the topic as a gap.
func TestGapDetector_FailOpen(t *testing.T) {
	tests := []struct {
		name     string
		embedder *mockEmbedder
	}{
		{"corpus embedding fails", &mockEmbedder{failBatch: func([]string) bool { return true }}},
		{"topic embedding fails", &mockEmbedder{failQuery: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := NewRelevanceAggregator(tt.embedder, RelevanceConfig{})
			detector := NewGapDetector(agg, GapConfig{Semantic: true})

			gaps := detector.Detect(context.Background(), "bcf sync", toTopics("bcf"), nil, testCorpus())

			require.Len(t, gaps, 1)
			assert.Equal(t, reasonCheckFailed, gaps[0].Reason)
		})
	}
}

// TestGapDetector_CallTimeout tests that a stalled semantic check keeps the
// topic once the per-call timeout expires.
func TestGapDetector_CallTimeout(t *testing.T) {
	tests := []struct {
		name     string
		embedder *mockEmbedder
	}{
		{"corpus embedding stalls", &mockEmbedder{hangBatch: func([]string) bool { return true }}},
		{"topic embedding stalls", &mockEmbedder{hangQuery: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timeout := 20 * time.Millisecond
			agg := NewRelevanceAggregator(tt.embedder, RelevanceConfig{CallTimeout: timeout})
			detector := NewGapDetector(agg, GapConfig{Semantic: true, CallTimeout: timeout})

			start := time.Now()
			gaps := detector.Detect(context.Background(), "bcf sync", toTopics("bcf"), nil, testCorpus())

			assert.Less(t, time.Since(start), time.Second)
			require.Len(t, gaps, 1)
			assert.Equal(t, "bcf", gaps[0].Topic.String())
			assert.Equal(t, reasonCheckFailed, gaps[0].Reason)
		})
	}
}

// TestGapDetector_EmptyInputs tests empty topic and corpus handling.
func TestGapDetector_EmptyInputs(t *testing.T) {
	detector := NewGapDetector(NewRelevanceAggregator(&mockEmbedder{}, RelevanceConfig{}), GapConfig{Semantic: true})

	assert.Empty(t, detector.Detect(context.Background(), "text", nil, nil, testCorpus()))
	assert.Empty(t, detector.Detect(context.Background(), "text", toTopics("", "  "), nil, nil))

	gaps := detector.Detect(context.Background(), "viewer", toTopics("viewer"), nil, nil)
	require.Len(t, gaps, 1)
	assert.Equal(t, reasonNoTitle, gaps[0].Reason)
}
