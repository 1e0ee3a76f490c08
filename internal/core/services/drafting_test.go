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
)

// markedPrompts makes each prompt start with a marker so the mock LLM
// can tell concurrent calls apart.
func markedPrompts() *mockPromptStore {
	return &mockPromptStore{prompts: map[string]string{
		driven.PromptSystem:         "SYSTEM",
		driven.PromptImpactAnalysis: "IMPACT|%s|%s|%s",
		driven.PromptUpdateArticle:  "UPDATE|%s|%s|%s",
		driven.PromptSuggestUpdate:  "SUGGEST|%s|%s|%s",
		driven.PromptDraftArticle:   "DRAFT|%s|%s",
		driven.PromptTranslate:      "TRANSLATE|%s|%s",
		driven.PromptExtractNotes:   "EXTRACT|%s",
	}}
}

func routedLLM(routes map[string]string) *mockLLM {
	return &mockLLM{respond: func(prompt string) (string, error) {
		marker, _, _ := strings.Cut(prompt, "|")
		if out, ok := routes[marker]; ok {
			return out, nil
		}
		return "", errors.New("unexpected prompt " + marker)
	}}
}

func newTestDrafting(llm driven.LLMService) *DraftingService {
	svc := NewDraftingService(llm)
	svc.SetPromptStore(markedPrompts())
	return svc
}

var exportArticle = domain.Document{
	ID:    "101",
	Title: "IFC Export Settings",
	Body:  "How to configure IFC export.",
}

// TestDraftingService_NoLLM tests that every operation reports the missing LLM.
func TestDraftingService_NoLLM(t *testing.T) {
	svc := NewDraftingService(nil)
	ctx := context.Background()

	_, err := svc.AnalyzeImpact(ctx, "notes", exportArticle)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	_, err = svc.GenerateUpdate(ctx, "notes", exportArticle)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	_, err = svc.Compare(ctx, "notes", exportArticle)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	_, err = svc.SuggestUpdate(ctx, "notes", exportArticle)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	_, err = svc.DraftArticle(ctx, "notes", "filtering")
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	_, err = svc.Translate(ctx, "text", "de")
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	_, err = svc.ExtractReleaseNotes(ctx, "notes")
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

// TestDraftingService_EmptyNotes tests validation before any call.
func TestDraftingService_EmptyNotes(t *testing.T) {
	llm := routedLLM(nil)
	svc := newTestDrafting(llm)

	_, err := svc.AnalyzeImpact(context.Background(), "  ", exportArticle)

	assert.ErrorIs(t, err, domain.ErrEmptyReleaseNotes)
	assert.Zero(t, llm.calls())
}

// TestDraftingService_AnalyzeImpact tests parsing of impact responses.
func TestDraftingService_AnalyzeImpact(t *testing.T) {
	tests := []struct {
		name       string
		response   string
		wantOK     bool
		wantScore  int
		wantSev    domain.Severity
		wantReason string
	}{
		{
			name:      "fenced json",
			response:  "```json\n{\"score\": 8, \"severity\": \"high\", \"summary\": \"Export dialog changed\"}\n```",
			wantOK:    true,
			wantScore: 8,
			wantSev:   domain.SeverityHigh,
		},
		{
			name:      "severity derived from score",
			response:  `{"score": 3}`,
			wantOK:    true,
			wantScore: 3,
			wantSev:   domain.SeverityLow,
		},
		{
			name:       "prose",
			response:   "This article should definitely be updated.",
			wantReason: "no JSON object in response",
		},
		{
			name:       "score out of range",
			response:   `{"score": 42, "severity": "HIGH"}`,
			wantReason: "score outside 1-10",
		},
		{
			name:       "unknown severity",
			response:   `{"score": 5, "severity": "SEVERE"}`,
			wantReason: "unknown severity SEVERE",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := routedLLM(map[string]string{"IMPACT": tt.response})
			svc := newTestDrafting(llm)

			result, err := svc.AnalyzeImpact(context.Background(), "notes", exportArticle)

			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, result.OK())
			if tt.wantOK {
				assert.Equal(t, tt.wantScore, result.Value.Score)
				assert.Equal(t, tt.wantSev, result.Value.Severity)
				return
			}
			require.NotNil(t, result.Failure)
			assert.Equal(t, tt.response, result.Failure.Raw)
			assert.Equal(t, tt.wantReason, result.Failure.Reason)
		})
	}
}

// TestDraftingService_AnalyzeImpact_Request tests the messages sent to the provider.
func TestDraftingService_AnalyzeImpact_Request(t *testing.T) {
	llm := routedLLM(map[string]string{"IMPACT": `{"score": 6}`})
	svc := newTestDrafting(llm)

	_, err := svc.AnalyzeImpact(context.Background(), "Export moved", exportArticle)
	require.NoError(t, err)

	require.Len(t, llm.messages, 1)
	msgs := llm.messages[0]
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].Role)
	assert.Equal(t, "SYSTEM", msgs[0].Content)
	assert.Equal(t, "IMPACT|Export moved|IFC Export Settings|How to configure IFC export.", msgs[1].Content)
	assert.True(t, llm.opts[0].JSON)
}

// TestDraftingService_AnalyzeImpact_ProviderError tests error wrapping.
func TestDraftingService_AnalyzeImpact_ProviderError(t *testing.T) {
	svc := newTestDrafting(&mockLLM{respond: func(string) (string, error) {
		return "", domain.ErrRateLimited
	}})

	_, err := svc.AnalyzeImpact(context.Background(), "notes", exportArticle)

	assert.ErrorIs(t, err, domain.ErrRateLimited)
}

// TestDraftingService_Compare tests the combined impact and update.
func TestDraftingService_Compare(t *testing.T) {
	tests := []struct {
		name       string
		impact     string
		wantUpdate bool
	}{
		{"high impact", `{"score": 7, "severity": "HIGH"}`, true},
		{"threshold", `{"score": 5}`, true},
		{"low impact", `{"score": 4}`, false},
		{"unparseable impact", "no idea", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := routedLLM(map[string]string{"IMPACT": tt.impact, "UPDATE": "  # IFC Export Settings\nNew body  "})
			svc := newTestDrafting(llm)

			result, err := svc.Compare(context.Background(), "notes", exportArticle)

			require.NoError(t, err)
			assert.Equal(t, "101", result.ArticleID)
			assert.Equal(t, tt.wantUpdate, result.ShouldUpdate)
			assert.Equal(t, "# IFC Export Settings\nNew body", result.SuggestedUpdate)
			assert.Equal(t, 2, llm.calls())
		})
	}
}

// TestDraftingService_Compare_Cache tests that cached comparisons skip the provider.
func TestDraftingService_Compare_Cache(t *testing.T) {
	llm := routedLLM(map[string]string{"IMPACT": `{"score": 9}`, "UPDATE": "body"})
	svc := newTestDrafting(llm)
	svc.SetCache(memory.NewCache(), time.Hour)

	first, err := svc.Compare(context.Background(), "notes", exportArticle)
	require.NoError(t, err)
	second, err := svc.Compare(context.Background(), "notes", exportArticle)
	require.NoError(t, err)

	assert.Equal(t, 2, llm.calls())
	assert.Equal(t, first, second)
	assert.Equal(t, domain.SeverityCritical, second.Impact.Value.Severity)
}

// TestDraftingService_Compare_UpdateFails tests that either failure fails the comparison.
func TestDraftingService_Compare_UpdateFails(t *testing.T) {
	llm := routedLLM(map[string]string{"IMPACT": `{"score": 9}`})
	svc := newTestDrafting(llm)

	_, err := svc.Compare(context.Background(), "notes", exportArticle)

	assert.Error(t, err)
}

// TestDraftingService_SuggestUpdate tests body truncation in the prompt.
func TestDraftingService_SuggestUpdate(t *testing.T) {
	llm := routedLLM(map[string]string{"SUGGEST": " Mention the new export preset. "})
	svc := newTestDrafting(llm)
	article := exportArticle
	article.Body = strings.Repeat("x", 800)

	out, err := svc.SuggestUpdate(context.Background(), "notes", article)

	require.NoError(t, err)
	assert.Equal(t, "Mention the new export preset.", out)
	assert.Equal(t, "SUGGEST|notes|IFC Export Settings|"+strings.Repeat("x", suggestionBudget), llm.prompts[0])
}

// TestDraftingService_DraftArticle tests title extraction from the draft.
func TestDraftingService_DraftArticle(t *testing.T) {
	t.Run("markdown heading", func(t *testing.T) {
		llm := routedLLM(map[string]string{"DRAFT": "# Using Advanced Filtering\n\nSteps..."})
		draft, err := newTestDrafting(llm).DraftArticle(context.Background(), "notes", "Advanced Filtering")

		require.NoError(t, err)
		assert.Equal(t, "Using Advanced Filtering", draft.Title)
		assert.Equal(t, domain.Topic("Advanced Filtering"), draft.Topic)
		assert.Equal(t, "DRAFT|Advanced Filtering|notes", llm.prompts[0])
	})

	t.Run("no heading", func(t *testing.T) {
		llm := routedLLM(map[string]string{"DRAFT": "Steps..."})
		draft, err := newTestDrafting(llm).DraftArticle(context.Background(), "notes", "filtering")

		require.NoError(t, err)
		assert.Equal(t, "filtering", draft.Title)
	})

	t.Run("empty topic", func(t *testing.T) {
		_, err := newTestDrafting(routedLLM(nil)).DraftArticle(context.Background(), "notes", " ")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

// TestDraftingService_Translate tests translation requests.
func TestDraftingService_Translate(t *testing.T) {
	llm := routedLLM(map[string]string{"TRANSLATE": "Hallo"})
	svc := newTestDrafting(llm)

	out, err := svc.Translate(context.Background(), "Hello", "German")
	require.NoError(t, err)
	assert.Equal(t, "Hallo", out)
	assert.Equal(t, "TRANSLATE|German|Hello", llm.prompts[0])

	_, err = svc.Translate(context.Background(), "", "German")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = svc.Translate(context.Background(), "Hello", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// TestDraftingService_Translate_Translator tests routing between the
// machine translator and the LLM.
func TestDraftingService_Translate_Translator(t *testing.T) {
	supported := map[string]bool{"german": true, "de": true}

	tests := []struct {
		name           string
		llm            *mockLLM
		translatorErr  error
		language       string
		want           string
		wantErr        error
		wantTranslator int32
		wantLLM        int
	}{
		{
			name:           "supported language uses the translator",
			llm:            routedLLM(map[string]string{"TRANSLATE": "Hallo"}),
			language:       "German",
			want:           "[German] Hello",
			wantTranslator: 1,
		},
		{
			name:     "other languages use the LLM",
			llm:      routedLLM(map[string]string{"TRANSLATE": "Bonjour"}),
			language: "French",
			want:     "Bonjour",
			wantLLM:  1,
		},
		{
			name:           "translator failure falls back to the LLM",
			llm:            routedLLM(map[string]string{"TRANSLATE": "Hallo"}),
			translatorErr:  domain.ErrRateLimited,
			language:       "de",
			want:           "Hallo",
			wantTranslator: 1,
			wantLLM:        1,
		},
		{
			name:           "translator failure without an LLM",
			translatorErr:  domain.ErrAuthInvalid,
			language:       "de",
			wantErr:        domain.ErrAuthInvalid,
			wantTranslator: 1,
		},
		{
			name:     "unsupported language without an LLM",
			language: "French",
			wantErr:  domain.ErrLLMUnavailable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var svc *DraftingService
			if tt.llm != nil {
				svc = newTestDrafting(tt.llm)
			} else {
				svc = newTestDrafting(nil)
			}
			translator := &mockTranslator{languages: supported, err: tt.translatorErr}
			svc.SetTranslator(translator)

			out, err := svc.Translate(context.Background(), "Hello", tt.language)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, out)
			}
			assert.Equal(t, tt.wantTranslator, translator.calls.Load())
			if tt.llm != nil {
				assert.Equal(t, tt.wantLLM, tt.llm.calls())
			}
		})
	}
}

// TestDraftingService_Timeout tests that a stalled LLM call is abandoned
// after the configured timeout.
func TestDraftingService_Timeout(t *testing.T) {
	svc := newTestDrafting(&mockLLM{hang: true})
	svc.SetTimeout(20 * time.Millisecond)

	start := time.Now()
	_, err := svc.SuggestUpdate(context.Background(), "notes", exportArticle)

	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)

	// Non-positive values keep the current timeout.
	svc.SetTimeout(0)
	assert.Equal(t, 20*time.Millisecond, svc.timeout)
}

// TestDraftingService_ExtractReleaseNotes tests categorisation parsing.
func TestDraftingService_ExtractReleaseNotes(t *testing.T) {
	llm := routedLLM(map[string]string{
		"EXTRACT": `{"features": ["Advanced Filtering"], "bugFixes": ["Export crash"], "breakingChanges": null}`,
	})

	parsed, err := newTestDrafting(llm).ExtractReleaseNotes(context.Background(), "notes")

	require.NoError(t, err)
	require.True(t, parsed.OK())
	assert.Equal(t, []string{"Advanced Filtering"}, parsed.Value.Features)
	assert.Equal(t, []string{"Export crash"}, parsed.Value.BugFixes)
	assert.Empty(t, parsed.Value.Deprecations)
	assert.NotNil(t, parsed.Value.BreakingChanges)
}

// TestDraftingService_DefaultPrompts tests that built-in prompts are used without a store.
func TestDraftingService_DefaultPrompts(t *testing.T) {
	llm := &mockLLM{respond: func(string) (string, error) { return `{"score": 2}`, nil }}
	svc := NewDraftingService(llm)

	_, err := svc.AnalyzeImpact(context.Background(), "Release 24.3 notes", exportArticle)
	require.NoError(t, err)

	sys, _ := driven.DefaultPrompt(driven.PromptSystem)
	assert.Equal(t, sys, llm.messages[0][0].Content)
	assert.Contains(t, llm.prompts[0], "Release 24.3 notes")
	assert.Contains(t, llm.prompts[0], "IFC Export Settings")
}
