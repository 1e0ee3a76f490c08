package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/docgap/internal/core/domain"
	"github.com/custodia-labs/docgap/internal/core/ports/driven"
	"github.com/custodia-labs/docgap/internal/core/ports/driving"
	"github.com/custodia-labs/docgap/internal/logger"
)

// Ensure DraftingService implements the interface.
var _ driving.DraftingService = (*DraftingService)(nil)

// Body budgets for prompts.
const (
	articleBudget    = 4000
	suggestionBudget = 500
)

var markdownTitle = regexp.MustCompile(`(?m)^#\s+(.+)$`)

// DraftingService drives LLM calls that assess and rewrite articles.
type DraftingService struct {
	llm        driven.LLMService
	translator driven.Translator
	prompts    driven.PromptStore
	cache      driven.Cache
	ttl        time.Duration
	timeout    time.Duration
}

// NewDraftingService creates a drafting service.
// The llm parameter is optional (can be nil); every method then returns
// domain.ErrLLMUnavailable.
func NewDraftingService(llm driven.LLMService) *DraftingService {
	return &DraftingService{
		llm:     llm,
		ttl:     domain.DefaultResultTTL,
		timeout: domain.DefaultLLMTimeout,
	}
}

// SetTimeout bounds each LLM call. Non-positive values keep the default.
func (s *DraftingService) SetTimeout(d time.Duration) {
	if d > 0 {
		s.timeout = d
	}
}

// SetTranslator adds a machine translation service. Languages it
// supports are translated without the LLM. The translator is optional.
func (s *DraftingService) SetTranslator(t driven.Translator) {
	s.translator = t
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *DraftingService) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// SetCache enables caching of comparison results. The cache is optional.
func (s *DraftingService) SetCache(cache driven.Cache, ttl time.Duration) {
	s.cache = cache
	if ttl > 0 {
		s.ttl = ttl
	}
}

// AnalyzeImpact assesses how the release notes affect the article.
func (s *DraftingService) AnalyzeImpact(
	ctx context.Context, notes string, article domain.Document,
) (domain.ImpactResult, error) {
	if err := s.check(notes); err != nil {
		return domain.ImpactResult{}, err
	}

	raw, err := s.chat(ctx, driven.PromptImpactAnalysis, 1024, true,
		notes, article.Title, domain.Truncate(article.Body, articleBudget))
	if err != nil {
		return domain.ImpactResult{}, fmt.Errorf("analyze impact: %w", err)
	}

	result := parseImpact(raw)
	if result.OK() {
		logger.Debug("Impact for %q: score=%d severity=%s", article.Title, result.Value.Score, result.Value.Severity)
	} else {
		logger.Warn("Impact response for %q unparseable: %s", article.Title, result.Failure.Reason)
	}
	return result, nil
}

// GenerateUpdate drafts an updated version of the article.
func (s *DraftingService) GenerateUpdate(
	ctx context.Context, notes string, article domain.Document,
) (*domain.Draft, error) {
	if err := s.check(notes); err != nil {
		return nil, err
	}

	body, err := s.chat(ctx, driven.PromptUpdateArticle, 2048, false,
		notes, article.Title, domain.Truncate(article.Body, articleBudget))
	if err != nil {
		return nil, fmt.Errorf("generate update: %w", err)
	}
	return &domain.Draft{Title: article.Title, Body: strings.TrimSpace(body)}, nil
}

// Compare runs impact analysis and update generation concurrently.
// Results are cached by notes and article content.
func (s *DraftingService) Compare(
	ctx context.Context, notes string, article domain.Document,
) (*domain.Comparison, error) {
	logger.Section("Compare")
	if err := s.check(notes); err != nil {
		return nil, err
	}

	key := comparisonKey(notes, article)
	if cached, ok := s.cachedComparison(ctx, key); ok {
		logger.Debug("Comparison for %s served from cache", article.ID)
		return cached, nil
	}

	var (
		impact domain.ImpactResult
		draft  *domain.Draft
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		impact, err = s.AnalyzeImpact(gctx, notes, article)
		return err
	})
	g.Go(func() error {
		var err error
		draft, err = s.GenerateUpdate(gctx, notes, article)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &domain.Comparison{
		ArticleID:       article.ID,
		ShouldUpdate:    impact.OK() && impact.Value.ShouldUpdate(),
		SuggestedUpdate: draft.Body,
		Impact:          impact,
	}
	s.storeComparison(ctx, key, result)
	return result, nil
}

// SuggestUpdate returns short advice on how to update the article.
func (s *DraftingService) SuggestUpdate(ctx context.Context, notes string, article domain.Document) (string, error) {
	if err := s.check(notes); err != nil {
		return "", err
	}
	out, err := s.chat(ctx, driven.PromptSuggestUpdate, 1024, false,
		notes, article.Title, domain.Truncate(article.Body, suggestionBudget))
	if err != nil {
		return "", fmt.Errorf("suggest update: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// DraftArticle writes a new article for an undocumented topic.
func (s *DraftingService) DraftArticle(ctx context.Context, notes string, topic domain.Topic) (*domain.Draft, error) {
	if err := s.check(notes); err != nil {
		return nil, err
	}
	if topic.Key() == "" {
		return nil, fmt.Errorf("%w: topic is required", domain.ErrInvalidInput)
	}

	body, err := s.chat(ctx, driven.PromptDraftArticle, 2048, false, string(topic), notes)
	if err != nil {
		return nil, fmt.Errorf("draft article: %w", err)
	}
	body = strings.TrimSpace(body)

	title := string(topic)
	if m := markdownTitle.FindStringSubmatch(body); m != nil {
		title = strings.TrimSpace(m[1])
	}
	return &domain.Draft{Title: title, Body: body, Topic: topic}, nil
}

// Translate translates documentation text into language. Languages the
// translator supports go to it first; the LLM handles the rest, and also
// takes over when the translator fails.
func (s *DraftingService) Translate(ctx context.Context, text, language string) (string, error) {
	language = strings.TrimSpace(language)
	if strings.TrimSpace(text) == "" || language == "" {
		return "", fmt.Errorf("%w: text and language are required", domain.ErrInvalidInput)
	}

	if s.translator != nil && s.translator.Supports(language) {
		out, err := s.translator.Translate(ctx, text, language)
		if err == nil {
			logger.Debug("Translated to %s with %s", language, s.translator.Name())
			return out, nil
		}
		if s.llm == nil {
			return "", fmt.Errorf("translate: %w", err)
		}
		logger.Warn("%s translation failed, using the LLM: %v", s.translator.Name(), err)
	}

	if s.llm == nil {
		return "", domain.ErrLLMUnavailable
	}
	out, err := s.chat(ctx, driven.PromptTranslate, 4096, false, language, text)
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// ExtractReleaseNotes categorises the release notes.
func (s *DraftingService) ExtractReleaseNotes(
	ctx context.Context, notes string,
) (domain.Parsed[domain.ReleaseNotesExtraction], error) {
	if err := s.check(notes); err != nil {
		return domain.Parsed[domain.ReleaseNotesExtraction]{}, err
	}
	raw, err := s.chat(ctx, driven.PromptExtractNotes, 1024, true, notes)
	if err != nil {
		return domain.Parsed[domain.ReleaseNotesExtraction]{}, fmt.Errorf("extract release notes: %w", err)
	}
	return parseExtraction(raw), nil
}

func (s *DraftingService) check(notes string) error {
	if s.llm == nil {
		return domain.ErrLLMUnavailable
	}
	if strings.TrimSpace(notes) == "" {
		return domain.ErrEmptyReleaseNotes
	}
	return nil
}

// chat sends the named prompt, formatted with args, after the system prompt.
func (s *DraftingService) chat(
	ctx context.Context, prompt string, maxTokens int, jsonMode bool, args ...any,
) (string, error) {
	messages := []driven.ChatMessage{
		{Role: "system", Content: loadPrompt(s.prompts, driven.PromptSystem)},
		{Role: "user", Content: fmt.Sprintf(loadPrompt(s.prompts, prompt), args...)},
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.llm.Chat(ctx, messages, driven.ChatOptions{
		MaxTokens:   maxTokens,
		Temperature: 0.3,
		JSON:        jsonMode,
	})
}

func comparisonKey(notes string, article domain.Document) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%s", notes, article.ID, article.Title, article.Body)
	return "compare:" + hex.EncodeToString(h.Sum(nil))
}

// comparisonRecord is the cached form of a Comparison.
type comparisonRecord struct {
	ArticleID       string
	ShouldUpdate    bool
	SuggestedUpdate string
	Impact          *domain.ImpactAnalysis
	Failure         *domain.ParseFailure
}

func (s *DraftingService) cachedComparison(ctx context.Context, key string) (*domain.Comparison, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	var rec comparisonRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, false
	}
	return &domain.Comparison{
		ArticleID:       rec.ArticleID,
		ShouldUpdate:    rec.ShouldUpdate,
		SuggestedUpdate: rec.SuggestedUpdate,
		Impact:          domain.ImpactResult{Value: rec.Impact, Failure: rec.Failure},
	}, true
}

func (s *DraftingService) storeComparison(ctx context.Context, key string, c *domain.Comparison) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(comparisonRecord{
		ArticleID:       c.ArticleID,
		ShouldUpdate:    c.ShouldUpdate,
		SuggestedUpdate: c.SuggestedUpdate,
		Impact:          c.Impact.Value,
		Failure:         c.Impact.Failure,
	})
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		logger.Warn("Caching comparison failed: %v", err)
	}
}
