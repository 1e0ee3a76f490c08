package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docgap/internal/core/domain"
	"github.com/custodia-labs/docgap/internal/core/ports/driven"
	"github.com/custodia-labs/docgap/internal/core/ports/driving"
	"github.com/custodia-labs/docgap/internal/core/topics"
	"github.com/custodia-labs/docgap/internal/logger"
)

// Ensure AnalysisService implements the interface.
var _ driving.AnalysisService = (*AnalysisService)(nil)

// AnalysisConfig configures the analysis service.
type AnalysisConfig struct {
	// TopN is the default number of matched articles.
	TopN int

	// GapCap is the default number of gaps.
	GapCap int

	// MaxCorpus caps the corpus loaded per request.
	MaxCorpus int

	// ResultTTL is how long cached results live.
	ResultTTL time.Duration

	// Thresholds classifies matched articles.
	Thresholds domain.ThresholdTable

	// LLMTimeout bounds each LLM call.
	LLMTimeout time.Duration
}

// AnalysisService runs the release-notes analysis pipeline:
// corpus, relevance ranking, topic extraction, gap detection.
type AnalysisService struct {
	articles   *ArticleService
	aggregator *RelevanceAggregator
	detector   *GapDetector
	extractor  *topics.Extractor
	cfg        AnalysisConfig

	llm     driven.LLMService
	prompts driven.PromptStore
	cache   driven.Cache
	now     func() time.Time
}

// NewAnalysisService creates a new analysis service.
func NewAnalysisService(
	articles *ArticleService,
	aggregator *RelevanceAggregator,
	detector *GapDetector,
	extractor *topics.Extractor,
	cfg AnalysisConfig,
) *AnalysisService {
	if cfg.TopN <= 0 {
		cfg.TopN = domain.DefaultTopN
	}
	if cfg.GapCap <= 0 {
		cfg.GapCap = domain.DefaultGapCap
	}
	if cfg.MaxCorpus <= 0 {
		cfg.MaxCorpus = domain.DefaultMaxCorpus
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = domain.DefaultResultTTL
	}
	if len(cfg.Thresholds) == 0 {
		cfg.Thresholds = domain.DefaultThresholds()
	}
	if cfg.LLMTimeout <= 0 {
		cfg.LLMTimeout = domain.DefaultLLMTimeout
	}
	return &AnalysisService{
		articles:   articles,
		aggregator: aggregator,
		detector:   detector,
		extractor:  extractor,
		cfg:        cfg,
		now:        time.Now,
	}
}

// SetLLMService enables LLM gap suggestions. The service is optional.
func (s *AnalysisService) SetLLMService(llm driven.LLMService) {
	s.llm = llm
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *AnalysisService) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// SetCache enables result caching. The cache is optional.
func (s *AnalysisService) SetCache(cache driven.Cache) {
	s.cache = cache
}

// Analyze matches release notes against the corpus and reports gaps.
func (s *AnalysisService) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	logger.Section("Analysis")
	defer logger.Timer("analysis")()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	corpus, err := s.articles.Corpus(ctx, s.cfg.MaxCorpus)
	if err != nil {
		return nil, err
	}

	key := s.resultKey(req, corpus)
	if cached, ok := s.cachedResult(ctx, key); ok {
		logger.Info("Analysis served from cache")
		return cached, nil
	}

	ranking, check, err := s.rank(ctx, req, corpus)
	if err != nil {
		return nil, err
	}

	extracted := s.extractor.Extract(req.ReleaseNotes)
	logger.Debug("Topics: %v", extracted)
	gaps := s.detector.detect(ctx, req.ReleaseNotes, extracted, ranking.Documents, corpus, s.gapCap(req), check)

	for i := range ranking.Documents {
		ranking.Documents[i].Suggestion = s.cfg.Thresholds.Classify(ranking.Documents[i].RelevanceScore, domain.Scale0To1)
	}

	result := &domain.AnalysisResult{
		ID:                    uuid.NewString(),
		Version:               orDefault(req.Version, "Unknown"),
		Date:                  orDefault(req.Date, "Unknown"),
		ReleaseNotes:          req.ReleaseNotes,
		Articles:              ranking.Documents,
		Gaps:                  gaps,
		Topics:                extracted,
		Summary:               domain.Summarize(req.Version, req.Date, len(ranking.Documents), len(gaps), len(extracted)),
		Method:                ranking.Method,
		TotalArticlesSearched: ranking.Considered,
		CreatedAt:             s.now(),
	}

	s.storeResult(ctx, key, result)
	logger.Info("%s", result.Summary)
	return result, nil
}

// DetectGaps returns only the uncovered topics of the release notes.
func (s *AnalysisService) DetectGaps(ctx context.Context, req domain.AnalysisRequest) ([]domain.Gap, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	corpus, err := s.articles.Corpus(ctx, s.cfg.MaxCorpus)
	if err != nil {
		return nil, err
	}
	ranking, check, err := s.rank(ctx, req, corpus)
	if err != nil {
		return nil, err
	}
	extracted := s.extractor.Extract(req.ReleaseNotes)
	return s.detector.detect(ctx, req.ReleaseNotes, extracted, ranking.Documents, corpus, s.gapCap(req), check), nil
}

// SuggestGaps asks the LLM for feature-level gap candidates and keeps
// the ones the corpus does not cover. When the response is not a JSON
// array, its lines are used as candidates.
func (s *AnalysisService) SuggestGaps(ctx context.Context, req domain.AnalysisRequest) ([]domain.Gap, error) {
	logger.Section("Gap Suggestions")
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}
	corpus, err := s.articles.Corpus(ctx, s.cfg.MaxCorpus)
	if err != nil {
		return nil, err
	}

	titles := make([]string, 0, len(corpus))
	for _, doc := range corpus {
		titles = append(titles, "- "+doc.Title)
	}
	existing := strings.Join(titles, "\n")
	if existing == "" {
		existing = "None yet"
	}

	tmpl := loadPrompt(s.prompts, driven.PromptSuggestGaps)
	llmCtx, cancel := context.WithTimeout(ctx, s.cfg.LLMTimeout)
	defer cancel()
	raw, err := s.llm.Generate(llmCtx, fmt.Sprintf(tmpl, req.ReleaseNotes, existing), driven.GenerateOptions{
		MaxTokens:   500,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("suggest gaps: %w", err)
	}

	var names []string
	parsed := parseTopicList(raw)
	if parsed.OK() {
		names = *parsed.Value
	} else {
		logger.Warn("Gap suggestions not JSON (%s), splitting lines", parsed.Failure.Reason)
		names = splitListLines(raw)
	}

	candidates := make([]domain.Topic, 0, len(names))
	for _, n := range names {
		candidates = append(candidates, domain.Topic(n))
	}
	limit := req.GapCap
	if limit <= 0 {
		limit = domain.MaxGapCap
	}
	return s.detector.DetectN(ctx, req.ReleaseNotes, candidates, nil, corpus, limit), nil
}

// Classify maps a score on the given scale to a suggestion label.
func (s *AnalysisService) Classify(score float64, scale domain.Scale) domain.Label {
	return s.cfg.Thresholds.Classify(score, scale)
}

// rank orders the corpus and returns what the gap check may reuse.
// A lexical-only request never reaches the embedding service.
func (s *AnalysisService) rank(
	ctx context.Context, req domain.AnalysisRequest, corpus []domain.Document,
) (domain.Ranking, coverageCheck, error) {
	topN := req.TopN
	if topN <= 0 {
		topN = s.cfg.TopN
	}
	if req.ForceLexical {
		return s.aggregator.Lexical(req.ReleaseNotes, corpus, topN), coverageCheck{titlesOnly: true}, nil
	}
	ranking, index, err := s.aggregator.rank(ctx, req.ReleaseNotes, corpus, topN)
	return ranking, coverageCheck{index: index}, err
}

func (s *AnalysisService) gapCap(req domain.AnalysisRequest) int {
	if req.GapCap > 0 {
		return req.GapCap
	}
	return s.cfg.GapCap
}

// resultKey hashes the request together with the corpus identity so a
// changed article invalidates cached results.
func (s *AnalysisService) resultKey(req domain.AnalysisRequest, corpus []domain.Document) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%d\x00%d\x00%t\x00", req.ReleaseNotes, req.Version, req.Date,
		req.TopN, req.GapCap, req.ForceLexical)
	fmt.Fprintf(h, "%s\x00%d\x00", s.articles.repo.Name(), len(corpus))
	for _, doc := range corpus {
		fmt.Fprintf(h, "%s\x00%d\x00", doc.ID, doc.UpdatedAt.Unix())
	}
	return "analysis:" + hex.EncodeToString(h.Sum(nil))
}

func (s *AnalysisService) cachedResult(ctx context.Context, key string) (*domain.AnalysisResult, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	var result domain.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, false
	}
	return &result, true
}

func (s *AnalysisService) storeResult(ctx context.Context, key string, result *domain.AnalysisResult) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cfg.ResultTTL); err != nil {
		logger.Warn("Caching analysis failed: %v", err)
	}
}

// loadPrompt returns the named template from store, or the built-in default.
func loadPrompt(store driven.PromptStore, name string) string {
	if store != nil {
		if p, err := store.Load(name); err == nil && p != "" {
			return p
		}
	}
	p, _ := driven.DefaultPrompt(name)
	return p
}
