package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/docgap/internal/core/domain"
	"github.com/custodia-labs/docgap/internal/core/ports/driven"
	"github.com/custodia-labs/docgap/internal/core/similarity"
	"github.com/custodia-labs/docgap/internal/logger"
)

// RelevanceConfig configures the relevance aggregator.
// Zero values select the defaults from the domain package.
type RelevanceConfig struct {
	// MaxCorpus caps the number of documents scored per query.
	MaxCorpus int

	// BatchSize is the number of documents per embedding call.
	BatchSize int

	// Concurrency bounds the number of batches in flight.
	Concurrency int

	// CharBudget truncates the query and each document before embedding.
	CharBudget int

	// CallTimeout bounds each embedding call.
	CallTimeout time.Duration
}

func (c RelevanceConfig) withDefaults() RelevanceConfig {
	if c.MaxCorpus <= 0 {
		c.MaxCorpus = domain.DefaultMaxCorpus
	}
	if c.BatchSize <= 0 {
		c.BatchSize = domain.DefaultBatchSize
	}
	if c.Concurrency <= 0 {
		c.Concurrency = domain.DefaultConcurrency
	}
	if c.CharBudget <= 0 {
		c.CharBudget = domain.DefaultCharBudget
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = domain.DefaultCallTimeout
	}
	return c
}

// RelevanceAggregator ranks corpus documents against a query.
// It prefers embedding similarity and degrades to lexical matching when
// no embedding service is configured or the embedding calls fail.
type RelevanceAggregator struct {
	embedder driven.EmbeddingService
	cfg      RelevanceConfig
}

// NewRelevanceAggregator creates an aggregator.
// The embedder parameter is optional (can be nil).
func NewRelevanceAggregator(embedder driven.EmbeddingService, cfg RelevanceConfig) *RelevanceAggregator {
	return &RelevanceAggregator{
		embedder: embedder,
		cfg:      cfg.withDefaults(),
	}
}

// HasEmbeddings reports whether the vector path is available.
func (a *RelevanceAggregator) HasEmbeddings() bool {
	return a.embedder != nil
}

// FindRelevant returns the topN documents of corpus most relevant to query.
// An empty corpus yields an empty ranking. Embedding failures never fail
// the call; they switch the ranking to lexical scoring. Only cancellation
// of ctx is returned as an error.
func (a *RelevanceAggregator) FindRelevant(
	ctx context.Context, query string, corpus []domain.Document, topN int,
) (domain.Ranking, error) {
	ranking, _, err := a.rank(ctx, query, corpus, topN)
	return ranking, err
}

// rank is FindRelevant that also returns the corpus vectors computed on the
// way, so a gap check in the same request can reuse them. The index is nil
// when nothing was sent to the embedding service; otherwise index.err
// records why the vector path was abandoned.
func (a *RelevanceAggregator) rank(
	ctx context.Context, query string, corpus []domain.Document, topN int,
) (domain.Ranking, *embeddedCorpus, error) {
	logger.Section("Relevance Ranking")
	defer logger.Timer("relevance ranking")()

	if topN <= 0 {
		topN = domain.DefaultTopN
	}
	docs := a.capCorpus(corpus)
	if len(docs) == 0 {
		logger.Debug("Empty corpus, nothing to rank")
		return domain.Ranking{Method: a.preferredMethod(), Documents: []domain.ScoredDocument{}}, nil, nil
	}

	if a.embedder == nil {
		logger.Info("No embedding service, using lexical scoring")
		return a.Lexical(query, docs, topN), nil, nil
	}

	// Query first; a failed query skips the corpus batches.
	queryVec, err := a.embedQuery(ctx, query)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.Ranking{}, nil, fmt.Errorf("rank documents: %w", ctxErr)
		}
		logger.Warn("Embedding query failed, falling back to lexical: %v", err)
		failed := &embeddedCorpus{agg: a, docs: docs, err: fmt.Errorf("embed query: %w", err)}
		return a.Lexical(query, docs, topN), failed, nil
	}

	index, err := a.embedCorpus(ctx, docs)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.Ranking{}, nil, fmt.Errorf("rank documents: %w", ctxErr)
		}
		logger.Warn("Embedding corpus failed, falling back to lexical: %v", err)
		ranking := a.Lexical(query, docs, topN)
		ranking.FailedBatches = index.failedBatches
		return ranking, index, nil
	}

	scored := index.rank(queryVec)
	logger.Info("Vector ranking: %d scored, %d batches skipped", len(scored), index.failedBatches)
	return domain.Ranking{
		Documents:     truncate(scored, topN),
		Method:        domain.ScoringVector,
		Considered:    len(docs),
		FailedBatches: index.failedBatches,
	}, index, nil
}

// Lexical ranks corpus by token overlap with query without any external call.
func (a *RelevanceAggregator) Lexical(query string, corpus []domain.Document, topN int) domain.Ranking {
	if topN <= 0 {
		topN = domain.DefaultTopN
	}
	docs := a.capCorpus(corpus)

	scored := make([]domain.ScoredDocument, 0, len(docs))
	for _, doc := range docs {
		score := similarity.LexicalScore(query, doc.Title+" "+doc.Body)
		if score <= 0 {
			continue
		}
		scored = append(scored, domain.NewScoredDocument(doc, score))
	}
	sortByScore(scored)

	logger.Debug("Lexical ranking: %d of %d documents share tokens with the query", len(scored), len(docs))
	return domain.Ranking{
		Documents:  truncate(scored, topN),
		Method:     domain.ScoringLexical,
		Considered: len(docs),
	}
}

func (a *RelevanceAggregator) preferredMethod() domain.ScoringMethod {
	if a.embedder == nil {
		return domain.ScoringLexical
	}
	return domain.ScoringVector
}

func (a *RelevanceAggregator) capCorpus(corpus []domain.Document) []domain.Document {
	if len(corpus) > a.cfg.MaxCorpus {
		logger.Debug("Corpus capped: %d -> %d documents", len(corpus), a.cfg.MaxCorpus)
		return corpus[:a.cfg.MaxCorpus]
	}
	return corpus
}

// embeddedCorpus holds corpus vectors computed for one request.
// A nil vector marks a document whose batch failed. A non-nil err means
// no usable vectors exist.
type embeddedCorpus struct {
	agg           *RelevanceAggregator
	docs          []domain.Document
	vectors       [][]float32
	failedBatches int
	err           error
}

// embedCorpus embeds docs in batches with bounded parallelism.
// Each batch writes only its own slots of the vectors slice, so no
// locking is needed; the result is independent of completion order.
// It fails only if every batch fails.
func (a *RelevanceAggregator) embedCorpus(ctx context.Context, docs []domain.Document) (*embeddedCorpus, error) {
	index := &embeddedCorpus{
		agg:     a,
		docs:    docs,
		vectors: make([][]float32, len(docs)),
	}
	if a.embedder == nil {
		index.err = domain.ErrEmbeddingUnavailable
		return index, index.err
	}

	batches := (len(docs) + a.cfg.BatchSize - 1) / a.cfg.BatchSize
	failed := make([]bool, batches)
	logger.Debug("Embedding %d documents in %d batches (concurrency %d)", len(docs), batches, a.cfg.Concurrency)

	var g errgroup.Group
	g.SetLimit(a.cfg.Concurrency)
	for b := 0; b < batches; b++ {
		start := b * a.cfg.BatchSize
		end := min(start+a.cfg.BatchSize, len(docs))

		g.Go(func() error {
			texts := make([]string, 0, end-start)
			for _, doc := range docs[start:end] {
				texts = append(texts, doc.EmbeddingText(a.cfg.CharBudget))
			}

			callCtx, cancel := context.WithTimeout(ctx, a.cfg.CallTimeout)
			defer cancel()

			vectors, err := a.embedder.EmbedBatch(callCtx, texts)
			if err == nil && len(vectors) != len(texts) {
				err = fmt.Errorf("got %d vectors for %d texts", len(vectors), len(texts))
			}
			if err != nil {
				logger.Warn("Embedding batch %d/%d skipped: %v", b+1, batches, err)
				failed[b] = true
				return nil
			}
			copy(index.vectors[start:end], vectors)
			return nil
		})
	}
	_ = g.Wait()

	for _, f := range failed {
		if f {
			index.failedBatches++
		}
	}
	if index.failedBatches == batches {
		index.err = fmt.Errorf("all %d embedding batches failed", batches)
		return index, index.err
	}
	return index, nil
}

// embedQuery embeds one query under the per-call timeout.
func (a *RelevanceAggregator) embedQuery(ctx context.Context, query string) ([]float32, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.cfg.CallTimeout)
	defer cancel()
	return a.embedder.Embed(callCtx, domain.Truncate(query, a.cfg.CharBudget))
}

// rank scores every successfully embedded document against queryVec.
// Documents scoring zero or below are dropped.
func (c *embeddedCorpus) rank(queryVec []float32) []domain.ScoredDocument {
	candidates := make([]similarity.Candidate, 0, len(c.docs))
	for i, vec := range c.vectors {
		if vec == nil {
			continue
		}
		candidates = append(candidates, similarity.Candidate{ID: strconv.Itoa(i), Vector: vec})
	}

	ranked := similarity.Rank(queryVec, candidates)
	scored := make([]domain.ScoredDocument, 0, len(ranked))
	for _, r := range ranked {
		if r.Score <= 0 {
			continue
		}
		i, _ := strconv.Atoi(r.ID)
		scored = append(scored, domain.NewScoredDocument(c.docs[i], r.Score))
	}
	return scored
}

// topScore returns the best similarity between query and the corpus.
func (c *embeddedCorpus) topScore(ctx context.Context, query string) (float64, error) {
	if c.err != nil {
		return 0, c.err
	}
	queryVec, err := c.agg.embedQuery(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("embed query: %w", err)
	}
	scored := c.rank(queryVec)
	if len(scored) == 0 {
		return 0, nil
	}
	return scored[0].RelevanceScore, nil
}

// sortByScore orders documents by score descending, keeping input order on ties.
func sortByScore(docs []domain.ScoredDocument) {
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].RelevanceScore > docs[j].RelevanceScore
	})
}

func truncate[T any](items []T, n int) []T {
	if n >= 0 && len(items) > n {
		return items[:n]
	}
	return items
}
