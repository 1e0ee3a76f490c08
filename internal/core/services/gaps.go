package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/docgap/internal/core/domain"
	"github.com/custodia-labs/docgap/internal/core/topics"
	"github.com/custodia-labs/docgap/internal/logger"
)

// Gap reasons.
const (
	reasonNoTitle        = "no article title covers this topic"
	reasonBelowThreshold = "no article is semantically similar enough (best %.2f < %.2f)"
	reasonCheckFailed    = "semantic coverage check failed; flagged for review"
)

// GapConfig configures the gap detector.
type GapConfig struct {
	// Cap is the default maximum number of gaps returned.
	Cap int

	// CoverageThreshold is the similarity at or above which a topic
	// counts as covered by an existing article.
	CoverageThreshold float64

	// Semantic enables the embedding coverage check.
	Semantic bool

	// Concurrency bounds parallel semantic checks.
	Concurrency int

	// CallTimeout bounds each semantic check.
	CallTimeout time.Duration
}

func (c GapConfig) withDefaults() GapConfig {
	if c.Cap <= 0 {
		c.Cap = domain.DefaultGapCap
	}
	if c.Cap > domain.MaxGapCap {
		c.Cap = domain.MaxGapCap
	}
	if c.CoverageThreshold <= 0 {
		c.CoverageThreshold = domain.DefaultCoverageThreshold
	}
	if c.Concurrency <= 0 {
		c.Concurrency = domain.DefaultConcurrency
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = domain.DefaultCallTimeout
	}
	return c
}

// GapDetector finds release-note topics that no article covers.
type GapDetector struct {
	aggregator *RelevanceAggregator
	cfg        GapConfig
}

// NewGapDetector creates a gap detector.
// The aggregator is optional (can be nil); without it, or without an
// embedding service behind it, only title matching is used.
func NewGapDetector(aggregator *RelevanceAggregator, cfg GapConfig) *GapDetector {
	return &GapDetector{
		aggregator: aggregator,
		cfg:        cfg.withDefaults(),
	}
}

// Detect returns the uncovered topics using the configured cap.
func (d *GapDetector) Detect(
	ctx context.Context, source string, candidates []domain.Topic,
	matched []domain.ScoredDocument, corpus []domain.Document,
) []domain.Gap {
	return d.DetectN(ctx, source, candidates, matched, corpus, d.cfg.Cap)
}

// DetectN returns at most limit uncovered topics, ordered by mentions
// in source descending. A limit <= 0 uses the configured cap; limits
// above domain.MaxGapCap are clamped.
//
// A topic is covered when its case-folded form is a substring of a
// matched or corpus title, or when the semantic check finds an article
// at or above the coverage threshold. A failed semantic check leaves
// the topic uncovered.
func (d *GapDetector) DetectN(
	ctx context.Context, source string, candidates []domain.Topic,
	matched []domain.ScoredDocument, corpus []domain.Document, limit int,
) []domain.Gap {
	return d.detect(ctx, source, candidates, matched, corpus, limit, coverageCheck{})
}

// coverageCheck carries what a request already knows about semantic
// coverage before gap detection runs.
type coverageCheck struct {
	// index holds the corpus vectors embedded while ranking. When nil the
	// detector embeds the corpus itself.
	index *embeddedCorpus

	// titlesOnly skips the semantic check.
	titlesOnly bool
}

func (d *GapDetector) detect(
	ctx context.Context, source string, candidates []domain.Topic,
	matched []domain.ScoredDocument, corpus []domain.Document, limit int, check coverageCheck,
) []domain.Gap {
	logger.Section("Gap Detection")
	switch {
	case limit <= 0:
		limit = d.cfg.Cap
	case limit > domain.MaxGapCap:
		limit = domain.MaxGapCap
	}

	titles := make([]string, 0, len(matched)+len(corpus))
	for _, doc := range matched {
		titles = append(titles, doc.TitleKey())
	}
	for _, doc := range corpus {
		titles = append(titles, doc.TitleKey())
	}

	var uncovered []domain.Topic
	seen := make(map[string]struct{}, len(candidates))
	for _, topic := range candidates {
		key := topic.Key()
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if titleCovers(titles, key) {
			logger.Debug("Topic %q covered by title", key)
			continue
		}
		uncovered = append(uncovered, topic)
	}

	reasons := d.semanticReasons(ctx, uncovered, corpus, check)

	gaps := make([]domain.Gap, 0, len(uncovered))
	for i, topic := range uncovered {
		if reasons[i] == "" {
			continue
		}
		gaps = append(gaps, domain.Gap{
			Topic:    topic,
			Mentions: topics.CountMentions(source, topic),
			Reason:   reasons[i],
		})
	}

	sort.SliceStable(gaps, func(i, j int) bool {
		return gaps[i].Mentions > gaps[j].Mentions
	})
	gaps = truncate(gaps, limit)
	logger.Info("Gaps: %d of %d topics uncovered (showing %d)", len(uncovered), len(candidates), len(gaps))
	return gaps
}

// semanticReasons returns, per topic, the reason it is a gap, or an
// empty string if the semantic check found it covered. Each topic
// writes only its own slot.
func (d *GapDetector) semanticReasons(
	ctx context.Context, uncovered []domain.Topic, corpus []domain.Document, check coverageCheck,
) []string {
	reasons := make([]string, len(uncovered))
	for i := range reasons {
		reasons[i] = reasonNoTitle
	}
	if len(uncovered) == 0 || check.titlesOnly || !d.cfg.Semantic || d.aggregator == nil || !d.aggregator.HasEmbeddings() {
		return reasons
	}
	if len(corpus) == 0 {
		return reasons
	}

	index := check.index
	var err error
	if index == nil {
		index, err = d.aggregator.embedCorpus(ctx, d.aggregator.capCorpus(corpus))
	} else {
		err = index.err
	}
	if err != nil {
		logger.Warn("Semantic coverage unavailable, keeping all %d topics: %v", len(uncovered), err)
		for i := range reasons {
			reasons[i] = reasonCheckFailed
		}
		return reasons
	}

	var g errgroup.Group
	g.SetLimit(d.cfg.Concurrency)
	for i, topic := range uncovered {
		g.Go(func() error {
			checkCtx, cancel := context.WithTimeout(ctx, d.cfg.CallTimeout)
			defer cancel()

			best, err := index.topScore(checkCtx, string(topic))
			switch {
			case err != nil:
				logger.Warn("Semantic check for %q failed: %v", topic, err)
				reasons[i] = reasonCheckFailed
			case best >= d.cfg.CoverageThreshold:
				logger.Debug("Topic %q covered semantically (%.2f)", topic, best)
				reasons[i] = ""
			default:
				reasons[i] = fmt.Sprintf(reasonBelowThreshold, best, d.cfg.CoverageThreshold)
			}
			return nil
		})
	}
	_ = g.Wait()
	return reasons
}

func titleCovers(titles []string, key string) bool {
	for _, title := range titles {
		if strings.Contains(title, key) {
			return true
		}
	}
	return false
}
