package domain

import (
	"fmt"
	"strings"
	"time"
)

// Topic is a candidate feature or concept extracted from release notes.
// Topics produced by the extractor are already lower-cased; Key is used
// for deduplication and coverage comparison.
type Topic string

// Key returns the case-folded topic used for comparisons.
func (t Topic) Key() string {
	return strings.ToLower(strings.TrimSpace(string(t)))
}

// String returns the topic as displayed.
func (t Topic) String() string {
	return string(t)
}

// Gap is a topic mentioned in the release notes that has no adequate
// existing documentation. A Gap's topic never matches the title of a
// document in the matched set of the same analysis.
type Gap struct {
	// Topic is the uncovered topic.
	Topic Topic

	// Mentions is the number of case-insensitive whole-word occurrences
	// of the topic in the release notes.
	Mentions int

	// Reason explains why the topic was flagged. Optional.
	Reason string
}

// ScoringMethod records which strategy produced a ranking.
type ScoringMethod string

// Scoring methods.
const (
	// ScoringVector ranks by cosine similarity of embeddings.
	ScoringVector ScoringMethod = "vector"

	// ScoringLexical ranks by token containment. Used when embeddings are unavailable.
	ScoringLexical ScoringMethod = "lexical"
)

// Description returns a human-readable description of the method.
func (m ScoringMethod) Description() string {
	switch m {
	case ScoringVector:
		return "Semantic (embedding similarity)"
	case ScoringLexical:
		return "Lexical fallback (token overlap)"
	default:
		return "Unknown"
	}
}

// Ranking is the output of the relevance aggregator.
type Ranking struct {
	// Documents are ordered by RelevanceScore descending.
	Documents []ScoredDocument

	// Method is the strategy that produced the scores.
	Method ScoringMethod

	// Considered is the number of corpus documents that were scored.
	Considered int

	// FailedBatches counts embedding batches skipped after an error.
	FailedBatches int
}

// Fallback reports whether the ranking was produced by lexical matching.
// Callers use it to lower confidence in the presented scores.
func (r Ranking) Fallback() bool {
	return r.Method == ScoringLexical
}

// Top returns the highest score in the ranking, or 0 if empty.
func (r Ranking) Top() float64 {
	if len(r.Documents) == 0 {
		return 0
	}
	return r.Documents[0].RelevanceScore
}

// AnalysisRequest is the input to one analysis run.
type AnalysisRequest struct {
	// ReleaseNotes is the free-text release notes (required).
	ReleaseNotes string

	// Version is a display label for the release. Defaults to "Unknown".
	Version string

	// Date is a display label for the release date. Defaults to "Unknown".
	Date string

	// TopN overrides the number of matched articles returned.
	TopN int

	// GapCap overrides the maximum number of gaps returned.
	GapCap int

	// ForceLexical skips the embedding path.
	ForceLexical bool
}

// Validate checks the request before any external call is made.
func (r AnalysisRequest) Validate() error {
	if strings.TrimSpace(r.ReleaseNotes) == "" {
		return ErrEmptyReleaseNotes
	}
	if r.TopN < 0 || r.GapCap < 0 {
		return fmt.Errorf("%w: limits must not be negative", ErrInvalidInput)
	}
	return nil
}

// AnalysisResult is the aggregate output of one pipeline run.
type AnalysisResult struct {
	// ID uniquely identifies the run.
	ID string

	// Version and Date echo the request labels.
	Version string
	Date    string

	// ReleaseNotes is the analysed text.
	ReleaseNotes string

	// Articles are the matched documents, descending by relevance.
	Articles []ScoredDocument

	// Gaps are uncovered topics, descending by mentions.
	Gaps []Gap

	// Topics are all topics extracted from the release notes.
	Topics []Topic

	// Summary is a human-readable description of the counts.
	Summary string

	// Method records whether vector or lexical scoring was used.
	Method ScoringMethod

	// TotalArticlesSearched is the size of the corpus considered.
	TotalArticlesSearched int

	// CreatedAt is when the analysis completed.
	CreatedAt time.Time
}

// CoverageLevel describes how well the corpus covers the release.
type CoverageLevel string

// Coverage levels.
const (
	CoverageGood     CoverageLevel = "Good"
	CoverageModerate CoverageLevel = "Moderate"
	CoverageLow      CoverageLevel = "Low"
)

// CoverageFor derives the coverage level from the number of matched articles.
func CoverageFor(matched int) CoverageLevel {
	switch {
	case matched >= 3:
		return CoverageGood
	case matched >= 1:
		return CoverageModerate
	default:
		return CoverageLow
	}
}

// Summarize builds the summary line of an analysis.
func Summarize(version, date string, matched, gaps, topics int) string {
	if version == "" {
		version = "Unknown"
	}
	if date == "" {
		date = "Unknown"
	}
	return fmt.Sprintf("Version %s (%s): %d articles matched, %d gaps identified, %d key topics. Coverage: %s",
		version, date, matched, gaps, topics, CoverageFor(matched))
}
