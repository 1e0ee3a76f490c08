package domain

import (
	"math"
	"strings"
	"time"
)

// Document represents a help-center article.
// The analysis pipeline never mutates a Document; it only reads it
// and attaches a derived score.
type Document struct {
	// ID is the unique identifier within a corpus snapshot.
	ID string

	// Title is the human-readable article title.
	Title string

	// Body is the article text. Adapters convert HTML bodies to plain text.
	Body string

	// URL is the public location of the article, if known.
	URL string

	// Category is an optional section or category label.
	Category string

	// UpdatedAt is when the article was last modified. Zero if unknown.
	UpdatedAt time.Time
}

// EmbeddingText returns the text used to embed the document: the title
// and body joined by a blank line, truncated to limit runes.
// A limit <= 0 disables truncation.
func (d Document) EmbeddingText(limit int) string {
	text := d.Title
	if d.Body != "" {
		text += "\n\n" + d.Body
	}
	return Truncate(text, limit)
}

// Truncate returns the first limit runes of s.
// A limit <= 0 returns s unchanged.
func Truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// Scale identifies the range a relevance number is expressed in.
// The pipeline works on Scale0To1 only; other scales exist for
// input from callers and for presentation.
type Scale string

// Known relevance scales.
const (
	// Scale0To1 is the canonical cosine-similarity scale.
	Scale0To1 Scale = "0-1"

	// Scale0To10 is the ordinal scale used by impact analysis.
	Scale0To10 Scale = "0-10"

	// Scale0To100 is the percentage scale used for display.
	Scale0To100 Scale = "0-100"
)

// IsValid returns true if the scale is recognised.
func (s Scale) IsValid() bool {
	switch s {
	case Scale0To1, Scale0To10, Scale0To100:
		return true
	default:
		return false
	}
}

// max returns the upper bound of the scale.
func (s Scale) max() float64 {
	switch s {
	case Scale0To10:
		return 10
	case Scale0To100:
		return 100
	default:
		return 1
	}
}

// Normalise converts a score on this scale to the canonical 0-1 scale.
// Results are clamped to [0, 1].
func (s Scale) Normalise(score float64) float64 {
	return clamp01(score / s.max())
}

// Present converts a canonical 0-1 score to this scale, rounded to
// the nearest integer for the 0-10 and 0-100 scales.
func (s Scale) Present(score float64) float64 {
	score = clamp01(score)
	if s == Scale0To1 || s == "" {
		return score
	}
	return math.Round(score * s.max())
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// ScoredDocument is a Document with a relevance score on the canonical
// 0-1 scale. RelevanceScore is never negative.
type ScoredDocument struct {
	Document

	// RelevanceScore is the similarity to the query, 0-1.
	RelevanceScore float64

	// Suggestion is the classifier label derived from RelevanceScore.
	// Empty until the analysis service classifies the document.
	Suggestion Label
}

// NewScoredDocument creates a ScoredDocument, clamping score to [0, 1].
func NewScoredDocument(doc Document, score float64) ScoredDocument {
	return ScoredDocument{Document: doc, RelevanceScore: clamp01(score)}
}

// ArticlePage is one page of a paginated corpus listing.
type ArticlePage struct {
	// Articles on this page.
	Articles []Document

	// Total is the number of articles across all pages.
	Total int

	// Pages is the number of pages at the requested page size.
	Pages int

	// Page is the 1-based page number.
	Page int
}

// HasMore reports whether pages follow this one.
func (p ArticlePage) HasMore() bool {
	return p.Page < p.Pages
}

// TitleKey returns the case-folded, trimmed title used for coverage checks.
func (d Document) TitleKey() string {
	return strings.ToLower(strings.TrimSpace(d.Title))
}
