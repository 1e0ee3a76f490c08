package domain

import "strings"

// Severity grades the impact of a release on an article.
type Severity string

// Severity levels.
const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// IsValid returns true if the severity is recognised.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	default:
		return false
	}
}

// ParseSeverity parses a severity case-insensitively.
func ParseSeverity(s string) (Severity, bool) {
	sev := Severity(strings.ToUpper(strings.TrimSpace(s)))
	return sev, sev.IsValid()
}

// ImpactAnalysis is the structured assessment of how release notes
// affect one article, as produced by a generative provider.
type ImpactAnalysis struct {
	// Score is the impact on the 1-10 ordinal scale.
	Score int

	Severity       Severity
	Category       string
	AffectedRoles  []string
	Summary        string
	ActionRequired string
	RiskAssessment string
}

// ShouldUpdate reports whether the article needs an update.
func (a ImpactAnalysis) ShouldUpdate() bool {
	return a.Score >= 5
}

// Suggestion classifies the impact score with the given table.
func (a ImpactAnalysis) Suggestion(table ThresholdTable) Label {
	return table.Classify(float64(a.Score), Scale0To10)
}

// ParseFailure carries the raw provider text that could not be parsed.
type ParseFailure struct {
	// Raw is the unparsed response text.
	Raw string

	// Reason describes what was wrong with the response.
	Reason string
}

// Error implements error.
func (f *ParseFailure) Error() string {
	return "unparseable provider response: " + f.Reason
}

// Parsed is a provider response that is either a validated value or a
// parse failure carrying the raw text. Exactly one field is set.
type Parsed[T any] struct {
	Value   *T
	Failure *ParseFailure
}

// OK reports whether the response parsed.
func (p Parsed[T]) OK() bool {
	return p.Value != nil && p.Failure == nil
}

// ParsedValue wraps a successfully parsed value.
func ParsedValue[T any](v T) Parsed[T] {
	return Parsed[T]{Value: &v}
}

// ParseFailed wraps a failed parse.
func ParseFailed[T any](raw, reason string) Parsed[T] {
	return Parsed[T]{Failure: &ParseFailure{Raw: raw, Reason: reason}}
}

// ReleaseNotesExtraction categorises the content of release notes.
type ReleaseNotesExtraction struct {
	Features        []string
	BugFixes        []string
	Deprecations    []string
	BreakingChanges []string
}

// Comparison is the result of comparing release notes with one article.
type Comparison struct {
	// ArticleID is the compared article.
	ArticleID string

	// ShouldUpdate is true when the parsed impact score is 5 or more.
	ShouldUpdate bool

	// SuggestedUpdate is the drafted updated article.
	SuggestedUpdate string

	// Impact is the impact assessment, or its parse failure.
	Impact Parsed[ImpactAnalysis]
}

// Draft is a generated article body.
type Draft struct {
	// Title is the article title.
	Title string

	// Body is the generated content in Markdown.
	Body string

	// Topic is the gap the draft addresses, if any.
	Topic Topic

	// Language is the target language, empty for the source language.
	Language string
}

// ImpactResult is the tagged outcome of an impact assessment.
type ImpactResult = Parsed[ImpactAnalysis]
