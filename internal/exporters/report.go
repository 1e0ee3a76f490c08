// Package exporters serialises analysis results and drafted articles.
//
// Relevance scores are canonical 0-1 values inside the core. Every
// exporter presents them as rounded percentages, so a 0.823 match is
// written as 82.
package exporters

import (
	"encoding/xml"
	"time"

	"github.com/custodia-labs/docgap/internal/core/domain"
	"github.com/custodia-labs/docgap/internal/core/ports/driven"
)

const unknown = "Unknown"

// report is the presentation view of an AnalysisResult shared by the
// structured formats.
type report struct {
	XMLName               xml.Name        `json:"-" xml:"analysis"`
	ID                    string          `json:"id" xml:"id,attr"`
	Version               string          `json:"version" xml:"version"`
	Date                  string          `json:"date" xml:"date"`
	Summary               string          `json:"summary" xml:"summary"`
	Method                string          `json:"method" xml:"method"`
	Coverage              string          `json:"coverage" xml:"coverage"`
	TotalArticlesSearched int             `json:"totalArticlesSearched" xml:"totalArticlesSearched"`
	Timestamp             string          `json:"timestamp" xml:"timestamp"`
	Articles              []reportArticle `json:"matchedArticles" xml:"articles>article"`
	Gaps                  []reportGap     `json:"gaps" xml:"gaps>gap"`
	Topics                []string        `json:"topics" xml:"topics>topic"`
}

type reportArticle struct {
	ID         string `json:"id" xml:"id"`
	Title      string `json:"title" xml:"title"`
	URL        string `json:"url,omitempty" xml:"url,omitempty"`
	Category   string `json:"category,omitempty" xml:"category,omitempty"`
	Score      int    `json:"relevanceScore" xml:"score"`
	Suggestion string `json:"suggestion" xml:"suggestion"`
}

type reportGap struct {
	Topic    string `json:"topic" xml:"topic"`
	Mentions int    `json:"mentions" xml:"mentions"`
	Reason   string `json:"reason" xml:"reason"`
}

// Percent presents a 0-1 score as a rounded 0-100 integer.
func Percent(score float64) int {
	return int(domain.Scale0To100.Present(score))
}

func newReport(r *domain.AnalysisResult) report {
	out := report{
		ID:                    r.ID,
		Version:               orUnknown(r.Version),
		Date:                  orUnknown(r.Date),
		Summary:               r.Summary,
		Method:                string(r.Method),
		Coverage:              string(domain.CoverageFor(len(r.Articles))),
		TotalArticlesSearched: r.TotalArticlesSearched,
		Articles:              make([]reportArticle, 0, len(r.Articles)),
		Gaps:                  make([]reportGap, 0, len(r.Gaps)),
		Topics:                make([]string, 0, len(r.Topics)),
	}
	if !r.CreatedAt.IsZero() {
		out.Timestamp = r.CreatedAt.UTC().Format(time.RFC3339)
	}

	for _, a := range r.Articles {
		out.Articles = append(out.Articles, reportArticle{
			ID:         a.ID,
			Title:      a.Title,
			URL:        a.URL,
			Category:   a.Category,
			Score:      Percent(a.RelevanceScore),
			Suggestion: string(a.Suggestion),
		})
	}
	for _, g := range r.Gaps {
		out.Gaps = append(out.Gaps, reportGap{Topic: g.Topic.String(), Mentions: g.Mentions, Reason: gapReason(g)})
	}
	for _, t := range r.Topics {
		out.Topics = append(out.Topics, t.String())
	}
	return out
}

func gapReason(g domain.Gap) string {
	if g.Reason != "" {
		return g.Reason
	}
	return "Mentioned in release notes"
}

func orUnknown(s string) string {
	if s == "" {
		return unknown
	}
	return s
}

// Default returns one exporter per supported format.
func Default() []driven.Exporter {
	return []driven.Exporter{
		NewJSONExporter(),
		NewMarkdownExporter(),
		NewXMLExporter(),
		NewHTMLExporter(),
		NewXLSXExporter(),
		NewPaligoExporter(),
	}
}
