package services

import (
	"encoding/json"
	"math"
	"regexp"
	"strings"

	"github.com/custodia-labs/docgap/internal/core/domain"
)

var (
	jsonObject = regexp.MustCompile(`(?s)\{.*\}`)
	jsonArray  = regexp.MustCompile(`(?s)\[.*\]`)
	listMarker = regexp.MustCompile(`^\s*(?:[-*•]+|\d+[.)])\s*`)
)

// impactPayload is the JSON shape requested by the impact prompt.
type impactPayload struct {
	Score          *float64 `json:"score"`
	Severity       string   `json:"severity"`
	Category       string   `json:"category"`
	AffectedRoles  []string `json:"affectedRoles"`
	Summary        string   `json:"summary"`
	ActionRequired string   `json:"actionRequired"`
	RiskAssessment string   `json:"riskAssessment"`
}

// parseImpact validates an impact-analysis response.
// The score is required and must be within 1-10. A missing severity is
// derived from the score; an unknown one is a parse failure.
func parseImpact(raw string) domain.ImpactResult {
	body := jsonObject.FindString(raw)
	if body == "" {
		return domain.ParseFailed[domain.ImpactAnalysis](raw, "no JSON object in response")
	}

	var p impactPayload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return domain.ParseFailed[domain.ImpactAnalysis](raw, "invalid JSON: "+err.Error())
	}
	if p.Score == nil {
		return domain.ParseFailed[domain.ImpactAnalysis](raw, "missing score")
	}
	score := int(math.Round(*p.Score))
	if score < 1 || score > 10 {
		return domain.ParseFailed[domain.ImpactAnalysis](raw, "score outside 1-10")
	}

	severity := severityFor(score)
	if p.Severity != "" {
		sev, ok := domain.ParseSeverity(p.Severity)
		if !ok {
			return domain.ParseFailed[domain.ImpactAnalysis](raw, "unknown severity "+p.Severity)
		}
		severity = sev
	}

	return domain.ParsedValue(domain.ImpactAnalysis{
		Score:          score,
		Severity:       severity,
		Category:       orDefault(p.Category, "general"),
		AffectedRoles:  nonNil(p.AffectedRoles),
		Summary:        orDefault(p.Summary, "No summary available"),
		ActionRequired: orDefault(p.ActionRequired, "PLANNED_UPDATE"),
		RiskAssessment: orDefault(p.RiskAssessment, "Unknown"),
	})
}

func severityFor(score int) domain.Severity {
	switch {
	case score >= 9:
		return domain.SeverityCritical
	case score >= 7:
		return domain.SeverityHigh
	case score >= 4:
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}

// extractionPayload is the JSON shape requested by the extraction prompt.
type extractionPayload struct {
	Features        []string `json:"features"`
	BugFixes        []string `json:"bugFixes"`
	Deprecations    []string `json:"deprecations"`
	BreakingChanges []string `json:"breakingChanges"`
}

// parseExtraction validates a release-notes extraction response.
func parseExtraction(raw string) domain.Parsed[domain.ReleaseNotesExtraction] {
	body := jsonObject.FindString(raw)
	if body == "" {
		return domain.ParseFailed[domain.ReleaseNotesExtraction](raw, "no JSON object in response")
	}

	var p extractionPayload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return domain.ParseFailed[domain.ReleaseNotesExtraction](raw, "invalid JSON: "+err.Error())
	}
	return domain.ParsedValue(domain.ReleaseNotesExtraction{
		Features:        nonNil(p.Features),
		BugFixes:        nonNil(p.BugFixes),
		Deprecations:    nonNil(p.Deprecations),
		BreakingChanges: nonNil(p.BreakingChanges),
	})
}

// parseTopicList validates a JSON array of topic names.
func parseTopicList(raw string) domain.Parsed[[]string] {
	body := jsonArray.FindString(raw)
	if body == "" {
		return domain.ParseFailed[[]string](raw, "no JSON array in response")
	}

	var items []string
	if err := json.Unmarshal([]byte(body), &items); err != nil {
		return domain.ParseFailed[[]string](raw, "invalid JSON: "+err.Error())
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return domain.ParsedValue(out)
}

// splitListLines turns a free-text list into items, stripping bullets,
// numbering and quotes. It is the fallback when a list response is not JSON.
func splitListLines(raw string) []string {
	var items []string
	for _, line := range strings.Split(raw, "\n") {
		line = listMarker.ReplaceAllString(line, "")
		line = strings.Trim(strings.TrimSpace(line), `"',`)
		if line == "" || strings.HasPrefix(line, "[") || strings.HasPrefix(line, "]") {
			continue
		}
		items = append(items, line)
	}
	return items
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
