package api

import (
	"strings"

	"github.com/custodia-labs/docgap/internal/core/domain"
)

// notesRequest carries release notes and their labels.
type notesRequest struct {
	ReleaseNotes string `json:"releaseNotes"`
	Version      string `json:"version"`
	Date         string `json:"date"`
}

func (r notesRequest) request() domain.AnalysisRequest {
	return domain.AnalysisRequest{ReleaseNotes: r.ReleaseNotes, Version: r.Version, Date: r.Date}
}

func (r notesRequest) empty() bool {
	return strings.TrimSpace(r.ReleaseNotes) == ""
}

type analysisRequest struct {
	notesRequest
	TopN    int  `json:"topN"`
	GapCap  int  `json:"gapCap"`
	Lexical bool `json:"lexical"`
}

type gapsRequest struct {
	notesRequest
	Max     int  `json:"max"`
	Lexical bool `json:"lexical"`
	Suggest bool `json:"suggest"`
}

// articleInput names an article by ID or carries it inline.
type articleInput struct {
	ArticleID      string `json:"articleId"`
	ArticleTitle   string `json:"articleTitle"`
	ArticleContent string `json:"articleContent"`
}

type articleRequest struct {
	notesRequest
	articleInput
}

type generateRequest struct {
	notesRequest
	Topic string `json:"topic"`
}

type translateRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

type exportRequest struct {
	analysisRequest
	Format string     `json:"format"`
	Draft  *draftJSON `json:"draft"`
}

type articleJSON struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	URL       string `json:"url,omitempty"`
	Category  string `json:"category,omitempty"`
	Body      string `json:"body,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

type scoredJSON struct {
	articleJSON
	RelevanceScore int    `json:"relevanceScore"`
	Suggestion     string `json:"suggestion"`
}

type gapJSON struct {
	Topic    string `json:"topic"`
	Mentions int    `json:"mentions"`
	Reason   string `json:"reason,omitempty"`
}

type analysisJSON struct {
	ID                    string       `json:"id"`
	Version               string       `json:"version"`
	Date                  string       `json:"date"`
	Summary               string       `json:"summary"`
	Method                string       `json:"method"`
	Coverage              string       `json:"coverage"`
	TotalArticlesSearched int          `json:"totalArticlesSearched"`
	Articles              []scoredJSON `json:"matchedArticles"`
	Gaps                  []gapJSON    `json:"gaps"`
	Topics                []string     `json:"topics"`
}

type impactJSON struct {
	Score          int      `json:"score"`
	Severity       string   `json:"severity"`
	Category       string   `json:"category,omitempty"`
	AffectedRoles  []string `json:"affectedRoles"`
	Summary        string   `json:"summary"`
	ActionRequired string   `json:"actionRequired,omitempty"`
	RiskAssessment string   `json:"riskAssessment,omitempty"`
	Suggestion     string   `json:"suggestion"`
}

type parseFailureJSON struct {
	Raw    string `json:"raw"`
	Reason string `json:"reason"`
}

type compareJSON struct {
	ArticleID       string            `json:"articleId"`
	ShouldUpdate    bool              `json:"shouldUpdate"`
	SuggestedUpdate string            `json:"suggestedUpdate"`
	Impact          *impactJSON       `json:"impactAnalysis,omitempty"`
	ParseFailure    *parseFailureJSON `json:"parseFailure,omitempty"`
}

type draftJSON struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Topic    string `json:"topic,omitempty"`
	Language string `json:"language,omitempty"`
}

type pageJSON struct {
	Articles []articleJSON `json:"articles"`
	Total    int           `json:"total"`
	Pages    int           `json:"pages"`
	Page     int           `json:"page"`
}

func toArticle(d domain.Document, withBody bool) articleJSON {
	out := articleJSON{ID: d.ID, Title: d.Title, URL: d.URL, Category: d.Category}
	if withBody {
		out.Body = d.Body
	}
	if !d.UpdatedAt.IsZero() {
		out.UpdatedAt = d.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z")
	}
	return out
}

func toArticles(docs []domain.Document) []articleJSON {
	out := make([]articleJSON, len(docs))
	for i, d := range docs {
		out[i] = toArticle(d, false)
	}
	return out
}

func toGaps(gaps []domain.Gap) []gapJSON {
	out := make([]gapJSON, len(gaps))
	for i, g := range gaps {
		out[i] = gapJSON{Topic: g.Topic.String(), Mentions: g.Mentions, Reason: g.Reason}
	}
	return out
}

func toAnalysis(r *domain.AnalysisResult) analysisJSON {
	out := analysisJSON{
		ID:                    r.ID,
		Version:               r.Version,
		Date:                  r.Date,
		Summary:               r.Summary,
		Method:                string(r.Method),
		Coverage:              string(domain.CoverageFor(len(r.Articles))),
		TotalArticlesSearched: r.TotalArticlesSearched,
		Articles:              make([]scoredJSON, len(r.Articles)),
		Gaps:                  toGaps(r.Gaps),
		Topics:                make([]string, len(r.Topics)),
	}
	for i, a := range r.Articles {
		out.Articles[i] = scoredJSON{
			articleJSON:    toArticle(a.Document, false),
			RelevanceScore: int(domain.Scale0To100.Present(a.RelevanceScore)),
			Suggestion:     string(a.Suggestion),
		}
	}
	for i, t := range r.Topics {
		out.Topics[i] = t.String()
	}
	return out
}

func toImpact(a *domain.ImpactAnalysis) *impactJSON {
	roles := a.AffectedRoles
	if roles == nil {
		roles = []string{}
	}
	return &impactJSON{
		Score:          a.Score,
		Severity:       string(a.Severity),
		Category:       a.Category,
		AffectedRoles:  roles,
		Summary:        a.Summary,
		ActionRequired: a.ActionRequired,
		RiskAssessment: a.RiskAssessment,
		Suggestion:     string(a.Suggestion(domain.DefaultThresholds())),
	}
}

func toCompare(c *domain.Comparison) compareJSON {
	out := compareJSON{
		ArticleID:       c.ArticleID,
		ShouldUpdate:    c.ShouldUpdate,
		SuggestedUpdate: c.SuggestedUpdate,
	}
	if c.Impact.OK() {
		out.Impact = toImpact(c.Impact.Value)
	} else if c.Impact.Failure != nil {
		out.ParseFailure = &parseFailureJSON{Raw: c.Impact.Failure.Raw, Reason: c.Impact.Failure.Reason}
	}
	return out
}

func toDraft(d *domain.Draft) draftJSON {
	return draftJSON{Title: d.Title, Body: d.Body, Topic: d.Topic.String(), Language: d.Language}
}

func fromDraft(d *draftJSON) *domain.Draft {
	return &domain.Draft{Title: d.Title, Body: d.Body, Topic: domain.Topic(d.Topic), Language: d.Language}
}
