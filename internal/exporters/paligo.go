package exporters

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"

	"github.com/custodia-labs/docgap/internal/core/domain"
	"github.com/custodia-labs/docgap/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.Exporter = (*PaligoExporter)(nil)

// PaligoNamespace is the Paligo 3.0 document namespace.
const PaligoNamespace = "http://www.paligo.net/pal/3.0"

// Excerpt lengths in runes.
const (
	paligoNotesExcerpt   = 500
	paligoArticleExcerpt = 300
)

type palDoc struct {
	XMLName  xml.Name     `xml:"http://www.paligo.net/pal/3.0 doc"`
	ID       string       `xml:"id,attr"`
	Status   string       `xml:"status,attr"`
	Title    string       `xml:"title"`
	Meta     palMeta      `xml:"meta"`
	Sections []palSection `xml:"section"`
}

type palMeta struct {
	Version     string `xml:"version"`
	AnalyzeDate string `xml:"analyzeDate"`
	Status      string `xml:"status"`
}

type palSection struct {
	ID       string       `xml:"id,attr"`
	Title    string       `xml:"title"`
	Paras    []palPara    `xml:"para"`
	Items    *palList     `xml:"itemizedlist,omitempty"`
	Ordered  *palList     `xml:"orderedlist,omitempty"`
	Sections []palSection `xml:"section"`
}

type palPara struct {
	Emphasis string    `xml:"emphasis,omitempty"`
	Text     string    `xml:",chardata"`
	Link     *palULink `xml:"ulink,omitempty"`
}

type palULink struct {
	URL  string `xml:"url,attr"`
	Text string `xml:",chardata"`
}

type palList struct {
	Items []palListItem `xml:"listitem"`
}

type palListItem struct {
	Para palPara `xml:"para"`
}

// PaligoExporter writes a draft Paligo topic for the documentation team.
type PaligoExporter struct{}

// NewPaligoExporter creates a Paligo exporter.
func NewPaligoExporter() *PaligoExporter {
	return &PaligoExporter{}
}

// Format returns domain.ExportPaligo.
func (e *PaligoExporter) Format() domain.ExportFormat {
	return domain.ExportPaligo
}

// ExportAnalysis writes the result as a Paligo <doc>.
func (e *PaligoExporter) ExportAnalysis(w io.Writer, result *domain.AnalysisResult) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}

	// Not indented: paragraphs hold mixed content and whitespace in them is significant.
	enc := xml.NewEncoder(w)
	if err := enc.Encode(newPaligoDoc(result)); err != nil {
		return fmt.Errorf("encode paligo: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func newPaligoDoc(r *domain.AnalysisResult) palDoc {
	date := orUnknown(r.Date)
	if !r.CreatedAt.IsZero() {
		date = r.CreatedAt.UTC().Format("2006-01-02")
	}

	return palDoc{
		ID:     paligoID(r, date),
		Status: "draft",
		Title:  "Documentation Gap Analysis Report",
		Meta: palMeta{
			Version:     orUnknown(r.Version),
			AnalyzeDate: date,
			Status:      "Draft - Requires Review",
		},
		Sections: []palSection{
			paligoOverview(r, date),
			paligoArticles(r),
			paligoGaps(r),
			paligoNextSteps(),
		},
	}
}

// paligoID builds an id from the date and the first characters of the run id.
func paligoID(r *domain.AnalysisResult, date string) string {
	id := "analysis"
	if date != unknown {
		id += "-" + date
	}
	if r.ID != "" {
		id += "-" + domain.Truncate(r.ID, 9)
	}
	return id
}

func paligoOverview(r *domain.AnalysisResult, date string) palSection {
	return palSection{
		ID:    "overview",
		Title: "Overview",
		Paras: []palPara{{Text: "This report identifies documentation gaps and articles requiring updates based on release notes analysis."}},
		Sections: []palSection{
			{
				ID:    "summary-stats",
				Title: "Summary Statistics",
				Items: bullets(
					labelled("Articles Analyzed:", strconv.Itoa(len(r.Articles))),
					labelled("Documentation Gaps Found:", strconv.Itoa(len(r.Gaps))),
					labelled("Analysis Date:", date),
				),
			},
			{
				ID:    "release-notes-summary",
				Title: "Release Notes Summary",
				Paras: []palPara{{Text: domain.Truncate(r.ReleaseNotes, paligoNotesExcerpt)}},
			},
		},
	}
}

func paligoArticles(r *domain.AnalysisResult) palSection {
	s := palSection{
		ID:    "articles-to-update",
		Title: "Articles Requiring Updates",
		Paras: []palPara{{Text: "The following articles should be reviewed and updated to reflect the new release:"}},
	}
	for i, a := range r.Articles {
		url := a.URL
		if url == "" {
			url = "#"
		}
		s.Sections = append(s.Sections, palSection{
			ID:    fmt.Sprintf("article-update-%d", i+1),
			Title: a.Title,
			Paras: []palPara{{Link: &palULink{URL: url, Text: "View article in the help center"}}},
			Items: bullets(
				labelled("Relevance Score:", fmt.Sprintf("%d%%", Percent(a.RelevanceScore))),
				labelled("Current Content:", domain.Truncate(a.Body, paligoArticleExcerpt)),
				labelled("Update Recommendation:", recommendation(a.Suggestion)),
			),
		})
	}
	return s
}

func recommendation(label domain.Label) string {
	if label == "" {
		return "Review and update this article to include information about the new features and changes mentioned in the release notes."
	}
	return string(label)
}

func paligoGaps(r *domain.AnalysisResult) palSection {
	s := palSection{
		ID:    "documentation-gaps",
		Title: "Documentation Gaps - New Content Needed",
		Paras: []palPara{{Text: "The following topics are mentioned in the release notes but lack dedicated documentation:"}},
	}
	for i, g := range r.Gaps {
		id := fmt.Sprintf("gap-%d", i+1)
		s.Sections = append(s.Sections, palSection{
			ID:    id,
			Title: g.Topic.String(),
			Paras: []palPara{
				labelled("Topic:", g.Topic.String()),
				labelled("Mentions:", strconv.Itoa(g.Mentions)),
				labelled("Why This Gap Exists:", gapReason(g)),
			},
			Sections: []palSection{{
				ID:    id + "-action",
				Title: "Recommended Action",
				Paras: []palPara{{Text: "Create a new article addressing this topic and add it to the appropriate documentation section."}},
			}},
		})
	}
	return s
}

func paligoNextSteps() palSection {
	steps := []string{
		`Review articles marked for update in the "Articles Requiring Updates" section above.`,
		`Create new articles for the topics listed in "Documentation Gaps".`,
		"Use AI-generated drafts as starting points and refine them to match your documentation standards.",
		"Update the release notes article to reference these new and updated articles.",
		"Re-run analysis after updates to verify coverage completeness.",
	}
	list := &palList{}
	for _, step := range steps {
		list.Items = append(list.Items, palListItem{Para: palPara{Text: step}})
	}
	return palSection{ID: "next-steps", Title: "Next Steps", Ordered: list}
}

func labelled(label, text string) palPara {
	return palPara{Emphasis: label, Text: " " + text}
}

func bullets(paras ...palPara) *palList {
	list := &palList{}
	for _, p := range paras {
		list.Items = append(list.Items, palListItem{Para: p})
	}
	return list
}
