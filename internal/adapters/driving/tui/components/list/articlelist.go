// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docgap/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docgap/internal/core/domain"
)

// ArticleList displays help-center articles in a navigable list. When
// scores are shown each row carries the relevance and suggested action.
type ArticleList struct {
	articles   []domain.ScoredDocument
	heading    string
	showScores bool
	selected   int
	styles     *styles.Styles
	width      int
	height     int
}

// NewArticleList creates a new article list component.
func NewArticleList(s *styles.Styles, heading string) *ArticleList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ArticleList{
		heading:    heading,
		showScores: true,
		styles:     s,
		width:      80,
		height:     10,
	}
}

// Init initialises the list.
func (r *ArticleList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *ArticleList) Update(msg tea.Msg) (*ArticleList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the list.
func (r *ArticleList) View() string {
	if len(r.articles) == 0 {
		return r.styles.Muted.Render("No articles")
	}

	lines := make([]string, 0, len(r.articles)+2)
	header := r.styles.Subtitle.Render(fmt.Sprintf("%s (%d)", r.heading, len(r.articles)))
	lines = append(lines, header, "")

	// Each row takes two lines.
	visibleCount := (r.height - 4) / 2
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if r.selected >= visibleCount {
		start = r.selected - visibleCount + 1
	}
	end := min(start+visibleCount, len(r.articles))

	for i := start; i < end; i++ {
		lines = append(lines, r.renderArticle(i, &r.articles[i]))
	}

	return strings.Join(lines, "\n")
}

// renderArticle formats one row.
func (r *ArticleList) renderArticle(index int, article *domain.ScoredDocument) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	title := article.Title
	if title == "" {
		title = "(Untitled)"
	}
	maxTitleLen := max(r.width-16, 10)
	title = truncate(title, maxTitleLen)

	score := ""
	if r.showScores {
		score = fmt.Sprintf("%3.0f%%", domain.Scale0To100.Present(article.RelevanceScore))
	}

	var titleLine string
	if index == r.selected {
		titleLine = r.styles.Selected.Render(fmt.Sprintf("%s%-*s  %s", indicator, maxTitleLen, title, score))
	} else {
		titleLine = r.styles.Normal.Render(fmt.Sprintf("%s%-*s  ", indicator, maxTitleLen, title)) +
			r.styles.Muted.Render(score)
	}

	var detail string
	switch {
	case r.showScores && article.Suggestion != "":
		detail = r.styles.ForLabel(article.Suggestion).Render("    " + string(article.Suggestion))
	case article.URL != "":
		detail = r.styles.Muted.Render("    " + truncate(article.URL, max(r.width-6, 20)))
	default:
		detail = r.styles.Muted.Render("    " + article.ID)
	}

	return titleLine + "\n" + detail
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// SetArticles replaces the scored articles and resets the selection.
func (r *ArticleList) SetArticles(articles []domain.ScoredDocument) {
	r.articles = articles
	r.selected = 0
}

// SetDocuments replaces the list with unscored documents.
func (r *ArticleList) SetDocuments(docs []domain.Document) {
	articles := make([]domain.ScoredDocument, len(docs))
	for i, d := range docs {
		articles[i] = domain.ScoredDocument{Document: d}
	}
	r.showScores = false
	r.SetArticles(articles)
}

// Articles returns the current rows.
func (r *ArticleList) Articles() []domain.ScoredDocument {
	return r.articles
}

// Selected returns the index of the selected row.
func (r *ArticleList) Selected() int {
	return r.selected
}

// SetSelected sets the selected index.
func (r *ArticleList) SetSelected(index int) {
	if index >= 0 && index < len(r.articles) {
		r.selected = index
	}
}

// SelectedArticle returns the selected row, or nil if the list is empty.
func (r *ArticleList) SelectedArticle() *domain.ScoredDocument {
	if len(r.articles) == 0 || r.selected < 0 || r.selected >= len(r.articles) {
		return nil
	}
	return &r.articles[r.selected]
}

// MoveUp moves selection up.
func (r *ArticleList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *ArticleList) MoveDown() {
	if r.selected < len(r.articles)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *ArticleList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Width returns the current width.
func (r *ArticleList) Width() int {
	return r.width
}

// Height returns the current height.
func (r *ArticleList) Height() int {
	return r.height
}

// Count returns the number of rows.
func (r *ArticleList) Count() int {
	return len(r.articles)
}

// IsEmpty returns whether the list is empty.
func (r *ArticleList) IsEmpty() bool {
	return len(r.articles) == 0
}
