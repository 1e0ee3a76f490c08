// Package articles provides the paged help-center article browser for the TUI.
package articles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docgap/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docgap/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docgap/internal/core/domain"
	"github.com/custodia-labs/docgap/internal/core/ports/driving"
)

// DefaultPerPage is the number of articles fetched per page.
const DefaultPerPage = 30

// ErrNoArticleService indicates that no article service was provided.
var ErrNoArticleService = errors.New("article service not available")

// View is the article list view.
type View struct {
	styles         *styles.Styles
	articleService driving.ArticleService
	ctx            context.Context

	articles     []domain.Document
	page         int
	pages        int
	total        int
	perPage      int
	selected     int
	scrollOffset int
	width        int
	height       int
	ready        bool
	err          error
	loading      bool
}

// NewView creates a new article list view.
func NewView(s *styles.Styles, articleService driving.ArticleService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:         s,
		articleService: articleService,
		ctx:            context.Background(),
		page:           1,
		perPage:        DefaultPerPage,
		width:          80,
		height:         24,
	}
}

// WithContext sets the context for provider calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Load fetches the given page.
func (v *View) Load(page int) tea.Cmd {
	if page < 1 {
		page = 1
	}
	v.loading = true
	v.err = nil
	perPage := v.perPage
	return func() tea.Msg {
		if v.articleService == nil {
			return messages.ArticlesLoaded{Err: ErrNoArticleService}
		}
		result, err := v.articleService.List(v.ctx, page, perPage)
		return messages.ArticlesLoaded{Page: result, Err: err}
	}
}

// Update handles messages for the article list view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.ArticlesLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		if msg.Page != nil {
			v.articles = msg.Page.Articles
			v.page = msg.Page.Page
			v.pages = msg.Page.Pages
			v.total = msg.Page.Total
		}
		v.selected = 0
		v.scrollOffset = 0
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.loading {
		return v, nil
	}

	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case "down", "j":
		if v.selected < len(v.articles)-1 {
			v.selected++
			v.adjustScroll()
		}
	case "n", "pgdown":
		if v.page < v.pages {
			return v, v.Load(v.page + 1)
		}
	case "p", "pgup":
		if v.page > 1 {
			return v, v.Load(v.page - 1)
		}
	case "r":
		return v, v.Load(v.page)
	case "enter":
		if v.selected < len(v.articles) {
			doc := v.articles[v.selected]
			return v, func() tea.Msg {
				return messages.ArticleSelected{Document: doc, From: messages.ViewArticles}
			}
		}
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	return v, nil
}

// adjustScroll keeps the selected item visible.
func (v *View) adjustScroll() {
	visibleItems := v.visibleItemCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	} else if v.selected >= v.scrollOffset+visibleItems {
		v.scrollOffset = v.selected - visibleItems + 1
	}
}

// visibleItemCount returns the number of items that can be displayed.
func (v *View) visibleItemCount() int {
	return max(v.height-8, 1)
}

// View renders the article list view.
func (v *View) View() string {
	var b strings.Builder

	title := fmt.Sprintf("Help-center articles (%d)", v.total)
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading articles..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
	case len(v.articles) == 0:
		b.WriteString(v.styles.Muted.Render("No articles found."))
	default:
		visibleItems := v.visibleItemCount()
		for i := v.scrollOffset; i < len(v.articles) && i < v.scrollOffset+visibleItems; i++ {
			b.WriteString(v.renderArticle(i, &v.articles[i]))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  Page %d of %d", v.page, max(v.pages, 1))))
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [enter] open  [n/p] page  [r] reload  [esc] back"))
	return b.String()
}

// renderArticle renders a single article line.
func (v *View) renderArticle(index int, doc *domain.Document) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	title := doc.Title
	if title == "" {
		title = doc.ID
	}
	maxTitleLen := max(v.width/2-4, 10)
	if len(title) > maxTitleLen {
		title = title[:maxTitleLen-3] + "..."
	}

	detail := doc.Category
	if detail == "" {
		detail = doc.URL
	}
	maxDetailLen := max(v.width/2-4, 10)
	if len(detail) > maxDetailLen {
		detail = "..." + detail[len(detail)-maxDetailLen+3:]
	}

	if index == v.selected {
		return v.styles.Selected.Render(fmt.Sprintf("%s%-*s  %s", indicator, maxTitleLen, title, detail))
	}
	return v.styles.Normal.Render(fmt.Sprintf("%s%-*s  ", indicator, maxTitleLen, title)) +
		v.styles.Muted.Render(detail)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Articles returns the articles on the current page.
func (v *View) Articles() []domain.Document {
	return v.articles
}

// Page returns the current page number.
func (v *View) Page() int {
	return v.page
}

// Loading reports whether a page fetch is in flight.
func (v *View) Loading() bool {
	return v.loading
}

// SelectedIndex returns the currently selected article index.
func (v *View) SelectedIndex() int {
	return v.selected
}

// SelectedArticle returns the currently selected article.
func (v *View) SelectedArticle() *domain.Document {
	if v.selected < len(v.articles) {
		return &v.articles[v.selected]
	}
	return nil
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
