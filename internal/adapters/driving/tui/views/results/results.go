// Package results provides the tabbed analysis result view for the TUI.
package results

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docgap/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/docgap/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docgap/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docgap/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docgap/internal/core/domain"
)

// Tab identifies one pane of the result view.
type Tab int

// Result tabs, in display order.
const (
	TabArticles Tab = iota
	TabGaps
	TabTopics
	TabSummary
	tabCount
)

// String returns the tab label.
func (t Tab) String() string {
	switch t {
	case TabArticles:
		return "Articles"
	case TabGaps:
		return "Gaps"
	case TabTopics:
		return "Topics"
	case TabSummary:
		return "Summary"
	default:
		return "Unknown"
	}
}

// View shows one analysis result.
type View struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	articles *list.ArticleList

	result *domain.AnalysisResult
	notes  *domain.ReleaseNotes
	tab    Tab
	gapSel int
	width  int
	height int
	ready  bool
}

// NewView creates a new result view.
func NewView(s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:   s,
		keymap:   km,
		articles: list.NewArticleList(s, "Articles to review"),
		width:    80,
		height:   24,
	}
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// SetResult replaces the displayed result. notes may be nil.
func (v *View) SetResult(result *domain.AnalysisResult, notes *domain.ReleaseNotes) {
	v.result = result
	v.notes = notes
	v.tab = TabArticles
	v.gapSel = 0
	if result == nil {
		v.articles.SetArticles(nil)
		return
	}
	v.articles.SetArticles(result.Articles)
}

// Update handles messages for the result view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil
	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case key.Matches(msg, v.keymap.NextTab):
		v.tab = (v.tab + 1) % tabCount
		return v, nil
	case key.Matches(msg, v.keymap.PrevTab):
		v.tab = (v.tab + tabCount - 1) % tabCount
		return v, nil
	}

	switch v.tab {
	case TabArticles:
		if key.Matches(msg, v.keymap.Select) {
			selected := v.articles.SelectedArticle()
			if selected == nil {
				return v, nil
			}
			doc := selected.Document
			return v, func() tea.Msg {
				return messages.ArticleSelected{Document: doc, From: messages.ViewResults}
			}
		}
		var cmd tea.Cmd
		v.articles, cmd = v.articles.Update(msg)
		return v, cmd
	case TabGaps:
		switch {
		case key.Matches(msg, v.keymap.Up):
			if v.gapSel > 0 {
				v.gapSel--
			}
		case key.Matches(msg, v.keymap.Down):
			if v.result != nil && v.gapSel < len(v.result.Gaps)-1 {
				v.gapSel++
			}
		}
	}
	return v, nil
}

// View renders the result view.
func (v *View) View() string {
	if v.result == nil {
		return v.styles.Muted.Render("No analysis yet.")
	}

	title := "Analysis"
	if v.result.Version != "" {
		title += " - " + v.result.Version
	}

	sections := []string{
		v.styles.Title.Render(title),
		v.renderTabs(),
		"",
	}

	switch v.tab {
	case TabArticles:
		sections = append(sections, v.articles.View())
	case TabGaps:
		sections = append(sections, v.renderGaps())
	case TabTopics:
		sections = append(sections, v.renderTopics())
	case TabSummary:
		sections = append(sections, v.renderSummary())
	}

	sections = append(sections, "", v.styles.Help.Render(v.helpText()))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderTabs() string {
	parts := make([]string, 0, int(tabCount))
	for t := TabArticles; t < tabCount; t++ {
		label := t.String()
		switch t {
		case TabArticles:
			label = fmt.Sprintf("%s (%d)", label, len(v.result.Articles))
		case TabGaps:
			label = fmt.Sprintf("%s (%d)", label, len(v.result.Gaps))
		case TabTopics:
			label = fmt.Sprintf("%s (%d)", label, len(v.result.Topics))
		}
		if t == v.tab {
			parts = append(parts, v.styles.ActiveTab.Render(label))
		} else {
			parts = append(parts, v.styles.Tab.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (v *View) renderGaps() string {
	if len(v.result.Gaps) == 0 {
		return v.styles.Success.Render("Every topic is covered by an existing article.")
	}

	var b strings.Builder
	b.WriteString(v.styles.Subtitle.Render("Topics with no article"))
	b.WriteString("\n\n")
	for i, g := range v.result.Gaps {
		line := fmt.Sprintf("%s (%d mentions)", g.Topic, g.Mentions)
		if i == v.gapSel {
			b.WriteString(v.styles.Selected.Render("> " + line))
		} else {
			b.WriteString(v.styles.Normal.Render("  " + line))
		}
		b.WriteString("\n")
		if g.Reason != "" {
			b.WriteString(v.styles.Muted.Render("    " + g.Reason))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (v *View) renderTopics() string {
	if len(v.result.Topics) == 0 {
		return v.styles.Muted.Render("No topics extracted.")
	}
	topics := make([]string, len(v.result.Topics))
	for i, t := range v.result.Topics {
		topics[i] = t.String()
	}
	return lipgloss.NewStyle().Width(max(v.width-4, 20)).Render(strings.Join(topics, ", "))
}

func (v *View) renderSummary() string {
	r := v.result
	lines := []string{
		v.styles.Normal.Render(r.Summary),
		"",
		v.styles.Muted.Render(fmt.Sprintf("Coverage: %s", domain.CoverageFor(len(r.Articles)))),
		v.styles.Muted.Render(fmt.Sprintf("Ranking: %s", r.Method)),
		v.styles.Muted.Render(fmt.Sprintf("Articles searched: %d", r.TotalArticlesSearched)),
	}
	if r.Date != "" {
		lines = append(lines, v.styles.Muted.Render("Release date: "+r.Date))
	}
	if v.notes != nil && v.notes.Source != "" {
		lines = append(lines, v.styles.Muted.Render("Notes: "+v.notes.Source))
	}
	return strings.Join(lines, "\n")
}

func (v *View) helpText() string {
	if v.tab == TabArticles {
		return "[tab] next tab  [↑/↓] navigate  [enter] open  [esc] menu"
	}
	return "[tab] next tab  [shift+tab] previous  [esc] menu"
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.articles.SetDimensions(width, max(height-8, 4))
}

// Result returns the displayed result.
func (v *View) Result() *domain.AnalysisResult {
	return v.result
}

// Notes returns the release notes the result was computed from.
func (v *View) Notes() *domain.ReleaseNotes {
	return v.notes
}

// Tab returns the active tab.
func (v *View) Tab() Tab {
	return v.tab
}

// SelectedArticle returns the highlighted article, or nil.
func (v *View) SelectedArticle() *domain.ScoredDocument {
	return v.articles.SelectedArticle()
}
