// Package article provides the single-article reader for the TUI.
package article

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/custodia-labs/docgap/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docgap/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docgap/internal/core/domain"
	"github.com/custodia-labs/docgap/internal/core/ports/driving"
)

// ErrNoNotes indicates a suggestion was requested before any analysis ran.
var ErrNoNotes = errors.New("analyze release notes first")

// View is the article reader.
type View struct {
	styles          *styles.Styles
	articleService  driving.ArticleService
	draftingService driving.DraftingService
	ctx             context.Context

	document     *domain.Document
	from         messages.ViewType
	notes        *domain.ReleaseNotes
	suggestion   string
	lines        []string
	scrollOffset int
	width        int
	height       int
	ready        bool
	err          error
	loading      bool
	suggesting   bool
}

// NewView creates a new article view. draftingService may be nil.
func NewView(
	s *styles.Styles,
	articleService driving.ArticleService,
	draftingService driving.DraftingService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:          s,
		articleService:  articleService,
		draftingService: draftingService,
		ctx:             context.Background(),
		from:            messages.ViewMenu,
		width:           80,
		height:          24,
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

// SetArticle shows doc and fetches its full body. esc returns to from.
// notes are the release notes suggestions are drafted against; may be nil.
func (v *View) SetArticle(doc domain.Document, from messages.ViewType, notes *domain.ReleaseNotes) tea.Cmd {
	v.document = &doc
	v.from = from
	v.notes = notes
	v.suggestion = ""
	v.scrollOffset = 0
	v.err = nil
	v.suggesting = false
	v.render()

	if v.articleService == nil {
		return nil
	}
	v.loading = true
	id := doc.ID
	return func() tea.Msg {
		full, err := v.articleService.Get(v.ctx, id)
		return messages.ArticleLoaded{Document: full, Err: err}
	}
}

// Update handles messages for the article view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.ArticleLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		if msg.Document != nil {
			v.document = msg.Document
		}
		v.render()
		return v, nil

	case messages.SuggestionCompleted:
		if v.document == nil || msg.ArticleID != v.document.ID {
			return v, nil
		}
		v.suggesting = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.suggestion = msg.Suggestion
		v.render()
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
	switch msg.String() {
	case "up", "k":
		if v.scrollOffset > 0 {
			v.scrollOffset--
		}
	case "down", "j":
		if v.scrollOffset < v.maxScrollOffset() {
			v.scrollOffset++
		}
	case "pgup", "ctrl+u":
		v.scrollOffset = max(v.scrollOffset-v.visibleLines(), 0)
	case "pgdown", "ctrl+d":
		v.scrollOffset = min(v.scrollOffset+v.visibleLines(), v.maxScrollOffset())
	case "home", "g":
		v.scrollOffset = 0
	case "end", "G":
		v.scrollOffset = v.maxScrollOffset()
	case "s":
		return v, v.Suggest()
	case "esc":
		from := v.from
		return v, func() tea.Msg {
			return messages.ViewChanged{View: from}
		}
	}

	return v, nil
}

// Suggest asks the LLM how the open article should change for the release.
func (v *View) Suggest() tea.Cmd {
	switch {
	case v.document == nil || v.suggesting || v.loading:
		return nil
	case v.draftingService == nil:
		v.err = domain.ErrLLMUnavailable
		return nil
	case v.notes == nil || v.notes.IsEmpty():
		v.err = ErrNoNotes
		return nil
	}

	v.suggesting = true
	v.err = nil
	doc := *v.document
	notes := v.notes.Text
	return func() tea.Msg {
		advice, err := v.draftingService.SuggestUpdate(v.ctx, notes, doc)
		return messages.SuggestionCompleted{ArticleID: doc.ID, Suggestion: advice, Err: err}
	}
}

// render converts the article and any suggestion to display lines.
func (v *View) render() {
	if v.document == nil {
		v.lines = nil
		return
	}

	var b strings.Builder
	if v.suggestion != "" {
		b.WriteString("## Suggested update\n\n")
		b.WriteString(v.suggestion)
		b.WriteString("\n\n---\n\n")
	}
	if v.document.URL != "" {
		fmt.Fprintf(&b, "%s\n\n", v.document.URL)
	}
	b.WriteString(v.document.Body)

	text := strings.TrimSpace(b.String())
	if text == "" {
		v.lines = nil
		return
	}
	v.lines = strings.Split(strings.TrimRight(renderMarkdown(text, v.width), "\n"), "\n")
	v.scrollOffset = min(v.scrollOffset, v.maxScrollOffset())
}

// renderMarkdown styles text for the terminal, falling back to the raw text.
func renderMarkdown(text string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(max(width-4, 20)),
	)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return out
}

// visibleLines returns the number of lines that can be displayed.
func (v *View) visibleLines() int {
	return max(v.height-6, 1)
}

// maxScrollOffset returns the maximum scroll offset.
func (v *View) maxScrollOffset() int {
	return max(len(v.lines)-v.visibleLines(), 0)
}

// View renders the article view.
func (v *View) View() string {
	var b strings.Builder

	title := "Article"
	if v.document != nil {
		title = v.document.Title
		if title == "" {
			title = v.document.ID
		}
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(max(v.width-4, 1), 60)))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
	}

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading article..."))
		b.WriteString("\n")
	case v.suggesting:
		b.WriteString(v.styles.Muted.Render("Drafting suggestion..."))
		b.WriteString("\n")
	}

	if len(v.lines) == 0 {
		b.WriteString(v.styles.Muted.Render("(No content)"))
	} else {
		visible := v.visibleLines()
		end := min(v.scrollOffset+visible, len(v.lines))
		b.WriteString(strings.Join(v.lines[v.scrollOffset:end], "\n"))
		if len(v.lines) > visible {
			b.WriteString("\n")
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  Line %d-%d of %d",
				v.scrollOffset+1, end, len(v.lines))))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓/PgUp/PgDn] scroll  [s] suggest update  [esc] back"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.render()
}

// Document returns the open article.
func (v *View) Document() *domain.Document {
	return v.document
}

// Suggestion returns the last drafted suggestion.
func (v *View) Suggestion() string {
	return v.suggestion
}

// Suggesting reports whether a suggestion is in flight.
func (v *View) Suggesting() bool {
	return v.suggesting
}

// Loading reports whether the article body is being fetched.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
