// Package menu provides the main navigation menu view for the TUI.
package menu

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docgap/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docgap/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docgap/internal/adapters/driving/tui/styles"
)

// Item is one menu entry. Shortcut jumps straight to it.
type Item struct {
	Label       string
	Description string
	Shortcut    key.Binding
	View        messages.ViewType
	Quit        bool
}

// View is the main menu.
type View struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	items    []Item
	selected int
	width    int
	height   int
	ready    bool
}

func shortcut(k, desc string) key.Binding {
	return key.NewBinding(key.WithKeys(k), key.WithHelp(k, desc))
}

// NewView creates the menu with its fixed entries.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	km := keymap.DefaultKeyMap()

	return &View{
		styles: s,
		keymap: km,
		items: []Item{
			{
				Label:       "Analyze release notes",
				Description: "Find articles to update and undocumented topics",
				Shortcut:    shortcut("a", "analyze"),
				View:        messages.ViewAnalyze,
			},
			{
				Label:       "Browse articles",
				Description: "Read the help-center corpus",
				Shortcut:    shortcut("b", "browse"),
				View:        messages.ViewArticles,
			},
			{
				Label:       "Settings",
				Description: "Embedding and LLM providers, cache",
				Shortcut:    shortcut("s", "settings"),
				View:        messages.ViewSettings,
			},
			{
				Label:       "Help",
				Description: "Keybindings",
				Shortcut:    km.Help,
				View:        messages.ViewHelp,
			},
			{Label: "Quit", Shortcut: km.Quit, Quit: true},
		},
		width:  80,
		height: 24,
	}
}

// Init implements the view contract; the menu has no startup command.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update moves the cursor or activates an entry.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case tea.KeyMsg:
		return v, v.handleKey(msg)
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, v.keymap.Up):
		v.selected = max(v.selected-1, 0)
		return nil
	case key.Matches(msg, v.keymap.Down):
		v.selected = min(v.selected+1, len(v.items)-1)
		return nil
	case key.Matches(msg, v.keymap.Top):
		v.selected = 0
		return nil
	case key.Matches(msg, v.keymap.Bottom):
		v.selected = len(v.items) - 1
		return nil
	case key.Matches(msg, v.keymap.Select):
		return v.activate(v.selected)
	}

	for i, item := range v.items {
		if key.Matches(msg, item.Shortcut) {
			v.selected = i
			return v.activate(i)
		}
	}
	return nil
}

func (v *View) activate(i int) tea.Cmd {
	item := v.items[i]
	if item.Quit {
		return tea.Quit
	}
	return func() tea.Msg {
		return messages.ViewChanged{View: item.View}
	}
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("docgap") + "\n\n")
	b.WriteString(v.styles.Muted.Render("Documentation gap assistant") + "\n\n")

	for i, item := range v.items {
		hint := v.styles.Muted.Render("[" + item.Shortcut.Help().Key + "]")
		if i != v.selected {
			b.WriteString("  " + hint + " " + v.styles.Normal.Render(item.Label) + "\n")
			continue
		}
		b.WriteString("> " + hint + " " + v.styles.Selected.Render(item.Label))
		if item.Description != "" {
			b.WriteString("  " + v.styles.Muted.Render(item.Description))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n" + v.styles.Help.Render(helpLine(v.keymap.MenuHelp())))
	return b.String()
}

func helpLine(bindings []key.Binding) string {
	parts := make([]string, len(bindings))
	for i, b := range bindings {
		parts[i] = "[" + b.Help().Key + "] " + b.Help().Desc
	}
	return strings.Join(parts, "  ")
}

// SetDimensions records the terminal size and marks the view ready.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected returns the index of the highlighted entry.
func (v *View) Selected() int {
	return v.selected
}

// Items returns the menu entries.
func (v *View) Items() []Item {
	return v.items
}
