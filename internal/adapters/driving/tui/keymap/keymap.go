// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap groups the bindings shared by the TUI views.
type KeyMap struct {
	Quit   key.Binding
	Help   key.Binding
	Back   key.Binding
	Cancel key.Binding

	// Submit runs the analysis from the input form.
	Submit key.Binding
	// Select opens the highlighted row.
	Select key.Binding

	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding

	NextTab  key.Binding
	PrevTab  key.Binding
	NextPage key.Binding
	PrevPage key.Binding

	// Suggest asks the LLM how to update the open article.
	Suggest key.Binding
}

func bind(help, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit:   bind("q", "quit", "q", "ctrl+c"),
		Help:   bind("?", "help", "?"),
		Back:   bind("esc", "back", "esc"),
		Cancel: bind("esc", "cancel", "esc"),

		Submit: bind("enter", "analyze", "enter"),
		Select: bind("enter", "open", "enter"),

		Up:     bind("↑/k", "up", "up", "k"),
		Down:   bind("↓/j", "down", "down", "j"),
		Top:    bind("g", "first", "g", "home"),
		Bottom: bind("G", "last", "G", "end"),

		NextTab:  bind("tab", "next tab", "tab", "right", "l"),
		PrevTab:  bind("shift+tab", "prev tab", "shift+tab", "left", "h"),
		NextPage: bind("n", "next page", "n", "pgdown"),
		PrevPage: bind("p", "prev page", "p", "pgup"),

		Suggest: bind("s", "suggest update", "s"),
	}
}

// ShortHelp is the hint set shown when no view supplies its own.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Help}
}

// MenuHelp returns the hints for the main menu.
func (k *KeyMap) MenuHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Quit}
}

// ResultsHelp returns the hints for the results view.
func (k *KeyMap) ResultsHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.Up, k.Select, k.Back}
}

// ArticleHelp returns the hints for the article view.
func (k *KeyMap) ArticleHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Suggest, k.Back}
}

// FullHelp returns every binding grouped for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom, k.Select},
		{k.NextTab, k.PrevTab, k.NextPage, k.PrevPage},
		{k.Submit, k.Suggest, k.Back, k.Cancel},
		{k.Help, k.Quit},
	}
}
