package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestDefaultKeyMap_Matches(t *testing.T) {
	km := DefaultKeyMap()
	require.NotNil(t, km)

	tests := []struct {
		name    string
		msg     tea.KeyMsg
		binding key.Binding
		want    bool
	}{
		{"q quits", runes("q"), km.Quit, true},
		{"ctrl+c quits", tea.KeyMsg{Type: tea.KeyCtrlC}, km.Quit, true},
		{"x does not quit", runes("x"), km.Quit, false},
		{"? is help", runes("?"), km.Help, true},
		{"esc is back", tea.KeyMsg{Type: tea.KeyEsc}, km.Back, true},
		{"k is up", runes("k"), km.Up, true},
		{"down is not up", tea.KeyMsg{Type: tea.KeyDown}, km.Up, false},
		{"j is down", runes("j"), km.Down, true},
		{"g is top", runes("g"), km.Top, true},
		{"G is bottom", runes("G"), km.Bottom, true},
		{"end is bottom", tea.KeyMsg{Type: tea.KeyEnd}, km.Bottom, true},
		{"tab is next tab", tea.KeyMsg{Type: tea.KeyTab}, km.NextTab, true},
		{"shift+tab is prev tab", tea.KeyMsg{Type: tea.KeyShiftTab}, km.PrevTab, true},
		{"pgdown is next page", tea.KeyMsg{Type: tea.KeyPgDown}, km.NextPage, true},
		{"p is prev page", runes("p"), km.PrevPage, true},
		{"enter selects", tea.KeyMsg{Type: tea.KeyEnter}, km.Select, true},
		{"enter submits", tea.KeyMsg{Type: tea.KeyEnter}, km.Submit, true},
		{"s suggests", runes("s"), km.Suggest, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, key.Matches(tt.msg, tt.binding))
		})
	}
}

func TestDefaultKeyMap_HelpText(t *testing.T) {
	km := DefaultKeyMap()

	for _, group := range km.FullHelp() {
		for _, b := range group {
			assert.NotEmpty(t, b.Help().Key)
			assert.NotEmpty(t, b.Help().Desc)
		}
	}
}

func TestHintSets(t *testing.T) {
	km := DefaultKeyMap()

	assert.Equal(t, []key.Binding{km.Quit, km.Help}, km.ShortHelp())
	assert.Contains(t, km.MenuHelp(), km.Select)
	assert.Len(t, km.ResultsHelp(), 4)
	assert.Contains(t, km.ArticleHelp(), km.Suggest)

	full := km.FullHelp()
	assert.Len(t, full, 4)
	assert.Len(t, full[0], 5)
	assert.Len(t, full[3], 2)
}
