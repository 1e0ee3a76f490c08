// Package styles holds the TUI palette and the lipgloss styles built from it.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docgap/internal/core/domain"
)

// Theme is the palette. Each colour carries a light and a dark variant;
// lipgloss picks one from the terminal background.
type Theme struct {
	Primary    lipgloss.AdaptiveColor
	Secondary  lipgloss.AdaptiveColor
	Foreground lipgloss.AdaptiveColor
	Muted      lipgloss.AdaptiveColor
	Success    lipgloss.AdaptiveColor
	Warning    lipgloss.AdaptiveColor
	Error      lipgloss.AdaptiveColor
	Border     lipgloss.AdaptiveColor
	Bar        lipgloss.AdaptiveColor
}

func adaptive(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

// DefaultTheme is a teal and amber palette.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    adaptive("#0F766E", "#2DD4BF"),
		Secondary:  adaptive("#1D4ED8", "#93C5FD"),
		Foreground: adaptive("#1F2937", "#E5E7EB"),
		Muted:      adaptive("#6B7280", "#9CA3AF"),
		Success:    adaptive("#15803D", "#86EFAC"),
		Warning:    adaptive("#B45309", "#FCD34D"),
		Error:      adaptive("#B91C1C", "#FCA5A5"),
		Border:     adaptive("#D1D5DB", "#374151"),
		Bar:        adaptive("#F3F4F6", "#111827"),
	}
}

// Styles are the lipgloss styles the views render with.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Help     lipgloss.Style

	// Selected marks the cursor row in lists.
	Selected lipgloss.Style

	Error   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style

	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Border     lipgloss.Style

	// Tab and ActiveTab style the result tab bar.
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
}

// NewStyles builds styles from theme, or from DefaultTheme when nil.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	fg := func(c lipgloss.AdaptiveColor) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}
	rounded := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border)
	highlight := fg(theme.Bar).Bold(true).Background(theme.Primary)

	return &Styles{
		theme:    theme,
		Title:    fg(theme.Primary).Bold(true),
		Subtitle: fg(theme.Secondary).Bold(true),
		Normal:   fg(theme.Foreground),
		Muted:    fg(theme.Muted),
		Help:     fg(theme.Muted).Italic(true),
		Selected: highlight,

		Error:   fg(theme.Error),
		Success: fg(theme.Success),
		Warning: fg(theme.Warning),

		InputField: rounded.Padding(0, 1),
		StatusBar:  fg(theme.Muted).Background(theme.Bar).Padding(0, 1),
		Border:     rounded,

		Tab:       fg(theme.Muted).Padding(0, 1),
		ActiveTab: highlight.Padding(0, 1),
	}
}

// DefaultStyles returns NewStyles(DefaultTheme()).
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the palette behind s.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// ForLabel returns the style used to render a suggested action.
func (s *Styles) ForLabel(label domain.Label) lipgloss.Style {
	switch label {
	case domain.LabelPriorityUpdate:
		return s.Error
	case domain.LabelNewInfo:
		return s.Warning
	case domain.LabelRelatedInfo:
		return s.Subtitle
	default:
		return s.Muted
	}
}
