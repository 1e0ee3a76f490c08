// Package analyze provides the release-notes input view for the TUI.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docgap/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docgap/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docgap/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docgap/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docgap/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docgap/internal/core/domain"
	"github.com/custodia-labs/docgap/internal/core/ports/driving"
)

// ErrNoAnalysisService indicates that no analysis service was provided.
var ErrNoAnalysisService = errors.New("analysis service is required")

// NotesFetcher resolves release notes from a named source.
type NotesFetcher interface {
	FetchNotes(ctx context.Context, source, ref string) (*domain.ReleaseNotes, error)
}

// Source names understood by the notes fetcher.
const (
	SourceFile   = "file"
	SourceURL    = "url"
	SourceGitHub = "github"
	SourceDrive  = "gdrive"
)

// ParseInput maps what the user typed to a notes source and reference.
// "github:owner/repo@tag" and "gdrive:<file-id>" select remote sources,
// http(s) URLs are scraped, and anything else is a local path.
func ParseInput(s string) (source, ref string) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "github:"):
		return SourceGitHub, strings.TrimPrefix(s, "github:")
	case strings.HasPrefix(s, "gdrive:"):
		return SourceDrive, strings.TrimPrefix(s, "gdrive:")
	case strings.HasPrefix(s, "http://"), strings.HasPrefix(s, "https://"):
		return SourceURL, s
	default:
		return SourceFile, s
	}
}

// View is the analysis input form.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.Field
	statusbar *status.Bar

	analysisService driving.AnalysisService
	notes           NotesFetcher
	ctx             context.Context

	lexical bool
	running bool
	err     error
	width   int
	height  int
	ready   bool
}

// NewView creates a new analysis view.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	analysisService driving.AnalysisService,
	notes NotesFetcher,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:          s,
		keymap:          km,
		input:           input.NewField(s, "Release notes", "notes.md, https://..., github:owner/repo@tag, gdrive:<id>"),
		statusbar:       status.NewBar(s, km),
		analysisService: analysisService,
		notes:           notes,
		ctx:             context.Background(),
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
	return v.input.Init()
}

// Update handles messages for the analysis view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnalysisCompleted:
		v.running = false
		if msg.Err != nil {
			v.setError(msg.Err)
			return v, v.input.Focus()
		}
		v.err = nil
		v.statusbar.Clear()
		return v, nil

	case messages.ErrorOccurred:
		v.running = false
		v.setError(msg.Err)
		return v, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	v.statusbar, cmd = v.statusbar.Update(msg)
	cmds = append(cmds, cmd)
	v.input, cmd = v.input.Update(msg)
	cmds = append(cmds, cmd)
	return v, tea.Batch(cmds...)
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.running {
		return v, nil
	}

	switch msg.Type {
	case tea.KeyEsc:
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case tea.KeyEnter:
		value := v.input.Value()
		if strings.TrimSpace(value) == "" {
			return v, nil
		}
		return v, v.Start(value)
	case tea.KeyCtrlL:
		v.lexical = !v.lexical
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// Start runs the analysis for the typed input.
func (v *View) Start(value string) tea.Cmd {
	v.running = true
	v.err = nil
	v.input.Blur()
	spin := v.statusbar.SetState(status.StateAnalyzing)
	return tea.Batch(spin, v.run(value))
}

func (v *View) run(value string) tea.Cmd {
	source, ref := ParseInput(value)
	lexical := v.lexical
	return func() tea.Msg {
		if v.analysisService == nil {
			return messages.AnalysisCompleted{Err: ErrNoAnalysisService}
		}
		if v.notes == nil {
			return messages.AnalysisCompleted{Err: fmt.Errorf("%w: no notes source configured", domain.ErrInvalidInput)}
		}

		notes, err := v.notes.FetchNotes(v.ctx, source, ref)
		if err != nil {
			return messages.AnalysisCompleted{Err: err}
		}
		req := notes.Request()
		req.ForceLexical = lexical
		result, err := v.analysisService.Analyze(v.ctx, req)
		return messages.AnalysisCompleted{Notes: notes, Result: result, Err: err}
	}
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// View renders the analysis form.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)
	sections = append(sections, v.styles.Title.Render("Analyze release notes"), "", v.input.View(), "")

	mode := "semantic when an embedding provider is configured"
	if v.lexical {
		mode = "lexical only"
	}
	sections = append(sections, v.styles.Muted.Render("Ranking: "+mode+"  [ctrl+l] toggle"), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	sections = append(sections,
		v.styles.Help.Render("[enter] analyze  [esc] back"),
		"",
		v.statusbar.View(),
	)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
}

// Reset clears the form for a new analysis.
func (v *View) Reset() {
	v.running = false
	v.err = nil
	v.input.SetValue("")
	v.input.Focus()
	v.statusbar.Clear()
}

// Running reports whether an analysis is in flight.
func (v *View) Running() bool {
	return v.running
}

// Lexical reports whether embeddings are skipped.
func (v *View) Lexical() bool {
	return v.lexical
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// Value returns the typed input.
func (v *View) Value() string {
	return v.input.Value()
}

// SetValue sets the typed input.
func (v *View) SetValue(value string) {
	v.input.SetValue(value)
}
