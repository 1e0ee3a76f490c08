package analyze

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docgap/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docgap/internal/core/domain"
)

type mockAnalysis struct {
	result  *domain.AnalysisResult
	err     error
	lastReq domain.AnalysisRequest
}

func (m *mockAnalysis) Analyze(_ context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	m.lastReq = req
	return m.result, m.err
}

func (m *mockAnalysis) DetectGaps(_ context.Context, _ domain.AnalysisRequest) ([]domain.Gap, error) {
	return nil, m.err
}

func (m *mockAnalysis) SuggestGaps(_ context.Context, _ domain.AnalysisRequest) ([]domain.Gap, error) {
	return nil, m.err
}

func (m *mockAnalysis) Classify(score float64, scale domain.Scale) domain.Label {
	return domain.Classify(score, scale)
}

type mockNotes struct {
	notes      *domain.ReleaseNotes
	err        error
	lastSource string
	lastRef    string
}

func (m *mockNotes) FetchNotes(_ context.Context, source, ref string) (*domain.ReleaseNotes, error) {
	m.lastSource = source
	m.lastRef = ref
	return m.notes, m.err
}

func typeText(v *View, s string) {
	for _, r := range s {
		v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// findCompleted runs a batched command tree and returns the analysis message.
func findCompleted(t *testing.T, cmd tea.Cmd) messages.AnalysisCompleted {
	t.Helper()
	require.NotNil(t, cmd)
	switch msg := cmd().(type) {
	case messages.AnalysisCompleted:
		return msg
	case tea.BatchMsg:
		for _, c := range msg {
			if c == nil {
				continue
			}
			if done, ok := c().(messages.AnalysisCompleted); ok {
				return done
			}
		}
	}
	t.Fatal("no AnalysisCompleted message produced")
	return messages.AnalysisCompleted{}
}

func TestParseInput(t *testing.T) {
	tests := []struct {
		input  string
		source string
		ref    string
	}{
		{"notes/2.1.md", SourceFile, "notes/2.1.md"},
		{"  notes.txt  ", SourceFile, "notes.txt"},
		{"https://example.com/releases/2.1", SourceURL, "https://example.com/releases/2.1"},
		{"http://example.com/notes", SourceURL, "http://example.com/notes"},
		{"github:acme/app@v2.1.0", SourceGitHub, "acme/app@v2.1.0"},
		{"gdrive:1AbCdEf", SourceDrive, "1AbCdEf"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			source, ref := ParseInput(tt.input)
			assert.Equal(t, tt.source, source)
			assert.Equal(t, tt.ref, ref)
		})
	}
}

func TestNewView(t *testing.T) {
	view := NewView(nil, nil, &mockAnalysis{}, &mockNotes{})

	require.NotNil(t, view)
	assert.False(t, view.Running())
	assert.False(t, view.Lexical())
	assert.NotNil(t, view.Init())
	assert.Contains(t, view.View(), "Initialising")
}

func TestView_Submit(t *testing.T) {
	analysis := &mockAnalysis{result: &domain.AnalysisResult{ID: "run-1"}}
	notes := &mockNotes{notes: &domain.ReleaseNotes{Text: "IFC export", Version: "2.1"}}
	view := NewView(nil, nil, analysis, notes)
	view.SetDimensions(100, 30)

	typeText(view, "github:acme/app@v2.1")
	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.True(t, view.Running())
	done := findCompleted(t, cmd)
	require.NoError(t, done.Err)
	assert.Equal(t, "run-1", done.Result.ID)
	assert.Equal(t, "2.1", done.Notes.Version)
	assert.Equal(t, SourceGitHub, notes.lastSource)
	assert.Equal(t, "acme/app@v2.1", notes.lastRef)
	assert.Equal(t, "IFC export", analysis.lastReq.ReleaseNotes)
	assert.False(t, analysis.lastReq.ForceLexical)

	view.Update(done)
	assert.False(t, view.Running())
	assert.NoError(t, view.Err())
}

func TestView_Submit_Lexical(t *testing.T) {
	analysis := &mockAnalysis{result: &domain.AnalysisResult{}}
	view := NewView(nil, nil, analysis, &mockNotes{notes: &domain.ReleaseNotes{Text: "notes"}})
	view.SetDimensions(100, 30)

	view.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.True(t, view.Lexical())
	assert.Contains(t, view.View(), "lexical only")

	view.SetValue("notes.md")
	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	findCompleted(t, cmd)

	assert.True(t, analysis.lastReq.ForceLexical)
}

func TestView_Submit_EmptyInputIgnored(t *testing.T) {
	view := NewView(nil, nil, &mockAnalysis{}, &mockNotes{})

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.False(t, view.Running())
}

func TestView_Submit_Errors(t *testing.T) {
	tests := []struct {
		name     string
		analysis *mockAnalysis
		notes    NotesFetcher
		wantErr  error
	}{
		{
			name:     "notes fetch fails",
			analysis: &mockAnalysis{},
			notes:    &mockNotes{err: domain.ErrAuthInvalid},
			wantErr:  domain.ErrAuthInvalid,
		},
		{
			name:     "analysis fails",
			analysis: &mockAnalysis{err: domain.ErrCorpusUnavailable},
			notes:    &mockNotes{notes: &domain.ReleaseNotes{Text: "x"}},
			wantErr:  domain.ErrCorpusUnavailable,
		},
		{
			name:     "no notes fetcher",
			analysis: &mockAnalysis{},
			notes:    nil,
			wantErr:  domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := NewView(nil, nil, tt.analysis, tt.notes)
			view.SetDimensions(100, 30)

			done := findCompleted(t, view.Start("notes.md"))
			assert.ErrorIs(t, done.Err, tt.wantErr)

			view.Update(done)
			assert.False(t, view.Running())
			assert.ErrorIs(t, view.Err(), tt.wantErr)
			assert.Contains(t, view.View(), "Error")
		})
	}
}

func TestView_NoAnalysisService(t *testing.T) {
	view := NewView(nil, nil, nil, &mockNotes{})

	done := findCompleted(t, view.Start("notes.md"))

	assert.ErrorIs(t, done.Err, ErrNoAnalysisService)
}

func TestView_KeysIgnoredWhileRunning(t *testing.T) {
	view := NewView(nil, nil, &mockAnalysis{}, &mockNotes{})
	view.Start("notes.md")

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.Nil(t, cmd)
}

func TestView_Esc(t *testing.T) {
	view := NewView(nil, nil, &mockAnalysis{}, &mockNotes{})

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}

func TestView_Reset(t *testing.T) {
	view := NewView(nil, nil, &mockAnalysis{}, &mockNotes{})
	view.SetValue("notes.md")
	view.Update(messages.ErrorOccurred{Err: errors.New("boom")})
	require.Error(t, view.Err())

	view.Reset()

	assert.Equal(t, "", view.Value())
	assert.NoError(t, view.Err())
	assert.False(t, view.Running())
}
