package messages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/docgap/internal/core/domain"
)

func TestViewType_String(t *testing.T) {
	tests := []struct {
		view     ViewType
		expected string
	}{
		{ViewMenu, "menu"},
		{ViewAnalyze, "analyze"},
		{ViewResults, "results"},
		{ViewArticles, "articles"},
		{ViewArticle, "article"},
		{ViewSettings, "settings"},
		{ViewHelp, "help"},
		{ViewType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.view.String())
		})
	}
}

func TestViewType_Distinct(t *testing.T) {
	views := []ViewType{ViewMenu, ViewAnalyze, ViewResults, ViewArticles, ViewArticle, ViewSettings, ViewHelp}
	seen := make(map[ViewType]bool)
	for _, v := range views {
		assert.False(t, seen[v], "duplicate view %s", v)
		seen[v] = true
	}
}

func TestAnalysisCompleted(t *testing.T) {
	t.Run("with result", func(t *testing.T) {
		msg := AnalysisCompleted{
			Notes:  &domain.ReleaseNotes{Text: "notes", Version: "2.1"},
			Result: &domain.AnalysisResult{ID: "run-1"},
		}
		assert.Equal(t, "run-1", msg.Result.ID)
		assert.Equal(t, "2.1", msg.Notes.Version)
		assert.NoError(t, msg.Err)
	})

	t.Run("with error", func(t *testing.T) {
		msg := AnalysisCompleted{Err: domain.ErrEmptyReleaseNotes}
		assert.Nil(t, msg.Result)
		assert.ErrorIs(t, msg.Err, domain.ErrEmptyReleaseNotes)
	})
}

func TestArticleSelected(t *testing.T) {
	msg := ArticleSelected{Document: domain.Document{ID: "42", Title: "IFC Export"}, From: ViewResults}
	assert.Equal(t, "42", msg.Document.ID)
	assert.Equal(t, ViewResults, msg.From)
}

func TestSuggestionCompleted(t *testing.T) {
	msg := SuggestionCompleted{ArticleID: "42", Err: errors.New("timeout")}
	assert.Equal(t, "42", msg.ArticleID)
	assert.EqualError(t, msg.Err, "timeout")
}
