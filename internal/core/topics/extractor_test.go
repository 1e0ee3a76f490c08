package topics

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docgap/internal/core/domain"
)

// TestExtract tests topic extraction rules
func TestExtract(t *testing.T) {
	e := NewExtractor(Config{})

	tests := []struct {
		name     string
		input    string
		expected []domain.Topic
	}{
		{name: "empty", input: "", expected: []domain.Topic{}},
		{name: "whitespace", input: "  \n\t ", expected: []domain.Topic{}},
		{name: "short tokens dropped", input: "a big cat ran", expected: []domain.Topic{}},
		{name: "lower-cased", input: "Clash Detection", expected: []domain.Topic{"clash", "detection"}},
		{name: "punctuation stripped", input: "Viewer, faster! Rules; markup:", expected: []domain.Topic{"viewer", "faster", "rules", "markup"}},
		{name: "stop words dropped", input: "This release adds new features with Filtering", expected: []domain.Topic{"adds", "filtering"}},
		{name: "dedupe keeps first", input: "model viewer Model MODEL viewer", expected: []domain.Topic{"model", "viewer"}},
		{name: "dot inside version removed", input: "IFC4.4 support", expected: []domain.Topic{"ifc44", "support"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, e.Extract(tt.input))
		})
	}
}

// TestExtract_Cap tests the cardinality bound
func TestExtract_Cap(t *testing.T) {
	e := NewExtractor(Config{})

	var words []string
	for i := 0; i < 100; i++ {
		words = append(words, "topic"+strings.Repeat("x", i))
	}
	got := e.Extract(strings.Join(words, " "))

	assert.Len(t, got, DefaultCap)
	assert.Equal(t, domain.Topic("topic"), got[0])
}

// TestExtract_CustomCap tests a configured cap
func TestExtract_CustomCap(t *testing.T) {
	e := NewExtractor(Config{Cap: 2})
	assert.Len(t, e.Extract("alpha bravo charlie delta"), 2)
	assert.Equal(t, 2, e.Cap())
}

// TestExtract_Idempotent tests that extraction is stable on its own output
func TestExtract_Idempotent(t *testing.T) {
	e := NewExtractor(Config{})
	inputs := []string{
		"We added IFC 4.4 import support and improved clash detection.",
		"Advanced Filtering lets you filter models. Advanced Filtering is fast. Try Advanced Filtering!",
		"",
		strings.Repeat("performance rendering ", 40),
	}

	for _, in := range inputs {
		first := e.Extract(in)
		parts := make([]string, len(first))
		for i, topic := range first {
			parts[i] = string(topic)
		}
		second := e.Extract(strings.Join(parts, " "))
		assert.Equal(t, first, second, "input %q", in)
	}
}

// TestExtract_TopicInvariants tests length and stop-word invariants on output
func TestExtract_TopicInvariants(t *testing.T) {
	e := NewExtractor(Config{})
	got := e.Extract("The new version will have more dashboards, reports and export options from the help article")

	require.NotEmpty(t, got)
	for _, topic := range got {
		assert.Greater(t, len([]rune(string(topic))), 3)
		assert.False(t, e.IsStopWord(string(topic)), topic)
	}
}

// TestExtractor_SetStopWords tests runtime stop-word replacement
func TestExtractor_SetStopWords(t *testing.T) {
	e := NewExtractor(Config{})
	assert.Equal(t, []domain.Topic{"dashboard", "export"}, e.Extract("dashboard export"))

	e.SetStopWords([]string{" Dashboard "})
	assert.Equal(t, []domain.Topic{"export"}, e.Extract("dashboard export"))
	assert.True(t, e.IsStopWord("DASHBOARD"))
	assert.False(t, e.IsStopWord("release"))
}

// TestExtractor_ConcurrentReload tests concurrent extraction during reloads
func TestExtractor_ConcurrentReload(t *testing.T) {
	e := NewExtractor(Config{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				e.Extract("clash detection rules viewer")
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				e.SetStopWords(DefaultStopWords())
			}
		}()
	}
	wg.Wait()
}

// TestNewExtractor_CustomPunctuation tests a configured punctuation set
func TestNewExtractor_CustomPunctuation(t *testing.T) {
	e := NewExtractor(Config{Punctuation: "-"})
	assert.Equal(t, []domain.Topic{"clashdetection", "rules."}, e.Extract("clash-detection rules."))
}
