package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/docgap/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docgap/internal/core/domain"
	"github.com/custodia-labs/docgap/internal/core/ports/driven"
)

// --- Mock implementations ---

// testVocabulary defines the dimensions of mockEmbedder vectors.
var testVocabulary = []string{
	"ifc", "export", "clash", "detection", "rule", "sets",
	"filtering", "advanced", "bcf", "performance", "viewer", "issues",
}

// mockEmbedder implements driven.EmbeddingService with bag-of-words vectors
// over testVocabulary, so cosine similarity follows shared vocabulary.
type mockEmbedder struct {
	// failBatch makes EmbedBatch fail when it returns true for the batch.
	failBatch func(texts []string) bool
	// failQuery makes Embed fail.
	failQuery bool
	// delay stalls EmbedBatch to shuffle completion order.
	delay func(texts []string) time.Duration
	// hangBatch makes EmbedBatch wait for its context when it returns true.
	hangBatch func(texts []string) bool
	// hangQuery makes Embed wait for its context.
	hangQuery bool

	batchCalls atomic.Int32
	queryCalls atomic.Int32
}

func vectorize(text string) []float32 {
	vec := make([]float32, len(testVocabulary))
	for _, tok := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}) {
		for i, word := range testVocabulary {
			if tok == word {
				vec[i]++
			}
		}
	}
	return vec
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.queryCalls.Add(1)
	if m.hangQuery {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.failQuery {
		return nil, errors.New("embedding provider unavailable")
	}
	return vectorize(text), nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.batchCalls.Add(1)
	if m.delay != nil {
		time.Sleep(m.delay(texts))
	}
	if m.hangBatch != nil && m.hangBatch(texts) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.failBatch != nil && m.failBatch(texts) {
		return nil, errors.New("batch rejected")
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = vectorize(text)
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int { return len(testVocabulary) }
func (m *mockEmbedder) ModelName() string { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error { return nil }

// mockLLM implements driven.LLMService with a canned response function.
type mockLLM struct {
	mu       sync.Mutex
	hang     bool
	respond  func(prompt string) (string, error)
	prompts  []string
	messages [][]driven.ChatMessage
	opts     []driven.ChatOptions
}

func (m *mockLLM) reply(prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	if m.respond == nil {
		return "", nil
	}
	return m.respond(prompt)
}

func (m *mockLLM) Generate(ctx context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	if m.hang {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return m.reply(prompt)
}

func (m *mockLLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.mu.Lock()
	m.messages = append(m.messages, messages)
	m.opts = append(m.opts, opts)
	m.mu.Unlock()
	if m.hang {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return m.reply(messages[len(messages)-1].Content)
}

func (m *mockLLM) ModelName() string { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error { return nil }

func (m *mockLLM) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// mockTranslator implements driven.Translator for a fixed language set.
type mockTranslator struct {
	languages map[string]bool
	err       error
	calls     atomic.Int32
}

func (m *mockTranslator) Name() string { return "mock-translator" }

func (m *mockTranslator) Supports(language string) bool {
	return m.languages[strings.ToLower(language)]
}

func (m *mockTranslator) Translate(_ context.Context, text, language string) (string, error) {
	m.calls.Add(1)
	if m.err != nil {
		return "", m.err
	}
	return "[" + language + "] " + text, nil
}

// mockPromptStore implements driven.PromptStore from a map.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", domain.ErrNotFound
}

func (m *mockPromptStore) Reload() {}

// flakyRepository wraps an article store and fails ListArticles on chosen pages.
type flakyRepository struct {
	*memory.ArticleStore
	failPages map[int]error
	listCalls atomic.Int32
}

func (r *flakyRepository) ListArticles(ctx context.Context, page, perPage int) (*domain.ArticlePage, error) {
	r.listCalls.Add(1)
	if err, ok := r.failPages[page]; ok {
		return nil, err
	}
	return r.ArticleStore.ListArticles(ctx, page, perPage)
}

// testCorpus is a small help center used across service tests.
func testCorpus() []domain.Document {
	return []domain.Document{
		{ID: "101", Title: "IFC Export Settings", Body: "How to configure IFC export and export performance options."},
		{ID: "102", Title: "Clash Detection Basics", Body: "Run clash detection between disciplines."},
		{ID: "103", Title: "Working with Rule Sets", Body: "Create rule sets and share rule sets with your team."},
		{ID: "104", Title: "Issue Management", Body: "Track BCF issues. BCF topics sync with the viewer."},
		{ID: "105", Title: "Installing the Desktop App", Body: "Download and install."},
	}
}

func newTestRepository() *flakyRepository {
	return &flakyRepository{ArticleStore: memory.NewArticleStore("test", testCorpus()...)}
}
