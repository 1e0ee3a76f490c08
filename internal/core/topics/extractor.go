package topics

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/custodia-labs/docgap/internal/core/domain"
)

// Extractor defaults.
const (
	DefaultMinLength   = 4
	DefaultCap         = domain.DefaultTopicCap
	DefaultPunctuation = ".,!?;:"
)

// DefaultStopWords returns the compiled-in stop-word set: common English
// words plus terms that appear in almost every release note.
func DefaultStopWords() []string {
	return []string{
		"the", "and", "with", "from", "have", "that", "this", "will",
		"about", "your", "also", "been", "more", "than", "when", "what",
		"where", "which", "help", "article", "information",
		"feature", "features", "improvement", "improvements",
		"update", "updates", "new", "version", "release",
	}
}

// Config configures an Extractor. Zero values select the defaults.
type Config struct {
	// StopWords replaces the default stop-word set when non-nil.
	StopWords []string

	// Punctuation is the set of characters stripped before splitting.
	Punctuation string

	// MinLength is the shortest token kept, in runes.
	MinLength int

	// Cap is the maximum number of topics returned.
	Cap int
}

// Extractor turns free text into a bounded, deduplicated list of topics.
// It is safe for concurrent use.
type Extractor struct {
	mu        sync.RWMutex
	stopWords map[string]struct{}

	punctuation *strings.Replacer
	minLength   int
	cap         int
}

// NewExtractor creates an Extractor from cfg.
func NewExtractor(cfg Config) *Extractor {
	if cfg.StopWords == nil {
		cfg.StopWords = DefaultStopWords()
	}
	if cfg.Punctuation == "" {
		cfg.Punctuation = DefaultPunctuation
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = DefaultMinLength
	}
	if cfg.Cap <= 0 {
		cfg.Cap = DefaultCap
	}

	pairs := make([]string, 0, 2*len(cfg.Punctuation))
	for _, r := range cfg.Punctuation {
		pairs = append(pairs, string(r), "")
	}

	e := &Extractor{
		punctuation: strings.NewReplacer(pairs...),
		minLength:   cfg.MinLength,
		cap:         cfg.Cap,
	}
	e.SetStopWords(cfg.StopWords)
	return e
}

// SetStopWords replaces the stop-word set.
func (e *Extractor) SetStopWords(words []string) {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			set[w] = struct{}{}
		}
	}

	e.mu.Lock()
	e.stopWords = set
	e.mu.Unlock()
}

// IsStopWord reports whether word is in the stop-word set.
func (e *Extractor) IsStopWord(word string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.stopWords[strings.ToLower(word)]
	return ok
}

// Cap returns the maximum number of topics Extract returns.
func (e *Extractor) Cap() int {
	return e.cap
}

// Extract returns the topics of text in first-seen order.
// Empty or whitespace-only text yields an empty slice.
func (e *Extractor) Extract(text string) []domain.Topic {
	cleaned := e.punctuation.Replace(strings.ToLower(text))

	e.mu.RLock()
	stop := e.stopWords
	e.mu.RUnlock()

	topics := make([]domain.Topic, 0, e.cap)
	seen := make(map[string]struct{})
	for _, token := range strings.Fields(cleaned) {
		if len(topics) == e.cap {
			break
		}
		if utf8.RuneCountInString(token) < e.minLength {
			continue
		}
		if _, ok := stop[token]; ok {
			continue
		}
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		topics = append(topics, domain.Topic(token))
	}
	return topics
}
