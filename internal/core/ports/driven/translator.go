package driven

import "context"

// Translator is a machine translation service for a fixed set of
// languages. DraftingService prefers it over the LLM where it applies.
type Translator interface {
	// Name identifies the service in logs.
	Name() string

	// Supports reports whether language (a name or a code) can be translated.
	Supports(language string) bool

	// Translate returns text in language.
	Translate(ctx context.Context, text, language string) (string, error)
}
