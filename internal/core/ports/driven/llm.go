package driven

import "context"

// LLMService backs impact scoring, update drafting, translation and
// semantic gap suggestions. A nil service makes those operations return
// domain.ErrLLMUnavailable.
type LLMService interface {
	// Generate answers a single prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// Chat answers the last message given the ones before it.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	ModelName() string

	// Ping checks reachability without spending tokens where the provider allows.
	Ping(ctx context.Context) error

	Close() error
}

// GenerateOptions tunes one Generate call. Zero values keep provider defaults.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
	StopWords   []string

	// JSON requests a JSON object reply from providers that support it.
	JSON bool
}

// ChatMessage is one turn. Role is "system", "user" or "assistant".
type ChatMessage struct {
	Role    string
	Content string
}

// ChatOptions tunes one Chat call.
type ChatOptions struct {
	MaxTokens   int
	Temperature float64
	JSON        bool
}
