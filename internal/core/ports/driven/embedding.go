package driven

import "context"

// EmbeddingService turns release notes and articles into vectors for
// cosine ranking. A nil service means matching runs lexically.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per text, in order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is the vector length, 0 when the model is unknown.
	Dimensions() int

	ModelName() string

	// Ping checks reachability without embedding anything.
	Ping(ctx context.Context) error

	Close() error
}
