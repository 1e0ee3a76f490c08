package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyReleaseNotes indicates an analysis was requested without release notes.
	// It is returned before any external call is made.
	ErrEmptyReleaseNotes = errors.New("no input provided")

	// ErrCorpusUnavailable indicates the article corpus could not be obtained.
	// The content repository failed and no cached corpus was available.
	ErrCorpusUnavailable = errors.New("upstream data temporarily unavailable")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Drafting, impact analysis and translation are disabled.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Relevance ranking degrades to lexical matching without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrUnsupportedProvider indicates an unknown AI or help-center provider.
	ErrUnsupportedProvider = errors.New("unsupported provider")

	// ErrUnsupportedFormat indicates an unknown export format.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrRateLimited indicates an upstream API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrAuthInvalid indicates the upstream credentials were rejected.
	ErrAuthInvalid = errors.New("authentication invalid")
)
