package ai

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docgap/internal/core/domain"
	"github.com/custodia-labs/docgap/internal/core/ports/driven"
)

// stubEmbedding returns a one-hot vector per text unless err is set.
type stubEmbedding struct {
	model      string
	err        error
	batchCalls atomic.Int32
	texts      [][]string
	closed     bool
}

func (s *stubEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	v, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return v[0], nil
}

func (s *stubEmbedding) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	s.batchCalls.Add(1)
	s.texts = append(s.texts, texts)
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), 1}
	}
	return out, nil
}

func (s *stubEmbedding) Dimensions() int              { return 2 }
func (s *stubEmbedding) ModelName() string            { return s.model }
func (s *stubEmbedding) Ping(_ context.Context) error { return nil }
func (s *stubEmbedding) Close() error                 { s.closed = true; return nil }

// stubLLM echoes the prompt unless err is set.
type stubLLM struct {
	model  string
	err    error
	calls  atomic.Int32
	closed bool
}

func (s *stubLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	s.calls.Add(1)
	if s.err != nil {
		return "", s.err
	}
	return prompt, nil
}

func (s *stubLLM) Chat(ctx context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	return s.Generate(ctx, messages[len(messages)-1].Content, driven.GenerateOptions{})
}

func (s *stubLLM) ModelName() string            { return s.model }
func (s *stubLLM) Ping(_ context.Context) error { return nil }
func (s *stubLLM) Close() error                 { s.closed = true; return nil }

func noLimitGuard() GuardConfig {
	cfg := DefaultGuardConfig()
	cfg.RequestsPerMinute = 0
	return cfg
}

// TestGuardedLLM_PassesThrough tests that healthy calls are unchanged.
func TestGuardedLLM_PassesThrough(t *testing.T) {
	inner := &stubLLM{model: "gpt-4o-mini"}
	guarded := NewGuardedLLM(inner, DefaultGuardConfig())

	out, err := guarded.Generate(context.Background(), "hello", driven.GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	out, err = guarded.Chat(context.Background(), []driven.ChatMessage{{Role: "user", Content: "hi"}}, driven.ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, "hi", out)
	assert.Equal(t, "gpt-4o-mini", guarded.ModelName())
}

// TestGuardedLLM_OpensAfterFailures tests that repeated failures stop
// further calls and surface ErrLLMUnavailable.
func TestGuardedLLM_OpensAfterFailures(t *testing.T) {
	inner := &stubLLM{model: "m", err: errors.New("502 bad gateway")}
	guarded := NewGuardedLLM(inner, noLimitGuard())

	for range 3 {
		_, err := guarded.Generate(context.Background(), "p", driven.GenerateOptions{})
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrLLMUnavailable)
	}
	assert.Equal(t, gobreaker.StateOpen, guarded.guard.state())

	_, err := guarded.Generate(context.Background(), "p", driven.GenerateOptions{})
	require.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.Equal(t, int32(3), inner.calls.Load())
}

// TestGuardedEmbedding_CanceledDoesNotTrip tests that caller cancellation
// is not counted against the provider.
func TestGuardedEmbedding_CanceledDoesNotTrip(t *testing.T) {
	inner := &stubEmbedding{model: "m", err: context.Canceled}
	guarded := NewGuardedEmbedding(inner, noLimitGuard())

	for range 5 {
		_, err := guarded.EmbedBatch(context.Background(), []string{"a"})
		require.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, gobreaker.StateClosed, guarded.guard.state())
}

// TestGuardedEmbedding_OpenState tests that an open breaker maps to
// ErrEmbeddingUnavailable.
func TestGuardedEmbedding_OpenState(t *testing.T) {
	inner := &stubEmbedding{model: "m", err: context.DeadlineExceeded}
	guarded := NewGuardedEmbedding(inner, noLimitGuard())

	for range 3 {
		_, _ = guarded.Embed(context.Background(), "a")
	}

	_, err := guarded.Embed(context.Background(), "a")
	require.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Equal(t, 2, guarded.Dimensions())
}

// TestGuard_RateLimited tests that a limiter wait that cannot finish before
// the deadline returns ErrRateLimited.
func TestGuard_RateLimited(t *testing.T) {
	cfg := DefaultGuardConfig()
	cfg.RequestsPerMinute = 1
	cfg.Burst = 1
	guarded := NewGuardedLLM(&stubLLM{model: "m"}, cfg)

	_, err := guarded.Generate(context.Background(), "first", driven.GenerateOptions{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = guarded.Generate(ctx, "second", driven.GenerateOptions{})
	require.ErrorIs(t, err, domain.ErrRateLimited)
}
