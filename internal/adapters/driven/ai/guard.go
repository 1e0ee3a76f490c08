package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/docgap/internal/core/domain"
	"github.com/custodia-labs/docgap/internal/core/ports/driven"
	"github.com/custodia-labs/docgap/internal/logger"
)

// Ensure the guards implement the interfaces.
var (
	_ driven.EmbeddingService = (*GuardedEmbedding)(nil)
	_ driven.LLMService       = (*GuardedLLM)(nil)
)

// GuardConfig tunes the rate limiter and circuit breaker around a provider.
type GuardConfig struct {
	// RequestsPerMinute bounds outbound calls. Zero disables the limiter.
	RequestsPerMinute int

	// Burst is the limiter bucket size.
	Burst int

	// MinRequests is the number of calls in a window before the breaker may trip.
	MinRequests uint32

	// FailureRatio trips the breaker once reached within a window.
	FailureRatio float64

	// Interval is the window after which closed-state counts reset.
	Interval time.Duration

	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration
}

// DefaultGuardConfig returns limits suited to hosted provider free tiers.
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		RequestsPerMinute: 300,
		Burst:             10,
		MinRequests:       3,
		FailureRatio:      0.6,
		Interval:          10 * time.Second,
		OpenTimeout:       30 * time.Second,
	}
}

// guard combines a limiter and a breaker.
type guard struct {
	limiter     *rate.Limiter
	breaker     *gobreaker.CircuitBreaker
	unavailable error
}

func newGuard(name string, cfg GuardConfig, unavailable error) *guard {
	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		burst := max(cfg.Burst, 1)
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), burst)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("[%s] circuit breaker %s -> %s", name, from, to)
		},
		// A caller giving up is not a provider fault. Deadlines still count.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &guard{limiter: limiter, breaker: breaker, unavailable: unavailable}
}

// do waits for a token and runs fn through the breaker.
func (g *guard) do(ctx context.Context, fn func() (any, error)) (any, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrRateLimited, err)
		}
	}

	out, err := g.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", g.unavailable, err)
	}
	return out, err
}

// state reports the breaker state for diagnostics.
func (g *guard) state() gobreaker.State {
	return g.breaker.State()
}

// GuardedEmbedding rate limits an embedding service and stops calling it
// while it keeps failing.
type GuardedEmbedding struct {
	inner driven.EmbeddingService
	guard *guard
}

// NewGuardedEmbedding wraps an embedding service.
func NewGuardedEmbedding(inner driven.EmbeddingService, cfg GuardConfig) *GuardedEmbedding {
	return &GuardedEmbedding{
		inner: inner,
		guard: newGuard("embedding:"+inner.ModelName(), cfg, domain.ErrEmbeddingUnavailable),
	}
}

// Embed generates a vector embedding for the given text.
func (g *GuardedEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := g.guard.do(ctx, func() (any, error) {
		return g.inner.Embed(ctx, text)
	})
	if err != nil {
		return nil, err
	}
	return out.([]float32), nil
}

// EmbedBatch generates embeddings for multiple texts.
func (g *GuardedEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out, err := g.guard.do(ctx, func() (any, error) {
		return g.inner.EmbedBatch(ctx, texts)
	})
	if err != nil {
		return nil, err
	}
	return out.([][]float32), nil
}

// Dimensions returns the embedding vector size.
func (g *GuardedEmbedding) Dimensions() int { return g.inner.Dimensions() }

// ModelName returns the wrapped model name.
func (g *GuardedEmbedding) ModelName() string { return g.inner.ModelName() }

// Ping bypasses the guard so that a health check always reaches the provider.
func (g *GuardedEmbedding) Ping(ctx context.Context) error { return g.inner.Ping(ctx) }

// Close releases the wrapped service.
func (g *GuardedEmbedding) Close() error { return g.inner.Close() }

// GuardedLLM rate limits an LLM service and stops calling it while it
// keeps failing.
type GuardedLLM struct {
	inner driven.LLMService
	guard *guard
}

// NewGuardedLLM wraps an LLM service.
func NewGuardedLLM(inner driven.LLMService, cfg GuardConfig) *GuardedLLM {
	return &GuardedLLM{
		inner: inner,
		guard: newGuard("llm:"+inner.ModelName(), cfg, domain.ErrLLMUnavailable),
	}
}

// Generate produces text completion from a prompt.
func (g *GuardedLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	out, err := g.guard.do(ctx, func() (any, error) {
		return g.inner.Generate(ctx, prompt, opts)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

// Chat conducts a multi-turn conversation.
func (g *GuardedLLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	out, err := g.guard.do(ctx, func() (any, error) {
		return g.inner.Chat(ctx, messages, opts)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

// ModelName returns the wrapped model name.
func (g *GuardedLLM) ModelName() string { return g.inner.ModelName() }

// Ping bypasses the guard so that a health check always reaches the provider.
func (g *GuardedLLM) Ping(ctx context.Context) error { return g.inner.Ping(ctx) }

// Close releases the wrapped service.
func (g *GuardedLLM) Close() error { return g.inner.Close() }
