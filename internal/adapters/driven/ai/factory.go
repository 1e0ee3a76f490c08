// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	geminiembed "github.com/custodia-labs/docgap/internal/adapters/driven/embedding/gemini"
	ollamaembed "github.com/custodia-labs/docgap/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/docgap/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/docgap/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/custodia-labs/docgap/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/custodia-labs/docgap/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/docgap/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/docgap/internal/core/domain"
	"github.com/custodia-labs/docgap/internal/core/ports/driven"
	"github.com/custodia-labs/docgap/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

const fixHint = "Run 'docgap settings set' to fix"

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	Warnings         []string // Non-fatal issues that caused fallback.
	FellBack         bool     // True if relevance ranking fell back to lexical scoring.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// InitOptions controls how Initialise decorates the services.
type InitOptions struct {
	// Cache stores embeddings when non-nil.
	Cache driven.Cache

	// EmbeddingTTL is the lifetime of cached embeddings.
	EmbeddingTTL time.Duration

	// Guard configures rate limiting and circuit breaking.
	Guard GuardConfig

	// SkipPing creates services without checking connectivity.
	SkipPing bool
}

// Initialise creates the configured AI services. A provider that cannot be
// created or reached is left nil with a warning: a missing embedding
// service means lexical ranking, a missing LLM disables drafting.
func Initialise(settings *domain.AppSettings, opts InitOptions) *InitResult {
	logger.Section("AI services")
	result := &InitResult{}

	embedding, err := createEmbedding(&settings.Embedding, opts.SkipPing)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, err.Error())
		result.FellBack = true
	case embedding == nil:
		logger.Info("No embedding provider configured, using lexical ranking")
		result.FellBack = true
	default:
		var svc driven.EmbeddingService = NewGuardedEmbedding(embedding, opts.Guard)
		if opts.Cache != nil {
			svc = NewCachedEmbedding(svc, opts.Cache, opts.EmbeddingTTL)
		}
		result.EmbeddingService = svc
		logger.Info("Embedding: %s (%s)", settings.Embedding.Provider, embedding.ModelName())
	}

	llm, err := createLLM(&settings.LLM, opts.SkipPing)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, err.Error())
	case llm == nil:
		logger.Info("No LLM provider configured, drafting disabled")
	default:
		result.LLMService = NewGuardedLLM(llm, opts.Guard)
		logger.Info("LLM: %s (%s)", settings.LLM.Provider, llm.ModelName())
	}

	for _, w := range result.Warnings {
		logger.Warn("%s", w)
	}
	return result
}

// pinger is the connectivity check shared by both service kinds.
type pinger interface {
	Ping(ctx context.Context) error
}

// ping checks svc within pingTimeout.
func ping(svc pinger) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// createEmbedding builds the configured embedding service and, unless
// skipPing, checks it is reachable. Unconfigured yields (nil, nil).
func createEmbedding(settings *domain.EmbeddingSettings, skipPing bool) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrEmbeddingUnavailable, err, fixHint)
	}
	if svc == nil || skipPing {
		return svc, nil
	}
	if err := ping(svc); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). %s", domain.ErrEmbeddingUnavailable, err, fixHint)
	}
	return svc, nil
}

// createLLM is createEmbedding for the LLM.
func createLLM(settings *domain.LLMSettings, skipPing bool) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrLLMUnavailable, err, fixHint)
	}
	if svc == nil || skipPing {
		return svc, nil
	}
	if err := ping(svc); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). %s", domain.ErrLLMUnavailable, err, fixHint)
	}
	return svc, nil
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil without error if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		if settings != nil && settings.Provider != "" && !settings.Provider.SupportsEmbedding() {
			return nil, fmt.Errorf("%w: %s does not support embeddings, use ollama, openai or gemini",
				domain.ErrUnsupportedProvider, settings.Provider)
		}
		return nil, nil
	}

	dimensions := domain.EmbeddingDimensions()[settings.Model]

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderGemini:
		return geminiembed.NewEmbeddingService(context.Background(), geminiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
		})

	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedProvider, settings.Provider)
	}
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil without error if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderGemini:
		return geminillm.NewLLMService(context.Background(), geminillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedProvider, settings.Provider)
	}
}
