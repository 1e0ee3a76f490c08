// Package openai provides an LLM service adapter using the OpenAI API.
package openai

import (
	"context"
	"errors"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/custodia-labs/docgap/internal/adapters/driven/openaiapi"
	"github.com/custodia-labs/docgap/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultLLMModel   = "gpt-4o-mini"
	DefaultLLMTimeout = 120 * time.Second
)

var errNoChoices = errors.New("openai: no choices returned")

// LLMConfig configures the OpenAI LLM service. Only APIKey is required.
type LLMConfig struct {
	APIKey string
	// BaseURL points at Azure OpenAI or a compatible API.
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService runs chat completions against OpenAI.
type LLMService struct {
	client *goopenai.Client
	model  string
}

// NewLLMService creates the service, defaulting the model and timeout.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}
	client, err := openaiapi.NewClient(cfg.APIKey, cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	return &LLMService{client: client, model: cfg.Model}, nil
}

// Generate sends prompt as a single user turn.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	req := s.request([]driven.ChatMessage{{Role: goopenai.ChatMessageRoleUser, Content: prompt}},
		opts.MaxTokens, opts.Temperature, opts.JSON)
	req.Stop = opts.StopWords
	return s.complete(ctx, req)
}

// Chat continues a multi-turn conversation.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	return s.complete(ctx, s.request(messages, opts.MaxTokens, opts.Temperature, opts.JSON))
}

func (s *LLMService) request(
	messages []driven.ChatMessage, maxTokens int, temperature float64, jsonMode bool,
) goopenai.ChatCompletionRequest {
	req := goopenai.ChatCompletionRequest{
		Model:       s.model,
		Messages:    make([]goopenai.ChatCompletionMessage, len(messages)),
		MaxTokens:   maxTokens,
		Temperature: float32(temperature),
	}
	for i, m := range messages {
		req.Messages[i] = goopenai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}
	if jsonMode {
		req.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	return req
}

func (s *LLMService) complete(ctx context.Context, req goopenai.ChatCompletionRequest) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", openaiapi.Wrap("openai chat completion", err)
	}
	if len(resp.Choices) == 0 {
		return "", errNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}

func (s *LLMService) ModelName() string {
	return s.model
}

func (s *LLMService) Ping(ctx context.Context) error {
	return openaiapi.Ping(ctx, s.client)
}

func (s *LLMService) Close() error {
	return nil
}
