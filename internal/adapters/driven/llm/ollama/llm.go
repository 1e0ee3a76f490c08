// Package ollama generates text with a local Ollama model.
package ollama

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/docgap/internal/adapters/driven/ollamahttp"
	"github.com/custodia-labs/docgap/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

// Defaults for unset LLMConfig fields. Drafting a long article on a
// laptop GPU is slow, hence the generous timeout.
const (
	DefaultLLMModel   = "llama3.2"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig selects the server and model.
type LLMConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService calls /api/chat for both single prompts and conversations,
// so JSON mode behaves the same for each.
type LLMService struct {
	client *ollamahttp.Client
	model  string
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type options struct {
	NumPredict  int      `json:"num_predict,omitempty"`
	Temperature float64  `json:"temperature,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
	Stream   bool      `json:"stream"`
	Format   string    `json:"format,omitempty"`
	Options  *options  `json:"options,omitempty"`
}

// NewLLMService applies defaults to cfg and returns the service.
func NewLLMService(cfg LLMConfig) *LLMService {
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}
	return &LLMService{
		client: ollamahttp.New(cfg.BaseURL, cfg.Timeout),
		model:  cfg.Model,
	}
}

// Generate answers a single user prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	req := s.request([]message{{Role: "user", Content: prompt}}, opts.JSON)
	req.Options = generationOptions(opts.MaxTokens, opts.Temperature, opts.StopWords)
	return s.chat(ctx, req)
}

// Chat continues a conversation.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	msgs := make([]message, len(messages))
	for i, m := range messages {
		msgs[i] = message{Role: m.Role, Content: m.Content}
	}
	req := s.request(msgs, opts.JSON)
	req.Options = generationOptions(opts.MaxTokens, opts.Temperature, nil)
	return s.chat(ctx, req)
}

func (s *LLMService) request(msgs []message, jsonMode bool) chatRequest {
	req := chatRequest{Model: s.model, Messages: msgs}
	if jsonMode {
		req.Format = "json"
	}
	return req
}

// generationOptions is nil when every option is unset so Ollama keeps
// the model's defaults.
func generationOptions(maxTokens int, temperature float64, stop []string) *options {
	if maxTokens <= 0 && temperature <= 0 && len(stop) == 0 {
		return nil
	}
	return &options{NumPredict: maxTokens, Temperature: temperature, Stop: stop}
}

func (s *LLMService) chat(ctx context.Context, req chatRequest) (string, error) {
	var resp struct {
		Message message `json:"message"`
		Error   string  `json:"error,omitempty"`
	}
	if err := s.client.Post(ctx, "/api/chat", req, &resp); err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", fmt.Errorf("ollama error: %s", resp.Error)
	}
	return resp.Message.Content, nil
}

// ModelName returns the chat model.
func (s *LLMService) ModelName() string { return s.model }

// Ping checks the server is up.
func (s *LLMService) Ping(ctx context.Context) error { return s.client.Ping(ctx) }

// Close is a no-op.
func (s *LLMService) Close() error { return nil }
