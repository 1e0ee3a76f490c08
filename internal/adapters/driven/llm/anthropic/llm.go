// Package anthropic drafts and scores with Claude over the messages API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/docgap/internal/core/domain"
	"github.com/custodia-labs/docgap/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

// Defaults for unset Config fields.
const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-3-5-sonnet-latest"
	DefaultTimeout   = 120 * time.Second
	DefaultMaxTokens = 2048

	anthropicVersion = "2023-06-01"

	// The messages API has no response format switch, so JSON mode is
	// requested in the system prompt.
	jsonInstruction = "Respond with a single valid JSON value and nothing else."
)

// Config selects the account and model. APIKey is required.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService calls /v1/messages.
type LLMService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
	StopSeqs    []string  `json:"stop_sequences,omitempty"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewLLMService applies defaults to cfg and returns the service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &LLMService{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Generate answers a single user prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	req := s.request("", []message{{Role: "user", Content: prompt}}, opts.MaxTokens, opts.Temperature, opts.JSON)
	req.StopSeqs = opts.StopWords
	return s.send(ctx, req)
}

// Chat continues a conversation. System turns are joined into the
// top-level system field because the API rejects them inline.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	var system []string
	turns := make([]message, 0, len(messages))
	for _, m := range messages {
		if m.Role == "system" {
			system = append(system, m.Content)
			continue
		}
		turns = append(turns, message{Role: m.Role, Content: m.Content})
	}
	req := s.request(strings.Join(system, "\n\n"), turns, opts.MaxTokens, opts.Temperature, opts.JSON)
	return s.send(ctx, req)
}

func (s *LLMService) request(system string, turns []message, maxTokens int, temperature float64, jsonMode bool) messagesRequest {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if jsonMode {
		system = strings.TrimSpace(system + "\n\n" + jsonInstruction)
	}
	return messagesRequest{
		Model:       s.model,
		Messages:    turns,
		MaxTokens:   maxTokens,
		System:      system,
		Temperature: temperature,
	}
}

func (s *LLMService) send(ctx context.Context, in messagesRequest) (string, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	status, body, err := s.do(req)
	if err != nil {
		return "", err
	}

	var out messagesResponse
	decodeErr := json.Unmarshal(body, &out)
	switch {
	case decodeErr == nil && out.Error != nil:
		return "", statusError(status, out.Error.Message)
	case status != http.StatusOK:
		return "", statusError(status, string(body))
	case decodeErr != nil:
		return "", fmt.Errorf("decode response: %w", decodeErr)
	}

	var text strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", errors.New("anthropic: no text content returned")
	}
	return text.String(), nil
}

// do sends req with auth headers and returns the status and body.
func (s *LLMService) do(req *http.Request) (int, []byte, error) {
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("anthropic: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// statusError maps auth and quota failures onto domain sentinels.
func statusError(status int, msg string) error {
	msg = strings.TrimSpace(msg)
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: anthropic error (status %d): %s", domain.ErrAuthInvalid, status, msg)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: anthropic error (status %d): %s", domain.ErrRateLimited, status, msg)
	default:
		return fmt.Errorf("anthropic error (status %d): %s", status, msg)
	}
}

// ModelName returns the Claude model.
func (s *LLMService) ModelName() string { return s.model }

// Ping lists models, which checks the key without spending tokens.
func (s *LLMService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/v1/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("anthropic: create ping request: %w", err)
	}
	status, body, err := s.do(req)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return statusError(status, string(body))
	}
	return nil
}

// Close is a no-op.
func (s *LLMService) Close() error { return nil }
