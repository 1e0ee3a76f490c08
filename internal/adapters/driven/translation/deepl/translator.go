// Package deepl translates drafts with the DeepL API.
package deepl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/docgap/internal/core/domain"
	"github.com/custodia-labs/docgap/internal/core/ports/driven"
)

var _ driven.Translator = (*Translator)(nil)

// Endpoints and defaults.
const (
	FreeBaseURL    = "https://api-free.deepl.com"
	ProBaseURL     = "https://api.deepl.com"
	DefaultTimeout = 30 * time.Second

	// statusQuotaExceeded is DeepL's answer once the character quota is spent.
	statusQuotaExceeded = 456
)

// languages maps accepted names and codes to DeepL target codes.
var languages = map[string]string{
	"fi": "FI", "finnish": "FI", "suomi": "FI",
	"de": "DE", "german": "DE", "deutsch": "DE",
	"nl": "NL", "dutch": "NL", "nederlands": "NL",
	"fr": "FR", "french": "FR", "français": "FR", "francais": "FR",
}

// ErrMissingKey is returned by New without an API key.
var ErrMissingKey = errors.New("deepl: API key is required")

// Config selects the account. Keys ending in ":fx" belong to the free
// plan and use FreeBaseURL unless BaseURL is set.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Translator calls /v2/translate.
type Translator struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// New applies defaults to cfg and returns the translator.
func New(cfg Config) (*Translator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = ProBaseURL
		if strings.HasSuffix(cfg.APIKey, ":fx") {
			cfg.BaseURL = FreeBaseURL
		}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Translator{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
	}, nil
}

// NewFromSettings builds the translator from the translation settings.
func NewFromSettings(s domain.TranslationSettings) (*Translator, error) {
	return New(Config{APIKey: s.DeepLAPIKey, BaseURL: s.DeepLBaseURL})
}

// Name returns "deepl".
func (t *Translator) Name() string { return "deepl" }

// Supports reports whether language is Finnish, German, Dutch or French.
func (t *Translator) Supports(language string) bool {
	_, ok := Code(language)
	return ok
}

// Code returns the DeepL target code for a language name or code.
func Code(language string) (string, bool) {
	code, ok := languages[strings.ToLower(strings.TrimSpace(language))]
	return code, ok
}

type translateResponse struct {
	Translations []struct {
		Text string `json:"text"`
	} `json:"translations"`
	Message string `json:"message"`
}

// Translate sends text to DeepL. Blank text is returned unchanged.
func (t *Translator) Translate(ctx context.Context, text, language string) (string, error) {
	code, ok := Code(language)
	if !ok {
		return "", fmt.Errorf("%w: deepl does not translate to %q", domain.ErrInvalidInput, language)
	}
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	form := url.Values{}
	form.Set("text", text)
	form.Set("target_lang", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/v2/translate",
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("deepl: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "DeepL-Auth-Key "+t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("deepl: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("deepl: read response: %w", err)
	}

	var out translateResponse
	decodeErr := json.Unmarshal(body, &out)
	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(body))
		if decodeErr == nil && out.Message != "" {
			msg = out.Message
		}
		return "", statusError(resp.StatusCode, msg)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("deepl: decode response: %w", decodeErr)
	}
	if len(out.Translations) == 0 {
		return "", errors.New("deepl: no translation returned")
	}
	return out.Translations[0].Text, nil
}

func statusError(status int, msg string) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: deepl error (status %d): %s", domain.ErrAuthInvalid, status, msg)
	case http.StatusTooManyRequests, statusQuotaExceeded:
		return fmt.Errorf("%w: deepl error (status %d): %s", domain.ErrRateLimited, status, msg)
	default:
		return fmt.Errorf("deepl error (status %d): %s", status, msg)
	}
}
