package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/docgap/internal/core/domain"
	"github.com/custodia-labs/docgap/internal/core/ports/driven"
	"github.com/custodia-labs/docgap/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider = "embedding.provider"
	keyEmbedModel    = "embedding.model"
	keyEmbedBaseURL  = "embedding.base_url"
	keyEmbedAPIKey   = "embedding.api_key"
	keyLLMProvider   = "llm.provider"
	keyLLMModel      = "llm.model"
	keyLLMBaseURL    = "llm.base_url"
	keyLLMAPIKey     = "llm.api_key"
	keyLLMTimeout    = "llm.timeout"

	keyDeepLAPIKey  = "translation.deepl_api_key"
	keyDeepLBaseURL = "translation.deepl_base_url"

	keyHCKind       = "helpcenter.kind"
	keyHCSubdomain  = "helpcenter.subdomain"
	keyHCBaseURL    = "helpcenter.base_url"
	keyHCEmail      = "helpcenter.email"
	keyHCAPIToken   = "helpcenter.api_token"
	keyHCOAuthToken = "helpcenter.oauth_token"
	keyHCLocale     = "helpcenter.locale"
	keyHCPath       = "helpcenter.path"
	keyHCRPM        = "helpcenter.requests_per_minute"
	keyHCMarkdown   = "helpcenter.markdown_bodies"

	keyTopN         = "analysis.top_n"
	keyGapCap       = "analysis.gap_cap"
	keyMaxCorpus    = "analysis.max_corpus"
	keyBatchSize    = "analysis.batch_size"
	keyConcurrency  = "analysis.concurrency"
	keyCharBudget   = "analysis.char_budget"
	keyTopicCap     = "analysis.topic_cap"
	keyCoverage     = "analysis.coverage_threshold"
	keySemanticGaps = "analysis.semantic_gaps"
	keyCallTimeout  = "analysis.call_timeout"
	keyStopWords    = "analysis.stop_words"

	keyThresholdRelated  = "analysis.thresholds.related"
	keyThresholdNew      = "analysis.thresholds.new"
	keyThresholdPriority = "analysis.thresholds.priority"

	keyCacheBackend      = "cache.backend"
	keyCachePath         = "cache.path"
	keyCacheRedisAddr    = "cache.redis_addr"
	keyCacheResultTTL    = "cache.result_ttl"
	keyCacheEmbeddingTTL = "cache.embedding_ttl"

	keyServerAddr = "server.addr"
	keyServerCORS = "server.cors_origins"

	keyGitHubToken      = "github.token"
	keyGitHubBaseURL    = "github.base_url"
	keyDriveCredentials = "gdrive.credentials_file"
	keyDriveAPIKey      = "gdrive.api_key"
	keyDriveToken       = "gdrive.access_token"
)

// valueKind is the stored type of a config key.
type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindBool
	kindDuration
	kindList
)

// settingKeys lists every key Set accepts.
var settingKeys = map[string]valueKind{
	keyEmbedProvider: kindString, keyEmbedModel: kindString, keyEmbedBaseURL: kindString, keyEmbedAPIKey: kindString,
	keyLLMProvider: kindString, keyLLMModel: kindString, keyLLMBaseURL: kindString, keyLLMAPIKey: kindString,
	keyLLMTimeout: kindDuration, keyDeepLAPIKey: kindString, keyDeepLBaseURL: kindString,
	keyHCKind: kindString, keyHCSubdomain: kindString, keyHCBaseURL: kindString, keyHCEmail: kindString,
	keyHCAPIToken: kindString, keyHCOAuthToken: kindString, keyHCLocale: kindString, keyHCPath: kindString,
	keyHCRPM: kindInt, keyHCMarkdown: kindBool,
	keyTopN: kindInt, keyGapCap: kindInt, keyMaxCorpus: kindInt, keyBatchSize: kindInt,
	keyConcurrency: kindInt, keyCharBudget: kindInt, keyTopicCap: kindInt,
	keyCoverage: kindFloat, keySemanticGaps: kindBool, keyCallTimeout: kindDuration, keyStopWords: kindList,
	keyThresholdRelated: kindFloat, keyThresholdNew: kindFloat, keyThresholdPriority: kindFloat,
	keyCacheBackend: kindString, keyCachePath: kindString, keyCacheRedisAddr: kindString,
	keyCacheResultTTL: kindDuration, keyCacheEmbeddingTTL: kindDuration,
	keyServerAddr: kindString, keyServerCORS: kindList,
	keyGitHubToken: kindString, keyGitHubBaseURL: kindString,
	keyDriveCredentials: kindString, keyDriveAPIKey: kindString, keyDriveToken: kindString,
}

// SettingKeys returns every configurable key.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingKeys))
	for k := range settingKeys {
		keys = append(keys, k)
	}
	return keys
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, d.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, d.LLM.Provider),
			Model:    s.getString(keyLLMModel, d.LLM.Model),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
			Timeout:  s.getDuration(keyLLMTimeout, d.LLM.Timeout),
		},
		Translation: domain.TranslationSettings{
			DeepLAPIKey:  s.configStore.GetString(keyDeepLAPIKey),
			DeepLBaseURL: s.configStore.GetString(keyDeepLBaseURL),
		},
		HelpCenter: domain.HelpCenterSettings{
			Kind:              s.getHelpCenterKind(d.HelpCenter.Kind),
			Subdomain:         s.configStore.GetString(keyHCSubdomain),
			BaseURL:           s.configStore.GetString(keyHCBaseURL),
			Email:             s.configStore.GetString(keyHCEmail),
			APIToken:          s.configStore.GetString(keyHCAPIToken),
			OAuthToken:        s.configStore.GetString(keyHCOAuthToken),
			Locale:            s.getString(keyHCLocale, d.HelpCenter.Locale),
			Path:              s.configStore.GetString(keyHCPath),
			RequestsPerMinute: s.getInt(keyHCRPM, d.HelpCenter.RequestsPerMinute),
			MarkdownBodies:    s.getBool(keyHCMarkdown, d.HelpCenter.MarkdownBodies),
		},
		Analysis: domain.AnalysisSettings{
			TopN:              s.getInt(keyTopN, d.Analysis.TopN),
			GapCap:            min(s.getInt(keyGapCap, d.Analysis.GapCap), domain.MaxGapCap),
			MaxCorpus:         s.getInt(keyMaxCorpus, d.Analysis.MaxCorpus),
			BatchSize:         s.getInt(keyBatchSize, d.Analysis.BatchSize),
			Concurrency:       s.getInt(keyConcurrency, d.Analysis.Concurrency),
			CharBudget:        s.getInt(keyCharBudget, d.Analysis.CharBudget),
			TopicCap:          s.getInt(keyTopicCap, d.Analysis.TopicCap),
			CoverageThreshold: s.getFloat(keyCoverage, d.Analysis.CoverageThreshold),
			SemanticGaps:      s.getBool(keySemanticGaps, d.Analysis.SemanticGaps),
			CallTimeout:       s.getDuration(keyCallTimeout, d.Analysis.CallTimeout),
			StopWords:         s.configStore.GetStringSlice(keyStopWords),
			Thresholds:        s.getThresholds(d.Analysis.Thresholds),
		},
		Cache: domain.CacheSettings{
			Backend:      s.getCacheBackend(d.Cache.Backend),
			Path:         s.configStore.GetString(keyCachePath),
			RedisAddr:    s.configStore.GetString(keyCacheRedisAddr),
			ResultTTL:    s.getDuration(keyCacheResultTTL, d.Cache.ResultTTL),
			EmbeddingTTL: s.getDuration(keyCacheEmbeddingTTL, d.Cache.EmbeddingTTL),
		},
		Server: domain.ServerSettings{
			Addr:        s.getString(keyServerAddr, d.Server.Addr),
			CORSOrigins: s.configStore.GetStringSlice(keyServerCORS),
		},
		Sources: domain.SourceSettings{
			GitHubToken:          s.configStore.GetString(keyGitHubToken),
			GitHubBaseURL:        s.configStore.GetString(keyGitHubBaseURL),
			DriveCredentialsFile: s.configStore.GetString(keyDriveCredentials),
			DriveAPIKey:          s.configStore.GetString(keyDriveAPIKey),
			DriveAccessToken:     s.configStore.GetString(keyDriveToken),
		},
	}

	return settings, nil
}

// Save persists the provider settings. Other sections are edited key by
// key with Set so that unset keys keep following the defaults.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := s.configStore.Set(keyEmbedProvider, settings.Embedding.Provider.String()); err != nil {
		return fmt.Errorf("save embedding provider: %w", err)
	}
	if err := s.configStore.Set(keyEmbedModel, settings.Embedding.Model); err != nil {
		return fmt.Errorf("save embedding model: %w", err)
	}
	if err := s.configStore.Set(keyEmbedBaseURL, settings.Embedding.BaseURL); err != nil {
		return fmt.Errorf("save embedding base_url: %w", err)
	}
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}

	if err := s.configStore.Set(keyLLMProvider, settings.LLM.Provider.String()); err != nil {
		return fmt.Errorf("save llm provider: %w", err)
	}
	if err := s.configStore.Set(keyLLMModel, settings.LLM.Model); err != nil {
		return fmt.Errorf("save llm model: %w", err)
	}
	if err := s.configStore.Set(keyLLMBaseURL, settings.LLM.BaseURL); err != nil {
		return fmt.Errorf("save llm base_url: %w", err)
	}
	if settings.LLM.APIKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}

	if err := s.configStore.Set(keyHCKind, string(settings.HelpCenter.Kind)); err != nil {
		return fmt.Errorf("save helpcenter kind: %w", err)
	}
	if settings.HelpCenter.Subdomain != "" {
		if err := s.configStore.Set(keyHCSubdomain, settings.HelpCenter.Subdomain); err != nil {
			return fmt.Errorf("save helpcenter subdomain: %w", err)
		}
	}
	if settings.HelpCenter.Path != "" {
		if err := s.configStore.Set(keyHCPath, settings.HelpCenter.Path); err != nil {
			return fmt.Errorf("save helpcenter path: %w", err)
		}
	}

	return nil
}

// Set parses value according to the key's type and stores it.
// An empty value removes the key so it follows the default again.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return s.configStore.Delete(key)
	}

	var stored any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
		}
		stored = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 || f > 1 {
			return fmt.Errorf("%w: %s must be a number between 0 and 1", domain.ErrInvalidInput, key)
		}
		stored = f
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		stored = b
	case kindDuration:
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%w: %s must be a duration such as 8s or 1h", domain.ErrInvalidInput, key)
		}
		stored = value
	case kindList:
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		stored = items
	default:
		if err := validateEnum(key, value); err != nil {
			return err
		}
		stored = value
	}

	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func validateEnum(key, value string) error {
	switch key {
	case keyEmbedProvider:
		p := domain.AIProvider(value)
		if !p.IsValid() || !p.SupportsEmbedding() {
			return fmt.Errorf("%w: %s", domain.ErrUnsupportedProvider, value)
		}
	case keyLLMProvider:
		if !domain.AIProvider(value).IsValid() {
			return fmt.Errorf("%w: %s", domain.ErrUnsupportedProvider, value)
		}
	case keyHCKind:
		if !domain.HelpCenterKind(value).IsValid() {
			return fmt.Errorf("%w: %s", domain.ErrUnsupportedProvider, value)
		}
	case keyCacheBackend:
		if !domain.CacheBackend(value).IsValid() {
			return fmt.Errorf("%w: unknown cache backend %s", domain.ErrInvalidInput, value)
		}
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if !provider.SupportsEmbedding() {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = model
	if model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}

	if provider.IsLocal() {
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = "http://localhost:11434"
		}
	} else {
		settings.Embedding.BaseURL = ""
	}
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = model
	if model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}

	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = "http://localhost:11434"
		}
	} else {
		settings.LLM.BaseURL = ""
	}
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks that the current settings are consistent.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if settings.Embedding.Provider != "" && !settings.Embedding.IsConfigured() {
		return fmt.Errorf("embedding provider %q is not fully configured", settings.Embedding.Provider)
	}
	if settings.LLM.Provider != "" && !settings.LLM.IsConfigured() {
		return fmt.Errorf("LLM provider %q is not fully configured", settings.LLM.Provider)
	}
	if !settings.HelpCenter.IsConfigured() {
		return fmt.Errorf("help center %q is not configured", settings.HelpCenter.Kind)
	}
	if err := settings.Analysis.Thresholds.Validate(); err != nil {
		return fmt.Errorf("thresholds: %w", err)
	}
	if settings.Cache.Backend == domain.CacheRedis && settings.Cache.RedisAddr == "" {
		return fmt.Errorf("cache backend redis requires %s", keyCacheRedisAddr)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getThresholds(defaultVal domain.ThresholdTable) domain.ThresholdTable {
	table := defaultVal
	overrides := []struct {
		key   string
		label domain.Label
	}{
		{keyThresholdRelated, domain.LabelRelatedInfo},
		{keyThresholdNew, domain.LabelNewInfo},
		{keyThresholdPriority, domain.LabelPriorityUpdate},
	}
	for _, o := range overrides {
		if _, exists := s.configStore.Get(o.key); exists {
			table = table.With(o.label, s.configStore.GetFloat(o.key))
		}
	}
	if table.Validate() != nil {
		return defaultVal
	}
	return table
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(key))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getHelpCenterKind(defaultVal domain.HelpCenterKind) domain.HelpCenterKind {
	kind := domain.HelpCenterKind(s.configStore.GetString(keyHCKind))
	if !kind.IsValid() {
		return defaultVal
	}
	return kind
}

func (s *SettingsService) getCacheBackend(defaultVal domain.CacheBackend) domain.CacheBackend {
	backend := domain.CacheBackend(s.configStore.GetString(keyCacheBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
