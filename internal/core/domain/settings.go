package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGemini is Google Gemini cloud API.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderGemini
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// SupportsEmbedding returns true if the provider offers an embedding API.
func (p AIProvider) SupportsEmbedding() bool {
	return p == AIProviderOllama || p == AIProviderOpenAI || p == AIProviderGemini
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key for cloud providers.
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || !e.Provider.SupportsEmbedding() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key for cloud providers.
	APIKey string

	// Timeout bounds each generation call.
	Timeout time.Duration
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// HelpCenterKind selects the content repository implementation.
type HelpCenterKind string

// Content repository kinds.
const (
	HelpCenterZendesk HelpCenterKind = "zendesk"
	HelpCenterFile    HelpCenterKind = "file"
)

// IsValid returns true if the kind is recognised.
func (k HelpCenterKind) IsValid() bool {
	return k == HelpCenterZendesk || k == HelpCenterFile
}

// HelpCenterSettings holds content repository configuration.
type HelpCenterSettings struct {
	Kind HelpCenterKind

	// Subdomain is the Zendesk subdomain (acme for acme.zendesk.com).
	Subdomain string

	// BaseURL overrides the URL derived from Subdomain.
	BaseURL string

	// Email and APIToken enable basic token authentication.
	Email    string
	APIToken string

	// OAuthToken enables bearer authentication and takes precedence.
	OAuthToken string

	// Locale restricts articles to one locale, e.g. en-us.
	Locale string

	// Path is the corpus file for the file repository.
	Path string

	// RequestsPerMinute bounds calls to the help center API.
	RequestsPerMinute int

	// MarkdownBodies keeps article structure as Markdown instead of
	// flattening HTML bodies to plain text.
	MarkdownBodies bool
}

// IsConfigured returns true if the repository has enough to connect.
func (h HelpCenterSettings) IsConfigured() bool {
	switch h.Kind {
	case HelpCenterZendesk:
		if h.Subdomain == "" && h.BaseURL == "" {
			return false
		}
		return h.OAuthToken != "" || (h.Email != "" && h.APIToken != "")
	case HelpCenterFile:
		return h.Path != ""
	default:
		return false
	}
}

// AnalysisSettings holds the tunables of the analysis pipeline.
type AnalysisSettings struct {
	// TopN is the number of matched articles reported.
	TopN int

	// GapCap is the number of gaps reported.
	GapCap int

	// MaxCorpus caps the number of documents scored per request.
	MaxCorpus int

	// BatchSize is the number of documents per embedding call.
	BatchSize int

	// Concurrency bounds parallel provider calls.
	Concurrency int

	// CharBudget truncates text sent to the embedding provider.
	CharBudget int

	// TopicCap caps extracted topics.
	TopicCap int

	// CoverageThreshold is the similarity above which a topic is covered.
	CoverageThreshold float64

	// SemanticGaps enables the embedding coverage check.
	SemanticGaps bool

	// CallTimeout bounds each external call.
	CallTimeout time.Duration

	// StopWords replaces the compiled-in stop-word set when non-empty.
	StopWords []string

	// Thresholds is the suggestion classifier table.
	Thresholds ThresholdTable
}

// CacheBackend selects the cache implementation.
type CacheBackend string

// Cache backends.
const (
	CacheNone   CacheBackend = "none"
	CacheMemory CacheBackend = "memory"
	CacheSQLite CacheBackend = "sqlite"
	CacheRedis  CacheBackend = "redis"
)

// IsValid returns true if the backend is recognised.
func (b CacheBackend) IsValid() bool {
	switch b {
	case CacheNone, CacheMemory, CacheSQLite, CacheRedis:
		return true
	default:
		return false
	}
}

// Description returns a human-readable label for the backend.
func (b CacheBackend) Description() string {
	switch b {
	case CacheNone:
		return "No cache"
	case CacheMemory:
		return "In-memory (per process)"
	case CacheSQLite:
		return "SQLite (on disk)"
	case CacheRedis:
		return "Redis (shared)"
	default:
		return string(b)
	}
}

// AllCacheBackends returns every cache backend in display order.
func AllCacheBackends() []CacheBackend {
	return []CacheBackend{CacheNone, CacheMemory, CacheSQLite, CacheRedis}
}

// CacheSettings holds cache configuration.
type CacheSettings struct {
	Backend CacheBackend

	// Path is the directory holding the sqlite cache database.
	Path string

	// RedisAddr is the redis host:port.
	RedisAddr string

	// ResultTTL is how long comparison and analysis results live.
	ResultTTL time.Duration

	// EmbeddingTTL is how long cached embeddings live.
	EmbeddingTTL time.Duration
}

// ServerSettings holds HTTP API configuration.
type ServerSettings struct {
	Addr        string
	CORSOrigins []string
}

// SourceSettings holds credentials for remote release-note sources.
type SourceSettings struct {
	// GitHubToken authenticates release lookups. Anonymous when empty.
	GitHubToken string

	// GitHubBaseURL points at a GitHub Enterprise API.
	GitHubBaseURL string

	// DriveCredentialsFile is a service account or OAuth client JSON file.
	DriveCredentialsFile string

	// DriveAPIKey reads publicly shared files.
	DriveAPIKey string

	// DriveAccessToken is a short-lived OAuth access token.
	DriveAccessToken string
}

// DriveConfigured returns true if any Drive credential is set.
func (s SourceSettings) DriveConfigured() bool {
	return s.DriveCredentialsFile != "" || s.DriveAPIKey != "" || s.DriveAccessToken != ""
}

// TranslationSettings configures machine translation of drafts.
type TranslationSettings struct {
	// DeepLAPIKey enables DeepL for the languages it supports.
	DeepLAPIKey string

	// DeepLBaseURL overrides the API endpoint. Free-plan keys (ending
	// in ":fx") default to the free endpoint.
	DeepLBaseURL string
}

// DeepLConfigured returns true if a DeepL key is set.
func (t TranslationSettings) DeepLConfigured() bool {
	return t.DeepLAPIKey != ""
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding   EmbeddingSettings
	LLM         LLMSettings
	Translation TranslationSettings
	HelpCenter  HelpCenterSettings
	Analysis    AnalysisSettings
	Cache       CacheSettings
	Server      ServerSettings
	Sources     SourceSettings
}

// Analysis pipeline defaults.
const (
	DefaultTopN              = 5
	DefaultGapCap            = 5
	MaxGapCap                = 8
	DefaultMaxCorpus         = 500
	DefaultBatchSize         = 20
	DefaultConcurrency       = 4
	DefaultCharBudget        = 4000
	DefaultTopicCap          = 15
	DefaultCoverageThreshold = 0.6
	DefaultCallTimeout       = 8 * time.Second
	DefaultResultTTL         = time.Hour
	DefaultEmbeddingTTL      = 24 * time.Hour
	DefaultLLMTimeout        = 120 * time.Second
)

// DefaultAnalysisSettings returns the pipeline defaults.
func DefaultAnalysisSettings() AnalysisSettings {
	return AnalysisSettings{
		TopN:              DefaultTopN,
		GapCap:            DefaultGapCap,
		MaxCorpus:         DefaultMaxCorpus,
		BatchSize:         DefaultBatchSize,
		Concurrency:       DefaultConcurrency,
		CharBudget:        DefaultCharBudget,
		TopicCap:          DefaultTopicCap,
		CoverageThreshold: DefaultCoverageThreshold,
		SemanticGaps:      true,
		CallTimeout:       DefaultCallTimeout,
		Thresholds:        DefaultThresholds(),
	}
}

// DefaultAppSettings returns settings with sensible defaults.
// AI providers and the help center are left unconfigured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{},
		LLM:       LLMSettings{Timeout: DefaultLLMTimeout},
		HelpCenter: HelpCenterSettings{
			Kind:              HelpCenterZendesk,
			Locale:            "en-us",
			RequestsPerMinute: 400,
		},
		Analysis: DefaultAnalysisSettings(),
		Cache: CacheSettings{
			Backend:      CacheMemory,
			ResultTTL:    DefaultResultTTL,
			EmbeddingTTL: DefaultEmbeddingTTL,
		},
		Server: ServerSettings{
			Addr: "127.0.0.1:8080",
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderGemini,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderGemini,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderGemini: "text-embedding-004",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
		AIProviderGemini:    "gemini-2.0-flash",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Gemini models
		"text-embedding-004": 768,
	}
}
