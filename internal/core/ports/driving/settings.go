package driving

import "github.com/custodia-labs/docgap/internal/core/domain"

// SettingsService reads and edits the persisted configuration behind
// `docgap settings`, the TUI settings view and app bootstrap.
type SettingsService interface {
	// Get assembles settings from the store, filling defaults.
	Get() (*domain.AppSettings, error)
	Save(settings *domain.AppSettings) error

	// Set validates and stores one dotted key such as cache.backend.
	Set(key, value string) error

	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// Validate reports settings that cannot work together, such as a
	// cloud provider without an API key.
	Validate() error
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig and ValidateLLMConfig ping the configured
	// providers. Unconfigured providers pass.
	ValidateEmbeddingConfig() error
	ValidateLLMConfig() error
}
