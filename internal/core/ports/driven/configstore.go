package driven

// ConfigStore holds flat dotted keys (llm.provider, cache.ttl). Typed
// getters return the zero value when a key is missing or has another type;
// integers read through GetFloat are converted.
type ConfigStore interface {
	// Get returns the raw value and whether the key is set.
	Get(key string) (any, bool)

	GetString(key string) string
	GetInt(key string) int
	GetFloat(key string) float64
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set stores value. File-backed stores write through immediately.
	Set(key string, value any) error
	Delete(key string) error

	Save() error
	Load() error

	// Path locates the backing file, or a pseudo path for in-memory stores.
	Path() string
}
