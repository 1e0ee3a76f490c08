package file

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/docgap/internal/logger"
)

// envBinding maps an environment variable onto a configuration key.
type envBinding struct {
	env  string
	key  string
	kind string
}

// envBindings are applied in order; later bindings for the same key win.
var envBindings = []envBinding{
	{env: "EMBEDDING_PROVIDER", key: "embedding.provider"},
	{env: "EMBEDDING_MODEL", key: "embedding.model"},
	{env: "EMBEDDING_BASE_URL", key: "embedding.base_url"},
	{env: "LLM_PROVIDER", key: "llm.provider"},
	{env: "LLM_MODEL", key: "llm.model"},
	{env: "LLM_BASE_URL", key: "llm.base_url"},
	{env: "ZENDESK_SUBDOMAIN", key: "helpcenter.subdomain"},
	{env: "ZENDESK_BASE_URL", key: "helpcenter.base_url"},
	{env: "ZENDESK_EMAIL", key: "helpcenter.email"},
	{env: "ZENDESK_API_TOKEN", key: "helpcenter.api_token"},
	{env: "ZENDESK_API_KEY", key: "helpcenter.api_token"},
	{env: "ZENDESK_OAUTH_TOKEN", key: "helpcenter.oauth_token"},
	{env: "ZENDESK_LOCALE", key: "helpcenter.locale"},
	{env: "DOCGAP_HELPCENTER", key: "helpcenter.kind"},
	{env: "DOCGAP_CORPUS", key: "helpcenter.path"},
	{env: "REDIS_ADDR", key: "cache.redis_addr"},
	{env: "DOCGAP_CACHE", key: "cache.backend"},
	{env: "DOCGAP_ADDR", key: "server.addr"},
	{env: "DOCGAP_TOP_N", key: "analysis.top_n", kind: "int"},
	{env: "DOCGAP_SEMANTIC_GAPS", key: "analysis.semantic_gaps", kind: "bool"},
	{env: "GITHUB_API_URL", key: "github.base_url"},
	{env: "GOOGLE_APPLICATION_CREDENTIALS", key: "gdrive.credentials_file"},
	{env: "GOOGLE_API_KEY", key: "gdrive.api_key"},
	{env: "DEEPL_API_KEY", key: "translation.deepl_api_key"},
	{env: "LLM_TIMEOUT", key: "llm.timeout"},
}

// providerKeys maps a provider name to the variable holding its API key.
var providerKeys = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"gemini":    "GEMINI_API_KEY",
}

// LoadDotEnv loads variables from .env files into the process environment.
// Missing files are skipped; variables already set are not replaced.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return err
		}
		logger.Debug("[config] loaded %s", path)
	}
	return nil
}

// ApplyEnvironment overlays environment variables onto the store for this
// process. Provider API keys are resolved after the provider itself, so
// LLM_PROVIDER=anthropic picks up ANTHROPIC_API_KEY.
func ApplyEnvironment(s *ConfigStore, lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	for _, b := range envBindings {
		raw, ok := lookup(b.env)
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		raw = strings.TrimSpace(raw)
		switch b.kind {
		case "int":
			n, err := strconv.Atoi(raw)
			if err != nil {
				logger.Warn("[config] ignoring %s=%q: not an integer", b.env, raw)
				continue
			}
			s.Override(b.key, int64(n))
		case "bool":
			v, err := strconv.ParseBool(raw)
			if err != nil {
				logger.Warn("[config] ignoring %s=%q: not a boolean", b.env, raw)
				continue
			}
			s.Override(b.key, v)
		default:
			s.Override(b.key, raw)
		}
		logger.Debug("[config] %s overrides %s", b.env, b.key)
	}

	for _, section := range []string{"embedding", "llm"} {
		provider := s.GetString(section + ".provider")
		env, ok := providerKeys[provider]
		if !ok {
			continue
		}
		if key, found := lookup(env); found && key != "" {
			s.Override(section+".api_key", key)
		}
	}

	if token, ok := lookup("GITHUB_TOKEN"); ok && token != "" {
		s.Override("github.token", token)
	}
}
