// Package app assembles the driven adapters and core services from the
// user's configuration. Every driving adapter (CLI, HTTP, MCP, TUI) is
// handed the services an App exposes.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/docgap/internal/adapters/driven/ai"
	"github.com/custodia-labs/docgap/internal/adapters/driven/config/file"
	hcfile "github.com/custodia-labs/docgap/internal/adapters/driven/helpcenter/file"
	"github.com/custodia-labs/docgap/internal/adapters/driven/helpcenter/zendesk"
	"github.com/custodia-labs/docgap/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docgap/internal/adapters/driven/storage/redis"
	"github.com/custodia-labs/docgap/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docgap/internal/adapters/driven/translation/deepl"
	"github.com/custodia-labs/docgap/internal/core/domain"
	"github.com/custodia-labs/docgap/internal/core/ports/driven"
	"github.com/custodia-labs/docgap/internal/core/services"
	"github.com/custodia-labs/docgap/internal/core/topics"
	"github.com/custodia-labs/docgap/internal/exporters"
	"github.com/custodia-labs/docgap/internal/logger"
)

// Options controls how New assembles the application.
type Options struct {
	// ConfigDir holds config.toml, prompts and the stop-word file.
	// Defaults to ~/.docgap.
	ConfigDir string

	// EnvFiles are loaded before the environment is applied.
	// Defaults to .env in the working directory.
	EnvFiles []string

	// Lookup reads environment variables. Defaults to os.LookupEnv.
	Lookup func(string) (string, bool)

	// SkipPing creates AI services without checking connectivity.
	SkipPing bool

	// WatchStopWords reloads the stop-word file when it changes.
	WatchStopWords bool

	// Stdin is read by the local source for "-". Defaults to os.Stdin.
	Stdin io.Reader
}

// App holds the assembled services.
type App struct {
	Settings *domain.AppSettings

	Articles *services.ArticleService
	Analysis *services.AnalysisService
	Drafting *services.DraftingService
	Export   *services.ExportService
	Config   *services.SettingsService

	// Cache is nil when caching is disabled.
	Cache driven.Cache

	// Warnings are non-fatal problems found while starting.
	Warnings []string

	extractor *topics.Extractor
	ai        *ai.InitResult
	stdin     io.Reader

	mu      sync.Mutex
	sources map[string]driven.ReleaseNotesSource
	closers []io.Closer
}

// New loads configuration and wires every service.
func New(ctx context.Context, opts Options) (*App, error) {
	logger.Section("Startup")

	configDir := opts.ConfigDir
	if configDir == "" {
		dir, err := file.DefaultDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}

	if err := file.LoadDotEnv(opts.EnvFiles...); err != nil {
		logger.Warn("[app] load .env: %v", err)
	}

	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	file.ApplyEnvironment(store, opts.Lookup)

	config := services.NewSettingsService(store, ai.NewConfigValidator())
	settings, err := config.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	a := &App{
		Settings: settings,
		Config:   config,
		stdin:    opts.Stdin,
		sources:  make(map[string]driven.ReleaseNotesSource),
	}

	cache, err := openCache(ctx, settings.Cache, configDir)
	if err != nil {
		a.warn(fmt.Sprintf("cache disabled: %v", err))
	} else if cache != nil {
		a.Cache = cache
		a.closers = append(a.closers, cache)
	}

	a.ai = ai.Initialise(settings, ai.InitOptions{
		Cache:        a.Cache,
		EmbeddingTTL: settings.Cache.EmbeddingTTL,
		Guard:        ai.DefaultGuardConfig(),
		SkipPing:     opts.SkipPing,
	})
	a.Warnings = append(a.Warnings, a.ai.Warnings...)

	prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts"))
	if err != nil {
		return nil, fmt.Errorf("open prompts: %w", err)
	}

	a.wire(openRepository(settings.HelpCenter), prompts)

	if opts.WatchStopWords {
		a.watchStopWords(filepath.Join(configDir, file.StopWordsFile))
	}
	return a, nil
}

// wire builds the core services on top of repo.
func (a *App) wire(repo driven.ContentRepository, prompts driven.PromptStore) {
	s := a.Settings
	cacheable := a.Cache != nil

	a.Articles = services.NewArticleService(repo)
	if cacheable {
		a.Articles.SetCache(a.Cache, s.Cache.ResultTTL)
	}

	aggregator := services.NewRelevanceAggregator(a.embedding(), services.RelevanceConfig{
		MaxCorpus:   s.Analysis.MaxCorpus,
		BatchSize:   s.Analysis.BatchSize,
		Concurrency: s.Analysis.Concurrency,
		CharBudget:  s.Analysis.CharBudget,
		CallTimeout: s.Analysis.CallTimeout,
	})
	detector := services.NewGapDetector(aggregator, services.GapConfig{
		Cap:               s.Analysis.GapCap,
		CoverageThreshold: s.Analysis.CoverageThreshold,
		Semantic:          s.Analysis.SemanticGaps,
		Concurrency:       s.Analysis.Concurrency,
		CallTimeout:       s.Analysis.CallTimeout,
	})
	a.extractor = topics.NewExtractor(topics.Config{
		StopWords: s.Analysis.StopWords,
		Cap:       s.Analysis.TopicCap,
	})

	a.Analysis = services.NewAnalysisService(a.Articles, aggregator, detector, a.extractor, services.AnalysisConfig{
		TopN:       s.Analysis.TopN,
		GapCap:     s.Analysis.GapCap,
		MaxCorpus:  s.Analysis.MaxCorpus,
		ResultTTL:  s.Cache.ResultTTL,
		Thresholds: s.Analysis.Thresholds,
		LLMTimeout: s.LLM.Timeout,
	})
	a.Drafting = services.NewDraftingService(a.llm())
	a.Drafting.SetPromptStore(prompts)
	a.Drafting.SetTimeout(s.LLM.Timeout)
	if s.Translation.DeepLConfigured() {
		translator, err := deepl.NewFromSettings(s.Translation)
		if err != nil {
			logger.Warn("DeepL translation disabled: %v", err)
		} else {
			a.Drafting.SetTranslator(translator)
		}
	}

	if llm := a.llm(); llm != nil {
		a.Analysis.SetLLMService(llm)
	}
	a.Analysis.SetPromptStore(prompts)
	if cacheable {
		a.Analysis.SetCache(a.Cache)
		a.Drafting.SetCache(a.Cache, s.Cache.ResultTTL)
	}

	a.Export = services.NewExportService(exporters.Default()...)
}

// LLMAvailable reports whether drafting features can run.
func (a *App) LLMAvailable() bool {
	return a.llm() != nil
}

// EmbeddingAvailable reports whether vector ranking can run.
func (a *App) EmbeddingAvailable() bool {
	return a.embedding() != nil
}

func (a *App) embedding() driven.EmbeddingService {
	if a.ai == nil {
		return nil
	}
	return a.ai.EmbeddingService
}

func (a *App) llm() driven.LLMService {
	if a.ai == nil {
		return nil
	}
	return a.ai.LLMService
}

// watchStopWords keeps the extractor's stop words in sync with path.
// A removed file restores the configured set.
func (a *App) watchStopWords(path string) {
	configured := a.Settings.Analysis.StopWords
	if len(configured) == 0 {
		configured = topics.DefaultStopWords()
	}
	w, err := file.WatchStopWords(path, func(words []string) {
		if len(words) == 0 {
			words = configured
		}
		a.extractor.SetStopWords(words)
		logger.Info("[app] %d stop words loaded", len(words))
	})
	if err != nil {
		a.warn(fmt.Sprintf("stop-word file not watched: %v", err))
		return
	}
	a.closers = append(a.closers, w)
}

func (a *App) warn(msg string) {
	logger.Warn("[app] %s", msg)
	a.Warnings = append(a.Warnings, msg)
}

// Close releases the AI services, the cache and the file watcher.
func (a *App) Close() error {
	if a.ai != nil {
		a.ai.Close()
	}
	a.mu.Lock()
	closers := a.closers
	a.closers = nil
	a.mu.Unlock()

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// openCache creates the configured cache backend. A nil cache with a nil
// error means caching is off.
func openCache(ctx context.Context, s domain.CacheSettings, configDir string) (driven.Cache, error) {
	switch s.Backend {
	case domain.CacheNone:
		return nil, nil
	case domain.CacheSQLite:
		dir := s.Path
		if dir == "" {
			dir = filepath.Join(configDir, "data")
		}
		return sqlite.NewStore(dir)
	case domain.CacheRedis:
		return redis.New(ctx, redis.Options{Addr: s.RedisAddr, Prefix: "docgap:"})
	default:
		return memory.NewCache(), nil
	}
}

// openRepository creates the configured help center. A repository that is
// not configured, or cannot be created, still answers every call with
// domain.ErrCorpusUnavailable so the rest of the application starts.
func openRepository(s domain.HelpCenterSettings) driven.ContentRepository {
	if !s.IsConfigured() {
		return unavailable{reason: "no help center configured; set helpcenter.subdomain or helpcenter.path"}
	}

	var (
		repo driven.ContentRepository
		err  error
	)
	switch s.Kind {
	case domain.HelpCenterFile:
		repo, err = hcfile.NewFromSettings(s)
	default:
		repo, err = zendesk.NewFromSettings(s)
	}
	if err != nil {
		logger.Warn("[app] help center: %v", err)
		return unavailable{reason: err.Error()}
	}
	logger.Info("Help center: %s", repo.Name())
	return repo
}

func stdinOr(r io.Reader) io.Reader {
	if r == nil {
		return os.Stdin
	}
	return r
}
