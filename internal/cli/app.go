package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/dmarchetti/responsa/internal/extract"
	"github.com/dmarchetti/responsa/internal/golden"
	"github.com/dmarchetti/responsa/internal/merge"
	"github.com/dmarchetti/responsa/internal/model"
	"github.com/dmarchetti/responsa/internal/pipeline"
	"github.com/dmarchetti/responsa/internal/refsource"
	"github.com/dmarchetti/responsa/internal/router"
	"github.com/dmarchetti/responsa/internal/search"
	"github.com/dmarchetti/responsa/internal/signature"
)

// newLogger builds the process logger. Verbose mode switches to the
// human-readable development encoder on stderr.
func newLogger() *zap.Logger {
	var logger *zap.Logger
	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		logger, err = cfg.Build()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// loadConfig builds the runtime configuration: defaults overlaid with
// the config file viper located (or the one given via --config).
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()

	if file := viper.ConfigFileUsed(); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", file, err)
		}
	}

	cfg.Output.Verbose = verbose
	return cfg, nil
}

// applyProviderEnv fills provider credentials from the environment.
// Keys in the config file win; the environment is the fallback.
func applyProviderEnv(cfg *model.Config) {
	for i := range cfg.Routing.Providers {
		p := &cfg.Routing.Providers[i]
		switch p.Name {
		case "openai":
			if p.APIKey == "" {
				p.APIKey = os.Getenv("OPENAI_API_KEY")
			}
		case "anthropic", "claude":
			if p.APIKey == "" {
				p.APIKey = os.Getenv("ANTHROPIC_API_KEY")
			}
		case "ollama":
			if p.BaseURL == "" {
				p.BaseURL = os.Getenv("OLLAMA_BASE_URL")
			}
		}
	}
}

// defaultProviders returns the built-in provider set, keeping only the
// backends the environment can actually reach.
func defaultProviders() []model.ProviderConfig {
	var providers []model.ProviderConfig

	if os.Getenv("OPENAI_API_KEY") != "" {
		providers = append(providers, model.ProviderConfig{
			Name:        "openai",
			Model:       "gpt-4o-mini",
			CostPerCall: 0.15,
			Quality:     0.8,
		})
	}
	if os.Getenv("ANTHROPIC_API_KEY") != "" {
		providers = append(providers, model.ProviderConfig{
			Name:        "anthropic",
			Model:       "claude-3-5-haiku-latest",
			CostPerCall: 0.25,
			Quality:     0.9,
		})
	}
	if os.Getenv("OLLAMA_BASE_URL") != "" {
		providers = append(providers, model.ProviderConfig{
			Name:        "ollama",
			Model:       "llama3.2",
			CostPerCall: 0.0,
			Quality:     0.6,
		})
	}

	return providers
}

// buildResolver assembles the resolution pipeline from configuration
func buildResolver(cfg *model.Config, logger *zap.Logger) (*pipeline.Resolver, error) {
	extractor := extract.NewExtractor(extract.WithLogger(logger))

	var store golden.Store
	if cfg.Golden.DiskDir != "" {
		store = golden.NewLayeredStore(cfg.Golden.MemoryTTL, cfg.Golden.DiskDir, cfg.Golden.DiskTTL)
	} else {
		store = golden.NewMemoryStore(cfg.Golden.MemoryTTL, 10*time.Minute)
	}
	cache := golden.NewCache(store, cfg.Golden.MemoryTTL)

	var sources []signature.EpochSource
	if cfg.Search.KBDir != "" {
		sources = append(sources, refsource.NewDirEpochSource(signature.EpochKB, cfg.Search.KBDir))
	}
	if cfg.Golden.DiskDir != "" {
		sources = append(sources, refsource.NewDirEpochSource(signature.EpochGolden, cfg.Golden.DiskDir))
	}
	epochs := signature.NewResolver(sources, cfg.Epochs, logger)

	var refs golden.ReferenceSource
	if cfg.Golden.ReferencesFile != "" {
		src, err := refsource.LoadFile(cfg.Golden.ReferencesFile)
		if err != nil {
			return nil, fmt.Errorf("load references: %w", err)
		}
		logger.Info("reference feed loaded",
			zap.String("file", cfg.Golden.ReferencesFile),
			zap.Int("entries", src.Len()))
		refs = src
	} else {
		refs = refsource.NewMemorySource()
	}

	if cfg.Golden.SeedFile != "" {
		stamp := epochs.Resolve(context.Background())
		n, err := golden.LoadSeed(context.Background(), cfg.Golden.SeedFile, cache, extractor, stamp)
		if err != nil {
			return nil, fmt.Errorf("load golden seed: %w", err)
		}
		logger.Info("golden seed loaded",
			zap.String("file", cfg.Golden.SeedFile),
			zap.Int("entries", n))
	}

	if len(cfg.Routing.Providers) == 0 {
		cfg.Routing.Providers = defaultProviders()
	}
	applyProviderEnv(cfg)
	if len(cfg.Routing.Providers) == 0 {
		return nil, fmt.Errorf("no providers available: configure routing.providers or set OPENAI_API_KEY, ANTHROPIC_API_KEY or OLLAMA_BASE_URL")
	}

	var searcher pipeline.Searcher
	if cfg.Search.KBDir != "" {
		searcher = search.NewService(cfg.Search, logger)
	}

	return pipeline.NewResolver(cfg, pipeline.ResolverOptions{
		Extractor: extractor,
		Epochs:    epochs,
		Chain:     golden.NewChain(cache, refs, cfg.Golden, cfg.Gate, logger),
		Cache:     cache,
		Merger:    merge.NewEngine(cfg.Merge, logger),
		Generator: router.NewRouter(cfg.Routing, logger),
		Searcher:  searcher,
		DocFacts:  search.NewDocumentFactsProvider(extractor),
		Logger:    logger,
	}), nil
}
