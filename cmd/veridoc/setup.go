package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/soundprediction/veridoc"
	"github.com/soundprediction/veridoc/pkg/audit"
	"github.com/soundprediction/veridoc/pkg/cache"
	"github.com/soundprediction/veridoc/pkg/config"
	"github.com/soundprediction/veridoc/pkg/corpus"
	"github.com/soundprediction/veridoc/pkg/embedder"
	"github.com/soundprediction/veridoc/pkg/logger"
	"github.com/soundprediction/veridoc/pkg/metrics"
	"github.com/soundprediction/veridoc/pkg/policy"
	"github.com/soundprediction/veridoc/pkg/retriever"
	"github.com/soundprediction/veridoc/pkg/vectorindex"
)

func newLogger(cfg *config.Config) *slog.Logger {
	return logger.New(logger.ParseLevel(cfg.Log.Level), cfg.Log.Format, nil)
}

func buildEmbedder(cfg *config.Config) (embedder.Client, error) {
	embCfg := embedder.Config{
		Model:   cfg.Embedding.Model,
		BaseURL: cfg.Embedding.BaseURL,
	}
	switch cfg.Embedding.Provider {
	case "openai":
		if cfg.Embedding.APIKey == "" {
			return nil, fmt.Errorf("openai embedding provider requires an API key")
		}
		return embedder.NewOpenAIEmbedder(cfg.Embedding.APIKey, embCfg), nil
	case "embedeverything":
		return embedder.NewEmbedEverythingClient(embCfg)
	case "", "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}
}

func buildIndex(cfg *config.Config, log *slog.Logger) (vectorindex.Index, error) {
	var index vectorindex.Index
	var err error
	switch cfg.VectorIndex.Backend {
	case "badger":
		index, err = vectorindex.NewBadgerIndex(cfg.VectorIndex.Path)
		if err != nil {
			return nil, fmt.Errorf("open vector index: %w", err)
		}
	case "", "memory":
		index = vectorindex.NewMemoryIndex()
	default:
		return nil, fmt.Errorf("unsupported vector index backend: %s", cfg.VectorIndex.Backend)
	}

	if cfg.CircuitBreaker.Enabled {
		index = vectorindex.NewBreaker(index, vectorindex.BreakerConfig{
			Timeout:          time.Duration(cfg.CircuitBreaker.SearchTimeoutMS) * time.Millisecond,
			MaxRequests:      cfg.CircuitBreaker.MaxRequests,
			Interval:         time.Duration(cfg.CircuitBreaker.Interval) * time.Second,
			OpenTimeout:      time.Duration(cfg.CircuitBreaker.OpenTimeout) * time.Second,
			ReadyToTripRatio: cfg.CircuitBreaker.ReadyToTripRatio,
		}, log)
	}
	return index, nil
}

func buildTables(cfg *config.Config) (*policy.Tables, error) {
	if cfg.Policy.Path == "" {
		return policy.Default(), nil
	}
	return policy.LoadFile(cfg.Policy.Path)
}

func buildCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second
	switch cfg.Cache.Backend {
	case "redis":
		return cache.NewRedis(ctx, cfg.Cache.RedisURL, ttl)
	case "", "memory":
		return cache.NewMemory(cfg.Cache.MaxEntries, ttl), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s", cfg.Cache.Backend)
	}
}

// initializeClient assembles the validation pipeline from configuration.
func initializeClient(ctx context.Context, cfg *config.Config, log *slog.Logger) (*veridoc.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	tables, err := buildTables(cfg)
	if err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}

	emb, err := buildEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	// Without an embedder the semantic axis can never run; skip the index.
	var index vectorindex.Index
	if emb != nil {
		index, err = buildIndex(cfg, log)
		if err != nil {
			return nil, err
		}
	}

	queryCache, err := buildCache(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init cache: %w", err)
	}

	var auditWriter *audit.Writer
	if cfg.Audit.Enabled {
		auditWriter, err = audit.NewWriter(cfg.Audit.ParquetPath, cfg.Audit.BatchSize)
		if err != nil {
			return nil, fmt.Errorf("init audit trail: %w", err)
		}
	}

	clientCfg := &veridoc.Config{
		DefaultK: cfg.Retrieval.DefaultK,
		MaxK:     cfg.Retrieval.MaxK,
		Retrieval: retriever.Config{
			SemanticWeight: cfg.Retrieval.SemanticWeight,
			LexicalWeight:  cfg.Retrieval.LexicalWeight,
		},
		PolicyPath: cfg.Policy.Path,
		Cache:      queryCache,
		Metrics:    metrics.New(nil),
		Audit:      auditWriter,
	}

	loader := corpus.NewFileLoader(cfg.Corpus.Path)
	return veridoc.NewClient(ctx, loader, index, emb, tables, clientCfg, log)
}
