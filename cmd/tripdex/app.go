package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/tripdex/internal/catalog"
	"github.com/kailas-cloud/tripdex/internal/config"
	"github.com/kailas-cloud/tripdex/internal/db"
	dbRedis "github.com/kailas-cloud/tripdex/internal/db/redis"
	"github.com/kailas-cloud/tripdex/internal/domain"
	"github.com/kailas-cloud/tripdex/internal/domain/facet"
	"github.com/kailas-cloud/tripdex/internal/embedder/hash"
	"github.com/kailas-cloud/tripdex/internal/geocode"
	logpkg "github.com/kailas-cloud/tripdex/internal/logger"
	"github.com/kailas-cloud/tripdex/internal/metrics"
	"github.com/kailas-cloud/tripdex/internal/repository/embcache"
	openaiEmb "github.com/kailas-cloud/tripdex/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/tripdex/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/tripdex/internal/usecase/health"
	"github.com/kailas-cloud/tripdex/internal/usecase/planner"
	"github.com/kailas-cloud/tripdex/internal/usecase/ranking"
)

// app is the composition root shared by every sub-command.
type app struct {
	env     string
	cfg     config.Config
	logger  *zap.Logger
	cache   db.Store
	encoder *embeddinguc.Encoder
	catalog *catalog.Store
	planner *planner.Planner
	health  *healthuc.Service
}

func newApp(ctx context.Context, env string) (*app, error) {
	if env == "" {
		env = config.GetEnv()
	}
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterCatalogMetrics()

	a := &app{env: env, cfg: cfg, logger: logger}

	if cfg.Embedding.Cache.Enabled {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Embedding.Cache.Addrs,
			Password: cfg.Embedding.Cache.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("create cache store: %w", err)
		}
		timeout := time.Duration(cfg.Embedding.Cache.ReadinessTimeout) * time.Second
		if err := store.WaitForReady(ctx, timeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("cache not ready: %w", err)
		}
		a.cache = store
		logger.Info("Connected to embedding cache", zap.Strings("addrs", cfg.Embedding.Cache.Addrs))
	}

	a.encoder = buildEncoder(cfg.Embedding, a.cache, logger)
	logger.Info("Encoder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	storeCfg := catalog.Config{
		SourceDir: cfg.Data.SourceDir,
		IndexDir:  cfg.Data.IndexDir,
		Workers:   cfg.Data.Workers,
		BatchSize: cfg.Data.BatchSize,
		Logger:    logger,
	}
	if cfg.Geocoding.Enabled {
		storeCfg.Geocoder = geocode.New(geocode.Config{
			BaseURL:     cfg.Geocoding.BaseURL,
			UserAgent:   cfg.Geocoding.UserAgent,
			MinInterval: time.Duration(cfg.Geocoding.MinIntervalMs) * time.Millisecond,
			Timeout:     time.Duration(cfg.Geocoding.TimeoutSec) * time.Second,
			Logger:      logger,
		})
	}
	a.catalog = catalog.New(storeCfg, a.encoder)

	a.planner = planner.New(a.catalog, ranking.New(a.catalog, a.encoder, logger), logger)
	if len(cfg.Search.Weights) > 0 {
		w, err := facet.ParseWeights(cfg.Search.Weights)
		if err != nil {
			return nil, fmt.Errorf("search.weights: %w", err)
		}
		if err := a.planner.SetWeights(w); err != nil {
			return nil, fmt.Errorf("search.weights: %w", err)
		}
	}

	// Pass nil interface (not typed nil pointer!) when the cache is disabled.
	var pinger healthuc.CachePinger
	if a.cache != nil {
		pinger = a.cache
	}
	a.health = healthuc.New(a.catalog, pinger, a.encoder)

	return a, nil
}

func (a *app) Close() {
	if a.cache != nil {
		a.cache.Close()
	}
	_ = a.logger.Sync()
}

// buildEncoder assembles the decorator chain: provider -> cache -> Encoder.
func buildEncoder(cfg config.EmbeddingConfig, cache db.KVStore, logger *zap.Logger) *embeddinguc.Encoder {
	var base domain.Embedder
	switch cfg.Provider {
	case config.ProviderOpenAI:
		base = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Provider:   cfg.Provider,
			Logger:     logger,
		})
	default:
		base = hash.New(cfg.Dimensions)
	}

	embedder := base
	if cache != nil {
		embedder = embcache.New(base, cache, cfg.Model, cfg.Cache.TTL(), metrics.EmbeddingCacheTotal, logger)
	}

	return embeddinguc.NewEncoder(embedder, cfg.Provider, cfg.Model, logger)
}
