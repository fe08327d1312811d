package tripdex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/kailas-cloud/tripdex/internal/catalog"
	"github.com/kailas-cloud/tripdex/internal/domain"
	"github.com/kailas-cloud/tripdex/internal/domain/facet"
	"github.com/kailas-cloud/tripdex/internal/domain/search/filter"
	"github.com/kailas-cloud/tripdex/internal/domain/search/request"
	"github.com/kailas-cloud/tripdex/internal/domain/search/result"
	"github.com/kailas-cloud/tripdex/internal/embedder/hash"
	"github.com/kailas-cloud/tripdex/internal/geocode"
	embeddinguc "github.com/kailas-cloud/tripdex/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/tripdex/internal/usecase/health"
	"github.com/kailas-cloud/tripdex/internal/usecase/planner"
	"github.com/kailas-cloud/tripdex/internal/usecase/ranking"
)

const defaultTopK = 5

// Internal interfaces for substitution in tests.
type plannerUseCase interface {
	Ensure(ctx context.Context) error
	Search(ctx context.Context, req *request.Request) ([]result.Result, error)
	Rebuild(ctx context.Context) (*catalog.BuildReport, error)
	Weights() facet.Weights
	SetWeights(w facet.Weights) error
	Countries(ctx context.Context) ([]string, error)
}

// Client is the tripdex SDK entry point.
type Client struct {
	planner   plannerUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client and loads the catalog, building the indexes when none are persisted.
// The provided context is used for that initial load.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.sourceDir == "" || cfg.indexDir == "" {
		return nil, errors.New("tripdex: source and index directories required (use WithDirs)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}
	c, err := wireClient(cfg, obs)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	err = c.planner.Ensure(ctx)
	c.obs.observe("load", start, err)
	if err != nil {
		return nil, fmt.Errorf("tripdex: load catalog: %w", err)
	}
	return c, nil
}

func wireClient(cfg *clientConfig, obs *observer) (*Client, error) {
	// Internal components log through zap; SDK operations log through slog in the observer.
	logger := zap.NewNop()

	var (
		domEmb   domain.Embedder
		provider = "custom"
		model    = cfg.embedderModel
	)
	if cfg.embedder != nil {
		domEmb = newEmbedderAdapter(cfg.embedder)
	} else {
		h := hash.New(cfg.hashDim)
		domEmb = h
		provider = "hash"
		model = fmt.Sprintf("hash-%d", h.Dimensions())
	}
	enc := embeddinguc.NewEncoder(domEmb, provider, model, logger)

	storeCfg := catalog.Config{
		SourceDir: cfg.sourceDir,
		IndexDir:  cfg.indexDir,
		Fs:        cfg.fs,
		Workers:   cfg.workers,
		BatchSize: cfg.batchSize,
		Logger:    logger,
	}
	if cfg.geocode {
		storeCfg.Geocoder = geocode.New(geocode.Config{UserAgent: cfg.userAgent, Logger: logger})
	}
	store := catalog.New(storeCfg, enc)

	p := planner.New(store, ranking.New(store, enc, logger), logger)
	if cfg.weights != nil {
		w, err := facet.ParseWeights(cfg.weights)
		if err != nil {
			return nil, fmt.Errorf("tripdex: default weights: %w", err)
		}
		if err := p.SetWeights(w); err != nil {
			return nil, fmt.Errorf("tripdex: default weights: %w", err)
		}
	}

	return &Client{
		planner:   p,
		healthSvc: healthuc.New(store, nil, enc),
		obs:       obs,
	}, nil
}

// Search ranks destinations for a free-text query.
func (c *Client) Search(ctx context.Context, query string, opts ...SearchOption) (results []Result, err error) {
	start := time.Now()
	defer func() { c.obs.observeSearch(start, len(results), err) }()

	so := searchOptions{topK: defaultTopK}
	for _, o := range opts {
		o(&so)
	}

	var weights facet.Weights
	if so.weights != nil {
		if weights, err = facet.ParseWeights(so.weights); err != nil {
			return nil, fmt.Errorf("search: %w", err)
		}
	}
	filters, err := filter.New(so.country, so.budget, so.season)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	req, err := request.New(query, so.topK, weights, filters)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	found, err := c.planner.Search(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	results = make([]Result, len(found))
	for i := range found {
		results[i] = resultFromDomain(&found[i])
	}
	return results, nil
}

// Rebuild re-reads the source directory and replaces the indexes.
// Searches wait for the rebuild; on failure the previous catalog keeps serving.
func (c *Client) Rebuild(ctx context.Context) (summary BuildSummary, err error) {
	start := time.Now()
	defer func() { c.obs.observe("rebuild", start, err) }()

	report, err := c.planner.Rebuild(ctx)
	if err != nil {
		return BuildSummary{}, fmt.Errorf("rebuild: %w", err)
	}
	return summaryFromReport(report), nil
}

// Weights returns the current default facet weights.
func (c *Client) Weights() map[string]float64 {
	return weightsToMap(c.planner.Weights())
}

// SetWeights replaces the default facet weights used by searches without explicit weights.
func (c *Client) SetWeights(w map[string]float64) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("set_weights", start, err) }()

	parsed, err := facet.ParseWeights(w)
	if err != nil {
		return fmt.Errorf("set weights: %w", err)
	}
	if err := c.planner.SetWeights(parsed); err != nil {
		return fmt.Errorf("set weights: %w", err)
	}
	return nil
}

// Countries lists the distinct countries in the catalog, sorted.
func (c *Client) Countries(ctx context.Context) ([]string, error) {
	countries, err := c.planner.Countries(ctx)
	if err != nil {
		return nil, fmt.Errorf("countries: %w", err)
	}
	return countries, nil
}

func weightsToMap(w facet.Weights) map[string]float64 {
	out := make(map[string]float64, facet.Count)
	for _, f := range facet.All {
		out[string(f)] = w[f]
	}
	return out
}

func summaryFromReport(r *catalog.BuildReport) BuildSummary {
	s := BuildSummary{
		ID:            r.ID,
		Indexed:       r.Indexed,
		Dimension:     r.Dimension,
		Geocoded:      r.Geocoded,
		GeocodeMisses: r.MissCount(),
		Duration:      r.Duration,
	}
	for _, e := range multierr.Errors(r.Skipped) {
		var rpe *domain.RecordParseError
		if errors.As(e, &rpe) {
			s.SkippedFiles = append(s.SkippedFiles, rpe.File)
		}
	}
	return s
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

// batchEmbedderAdapter additionally forwards BatchEmbed when the public embedder supports it.
type batchEmbedderAdapter struct {
	embedderAdapter
	batch BatchEmbedder
}

func newEmbedderAdapter(e Embedder) domain.Embedder {
	a := embedderAdapter{inner: e}
	if b, ok := e.(BatchEmbedder); ok {
		return &batchEmbedderAdapter{embedderAdapter: a, batch: b}
	}
	return &a
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

func (a *batchEmbedderAdapter) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	r, err := a.batch.BatchEmbed(ctx, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", err)
	}
	return domain.BatchEmbeddingResult{
		Embeddings:   r.Embeddings,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}
