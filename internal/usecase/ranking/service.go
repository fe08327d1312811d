// Package ranking ranks catalog destinations for a free-text query by
// weighted fusion of four facet similarity scores.
package ranking

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/tripdex/internal/domain"
	"github.com/kailas-cloud/tripdex/internal/domain/facet"
	"github.com/kailas-cloud/tripdex/internal/domain/search/request"
	"github.com/kailas-cloud/tripdex/internal/domain/search/result"
	"github.com/kailas-cloud/tripdex/internal/logger"
	"github.com/kailas-cloud/tripdex/internal/metrics"
)

// Service runs exhaustive weighted searches over the catalog.
type Service struct {
	catalog Catalog
	encoder Encoder
	logger  *zap.Logger
}

// New creates a ranking service.
func New(c Catalog, enc Encoder, logger *zap.Logger) *Service {
	return &Service{catalog: c, encoder: enc, logger: logger}
}

// Search embeds the query once, scores every destination on every facet,
// fuses the scores with the request weights (default weights when unset),
// applies filters and returns at most TopK results.
// TopK above the catalog size returns the whole catalog.
func (s *Service) Search(ctx context.Context, req *request.Request) ([]result.Result, error) {
	start := time.Now()
	results, err := s.search(ctx, req)

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.SearchRequestsTotal.WithLabelValues(status).Inc()
	metrics.SearchDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx, s.logger).Debug("Search completed",
		zap.String("query", req.Query()),
		zap.Int("results", len(results)),
		zap.Duration("duration", time.Since(start)))
	return results, nil
}

func (s *Service) search(ctx context.Context, req *request.Request) ([]result.Result, error) {
	if req.TopK() <= 0 {
		return nil, domain.ErrInvalidTopK
	}
	snap, err := s.catalog.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	n := snap.Len()
	if n == 0 {
		return nil, domain.ErrEmptyCatalog
	}

	weights := req.Weights()
	if !req.HasWeights() {
		weights = facet.Default()
	}

	emb, err := s.encoder.Embed(ctx, req.Query())
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	// One query vector serves all four facets.
	var perFacet [facet.Count][]float64
	for i, f := range facet.All {
		scores, err := snap.Scores(f, emb.Embedding)
		if err != nil {
			return nil, fmt.Errorf("score %s: %w", f, err)
		}
		perFacet[i] = scores
	}

	ranked := fuse(perFacet, weights.Normalize(), n)

	filters := req.Filters()
	limit := min(req.TopK(), n)
	out := make([]result.Result, 0, limit)
	for _, r := range ranked {
		if len(out) == limit {
			break
		}
		rec := snap.Record(r.row)
		if !filters.Match(&rec) {
			continue
		}
		out = append(out, result.New(
			len(out)+1, r.score, r.facets,
			explain(&rec), matchingAspects(&rec, req.Query()), rec,
		))
	}
	return out, nil
}
