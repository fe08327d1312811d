// Package planner is the process-wide entry point for trip searches. It loads
// the catalog once on first use, serializes rebuilds against searches and
// holds the default weights applied to requests that carry none.
package planner

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/tripdex/internal/catalog"
	"github.com/kailas-cloud/tripdex/internal/domain/facet"
	"github.com/kailas-cloud/tripdex/internal/domain/search/request"
	"github.com/kailas-cloud/tripdex/internal/domain/search/result"
)

const (
	keyInit    = "init"
	keyRebuild = "rebuild"
)

// Planner coordinates catalog lifecycle and searches.
// Searches share the catalog; Load and Build take it exclusively.
type Planner struct {
	catalog Catalog
	ranker  Ranker
	logger  *zap.Logger

	group     singleflight.Group
	lifecycle sync.RWMutex

	mu      sync.RWMutex
	weights facet.Weights
	ready   bool
}

// New creates a Planner with facet.Default weights.
func New(c Catalog, r Ranker, logger *zap.Logger) *Planner {
	return &Planner{catalog: c, ranker: r, logger: logger, weights: facet.Default()}
}

// Weights returns a copy of the default weights.
func (p *Planner) Weights() facet.Weights {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.weights.Clone()
}

// SetWeights replaces the default weights used by later searches.
func (p *Planner) SetWeights(w facet.Weights) error {
	if err := w.Validate(); err != nil {
		return err
	}
	p.mu.Lock()
	p.weights = w.Clone()
	p.mu.Unlock()
	p.logger.Info("Default weights updated", zap.Stringer("weights", w))
	return nil
}

// Ensure loads the catalog, building it when no artifacts exist.
// Concurrent callers share one load that outlives any single caller; each caller
// stops waiting when its own ctx is done. A failed load is retried by the next call.
func (p *Planner) Ensure(ctx context.Context) error {
	p.mu.RLock()
	ready := p.ready
	p.mu.RUnlock()
	if ready {
		return nil
	}

	flightCtx := context.WithoutCancel(ctx)
	ch := p.group.DoChan(keyInit, func() (any, error) {
		p.mu.RLock()
		done := p.ready
		p.mu.RUnlock()
		if done {
			return nil, nil
		}

		p.lifecycle.Lock()
		defer p.lifecycle.Unlock()
		if err := p.catalog.Load(flightCtx); err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
		p.mu.Lock()
		p.ready = true
		p.mu.Unlock()
		return nil, nil
	})

	select {
	case res := <-ch:
		return res.Err //nolint:wrapcheck // already wrapped inside the flight
	case <-ctx.Done():
		return fmt.Errorf("wait for catalog: %w", ctx.Err())
	}
}

// Search runs req against the catalog, loading it first if needed.
// Requests without weights use the weights current at call time.
func (p *Planner) Search(ctx context.Context, req *request.Request) ([]result.Result, error) {
	if err := p.Ensure(ctx); err != nil {
		return nil, err
	}
	if !req.HasWeights() {
		withDefaults := req.WithWeights(p.Weights())
		req = &withDefaults
	}

	p.lifecycle.RLock()
	defer p.lifecycle.RUnlock()
	results, err := p.ranker.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return results, nil
}

// Rebuild rebuilds the catalog from source files. Concurrent calls share one build,
// and searches wait until it finishes.
func (p *Planner) Rebuild(ctx context.Context) (*catalog.BuildReport, error) {
	v, err, shared := p.group.Do(keyRebuild, func() (any, error) {
		p.lifecycle.Lock()
		defer p.lifecycle.Unlock()
		report, err := p.catalog.Build(ctx)
		if err != nil {
			return report, fmt.Errorf("build catalog: %w", err)
		}
		p.mu.Lock()
		p.ready = true
		p.mu.Unlock()
		return report, nil
	})
	if shared {
		p.logger.Debug("Rebuild joined an in-flight build")
	}
	report, _ := v.(*catalog.BuildReport)
	return report, err //nolint:wrapcheck // already wrapped inside the flight
}

// State returns the catalog lifecycle state.
func (p *Planner) State() catalog.State { return p.catalog.State() }

// Countries returns the catalog countries, for filter choices.
func (p *Planner) Countries(ctx context.Context) ([]string, error) {
	if err := p.Ensure(ctx); err != nil {
		return nil, err
	}
	p.lifecycle.RLock()
	defer p.lifecycle.RUnlock()
	return p.catalog.Countries(), nil
}
