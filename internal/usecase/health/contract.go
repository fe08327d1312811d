package health

import (
	"context"

	"github.com/kailas-cloud/tripdex/internal/catalog"
)

// CatalogStater reports the catalog lifecycle state.
type CatalogStater interface {
	State() catalog.State
}

// CachePinger checks embedding cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
