package ranking

import (
	"context"

	"github.com/kailas-cloud/tripdex/internal/catalog"
	"github.com/kailas-cloud/tripdex/internal/domain"
)

// Catalog provides the current catalog generation.
type Catalog interface {
	Snapshot() (*catalog.Snapshot, error)
}

// Encoder vectorizes query text into a unit vector.
type Encoder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
