package planner

import (
	"context"

	"github.com/kailas-cloud/tripdex/internal/catalog"
	"github.com/kailas-cloud/tripdex/internal/domain/search/request"
	"github.com/kailas-cloud/tripdex/internal/domain/search/result"
)

// Catalog is the lifecycle side of the catalog store.
type Catalog interface {
	Load(ctx context.Context) error
	Build(ctx context.Context) (*catalog.BuildReport, error)
	State() catalog.State
	Countries() []string
}

// Ranker runs one search against the current catalog.
type Ranker interface {
	Search(ctx context.Context, req *request.Request) ([]result.Result, error)
}
