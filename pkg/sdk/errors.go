package tripdex

import "github.com/kailas-cloud/tripdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNoData         = domain.ErrNoData
	ErrEncoding       = domain.ErrEncoding
	ErrIndexCorrupt   = domain.ErrIndexCorrupt
	ErrEmptyCatalog   = domain.ErrEmptyCatalog
	ErrNotReady       = domain.ErrNotReady
	ErrInvalidTopK    = domain.ErrInvalidTopK
	ErrInvalidWeights = domain.ErrInvalidWeights
	ErrInvalidRequest = domain.ErrInvalidRequest
)
