package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/tripdex/internal/domain"
	"github.com/kailas-cloud/tripdex/internal/domain/facet"
	"github.com/kailas-cloud/tripdex/internal/domain/search/filter"
)

// MaxQueryLength is the maximum allowed search query length.
const MaxQueryLength = 4096

// Request is a validated search query.
type Request struct {
	query   string
	topK    int
	weights facet.Weights
	filters filter.Filter
}

// New validates search parameters.
// A nil weights map means "use the current default weights".
// topK must be positive; values above the catalog size are clamped by the engine.
func New(query string, topK int, weights facet.Weights, filters filter.Filter) (Request, error) {
	if strings.TrimSpace(query) == "" {
		return Request{}, fmt.Errorf("%w: query is required", domain.ErrInvalidRequest)
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidRequest, MaxQueryLength)
	}
	if topK <= 0 {
		return Request{}, fmt.Errorf("%w: got %d", domain.ErrInvalidTopK, topK)
	}
	if weights != nil {
		if err := weights.Validate(); err != nil {
			return Request{}, err
		}
		weights = weights.Clone()
	}
	return Request{query: query, topK: topK, weights: weights, filters: filters}, nil
}

// Query returns the raw query text, used verbatim for every facet.
func (r *Request) Query() string { return r.query }

// TopK returns the maximum number of results.
func (r *Request) TopK() int { return r.topK }

// Weights returns the caller weights, or nil when defaults apply.
func (r *Request) Weights() facet.Weights { return r.weights }

// HasWeights reports whether the caller supplied weights.
func (r *Request) HasWeights() bool { return r.weights != nil }

// WithWeights returns a copy of the request using w.
func (r *Request) WithWeights(w facet.Weights) Request {
	c := *r
	c.weights = w.Clone()
	return c
}

// Filters returns the post-ranking filters.
func (r *Request) Filters() filter.Filter { return r.filters }
