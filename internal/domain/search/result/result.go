package result

import (
	"github.com/kailas-cloud/tripdex/internal/domain/destination"
	"github.com/kailas-cloud/tripdex/internal/domain/facet"
)

// Result is one ranked destination.
type Result struct {
	rank        int
	score       float64
	facetScores [facet.Count]float64
	explanation string
	matching    []string
	record      destination.Record
}

// New creates a search result. The record is copied.
func New(
	rank int, score float64, facetScores [facet.Count]float64,
	explanation string, matching []string, record destination.Record,
) Result {
	return Result{
		rank:        rank,
		score:       score,
		facetScores: facetScores,
		explanation: explanation,
		matching:    matching,
		record:      record,
	}
}

// Rank returns the 1-based position in the result list.
func (r Result) Rank() int { return r.rank }

// Name returns the destination name.
func (r Result) Name() string { return r.record.Name }

// Location returns the destination location text.
func (r Result) Location() string { return r.record.Location }

// Score returns the fused weighted score.
func (r Result) Score() float64 { return r.score }

// FacetScore returns the similarity for one facet.
func (r Result) FacetScore(f facet.Facet) float64 {
	i := f.Ordinal()
	if i < 0 {
		return 0
	}
	return r.facetScores[i]
}

// FacetScores returns all facet similarities keyed by facet name.
func (r Result) FacetScores() map[facet.Facet]float64 {
	out := make(map[facet.Facet]float64, facet.Count)
	for i, f := range facet.All {
		out[f] = r.facetScores[i]
	}
	return out
}

// Explanation returns the human-readable summary.
func (r Result) Explanation() string { return r.explanation }

// MatchingAspects returns the textual evidence lines, e.g. "Activity: skiing".
func (r Result) MatchingAspects() []string { return r.matching }

// Record returns the full destination record.
func (r Result) Record() destination.Record { return r.record }

// LocationLabel returns coordinates or "location unknown".
func (r Result) LocationLabel() string { return r.record.LocationLabel() }
