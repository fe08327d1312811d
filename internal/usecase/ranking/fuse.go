package ranking

import (
	"sort"

	"github.com/kailas-cloud/tripdex/internal/domain/facet"
)

// scored is one destination row with its per-facet and fused scores.
type scored struct {
	row    int
	score  float64
	facets [facet.Count]float64
}

// fuse combines per-facet scores (indexed [facet][row]) into one weighted score per row.
// weights must already be normalized; all-zero weights give every row a zero score.
// The result is sorted by descending score, ties by ascending row.
func fuse(perFacet [facet.Count][]float64, weights [facet.Count]float64, n int) []scored {
	out := make([]scored, n)
	for row := range out {
		s := scored{row: row}
		for fi := range perFacet {
			s.facets[fi] = perFacet[fi][row]
			s.score += weights[fi] * perFacet[fi][row]
		}
		out[row] = s
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].row < out[j].row
	})
	return out
}
