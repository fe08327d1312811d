// Package index implements an exact inner-product nearest-neighbour index
// over unit vectors with a small self-describing binary format.
package index

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// Flat stores vectors row-major and scores queries by brute force.
// Row i corresponds to catalog position i.
type Flat struct {
	dim  int
	data []float32
	n    int
}

// Hit is one scored row.
type Hit struct {
	Row   int
	Score float64
}

// New creates an empty index of fixed dimension.
func New(dim int) (*Flat, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("index dimension must be positive, got %d", dim)
	}
	return &Flat{dim: dim}, nil
}

// Build creates an index from vectors in row order.
func Build(dim int, vectors [][]float32) (*Flat, error) {
	x, err := New(dim)
	if err != nil {
		return nil, err
	}
	x.data = make([]float32, 0, dim*len(vectors))
	if err := x.Add(vectors...); err != nil {
		return nil, err
	}
	return x, nil
}

// Add appends vectors. Every vector must match the index dimension.
func (x *Flat) Add(vectors ...[]float32) error {
	for i, v := range vectors {
		if len(v) != x.dim {
			return fmt.Errorf("vector %d: dimension %d, index expects %d", x.n+i, len(v), x.dim)
		}
	}
	for _, v := range vectors {
		x.data = append(x.data, v...)
		x.n++
	}
	return nil
}

// Dim returns the vector dimension.
func (x *Flat) Dim() int { return x.dim }

// Len returns the number of rows.
func (x *Flat) Len() int { return x.n }

// Row returns a read-only view of row i.
func (x *Flat) Row(i int) []float32 {
	return x.data[i*x.dim : (i+1)*x.dim]
}

// Scores returns the inner product of q with every row, indexed by row.
func (x *Flat) Scores(q []float32) ([]float64, error) {
	if len(q) != x.dim {
		return nil, fmt.Errorf("query dimension %d, index expects %d", len(q), x.dim)
	}
	out := make([]float64, x.n)
	for i := 0; i < x.n; i++ {
		out[i] = dot(q, x.data[i*x.dim:(i+1)*x.dim])
	}
	return out, nil
}

// Search returns the k best rows by descending score, ties by ascending row.
// k larger than Len returns every row.
func (x *Flat) Search(q []float32, k int) ([]Hit, error) {
	if k <= 0 {
		return nil, errors.New("k must be positive")
	}
	scores, err := x.Scores(q)
	if err != nil {
		return nil, err
	}
	hits := make([]Hit, len(scores))
	for i, s := range scores {
		hits[i] = Hit{Row: i, Score: s}
	}
	SortHits(hits)
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// SortHits orders hits by descending score, then ascending row.
func SortHits(hits []Hit) {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Row < hits[j].Row
	})
}

// KeyChecksum hashes an ordered list of row keys. Any reorder changes the sum.
func KeyChecksum(keys []string) uint64 {
	d := xxhash.New()
	for _, k := range keys {
		_, _ = d.WriteString(k)
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}

// Generation hashes the serialized catalog an index set was built alongside.
// Every index of one build carries the same value.
func Generation(catalog []byte) uint64 {
	return xxhash.Sum64(catalog)
}

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}
