package catalog

import (
	"fmt"
	"sort"

	"github.com/kailas-cloud/tripdex/internal/domain/destination"
	"github.com/kailas-cloud/tripdex/internal/domain/facet"
	"github.com/kailas-cloud/tripdex/internal/index"
)

// Snapshot is an immutable catalog generation: records plus one index per facet,
// row i of every index belonging to records[i].
type Snapshot struct {
	records []destination.Record
	indexes [facet.Count]*index.Flat
}

func newSnapshot(records []destination.Record, indexes [facet.Count]*index.Flat) (*Snapshot, error) {
	for i, x := range indexes {
		if x == nil {
			return nil, fmt.Errorf("missing %s index", facet.All[i])
		}
		if x.Len() != len(records) {
			return nil, fmt.Errorf("%s index has %d rows, catalog has %d", facet.All[i], x.Len(), len(records))
		}
	}
	return &Snapshot{records: records, indexes: indexes}, nil
}

// Len returns the number of destinations.
func (s *Snapshot) Len() int { return len(s.records) }

// Dim returns the embedding dimension shared by all facet indexes.
func (s *Snapshot) Dim() int { return s.indexes[0].Dim() }

// Record returns a copy of the destination at row i.
func (s *Snapshot) Record(i int) destination.Record { return s.records[i] }

// Records returns a copy of all destinations in row order.
func (s *Snapshot) Records() []destination.Record {
	out := make([]destination.Record, len(s.records))
	copy(out, s.records)
	return out
}

// Scores returns the similarity of q to every destination along facet f, indexed by row.
func (s *Snapshot) Scores(f facet.Facet, q []float32) ([]float64, error) {
	if !f.IsValid() {
		return nil, fmt.Errorf("unknown facet %q", f)
	}
	scores, err := s.indexes[f.Ordinal()].Scores(q)
	if err != nil {
		return nil, fmt.Errorf("%s scores: %w", f, err)
	}
	return scores, nil
}

// Countries returns the sorted distinct countries in the catalog.
func (s *Snapshot) Countries() []string {
	seen := make(map[string]struct{})
	for i := range s.records {
		seen[s.records[i].Country] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		if c != "" {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

func (s *Snapshot) filenames() []string {
	out := make([]string, len(s.records))
	for i := range s.records {
		out[i] = s.records[i].Filename
	}
	return out
}
