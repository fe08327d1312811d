package facet

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/kailas-cloud/tripdex/internal/domain"
	"github.com/kailas-cloud/tripdex/internal/domain/destination"
)

// Facet is one independent semantic dimension a destination is embedded along.
type Facet string

// Supported facets.
const (
	Activities Facet = "activities"
	Scenery    Facet = "scenery"
	Amenities  Facet = "amenities"
	Location   Facet = "location"
)

// All lists facets in their canonical order. Index files and score arrays follow it.
var All = [...]Facet{Activities, Scenery, Amenities, Location}

// Count is the number of facets.
const Count = len(All)

// Parse resolves a facet name.
func Parse(s string) (Facet, error) {
	f := Facet(strings.ToLower(strings.TrimSpace(s)))
	if !f.IsValid() {
		return "", fmt.Errorf("%w: unknown facet %q", domain.ErrInvalidWeights, s)
	}
	return f, nil
}

// IsValid reports whether f is a known facet.
func (f Facet) IsValid() bool {
	return f.Ordinal() >= 0
}

// Ordinal returns the position of f in All, or -1.
func (f Facet) Ordinal() int {
	for i, x := range All {
		if x == f {
			return i
		}
	}
	return -1
}

func (f Facet) String() string { return string(f) }

// Texts holds the four facet blurbs of one destination, indexed by Ordinal.
type Texts [Count]string

// Get returns the blurb for f.
func (t Texts) Get(f Facet) string { return t[f.Ordinal()] }

// Project derives the facet texts of a record. Order of parts is significant.
func Project(r *destination.Record) Texts {
	var t Texts
	t[Activities.Ordinal()] = join(concat([]string{r.Description}, r.Activities, r.NearbyAttractions), false)
	t[Scenery.Ordinal()] = join(concat(r.Scenery, []string{r.Description}), false)
	t[Amenities.Ordinal()] = join(concat(r.Amenities, []string{r.Description}), false)
	t[Location.Ordinal()] = join(concat([]string{r.Location, r.State, r.Country}, r.Keywords), true)
	return t
}

func concat(parts ...[]string) []string {
	var n int
	for _, p := range parts {
		n += len(p)
	}
	out := make([]string, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func join(parts []string, dropEmpty bool) string {
	if !dropEmpty {
		return strings.Join(parts, " ")
	}
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// Weights maps facets to non-negative weights. Missing facets weigh zero.
type Weights map[Facet]float64

// Default returns the stock weighting used when a caller supplies none.
func Default() Weights {
	return Weights{
		Activities: 0.4,
		Scenery:    0.3,
		Amenities:  0.2,
		Location:   0.1,
	}
}

// ParseWeights converts a name-keyed map into validated Weights.
func ParseWeights(raw map[string]float64) (Weights, error) {
	w := make(Weights, len(raw))
	for name, v := range raw {
		f, err := Parse(name)
		if err != nil {
			return nil, err
		}
		w[f] = v
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

// Validate rejects unknown facets and negative or non-finite weights.
func (w Weights) Validate() error {
	for f, v := range w {
		if !f.IsValid() {
			return fmt.Errorf("%w: unknown facet %q", domain.ErrInvalidWeights, f)
		}
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s weight %v must be a non-negative finite number", domain.ErrInvalidWeights, f, v)
		}
	}
	return nil
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	var s float64
	for _, f := range All {
		s += w[f]
	}
	return s
}

// Normalize returns the weights divided by their sum in canonical facet order.
// A zero sum yields all-zero weights.
func (w Weights) Normalize() [Count]float64 {
	var out [Count]float64
	sum := w.Sum()
	if sum == 0 {
		return out
	}
	for i, f := range All {
		out[i] = w[f] / sum
	}
	return out
}

// Clone returns an independent copy.
func (w Weights) Clone() Weights {
	out := make(Weights, len(w))
	for f, v := range w {
		out[f] = v
	}
	return out
}

// String renders weights in canonical order, e.g. "activities=0.40 scenery=0.30 ...".
func (w Weights) String() string {
	parts := make([]string, 0, Count)
	for _, f := range All {
		parts = append(parts, fmt.Sprintf("%s=%.2f", f, w[f]))
	}
	return strings.Join(parts, " ")
}

// Names returns the sorted facet names, for help text and error messages.
func Names() []string {
	out := make([]string, 0, Count)
	for _, f := range All {
		out = append(out, string(f))
	}
	sort.Strings(out)
	return out
}
