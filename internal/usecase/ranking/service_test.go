package ranking

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/tripdex/internal/catalog"
	"github.com/kailas-cloud/tripdex/internal/domain"
	"github.com/kailas-cloud/tripdex/internal/domain/facet"
	"github.com/kailas-cloud/tripdex/internal/domain/search/filter"
	"github.com/kailas-cloud/tripdex/internal/domain/search/request"
	"github.com/kailas-cloud/tripdex/internal/domain/search/result"
)

const skiQuery = "I want to ski in the mountains"

var skiWeights = facet.Weights{facet.Activities: 0.7, facet.Scenery: 0.3, facet.Amenities: 0, facet.Location: 0}

func names(results []result.Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Name()
	}
	return out
}

func TestSearch_SkiQueryRanksSkiResortFirst(t *testing.T) {
	env := newTestEnv(t)

	top2, err := env.svc.Search(context.Background(), mustRequest(t, skiQuery, 2, skiWeights, filter.Filter{}))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(top2) != 2 || top2[0].Name() != "Snowpeak" {
		t.Fatalf("results = %v, want Snowpeak first", names(top2))
	}

	all, err := env.svc.Search(context.Background(), mustRequest(t, skiQuery, 3, skiWeights, filter.Filter{}))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, r := range all[1:] {
		if !(all[0].Score() > r.Score()) {
			t.Errorf("Snowpeak score %f not strictly above %s score %f", all[0].Score(), r.Name(), r.Score())
		}
	}
	if all[0].Rank() != 1 || all[2].Rank() != 3 {
		t.Errorf("ranks = %d..%d", all[0].Rank(), all[2].Rank())
	}
	if got := all[0].MatchingAspects(); len(got) == 0 {
		t.Error("expected textual matches for the ski resort")
	}
}

func TestSearch_WeightScalingInvariance(t *testing.T) {
	env := newTestEnv(t)
	base := facet.Weights{facet.Activities: 0.2, facet.Scenery: 0.5, facet.Amenities: 0.1, facet.Location: 0.2}
	scaled := facet.Weights{}
	for f, v := range base {
		scaled[f] = v * 37
	}

	for _, q := range []string{skiQuery, "beach surfing", "museums and galleries in France"} {
		a, err := env.svc.Search(context.Background(), mustRequest(t, q, 3, base, filter.Filter{}))
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		b, err := env.svc.Search(context.Background(), mustRequest(t, q, 3, scaled, filter.Filter{}))
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if !reflect.DeepEqual(names(a), names(b)) {
			t.Errorf("%q: ranking changed under scaling: %v vs %v", q, names(a), names(b))
		}
	}
}

func TestSearch_ZeroWeights(t *testing.T) {
	env := newTestEnv(t)
	zero := facet.Weights{facet.Activities: 0, facet.Scenery: 0, facet.Amenities: 0, facet.Location: 0}

	res, err := env.svc.Search(context.Background(), mustRequest(t, skiQuery, 3, zero, filter.Filter{}))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, r := range res {
		if r.Score() != 0 {
			t.Errorf("%s score = %f, want 0", r.Name(), r.Score())
		}
	}
	if got := fmt.Sprint(names(res)); got != "[Snowpeak Sunport Artville]" {
		t.Errorf("zero-weight order = %s, want catalog order", got)
	}
}

func TestSearch_ExhaustiveAndClamped(t *testing.T) {
	env := newTestEnv(t)
	for _, k := range []int{3, 50} {
		res, err := env.svc.Search(context.Background(), mustRequest(t, "quiet escape", k, nil, filter.Filter{}))
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(res) != 3 {
			t.Fatalf("top_k=%d returned %d results", k, len(res))
		}
		seen := map[string]bool{}
		for _, r := range res {
			if seen[r.Name()] {
				t.Errorf("duplicate %s", r.Name())
			}
			seen[r.Name()] = true
			if len(r.FacetScores()) != facet.Count {
				t.Errorf("%s has %d facet scores", r.Name(), len(r.FacetScores()))
			}
		}
	}
}

func TestSearch_Deterministic(t *testing.T) {
	env := newTestEnv(t)
	req := mustRequest(t, "sunny beach with surfing", 3, nil, filter.Filter{})
	a, err := env.svc.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	b, _ := env.svc.Search(context.Background(), req)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("identical searches returned different results")
	}
}

func TestSearch_DefaultWeightsWhenUnset(t *testing.T) {
	env := newTestEnv(t)
	a, err := env.svc.Search(context.Background(), mustRequest(t, skiQuery, 3, nil, filter.Filter{}))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	b, _ := env.svc.Search(context.Background(), mustRequest(t, skiQuery, 3, facet.Default(), filter.Filter{}))
	if !reflect.DeepEqual(a, b) {
		t.Fatal("unset weights must behave like default weights")
	}
}

func TestSearch_FiltersApplyBeforeTruncation(t *testing.T) {
	env := newTestEnv(t)
	f, err := filter.New("France", "", "")
	if err != nil {
		t.Fatalf("filter.New: %v", err)
	}
	res, err := env.svc.Search(context.Background(), mustRequest(t, skiQuery, 1, skiWeights, f))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res) != 1 || res[0].Name() != "Artville" || res[0].Rank() != 1 {
		t.Fatalf("results = %v", names(res))
	}
	if res[0].LocationLabel() != "location unknown" {
		t.Errorf("label = %q", res[0].LocationLabel())
	}

	season, _ := filter.New("", "", "winter")
	res, _ = env.svc.Search(context.Background(), mustRequest(t, "beach", 3, nil, season))
	if fmt.Sprint(names(res)) != "[Snowpeak]" {
		t.Errorf("season filter = %v", names(res))
	}
}

func TestSearch_InvalidTopK(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.svc.Search(context.Background(), &request.Request{}); !errors.Is(err, domain.ErrInvalidTopK) {
		t.Fatalf("err = %v, want ErrInvalidTopK", err)
	}
}

func TestSearch_NotReady(t *testing.T) {
	svc := New(&staticCatalog{err: domain.ErrNotReady}, &failingEncoder{}, zap.NewNop())
	_, err := svc.Search(context.Background(), mustRequest(t, "x", 1, nil, filter.Filter{}))
	if !errors.Is(err, domain.ErrNotReady) {
		t.Fatalf("err = %v, want ErrNotReady", err)
	}
}

func TestSearch_EmptyCatalog(t *testing.T) {
	svc := New(&staticCatalog{snap: &catalog.Snapshot{}}, &failingEncoder{}, zap.NewNop())
	_, err := svc.Search(context.Background(), mustRequest(t, "x", 1, nil, filter.Filter{}))
	if !errors.Is(err, domain.ErrEmptyCatalog) {
		t.Fatalf("err = %v, want ErrEmptyCatalog", err)
	}
}

func TestSearch_EncodingError(t *testing.T) {
	env := newTestEnv(t)
	svc := New(env.store, &failingEncoder{err: fmt.Errorf("%w: offline", domain.ErrEncoding)}, zap.NewNop())
	_, err := svc.Search(context.Background(), mustRequest(t, "x", 1, nil, filter.Filter{}))
	if !errors.Is(err, domain.ErrEncoding) {
		t.Fatalf("err = %v, want ErrEncoding", err)
	}
}
