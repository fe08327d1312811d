package main

import (
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/multierr"

	"github.com/kailas-cloud/tripdex/internal/catalog"
	"github.com/kailas-cloud/tripdex/internal/domain/destination"
	"github.com/kailas-cloud/tripdex/internal/domain/facet"
	"github.com/kailas-cloud/tripdex/internal/domain/search/result"
)

func TestParseWeightFlags(t *testing.T) {
	w, err := parseWeightFlags(map[string]string{"activities": "0.6", "Scenery": " 0.4"})
	if err != nil {
		t.Fatalf("parseWeightFlags: %v", err)
	}
	if w[facet.Activities] != 0.6 || w[facet.Scenery] != 0.4 {
		t.Errorf("weights = %v", w)
	}

	if w, err := parseWeightFlags(nil); err != nil || w != nil {
		t.Errorf("empty flags = %v, %v; want nil, nil", w, err)
	}
	if _, err := parseWeightFlags(map[string]string{"activities": "lots"}); err == nil {
		t.Error("expected error for non-numeric weight")
	}
	if _, err := parseWeightFlags(map[string]string{"nightlife": "1"}); err == nil {
		t.Error("expected error for unknown facet")
	}
}

func TestRenderResults(t *testing.T) {
	rec := destination.Record{Name: "Banff", Location: "Banff", Country: "Canada"}
	results := []result.Result{
		result.New(1, 0.75, [facet.Count]float64{0.9, 0.7, 0.4, 0.2}, "**Banff**", []string{"Activity: hiking"}, rec),
	}
	out := renderResults("lakes", facet.Default(), results)
	for _, want := range []string{"Banff", "0.750", "activities 0.900", "Activity: hiking", "location unknown"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if out := renderResults("lakes", facet.Default(), nil); !strings.Contains(out, "no destinations") {
		t.Errorf("empty output = %q", out)
	}
}

func TestRenderBuildReport(t *testing.T) {
	out := renderBuildReport(&catalog.BuildReport{
		ID:           "b-1",
		Indexed:      1200,
		Dimension:    384,
		Skipped:      multierr.Combine(errors.New("a.json: bad"), errors.New("b.json: bad")),
		BytesWritten: 2_500_000,
		Duration:     1234 * time.Millisecond,
	})
	for _, want := range []string{"b-1", "1,200", "2.5 MB", "1.234s", "skipped 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
