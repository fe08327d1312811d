package ranking

import (
	"strings"

	"github.com/kailas-cloud/tripdex/internal/domain/destination"
)

// explainListLen caps the list entries quoted in an explanation.
const explainListLen = 5

// explain renders a short markdown summary of a destination.
func explain(rec *destination.Record) string {
	parts := []string{
		"**" + rec.Name + "**",
		"Location: " + rec.Location,
	}
	if rec.Description != "" {
		parts = append(parts, "\n"+rec.Description)
	}
	if len(rec.Activities) > 0 {
		parts = append(parts, "\n**Activities:** "+strings.Join(rec.Activities.Head(explainListLen), ", "))
	}
	if len(rec.Scenery) > 0 {
		parts = append(parts, "**Scenery:** "+strings.Join(rec.Scenery.Head(explainListLen), ", "))
	}
	if len(rec.BestSeason) > 0 {
		parts = append(parts, "**Best Season:** "+strings.Join(rec.BestSeason.Head(explainListLen), ", "))
	}
	return strings.Join(parts, "\n")
}

// matchingAspects lists activity, scenery and amenity entries containing any query term.
// Matching is a plain lowercase substring test and does not affect scores.
func matchingAspects(rec *destination.Record, query string) []string {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil
	}

	var out []string
	collect := func(label string, entries []string) {
		for _, e := range entries {
			if containsTerm(strings.ToLower(e), terms) {
				out = append(out, label+": "+e)
			}
		}
	}
	collect("Activity", rec.Activities)
	collect("Scenery", rec.Scenery)
	collect("Amenity", rec.Amenities)
	return out
}

func containsTerm(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
