package tripdex

import (
	"time"

	"github.com/kailas-cloud/tripdex/internal/domain/search/result"
)

// Result is one ranked destination.
type Result struct {
	Rank            int
	Name            string
	Location        string
	State           string
	Country         string
	Score           float64
	FacetScores     map[string]float64 // activities, scenery, amenities, location
	Explanation     string
	MatchingAspects []string
	BestSeason      []string
	TravelTime      string
	// HasCoordinates reports whether Latitude and Longitude are set.
	HasCoordinates bool
	Latitude       float64
	Longitude      float64
}

// BuildSummary describes a completed rebuild.
type BuildSummary struct {
	ID            string
	Indexed       int
	Dimension     int
	SkippedFiles  []string
	Geocoded      int
	GeocodeMisses int
	Duration      time.Duration
}

// SearchOption refines a search.
type SearchOption func(*searchOptions)

type searchOptions struct {
	topK    int
	weights map[string]float64
	country string
	budget  string
	season  string
}

// TopK sets the number of results. Values above the catalog size return every destination.
func TopK(k int) SearchOption {
	return func(o *searchOptions) { o.topK = k }
}

// Weights sets per-facet weights for this search. They are normalized by their sum.
func Weights(w map[string]float64) SearchOption {
	return func(o *searchOptions) { o.weights = w }
}

// Country keeps destinations in exactly this country.
func Country(country string) SearchOption {
	return func(o *searchOptions) { o.country = country }
}

// Budget keeps destinations of one inferred price tier: Budget-Friendly, Mid-Range or Luxury.
func Budget(level string) SearchOption {
	return func(o *searchOptions) { o.budget = level }
}

// Season keeps destinations whose best seasons include season.
func Season(season string) SearchOption {
	return func(o *searchOptions) { o.season = season }
}

func resultFromDomain(r *result.Result) Result {
	rec := r.Record()
	scores := make(map[string]float64, len(r.FacetScores()))
	for f, v := range r.FacetScores() {
		scores[string(f)] = v
	}
	out := Result{
		Rank:            r.Rank(),
		Name:            rec.Name,
		Location:        rec.Location,
		State:           rec.State,
		Country:         rec.Country,
		Score:           r.Score(),
		FacetScores:     scores,
		Explanation:     r.Explanation(),
		MatchingAspects: r.MatchingAspects(),
		BestSeason:      append([]string(nil), rec.BestSeason...),
		TravelTime:      rec.TravelTime,
	}
	if p, ok := rec.Point(); ok {
		out.HasCoordinates = true
		out.Latitude, out.Longitude = p.Lat, p.Lon
	}
	return out
}
