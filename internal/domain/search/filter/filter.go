package filter

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/tripdex/internal/domain"
	"github.com/kailas-cloud/tripdex/internal/domain/destination"
)

// Budget is an inferred price tier.
type Budget string

// Budget tiers.
const (
	BudgetAny    Budget = ""
	BudgetLow    Budget = "Budget-Friendly"
	BudgetMid    Budget = "Mid-Range"
	BudgetLuxury Budget = "Luxury"
)

var (
	luxuryKeywords  = []string{"luxury", "resort", "5-star", "exclusive", "premium", "overwater", "villa", "spa"}
	luxuryAmenities = []string{"luxury hotels", "luxury resorts", "spas", "private", "concierge"}
	budgetKeywords  = []string{"campground", "hostel", "budget", "affordable", "cheap"}
	budgetAmenities = []string{"campgrounds", "hostels", "budget hotels", "camping"}
)

// ParseBudget resolves a tier name, case-insensitively. Empty and "any" mean no filter.
func ParseBudget(s string) (Budget, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any", "any budget":
		return BudgetAny, nil
	case "budget-friendly", "budget":
		return BudgetLow, nil
	case "mid-range", "mid":
		return BudgetMid, nil
	case "luxury":
		return BudgetLuxury, nil
	}
	return BudgetAny, fmt.Errorf("%w: unknown budget level %q", domain.ErrInvalidRequest, s)
}

// InferBudget classifies a destination by description and amenity keywords.
// Luxury signals take precedence over budget signals; anything else is mid-range.
func InferBudget(r *destination.Record) Budget {
	desc := strings.ToLower(r.Description)
	if containsAny(desc, luxuryKeywords) || anyAmenity(r.Amenities, luxuryAmenities) {
		return BudgetLuxury
	}
	if containsAny(desc, budgetKeywords) || anyAmenity(r.Amenities, budgetAmenities) {
		return BudgetLow
	}
	return BudgetMid
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func anyAmenity(amenities, needles []string) bool {
	for _, a := range amenities {
		if containsAny(strings.ToLower(a), needles) {
			return true
		}
	}
	return false
}

// Filter narrows ranked results without affecting scores. Zero value matches everything.
type Filter struct {
	country string
	budget  Budget
	season  string
}

// New validates and creates a Filter. Empty values disable the corresponding check.
func New(country, budget, season string) (Filter, error) {
	b, err := ParseBudget(budget)
	if err != nil {
		return Filter{}, err
	}
	season = strings.TrimSpace(season)
	if strings.EqualFold(season, "any") || strings.EqualFold(season, "any season") {
		season = ""
	}
	country = strings.TrimSpace(country)
	if strings.EqualFold(country, "all countries") {
		country = ""
	}
	return Filter{country: country, budget: b, season: season}, nil
}

// Country returns the exact country to match.
func (f Filter) Country() string { return f.country }

// Budget returns the required budget tier.
func (f Filter) Budget() Budget { return f.budget }

// Season returns the required best season.
func (f Filter) Season() string { return f.season }

// IsEmpty reports whether the filter matches everything.
func (f Filter) IsEmpty() bool {
	return f.country == "" && f.budget == BudgetAny && f.season == ""
}

// Match reports whether r passes every configured check.
func (f Filter) Match(r *destination.Record) bool {
	if f.country != "" && r.Country != f.country {
		return false
	}
	if f.budget != BudgetAny && InferBudget(r) != f.budget {
		return false
	}
	if f.season != "" && !r.BestSeason.Contains(f.season) {
		return false
	}
	return true
}
