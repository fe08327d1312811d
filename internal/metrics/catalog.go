package metrics

import "github.com/prometheus/client_golang/prometheus"

// Catalog, geocoding and search metrics.
var (
	CatalogBuildRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "catalog_build_records_total",
			Help:      "Destination source files processed during builds",
		},
		[]string{"outcome"}, // "indexed" / "skipped"
	)

	CatalogBuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "catalog_build_duration_seconds",
			Help:      "Full catalog build duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		},
	)

	CatalogDestinations = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "catalog_destinations",
			Help:      "Destinations in the loaded catalog",
		},
	)

	GeocodeRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "geocode_requests_total",
			Help:      "Geocoding lookups by result",
		},
		[]string{"result"}, // "hit" / "miss" / "error"
	)

	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "search_requests_total",
			Help:      "Ranking searches by status",
		},
		[]string{"status"},
	)

	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "search_duration_seconds",
			Help:      "Ranking search duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)
)

var catalogMetricsRegistered bool

// RegisterCatalogMetrics registers catalog, geocoding and search metrics. Must be called once from main.
func RegisterCatalogMetrics() {
	if catalogMetricsRegistered {
		return
	}
	prometheus.MustRegister(CatalogBuildRecordsTotal)
	prometheus.MustRegister(CatalogBuildDuration)
	prometheus.MustRegister(CatalogDestinations)
	prometheus.MustRegister(GeocodeRequestsTotal)
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDuration)
	catalogMetricsRegistered = true
}
