package health

import (
	"context"

	"github.com/kailas-cloud/tripdex/internal/catalog"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates the catalog cannot serve searches.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckPending indicates a component that has not finished starting (catalog not built or loaded yet).
	CheckPending CheckResult = "pending"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status       Status
	Checks       map[string]CheckResult
	CatalogState string
	Destinations int
}

// Service coordinates health checks.
type Service struct {
	catalog   CatalogStater
	cache     CachePinger
	embedding EmbeddingChecker
	size      func() int
}

// New creates a Service. cache and embedding can be nil.
func New(c CatalogStater, cache CachePinger, embedding EmbeddingChecker) *Service {
	s := &Service{catalog: c, cache: cache, embedding: embedding}
	if sized, ok := c.(interface{ Len() int }); ok {
		s.size = sized.Len
	}
	return s
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	state := s.catalog.State()
	switch state {
	case catalog.StateReady:
		checks["catalog"] = CheckOK
	case catalog.StateFailed:
		checks["catalog"] = CheckError
	default:
		checks["catalog"] = CheckPending
	}

	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			checks["cache"] = CheckError
		} else {
			checks["cache"] = CheckOK
		}
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks["embedding"] = CheckError
		} else {
			checks["embedding"] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	r := Report{Checks: checks, CatalogState: state.String()}
	if s.size != nil {
		r.Destinations = s.size()
	}
	// A failed rebuild keeps the previous snapshot serving searches.
	catalogDown := checks["catalog"] == CheckError && r.Destinations == 0
	if catalogDown || checks["embedding"] == CheckError {
		status = Unhealthy
	}
	r.Status = status
	return r
}
