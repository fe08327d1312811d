package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/kailas-cloud/tripdex/internal/catalog"
	"github.com/kailas-cloud/tripdex/internal/domain"
	"github.com/kailas-cloud/tripdex/internal/domain/facet"
	"github.com/kailas-cloud/tripdex/internal/domain/search/filter"
	"github.com/kailas-cloud/tripdex/internal/domain/search/request"
	"github.com/kailas-cloud/tripdex/internal/domain/search/result"
	"github.com/kailas-cloud/tripdex/internal/metrics"
	gen "github.com/kailas-cloud/tripdex/internal/transport/generated"
	healthuc "github.com/kailas-cloud/tripdex/internal/usecase/health"
)

const maxBodyBytes = 1 << 20

// Planner is the search and lifecycle surface the API exposes.
type Planner interface {
	Search(ctx context.Context, req *request.Request) ([]result.Result, error)
	Rebuild(ctx context.Context) (*catalog.BuildReport, error)
	Weights() facet.Weights
	SetWeights(w facet.Weights) error
	State() catalog.State
	Countries(ctx context.Context) ([]string, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Options configures the HTTP API.
type Options struct {
	APIKeys     []string
	DefaultTopK int
	MaxTopK     int
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server implements generated.ServerInterface for the oapi-codegen chi router.
type Server struct {
	gen.Unimplemented
	planner       Planner
	health        HealthChecker
	logger        *zap.Logger
	opts          Options
	errorHandlers []errorHandler
}

var _ gen.ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(planner Planner, health HealthChecker, opts Options, logger *zap.Logger) *Server {
	if opts.DefaultTopK <= 0 {
		opts.DefaultTopK = 5
	}
	s := &Server{
		planner: planner,
		health:  health,
		logger:  logger,
		opts:    opts,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidTopK, http.StatusBadRequest, gen.ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrInvalidWeights, http.StatusBadRequest, gen.ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, gen.ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrEmptyCatalog, http.StatusServiceUnavailable, gen.ErrorResponseCodeEmptyCatalog),
		sentinelHandler(domain.ErrNotReady, http.StatusServiceUnavailable, gen.ErrorResponseCodeCatalogNotReady),
		sentinelHandler(domain.ErrNoData, http.StatusConflict, gen.ErrorResponseCodeNoData),
		sentinelHandler(domain.ErrEncoding, http.StatusBadGateway, gen.ErrorResponseCodeEmbeddingProviderError),
		sentinelHandler(domain.ErrIndexCorrupt, http.StatusInternalServerError, gen.ErrorResponseCodeIndexCorrupt),
	}
	return s
}

// Router assembles the middleware stack and routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(s.opts.APIKeys))
	r.Use(metrics.Middleware("/metrics"))

	gen.HandlerWithOptions(s, gen.ChiServerOptions{
		BaseRouter: r,
		ErrorHandlerFunc: func(w http.ResponseWriter, _ *http.Request, err error) {
			writeError(w, http.StatusBadRequest, gen.ErrorResponseCodeBadRequest, err.Error())
		},
	})
	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, gen.ErrorResponseCodeBadRequest, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, gen.ErrorResponseCodeBadRequest, "method not allowed")
	})
	return r
}

// SearchDestinations handles POST /search.
func (s *Server) SearchDestinations(w http.ResponseWriter, r *http.Request) {
	var body gen.SearchDestinationsJSONRequestBody
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, gen.ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	req, err := s.searchRequestFromBody(&body)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	// Pin the defaults now so the response reports the weights this search used.
	if !req.HasWeights() {
		req = req.WithWeights(s.planner.Weights())
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	results, err := s.planner.Search(ctx, &req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]gen.SearchResultItem, len(results))
	for i := range results {
		items[i] = searchResultToGen(&results[i])
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, gen.SearchResponse{
		Items:   items,
		Total:   len(items),
		Weights: weightsToGen(req.Weights()),
	})
}

// GetWeights handles GET /weights.
func (s *Server) GetWeights(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, gen.WeightsBody{Weights: weightsToGen(s.planner.Weights())})
}

// PutWeights handles PUT /weights.
func (s *Server) PutWeights(w http.ResponseWriter, r *http.Request) {
	var body gen.PutWeightsJSONRequestBody
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, gen.ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	weights, err := facet.ParseWeights(body.Weights)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if err := s.planner.SetWeights(weights); err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gen.WeightsBody{Weights: weightsToGen(s.planner.Weights())})
}

// GetIndex handles GET /index.
// Countries are listed unless include_countries=false, which reads the state without loading.
func (s *Server) GetIndex(w http.ResponseWriter, r *http.Request, params gen.GetIndexParams) {
	resp := gen.IndexResponse{}
	if params.IncludeCountries == nil || *params.IncludeCountries {
		countries, err := s.planner.Countries(r.Context())
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		if countries == nil {
			countries = []string{}
		}
		resp.Countries = &countries
	}
	resp.State = s.planner.State().String()
	writeJSON(w, http.StatusOK, resp)
}

// RebuildIndex handles POST /index/rebuild.
// The build outlives a disconnected client; artifacts are only written once it completes.
func (s *Server) RebuildIndex(w http.ResponseWriter, r *http.Request) {
	ctx, usage := domain.NewContextWithUsage(context.WithoutCancel(r.Context()))
	report, err := s.planner.Rebuild(ctx)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := gen.RebuildResponse{
		BuildId:       report.ID,
		Indexed:       report.Indexed,
		Skipped:       report.SkippedCount(),
		Geocoded:      report.Geocoded,
		GeocodeMisses: report.MissCount(),
		Dimension:     report.Dimension,
		DurationMs:    report.Duration.Milliseconds(),
	}
	var skipped []string
	for _, e := range multierr.Errors(report.Skipped) {
		var rpe *domain.RecordParseError
		if errors.As(e, &rpe) {
			skipped = append(skipped, rpe.File)
		}
	}
	if len(skipped) > 0 {
		resp.SkippedFiles = &skipped
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, gen.HealthResponse{
		Status:       gen.HealthResponseStatus(report.Status),
		Checks:       checks,
		CatalogState: report.CatalogState,
		Destinations: report.Destinations,
	})
}

func (s *Server) searchRequestFromBody(body *gen.SearchRequest) (request.Request, error) {
	topK := s.opts.DefaultTopK
	if body.TopK != nil {
		topK = *body.TopK
	}
	if s.opts.MaxTopK > 0 && topK > s.opts.MaxTopK {
		return request.Request{}, fmt.Errorf("%w: top_k %d exceeds maximum %d",
			domain.ErrInvalidRequest, topK, s.opts.MaxTopK)
	}

	var weights facet.Weights
	if body.Weights != nil {
		w, err := facet.ParseWeights(*body.Weights)
		if err != nil {
			return request.Request{}, err
		}
		weights = w
	}

	filters, err := filter.New(deref(body.Country), deref(body.Budget), deref(body.Season))
	if err != nil {
		return request.Request{}, err
	}
	return request.New(body.Query, topK, weights, filters)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage != nil && usage.Calls > 0 {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code gen.ErrorResponseCode, message string) {
	writeJSON(w, status, gen.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// clientMessage returns the error text for validation failures and the bare
// sentinel text otherwise, so internals never leak to clients.
func clientMessage(err error) string {
	for _, s := range []error{domain.ErrInvalidTopK, domain.ErrInvalidWeights, domain.ErrInvalidRequest} {
		if errors.Is(err, s) {
			return err.Error()
		}
	}
	sentinels := []error{
		domain.ErrEmptyCatalog,
		domain.ErrNotReady,
		domain.ErrNoData,
		domain.ErrEncoding,
		domain.ErrIndexCorrupt,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code gen.ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := clientMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, gen.ErrorResponseCodeInternalError, "internal error")
}

func weightsToGen(w facet.Weights) gen.FacetWeights {
	out := make(gen.FacetWeights, facet.Count)
	for _, f := range facet.All {
		out[string(f)] = w[f]
	}
	return out
}

func searchResultToGen(r *result.Result) gen.SearchResultItem {
	rec := r.Record()
	facetScores := make(gen.FacetWeights, facet.Count)
	for f, v := range r.FacetScores() {
		facetScores[string(f)] = v
	}
	matching := r.MatchingAspects()
	if matching == nil {
		matching = []string{}
	}
	seasons := []string(rec.BestSeason)
	if seasons == nil {
		seasons = []string{}
	}

	item := gen.SearchResultItem{
		Rank:            r.Rank(),
		Name:            rec.Name,
		Location:        rec.Location,
		State:           optional(rec.State),
		Country:         rec.Country,
		Score:           r.Score(),
		FacetScores:     facetScores,
		Explanation:     r.Explanation(),
		MatchingAspects: matching,
		BestSeason:      seasons,
		TravelTime:      optional(rec.TravelTime),
		LocationLabel:   r.LocationLabel(),
	}
	if p, ok := rec.Point(); ok {
		item.Coordinates = &gen.Coordinates{Latitude: p.Lat, Longitude: p.Lon}
	}
	return item
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// optional maps an empty string to an omitted field.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
