// Package geocode resolves destination coordinates through a Nominatim-compatible
// search API, paced to the service's one-request-per-second policy.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/tripdex/internal/domain"
	"github.com/kailas-cloud/tripdex/internal/domain/destination"
	"github.com/kailas-cloud/tripdex/internal/domain/geo"
	"github.com/kailas-cloud/tripdex/internal/metrics"
)

const (
	// DefaultBaseURL is the public OpenStreetMap Nominatim endpoint.
	DefaultBaseURL = "https://nominatim.openstreetmap.org"
	// DefaultUserAgent identifies the client as Nominatim's usage policy requires.
	DefaultUserAgent = "tripdex-geocoder"
	// MinInterval is the smallest spacing between requests the service allows.
	MinInterval = time.Second

	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

// Config configures a Client.
type Config struct {
	BaseURL     string
	UserAgent   string
	MinInterval time.Duration
	Timeout     time.Duration
	HTTPClient  *http.Client
	Logger      *zap.Logger
}

// Client is a serial, rate-limited geocoder.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
	logger    *zap.Logger
}

// New creates a geocoding client. MinInterval below one second is raised to one second.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.MinInterval < MinInterval {
		cfg.MinInterval = MinInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		http:      hc,
		limiter:   rate.NewLimiter(rate.Every(cfg.MinInterval), 1),
		logger:    log,
	}
}

// Geocode resolves a destination by trying Candidates in order; the first hit wins.
// Returns domain.ErrGeocodeMiss when no candidate resolves.
func (c *Client) Geocode(ctx context.Context, rec *destination.Record) (geo.Point, error) {
	var lastErr error
	for _, q := range Candidates(rec) {
		p, err := c.Lookup(ctx, q)
		if err == nil {
			c.logger.Debug("Geocoded destination",
				zap.String("file", rec.Filename), zap.String("query", q), zap.Stringer("point", p))
			return p, nil
		}
		if ctx.Err() != nil {
			return geo.Point{}, fmt.Errorf("geocode %s: %w", rec.Filename, ctx.Err())
		}
		if !errors.Is(err, domain.ErrGeocodeMiss) {
			lastErr = err
		}
	}
	if lastErr != nil {
		return geo.Point{}, fmt.Errorf("%w: %s: %w", domain.ErrGeocodeMiss, rec.Filename, lastErr)
	}
	return geo.Point{}, fmt.Errorf("%w: %s", domain.ErrGeocodeMiss, rec.Filename)
}

// Lookup resolves one free-text query. Every call waits on the pacing limiter.
func (c *Client) Lookup(ctx context.Context, query string) (geo.Point, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return geo.Point{}, fmt.Errorf("rate limit wait: %w", err)
	}

	p, err := c.search(ctx, query)
	switch {
	case err == nil:
		metrics.GeocodeRequestsTotal.WithLabelValues("hit").Inc()
	case errors.Is(err, domain.ErrGeocodeMiss):
		metrics.GeocodeRequestsTotal.WithLabelValues("miss").Inc()
	default:
		metrics.GeocodeRequestsTotal.WithLabelValues("error").Inc()
		c.logger.Warn("Geocoding request failed", zap.String("query", query), zap.Error(err))
	}
	return p, err
}

type place struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (c *Client) search(ctx context.Context, query string) (geo.Point, error) {
	u := c.baseURL + "/search?" + url.Values{
		"q":      {query},
		"format": {"json"},
		"limit":  {"1"},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return geo.Point{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return geo.Point{}, fmt.Errorf("geocode request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return geo.Point{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return geo.Point{}, fmt.Errorf("geocode status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var places []place
	if err := json.Unmarshal(body, &places); err != nil {
		return geo.Point{}, fmt.Errorf("decode response: %w", err)
	}
	if len(places) == 0 {
		return geo.Point{}, fmt.Errorf("%w: %q", domain.ErrGeocodeMiss, query)
	}

	lat, errLat := strconv.ParseFloat(places[0].Lat, 64)
	lon, errLon := strconv.ParseFloat(places[0].Lon, 64)
	if errLat != nil || errLon != nil {
		return geo.Point{}, fmt.Errorf("%w: %q: unparsable coordinates", domain.ErrGeocodeMiss, query)
	}
	p, err := geo.NewPoint(lat, lon)
	if err != nil {
		return geo.Point{}, fmt.Errorf("%w: %q: %w", domain.ErrGeocodeMiss, query, err)
	}
	return p, nil
}

// Candidates returns the query ladder for a destination, most specific first.
// Empty parts are dropped and duplicate queries removed.
func Candidates(rec *destination.Record) []string {
	ladder := [][]string{
		{rec.Name, rec.Location, rec.State, rec.Country},
		{rec.Location, rec.State, rec.Country},
		{rec.Name, rec.Country},
		{rec.Location, rec.Country},
		{rec.State, rec.Country},
		{rec.Country},
	}

	seen := make(map[string]struct{}, len(ladder))
	out := make([]string, 0, len(ladder))
	for _, parts := range ladder {
		var kept []string
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				kept = append(kept, p)
			}
		}
		if len(kept) == 0 {
			continue
		}
		q := strings.Join(kept, ", ")
		if _, dup := seen[q]; dup {
			continue
		}
		seen[q] = struct{}{}
		out = append(out, q)
	}
	return out
}
