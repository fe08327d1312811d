package geocode

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/kailas-cloud/tripdex/internal/domain"
	"github.com/kailas-cloud/tripdex/internal/domain/destination"
)

// newTestClient returns a client without pacing so ladder tests run instantly.
func newTestClient(url string) *Client {
	c := New(Config{BaseURL: url})
	c.limiter = rate.NewLimiter(rate.Inf, 1)
	return c
}

func TestCandidates_Ladder(t *testing.T) {
	rec := &destination.Record{Name: "Aspen", Location: "Aspen", State: "Colorado", Country: "USA"}
	got := Candidates(rec)
	want := []string{
		"Aspen, Aspen, Colorado, USA",
		"Aspen, Colorado, USA",
		"Aspen, USA",
		"Colorado, USA",
		"USA",
	}
	if len(got) != len(want) {
		t.Fatalf("Candidates = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("candidate %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCandidates_DropsEmptyParts(t *testing.T) {
	rec := &destination.Record{Name: "Kyoto", Location: " ", Country: "Japan"}
	got := Candidates(rec)
	want := []string{"Kyoto, Japan", "Japan"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("Candidates = %q, want %q", got, want)
	}
	if len(Candidates(&destination.Record{})) != 0 {
		t.Error("record without parts must yield no candidates")
	}
}

func TestLookup_Hit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("format") != "json" || r.URL.Query().Get("limit") != "1" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		if r.Header.Get("User-Agent") != DefaultUserAgent {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		_, _ = w.Write([]byte(`[{"lat":"39.1911","lon":"-106.8175","display_name":"Aspen"}]`))
	}))
	defer srv.Close()

	p, err := newTestClient(srv.URL).Lookup(context.Background(), "Aspen, Colorado")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if p.Lat != 39.1911 || p.Lon != -106.8175 {
		t.Errorf("point = %v", p)
	}
}

func TestLookup_MissAndInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", `[]`},
		{"out of range", `[{"lat":"123.0","lon":"10.0"}]`},
		{"garbage", `[{"lat":"north","lon":"10.0"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL).Lookup(context.Background(), "x")
			if !errors.Is(err, domain.ErrGeocodeMiss) {
				t.Fatalf("err = %v, want ErrGeocodeMiss", err)
			}
		})
	}
}

func TestLookup_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Lookup(context.Background(), "x")
	if err == nil || errors.Is(err, domain.ErrGeocodeMiss) {
		t.Fatalf("err = %v, want transport error", err)
	}
}

func TestGeocode_FirstHitWins(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Query().Get("q") == "Colorado, USA" {
			_, _ = w.Write([]byte(`[{"lat":"39.0","lon":"-105.5"}]`))
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	rec := &destination.Record{Name: "Hidden Valley", Location: "Nowhere", State: "Colorado", Country: "USA", Filename: "hv.json"}
	p, err := newTestClient(srv.URL).Geocode(context.Background(), rec)
	if err != nil {
		t.Fatalf("Geocode: %v", err)
	}
	if p.Lat != 39.0 || p.Lon != -105.5 {
		t.Errorf("point = %v", p)
	}
	// name+all, location+state+country, name+country, location+country, state+country
	if calls.Load() != 5 {
		t.Errorf("calls = %d, want 5", calls.Load())
	}
}

func TestGeocode_AllMiss(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	rec := &destination.Record{Name: "Atlantis", Location: "Sea", Country: "Nowhere", Filename: "a.json"}
	_, err := newTestClient(srv.URL).Geocode(context.Background(), rec)
	if !errors.Is(err, domain.ErrGeocodeMiss) {
		t.Fatalf("err = %v, want ErrGeocodeMiss", err)
	}
}

func TestLookup_Paced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"lat":"1","lon":"1"}]`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, MinInterval: 10 * time.Millisecond})
	start := time.Now()
	for i := 0; i < 2; i++ {
		if _, err := c.Lookup(context.Background(), "x"); err != nil {
			t.Fatalf("Lookup: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 900*time.Millisecond {
		t.Fatalf("two lookups took %v, want at least one second of spacing", elapsed)
	}
}

func TestLookup_CancelledWhileWaiting(t *testing.T) {
	c := New(Config{BaseURL: "http://127.0.0.1:1"})
	c.limiter = rate.NewLimiter(rate.Every(time.Hour), 1)
	c.limiter.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := c.Lookup(ctx, "x"); err == nil {
		t.Fatal("expected context error")
	}
}
