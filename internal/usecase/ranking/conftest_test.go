package ranking

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/kailas-cloud/tripdex/internal/catalog"
	"github.com/kailas-cloud/tripdex/internal/domain"
	"github.com/kailas-cloud/tripdex/internal/domain/facet"
	"github.com/kailas-cloud/tripdex/internal/domain/search/filter"
	"github.com/kailas-cloud/tripdex/internal/domain/search/request"
	"github.com/kailas-cloud/tripdex/internal/embedder/hash"
	"github.com/kailas-cloud/tripdex/internal/usecase/embedding"
)

// Three destinations: a ski resort, a beach town and a museum city, in that row order.
var testDestinations = map[string]map[string]any{
	"a_ski.json": {
		"name": "Snowpeak", "location": "Snowpeak Valley", "state": "Colorado", "country": "USA",
		"description": "Ski resort high in the mountains with ski runs for every level",
		"activities":  []string{"ski", "ski touring", "snowshoeing"},
		"scenery":     []string{"mountains", "snowy peaks"},
		"amenities":   []string{"ski rental", "lodge", "spa"},
		"best_season": []string{"Winter"},
		"latitude":    39.6, "longitude": -106.3,
	},
	"b_beach.json": {
		"name": "Sunport", "location": "Sunport", "state": "Florida", "country": "USA",
		"description": "Sunny coastal town with warm sand",
		"activities":  []string{"surfing", "swimming", "sailing"},
		"scenery":     []string{"beach", "ocean"},
		"amenities":   []string{"hostel", "cafes"},
		"best_season": []string{"Summer"},
		"latitude":    27.9, "longitude": -82.5,
	},
	"c_museum.json": {
		"name": "Artville", "location": "Artville", "country": "France",
		"description": "Historic capital of galleries and boulevards",
		"activities":  []string{"museums", "dining", "theater"},
		"scenery":     []string{"architecture", "river"},
		"amenities":   []string{"metro", "luxury hotels"},
		"best_season": []string{"Spring", "Autumn"},
	},
}

type testEnv struct {
	store   *catalog.Store
	encoder *embedding.Encoder
	svc     *Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, v := range testDestinations {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if err := afero.WriteFile(fs, filepath.Join("/src", name), data, 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	enc := embedding.NewEncoder(hash.New(hash.DefaultDimensions), "hash", "hash-test", zap.NewNop())
	store := catalog.New(catalog.Config{SourceDir: "/src", IndexDir: "/idx", Fs: fs}, enc)
	if _, err := store.Build(context.Background()); err != nil {
		t.Fatalf("Build: %v", err)
	}
	return &testEnv{store: store, encoder: enc, svc: New(store, enc, zap.NewNop())}
}

func mustRequest(t *testing.T, query string, topK int, w facet.Weights, f filter.Filter) *request.Request {
	t.Helper()
	req, err := request.New(query, topK, w, f)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return &req
}

type staticCatalog struct {
	snap *catalog.Snapshot
	err  error
}

func (c *staticCatalog) Snapshot() (*catalog.Snapshot, error) { return c.snap, c.err }

type failingEncoder struct{ err error }

func (e *failingEncoder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, e.err
}
