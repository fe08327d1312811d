package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/kailas-cloud/tripdex/internal/domain"
	"github.com/kailas-cloud/tripdex/internal/domain/destination"
	"github.com/kailas-cloud/tripdex/internal/domain/geo"
	"github.com/kailas-cloud/tripdex/internal/embedder/hash"
	"github.com/kailas-cloud/tripdex/internal/usecase/embedding"
)

const (
	testSourceDir = "/data/destinations"
	testIndexDir  = "/data/index"
)

func newTestEncoder(dim int) *embedding.Encoder {
	return embedding.NewEncoder(hash.New(dim), "hash", "hash-test", zap.NewNop())
}

func newTestStore(t *testing.T, fs afero.Fs, enc Encoder, g Geocoder) *Store {
	t.Helper()
	return New(Config{
		SourceDir: testSourceDir,
		IndexDir:  testIndexDir,
		Fs:        fs,
		Geocoder:  g,
		Workers:   2,
		BatchSize: 2,
	}, enc)
}

func writeSource(t *testing.T, fs afero.Fs, name string, v any) {
	t.Helper()
	var data []byte
	switch b := v.(type) {
	case string:
		data = []byte(b)
	default:
		var err error
		if data, err = json.Marshal(v); err != nil {
			t.Fatalf("marshal %s: %v", name, err)
		}
	}
	if err := afero.WriteFile(fs, filepath.Join(testSourceDir, name), data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func readSourceFields(t *testing.T, fs afero.Fs, name string) map[string]any {
	t.Helper()
	data, err := afero.ReadFile(fs, filepath.Join(testSourceDir, name))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("decode %s: %v", name, err)
	}
	return fields
}

// seedCatalog writes three located destinations and returns the fs.
func seedCatalog(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	writeSource(t, fs, "aspen.json", map[string]any{
		"name": "Aspen", "location": "Aspen", "state": "Colorado", "country": "USA",
		"description": "Alpine ski town",
		"activities":  []string{"skiing", "snowboarding", "hiking"},
		"scenery":     []string{"mountains", "forests"},
		"amenities":   []string{"ski lifts", "spa"},
		"best_season": []string{"Winter"},
		"latitude":    39.19, "longitude": -106.82,
	})
	writeSource(t, fs, "maui.json", map[string]any{
		"name": "Maui", "location": "Maui", "state": "Hawaii", "country": "USA",
		"description": "Tropical island beaches",
		"activities":  []string{"surfing", "snorkeling"},
		"scenery":     []string{"beaches", "volcanoes"},
		"amenities":   []string{"resorts"},
		"best_season": []string{"Summer"},
		"latitude":    20.79, "longitude": -156.33,
	})
	writeSource(t, fs, "paris.json", map[string]any{
		"name": "Paris", "location": "Paris", "country": "France",
		"description": "Museum capital",
		"activities":  []string{"museums", "dining"},
		"scenery":     []string{"architecture"},
		"amenities":   []string{"metro"},
		"best_season": []string{"Spring"},
		"latitude":    48.86, "longitude": 2.35,
	})
	return fs
}

type fakeGeocoder struct {
	points map[string]geo.Point
	calls  []string
}

func (g *fakeGeocoder) Geocode(_ context.Context, rec *destination.Record) (geo.Point, error) {
	g.calls = append(g.calls, rec.Filename)
	if p, ok := g.points[rec.Filename]; ok {
		return p, nil
	}
	return geo.Point{}, domain.ErrGeocodeMiss
}

type failingEncoder struct {
	dim int
	err error
}

func (e *failingEncoder) BatchEmbed(context.Context, []string) (domain.BatchEmbeddingResult, error) {
	return domain.BatchEmbeddingResult{}, e.err
}

func (e *failingEncoder) Dimensions(context.Context) (int, error) { return e.dim, nil }

// renameFailFs fails renames onto one target file name.
type renameFailFs struct {
	afero.Fs
	target string
}

func (f *renameFailFs) Rename(oldname, newname string) error {
	if filepath.Base(newname) == f.target {
		return errors.New("disk full")
	}
	return f.Fs.Rename(oldname, newname)
}

// cancelingEncoder cancels the build context on its first batch.
type cancelingEncoder struct {
	Encoder
	cancel context.CancelFunc
}

func (e *cancelingEncoder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	e.cancel()
	return e.Encoder.BatchEmbed(ctx, texts)
}
