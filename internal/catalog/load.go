package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/kailas-cloud/tripdex/internal/domain"
	"github.com/kailas-cloud/tripdex/internal/domain/destination"
	"github.com/kailas-cloud/tripdex/internal/domain/facet"
	"github.com/kailas-cloud/tripdex/internal/index"
	"github.com/kailas-cloud/tripdex/internal/metrics"
)

// Load reads the persisted artifacts and publishes them.
// With no artifacts on disk it builds the catalog instead; with only some of them
// it fails with domain.ErrIndexCorrupt. After loading, coordinates present in the
// source files override the snapshot's.
func (s *Store) Load(ctx context.Context) error {
	present, err := s.presentArtifacts()
	if err != nil {
		s.setState(StateFailed)
		return err
	}
	if present == 0 {
		s.logger.Info("No index artifacts found, building catalog", zap.String("index_dir", s.indexDir))
		_, err := s.Build(ctx)
		return err
	}

	s.setState(StateLoading)
	start := time.Now()
	snap, synced, err := s.load(ctx, present)
	if err != nil {
		s.setState(StateFailed)
		s.logger.Error("Catalog load failed", zap.String("index_dir", s.indexDir), zap.Error(err))
		return err
	}
	s.publish(snap)
	metrics.CatalogDestinations.Set(float64(snap.Len()))

	s.logger.Info("Catalog loaded",
		zap.Int("destinations", snap.Len()),
		zap.Int("dimension", snap.Dim()),
		zap.Int("coordinates_synced", synced),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// presentArtifacts counts how many of the five artifact files exist.
func (s *Store) presentArtifacts() (int, error) {
	n := 0
	for _, p := range s.artifactPaths() {
		ok, err := afero.Exists(s.fs, p)
		if err != nil {
			return 0, fmt.Errorf("stat %s: %w", p, err)
		}
		if ok {
			n++
		}
	}
	return n, nil
}

func (s *Store) load(ctx context.Context, present int) (*Snapshot, int, error) {
	if want := facet.Count + 1; present != want {
		return nil, 0, fmt.Errorf("%w: %d of %d artifacts present in %s",
			domain.ErrIndexCorrupt, present, want, s.indexDir)
	}

	records, gen, err := s.readCatalog()
	if err != nil {
		return nil, 0, err
	}

	dim, err := s.encoder.Dimensions(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("encoder dimension: %w", err)
	}

	filenames := make([]string, len(records))
	for i := range records {
		filenames[i] = records[i].Filename
	}
	want := index.Header{
		Dim:        dim,
		Count:      len(records),
		KeySum:     index.KeyChecksum(filenames),
		Generation: gen,
	}

	var indexes [facet.Count]*index.Flat
	for i, f := range facet.All {
		x, err := s.readIndex(f, want)
		if err != nil {
			return nil, 0, err
		}
		indexes[i] = x
	}

	synced := s.syncCoordinates(records)
	snap, err := newSnapshot(records, indexes)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", domain.ErrIndexCorrupt, err)
	}
	return snap, synced, nil
}

// readCatalog decodes the catalog snapshot and returns it with its generation.
func (s *Store) readCatalog() ([]destination.Record, uint64, error) {
	data, err := afero.ReadFile(s.fs, s.catalogPath())
	if err != nil {
		return nil, 0, fmt.Errorf("%w: read catalog: %w", domain.ErrIndexCorrupt, err)
	}
	var records []destination.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, 0, fmt.Errorf("%w: decode catalog: %w", domain.ErrIndexCorrupt, err)
	}
	seen := make(map[string]struct{}, len(records))
	for i := range records {
		if err := records[i].Validate(); err != nil {
			return nil, 0, fmt.Errorf("%w: catalog row %d: %w", domain.ErrIndexCorrupt, i, err)
		}
		if _, dup := seen[records[i].Filename]; dup {
			return nil, 0, fmt.Errorf("%w: duplicate filename %q", domain.ErrIndexCorrupt, records[i].Filename)
		}
		seen[records[i].Filename] = struct{}{}
		records[i].ApplyDefaults()
	}
	return records, index.Generation(data), nil
}

func (s *Store) readIndex(f facet.Facet, want index.Header) (*index.Flat, error) {
	file, err := s.fs.Open(s.indexPath(f))
	if err != nil {
		return nil, fmt.Errorf("%w: open %s index: %w", domain.ErrIndexCorrupt, f, err)
	}
	defer func() { _ = file.Close() }()

	x, err := index.Decode(file, want)
	if err != nil {
		return nil, fmt.Errorf("%s index: %w", f, err)
	}
	return x, nil
}

// syncCoordinates copies coordinates from source files into records.
// Missing or unreadable source files leave the snapshot value in place.
func (s *Store) syncCoordinates(records []destination.Record) int {
	synced := 0
	for i := range records {
		p, ok := s.sourcePoint(records[i].Filename)
		if !ok {
			continue
		}
		if cur, has := records[i].Point(); has && cur == p {
			continue
		}
		records[i].SetPoint(p)
		synced++
	}
	return synced
}
