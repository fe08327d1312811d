// Package catalog owns the destination catalog and its four facet indexes:
// building them from source files, persisting them, and loading them back.
package catalog

import (
	"context"
	"sync"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/kailas-cloud/tripdex/internal/domain"
	"github.com/kailas-cloud/tripdex/internal/domain/destination"
	"github.com/kailas-cloud/tripdex/internal/domain/geo"
)

const (
	// CatalogFile is the snapshot file name inside the index directory.
	CatalogFile = "destinations.json"

	defaultWorkers   = 4
	defaultBatchSize = 32
)

// Encoder embeds facet texts into unit vectors of a fixed dimension.
type Encoder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
	Dimensions(ctx context.Context) (int, error)
}

// Geocoder resolves coordinates for a destination.
type Geocoder interface {
	Geocode(ctx context.Context, rec *destination.Record) (geo.Point, error)
}

// Config configures a Store.
type Config struct {
	SourceDir string
	IndexDir  string
	// Fs defaults to the OS filesystem.
	Fs afero.Fs
	// Geocoder is optional; nil disables coordinate lookup during builds.
	Geocoder Geocoder
	// Workers bounds concurrent embedding batches during builds.
	Workers   int
	BatchSize int
	Logger    *zap.Logger
}

// Store holds the current catalog snapshot and drives its lifecycle.
// Builds and loads swap the snapshot atomically; readers never see a partial one.
type Store struct {
	fs        afero.Fs
	sourceDir string
	indexDir  string
	encoder   Encoder
	geocoder  Geocoder
	workers   int
	batchSize int
	logger    *zap.Logger

	mu    sync.RWMutex
	state State
	snap  *Snapshot
}

// New creates a Store in StateEmpty.
func New(cfg Config, enc Encoder) *Store {
	fs := cfg.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		fs:        fs,
		sourceDir: cfg.SourceDir,
		indexDir:  cfg.IndexDir,
		encoder:   enc,
		geocoder:  cfg.Geocoder,
		workers:   workers,
		batchSize: batch,
		logger:    log,
		state:     StateEmpty,
	}
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Snapshot returns the current catalog generation.
// A failed rebuild keeps serving the previous snapshot.
func (s *Store) Snapshot() (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return nil, domain.ErrNotReady
	}
	return s.snap, nil
}

// Len returns the number of destinations, zero before the first build or load.
func (s *Store) Len() int {
	snap, err := s.Snapshot()
	if err != nil {
		return 0
	}
	return snap.Len()
}

// Destinations returns the catalog records in row order.
func (s *Store) Destinations() []destination.Record {
	snap, err := s.Snapshot()
	if err != nil {
		return nil
	}
	return snap.Records()
}

// Countries returns the sorted distinct countries in the catalog.
func (s *Store) Countries() []string {
	snap, err := s.Snapshot()
	if err != nil {
		return nil
	}
	return snap.Countries()
}

func (s *Store) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Store) publish(snap *Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.state = StateReady
	s.mu.Unlock()
}
