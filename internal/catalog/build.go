package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/kailas-cloud/tripdex/internal/domain"
	"github.com/kailas-cloud/tripdex/internal/domain/destination"
	"github.com/kailas-cloud/tripdex/internal/domain/facet"
	"github.com/kailas-cloud/tripdex/internal/index"
	"github.com/kailas-cloud/tripdex/internal/metrics"
)

// BuildReport summarizes one build.
type BuildReport struct {
	ID        string
	Indexed   int
	Dimension int
	// Skipped combines the per-file parse failures; nil when every file parsed.
	Skipped error
	// GeocodeMisses combines the per-record geocoding failures.
	GeocodeMisses error
	Geocoded      int
	BytesWritten  int64
	Duration      time.Duration
}

// SkippedCount returns the number of source files left out of the catalog.
func (r *BuildReport) SkippedCount() int { return len(multierr.Errors(r.Skipped)) }

// MissCount returns the number of records kept without coordinates.
func (r *BuildReport) MissCount() int { return len(multierr.Errors(r.GeocodeMisses)) }

// Build reads every source file, geocodes records without coordinates,
// embeds the four facet texts, persists the artifacts and publishes the new snapshot.
// Malformed files are skipped; an empty source directory fails with domain.ErrNoData.
// Artifacts are written only after every record is embedded.
func (s *Store) Build(ctx context.Context) (*BuildReport, error) {
	s.setState(StateBuilding)
	report, snap, err := s.build(ctx)
	if err != nil {
		s.setState(StateFailed)
		s.logger.Error("Catalog build failed", zap.String("build_id", report.ID), zap.Error(err))
		return report, err
	}
	s.publish(snap)
	metrics.CatalogDestinations.Set(float64(snap.Len()))
	metrics.CatalogBuildDuration.Observe(report.Duration.Seconds())

	s.logger.Info("Catalog built",
		zap.String("build_id", report.ID),
		zap.Int("destinations", report.Indexed),
		zap.Int("skipped", report.SkippedCount()),
		zap.Int("geocoded", report.Geocoded),
		zap.Int("geocode_misses", report.MissCount()),
		zap.Int("dimension", report.Dimension),
		zap.Duration("duration", report.Duration))
	return report, nil
}

func (s *Store) build(ctx context.Context) (*BuildReport, *Snapshot, error) {
	start := time.Now()
	report := &BuildReport{ID: uuid.NewString()}
	log := s.logger.With(zap.String("build_id", report.ID))

	names, err := s.listSources()
	if err != nil {
		return report, nil, err
	}
	if len(names) == 0 {
		return report, nil, fmt.Errorf("%w: %s", domain.ErrNoData, s.sourceDir)
	}

	records := make([]destination.Record, 0, len(names))
	for _, name := range names {
		rec, err := s.readRecord(name)
		if err != nil {
			metrics.CatalogBuildRecordsTotal.WithLabelValues("skipped").Inc()
			log.Warn("Skipping destination file", zap.String("file", name), zap.Error(err))
			report.Skipped = multierr.Append(report.Skipped, err)
			continue
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return report, nil, fmt.Errorf("%w: all %d source files failed to parse: %w",
			domain.ErrNoData, len(names), report.Skipped)
	}

	if err := s.geocodeMissing(ctx, log, records, report); err != nil {
		return report, nil, err
	}

	dim, err := s.encoder.Dimensions(ctx)
	if err != nil {
		return report, nil, fmt.Errorf("encoder dimension: %w", err)
	}
	vectors, err := s.embedAll(ctx, records)
	if err != nil {
		return report, nil, err
	}

	var indexes [facet.Count]*index.Flat
	for i, f := range facet.All {
		x, err := index.Build(dim, vectors[i])
		if err != nil {
			return report, nil, fmt.Errorf("build %s index: %w", f, err)
		}
		indexes[i] = x
	}
	snap, err := newSnapshot(records, indexes)
	if err != nil {
		return report, nil, err
	}

	if err := ctx.Err(); err != nil {
		return report, nil, fmt.Errorf("build interrupted: %w", err)
	}
	written, err := s.save(snap)
	if err != nil {
		return report, nil, fmt.Errorf("save artifacts: %w", err)
	}

	metrics.CatalogBuildRecordsTotal.WithLabelValues("indexed").Add(float64(len(records)))
	report.Indexed = len(records)
	report.Dimension = dim
	report.BytesWritten = written
	report.Duration = time.Since(start)
	return report, snap, nil
}

func (s *Store) readRecord(name string) (destination.Record, error) {
	data, err := afero.ReadFile(s.fs, s.sourcePath(name))
	if err != nil {
		return destination.Record{}, domain.NewRecordParseError(name, err)
	}
	rec, err := destination.Parse(name, data)
	if err != nil {
		return destination.Record{}, domain.NewRecordParseError(name, err)
	}
	return rec, nil
}

// geocodeMissing looks up coordinates serially; the geocoder paces itself.
// A miss keeps the record without coordinates. Only cancellation aborts the build.
func (s *Store) geocodeMissing(ctx context.Context, log *zap.Logger, records []destination.Record, report *BuildReport) error {
	if s.geocoder == nil {
		return nil
	}
	for i := range records {
		rec := &records[i]
		if rec.HasCoordinates() {
			continue
		}
		p, err := s.geocoder.Geocode(ctx, rec)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("geocoding interrupted: %w", ctx.Err())
			}
			rec.ClearPoint()
			log.Warn("Destination kept without coordinates", zap.String("file", rec.Filename), zap.Error(err))
			report.GeocodeMisses = multierr.Append(report.GeocodeMisses, err)
			continue
		}
		rec.SetPoint(p)
		report.Geocoded++
		if err := s.writeBackPoint(rec.Filename, p); err != nil {
			log.Warn("Failed to write coordinates back to source file",
				zap.String("file", rec.Filename), zap.Error(err))
		}
	}
	return nil
}

// embedAll embeds every facet text, returning vectors[facet][row].
// Batches run on a bounded pool and write into their own row slots.
func (s *Store) embedAll(ctx context.Context, records []destination.Record) ([facet.Count][][]float32, error) {
	var vectors [facet.Count][][]float32
	texts := make([]facet.Texts, len(records))
	for i := range records {
		texts[i] = facet.Project(&records[i])
	}
	for i := range vectors {
		vectors[i] = make([][]float32, len(records))
	}

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return vectors, fmt.Errorf("create embedding pool: %w", err)
	}
	defer pool.Release()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		errMu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		errMu.Unlock()
	}

	for fi, f := range facet.All {
		for lo := 0; lo < len(records); lo += s.batchSize {
			hi := min(lo+s.batchSize, len(records))
			batch := make([]string, hi-lo)
			for j := range batch {
				batch[j] = texts[lo+j].Get(f)
			}

			wg.Add(1)
			task := func() {
				defer wg.Done()
				if runCtx.Err() != nil {
					return
				}
				res, err := s.encoder.BatchEmbed(runCtx, batch)
				if err != nil {
					fail(fmt.Errorf("embed %s rows %d-%d: %w", f, lo, lo+len(batch)-1, err))
					return
				}
				if len(res.Embeddings) != len(batch) {
					fail(fmt.Errorf("%w: %s: got %d embeddings for %d texts",
						domain.ErrEncoding, f, len(res.Embeddings), len(batch)))
					return
				}
				copy(vectors[fi][lo:], res.Embeddings)
			}
			if err := pool.Submit(task); err != nil {
				wg.Done()
				fail(fmt.Errorf("submit embedding batch: %w", err))
			}
		}
	}
	wg.Wait()

	if firstErr != nil {
		return vectors, firstErr
	}
	if err := ctx.Err(); err != nil {
		return vectors, fmt.Errorf("embedding interrupted: %w", err)
	}
	return vectors, nil
}
