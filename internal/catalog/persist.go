package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/kailas-cloud/tripdex/internal/domain/destination"
	"github.com/kailas-cloud/tripdex/internal/domain/facet"
	"github.com/kailas-cloud/tripdex/internal/domain/geo"
	"github.com/kailas-cloud/tripdex/internal/index"
)

// IndexFile returns the artifact file name for a facet index.
func IndexFile(f facet.Facet) string {
	return "index." + string(f) + ".idx"
}

func (s *Store) catalogPath() string { return filepath.Join(s.indexDir, CatalogFile) }

func (s *Store) indexPath(f facet.Facet) string { return filepath.Join(s.indexDir, IndexFile(f)) }

func (s *Store) artifactPaths() []string {
	paths := []string{s.catalogPath()}
	for _, f := range facet.All {
		paths = append(paths, s.indexPath(f))
	}
	return paths
}

// listSources returns the .json source file names in lexical order.
func (s *Store) listSources() ([]string, error) {
	entries, err := afero.ReadDir(s.fs, s.sourceDir)
	if err != nil {
		return nil, fmt.Errorf("read source dir %s: %w", s.sourceDir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) sourcePath(name string) string { return filepath.Join(s.sourceDir, name) }

// writeAtomic writes data to a temp file in the target directory and renames it into place.
func writeAtomic(fs afero.Fs, path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := afero.TempFile(fs, dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = fs.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := fs.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

// writeBackPoint stores coordinates in a source file, keeping every other field as is.
func (s *Store) writeBackPoint(name string, p geo.Point) error {
	path := s.sourcePath(name)
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	if fields["latitude"], err = json.Marshal(p.Lat); err != nil {
		return fmt.Errorf("encode latitude: %w", err)
	}
	if fields["longitude"], err = json.Marshal(p.Lon); err != nil {
		return fmt.Errorf("encode longitude: %w", err)
	}
	out, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return writeAtomic(s.fs, path, append(out, '\n'))
}

// sourcePoint reads just the coordinates of a source file.
func (s *Store) sourcePoint(name string) (geo.Point, bool) {
	data, err := afero.ReadFile(s.fs, s.sourcePath(name))
	if err != nil {
		return geo.Point{}, false
	}
	var coords struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	if err := json.Unmarshal(data, &coords); err != nil {
		return geo.Point{}, false
	}
	rec := destination.Record{Latitude: coords.Latitude, Longitude: coords.Longitude}
	return rec.Point()
}

// save writes the four facet indexes and then the catalog snapshot.
// Every index is stamped with the generation of the catalog bytes written last,
// so an interrupted save leaves a set that fails to load instead of a mixed one.
func (s *Store) save(snap *Snapshot) (int64, error) {
	if err := s.fs.MkdirAll(s.indexDir, 0o755); err != nil {
		return 0, fmt.Errorf("create index dir: %w", err)
	}
	data, err := json.MarshalIndent(snap.records, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("encode catalog: %w", err)
	}
	keySum := index.KeyChecksum(snap.filenames())
	gen := index.Generation(data)

	var written int64
	for i, f := range facet.All {
		var buf bytes.Buffer
		if err := snap.indexes[i].Encode(&buf, keySum, gen); err != nil {
			return written, fmt.Errorf("encode %s index: %w", f, err)
		}
		if err := writeAtomic(s.fs, s.indexPath(f), buf.Bytes()); err != nil {
			return written, err
		}
		written += int64(buf.Len())
	}

	if err := writeAtomic(s.fs, s.catalogPath(), data); err != nil {
		return written, err
	}
	return written + int64(len(data)), nil
}
