package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoData signals an empty destination source directory at build time.
	ErrNoData = errors.New("no destination data")
	// ErrEncoding signals a text embedding failure (model unavailable, bad input).
	ErrEncoding = errors.New("encoding failed")
	// ErrIndexCorrupt signals an unreadable or inconsistent on-disk index artifact.
	ErrIndexCorrupt = errors.New("index corrupt")
	// ErrRecordParse signals a single malformed destination source file.
	ErrRecordParse = errors.New("record parse failed")
	// ErrGeocodeMiss signals that no coordinates could be resolved for a destination.
	ErrGeocodeMiss = errors.New("geocode miss")
	// ErrEmptyCatalog signals a search against a catalog with zero destinations.
	ErrEmptyCatalog = errors.New("empty catalog")
	// ErrInvalidTopK signals a non-positive top_k.
	ErrInvalidTopK = errors.New("top_k must be positive")
	// ErrInvalidWeights signals a negative or unknown facet weight.
	ErrInvalidWeights = errors.New("invalid weights")
	// ErrInvalidRequest signals a malformed search request.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNotReady signals that the catalog has not been built or loaded yet.
	ErrNotReady = errors.New("catalog not ready")
)

// RecordParseError wraps ErrRecordParse with the offending source file.
type RecordParseError struct {
	File string
	Err  error
}

func (e *RecordParseError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrRecordParse.Error(), e.File, e.Err)
}

// Is reports ErrRecordParse so callers can match on the sentinel.
func (e *RecordParseError) Is(target error) bool { return target == ErrRecordParse }

func (e *RecordParseError) Unwrap() error { return e.Err }

// NewRecordParseError creates a record parse error for file.
func NewRecordParseError(file string, err error) error {
	return &RecordParseError{File: file, Err: err}
}
