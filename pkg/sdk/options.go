package tripdex

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	sourceDir string
	indexDir  string
	fs        afero.Fs

	embedder      Embedder
	embedderModel string
	hashDim       int

	geocode   bool
	userAgent string

	workers   int
	batchSize int
	weights   map[string]float64

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithDirs sets the destination source directory and the index artifact directory.
func WithDirs(sourceDir, indexDir string) Option {
	return optionFunc(func(c *clientConfig) {
		c.sourceDir = sourceDir
		c.indexDir = indexDir
	})
}

// WithFs swaps the filesystem, e.g. afero.NewMemMapFs() in tests.
// Defaults to the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return optionFunc(func(c *clientConfig) {
		c.fs = fs
	})
}

// WithEmbedder sets the text embedding provider. model names the provider's
// model in logs and metrics.
func WithEmbedder(e Embedder, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
		c.embedderModel = model
	})
}

// WithHashEmbedder uses the built-in deterministic hashed-token embedder.
// This is the default, with 384 dimensions.
func WithHashEmbedder(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = nil
		c.hashDim = dim
	})
}

// WithGeocoding resolves missing coordinates through OpenStreetMap Nominatim
// during builds, at most one request per second.
func WithGeocoding(userAgent string) Option {
	return optionFunc(func(c *clientConfig) {
		c.geocode = true
		c.userAgent = userAgent
	})
}

// WithWorkers bounds concurrent embedding batches during builds.
func WithWorkers(workers, batchSize int) Option {
	return optionFunc(func(c *clientConfig) {
		c.workers = workers
		c.batchSize = batchSize
	})
}

// WithDefaultWeights replaces the stock facet weights
// (activities 0.4, scenery 0.3, amenities 0.2, location 0.1).
func WithDefaultWeights(w map[string]float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.weights = w
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
