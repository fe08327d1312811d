package embedding

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/tripdex/internal/domain"
)

// DefaultMaxAPIBatchSize is the maximum number of texts sent in one provider call.
const DefaultMaxAPIBatchSize = 256

// dimensionProbe is embedded once when the provider does not declare its output size.
const dimensionProbe = "dimension probe"

// Encoder is the TextEncoder: it wraps a provider chain, enforces unit-length
// output of a single fixed dimension, and reports every failure as domain.ErrEncoding.
// Token usage is added to the request's domain.EmbeddingUsage when present.
type Encoder struct {
	inner    domain.Embedder
	provider string
	model    string
	logger   *zap.Logger

	mu  sync.Mutex
	dim int
}

// NewEncoder wraps inner. A provider implementing domain.Dimensioner fixes the dimension up front.
func NewEncoder(inner domain.Embedder, provider, model string, logger *zap.Logger) *Encoder {
	e := &Encoder{inner: inner, provider: provider, model: model, logger: logger}
	if d, ok := inner.(domain.Dimensioner); ok && d.Dimensions() > 0 {
		e.dim = d.Dimensions()
	}
	return e
}

// Provider returns the configured provider name.
func (e *Encoder) Provider() string { return e.provider }

// Model returns the configured model name.
func (e *Encoder) Model() string { return e.model }

// Embed returns a unit vector for text.
func (e *Encoder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	start := time.Now()

	result, err := e.inner.Embed(ctx, text)
	if err != nil {
		e.logger.Error("Embedding request failed",
			zap.String("provider", e.provider),
			zap.String("model", e.model),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, encodingError(err)
	}
	if err := e.finish(result.Embedding); err != nil {
		return domain.EmbeddingResult{}, err
	}
	domain.UsageFromContext(ctx).Record(result.TotalTokens)

	e.logger.Debug("Embedding request completed",
		zap.String("provider", e.provider),
		zap.String("model", e.model),
		zap.Duration("duration", time.Since(start)),
		zap.Int("dimensions", len(result.Embedding)),
		zap.Int("total_tokens", result.TotalTokens),
	)
	return result, nil
}

// BatchEmbed returns unit vectors for texts in input order, chunked by DefaultMaxAPIBatchSize.
func (e *Encoder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}
	start := time.Now()

	result, err := e.embedChunked(ctx, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, err
	}
	for i, v := range result.Embeddings {
		if err := e.finish(v); err != nil {
			return domain.BatchEmbeddingResult{}, fmt.Errorf("text %d: %w", i, err)
		}
	}
	domain.UsageFromContext(ctx).Record(result.TotalTokens)

	e.logger.Debug("Batch embedding completed",
		zap.String("provider", e.provider),
		zap.String("model", e.model),
		zap.Duration("duration", time.Since(start)),
		zap.Int("batch_size", len(texts)),
		zap.Int("total_tokens", result.TotalTokens),
	)
	return result, nil
}

// Dimensions returns the output dimension, probing the provider once if it is not yet known.
func (e *Encoder) Dimensions(ctx context.Context) (int, error) {
	if d := e.knownDim(); d > 0 {
		return d, nil
	}
	res, err := e.Embed(ctx, dimensionProbe)
	if err != nil {
		return 0, fmt.Errorf("probe dimensions: %w", err)
	}
	return len(res.Embedding), nil
}

// HealthCheck delegates to the provider when it supports health checks, otherwise probes it.
func (e *Encoder) HealthCheck(ctx context.Context) error {
	if hc, ok := e.inner.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return encodingError(err)
		}
		return nil
	}
	_, err := e.Dimensions(ctx)
	return err
}

func (e *Encoder) knownDim() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dim
}

// finish validates v, normalizes it in place, and pins the dimension on first use.
func (e *Encoder) finish(v []float32) error {
	if len(v) == 0 {
		return e.reject("empty_vector", fmt.Errorf("%w: provider returned an empty vector", domain.ErrEncoding))
	}
	for _, x := range v {
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return e.reject("non_finite", fmt.Errorf("%w: provider returned a non-finite component", domain.ErrEncoding))
		}
	}

	e.mu.Lock()
	if e.dim == 0 {
		e.dim = len(v)
	}
	dim := e.dim
	e.mu.Unlock()
	if len(v) != dim {
		return e.reject("dimension_mismatch",
			fmt.Errorf("%w: provider returned %d dimensions, expected %d", domain.ErrEncoding, len(v), dim))
	}

	if domain.Normalize(v) == 0 {
		return e.reject("zero_vector", fmt.Errorf("%w: provider returned a zero vector", domain.ErrEncoding))
	}
	return nil
}

func (e *Encoder) reject(kind string, err error) error {
	recordError(e.provider, e.model, kind)
	e.logger.Error("Embedding rejected",
		zap.String("provider", e.provider),
		zap.String("model", e.model),
		zap.String("reason", kind),
	)
	return err
}

func (e *Encoder) embedChunked(
	ctx context.Context, texts []string,
) (domain.BatchEmbeddingResult, error) {
	allEmbeddings := make([][]float32, 0, len(texts))
	var totalPrompt, totalTokens int

	for offset := 0; offset < len(texts); offset += DefaultMaxAPIBatchSize {
		end := min(offset+DefaultMaxAPIBatchSize, len(texts))
		chunk := texts[offset:end]

		chunkResult, err := e.embedInner(ctx, chunk)
		if err == nil && len(chunkResult.Embeddings) != len(chunk) {
			err = fmt.Errorf("provider returned %d vectors for %d texts", len(chunkResult.Embeddings), len(chunk))
		}
		if err != nil {
			e.logger.Error("Batch embedding request failed",
				zap.String("provider", e.provider),
				zap.String("model", e.model),
				zap.Int("chunk_offset", offset),
				zap.Int("chunk_size", len(chunk)),
				zap.Error(err),
			)
			return domain.BatchEmbeddingResult{}, encodingError(err)
		}

		allEmbeddings = append(allEmbeddings, chunkResult.Embeddings...)
		totalPrompt += chunkResult.PromptTokens
		totalTokens += chunkResult.TotalTokens
	}

	return domain.BatchEmbeddingResult{
		Embeddings:   allEmbeddings,
		PromptTokens: totalPrompt,
		TotalTokens:  totalTokens,
	}, nil
}

func (e *Encoder) embedInner(
	ctx context.Context, texts []string,
) (domain.BatchEmbeddingResult, error) {
	if be, ok := e.inner.(domain.BatchEmbedder); ok {
		res, err := be.BatchEmbed(ctx, texts)
		if err != nil {
			return domain.BatchEmbeddingResult{}, fmt.Errorf("inner batch embed: %w", err)
		}
		return res, nil
	}
	res, err := domain.BatchFallback(ctx, e.inner, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("inner batch fallback: %w", err)
	}
	return res, nil
}
