// Package hash provides a deterministic local text embedder based on hashed
// token counts. It needs no model files or network and is used for offline
// builds and tests.
package hash

import (
	"context"
	"regexp"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/kailas-cloud/tripdex/internal/domain"
)

// DefaultDimensions matches the output size of the small sentence models
// the remote provider is usually configured with.
const DefaultDimensions = 384

// emptyToken stands in for texts with no indexable tokens so every text maps
// to a non-zero vector.
const emptyToken = "\x00empty"

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// Embedder maps lowercase tokens into a fixed number of count buckets.
type Embedder struct {
	dim       int
	stopwords map[string]struct{}
}

// New creates an Embedder. dim <= 0 selects DefaultDimensions.
func New(dim int) *Embedder {
	if dim <= 0 {
		dim = DefaultDimensions
	}
	return &Embedder{dim: dim, stopwords: defaultStopwords()}
}

// Embed returns an L2-normalized bucket-count vector. TotalTokens counts indexed tokens.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.EmbeddingResult{}, err
	}
	vec, n := e.vectorize(text)
	return domain.EmbeddingResult{Embedding: vec, PromptTokens: n, TotalTokens: n}, nil
}

// BatchEmbed embeds texts in order.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	return domain.BatchFallback(ctx, e, texts)
}

// Dimensions returns the fixed output size.
func (e *Embedder) Dimensions() int { return e.dim }

// HealthCheck always succeeds; the model is in-process.
func (e *Embedder) HealthCheck(context.Context) error { return nil }

// Tokens returns the indexed tokens of text in order.
// Single-character tokens and stopwords are dropped.
func (e *Embedder) Tokens(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, tok := range raw {
		if len(tok) < 2 {
			continue
		}
		if _, stop := e.stopwords[tok]; stop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func (e *Embedder) vectorize(text string) ([]float32, int) {
	vec := make([]float32, e.dim)
	tokens := e.Tokens(text)
	if len(tokens) == 0 {
		vec[e.bucket(emptyToken)] = 1
		return vec, 0
	}
	for _, tok := range tokens {
		vec[e.bucket(tok)]++
	}
	domain.Normalize(vec)
	return vec, len(tokens)
}

func (e *Embedder) bucket(tok string) int {
	return int(xxhash.Sum64String(tok) % uint64(e.dim))
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "and", "are", "as", "at", "be", "but", "by", "do", "for", "from",
		"go", "going", "has", "have", "in", "into", "is", "it", "its", "like",
		"me", "my", "near", "of", "on", "or", "our", "some", "that", "the", "their",
		"there", "this", "to", "us", "want", "was", "we", "where", "which", "with",
		"would", "you", "your",
	}
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}
