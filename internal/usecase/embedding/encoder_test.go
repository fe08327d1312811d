package embedding

import (
	"context"
	"errors"
	"math"
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/tripdex/internal/domain"
	"github.com/kailas-cloud/tripdex/internal/embedder/hash"
	"github.com/kailas-cloud/tripdex/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterEmbeddingMetrics()
	os.Exit(m.Run())
}

type mockEmbedder struct {
	result     domain.EmbeddingResult
	err        error
	batchErr   error
	batchCalls int
	embedCalls int
	dims       int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.embedCalls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	v := append([]float32(nil), m.result.Embedding...)
	return domain.EmbeddingResult{Embedding: v, PromptTokens: m.result.PromptTokens, TotalTokens: m.result.TotalTokens}, nil
}

func (m *mockEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.batchCalls++
	if m.batchErr != nil {
		return domain.BatchEmbeddingResult{}, m.batchErr
	}
	embeddings := make([][]float32, len(texts))
	for i := range texts {
		embeddings[i] = append([]float32(nil), m.result.Embedding...)
	}
	return domain.BatchEmbeddingResult{
		Embeddings:   embeddings,
		PromptTokens: m.result.PromptTokens * len(texts),
		TotalTokens:  m.result.TotalTokens * len(texts),
	}, nil
}

func (m *mockEmbedder) Dimensions() int { return m.dims }

// plainMockEmbedder has no batch support and no declared dimension.
type plainMockEmbedder struct {
	vec   []float32
	calls int
}

func (m *plainMockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	return domain.EmbeddingResult{Embedding: append([]float32(nil), m.vec...), TotalTokens: 1}, nil
}

func TestEncoder_NormalizesOutput(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{3, 4}, TotalTokens: 7}}
	e := NewEncoder(inner, "test", "test-model", zap.NewNop())

	ctx, usage := domain.NewContextWithUsage(context.Background())
	res, err := e.Embed(ctx, "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := domain.L2Norm(res.Embedding); math.Abs(n-1) > 1e-5 {
		t.Fatalf("norm = %f, want 1", n)
	}
	if usage.TotalTokens != 7 || usage.Calls != 1 {
		t.Errorf("usage = %+v", usage)
	}
}

func TestEncoder_ProviderErrorIsEncodingError(t *testing.T) {
	cause := errors.New("connection refused")
	e := NewEncoder(&mockEmbedder{err: cause}, "test", "m", zap.NewNop())

	_, err := e.Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEncoding) {
		t.Fatalf("expected ErrEncoding, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause to be preserved, got %v", err)
	}
}

func TestEncoder_RejectsBadVectors(t *testing.T) {
	tests := []struct {
		name string
		vec  []float32
	}{
		{"empty", nil},
		{"zero", []float32{0, 0}},
		{"nan", []float32{float32(math.NaN()), 1}},
		{"inf", []float32{float32(math.Inf(1)), 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEncoder(&mockEmbedder{result: domain.EmbeddingResult{Embedding: tt.vec}}, "test", "m", zap.NewNop())
			if _, err := e.Embed(context.Background(), "x"); !errors.Is(err, domain.ErrEncoding) {
				t.Fatalf("expected ErrEncoding, got %v", err)
			}
		})
	}
}

func TestEncoder_DimensionPinnedOnFirstUse(t *testing.T) {
	inner := &plainMockEmbedder{vec: []float32{1, 0, 0}}
	e := NewEncoder(inner, "test", "m", zap.NewNop())

	d, err := e.Dimensions(context.Background())
	if err != nil || d != 3 {
		t.Fatalf("Dimensions() = %d, %v", d, err)
	}
	if inner.calls != 1 {
		t.Fatalf("expected one probe call, got %d", inner.calls)
	}
	if _, err := e.Dimensions(context.Background()); err != nil || inner.calls != 1 {
		t.Fatalf("dimension should be cached, calls=%d err=%v", inner.calls, err)
	}

	inner.vec = []float32{1, 0}
	if _, err := e.Embed(context.Background(), "x"); !errors.Is(err, domain.ErrEncoding) {
		t.Fatalf("expected ErrEncoding on dimension change, got %v", err)
	}
}

func TestEncoder_DeclaredDimensions(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1, 1}}, dims: 2}
	e := NewEncoder(inner, "test", "m", zap.NewNop())

	d, err := e.Dimensions(context.Background())
	if err != nil || d != 2 {
		t.Fatalf("Dimensions() = %d, %v", d, err)
	}
	if inner.embedCalls != 0 {
		t.Errorf("declared dimension must not probe, got %d calls", inner.embedCalls)
	}
}

func TestEncoder_BatchEmbed_Success(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{2, 0}, TotalTokens: 3}}
	e := NewEncoder(inner, "test", "m", zap.NewNop())

	res, err := e.BatchEmbed(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embeddings) != 3 || res.TotalTokens != 9 {
		t.Fatalf("got %d embeddings, %d tokens", len(res.Embeddings), res.TotalTokens)
	}
	for i, v := range res.Embeddings {
		if v[0] != 1 {
			t.Errorf("embedding %d not normalized: %v", i, v)
		}
	}
}

func TestEncoder_BatchEmbed_Chunks(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	e := NewEncoder(inner, "test", "m", zap.NewNop())

	texts := make([]string, DefaultMaxAPIBatchSize+1)
	res, err := e.BatchEmbed(context.Background(), texts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.batchCalls != 2 {
		t.Errorf("expected 2 chunked calls, got %d", inner.batchCalls)
	}
	if len(res.Embeddings) != len(texts) {
		t.Errorf("expected %d embeddings, got %d", len(texts), len(res.Embeddings))
	}
}

func TestEncoder_BatchEmbed_Empty(t *testing.T) {
	inner := &mockEmbedder{}
	res, err := NewEncoder(inner, "test", "m", zap.NewNop()).BatchEmbed(context.Background(), nil)
	if err != nil || res.Embeddings != nil || inner.batchCalls != 0 {
		t.Fatalf("unexpected result %+v err=%v calls=%d", res, err, inner.batchCalls)
	}
}

func TestEncoder_BatchEmbed_InnerError(t *testing.T) {
	inner := &mockEmbedder{batchErr: errors.New("boom")}
	_, err := NewEncoder(inner, "test", "m", zap.NewNop()).BatchEmbed(context.Background(), []string{"a"})
	if !errors.Is(err, domain.ErrEncoding) {
		t.Fatalf("expected ErrEncoding, got %v", err)
	}
}

func TestEncoder_BatchEmbed_FallbackToSingle(t *testing.T) {
	inner := &plainMockEmbedder{vec: []float32{0, 5}}
	res, err := NewEncoder(inner, "test", "m", zap.NewNop()).BatchEmbed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 2 || len(res.Embeddings) != 2 || res.Embeddings[1][1] != 1 {
		t.Fatalf("calls=%d res=%v", inner.calls, res.Embeddings)
	}
}

func TestEncoder_HashProviderUnitLength(t *testing.T) {
	e := NewEncoder(hash.New(64), "hash", "hash-64", zap.NewNop())
	for _, text := range []string{"", "mountain lakes", "Paris museums and cafés"} {
		res, err := e.Embed(context.Background(), text)
		if err != nil {
			t.Fatalf("Embed(%q): %v", text, err)
		}
		if n := domain.L2Norm(res.Embedding); math.Abs(n-1) > 1e-5 {
			t.Errorf("Embed(%q) norm = %f", text, n)
		}
	}
	if err := e.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck: %v", err)
	}
}
