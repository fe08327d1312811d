package tripdex

import (
	"context"

	"github.com/kailas-cloud/tripdex/internal/catalog"
	"github.com/kailas-cloud/tripdex/internal/domain/facet"
	"github.com/kailas-cloud/tripdex/internal/domain/search/request"
	"github.com/kailas-cloud/tripdex/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/tripdex/internal/usecase/health"
)

// --- Embedder mocks ---

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

type mockBatchEmbedder struct {
	mockEmbedder
	batchFn func(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

func (m *mockBatchEmbedder) BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error) {
	return m.batchFn(ctx, texts)
}

// --- plannerUseCase mock ---

type mockPlanner struct {
	searchFn  func(ctx context.Context, req *request.Request) ([]result.Result, error)
	rebuildFn func(ctx context.Context) (*catalog.BuildReport, error)
	weights   facet.Weights
}

func (m *mockPlanner) Ensure(context.Context) error { return nil }

func (m *mockPlanner) Search(ctx context.Context, req *request.Request) ([]result.Result, error) {
	return m.searchFn(ctx, req)
}

func (m *mockPlanner) Rebuild(ctx context.Context) (*catalog.BuildReport, error) {
	return m.rebuildFn(ctx)
}

func (m *mockPlanner) Weights() facet.Weights {
	if m.weights == nil {
		return facet.Default()
	}
	return m.weights
}

func (m *mockPlanner) SetWeights(w facet.Weights) error {
	m.weights = w
	return nil
}

func (m *mockPlanner) Countries(context.Context) ([]string, error) { return nil, nil }

// --- healthUseCase mock ---

type mockHealth struct{ report healthuc.Report }

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }
