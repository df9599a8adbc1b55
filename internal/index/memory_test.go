package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docquery/cli/internal/domain"
)

func TestCosineSimilarityBounds(t *testing.T) {
	v := []float32{0.3, -0.5, 0.8}
	assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-6, "self similarity is 1")
	assert.InDelta(t, -1.0, CosineSimilarity(v, []float32{-0.3, 0.5, -0.8}), 1e-6)

	zero := []float32{0, 0, 0}
	assert.Equal(t, 0.0, CosineSimilarity(zero, v), "zero vector scores exactly 0")
	assert.Equal(t, 0.0, CosineSimilarity(v, zero))
	assert.Equal(t, 0.0, CosineSimilarity(zero, zero))

	pairs := [][2][]float32{
		{{1, 0, 0}, {0, 1, 0}},
		{{1, 2, 3}, {-4, 5, -6}},
		{{0.001, 0, 0}, {1000, 1000, 1000}},
	}
	for _, pair := range pairs {
		sim := CosineSimilarity(pair[0], pair[1])
		assert.GreaterOrEqual(t, sim, -1.0)
		assert.LessOrEqual(t, sim, 1.0)
	}
}

func TestUpsertDimensionMismatch(t *testing.T) {
	m := NewMemory(3)
	err := m.Upsert(context.Background(), "doc", domain.Chunk{ID: 1, Content: "x"}, []float32{1, 2})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestSearchDimensionMismatch(t *testing.T) {
	m := NewMemory(3)
	require.NoError(t, m.Upsert(context.Background(), "doc", domain.Chunk{ID: 1, Content: "x"}, []float32{1, 0, 0}))

	_, err := m.Search(context.Background(), []float32{1, 0, 0, 0}, nil, 5)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestSearchOrdering(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(3)
	require.NoError(t, m.Upsert(ctx, "a", domain.Chunk{ID: 1, Content: "far"}, []float32{0, 1, 0}))
	require.NoError(t, m.Upsert(ctx, "a", domain.Chunk{ID: 2, Content: "close"}, []float32{1, 0.2, 0}))
	require.NoError(t, m.Upsert(ctx, "a", domain.Chunk{ID: 3, Content: "exact"}, []float32{1, 0, 0}))

	results, err := m.Search(ctx, []float32{1, 0, 0}, nil, 10)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "exact", results[0].Content)
	assert.Equal(t, "close", results[1].Content)
	assert.Equal(t, "far", results[2].Content)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Similarity, results[i].Similarity)
	}
}

func TestSearchTiesBrokenByInsertionOrder(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(3)
	same := []float32{1, 1, 0}
	require.NoError(t, m.Upsert(ctx, "first", domain.Chunk{ID: 1, Content: "first in"}, same))
	require.NoError(t, m.Upsert(ctx, "second", domain.Chunk{ID: 1, Content: "second in"}, same))
	require.NoError(t, m.Upsert(ctx, "third", domain.Chunk{ID: 1, Content: "third in"}, same))

	results, err := m.Search(ctx, []float32{1, 1, 0}, nil, 10)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "first", results[0].DocumentID)
	assert.Equal(t, "second", results[1].DocumentID)
	assert.Equal(t, "third", results[2].DocumentID)
}

func TestUpsertReplacesAtKey(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(3)
	require.NoError(t, m.Upsert(ctx, "doc", domain.Chunk{ID: 1, Content: "old"}, []float32{1, 0, 0}))
	require.NoError(t, m.Upsert(ctx, "doc", domain.Chunk{ID: 1, Content: "new"}, []float32{0, 1, 0}))

	count, err := m.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	results, err := m.Search(ctx, []float32{0, 1, 0}, nil, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "new", results[0].Content)
}

func TestSearchDocumentFilter(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(3)
	require.NoError(t, m.Upsert(ctx, "wanted", domain.Chunk{ID: 1, Content: "in scope"}, []float32{1, 0, 0}))
	require.NoError(t, m.Upsert(ctx, "other", domain.Chunk{ID: 1, Content: "out of scope"}, []float32{1, 0, 0}))

	results, err := m.Search(ctx, []float32{1, 0, 0}, []string{"wanted"}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "wanted", results[0].DocumentID)

	count, err := m.Count(ctx, []string{"wanted"})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSearchLimit(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(3)
	for i := 0; i < 8; i++ {
		require.NoError(t, m.Upsert(ctx, "doc", domain.Chunk{ID: i + 1, Content: "c"}, []float32{1, 0, 0}))
	}
	results, err := m.Search(ctx, []float32{1, 0, 0}, nil, 3)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(3)
	require.NoError(t, m.Upsert(ctx, "doc", domain.Chunk{ID: 1, Content: "c"}, []float32{1, 0, 0}))
	m.Reset()
	count, err := m.Count(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, count)
}
