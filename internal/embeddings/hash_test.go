package embeddings

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashEmbedderDeterminism(t *testing.T) {
	e := NewHashEmbedder(384)
	first, err := e.Embed(context.Background(), "Revenue grew ten percent this quarter.")
	require.NoError(t, err)
	second, err := e.Embed(context.Background(), "Revenue grew ten percent this quarter.")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestHashEmbedderDimension(t *testing.T) {
	e := NewHashEmbedder(128)
	assert.Equal(t, 128, e.Dimension())
	vec, err := e.Embed(context.Background(), "some text")
	require.NoError(t, err)
	assert.Len(t, vec, 128)

	assert.Equal(t, 384, NewHashEmbedder(0).Dimension(), "default dimension")
}

func TestHashEmbedderUnitNorm(t *testing.T) {
	e := NewHashEmbedder(384)
	vec, err := e.Embed(context.Background(), "quarterly revenue and operating costs")
	require.NoError(t, err)

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)
}

func TestHashEmbedderEmptyTextIsZeroVector(t *testing.T) {
	e := NewHashEmbedder(64)
	vec, err := e.Embed(context.Background(), "   ")
	require.NoError(t, err)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func TestHashEmbedderSharedVocabularyScoresHigher(t *testing.T) {
	e := NewHashEmbedder(384)
	query, err := e.Embed(context.Background(), "what happened to revenue")
	require.NoError(t, err)
	related, err := e.Embed(context.Background(), "revenue grew ten percent")
	require.NoError(t, err)
	unrelated, err := e.Embed(context.Background(), "shipping delays worsened")
	require.NoError(t, err)

	assert.Greater(t, dot(query, related), dot(query, unrelated))
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
