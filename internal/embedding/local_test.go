package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalEmbedder_Deterministic(t *testing.T) {
	e := NewLocalEmbedder("", 0)

	first, err := e.Embed(context.Background(), []string{"the quick brown fox"})
	require.NoError(t, err)
	second, err := e.Embed(context.Background(), []string{"the quick brown fox"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestLocalEmbedder_DimensionAndOrder(t *testing.T) {
	e := NewLocalEmbedder("all-MiniLM-L6-v2", 384)

	vectors, err := e.Embed(context.Background(), []string{"alpha", "beta", "gamma"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)

	for _, v := range vectors {
		assert.Len(t, v, 384)
	}

	// Different texts should not collapse to the same vector.
	assert.NotEqual(t, vectors[0], vectors[1])
}

func TestLocalEmbedder_Normalized(t *testing.T) {
	e := NewLocalEmbedder("", 384)

	vectors, err := e.Embed(context.Background(), []string{"some representative sentence"})
	require.NoError(t, err)

	var norm float64
	for _, v := range vectors[0] {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-6)
}

func TestLocalEmbedder_EmptyText(t *testing.T) {
	e := NewLocalEmbedder("", 8)

	vectors, err := e.Embed(context.Background(), []string{""})
	require.NoError(t, err)
	require.Len(t, vectors, 1)
	assert.Equal(t, make([]float32, 8), vectors[0])
}

func TestLocalEmbedder_ContextCanceled(t *testing.T) {
	e := NewLocalEmbedder("", 8)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Embed(ctx, []string{"text"})
	assert.ErrorIs(t, err, context.Canceled)
}
