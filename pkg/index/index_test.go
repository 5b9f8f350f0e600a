package index_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"websage/internal/models"
	"websage/pkg/index"
)

func embedded(id int, url string, vec ...float32) models.EmbeddedChunk {
	return models.EmbeddedChunk{
		Chunk:  models.Chunk{ID: id, SourceURL: url, Text: "chunk"},
		Vector: vec,
	}
}

func TestQueryOrdersByDescendingSimilarity(t *testing.T) {
	ix, err := index.Build([]models.EmbeddedChunk{
		embedded(0, "https://a.example.com", 1, 0),
		embedded(1, "https://b.example.com", 0, 1),
		embedded(2, "https://c.example.com", 1, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, ix.Len())

	results, err := ix.Query([]float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, 0, results[0].Chunk.ID)
	assert.Equal(t, 2, results[1].Chunk.ID)
	assert.Equal(t, 1, results[2].Chunk.ID)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestQueryBreaksTiesByChunkID(t *testing.T) {
	// Identical vectors, shuffled insertion order.
	ix, err := index.Build([]models.EmbeddedChunk{
		embedded(7, "u", 1, 1),
		embedded(3, "u", 1, 1),
		embedded(5, "u", 1, 1),
	})
	require.NoError(t, err)

	results, err := ix.Query([]float32{1, 1}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, 3, results[0].Chunk.ID)
	assert.Equal(t, 5, results[1].Chunk.ID)
	assert.Equal(t, 7, results[2].Chunk.ID)
}

func TestQueryClampsK(t *testing.T) {
	ix, err := index.Build([]models.EmbeddedChunk{
		embedded(0, "u", 1, 0),
		embedded(1, "u", 0, 1),
	})
	require.NoError(t, err)

	results, err := ix.Query([]float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestQueryRejectsNegativeK(t *testing.T) {
	ix, err := index.Build([]models.EmbeddedChunk{embedded(0, "u", 1)})
	require.NoError(t, err)

	_, err = ix.Query([]float32{1}, -1)
	assert.ErrorIs(t, err, index.ErrInvalidK)
}

func TestQueryEmptyIndex(t *testing.T) {
	ix, err := index.Build(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, ix.Len())

	results, err := ix.Query([]float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestQueryDimensionMismatch(t *testing.T) {
	ix, err := index.Build([]models.EmbeddedChunk{embedded(0, "u", 1, 0)})
	require.NoError(t, err)

	_, err = ix.Query([]float32{1, 0, 0}, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension")
}

func TestBuildRejectsMixedDimensions(t *testing.T) {
	_, err := index.Build([]models.EmbeddedChunk{
		embedded(0, "u", 1, 0),
		embedded(1, "u", 1, 0, 0),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension")
}

func TestBuildRejectsEmptyVector(t *testing.T) {
	_, err := index.Build([]models.EmbeddedChunk{
		{Chunk: models.Chunk{ID: 0}, Vector: nil},
	})
	require.Error(t, err)
}
