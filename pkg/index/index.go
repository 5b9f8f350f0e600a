// Package index provides the in-memory similarity index over embedded
// chunks. An index is immutable once built; replacing a session's
// knowledge base means building a new index and swapping it in whole.
package index

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"websage/internal/models"
)

// ErrInvalidK rejects malformed queries before any scoring happens.
var ErrInvalidK = errors.New("k must be non-negative")

// Result pairs a retrieved chunk with its similarity score.
type Result struct {
	Chunk models.Chunk
	Score float64
}

type entry struct {
	chunk models.Chunk
	vec   []float32
	norm  float64
}

// Index is a brute-force cosine similarity index.
type Index struct {
	dim     int
	entries []entry
}

// Build constructs an index over the embedded chunks, validating that
// every vector has the same dimension.
func Build(embedded []models.EmbeddedChunk) (*Index, error) {
	ix := &Index{}

	for _, ec := range embedded {
		if len(ec.Vector) == 0 {
			return nil, fmt.Errorf("chunk %d has an empty vector", ec.Chunk.ID)
		}
		if ix.dim == 0 {
			ix.dim = len(ec.Vector)
		} else if len(ec.Vector) != ix.dim {
			return nil, fmt.Errorf("chunk %d has dimension %d, index has %d",
				ec.Chunk.ID, len(ec.Vector), ix.dim)
		}

		ix.entries = append(ix.entries, entry{
			chunk: ec.Chunk,
			vec:   ec.Vector,
			norm:  vectorNorm(ec.Vector),
		})
	}

	return ix, nil
}

// Len reports the number of indexed chunks.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Query returns up to k chunks ordered by descending cosine similarity.
// Ties break by ascending chunk ID so output is deterministic. k is
// clamped to the index size; an empty index yields an empty result.
func (ix *Index) Query(qvec []float32, k int) ([]Result, error) {
	if k < 0 {
		return nil, ErrInvalidK
	}
	if len(ix.entries) == 0 || k == 0 {
		return nil, nil
	}
	if len(qvec) != ix.dim {
		return nil, fmt.Errorf("query vector has dimension %d, index has %d", len(qvec), ix.dim)
	}
	if k > len(ix.entries) {
		k = len(ix.entries)
	}

	qnorm := vectorNorm(qvec)
	results := make([]Result, 0, len(ix.entries))
	for _, e := range ix.entries {
		results = append(results, Result{
			Chunk: e.chunk,
			Score: cosine(qvec, e.vec, qnorm, e.norm),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.ID < results[j].Chunk.ID
	})

	return results[:k], nil
}

func cosine(a, b []float32, anorm, bnorm float64) float64 {
	if anorm == 0 || bnorm == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (anorm * bnorm)
}

func vectorNorm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
