// Package embedding abstracts the text-to-vector step semantic search
// depends on, so the sync engine and tests can swap in a deterministic
// stub without a real model dependency. No embedding model ships in
// the retrieved example pack; the Dimension here (384) matches a
// common small sentence-embedding width and is configurable via
// SPEC_FULL.md's Search.VectorDimension setting.
package embedding

import (
	"context"
	"errors"
	"hash/fnv"
	"math"

	"github.com/hlfshell/gitdb/internal/ids"
)

var errEmptyText = errors.New("embedding: empty text")

// DefaultDimension is the vector width used when no override is set.
const DefaultDimension = 384

// Embedder turns text into a fixed-width vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// Stub returns a deterministic Embedder suitable for tests and for
// running gitdb without a configured embedding provider: the same text
// always maps to the same vector, and distinct texts map to vectors at
// different angles, which is all the IVF fallback and rank-fusion
// logic needs to exercise their code paths meaningfully.
func Stub(dimension int) Embedder {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return stubEmbedder{dimension: dimension}
}

type stubEmbedder struct{ dimension int }

func (s stubEmbedder) Dimension() int { return s.dimension }

func (s stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ids.BadInput("Embed", errEmptyText)
	}

	vec := make([]float32, s.dimension)
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()

	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float32(int64(seed>>40)%2000-1000) / 1000
	}
	normalize(vec)
	return vec, nil
}

func normalize(v []float32) {
	var sumSquares float64
	for _, f := range v {
		sumSquares += float64(f) * float64(f)
	}
	if sumSquares == 0 {
		return
	}
	norm := math.Sqrt(sumSquares)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
}
