package testhelpers

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"
)

const embeddingDimensions = 64

// Embedder is a deterministic bag-of-words embedder: texts sharing words get similar vectors.
// Set Err to simulate an unreachable embedding service.
type Embedder struct {
	Calls int
	Err   error
}

// Embed implements memory.Embedder.
func (e *Embedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.Calls++
	if e.Err != nil {
		return nil, e.Err
	}
	vec := make([]float32, embeddingDimensions)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, word := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(word))
		vec[h.Sum32()%embeddingDimensions]++
	}
	return vec, nil
}
