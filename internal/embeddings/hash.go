package embeddings

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

// HashEmbedder maps text to a fixed-dimension vector by feature-hashing
// its tokens. It is deterministic and fully offline, which makes it the
// default for deployments without an embedding model and for tests. It is
// a lexical stand-in, not a semantic model: two texts score high only when
// they share vocabulary.
type HashEmbedder struct {
	dimension    int
	tokenPattern *regexp.Regexp
}

// NewHashEmbedder creates a hashing embedder with the given dimension
// (default 384).
func NewHashEmbedder(dimension int) *HashEmbedder {
	if dimension <= 0 {
		dimension = 384
	}
	return &HashEmbedder{
		dimension:    dimension,
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\d+`),
	}
}

// Dimension returns the embedding dimensionality.
func (e *HashEmbedder) Dimension() int { return e.dimension }

// Embed hashes each token into a bucket and L2-normalizes the result.
// Empty or tokenless text yields a zero vector, which the index scores at
// similarity 0 against everything.
func (e *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dimension)
	tokens := e.tokenPattern.FindAllString(strings.ToLower(text), -1)
	for _, token := range tokens {
		h := fnv.New32a()
		h.Write([]byte(token))
		sum := h.Sum32()
		bucket := int(sum % uint32(e.dimension))
		// Second hash bit decides the sign to keep buckets roughly
		// zero-centered.
		if (sum>>16)&1 == 1 {
			vec[bucket]--
		} else {
			vec[bucket]++
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec, nil
}
