package domain

import "context"

// TextExtractor turns raw file bytes into text plus structural metadata.
// Implementations must return ErrUnsupportedType for MIME types they do
// not recognize.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, mimeType string) (string, StructuralMetadata, error)
}

// Embedder converts text into a fixed-length vector representation. The
// dimensionality must be identical for every call within a deployment.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Synthesizer turns a query and assembled context into an answer. When the
// context is empty it must return a clear "no information found" answer
// rather than erroring or fabricating content.
type Synthesizer interface {
	Synthesize(ctx context.Context, query, contextText string, intent Intent) (GeneratedAnswer, error)
}

// VectorIndex stores chunk embeddings and answers nearest-neighbor queries.
// Search results are ordered by similarity descending with ties broken by
// insertion order. An empty documentIDs slice means no document filter.
type VectorIndex interface {
	Upsert(ctx context.Context, documentID string, chunk Chunk, embedding []float32) error
	Search(ctx context.Context, embedding []float32, documentIDs []string, limit int) ([]RetrievalResult, error)
	Count(ctx context.Context, documentIDs []string) (int, error)
}
