package rag

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/docquery/cli/internal/domain"
)

// Filters narrow a retrieval request beyond the document id scope.
type Filters struct {
	MinSimilarity float64
	ContentType   domain.ChunkKind
}

// Retriever runs vector search over the index and reranks the candidates
// with lexical and content-type signals. Pure vector similarity
// under-weights exact term matches and content type for structured
// queries, so a cheap additive correction is applied on top.
type Retriever struct {
	index           domain.VectorIndex
	embedder        domain.Embedder
	topK            int
	similarityFloor float64
}

const (
	keywordOverlapWeight = 0.2
	visualTypeBonus      = 0.1
	lengthScoreWeight    = 0.05
	preferredChunkLength = 300
)

// NewRetriever creates a retriever. topK defaults to 5 and the similarity
// floor to 0.3 when unset.
func NewRetriever(index domain.VectorIndex, embedder domain.Embedder, topK int, similarityFloor float64) *Retriever {
	if topK <= 0 {
		topK = 5
	}
	if similarityFloor <= 0 {
		similarityFloor = 0.3
	}
	return &Retriever{
		index:           index,
		embedder:        embedder,
		topK:            topK,
		similarityFloor: similarityFloor,
	}
}

// Retrieve embeds the expanded query, searches the index, applies the
// similarity floor and caller filters, then reranks and returns the topK
// results ordered by combined score descending.
func (r *Retriever) Retrieve(ctx context.Context, qc domain.QueryContext, documentIDs []string, filters Filters) ([]domain.RetrievalResult, error) {
	embedding, err := r.embedder.Embed(ctx, qc.Expanded)
	if err != nil {
		return nil, fmt.Errorf("embed expanded query: %w: %w", domain.ErrEmbedding, err)
	}

	// Over-fetch so that post-filtering still leaves topK candidates.
	candidates, err := r.index.Search(ctx, embedding, documentIDs, r.topK*4)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	floor := r.similarityFloor
	if filters.MinSimilarity > floor {
		floor = filters.MinSimilarity
	}

	var results []domain.RetrievalResult
	for _, candidate := range candidates {
		// NaN compares false against the floor, so reject it explicitly
		// rather than letting it poison rerank scores downstream.
		if math.IsNaN(candidate.Similarity) || candidate.Similarity < floor {
			continue
		}
		if filters.ContentType != "" && candidate.Kind != filters.ContentType {
			continue
		}
		candidate.RerankScore = r.rerankScore(qc, candidate)
		results = append(results, candidate)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RerankScore > results[j].RerankScore
	})
	if len(results) > r.topK {
		results = results[:r.topK]
	}
	return results, nil
}

// rerankScore combines vector similarity with exact keyword overlap, a
// content-type bonus for table-oriented queries, and a mild preference for
// chunks near the preferred length.
func (r *Retriever) rerankScore(qc domain.QueryContext, candidate domain.RetrievalResult) float64 {
	score := candidate.Similarity
	score += keywordOverlapWeight * keywordOverlap(qc.Raw, candidate.Content)
	if strings.Contains(strings.ToLower(qc.Raw), "table") && candidate.Kind == domain.ChunkVisualContext {
		score += visualTypeBonus
	}
	score += lengthScoreWeight * lengthScore(len(candidate.Content))
	return score
}

// keywordOverlap returns the fraction of raw-query words present in the
// chunk content.
func keywordOverlap(rawQuery, content string) float64 {
	words := strings.Fields(strings.ToLower(rawQuery))
	if len(words) == 0 {
		return 0
	}
	lowered := strings.ToLower(content)
	matched := 0
	for _, word := range words {
		word = strings.Trim(word, ".,!?;:\"'()")
		if word != "" && strings.Contains(lowered, word) {
			matched++
		}
	}
	return float64(matched) / float64(len(words))
}

func lengthScore(length int) float64 {
	score := 1 - math.Abs(float64(length-preferredChunkLength))/1000
	if score < 0 {
		return 0
	}
	return score
}
