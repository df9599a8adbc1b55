package index

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/docquery/cli/internal/domain"
)

// Memory is an in-memory vector index using brute-force cosine similarity.
// Records are keyed by (documentID, chunkID); re-upserting a key replaces
// the record in place, preserving its original insertion position so that
// tie-breaking stays stable.
type Memory struct {
	mu        sync.RWMutex
	dimension int
	records   []domain.VectorRecord
	byKey     map[recordKey]int
}

type recordKey struct {
	documentID string
	chunkID    int
}

// NewMemory creates an empty index with a fixed embedding dimension.
func NewMemory(dimension int) *Memory {
	if dimension <= 0 {
		dimension = 384
	}
	return &Memory{
		dimension: dimension,
		byKey:     make(map[recordKey]int),
	}
}

// Dimension returns the embedding dimension enforced by the index.
func (m *Memory) Dimension() int { return m.dimension }

// Upsert inserts or replaces the record at (documentID, chunk.ID).
func (m *Memory) Upsert(_ context.Context, documentID string, chunk domain.Chunk, embedding []float32) error {
	if len(embedding) != m.dimension {
		return fmt.Errorf("%w: got %d, index requires %d", domain.ErrDimensionMismatch, len(embedding), m.dimension)
	}
	record := domain.VectorRecord{
		ChunkID:    chunk.ID,
		DocumentID: documentID,
		Embedding:  append([]float32(nil), embedding...),
		Content:    chunk.Content,
		Kind:       chunk.Kind,
		Visuals:    chunk.Visuals,
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := recordKey{documentID, chunk.ID}
	if i, ok := m.byKey[key]; ok {
		m.records[i] = record
		return nil
	}
	m.byKey[key] = len(m.records)
	m.records = append(m.records, record)
	return nil
}

// Search returns the top limit records by cosine similarity against the
// query embedding, scanning every stored vector whose document id is in
// the filter set (or all vectors when the filter is empty). Ties are
// broken by insertion order, first-inserted first.
func (m *Memory) Search(_ context.Context, embedding []float32, documentIDs []string, limit int) ([]domain.RetrievalResult, error) {
	if len(embedding) != m.dimension {
		return nil, fmt.Errorf("%w: query has %d, index requires %d", domain.ErrDimensionMismatch, len(embedding), m.dimension)
	}
	if limit <= 0 {
		limit = 5
	}
	filter := toSet(documentIDs)

	m.mu.RLock()
	defer m.mu.RUnlock()
	results := make([]domain.RetrievalResult, 0, len(m.records))
	for _, record := range m.records {
		if filter != nil {
			if _, ok := filter[record.DocumentID]; !ok {
				continue
			}
		}
		results = append(results, domain.RetrievalResult{
			VectorRecord: record,
			Similarity:   CosineSimilarity(embedding, record.Embedding),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Count returns the number of stored records whose document id is in the
// filter set, or all records when the filter is empty.
func (m *Memory) Count(_ context.Context, documentIDs []string) (int, error) {
	filter := toSet(documentIDs)
	m.mu.RLock()
	defer m.mu.RUnlock()
	if filter == nil {
		return len(m.records), nil
	}
	n := 0
	for _, record := range m.records {
		if _, ok := filter[record.DocumentID]; ok {
			n++
		}
	}
	return n, nil
}

// Reset discards all stored records.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = nil
	m.byKey = make(map[recordKey]int)
}

func toSet(ids []string) map[string]struct{} {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// CosineSimilarity returns the normalized dot product of two vectors in
// [-1, 1]. Any comparison involving a zero-magnitude vector is defined as
// 0, never NaN.
func CosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim > 1 {
		sim = 1
	}
	if sim < -1 {
		sim = -1
	}
	return sim
}
