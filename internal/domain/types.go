package domain

import "time"

// SourceKind identifies how a document's text was produced.
type SourceKind string

const (
	SourcePDF   SourceKind = "pdf"
	SourceImage SourceKind = "image"
)

// ChunkKind classifies a retrievable unit of text.
type ChunkKind string

const (
	ChunkParagraph     ChunkKind = "paragraph"
	ChunkVisualContext ChunkKind = "visual_context"
)

// StructuralMetadata describes document structure reported by extraction.
type StructuralMetadata struct {
	PageCount int
	WordCount int
	HasTables bool
	HasImages bool
	HasCharts bool
}

// Document represents an ingested document. Immutable after chunking.
type Document struct {
	ID       string
	Kind     SourceKind
	Text     string
	Metadata StructuralMetadata
}

// VisualElement describes a table or chart associated with extracted text.
type VisualElement struct {
	Type    string `json:"type"`
	Caption string `json:"caption,omitempty"`
}

// Chunk is a minimal retrievable unit of document text. Chunk ids are
// sequential starting at 1 within a document, not globally unique.
type Chunk struct {
	ID      int
	Kind    ChunkKind
	Content string
	Visuals []VisualElement
}

// VectorRecord is a stored chunk embedding keyed by (DocumentID, ChunkID).
// Written once at ingestion time, read-only thereafter.
type VectorRecord struct {
	ChunkID    int
	DocumentID string
	Embedding  []float32
	Content    string
	Kind       ChunkKind
	Visuals    []VisualElement
}

// Intent is the coarse classification of a query's purpose.
type Intent string

const (
	IntentFactual    Intent = "factual"
	IntentComparison Intent = "comparison"
	IntentProcedural Intent = "procedural"
	IntentAnalytical Intent = "analytical"
	IntentNumerical  Intent = "numerical"
	IntentVisual     Intent = "visual"
	IntentGeneral    Intent = "general"
)

// Entity is a typed span extracted from a query.
type Entity struct {
	Type  string
	Value string
}

// QueryContext holds everything the query processor derived from a raw
// query. Created and discarded per query.
type QueryContext struct {
	Raw      string
	Intent   Intent
	Keywords []string
	Entities []Entity
	Expanded string
}

// RetrievalResult is a vector record scored against a query. Similarity is
// cosine similarity; RerankScore is the combined score after reranking.
type RetrievalResult struct {
	VectorRecord
	Similarity  float64
	RerankScore float64
}

// GeneratedAnswer is the synthesizer's output for one query.
type GeneratedAnswer struct {
	Text       string
	Confidence float64
	Intent     Intent
	HadContext bool
}

// Metrics holds the per-query answer quality scores, each in [0,1].
type Metrics struct {
	Faithfulness     float64
	AnswerRelevancy  float64
	ContextRecall    float64
	ContextPrecision float64
}

// EvaluationRecord is one scored query, appended to the rolling history
// and never mutated afterwards.
type EvaluationRecord struct {
	Latency   time.Duration
	Relevance float64
	Metrics   Metrics
	Success   bool
	Timestamp time.Time
}
