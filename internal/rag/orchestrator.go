package rag

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/docquery/cli/internal/chunker"
	"github.com/docquery/cli/internal/domain"
	"github.com/docquery/cli/internal/eval"
	"github.com/docquery/cli/internal/query"
)

// Orchestrator sequences the full pipeline for both the write path
// (chunk, embed, index) and the read path (process, retrieve, rerank,
// synthesize, score). No stage is retried; any stage failure aborts the
// operation and surfaces a typed error.
type Orchestrator struct {
	chunker   *chunker.Chunker
	index     domain.VectorIndex
	embedder  domain.Embedder
	processor *query.Processor
	retriever *Retriever
	builder   *ContextBuilder
	synth     domain.Synthesizer
	evaluator *eval.Engine
	log       *zap.SugaredLogger
}

// Options wires the orchestrator's collaborators.
type Options struct {
	Chunker     *chunker.Chunker
	Index       domain.VectorIndex
	Embedder    domain.Embedder
	Processor   *query.Processor
	Retriever   *Retriever
	Context     *ContextBuilder
	Synthesizer domain.Synthesizer
	Evaluator   *eval.Engine
	Logger      *zap.SugaredLogger
}

// NewOrchestrator creates an orchestrator from its collaborators. A nil
// logger is replaced by a no-op logger.
func NewOrchestrator(opts Options) *Orchestrator {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Orchestrator{
		chunker:   opts.Chunker,
		index:     opts.Index,
		embedder:  opts.Embedder,
		processor: opts.Processor,
		retriever: opts.Retriever,
		builder:   opts.Context,
		synth:     opts.Synthesizer,
		evaluator: opts.Evaluator,
		log:       log,
	}
}

// IngestResult reports how many chunks were stored for a document.
type IngestResult struct {
	ChunksStored int
	ChunksFailed int
}

// Ingest chunks extracted text and indexes one embedding per chunk.
// Per-chunk embedding or index failures do not abort the document: the
// failures are aggregated and returned alongside the partial result.
func (o *Orchestrator) Ingest(ctx context.Context, documentID string, text string, kind domain.SourceKind, meta domain.StructuralMetadata) (IngestResult, error) {
	chunks := o.chunker.Chunk(text, kind, visualsFromMetadata(kind, meta))

	var result IngestResult
	var failures []error
	for _, chunk := range chunks {
		embedding, err := o.embedder.Embed(ctx, chunk.Content)
		if err != nil {
			failures = append(failures, fmt.Errorf("chunk %d: %w: %w", chunk.ID, domain.ErrEmbedding, err))
			continue
		}
		if err := o.index.Upsert(ctx, documentID, chunk, embedding); err != nil {
			failures = append(failures, fmt.Errorf("chunk %d: %w", chunk.ID, err))
			continue
		}
		result.ChunksStored++
	}
	result.ChunksFailed = len(failures)

	o.log.Infow("document ingested",
		"document_id", documentID,
		"source_kind", kind,
		"chunks_stored", result.ChunksStored,
		"chunks_failed", result.ChunksFailed,
	)
	if len(failures) > 0 {
		return result, errors.Join(failures...)
	}
	return result, nil
}

// QueryResult is the full outcome of one query: answer, ranked sources,
// relevance, quality metrics and latency.
type QueryResult struct {
	Answer         domain.GeneratedAnswer
	Sources        []domain.RetrievalResult
	RelevanceScore float64
	Metrics        domain.Metrics
	Latency        time.Duration
}

// Query runs the read path: process the query, retrieve and rerank,
// assemble context, synthesize an answer and score the result. A query
// against zero eligible documents fails with ErrEmptySelection rather
// than silently searching nothing.
func (o *Orchestrator) Query(ctx context.Context, text string, documentIDs []string, filters Filters) (*QueryResult, error) {
	start := time.Now()

	eligible, err := o.index.Count(ctx, documentIDs)
	if err != nil {
		return nil, fmt.Errorf("count eligible documents: %w", err)
	}
	if eligible == 0 {
		return nil, fmt.Errorf("query %q: %w", text, domain.ErrEmptySelection)
	}

	qc := o.processor.Process(text)

	sources, err := o.retriever.Retrieve(ctx, qc, documentIDs, filters)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}

	contextText := o.builder.Build(sources)

	// The synthesizer is called even with empty context; its contract is
	// to produce a clear "no information found" answer in that case.
	answer, err := o.synth.Synthesize(ctx, text, contextText, qc.Intent)
	if err != nil {
		return nil, fmt.Errorf("synthesize: %w: %w", domain.ErrSynthesis, err)
	}

	latency := time.Since(start)
	record := o.evaluator.Score(text, answer, sources, contextText, latency)

	o.log.Debugw("query answered",
		"intent", qc.Intent,
		"sources", len(sources),
		"relevance", record.Relevance,
		"latency", latency,
	)
	return &QueryResult{
		Answer:         answer,
		Sources:        sources,
		RelevanceScore: record.Relevance,
		Metrics:        record.Metrics,
		Latency:        latency,
	}, nil
}

// Report returns the evaluation engine's aggregate snapshot.
func (o *Orchestrator) Report() eval.Report {
	return o.evaluator.Report()
}

// ResetMetrics clears the evaluation history.
func (o *Orchestrator) ResetMetrics() {
	o.evaluator.Reset()
}

// visualsFromMetadata converts structural flags into the shared visual
// elements attached to image-derived chunks.
func visualsFromMetadata(kind domain.SourceKind, meta domain.StructuralMetadata) []domain.VisualElement {
	if kind != domain.SourceImage {
		return nil
	}
	var visuals []domain.VisualElement
	if meta.HasTables {
		visuals = append(visuals, domain.VisualElement{Type: "table"})
	}
	if meta.HasCharts {
		visuals = append(visuals, domain.VisualElement{Type: "chart"})
	}
	return visuals
}
