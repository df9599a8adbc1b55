package domain

import "errors"

// Sentinel errors for the failure kinds the pipeline can surface. Callers
// match them with errors.Is; wrapping sites attach operation context with
// fmt.Errorf and %w.
var (
	// ErrUnsupportedType reports an unrecognized document MIME type.
	ErrUnsupportedType = errors.New("unsupported document type")

	// ErrDimensionMismatch reports an embedding whose length differs from
	// the index dimension. Never coerced by truncation or padding.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmptySelection reports a query issued with zero eligible
	// documents. Surfaced to the caller, never defaulted to "search
	// everything".
	ErrEmptySelection = errors.New("no documents match the query selection")

	// ErrNotFound reports a reference to an unknown document, chunk or
	// file path.
	ErrNotFound = errors.New("not found")

	// ErrExtraction wraps text-extractor failures.
	ErrExtraction = errors.New("text extraction failed")

	// ErrEmbedding wraps embedding-provider failures.
	ErrEmbedding = errors.New("embedding failed")

	// ErrSynthesis wraps answer-synthesizer failures.
	ErrSynthesis = errors.New("answer synthesis failed")
)
