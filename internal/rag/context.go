package rag

import (
	"fmt"
	"strings"

	"github.com/docquery/cli/internal/domain"
)

// ContextBuilder assembles retrieved chunks into the context string handed
// to the synthesizer.
type ContextBuilder struct {
	maxChars int
}

// NewContextBuilder creates a context builder with a character budget.
func NewContextBuilder(maxChars int) *ContextBuilder {
	if maxChars <= 0 {
		maxChars = 4000
	}
	return &ContextBuilder{maxChars: maxChars}
}

// Build concatenates chunk contents in reranked order, each prefixed by
// its type label, until the budget would be exceeded. The chunk that would
// overflow is omitted entirely, never truncated mid-chunk, so every
// sentence in the assembled context is complete.
func (cb *ContextBuilder) Build(results []domain.RetrievalResult) string {
	var parts []string
	total := 0
	for _, result := range results {
		part := fmt.Sprintf("[%s] %s", result.Kind, result.Content)
		if total+len(part) > cb.maxChars {
			break
		}
		parts = append(parts, part)
		total += len(part)
	}
	return strings.Join(parts, "\n\n")
}
