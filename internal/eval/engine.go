package eval

import (
	"strings"
	"sync"
	"time"

	"github.com/docquery/cli/internal/domain"
)

// Engine scores every query/answer pair with heuristic RAG quality
// metrics and keeps an append-only history for aggregate reporting.
// Records are never removed except by an explicit Reset; reporting windows
// are views over the most recent records, not deletions.
type Engine struct {
	mu      sync.Mutex
	history []domain.EvaluationRecord
	window  int
}

// NewEngine creates an engine whose reports cover the most recent window
// records (default 100).
func NewEngine(window int) *Engine {
	if window <= 0 {
		window = 100
	}
	return &Engine{window: window}
}

// Score evaluates one query/answer/sources triple, appends the record to
// the history and returns it.
func (e *Engine) Score(query string, answer domain.GeneratedAnswer, sources []domain.RetrievalResult, contextText string, latency time.Duration) domain.EvaluationRecord {
	record := domain.EvaluationRecord{
		Latency:   latency,
		Relevance: relevance(answer, sources),
		Metrics: domain.Metrics{
			Faithfulness:     faithfulness(answer.Text, contextText),
			AnswerRelevancy:  answerRelevancy(answer, sources),
			ContextRecall:    contextRecall(sources),
			ContextPrecision: contextPrecision(sources),
		},
		Success:   len(sources) > 0,
		Timestamp: time.Now(),
	}
	e.mu.Lock()
	e.history = append(e.history, record)
	e.mu.Unlock()
	return record
}

// relevance weighs the mean similarity of the selected chunks against the
// answer confidence. Zero when no chunks were selected.
func relevance(answer domain.GeneratedAnswer, sources []domain.RetrievalResult) float64 {
	if len(sources) == 0 {
		return 0
	}
	return clamp01(0.6*meanSimilarity(sources) + 0.4*answer.Confidence)
}

// faithfulness is the fraction of answer words longer than three
// characters that literally occur in the context word set. Zero when the
// context is empty.
func faithfulness(answerText, contextText string) float64 {
	if strings.TrimSpace(contextText) == "" {
		return 0
	}
	contextWords := make(map[string]struct{})
	for _, word := range strings.Fields(strings.ToLower(contextText)) {
		contextWords[strings.Trim(word, ".,!?;:\"'()[]")] = struct{}{}
	}
	total := 0
	matched := 0
	for _, word := range strings.Fields(strings.ToLower(answerText)) {
		word = strings.Trim(word, ".,!?;:\"'()[]")
		if len(word) <= 3 {
			continue
		}
		total++
		if _, ok := contextWords[word]; ok {
			matched++
		}
	}
	if total == 0 {
		return 0
	}
	return clamp01(float64(matched) / float64(total))
}

// answerRelevancy averages the mean source similarity with the answer
// confidence.
func answerRelevancy(answer domain.GeneratedAnswer, sources []domain.RetrievalResult) float64 {
	return clamp01((meanSimilarity(sources) + answer.Confidence) / 2)
}

// contextRecall is the fraction of returned sources whose similarity
// exceeds 0.7.
func contextRecall(sources []domain.RetrievalResult) float64 {
	if len(sources) == 0 {
		return 0
	}
	relevant := 0
	for _, source := range sources {
		if source.Similarity > 0.7 {
			relevant++
		}
	}
	return clamp01(float64(relevant) / float64(len(sources)))
}

// contextPrecision is a precision-at-k style score over the ranked
// sources, treating similarity > 0.5 as relevant. The sum of
// relevant_found/rank_position terms is normalized by the count of
// relevant sources, not by k, matching the shipped scoring behavior.
func contextPrecision(sources []domain.RetrievalResult) float64 {
	relevantTotal := 0
	for _, source := range sources {
		if source.Similarity > 0.5 {
			relevantTotal++
		}
	}
	if relevantTotal == 0 {
		return 0
	}
	found := 0
	sum := 0.0
	for rank, source := range sources {
		if source.Similarity > 0.5 {
			found++
			sum += float64(found) / float64(rank+1)
		}
	}
	return clamp01(sum / float64(relevantTotal))
}

func meanSimilarity(sources []domain.RetrievalResult) float64 {
	if len(sources) == 0 {
		return 0
	}
	total := 0.0
	for _, source := range sources {
		sim := source.Similarity
		if sim < 0 {
			sim = 0
		}
		total += sim
	}
	return total / float64(len(sources))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
