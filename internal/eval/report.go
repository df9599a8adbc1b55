package eval

import (
	"time"

	"github.com/docquery/cli/internal/domain"
)

// LatencyBuckets is a three-bucket latency histogram over the reporting
// window.
type LatencyBuckets struct {
	Under1s int
	OneTo3s int
	Over3s  int
}

// Report is an aggregate snapshot over the most recent evaluation window.
type Report struct {
	TotalQueries   int
	WindowSize     int
	MeanLatency    time.Duration
	MeanRelevance  float64
	SuccessRate    float64
	MeanMetrics    domain.Metrics
	LatencyBuckets LatencyBuckets
}

// Report aggregates the most recent window of evaluation records. The
// underlying history is left untouched.
func (e *Engine) Report() Report {
	e.mu.Lock()
	defer e.mu.Unlock()

	report := Report{TotalQueries: len(e.history)}
	start := 0
	if len(e.history) > e.window {
		start = len(e.history) - e.window
	}
	recent := e.history[start:]
	report.WindowSize = len(recent)
	if len(recent) == 0 {
		return report
	}

	var totalLatency time.Duration
	var totalRelevance float64
	successes := 0
	var metrics domain.Metrics
	for _, record := range recent {
		totalLatency += record.Latency
		totalRelevance += record.Relevance
		if record.Success {
			successes++
		}
		metrics.Faithfulness += record.Metrics.Faithfulness
		metrics.AnswerRelevancy += record.Metrics.AnswerRelevancy
		metrics.ContextRecall += record.Metrics.ContextRecall
		metrics.ContextPrecision += record.Metrics.ContextPrecision

		switch {
		case record.Latency < time.Second:
			report.LatencyBuckets.Under1s++
		case record.Latency < 3*time.Second:
			report.LatencyBuckets.OneTo3s++
		default:
			report.LatencyBuckets.Over3s++
		}
	}

	n := float64(len(recent))
	report.MeanLatency = totalLatency / time.Duration(len(recent))
	report.MeanRelevance = totalRelevance / n
	report.SuccessRate = float64(successes) / n
	report.MeanMetrics = domain.Metrics{
		Faithfulness:     metrics.Faithfulness / n,
		AnswerRelevancy:  metrics.AnswerRelevancy / n,
		ContextRecall:    metrics.ContextRecall / n,
		ContextPrecision: metrics.ContextPrecision / n,
	}
	return report
}

// Reset discards the entire evaluation history.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history = nil
}
