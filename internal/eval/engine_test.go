package eval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docquery/cli/internal/domain"
)

func sources(similarities ...float64) []domain.RetrievalResult {
	out := make([]domain.RetrievalResult, len(similarities))
	for i, sim := range similarities {
		out[i] = domain.RetrievalResult{Similarity: sim}
	}
	return out
}

func TestMetricRanges(t *testing.T) {
	e := NewEngine(100)
	cases := []struct {
		name        string
		answer      domain.GeneratedAnswer
		sources     []domain.RetrievalResult
		contextText string
	}{
		{"empty everything", domain.GeneratedAnswer{}, nil, ""},
		{"high similarity", domain.GeneratedAnswer{Text: "Revenue grew sharply", Confidence: 1}, sources(0.9, 0.95), "revenue grew sharply"},
		{"negative similarity", domain.GeneratedAnswer{Text: "words here", Confidence: 0.5}, sources(-0.8, -0.2), "other words"},
		{"mixed", domain.GeneratedAnswer{Text: "partial overlap answer", Confidence: 0.3}, sources(0.2, 0.6, 0.8), "partial context"},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			record := e.Score("q", tt.answer, tt.sources, tt.contextText, time.Second)
			for name, value := range map[string]float64{
				"faithfulness":      record.Metrics.Faithfulness,
				"answer_relevancy":  record.Metrics.AnswerRelevancy,
				"context_recall":    record.Metrics.ContextRecall,
				"context_precision": record.Metrics.ContextPrecision,
				"relevance":         record.Relevance,
			} {
				assert.GreaterOrEqual(t, value, 0.0, name)
				assert.LessOrEqual(t, value, 1.0, name)
			}
		})
	}
}

func TestFaithfulness(t *testing.T) {
	e := NewEngine(100)

	record := e.Score("q",
		domain.GeneratedAnswer{Text: "Revenue increased sharply overall"},
		sources(0.9),
		"The revenue increased in the report",
		time.Second,
	)
	// Words over three characters: revenue, increased, sharply, overall.
	// Two of the four occur in the context.
	assert.InDelta(t, 0.5, record.Metrics.Faithfulness, 1e-9)

	empty := e.Score("q", domain.GeneratedAnswer{Text: "anything at all"}, nil, "", time.Second)
	assert.Zero(t, empty.Metrics.Faithfulness, "empty context scores zero")
}

func TestContextRecall(t *testing.T) {
	e := NewEngine(100)
	record := e.Score("q", domain.GeneratedAnswer{}, sources(0.9, 0.4, 0.6), "ctx", time.Second)
	assert.InDelta(t, 1.0/3.0, record.Metrics.ContextRecall, 1e-9)
}

func TestContextPrecision(t *testing.T) {
	e := NewEngine(100)

	// Relevant (>0.5) at ranks 1 and 3: (1/1 + 2/3) / 2.
	record := e.Score("q", domain.GeneratedAnswer{}, sources(0.9, 0.4, 0.6), "ctx", time.Second)
	assert.InDelta(t, (1.0+2.0/3.0)/2.0, record.Metrics.ContextPrecision, 1e-9)

	none := e.Score("q", domain.GeneratedAnswer{}, sources(0.1, 0.2), "ctx", time.Second)
	assert.Zero(t, none.Metrics.ContextPrecision)
}

func TestAnswerRelevancy(t *testing.T) {
	e := NewEngine(100)
	record := e.Score("q", domain.GeneratedAnswer{Confidence: 0.8}, sources(0.6, 1.0), "ctx", time.Second)
	assert.InDelta(t, (0.8+0.8)/2, record.Metrics.AnswerRelevancy, 1e-9)
}

func TestSuccessFlag(t *testing.T) {
	e := NewEngine(100)
	assert.True(t, e.Score("q", domain.GeneratedAnswer{}, sources(0.5), "ctx", time.Second).Success)
	assert.False(t, e.Score("q", domain.GeneratedAnswer{}, nil, "", time.Second).Success)
}

func TestReportRollingWindow(t *testing.T) {
	e := NewEngine(100)
	latencies := []time.Duration{500 * time.Millisecond, 2 * time.Second, 4 * time.Second}
	for i := 0; i < 120; i++ {
		e.Score("q", domain.GeneratedAnswer{Confidence: 0.5}, sources(0.8), "ctx", latencies[i%3])
	}

	report := e.Report()
	assert.Equal(t, 120, report.TotalQueries, "history is append-only")
	assert.Equal(t, 100, report.WindowSize, "window caps at the configured size")

	bucketSum := report.LatencyBuckets.Under1s + report.LatencyBuckets.OneTo3s + report.LatencyBuckets.Over3s
	assert.Equal(t, report.WindowSize, bucketSum, "histogram covers exactly the window")
	assert.Equal(t, 1.0, report.SuccessRate)
	assert.Greater(t, report.MeanRelevance, 0.0)
}

func TestReportEmptyHistory(t *testing.T) {
	e := NewEngine(100)
	report := e.Report()
	assert.Zero(t, report.TotalQueries)
	assert.Zero(t, report.WindowSize)
}

func TestReset(t *testing.T) {
	e := NewEngine(100)
	e.Score("q", domain.GeneratedAnswer{}, sources(0.5), "ctx", time.Second)
	require.Equal(t, 1, e.Report().TotalQueries)
	e.Reset()
	assert.Zero(t, e.Report().TotalQueries)
}
