package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docquery/cli/internal/domain"
)

func TestIntentClassification(t *testing.T) {
	p := NewProcessor()

	tests := []struct {
		query string
		want  domain.Intent
	}{
		{"What is the total revenue for 2023?", domain.IntentFactual},
		{"Compare product A with product B", domain.IntentComparison},
		{"How do I reset the device?", domain.IntentProcedural},
		{"Why did margins fall last quarter?", domain.IntentAnalytical},
		{"How many employees joined?", domain.IntentNumerical},
		{"Give me the table of results", domain.IntentVisual},
		{"Summarize the annual filing", domain.IntentGeneral},
		// First matching pattern wins: "what" outranks "difference".
		{"What is the difference between A and B?", domain.IntentFactual},
		// "table" alone resolves visual only when nothing earlier matches.
		{"Is the pricing listed in a table anywhere", domain.IntentVisual},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			qc := p.Process(tt.query)
			assert.Equal(t, tt.want, qc.Intent)
		})
	}
}

func TestEntityExtraction(t *testing.T) {
	p := NewProcessor()
	qc := p.Process("The filing from Acme Holdings reports 12.5% growth on 2024-01-15")

	var byType = map[string][]string{}
	for _, entity := range qc.Entities {
		byType[entity.Type] = append(byType[entity.Type], entity.Value)
	}
	assert.Contains(t, byType["organization"], "Acme Holdings")
	assert.Contains(t, byType["number"], "12.5%")
	assert.Contains(t, byType["date"], "2024-01-15")
}

func TestKeywordExtraction(t *testing.T) {
	p := NewProcessor()
	qc := p.Process("What is the quarterly revenue of the company in Europe?")

	assert.Contains(t, qc.Keywords, "quarterly")
	assert.Contains(t, qc.Keywords, "revenue")
	assert.Contains(t, qc.Keywords, "europe")
	assert.NotContains(t, qc.Keywords, "the", "stop words are dropped")
	assert.NotContains(t, qc.Keywords, "of", "short tokens are dropped")
}

func TestKeywordCap(t *testing.T) {
	p := NewProcessor()
	words := []string{
		"alpha", "bravo", "charlie", "delta", "echo", "foxtrot",
		"golf", "hotel", "india", "juliett", "kilo", "lima",
	}
	qc := p.Process(strings.Join(words, " "))

	require.Len(t, qc.Keywords, 10)
	assert.Equal(t, words[:10], qc.Keywords, "original order preserved")
}

func TestKeywordPunctuationTrimmed(t *testing.T) {
	p := NewProcessor()
	qc := p.Process("How did (net) revenue? change")

	assert.Contains(t, qc.Keywords, "net")
	assert.Contains(t, qc.Keywords, "revenue")
	assert.NotContains(t, qc.Keywords, "revenue?")
}

func TestQueryExpansion(t *testing.T) {
	p := NewProcessor()
	qc := p.Process("What happened to revenue?")

	assert.True(t, strings.HasPrefix(qc.Expanded, qc.Raw), "expansion appends, never rewrites")
	assert.Contains(t, qc.Expanded, "income earnings sales")
}

func TestExpansionWithoutSynonymsIsIdentity(t *testing.T) {
	p := NewProcessor()
	qc := p.Process("zebra xylophone")
	assert.Equal(t, qc.Raw, qc.Expanded)
}
