package query

import (
	"regexp"
	"strings"

	"github.com/docquery/cli/internal/domain"
)

// Processor classifies query intent and extracts keywords, entities and an
// expanded query used for retrieval. Intent and entity patterns are
// ordered tables so that new classes are additive configuration rather
// than new code paths.
type Processor struct {
	intents     []intentPattern
	entities    []entityPattern
	stopWords   map[string]bool
	synonyms    map[string][]string
	maxKeywords int
}

type intentPattern struct {
	intent  domain.Intent
	pattern *regexp.Regexp
}

type entityPattern struct {
	entityType string
	pattern    *regexp.Regexp
}

// NewProcessor creates a processor with the default pattern tables.
func NewProcessor() *Processor {
	return &Processor{
		// Priority order is fixed: the first matching pattern wins even
		// when several would match.
		intents: []intentPattern{
			{domain.IntentFactual, regexp.MustCompile(`(?i)\b(what|who|when|where)\b`)},
			{domain.IntentComparison, regexp.MustCompile(`(?i)\b(compare|comparison|versus|vs|difference|differ|better|worse)\b`)},
			{domain.IntentProcedural, regexp.MustCompile(`(?i)\bhow\s+(do|to|can|does|should)\b|\b(steps|procedure|instructions)\b`)},
			{domain.IntentAnalytical, regexp.MustCompile(`(?i)\b(why|analyze|analysis|explain|impact|effect|trend|cause)\b`)},
			{domain.IntentNumerical, regexp.MustCompile(`(?i)\bhow\s+(much|many)\b|\b(average|total|sum|count|percent|percentage)\b`)},
			{domain.IntentVisual, regexp.MustCompile(`(?i)\b(table|chart|figure|graph|diagram|image|picture)\b`)},
		},
		entities: []entityPattern{
			{"date", regexp.MustCompile(`\b(\d{4}[-/]\d{1,2}[-/]\d{1,2}|\d{1,2}/\d{1,2}/\d{2,4}|(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4})\b`)},
			{"number", regexp.MustCompile(`\b\d+(?:[.,]\d+)*%?`)},
			{"organization", regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)+\b`)},
		},
		stopWords:   defaultStopWords(),
		synonyms:    defaultSynonyms(),
		maxKeywords: 10,
	}
}

// Process derives a QueryContext from a raw query string.
func (p *Processor) Process(query string) domain.QueryContext {
	qc := domain.QueryContext{
		Raw:    query,
		Intent: domain.IntentGeneral,
	}
	for _, ip := range p.intents {
		if ip.pattern.MatchString(query) {
			qc.Intent = ip.intent
			break
		}
	}
	// Matchers run independently and matches are not deduplicated.
	for _, ep := range p.entities {
		for _, match := range ep.pattern.FindAllString(query, -1) {
			qc.Entities = append(qc.Entities, domain.Entity{Type: ep.entityType, Value: match})
		}
	}
	qc.Keywords = p.extractKeywords(query)
	qc.Expanded = p.expand(query, qc.Keywords)
	return qc
}

// extractKeywords lowercases the query, drops short tokens and stop words,
// and caps the result at maxKeywords, preserving original order.
func (p *Processor) extractKeywords(query string) []string {
	var keywords []string
	for _, word := range strings.Fields(strings.ToLower(query)) {
		word = strings.Trim(word, ".,!?;:\"'()")
		if len(word) <= 2 || p.stopWords[word] {
			continue
		}
		keywords = append(keywords, word)
		if len(keywords) == p.maxKeywords {
			break
		}
	}
	return keywords
}

// expand appends the synonym list of every keyword found in the synonym
// table. The expanded query is used only for retrieval, never shown to
// the user.
func (p *Processor) expand(query string, keywords []string) string {
	expanded := query
	for _, keyword := range keywords {
		if synonyms, ok := p.synonyms[keyword]; ok {
			expanded += " " + strings.Join(synonyms, " ")
		}
	}
	return expanded
}

func defaultStopWords() map[string]bool {
	return map[string]bool{
		"the": true, "and": true, "for": true, "are": true, "was": true,
		"were": true, "been": true, "have": true, "has": true, "had": true,
		"does": true, "did": true, "will": true, "would": true, "could": true,
		"should": true, "what": true, "which": true, "who": true, "when": true,
		"where": true, "why": true, "how": true, "about": true, "with": true,
		"this": true, "that": true, "these": true, "those": true, "from": true,
		"into": true, "can": true, "you": true, "your": true, "our": true,
		"their": true, "there": true, "them": true, "they": true, "show": true,
		"tell": true, "please": true,
	}
}

func defaultSynonyms() map[string][]string {
	return map[string][]string{
		"revenue":  {"income", "earnings", "sales"},
		"cost":     {"expense", "expenditure", "spending"},
		"costs":    {"expenses", "expenditures", "spending"},
		"profit":   {"margin", "earnings", "net income"},
		"increase": {"growth", "rise", "gain"},
		"decrease": {"decline", "drop", "reduction"},
		"table":    {"figures", "data"},
		"chart":    {"graph", "figure", "plot"},
		"employee": {"staff", "personnel", "workforce"},
		"customer": {"client", "consumer"},
		"company":  {"business", "organization", "firm"},
		"report":   {"document", "summary", "filing"},
	}
}
