package ollama

import (
	"context"
	"fmt"
	"strings"

	"github.com/docquery/cli/internal/domain"
)

// Synthesizer produces answers with an Ollama chat model. When the
// assembled context is empty it returns a fixed "no information found"
// answer without calling the model, so the pipeline never fabricates
// content from thin air.
type Synthesizer struct {
	client *Client
	model  string
}

// NewSynthesizer creates a synthesizer bound to a chat model.
func NewSynthesizer(client *Client, model string) *Synthesizer {
	return &Synthesizer{client: client, model: model}
}

const noContextAnswer = "No relevant information was found in the indexed documents for this question."

var intentInstructions = map[domain.Intent]string{
	domain.IntentFactual:    "Answer concisely with the specific fact requested.",
	domain.IntentComparison: "Compare the items the question asks about, point by point.",
	domain.IntentProcedural: "Answer with clear, ordered steps.",
	domain.IntentAnalytical: "Explain the reasoning and the factors involved.",
	domain.IntentNumerical:  "Answer with the specific numbers requested and state their units.",
	domain.IntentVisual:     "Describe the relevant table or chart content from the excerpts.",
	domain.IntentGeneral:    "Answer the question directly.",
}

// Synthesize builds an intent-appropriate prompt over the context excerpts
// and generates an answer.
func (s *Synthesizer) Synthesize(ctx context.Context, query, contextText string, intent domain.Intent) (domain.GeneratedAnswer, error) {
	if strings.TrimSpace(contextText) == "" {
		return domain.GeneratedAnswer{
			Text:       noContextAnswer,
			Confidence: 0.2,
			Intent:     intent,
			HadContext: false,
		}, nil
	}

	model, err := s.DefaultModel(ctx)
	if err != nil {
		return domain.GeneratedAnswer{}, err
	}

	text, err := s.client.Generate(ctx, &GenerateRequest{
		Model:  model,
		Prompt: buildPrompt(query, contextText, intent),
	})
	if err != nil {
		return domain.GeneratedAnswer{}, err
	}

	return domain.GeneratedAnswer{
		Text:       strings.TrimSpace(text),
		Confidence: confidence(contextText),
		Intent:     intent,
		HadContext: true,
	}, nil
}

func buildPrompt(query, contextText string, intent domain.Intent) string {
	var b strings.Builder
	b.WriteString("You answer questions strictly from the document excerpts below.\n")
	b.WriteString("If the excerpts do not contain the answer, say so instead of guessing.\n\n")
	b.WriteString("## Document Excerpts:\n")
	b.WriteString(contextText)
	b.WriteString("\n\n## Question:\n")
	b.WriteString(query)
	b.WriteString("\n\n")
	b.WriteString(intentInstructions[intent])
	return b.String()
}

// confidence is a coarse heuristic: more context generally means better
// grounded answers. Always within [0,1].
func confidence(contextText string) float64 {
	switch {
	case len(contextText) > 2000:
		return 0.85
	case len(contextText) > 500:
		return 0.75
	default:
		return 0.6
	}
}

// DefaultModel returns the configured model, or picks the first available
// one from the server when the configuration is empty.
func (s *Synthesizer) DefaultModel(ctx context.Context) (string, error) {
	if s.model != "" {
		return s.model, nil
	}
	models, err := s.client.ListModels(ctx)
	if err != nil {
		return "", err
	}
	if len(models) == 0 {
		return "", fmt.Errorf("no models available on the ollama server")
	}
	s.model = models[0].Name
	return s.model, nil
}
