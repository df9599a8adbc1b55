package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/docquery/cli/internal/eval"
	"github.com/docquery/cli/internal/rag"
)

// Pipeline is the TUI-facing subset of the orchestrator.
type Pipeline interface {
	Query(ctx context.Context, text string, documentIDs []string, filters rag.Filters) (*rag.QueryResult, error)
	Report() eval.Report
}

// Model is the Bubble Tea model for the interactive question session.
type Model struct {
	pipeline Pipeline
	input    textinput.Model
	viewport viewport.Model
	status   string
	ready    bool
}

// New creates a TUI model over the pipeline.
func New(pipeline Pipeline) Model {
	ti := textinput.New()
	ti.Prompt = "? "
	ti.Placeholder = "Ask a question about the ingested documents"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		pipeline: pipeline,
		input:    ti,
		viewport: vp,
		status:   "Ready. Enter asks, ctrl+r shows the report, ctrl+c quits.",
	}
}

// Run starts the interactive session.
func Run(pipeline Pipeline) error {
	_, err := tea.NewProgram(New(pipeline), tea.WithAltScreen()).Run()
	return err
}

// Init initializes the model.
func (m Model) Init() tea.Cmd { return textinput.Blink }

type answerMsg struct{ result *rag.QueryResult }

type answerErrMsg struct{ err error }

// askCmd runs the query off the update loop so the UI stays responsive
// while the answer is generated.
func askCmd(pipeline Pipeline, question string) tea.Cmd {
	return func() tea.Msg {
		result, err := pipeline.Query(context.Background(), question, nil, rag.Filters{})
		if err != nil {
			return answerErrMsg{err}
		}
		return answerMsg{result}
	}
}

// Update handles key and window events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, frameHeight := answerBoxStyle.GetFrameSize()
		height := msg.Height - frameHeight - 5
		if height < 3 {
			height = 3
		}
		m.viewport.Width = msg.Width
		m.viewport.Height = height
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD:
			return m, tea.Quit
		case tea.KeyCtrlR:
			m.viewport.SetContent(renderReport(m.pipeline.Report()))
			m.status = "Aggregate report over the recent query window."
			return m, nil
		case tea.KeyEnter:
			question := strings.TrimSpace(m.input.Value())
			if question == "" {
				return m, nil
			}
			m.input.Reset()
			m.status = "Thinking..."
			return m, askCmd(m.pipeline, question)
		}
	case answerMsg:
		m.viewport.SetContent(renderResult(msg.result))
		m.status = fmt.Sprintf("Answered in %s from %d sources.", msg.result.Latency, len(msg.result.Sources))
		return m, nil
	case answerErrMsg:
		m.status = "Error: " + msg.err.Error()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the session layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("docquery")
	answer := answerBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + answer + "\n" + input + "\n" + status
}

func renderResult(result *rag.QueryResult) string {
	var b strings.Builder
	b.WriteString(result.Answer.Text)
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("Sources"))
	b.WriteString("\n")
	if len(result.Sources) == 0 {
		b.WriteString("  (none)\n")
	}
	for i, source := range result.Sources {
		snippet := source.Content
		if len(snippet) > 120 {
			snippet = snippet[:120] + "..."
		}
		b.WriteString(fmt.Sprintf("  %d. [%s] sim=%.3f score=%.3f  %s\n",
			i+1, source.Kind, source.Similarity, source.RerankScore, snippet))
	}
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Quality"))
	b.WriteString(fmt.Sprintf("\n  relevance=%.3f faithfulness=%.3f answer_relevancy=%.3f recall=%.3f precision=%.3f\n",
		result.RelevanceScore,
		result.Metrics.Faithfulness,
		result.Metrics.AnswerRelevancy,
		result.Metrics.ContextRecall,
		result.Metrics.ContextPrecision,
	))
	return b.String()
}

func renderReport(report eval.Report) string {
	var b strings.Builder
	b.WriteString(labelStyle.Render("Aggregate report"))
	b.WriteString(fmt.Sprintf("\n  queries total=%d window=%d\n", report.TotalQueries, report.WindowSize))
	b.WriteString(fmt.Sprintf("  mean latency=%s relevance=%.3f success=%.0f%%\n",
		report.MeanLatency, report.MeanRelevance, report.SuccessRate*100))
	b.WriteString(fmt.Sprintf("  faithfulness=%.3f answer_relevancy=%.3f recall=%.3f precision=%.3f\n",
		report.MeanMetrics.Faithfulness,
		report.MeanMetrics.AnswerRelevancy,
		report.MeanMetrics.ContextRecall,
		report.MeanMetrics.ContextPrecision,
	))
	b.WriteString(fmt.Sprintf("  latency buckets: <1s=%d 1-3s=%d >=3s=%d\n",
		report.LatencyBuckets.Under1s,
		report.LatencyBuckets.OneTo3s,
		report.LatencyBuckets.Over3s,
	))
	return b.String()
}

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	answerBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	labelStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
)
