package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docquery/cli/internal/domain"
	"github.com/docquery/cli/internal/eval"
	"github.com/docquery/cli/internal/rag"
)

type stubPipeline struct {
	result *rag.QueryResult
	err    error
	asked  string
}

func (s *stubPipeline) Query(_ context.Context, text string, _ []string, _ rag.Filters) (*rag.QueryResult, error) {
	s.asked = text
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubPipeline) Report() eval.Report {
	return eval.Report{TotalQueries: 7, WindowSize: 7}
}

func sized(m Model) Model {
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return updated.(Model)
}

func TestEnterDispatchesQueryCommand(t *testing.T) {
	stub := &stubPipeline{result: &rag.QueryResult{Answer: domain.GeneratedAnswer{Text: "the answer"}}}
	m := sized(New(stub))
	m.input.SetValue("what grew")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	require.NotNil(t, cmd, "enter should dispatch the query as a command")
	assert.Empty(t, m.input.Value())
	assert.Equal(t, "Thinking...", m.status)
	assert.Empty(t, stub.asked, "query must not run inside Update")

	msg := cmd()
	assert.Equal(t, "what grew", stub.asked)

	updated, _ = m.Update(msg)
	m = updated.(Model)
	assert.Contains(t, m.viewport.View(), "the answer")
	assert.Contains(t, m.status, "0 sources")
}

func TestEnterIgnoresBlankInput(t *testing.T) {
	stub := &stubPipeline{}
	m := sized(New(stub))
	m.input.SetValue("   ")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Empty(t, stub.asked)
}

func TestQueryErrorShownInStatus(t *testing.T) {
	stub := &stubPipeline{err: errors.New("index offline")}
	m := sized(New(stub))
	m.input.SetValue("q")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	updated, _ = updated.(Model).Update(cmd())
	assert.Contains(t, updated.(Model).status, "index offline")
}

func TestCtrlRShowsReport(t *testing.T) {
	m := sized(New(&stubPipeline{}))
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.Contains(t, updated.(Model).viewport.View(), "total=7")
}
