package interpreter

import (
	"context"
	"testing"

	"github.com/movihq/movi/internal/checkpoint"
	"github.com/movihq/movi/internal/tools"
	"github.com/movihq/movi/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// scriptedModel returns a fixed response for every call.
type scriptedModel struct {
	content   string
	toolCalls []llms.ToolCall
}

func (m *scriptedModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{
			{Content: m.content, ToolCalls: m.toolCalls},
		},
	}, nil
}

func (m *scriptedModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return m.content, nil
}

type nopExecutor struct{}

func (nopExecutor) Query(ctx context.Context, statement string) (transport.Rows, error) {
	return nil, nil
}

func (nopExecutor) Write(ctx context.Context, statement string) (int64, error) {
	return 0, nil
}

func newInterpreter(model llms.Model) *LLMInterpreter {
	registry := tools.NewRegistry()
	registry.Register(tools.NewSQLQueryTool(nopExecutor{}))
	registry.Register(tools.NewSQLWriteTool(nopExecutor{}))
	return NewLLMInterpreter(model, registry, NewPromptManager(""))
}

func stateWithTurn(text string) *checkpoint.ThreadState {
	state := checkpoint.NewThreadState("t1", "busDashboard")
	state.Append(checkpoint.RoleUser, text)
	return state
}

func toolCall(name, args string) llms.ToolCall {
	return llms.ToolCall{
		ID:   "call-1",
		Type: "function",
		FunctionCall: &llms.FunctionCall{
			Name:      name,
			Arguments: args,
		},
	}
}

func TestClassifyIntent_QueryToolCallBecomesRead(t *testing.T) {
	model := &scriptedModel{
		toolCalls: []llms.ToolCall{toolCall(tools.QueryToolName, `{"sql_query": "SELECT * FROM Vehicles"}`)},
	}

	intent, err := newInterpreter(model).ClassifyIntent(context.Background(), stateWithTurn("show me all vehicles"))
	require.NoError(t, err)
	assert.Equal(t, IntentRead, intent.Kind)
	assert.Equal(t, "SELECT * FROM Vehicles", intent.ReadSQL)
}

func TestClassifyIntent_WriteToolCallBecomesProposal(t *testing.T) {
	model := &scriptedModel{
		toolCalls: []llms.ToolCall{toolCall(tools.WriteToolName, `{"sql_query": "DELETE FROM Vehicles WHERE vehicle_id = 'V001'"}`)},
	}

	intent, err := newInterpreter(model).ClassifyIntent(context.Background(), stateWithTurn("remove vehicle V001"))
	require.NoError(t, err)
	assert.Equal(t, IntentWrite, intent.Kind)
	// The statement is a hint for analysis, never directly executed.
	assert.Equal(t, "DELETE FROM Vehicles WHERE vehicle_id = 'V001'", intent.WriteHint)
}

func TestClassifyIntent_ConsequencePhraseRoutesToWrite(t *testing.T) {
	model := &scriptedModel{
		content: "I understand you want to remove vehicle V001. Let me check if there are any consequences first.",
	}

	intent, err := newInterpreter(model).ClassifyIntent(context.Background(), stateWithTurn("remove vehicle V001"))
	require.NoError(t, err)
	assert.Equal(t, IntentWrite, intent.Kind)
	assert.Empty(t, intent.WriteHint)
}

func TestClassifyIntent_PlainTextBecomesAnswer(t *testing.T) {
	model := &scriptedModel{content: "There are 8 vehicles in the fleet."}

	intent, err := newInterpreter(model).ClassifyIntent(context.Background(), stateWithTurn("how many vehicles?"))
	require.NoError(t, err)
	assert.Equal(t, IntentAnswer, intent.Kind)
	assert.Equal(t, "There are 8 vehicles in the fleet.", intent.Answer)
}

func TestClassifyIntent_EmptyToolArgsFallThrough(t *testing.T) {
	// A tool call without sql_query is skipped, not treated as a read.
	model := &scriptedModel{
		content:   "Let me look that up.",
		toolCalls: []llms.ToolCall{toolCall(tools.QueryToolName, `{}`)},
	}

	intent, err := newInterpreter(model).ClassifyIntent(context.Background(), stateWithTurn("show trips"))
	require.NoError(t, err)
	assert.Equal(t, IntentAnswer, intent.Kind)
}

func TestAnalyzeWrite_ParsesStructuredDecision(t *testing.T) {
	model := &scriptedModel{
		content: "```json\n{\"is_write_operation\": true, \"has_consequences\": true, \"sql_query\": \"UPDATE Deployments SET vehicle_id = NULL WHERE vehicle_id = 'V007'\", \"reasoning\": \"trips depend on it\"}\n```",
	}

	analysis, err := newInterpreter(model).AnalyzeWrite(context.Background(), stateWithTurn("remove vehicle V007"))
	require.NoError(t, err)
	assert.True(t, analysis.IsWrite)
	assert.True(t, analysis.HasConsequences)
	assert.Contains(t, analysis.SQL, "UPDATE Deployments")
}

func TestAnalyzeWrite_MalformedOutputIsError(t *testing.T) {
	model := &scriptedModel{content: "Sorry, I can't help with that."}

	_, err := newInterpreter(model).AnalyzeWrite(context.Background(), stateWithTurn("remove vehicle V007"))
	require.ErrorIs(t, err, ErrMalformedOutput)
}

func TestPlanConsequenceChecks_CollectsQueryCalls(t *testing.T) {
	model := &scriptedModel{
		toolCalls: []llms.ToolCall{
			toolCall(tools.QueryToolName, `{"sql_query": "SELECT * FROM Deployments WHERE vehicle_id = 'V007'"}`),
			toolCall(tools.WriteToolName, `{"sql_query": "DELETE FROM Vehicles"}`),
		},
	}

	queries, err := newInterpreter(model).PlanConsequenceChecks(context.Background(), stateWithTurn("remove vehicle V007"), "UPDATE Deployments SET vehicle_id = NULL")
	require.NoError(t, err)
	// The write call is ignored: only reads come out of planning.
	require.Len(t, queries, 1)
	assert.Contains(t, queries[0], "SELECT")
}

func TestTurnsToMessages_CapsHistory(t *testing.T) {
	state := checkpoint.NewThreadState("t1", "")
	for i := 0; i < historyLimit+5; i++ {
		state.Append(checkpoint.RoleUser, "turn")
	}

	messages := turnsToMessages(state)
	assert.Len(t, messages, historyLimit)
}
