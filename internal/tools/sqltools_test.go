package tools

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/movihq/movi/internal/transport"
)

type stubExecutor struct {
	rows     transport.Rows
	affected int64
	err      error
}

func (s *stubExecutor) Query(ctx context.Context, statement string) (transport.Rows, error) {
	return s.rows, s.err
}

func (s *stubExecutor) Write(ctx context.Context, statement string) (int64, error) {
	return s.affected, s.err
}

func TestSQLQueryTool_Execute(t *testing.T) {
	tool := NewSQLQueryTool(&stubExecutor{rows: transport.Rows{{"vehicle_id": "V001"}}})

	out, err := tool.Execute(context.Background(), `{"sql_query": "SELECT * FROM Vehicles"}`)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(out, `"status":"success"`) {
		t.Errorf("Expected success envelope, got %s", out)
	}
	if !strings.Contains(out, "V001") {
		t.Errorf("Row missing from output: %s", out)
	}
}

func TestSQLQueryTool_DatabaseErrorIsToolOutput(t *testing.T) {
	tool := NewSQLQueryTool(&stubExecutor{err: errors.New("no such table: Busses")})

	// Database errors go back to the interpreter as content, not as a
	// Go error, so the conversation can recover.
	out, err := tool.Execute(context.Background(), `{"sql_query": "SELECT * FROM Busses"}`)
	if err != nil {
		t.Fatalf("Execute returned Go error: %v", err)
	}
	if !strings.Contains(out, `"status":"error"`) {
		t.Errorf("Expected error envelope, got %s", out)
	}
}

func TestSQLQueryTool_RejectsMalformedInput(t *testing.T) {
	tool := NewSQLQueryTool(&stubExecutor{})
	if _, err := tool.Execute(context.Background(), "not json"); err == nil {
		t.Error("Expected error for malformed input")
	}
}

func TestSQLWriteTool_Execute(t *testing.T) {
	tool := NewSQLWriteTool(&stubExecutor{affected: 3})

	out, err := tool.Execute(context.Background(), `{"sql_query": "UPDATE Routes SET status = 'active'"}`)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	var envelope struct {
		Status       string `json:"status"`
		AffectedRows int64  `json:"affected_rows"`
		Message      string `json:"message"`
	}
	if err := json.Unmarshal([]byte(out), &envelope); err != nil {
		t.Fatalf("Output not parseable: %v", err)
	}
	if envelope.Status != "success" || envelope.AffectedRows != 3 {
		t.Errorf("Unexpected envelope: %+v", envelope)
	}
	if !strings.Contains(envelope.Message, "3 row(s)") {
		t.Errorf("Unexpected message: %s", envelope.Message)
	}
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	tool := NewSQLQueryTool(&stubExecutor{})
	registry.Register(tool)

	if got := registry.Get(QueryToolName); got != tool {
		t.Error("Registry did not return the registered tool")
	}
	if got := registry.Get("unknown"); got != nil {
		t.Error("Expected nil for unknown tool")
	}
}
