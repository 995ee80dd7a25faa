package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/movihq/movi/internal/transport"
)

const WriteToolName = "execute_sql_write"

// SQLWriteTool executes a mutation against the transport database. The
// orchestrator only invokes it with a previously confirmed (or
// inconsequential) pending action; it is never handed to the interpreter
// for direct execution.
type SQLWriteTool struct {
	Executor transport.Executor
}

func NewSQLWriteTool(exec transport.Executor) *SQLWriteTool {
	return &SQLWriteTool{Executor: exec}
}

func (s *SQLWriteTool) Name() string {
	return WriteToolName
}

func (s *SQLWriteTool) Description() string {
	return "Execute a SQL INSERT, UPDATE, or DELETE query on the transport database. " +
		"This will actually modify live operational data."
}

func (s *SQLWriteTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"sql_query": map[string]any{
				"type":        "string",
				"description": "A valid SQL INSERT/UPDATE/DELETE query",
			},
		},
		"required": []string{"sql_query"},
	}
}

func (s *SQLWriteTool) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		SQL string `json:"sql_query"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("invalid input: %v", err)
	}

	affected, err := s.Executor.Write(ctx, args.SQL)
	if err != nil {
		raw, _ := json.Marshal(map[string]string{"status": "error", "error": err.Error()})
		return string(raw), nil
	}

	raw, _ := json.Marshal(map[string]any{
		"status":        "success",
		"affected_rows": affected,
		"message":       fmt.Sprintf("Successfully modified %d row(s) in the database", affected),
	})
	return string(raw), nil
}
