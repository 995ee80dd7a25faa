package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/movihq/movi/internal/transport"
)

const QueryToolName = "execute_sql_query"

// SQLQueryTool runs read-only statements against the transport database
// and returns results as JSON for the interpreter to reason over.
type SQLQueryTool struct {
	Executor transport.Executor
}

func NewSQLQueryTool(exec transport.Executor) *SQLQueryTool {
	return &SQLQueryTool{Executor: exec}
}

func (s *SQLQueryTool) Name() string {
	return QueryToolName
}

func (s *SQLQueryTool) Description() string {
	return "Execute a SQL SELECT query on the transport database and return results as JSON. " +
		"Tables: Stops, Paths, Routes, Vehicles, Drivers, DailyTrips, Deployments."
}

func (s *SQLQueryTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"sql_query": map[string]any{
				"type":        "string",
				"description": "A valid SQL SELECT query",
			},
		},
		"required": []string{"sql_query"},
	}
}

func (s *SQLQueryTool) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		SQL string `json:"sql_query"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("invalid input: %v", err)
	}

	rows, err := s.Executor.Query(ctx, args.SQL)
	if err != nil {
		raw, _ := json.Marshal(map[string]string{"status": "error", "error": err.Error()})
		return string(raw), nil
	}
	return rows.JSON(), nil
}
