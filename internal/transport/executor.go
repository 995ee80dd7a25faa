package transport

import (
	"context"
	"encoding/json"
	"fmt"
)

// Rows is a generic result set, one map per row keyed by column name.
type Rows []map[string]any

// Executor runs statements chosen by the interpreter against the
// operational store. Query is the read path, Write the mutation path;
// the orchestrator decides which one a statement is allowed to take.
type Executor interface {
	Query(ctx context.Context, statement string) (Rows, error)
	Write(ctx context.Context, statement string) (int64, error)
}

// Query executes a read statement and scans every row into a map.
func (s *Store) Query(ctx context.Context, statement string) (Rows, error) {
	rows, err := s.DB.QueryContext(ctx, statement)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out Rows
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(map[string]any, len(cols))
		for i, col := range cols {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[col] = v
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Write executes a mutation and reports the affected row count.
func (s *Store) Write(ctx context.Context, statement string) (int64, error) {
	res, err := s.DB.ExecContext(ctx, statement)
	if err != nil {
		return 0, fmt.Errorf("write failed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// JSON renders a result set the way the interpreter expects to see tool
// output: {"status", "result", "row_count"}.
func (r Rows) JSON() string {
	if len(r) == 0 {
		raw, _ := json.Marshal(map[string]any{
			"status":    "success",
			"result":    "No data found",
			"row_count": 0,
		})
		return string(raw)
	}
	raw, err := json.Marshal(map[string]any{
		"status":    "success",
		"result":    []map[string]any(r),
		"row_count": len(r),
	})
	if err != nil {
		return `{"status":"error","error":"failed to encode rows"}`
	}
	return string(raw)
}
