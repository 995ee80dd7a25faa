package checkpoint

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"
)

// SQLiteStore keeps one row per thread with the full state serialized as
// JSON. The upsert makes each Save atomic for its thread.
type SQLiteStore struct {
	DB *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	schema := `CREATE TABLE IF NOT EXISTS threads (
		thread_id TEXT PRIMARY KEY,
		state TEXT NOT NULL,
		awaiting_confirmation INTEGER NOT NULL DEFAULT 0,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}

	return &SQLiteStore{DB: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context, threadID string) (*ThreadState, error) {
	var raw string
	query := `SELECT state FROM threads WHERE thread_id = ?`
	err := s.DB.QueryRowContext(ctx, query, threadID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load thread %s: %w", threadID, err)
	}

	var state ThreadState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("decode thread %s: %w", threadID, err)
	}
	return &state, nil
}

func (s *SQLiteStore) Save(ctx context.Context, state *ThreadState) error {
	state.UpdatedAt = time.Now()
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode thread %s: %w", state.ThreadID, err)
	}

	awaiting := 0
	if state.AwaitingConfirmation {
		awaiting = 1
	}

	query := `INSERT INTO threads (thread_id, state, awaiting_confirmation, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(thread_id) DO UPDATE SET
			state = excluded.state,
			awaiting_confirmation = excluded.awaiting_confirmation,
			updated_at = excluded.updated_at`
	_, err = s.DB.ExecContext(ctx, query, state.ThreadID, string(raw), awaiting, state.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save thread %s: %w", state.ThreadID, err)
	}
	return nil
}

func (s *SQLiteStore) StaleAwaiting(ctx context.Context, before time.Time) ([]string, error) {
	query := `SELECT thread_id FROM threads WHERE awaiting_confirmation = 1 AND updated_at < ?`
	rows, err := s.DB.QueryContext(ctx, query, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.DB.Close()
}
