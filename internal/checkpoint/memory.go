package checkpoint

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// MemoryStore is an in-process Store for tests and ephemeral deployments.
// State is copied through JSON on both paths so callers never share
// memory with the store, matching the durable implementation's behavior.
type MemoryStore struct {
	mu      sync.RWMutex
	threads map[string][]byte
	updated map[string]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		threads: make(map[string][]byte),
		updated: make(map[string]time.Time),
	}
}

func (m *MemoryStore) Load(ctx context.Context, threadID string) (*ThreadState, error) {
	m.mu.RLock()
	raw, ok := m.threads[threadID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	var state ThreadState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (m *MemoryStore) Save(ctx context.Context, state *ThreadState) error {
	state.UpdatedAt = time.Now()
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.threads[state.ThreadID] = raw
	m.updated[state.ThreadID] = state.UpdatedAt
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) StaleAwaiting(ctx context.Context, before time.Time) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ids []string
	for id, raw := range m.threads {
		if !m.updated[id].Before(before) {
			continue
		}
		var state ThreadState
		if err := json.Unmarshal(raw, &state); err != nil {
			continue
		}
		if state.AwaitingConfirmation {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
