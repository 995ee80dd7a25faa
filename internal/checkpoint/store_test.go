package checkpoint

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

// storeFactories lets both implementations run the same contract tests.
func storeFactories(t *testing.T) map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemoryStore()
		},
		"sqlite": func(t *testing.T) Store {
			path := filepath.Join(t.TempDir(), "threads.db")
			store, err := NewSQLiteStore(path)
			if err != nil {
				t.Fatalf("NewSQLiteStore failed: %v", err)
			}
			t.Cleanup(func() { store.Close() })
			return store
		},
	}
}

func TestStore_SaveLoadRoundtrip(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			ctx := context.Background()

			state := NewThreadState("t1", "busDashboard")
			state.Append(RoleUser, "remove vehicle V001")
			state.Append(RoleAssistant, "Are you sure? (yes/no)")
			state.PendingAction = "DELETE FROM Vehicles WHERE vehicle_id = 'V001'"
			state.RequiresConfirmation = true
			state.AwaitingConfirmation = true
			state.ConfirmationPrompt = "Are you sure? (yes/no)"
			state.Step = StepAwaitingConfirmation

			if err := store.Save(ctx, state); err != nil {
				t.Fatalf("Save failed: %v", err)
			}

			loaded, err := store.Load(ctx, "t1")
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if loaded.Step != StepAwaitingConfirmation {
				t.Errorf("Step = %s, want %s", loaded.Step, StepAwaitingConfirmation)
			}
			if loaded.PendingAction != state.PendingAction {
				t.Errorf("PendingAction not preserved: %q", loaded.PendingAction)
			}
			if !loaded.AwaitingConfirmation {
				t.Error("AwaitingConfirmation not preserved")
			}
			if len(loaded.Turns) != 2 {
				t.Fatalf("Expected 2 turns, got %d", len(loaded.Turns))
			}
			if loaded.LastUserText() != "remove vehicle V001" {
				t.Errorf("LastUserText = %q", loaded.LastUserText())
			}
		})
	}
}

func TestStore_LoadUnknownThread(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			_, err := store.Load(context.Background(), "never-seen")
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("Expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestStore_SaveOverwrites(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			ctx := context.Background()

			state := NewThreadState("t2", "")
			state.AwaitingConfirmation = true
			if err := store.Save(ctx, state); err != nil {
				t.Fatal(err)
			}

			state.AwaitingConfirmation = false
			state.Step = StepRespondAndEnd
			if err := store.Save(ctx, state); err != nil {
				t.Fatal(err)
			}

			loaded, err := store.Load(ctx, "t2")
			if err != nil {
				t.Fatal(err)
			}
			if loaded.AwaitingConfirmation {
				t.Error("Second Save did not overwrite the first")
			}
			if loaded.Step != StepRespondAndEnd {
				t.Errorf("Step = %s, want %s", loaded.Step, StepRespondAndEnd)
			}
		})
	}
}

func TestStore_LoadReturnsCopies(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			ctx := context.Background()

			state := NewThreadState("t3", "")
			state.PendingAction = "UPDATE Routes SET status = 'inactive'"
			if err := store.Save(ctx, state); err != nil {
				t.Fatal(err)
			}

			first, err := store.Load(ctx, "t3")
			if err != nil {
				t.Fatal(err)
			}
			first.PendingAction = "mutated"

			second, err := store.Load(ctx, "t3")
			if err != nil {
				t.Fatal(err)
			}
			if second.PendingAction != "UPDATE Routes SET status = 'inactive'" {
				t.Error("Loaded state shares memory with the store")
			}
		})
	}
}

func TestStore_StaleAwaiting(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			lister, ok := store.(StaleLister)
			if !ok {
				t.Fatal("store does not implement StaleLister")
			}
			ctx := context.Background()

			suspended := NewThreadState("suspended", "")
			suspended.AwaitingConfirmation = true
			if err := store.Save(ctx, suspended); err != nil {
				t.Fatal(err)
			}

			resolved := NewThreadState("resolved", "")
			if err := store.Save(ctx, resolved); err != nil {
				t.Fatal(err)
			}

			// Everything saved so far is older than a future cutoff.
			ids, err := lister.StaleAwaiting(ctx, time.Now().Add(time.Hour))
			if err != nil {
				t.Fatalf("StaleAwaiting failed: %v", err)
			}
			if len(ids) != 1 || ids[0] != "suspended" {
				t.Errorf("StaleAwaiting = %v, want [suspended]", ids)
			}

			// Nothing is older than a cutoff in the past.
			ids, err = lister.StaleAwaiting(ctx, time.Now().Add(-time.Hour))
			if err != nil {
				t.Fatalf("StaleAwaiting failed: %v", err)
			}
			if len(ids) != 0 {
				t.Errorf("Expected no stale threads, got %v", ids)
			}
		})
	}
}
