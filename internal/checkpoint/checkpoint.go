package checkpoint

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound reports that no checkpoint exists for a thread id. Callers
// treat it as "new thread", never as a failure.
var ErrNotFound = errors.New("checkpoint: thread not found")

// Store persists thread state keyed by thread id. Save must be atomic
// per thread: a concurrent save for the same id must not interleave with
// a load+save producing a lost update. The serialized form must
// round-trip losslessly across process restarts.
type Store interface {
	Load(ctx context.Context, threadID string) (*ThreadState, error)
	Save(ctx context.Context, state *ThreadState) error
}

// StaleLister is implemented by stores that can enumerate threads stuck
// in AwaitingConfirmation since before a cutoff. Used by the expiry
// reaper; optional.
type StaleLister interface {
	StaleAwaiting(ctx context.Context, before time.Time) ([]string, error)
}
