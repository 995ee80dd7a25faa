package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/movihq/movi/internal/checkpoint"
)

// Notifier delivers an unsolicited message to a thread's owner, for
// confirmations that lapse while nobody is talking to us.
type Notifier interface {
	Send(threadID, text string) error
}

// Expire resolves a suspended confirmation as if the user had declined.
// It is a no-op for threads that are not awaiting confirmation.
func (o *Orchestrator) Expire(ctx context.Context, threadID string) error {
	unlock := o.locks.Lock(threadID)
	defer unlock()

	state, err := o.Checkpoints.Load(ctx, threadID)
	if errors.Is(err, checkpoint.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load checkpoint: %w", err)
	}
	if !state.AwaitingConfirmation {
		return nil
	}

	state.AwaitingConfirmation = false
	state.RequiresConfirmation = false
	o.logGate(threadID, "expired", state.PendingAction)
	state.PendingAction = ""
	state.ConfirmationPrompt = ""
	o.transition(state, checkpoint.StepRespondAndEnd)
	state.Append(checkpoint.RoleAssistant, msgExpired)

	if err := o.Checkpoints.Save(ctx, state); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// ExpiryReaper periodically cancels confirmations that have been
// suspended for longer than the TTL.
type ExpiryReaper struct {
	Orchestrator *Orchestrator
	Stale        checkpoint.StaleLister
	TTL          time.Duration
	Interval     time.Duration
	Notifier     Notifier
}

// Run blocks until the context is cancelled, sweeping on each tick.
func (r *ExpiryReaper) Run(ctx context.Context) {
	interval := r.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

func (r *ExpiryReaper) sweep(ctx context.Context) {
	threads, err := r.Stale.StaleAwaiting(ctx, time.Now().Add(-r.TTL))
	if err != nil {
		log.Printf("expiry sweep failed: %v", err)
		return
	}
	for _, id := range threads {
		if err := r.Orchestrator.Expire(ctx, id); err != nil {
			log.Printf("expire thread %s: %v", id, err)
			continue
		}
		if r.Notifier != nil {
			if err := r.Notifier.Send(id, msgExpired); err != nil {
				log.Printf("notify thread %s: %v", id, err)
			}
		}
	}
}
