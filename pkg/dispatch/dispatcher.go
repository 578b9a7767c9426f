// Package dispatch fans a webhook batch out to concurrent turns.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/uranai/internal/logging"
	"github.com/aretw0/uranai/pkg/domain"
)

// Handler runs a single event. *turn.Orchestrator satisfies it.
type Handler interface {
	Handle(ctx context.Context, ev domain.Event) domain.Outcome
}

// Dispatcher runs every event of a batch in its own goroutine and joins them.
// No ordering is guaranteed between events, including events of the same user.
type Dispatcher struct {
	handler Handler
	limit   int
	logger  *slog.Logger
}

type Option func(*Dispatcher)

// WithConcurrencyLimit bounds the number of turns in flight per batch. Zero means unbounded.
func WithConcurrencyLimit(n int) Option {
	return func(d *Dispatcher) {
		d.limit = n
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

func New(handler Handler, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		handler: handler,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch returns one outcome per event, at the same index.
// A failing or panicking event never affects its siblings.
func (d *Dispatcher) Dispatch(ctx context.Context, events []domain.Event) []domain.Outcome {
	outcomes := make([]domain.Outcome, len(events))

	var sem chan struct{}
	if d.limit > 0 {
		sem = make(chan struct{}, d.limit)
	}

	var wg sync.WaitGroup
	for i, ev := range events {
		if ev.UserID == "" {
			d.logger.Debug("Skipping event without user", "event_id", ev.ID, "event_type", string(ev.Type))
			outcomes[i] = domain.Outcome{EventID: ev.ID, Status: domain.OutcomeSkipped}
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}
			outcomes[i] = d.run(ctx, ev)
		}()
	}
	wg.Wait()

	return outcomes
}

func (d *Dispatcher) run(ctx context.Context, ev domain.Event) (out domain.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Event handler panicked", "event_id", ev.ID, "user_id", ev.UserID, "panic", r)
			out = domain.Outcome{
				EventID: ev.ID,
				UserID:  ev.UserID,
				Status:  domain.OutcomeFailed,
				Err:     fmt.Errorf("handler panicked: %v", r),
			}
		}
	}()
	return d.handler.Handle(ctx, ev)
}

// Summary counts outcomes by status.
func Summary(outcomes []domain.Outcome) map[domain.OutcomeStatus]int {
	counts := make(map[domain.OutcomeStatus]int, 3)
	for _, o := range outcomes {
		counts[o.Status]++
	}
	return counts
}
