package backtest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Shida18719/trading-algo-assessment/internal/engine"
	"github.com/Shida18719/trading-algo-assessment/internal/infra/storage"
)

// Replayer reads the recorded event log and feeds it into a Sequencer.
// Replay is synchronous and deterministic: the same log always produces
// the same child-order state, because the decision engine derives
// everything from the events themselves.
type Replayer struct {
	store *storage.EventStore
}

// NewReplayer opens the event log at the given path.
func NewReplayer(dbPath string) (*Replayer, error) {
	store, err := storage.NewEventStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}
	return &Replayer{store: store}, nil
}

// RunReplay replays all events into the provided sequencer.
func (r *Replayer) RunReplay(ctx context.Context, seq *engine.Sequencer) error {
	events, err := r.store.LoadAll(ctx)
	if err != nil {
		return err
	}

	slog.Info("Replaying event log", slog.Int("events", len(events)))

	for _, ev := range events {
		// Feed into sequencer synchronously for deterministic replay.
		seq.ReplayEvent(ev)
	}

	return nil
}
