package backtest

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Shida18719/trading-algo-assessment/internal/algo"
	"github.com/Shida18719/trading-algo-assessment/internal/domain"
	"github.com/Shida18719/trading-algo-assessment/internal/engine"
	"github.com/Shida18719/trading-algo-assessment/internal/event"
	"github.com/Shida18719/trading-algo-assessment/internal/infra/storage"
)

func TestReplay_Deterministic(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "events.db")
	ctx := context.Background()

	intent := domain.ParentIntent{
		TargetQuantity:  13000,
		TargetBenchmark: decimal.RequireFromString("108.5"),
	}
	newSequencer := func(store *storage.EventStore) *engine.Sequencer {
		decision := algo.NewEngine(algo.DefaultConfig(), algo.SellCrossingCheck)
		return engine.NewSequencer(16, store, decision, intent, nil, nil)
	}

	// Record a short session: two ticks and a fill.
	store, err := storage.NewEventStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to open event store: %v", err)
	}
	events := []event.Event{
		&event.BookUpdateEvent{
			BaseEvent: event.BaseEvent{Seq: 1, Ts: 1000},
			Bids:      []domain.PriceLevel{{Price: 98, Quantity: 100}},
			Asks:      []domain.PriceLevel{{Price: 100, Quantity: 101}},
		},
		&event.OrderFillEvent{
			BaseEvent: event.BaseEvent{Seq: 2, Ts: 2000},
			OrderID:   "child-1",
			Price:     98,
			Qty:       100,
		},
		&event.BookUpdateEvent{
			BaseEvent: event.BaseEvent{Seq: 3, Ts: 3000},
			Bids:      []domain.PriceLevel{{Price: 95, Quantity: 300}},
			Asks:      []domain.PriceLevel{{Price: 99, Quantity: 50}},
		},
	}
	for _, ev := range events {
		if err := store.SaveEvent(ctx, ev); err != nil {
			t.Fatalf("SaveEvent failed: %v", err)
		}
	}

	// Drive the log through two independent sequencers.
	replayer, err := NewReplayer(dbPath)
	if err != nil {
		t.Fatalf("NewReplayer failed: %v", err)
	}

	first := newSequencer(nil)
	if err := replayer.RunReplay(ctx, first); err != nil {
		t.Fatalf("First replay failed: %v", err)
	}

	second := newSequencer(nil)
	if err := replayer.RunReplay(ctx, second); err != nil {
		t.Fatalf("Second replay failed: %v", err)
	}

	v1, v2 := first.View(), second.View()
	if !reflect.DeepEqual(v1, v2) {
		t.Errorf("Replay must be deterministic:\nfirst:  %+v\nsecond: %+v", v1, v2)
	}

	// The first tick creates child-1; the fill completes it.
	if len(v1.ChildOrders) == 0 {
		t.Fatal("Expected child orders after replay")
	}
	if v1.ChildOrders[0].State != domain.StateFilled {
		t.Errorf("Expected child-1 FILLED after replay, got %s", v1.ChildOrders[0].State)
	}
}
