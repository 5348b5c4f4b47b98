package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestAlgoView_ExecutedQuantity(t *testing.T) {
	t.Run("Sum Of Requested Quantities", func(t *testing.T) {
		view := AlgoView{
			ChildOrders: []ChildOrder{
				{ID: "c-1", Side: SideBuy, Price: 98, Quantity: 100, State: StateActive},
				{ID: "c-2", Side: SideBuy, Price: 95, Quantity: 200, FilledQuantity: 50, State: StatePartiallyFilled},
				{ID: "c-3", Side: SideSell, Price: 100, Quantity: 300, State: StateCancelled},
			},
		}
		// Requested quantity counts, fill progress and terminal state do not.
		if got := view.ExecutedQuantity(); got != 600 {
			t.Errorf("Expected 600, got %d", got)
		}
	})

	t.Run("Empty View", func(t *testing.T) {
		view := AlgoView{}
		if got := view.ExecutedQuantity(); got != 0 {
			t.Errorf("Expected 0, got %d", got)
		}
	})
}

func TestAlgoView_ActiveChildOrders(t *testing.T) {
	view := AlgoView{
		ChildOrders: []ChildOrder{
			{ID: "c-1", Side: SideBuy, State: StateActive},
			{ID: "c-2", Side: SideBuy, State: StateFilled},
			{ID: "c-3", Side: SideSell, State: StateCancelled},
			{ID: "c-4", Side: SideSell, State: StatePartiallyFilled},
		},
	}

	active := view.ActiveChildOrders()
	if len(active) != 2 {
		t.Fatalf("Expected 2 active orders, got %d", len(active))
	}
	if active[0].ID != "c-1" || active[1].ID != "c-4" {
		t.Errorf("Active orders should preserve placement order, got %v", active)
	}

	if got := view.ActiveCount(SideBuy); got != 1 {
		t.Errorf("Expected 1 active buy, got %d", got)
	}
	if got := view.ActiveCount(SideSell); got != 1 {
		t.Errorf("Expected 1 active sell, got %d", got)
	}
}

func TestAlgoView_AverageBuyFillPrice(t *testing.T) {
	t.Run("Fill Weighted Average", func(t *testing.T) {
		view := AlgoView{
			ChildOrders: []ChildOrder{
				{ID: "c-1", Side: SideBuy, Price: 100, Quantity: 100, FilledQuantity: 100, State: StateFilled},
				{ID: "c-2", Side: SideBuy, Price: 90, Quantity: 300, FilledQuantity: 300, State: StateFilled},
				{ID: "c-3", Side: SideSell, Price: 200, Quantity: 100, FilledQuantity: 100, State: StateFilled},
			},
		}
		// (100*100 + 90*300) / 400 = 92.5
		want := decimal.RequireFromString("92.5")
		if got := view.AverageBuyFillPrice(); !got.Equal(want) {
			t.Errorf("Expected %s, got %s", want, got)
		}
	})

	t.Run("Safety: No Fills", func(t *testing.T) {
		view := AlgoView{
			ChildOrders: []ChildOrder{
				{ID: "c-1", Side: SideBuy, Price: 100, Quantity: 100, State: StateActive},
			},
		}
		if got := view.AverageBuyFillPrice(); !got.IsZero() {
			t.Errorf("Expected zero average without fills, got %s", got)
		}
	})
}

func TestBookSnapshot_LevelAccess(t *testing.T) {
	book := BookSnapshot{
		Bids: []PriceLevel{{Price: 98, Quantity: 100}, {Price: 95, Quantity: 200}},
		Asks: []PriceLevel{{Price: 100, Quantity: 101}},
	}

	best, ok := book.BidAt(0)
	if !ok || best.Price != 98 {
		t.Errorf("Expected best bid 98, got %v (ok=%v)", best, ok)
	}
	if _, ok := book.BidAt(2); ok {
		t.Error("Depth beyond book should report absent")
	}
	if _, ok := book.AskAt(-1); ok {
		t.Error("Negative depth should report absent")
	}
}

func TestOrderState_Terminal(t *testing.T) {
	cases := []struct {
		state    OrderState
		terminal bool
	}{
		{StatePending, false},
		{StateActive, false},
		{StatePartiallyFilled, false},
		{StateFilled, true},
		{StateCancelled, true},
	}

	for _, tc := range cases {
		if got := tc.state.IsTerminal(); got != tc.terminal {
			t.Errorf("%s: expected terminal=%v, got %v", tc.state, tc.terminal, got)
		}
		o := ChildOrder{State: tc.state}
		if o.IsOpen() == tc.terminal {
			t.Errorf("%s: IsOpen should be inverse of terminal", tc.state)
		}
	}
}
