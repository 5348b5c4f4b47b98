package domain

import (
	"github.com/shopspring/decimal"

	"github.com/Shida18719/trading-algo-assessment/pkg/safe"
)

// ParentIntent defines the stopping condition and price target for the
// lifetime of one algorithm instance. Immutable after construction.
type ParentIntent struct {
	TargetQuantity  int64
	TargetBenchmark decimal.Decimal
}

// AlgoView is the aggregate the decision engine consumes each call:
// the current book snapshot plus the child orders placed so far.
// It is constructed fresh by the sequencer per tick; the engine never
// retains a reference across calls.
type AlgoView struct {
	Book        BookSnapshot
	ChildOrders []ChildOrder
}

// ExecutedQuantity is the total requested quantity over all child orders.
// It is always derived, never stored, so re-evaluating an unchanged view
// cannot double-count.
func (v *AlgoView) ExecutedQuantity() int64 {
	var total int64
	for i := range v.ChildOrders {
		total = safe.SafeAdd(total, v.ChildOrders[i].Quantity)
	}
	return total
}

// ActiveChildOrders returns the non-terminal subset, in placement order.
func (v *AlgoView) ActiveChildOrders() []ChildOrder {
	var active []ChildOrder
	for i := range v.ChildOrders {
		if v.ChildOrders[i].IsOpen() {
			active = append(active, v.ChildOrders[i])
		}
	}
	return active
}

// ActiveCount counts non-terminal child orders on one side.
func (v *AlgoView) ActiveCount(side Side) int {
	count := 0
	for i := range v.ChildOrders {
		if v.ChildOrders[i].Side == side && v.ChildOrders[i].IsOpen() {
			count++
		}
	}
	return count
}

// AverageBuyFillPrice is the fill-weighted average price over buy child
// orders that have any filled quantity. Returns decimal.Zero when nothing
// has filled yet; callers must treat that as "no valid average".
func (v *AlgoView) AverageBuyFillPrice() decimal.Decimal {
	var notional, volume int64
	for i := range v.ChildOrders {
		o := &v.ChildOrders[i]
		if o.Side != SideBuy || o.FilledQuantity <= 0 {
			continue
		}
		notional = safe.SafeAdd(notional, safe.SafeMul(o.Price, o.FilledQuantity))
		volume = safe.SafeAdd(volume, o.FilledQuantity)
	}
	if volume == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(notional).Div(decimal.NewFromInt(volume))
}
