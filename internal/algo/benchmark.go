package algo

import (
	"github.com/shopspring/decimal"

	"github.com/Shida18719/trading-algo-assessment/internal/domain"
	"github.com/Shida18719/trading-algo-assessment/pkg/safe"
)

// Benchmark computes the volume-weighted average price over the given
// levels: sum(price*quantity) / sum(quantity). Levels must be pre-sorted
// by the caller; order is otherwise irrelevant to the result.
//
// Returns decimal.Zero when total volume is zero (empty or all-absent
// levels). Downstream gates must treat zero as "no valid benchmark",
// never as a price. Pure and deterministic; safe to call repeatedly
// within one decision cycle.
func Benchmark(levels []domain.PriceLevel) decimal.Decimal {
	var notional, volume int64
	for _, lv := range levels {
		if lv.Quantity <= 0 {
			continue
		}
		notional = safe.SafeAdd(notional, safe.SafeMul(lv.Price, lv.Quantity))
		volume = safe.SafeAdd(volume, lv.Quantity)
	}
	if volume == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(notional).Div(decimal.NewFromInt(volume))
}
