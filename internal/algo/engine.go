package algo

import (
	"github.com/shopspring/decimal"

	"github.com/Shida18719/trading-algo-assessment/internal/domain"
)

// SellPolicy selects the sell-side creation strategy. Exactly one policy
// is active per engine instance; the two are never mixed in a cycle.
type SellPolicy int

const (
	// SellCrossingCheck quotes at the best bid, gated on the book not
	// being crossed (best bid <= best ask). A sanity check, not a profit
	// condition.
	SellCrossingCheck SellPolicy = iota + 1

	// SellProfitMargin quotes at the best ask, gated on the ask clearing
	// the average buy fill price by a configured margin.
	SellProfitMargin
)

// String returns the string representation of SellPolicy
func (p SellPolicy) String() string {
	switch p {
	case SellCrossingCheck:
		return "CROSSING_CHECK"
	case SellProfitMargin:
		return "PROFIT_MARGIN"
	default:
		return "UNKNOWN"
	}
}

// Config holds the engine's threshold parameters. Defaults match the
// canonical behaviour; see DefaultConfig.
type Config struct {
	// MaxChildOrders caps total child orders (any state) before the
	// engine stops creating. Exceeding the cap yields NoAction.
	MaxChildOrders int

	// MaxActivePerSide caps concurrently open orders per side.
	MaxActivePerSide int

	// BuyDeviation is the max tolerated relative deviation between a
	// resting buy price and the benchmark before cancellation.
	BuyDeviation decimal.Decimal

	// SellDeviation is the max tolerated relative deviation between a
	// resting sell price and the best bid. Tighter than the buy side
	// because a resting sell represents realized exposure.
	SellDeviation decimal.Decimal

	// ProfitMargin gates sell creation under SellProfitMargin.
	ProfitMargin decimal.Decimal
}

// DefaultConfig returns the canonical thresholds: 5-order cap, 3 active
// per side, 8% buy deviation, 3% sell deviation, 2% profit margin.
func DefaultConfig() Config {
	return Config{
		MaxChildOrders:   5,
		MaxActivePerSide: 3,
		BuyDeviation:     decimal.RequireFromString("0.08"),
		SellDeviation:    decimal.RequireFromString("0.03"),
		ProfitMargin:     decimal.RequireFromString("0.02"),
	}
}

// Engine is the decision policy: given the current view and the parent
// intent it applies guard conditions, a cancellation policy and a creation
// policy, and returns exactly one Instruction. Stateless across calls;
// everything is recomputed from the supplied view, so evaluation is
// idempotent and tolerant of the sequencer re-driving a tick.
type Engine struct {
	cfg    Config
	policy SellPolicy
}

// NewEngine creates a decision engine. Panics on non-positive caps,
// negative thresholds or an unknown sell policy: these are construction
// bugs, not runtime conditions.
func NewEngine(cfg Config, policy SellPolicy) *Engine {
	if cfg.MaxChildOrders <= 0 || cfg.MaxActivePerSide <= 0 {
		panic("algo: order caps must be positive")
	}
	if cfg.BuyDeviation.IsNegative() || cfg.SellDeviation.IsNegative() || cfg.ProfitMargin.IsNegative() {
		panic("algo: thresholds must not be negative")
	}
	if policy != SellCrossingCheck && policy != SellProfitMargin {
		panic("algo: unknown sell policy")
	}
	return &Engine{cfg: cfg, policy: policy}
}

// Evaluate runs the four guarded stages in order; the first applicable
// stage resolves the call. Anomalous inputs (absent levels, zero-volume
// benchmark, orders that must not be touched) degrade to NoAction; no
// stage returns an error or panics on book data.
func (e *Engine) Evaluate(view *domain.AlgoView, intent *domain.ParentIntent) Instruction {
	executed := view.ExecutedQuantity()

	// Stage 1: completion guard.
	if len(view.ChildOrders) > e.cfg.MaxChildOrders {
		return NoAction()
	}
	if executed >= intent.TargetQuantity {
		return NoAction()
	}
	remaining := intent.TargetQuantity - executed

	// Benchmark depth is bounded by the number of child orders already
	// placed: shallow early in execution, wider as orders accumulate.
	benchmark := Benchmark(sampleBids(view))

	// Stage 2: cancellation policy, single candidate per cycle.
	if in, resolved := e.evaluateCancel(view, benchmark); resolved {
		return in
	}

	// Stage 3: buy-side creation.
	if view.ActiveCount(domain.SideBuy) < e.cfg.MaxActivePerSide && remaining > 0 {
		return e.evaluateBuy(view, intent, benchmark, remaining)
	}

	// Stage 4: sell-side creation.
	if view.ActiveCount(domain.SideSell) < e.cfg.MaxActivePerSide && remaining > 0 {
		return e.evaluateSell(view, remaining)
	}

	return NoAction()
}

// sampleBids returns the bid levels the benchmark may consult:
// one level of depth per child order already placed.
func sampleBids(view *domain.AlgoView) []domain.PriceLevel {
	depth := len(view.ChildOrders)
	if depth > len(view.Book.Bids) {
		depth = len(view.Book.Bids)
	}
	return view.Book.Bids[:depth]
}

// evaluateCancel inspects one active child order. resolved is true when
// the stage terminates the cycle (a cancel was emitted, or the candidate
// must not be disturbed); false falls through to the creation stages.
func (e *Engine) evaluateCancel(view *domain.AlgoView, benchmark decimal.Decimal) (Instruction, bool) {
	active := view.ActiveChildOrders()
	if len(active) == 0 {
		return NoAction(), false
	}
	candidate := active[0]

	// Defensive: a filled order can never be cancelled.
	if candidate.State == domain.StateFilled {
		return NoAction(), true
	}

	// Partial fills are never disturbed, to avoid orphaning a live position.
	if candidate.FilledQuantity > 0 && candidate.FilledQuantity < candidate.Quantity {
		return NoAction(), true
	}

	switch candidate.Side {
	case domain.SideBuy:
		if candidate.FilledQuantity != 0 || !benchmark.IsPositive() {
			break // no fills to protect, or no valid benchmark
		}
		price := decimal.NewFromInt(candidate.Price)
		// A resting bid above fair value is overpaying: reprice.
		if benchmark.LessThan(price) {
			return CancelOrder(candidate.ID), true
		}
		deviation := price.Sub(benchmark).Abs().Div(benchmark)
		if deviation.GreaterThan(e.cfg.BuyDeviation) {
			return CancelOrder(candidate.ID), true
		}

	case domain.SideSell:
		bestBid, ok := view.Book.BidAt(0)
		if !ok || bestBid.Price <= 0 {
			break
		}
		bid := decimal.NewFromInt(bestBid.Price)
		deviation := decimal.NewFromInt(candidate.Price).Sub(bid).Abs().Div(bid)
		if deviation.GreaterThan(e.cfg.SellDeviation) {
			return CancelOrder(candidate.ID), true
		}
	}

	return NoAction(), false
}

func (e *Engine) evaluateBuy(view *domain.AlgoView, intent *domain.ParentIntent, benchmark decimal.Decimal, remaining int64) Instruction {
	// A zero benchmark with orders on the book means the sampled levels
	// carried no volume: no valid reference, so no trade. With no child
	// orders yet, zero levels are sampled and the gate passes vacuously
	// so that the first order can be placed.
	if len(view.ChildOrders) > 0 && benchmark.IsZero() {
		return NoAction()
	}
	if benchmark.GreaterThan(intent.TargetBenchmark) {
		return NoAction()
	}

	bestBid, ok := view.Book.BidAt(0)
	if !ok {
		return NoAction()
	}
	size := minInt64(bestBid.Quantity, remaining)
	if size <= 0 {
		return NoAction()
	}
	return CreateOrder(domain.SideBuy, size, bestBid.Price)
}

func (e *Engine) evaluateSell(view *domain.AlgoView, remaining int64) Instruction {
	switch e.policy {
	case SellCrossingCheck:
		bestBid, okBid := view.Book.BidAt(0)
		bestAsk, okAsk := view.Book.AskAt(0)
		if !okBid || !okAsk || bestBid.Price > bestAsk.Price {
			return NoAction()
		}
		size := minInt64(bestBid.Quantity, remaining)
		if size <= 0 {
			return NoAction()
		}
		return CreateOrder(domain.SideSell, size, bestBid.Price)

	case SellProfitMargin:
		avgBuy := view.AverageBuyFillPrice()
		if !avgBuy.IsPositive() {
			return NoAction() // nothing bought yet, nothing to sell at a margin
		}
		bestAsk, ok := view.Book.AskAt(0)
		if !ok {
			return NoAction()
		}
		floor := avgBuy.Mul(decimal.NewFromInt(1).Add(e.cfg.ProfitMargin))
		if decimal.NewFromInt(bestAsk.Price).LessThan(floor) {
			return NoAction()
		}
		size := minInt64(bestAsk.Quantity, remaining)
		if size <= 0 {
			return NoAction()
		}
		return CreateOrder(domain.SideSell, size, bestAsk.Price)
	}

	return NoAction()
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
