package execution

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Shida18719/trading-algo-assessment/internal/domain"
)

// Fill represents a simulated execution against a resting child order.
type Fill struct {
	OrderID      string
	Side         domain.Side
	Price        int64
	Qty          int64
	TsUnixMicros int64
}

// PaperExecution simulates a venue: child orders rest here, and each
// incoming book snapshot is matched against them. A resting buy fills
// when the best ask trades through its price; a resting sell fills when
// the best bid reaches its price. At most one fill per order per tick.
//
// This is used for strategy backtesting and pre-production validation.
type PaperExecution struct {
	mu      sync.Mutex
	resting map[string]*domain.ChildOrder
	fills   []Fill

	// Boundary: the sequencer wires this to feed fills back into its inbox.
	onFill func(Fill)
}

// NewPaperExecution creates a new paper trading executor.
func NewPaperExecution(onFill func(Fill)) *PaperExecution {
	return &PaperExecution{
		resting: make(map[string]*domain.ChildOrder),
		onFill:  onFill,
	}
}

// SubmitOrder rests the order on the simulated venue.
func (p *PaperExecution) SubmitOrder(ctx context.Context, order domain.ChildOrder) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.resting[order.ID]; exists {
		return fmt.Errorf("duplicate order id: %s", order.ID)
	}
	o := order // copy; the caller keeps its own state
	o.State = domain.StateActive
	p.resting[order.ID] = &o

	slog.Info("PAPER EXECUTION: Order Resting",
		slog.String("id", o.ID),
		slog.String("side", string(o.Side)),
		slog.Int64("price", o.Price),
		slog.Int64("qty", o.Quantity))
	return nil
}

// CancelOrder removes an unfilled order from the venue.
func (p *PaperExecution) CancelOrder(ctx context.Context, orderID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	order, ok := p.resting[orderID]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownOrder, orderID)
	}
	if order.State == domain.StateFilled {
		return fmt.Errorf("cannot cancel filled order: %s", orderID)
	}

	delete(p.resting, orderID)
	slog.Info("PAPER EXECUTION: Order Cancelled", slog.String("id", orderID))
	return nil
}

// OnBookUpdate matches resting orders against the new snapshot and
// reports any fills through the onFill callback.
func (p *PaperExecution) OnBookUpdate(book *domain.BookSnapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	bestBid, hasBid := book.BidAt(0)
	bestAsk, hasAsk := book.AskAt(0)

	for id, order := range p.resting {
		remaining := order.Quantity - order.FilledQuantity
		if remaining <= 0 {
			continue
		}

		var execPrice, execQty int64
		switch order.Side {
		case domain.SideBuy:
			if !hasAsk || bestAsk.Price > order.Price {
				continue
			}
			execPrice = bestAsk.Price
			execQty = minInt64(bestAsk.Quantity, remaining)
		case domain.SideSell:
			if !hasBid || bestBid.Price < order.Price {
				continue
			}
			execPrice = bestBid.Price
			execQty = minInt64(bestBid.Quantity, remaining)
		}
		if execQty <= 0 {
			continue
		}

		order.FilledQuantity += execQty
		if order.FilledQuantity == order.Quantity {
			order.State = domain.StateFilled
			delete(p.resting, id)
		} else {
			order.State = domain.StatePartiallyFilled
		}

		fill := Fill{
			OrderID:      order.ID,
			Side:         order.Side,
			Price:        execPrice,
			Qty:          execQty,
			TsUnixMicros: time.Now().UnixMicro(),
		}
		p.fills = append(p.fills, fill)

		slog.Info("PAPER EXECUTION: Order Filled",
			slog.String("id", fill.OrderID),
			slog.String("side", string(fill.Side)),
			slog.Int64("price", fill.Price),
			slog.Int64("qty", fill.Qty))

		if p.onFill != nil {
			p.onFill(fill)
		}
	}
}

// Fills returns a copy of all executed fills.
func (p *PaperExecution) Fills() []Fill {
	p.mu.Lock()
	defer p.mu.Unlock()
	result := make([]Fill, len(p.fills))
	copy(result, p.fills)
	return result
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
