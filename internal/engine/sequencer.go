package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/Shida18719/trading-algo-assessment/internal/algo"
	"github.com/Shida18719/trading-algo-assessment/internal/domain"
	"github.com/Shida18719/trading-algo-assessment/internal/event"
	"github.com/Shida18719/trading-algo-assessment/internal/execution"
	"github.com/Shida18719/trading-algo-assessment/internal/infra"
	"github.com/Shida18719/trading-algo-assessment/internal/infra/storage"
)

// Sequencer is the core single-threaded event processor. It owns the
// child-order list and the current book snapshot; the decision engine
// only ever sees a read-only view of them. One evaluation per inbound
// book update, one instruction applied per evaluation.
type Sequencer struct {
	inbox       chan event.Event
	book        domain.BookSnapshot
	orders      []domain.ChildOrder
	orderIndex  map[string]int // order ID -> index into orders
	nextSeq     uint64
	nextOrderID uint64
	store       *storage.EventStore

	// Fills reported by the execution venue during dispatch. Drained,
	// stamped and applied by the sequencer itself after the triggering
	// event, so fill producers never compete for sequence numbers.
	pendingFills []execution.Fill

	algo   *algo.Engine
	intent domain.ParentIntent
	exec   execution.Execution

	// Boundary: used to notify the simulated venue or other systems
	// after each event is applied.
	onStateUpdate func(*domain.AlgoView)

	mu sync.RWMutex // Used only for external reads (e.g. replay tooling)
}

// NewSequencer creates a new sequencer instance.
func NewSequencer(inboxSize int, store *storage.EventStore, decision *algo.Engine, intent domain.ParentIntent, exec execution.Execution, onUpdate func(*domain.AlgoView)) *Sequencer {
	return &Sequencer{
		inbox:         make(chan event.Event, inboxSize),
		orderIndex:    make(map[string]int),
		nextSeq:       1,
		nextOrderID:   1,
		store:         store,
		algo:          decision,
		intent:        intent,
		exec:          exec,
		onStateUpdate: onUpdate,
	}
}

// Inbox returns the event channel. External workers send events here.
func (s *Sequencer) Inbox() chan<- event.Event {
	return s.inbox
}

// Run starts the main event loop. This MUST be run in a single goroutine.
func (s *Sequencer) Run(ctx context.Context) {
	slog.Info("Sequencer started (Single-Thread Hotpath)")

	defer func() {
		if r := recover(); r != nil {
			slog.Error("CRITICAL_PANIC_DETECTED", slog.Any("panic", r))
			s.DumpState("panic_dump.json")
			panic(fmt.Sprintf("HALTED: %v", r))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Sequencer stopping...")
			return
		case ev := <-s.inbox:
			s.processEvent(ev)
		}
	}
}

func (s *Sequencer) processEvent(ev event.Event) {
	start := time.Now()

	// 1. Sequence stamping. The sequencer is the single allocator: live
	// producers send unstamped events (seq zero) and receive their number
	// here, in arrival order. Pre-stamped events must match exactly (Halt
	// Policy): a gap means the log or a producer is corrupt.
	if ev.GetSeq() == 0 {
		ev.SetSeq(s.nextSeq)
	} else if ev.GetSeq() != s.nextSeq {
		panic(fmt.Sprintf("SEQUENCE_GAP_DETECTED: expected %d, got %d", s.nextSeq, ev.GetSeq()))
	}

	// 2. WAL-first: Persistence
	if s.store != nil {
		if err := s.store.SaveEvent(context.Background(), ev); err != nil {
			panic(fmt.Sprintf("PERSISTENCE_FAILURE: %v", err))
		}
	}

	s.dispatch(ev)

	// Increment Sequence
	s.nextSeq++

	releaseEvent(ev)

	s.drainFills()

	infra.GlobalMetrics.RecordEvent(time.Since(start).Nanoseconds())
}

// QueueFill records a fill reported by the execution venue. Venue
// callbacks run on the sequencer goroutine (inside dispatch), so the
// queue needs no locking; drainFills applies the entries immediately
// after the triggering event.
func (s *Sequencer) QueueFill(f execution.Fill) {
	s.pendingFills = append(s.pendingFills, f)
}

// drainFills turns queued fills into stamped, persisted OrderFillEvents
// and applies them in order. Applying a fill may queue further fills;
// the loop runs until the queue is empty.
func (s *Sequencer) drainFills() {
	for i := 0; i < len(s.pendingFills); i++ {
		f := s.pendingFills[i]

		ev := event.AcquireOrderFillEvent()
		ev.Seq = s.nextSeq
		ev.Ts = f.TsUnixMicros
		ev.OrderID = f.OrderID
		ev.Price = f.Price
		ev.Qty = f.Qty

		if s.store != nil {
			if err := s.store.SaveEvent(context.Background(), ev); err != nil {
				panic(fmt.Sprintf("PERSISTENCE_FAILURE: %v", err))
			}
		}

		s.dispatch(ev)
		s.nextSeq++
		event.ReleaseOrderFillEvent(ev)
	}
	s.pendingFills = s.pendingFills[:0]
}

// releaseEvent returns pooled events to their pools once applied.
func releaseEvent(ev event.Event) {
	switch e := ev.(type) {
	case *event.BookUpdateEvent:
		event.ReleaseBookUpdateEvent(e)
	case *event.OrderFillEvent:
		event.ReleaseOrderFillEvent(e)
	}
}

// ReplayEvent processes an event synchronously without WAL logging.
// This is used exclusively by the Replayer.
func (s *Sequencer) ReplayEvent(ev event.Event) {
	// Replay must still respect sequence order
	if ev.GetSeq() != s.nextSeq {
		panic(fmt.Sprintf("REPLAY_GAP_DETECTED: expected %d, got %d", s.nextSeq, ev.GetSeq()))
	}

	s.dispatch(ev)
	s.nextSeq++
}

func (s *Sequencer) dispatch(ev event.Event) {
	switch e := ev.(type) {
	case *event.BookUpdateEvent:
		s.handleBookUpdate(e)
	case *event.OrderFillEvent:
		s.handleOrderFill(e)
	default:
		slog.Warn("Unknown event type", slog.Any("type", ev.GetType()))
	}

	if s.onStateUpdate != nil {
		view := s.buildView()
		s.onStateUpdate(&view)
	}
}

func (s *Sequencer) handleBookUpdate(e *event.BookUpdateEvent) {
	// Replace the snapshot wholesale. The event may be pooled by its
	// producer, so the levels are copied out.
	s.book = domain.BookSnapshot{
		Bids: append([]domain.PriceLevel(nil), e.Bids...),
		Asks: append([]domain.PriceLevel(nil), e.Asks...),
	}

	// Invoke the decision engine (No Mutex needed here as we are in the Hotpath)
	view := s.buildView()
	instruction := s.algo.Evaluate(&view, &s.intent)
	infra.GlobalMetrics.RecordInstruction(instruction.Kind.String())

	s.applyInstruction(instruction)
}

func (s *Sequencer) applyInstruction(in algo.Instruction) {
	switch in.Kind {
	case algo.KindNoAction:
		return

	case algo.KindCreate:
		order := domain.ChildOrder{
			ID:       fmt.Sprintf("child-%d", s.nextOrderID),
			Side:     in.Side,
			Price:    in.Price,
			Quantity: in.Quantity,
			State:    domain.StateActive,
		}
		s.nextOrderID++
		s.orderIndex[order.ID] = len(s.orders)
		s.orders = append(s.orders, order)

		slog.Info("INSTRUCTION_APPLIED",
			slog.String("instruction", in.String()),
			slog.String("order_id", order.ID))

		if s.exec != nil {
			if err := s.exec.SubmitOrder(context.Background(), order); err != nil {
				slog.Error("Order submission failed", slog.String("id", order.ID), slog.Any("error", err))
				infra.GlobalMetrics.RecordError()
			}
		}

	case algo.KindCancel:
		idx, ok := s.orderIndex[in.OrderID]
		if !ok {
			slog.Error("Cancel for unknown order", slog.String("id", in.OrderID))
			infra.GlobalMetrics.RecordError()
			return
		}
		order := &s.orders[idx]
		if order.State.IsTerminal() {
			slog.Warn("Cancel ignored for terminal order", slog.String("id", in.OrderID))
			return
		}
		order.State = domain.StateCancelled

		slog.Info("INSTRUCTION_APPLIED", slog.String("instruction", in.String()))

		if s.exec != nil {
			if err := s.exec.CancelOrder(context.Background(), in.OrderID); err != nil {
				slog.Error("Order cancel failed", slog.String("id", in.OrderID), slog.Any("error", err))
				infra.GlobalMetrics.RecordError()
			}
		}
	}
}

func (s *Sequencer) handleOrderFill(e *event.OrderFillEvent) {
	idx, ok := s.orderIndex[e.OrderID]
	if !ok {
		slog.Error("Fill for unknown order",
			slog.String("id", e.OrderID), slog.Any("error", domain.ErrUnknownOrder))
		infra.GlobalMetrics.RecordError()
		return
	}

	order := &s.orders[idx]
	order.FilledQuantity += e.Qty
	if order.FilledQuantity >= order.Quantity {
		order.FilledQuantity = order.Quantity
		order.State = domain.StateFilled
		infra.GlobalMetrics.RecordOrderFilled()
	} else if order.FilledQuantity > 0 && !order.State.IsTerminal() {
		order.State = domain.StatePartiallyFilled
	}

	slog.Info("ORDER_FILL",
		slog.String("id", order.ID),
		slog.Int64("fill_qty", e.Qty),
		slog.Int64("filled", order.FilledQuantity),
		slog.String("state", string(order.State)))
}

func (s *Sequencer) buildView() domain.AlgoView {
	return domain.AlgoView{
		Book:        s.book,
		ChildOrders: s.orders,
	}
}

// View returns a copy of the current algo view (external read).
func (s *Sequencer) View() domain.AlgoView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.AlgoView{
		Book: domain.BookSnapshot{
			Bids: append([]domain.PriceLevel(nil), s.book.Bids...),
			Asks: append([]domain.PriceLevel(nil), s.book.Asks...),
		},
		ChildOrders: append([]domain.ChildOrder(nil), s.orders...),
	}
}

// DumpState writes the entire internal state to a file (for post-mortem).
func (s *Sequencer) DumpState(filename string) {
	slog.Info("Dumping internal state...", slog.String("file", filename))

	data := struct {
		NextSeq uint64              `json:"next_seq"`
		Book    domain.BookSnapshot `json:"book"`
		Orders  []domain.ChildOrder `json:"orders"`
	}{
		NextSeq: s.nextSeq,
		Book:    s.book,
		Orders:  s.orders,
	}

	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		slog.Error("Failed to marshal state", slog.Any("error", err))
		return
	}

	err = os.WriteFile(filename, b, 0644)
	if err != nil {
		slog.Error("Failed to write state dump", slog.Any("error", err))
	}
}
