package event

import (
	"github.com/Shida18719/trading-algo-assessment/internal/domain"
)

// Type defines the type of event.
type Type uint16

const (
	EvBookUpdate Type = iota + 1
	EvOrderFill
	EvSystemHalt
)

// Event is the interface for all sequencer events.
// Live producers leave Seq zero; the sequencer is the only allocator and
// stamps events on receipt via SetSeq. Replayed events arrive pre-stamped.
type Event interface {
	GetSeq() uint64
	SetSeq(seq uint64)
	GetTs() int64
	GetType() Type
}

// BaseEvent contains common fields for all events.
// Ts is Unix microseconds.
type BaseEvent struct {
	Seq uint64 `json:"seq"`
	Ts  int64  `json:"ts"`
}

func (e *BaseEvent) GetSeq() uint64    { return e.Seq }
func (e *BaseEvent) SetSeq(seq uint64) { e.Seq = seq }
func (e *BaseEvent) GetTs() int64      { return e.Ts }

// BookUpdateEvent carries a full replacement snapshot of the visible book.
type BookUpdateEvent struct {
	BaseEvent
	Bids []domain.PriceLevel `json:"bids"`
	Asks []domain.PriceLevel `json:"asks"`
}

func (e *BookUpdateEvent) GetType() Type { return EvBookUpdate }

// OrderFillEvent reports execution progress on a child order.
// Qty is the incremental fill quantity, not the accumulated total.
type OrderFillEvent struct {
	BaseEvent
	OrderID string `json:"order_id"`
	Price   int64  `json:"price"`
	Qty     int64  `json:"qty"`
}

func (e *OrderFillEvent) GetType() Type { return EvOrderFill }
