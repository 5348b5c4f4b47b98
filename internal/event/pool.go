package event

import (
	"sync"
)

// Pools provide sync.Pool recycling for high-frequency event allocation.
// Use these to reduce GC pressure in the hotpath.
//
// Usage:
//
//	ev := AcquireBookUpdateEvent()
//	ev.Bids = append(ev.Bids, level)
//	// ... use event ...
//	ReleaseBookUpdateEvent(ev)  // Return to pool after processing
var bookUpdatePool = sync.Pool{
	New: func() interface{} {
		return &BookUpdateEvent{}
	},
}

// AcquireBookUpdateEvent gets a BookUpdateEvent from the pool.
// The returned event has zero values and must be initialized.
// Bids/Asks keep their capacity from the previous use.
func AcquireBookUpdateEvent() *BookUpdateEvent {
	return bookUpdatePool.Get().(*BookUpdateEvent)
}

// ReleaseBookUpdateEvent returns a BookUpdateEvent to the pool.
// The event is reset to zero values before being pooled.
func ReleaseBookUpdateEvent(ev *BookUpdateEvent) {
	if ev == nil {
		return
	}
	ev.Seq = 0
	ev.Ts = 0
	ev.Bids = ev.Bids[:0]
	ev.Asks = ev.Asks[:0]

	bookUpdatePool.Put(ev)
}

// OrderFillEvent pool
var orderFillPool = sync.Pool{
	New: func() interface{} {
		return &OrderFillEvent{}
	},
}

// AcquireOrderFillEvent gets an OrderFillEvent from the pool.
func AcquireOrderFillEvent() *OrderFillEvent {
	return orderFillPool.Get().(*OrderFillEvent)
}

// ReleaseOrderFillEvent returns an OrderFillEvent to the pool.
func ReleaseOrderFillEvent(ev *OrderFillEvent) {
	if ev == nil {
		return
	}
	ev.Seq = 0
	ev.Ts = 0
	ev.OrderID = ""
	ev.Price = 0
	ev.Qty = 0

	orderFillPool.Put(ev)
}

// Warmup pre-allocates event objects to reduce GC pressure at startup.
// It acquires and releases a batch of events.
func Warmup() {
	const batchSize = 1000

	bookEvs := make([]*BookUpdateEvent, 0, batchSize)
	for i := 0; i < batchSize; i++ {
		bookEvs = append(bookEvs, AcquireBookUpdateEvent())
	}
	for _, ev := range bookEvs {
		ReleaseBookUpdateEvent(ev)
	}

	fillEvs := make([]*OrderFillEvent, 0, batchSize)
	for i := 0; i < batchSize; i++ {
		fillEvs = append(fillEvs, AcquireOrderFillEvent())
	}
	for _, ev := range fillEvs {
		ReleaseOrderFillEvent(ev)
	}
}
