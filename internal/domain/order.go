package domain

// Side of a child order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// OrderState is the lifecycle state of a child order.
// FILLED and CANCELLED are terminal.
type OrderState string

const (
	StatePending         OrderState = "PENDING"
	StateActive          OrderState = "ACTIVE"
	StatePartiallyFilled OrderState = "PARTIALLY_FILLED"
	StateFilled          OrderState = "FILLED"
	StateCancelled       OrderState = "CANCELLED"
)

// IsTerminal reports whether no further transitions are possible.
func (s OrderState) IsTerminal() bool {
	return s == StateFilled || s == StateCancelled
}

// ChildOrder is one resting order placed toward the parent quantity.
// It is owned and mutated by the sequencer; the decision core only
// reads and classifies it.
// Invariant: FilledQuantity <= Quantity; a FILLED order has
// FilledQuantity == Quantity.
type ChildOrder struct {
	ID             string     `json:"id"`
	Side           Side       `json:"side"`
	Price          int64      `json:"price"`
	Quantity       int64      `json:"quantity"` // requested quantity
	FilledQuantity int64      `json:"filled_quantity"`
	State          OrderState `json:"state"`
}

// IsOpen checks if the order is still active (non-terminal).
func (o *ChildOrder) IsOpen() bool {
	return !o.State.IsTerminal()
}
