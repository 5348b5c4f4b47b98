package algo

import (
	"fmt"

	"github.com/Shida18719/trading-algo-assessment/internal/domain"
)

// Kind discriminates the instruction union.
type Kind int

const (
	KindNoAction Kind = iota
	KindCreate
	KindCancel
)

// String returns the string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindNoAction:
		return "NO_ACTION"
	case KindCreate:
		return "CREATE"
	case KindCancel:
		return "CANCEL"
	default:
		return "UNKNOWN"
	}
}

// Instruction is the engine's sole output: exactly one of Create, Cancel
// or NoAction per evaluation. The zero value is NoAction, so the engine is
// total by construction. Callers switch exhaustively on Kind.
type Instruction struct {
	Kind     Kind
	Side     domain.Side // Create only
	Quantity int64       // Create only
	Price    int64       // Create only
	OrderID  string      // Cancel only
}

// NoAction returns the do-nothing instruction.
func NoAction() Instruction {
	return Instruction{Kind: KindNoAction}
}

// CreateOrder returns an instruction to place a new child order.
func CreateOrder(side domain.Side, quantity, price int64) Instruction {
	return Instruction{Kind: KindCreate, Side: side, Quantity: quantity, Price: price}
}

// CancelOrder returns an instruction to cancel the child order with the given ID.
func CancelOrder(orderID string) Instruction {
	return Instruction{Kind: KindCancel, OrderID: orderID}
}

func (in Instruction) String() string {
	switch in.Kind {
	case KindCreate:
		return fmt.Sprintf("CREATE %s %d @ %d", in.Side, in.Quantity, in.Price)
	case KindCancel:
		return fmt.Sprintf("CANCEL %s", in.OrderID)
	default:
		return "NO_ACTION"
	}
}
