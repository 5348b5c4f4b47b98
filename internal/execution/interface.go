package execution

import (
	"context"

	"github.com/Shida18719/trading-algo-assessment/internal/domain"
)

// Execution defines the interface for order execution.
// The sequencer forwards every Create/Cancel instruction here after
// applying it to its own child-order state.
type Execution interface {
	// SubmitOrder sends a new child order to the venue.
	SubmitOrder(ctx context.Context, order domain.ChildOrder) error

	// CancelOrder cancels an existing child order by ID.
	CancelOrder(ctx context.Context, orderID string) error
}
