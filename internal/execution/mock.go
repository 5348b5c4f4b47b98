package execution

import (
	"context"
	"log/slog"

	"github.com/Shida18719/trading-algo-assessment/internal/domain"
)

// MockExecution is a safe implementation that only logs orders.
type MockExecution struct {
	// Can add channels here to capture orders for testing if needed
}

func NewMockExecution() *MockExecution {
	return &MockExecution{}
}

func (m *MockExecution) SubmitOrder(ctx context.Context, order domain.ChildOrder) error {
	slog.Info("MOCK EXECUTION: Submit Order",
		slog.String("id", order.ID),
		slog.String("side", string(order.Side)),
		slog.Int64("price", order.Price),
		slog.Int64("qty", order.Quantity),
	)
	return nil
}

func (m *MockExecution) CancelOrder(ctx context.Context, orderID string) error {
	slog.Info("MOCK EXECUTION: Cancel Order", slog.String("id", orderID))
	return nil
}
