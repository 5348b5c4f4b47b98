package algo

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Shida18719/trading-algo-assessment/internal/domain"
)

func TestBenchmark(t *testing.T) {
	t.Run("Weighted Average", func(t *testing.T) {
		levels := []domain.PriceLevel{
			{Price: 98, Quantity: 100},
			{Price: 95, Quantity: 200},
			{Price: 91, Quantity: 300},
		}
		// (98*100 + 95*200 + 91*300) / 600 = 56100 / 600 = 93.5
		want := decimal.RequireFromString("93.5")
		if got := Benchmark(levels); !got.Equal(want) {
			t.Errorf("Expected %s, got %s", want, got)
		}
	})

	t.Run("Empty Levels", func(t *testing.T) {
		if got := Benchmark(nil); !got.IsZero() {
			t.Errorf("Expected zero for empty input, got %s", got)
		}
		if got := Benchmark([]domain.PriceLevel{}); !got.IsZero() {
			t.Errorf("Expected zero for empty slice, got %s", got)
		}
	})

	t.Run("Zero Volume Levels Contribute Nothing", func(t *testing.T) {
		levels := []domain.PriceLevel{
			{Price: 98, Quantity: 0},
			{Price: 95, Quantity: 0},
		}
		if got := Benchmark(levels); !got.IsZero() {
			t.Errorf("Expected zero when no level carries volume, got %s", got)
		}
	})

	t.Run("Single Level", func(t *testing.T) {
		levels := []domain.PriceLevel{{Price: 98, Quantity: 100}}
		if got := Benchmark(levels); !got.Equal(decimal.NewFromInt(98)) {
			t.Errorf("Expected 98, got %s", got)
		}
	})

	t.Run("Deterministic", func(t *testing.T) {
		levels := []domain.PriceLevel{
			{Price: 100, Quantity: 101},
			{Price: 110, Quantity: 200},
		}
		first := Benchmark(levels)
		second := Benchmark(levels)
		if !first.Equal(second) {
			t.Errorf("Benchmark must be deterministic: %s vs %s", first, second)
		}
	})
}
