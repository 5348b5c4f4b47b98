package app

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/Shida18719/trading-algo-assessment/internal/algo"
	"github.com/Shida18719/trading-algo-assessment/internal/domain"
	"github.com/Shida18719/trading-algo-assessment/internal/infra"
	"github.com/Shida18719/trading-algo-assessment/internal/infra/storage"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config     *infra.Config
	EventStore *storage.EventStore
	Decision   *algo.Engine
	Intent     domain.ParentIntent
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (config, logger, event log).
func (b *Bootstrap) Initialize(configPath string) error {
	// 1. Load Config
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)
	slog.Info("Bootstrapping",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version))

	// 3. Open the event log (WAL for replay)
	if cfg.Engine.EventLog != "" {
		store, err := storage.NewEventStore(cfg.Engine.EventLog)
		if err != nil {
			return err
		}
		b.EventStore = store
		slog.Info("Event log opened", slog.String("path", cfg.Engine.EventLog))
	}

	// 4. Build the decision engine from config
	decision, intent, err := BuildDecision(cfg)
	if err != nil {
		return err
	}
	b.Decision = decision
	b.Intent = intent
	slog.Info("Decision engine ready",
		slog.Int64("target_qty", intent.TargetQuantity),
		slog.String("target_benchmark", intent.TargetBenchmark.String()),
		slog.String("sell_policy", cfg.Algo.SellPolicy))

	return nil
}

// BuildDecision maps the validated config onto the decision engine and
// parent intent. Zero thresholds fall back to the canonical defaults.
func BuildDecision(cfg *infra.Config) (*algo.Engine, domain.ParentIntent, error) {
	defaults := algo.DefaultConfig()

	ac := algo.Config{
		MaxChildOrders:   cfg.Algo.MaxChildOrders,
		MaxActivePerSide: cfg.Algo.MaxActivePerSide,
		BuyDeviation:     orDefault(cfg.Algo.BuyDeviation, defaults.BuyDeviation),
		SellDeviation:    orDefault(cfg.Algo.SellDeviation, defaults.SellDeviation),
		ProfitMargin:     orDefault(cfg.Algo.ProfitMargin, defaults.ProfitMargin),
	}

	var policy algo.SellPolicy
	switch cfg.Algo.SellPolicy {
	case "crossing_check":
		policy = algo.SellCrossingCheck
	case "profit_margin":
		policy = algo.SellProfitMargin
	default:
		return nil, domain.ParentIntent{}, fmt.Errorf("unknown sell policy: %q", cfg.Algo.SellPolicy)
	}

	intent := domain.ParentIntent{
		TargetQuantity:  cfg.Algo.TargetQuantity,
		TargetBenchmark: cfg.Algo.TargetBenchmark,
	}

	return algo.NewEngine(ac, policy), intent, nil
}

func orDefault(v, def decimal.Decimal) decimal.Decimal {
	if v.IsZero() {
		return def
	}
	return v
}
