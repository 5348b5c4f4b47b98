package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/Shida18719/trading-algo-assessment/backtest"
	"github.com/Shida18719/trading-algo-assessment/internal/app"
	"github.com/Shida18719/trading-algo-assessment/internal/engine"
)

// Replays a recorded event log through a fresh sequencer and dumps the
// resulting child-order state for inspection.
func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	out := flag.String("out", "replay_state.json", "path for the final state dump")
	flag.Parse()

	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(*configPath); err != nil {
		slog.Error("Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	cfg := bootstrap.Config

	if cfg.Engine.EventLog == "" {
		slog.Error("No event log configured; nothing to replay")
		os.Exit(1)
	}

	replayer, err := backtest.NewReplayer(cfg.Engine.EventLog)
	if err != nil {
		slog.Error("Failed to open event log", slog.Any("error", err))
		os.Exit(1)
	}

	// Replay runs without WAL and without execution side effects.
	seq := engine.NewSequencer(cfg.Engine.InboxSize, nil,
		bootstrap.Decision, bootstrap.Intent, nil, nil)

	if err := replayer.RunReplay(context.Background(), seq); err != nil {
		slog.Error("Replay failed", slog.Any("error", err))
		os.Exit(1)
	}

	view := seq.View()
	slog.Info("Replay complete",
		slog.Int("child_orders", len(view.ChildOrders)),
		slog.Int64("executed_qty", view.ExecutedQuantity()))

	seq.DumpState(*out)
}
