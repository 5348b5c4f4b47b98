package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Shida18719/trading-algo-assessment/internal/app"
	"github.com/Shida18719/trading-algo-assessment/internal/domain"
	"github.com/Shida18719/trading-algo-assessment/internal/engine"
	"github.com/Shida18719/trading-algo-assessment/internal/event"
	"github.com/Shida18719/trading-algo-assessment/internal/execution"
	"github.com/Shida18719/trading-algo-assessment/internal/infra"
	"github.com/Shida18719/trading-algo-assessment/internal/infra/feed"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	// 1. Pprof Server (for performance profiling)
	go func() {
		// Localhost only for security
		slog.Info("Pprof server started on localhost:6060")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("Pprof server failed", slog.Any("error", err))
		}
	}()

	// 2. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize("configs/config.yaml"); err != nil {
		slog.Error("Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	cfg := bootstrap.Config

	// 3. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Pre-warm the event pools before the hotpath starts.
	event.Warmup()

	// 5. Wire execution and the sequencer. The sequencer is the only
	// sequence-number allocator: the feed publishes unstamped events, and
	// paper fills are queued on the sequencer and applied by it directly.
	var seq *engine.Sequencer

	var exec execution.Execution
	var onUpdate func(*domain.AlgoView)
	switch cfg.Execution.Mode {
	case "paper":
		paper := execution.NewPaperExecution(func(f execution.Fill) {
			seq.QueueFill(f)
		})
		exec = paper
		// Match resting orders against each applied snapshot.
		onUpdate = func(view *domain.AlgoView) {
			paper.OnBookUpdate(&view.Book)
		}
	default:
		exec = execution.NewMockExecution()
	}

	seq = engine.NewSequencer(cfg.Engine.InboxSize, bootstrap.EventStore,
		bootstrap.Decision, bootstrap.Intent, exec, onUpdate)

	// Start Sequencer in its own goroutine (The Hotpath Loop)
	go seq.Run(ctx)
	slog.InfoContext(ctx, "Sequencer (Hotpath) started")

	// 6. Market-data feed worker
	if cfg.Feed.WSURL != "" {
		worker := feed.NewWorker(cfg.Feed.WSURL, seq.Inbox())
		if err := worker.Connect(ctx); err != nil {
			slog.Error("Failed to connect feed", slog.Any("error", err))
		}
		defer worker.Disconnect()
		slog.InfoContext(ctx, "Feed worker started", slog.String("url", cfg.Feed.WSURL))
	} else {
		slog.Warn("No feed URL configured; waiting on inbox only")
	}

	slog.InfoContext(ctx, "System fully operational. Press Ctrl+C to exit.")

	// Wait for shutdown signal
	<-ctx.Done()

	snap := infra.GlobalMetrics.Snapshot()
	slog.Info("Shutting down gracefully...",
		slog.Uint64("events", snap.EventsProcessed),
		slog.Uint64("creates", snap.Creates),
		slog.Uint64("cancels", snap.Cancels),
		slog.Uint64("fills", snap.OrdersFilled))
}
