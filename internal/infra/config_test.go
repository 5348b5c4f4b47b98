package infra

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Shida18719/trading-algo-assessment/internal/domain"
)

const validConfigYAML = `
app:
  name: trading-algo
  version: "1.0"
algo:
  target_quantity: 13000
  target_benchmark: "108.5"
  max_child_orders: 5
  max_active_per_side: 3
  buy_deviation: "0.08"
  sell_deviation: "0.03"
  profit_margin: "0.02"
  sell_policy: crossing_check
feed:
  ws_url: "wss://feed.example.com/depth"
engine:
  inbox_size: 1024
  event_log: data/events.db
execution:
  mode: paper
logging:
  level: info
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validConfigYAML))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Algo.TargetQuantity != 13000 {
		t.Errorf("Expected target quantity 13000, got %d", cfg.Algo.TargetQuantity)
	}
	if !cfg.Algo.TargetBenchmark.Equal(decimal.RequireFromString("108.5")) {
		t.Errorf("Expected target benchmark 108.5, got %s", cfg.Algo.TargetBenchmark)
	}
	if !cfg.Algo.BuyDeviation.Equal(decimal.RequireFromString("0.08")) {
		t.Errorf("Expected buy deviation 0.08, got %s", cfg.Algo.BuyDeviation)
	}
	if cfg.Algo.SellPolicy != "crossing_check" {
		t.Errorf("Expected crossing_check, got %q", cfg.Algo.SellPolicy)
	}
	if cfg.Execution.Mode != "paper" {
		t.Errorf("Expected paper mode, got %q", cfg.Execution.Mode)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("ALGO_FEED_WS_URL", "ws://localhost:9000/depth")
	t.Setenv("ALGO_EXECUTION_MODE", "mock")

	cfg, err := LoadConfig(writeConfig(t, validConfigYAML))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Feed.WSURL != "ws://localhost:9000/depth" {
		t.Errorf("Env override not applied, got %q", cfg.Feed.WSURL)
	}
	if cfg.Execution.Mode != "mock" {
		t.Errorf("Env override not applied, got %q", cfg.Execution.Mode)
	}
}

func TestConfig_Validate(t *testing.T) {
	base := func() *Config {
		cfg, err := LoadConfig(writeConfig(t, validConfigYAML))
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		return cfg
	}

	t.Run("Zero Target Quantity", func(t *testing.T) {
		cfg := base()
		cfg.Algo.TargetQuantity = 0
		if err := cfg.Validate(); err == nil {
			t.Error("Expected validation error for zero target quantity")
		}
	})

	t.Run("Unknown Sell Policy", func(t *testing.T) {
		cfg := base()
		cfg.Algo.SellPolicy = "hybrid"
		err := cfg.Validate()
		if err == nil {
			t.Fatal("Expected validation error for unknown sell policy")
		}
		var cfgErr *domain.ConfigError
		if !errors.As(err, &cfgErr) {
			t.Errorf("Expected ConfigError, got %T", err)
		}
		if domain.IsRetriable(err) {
			t.Error("Config errors must not be retriable")
		}
	})

	t.Run("Bad Feed URL", func(t *testing.T) {
		cfg := base()
		cfg.Feed.WSURL = "http://not-a-ws-url"
		if err := cfg.Validate(); err == nil {
			t.Error("Expected validation error for non-ws URL")
		}
	})

	t.Run("Negative Threshold", func(t *testing.T) {
		cfg := base()
		cfg.Algo.BuyDeviation = decimal.RequireFromString("-0.01")
		if err := cfg.Validate(); err == nil {
			t.Error("Expected validation error for negative threshold")
		}
	})

	t.Run("Unknown Execution Mode", func(t *testing.T) {
		cfg := base()
		cfg.Execution.Mode = "real"
		if err := cfg.Validate(); err == nil {
			t.Error("Expected validation error for unknown execution mode")
		}
	})
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Expected error for missing config file")
	}
	if !errors.Is(err, domain.ErrConfigNotFound) {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}
}
