package infra

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/Shida18719/trading-algo-assessment/internal/domain"
)

// Config holds all application settings. LoadConfig applies environment
// variable overrides after the file is parsed.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Algo struct {
		TargetQuantity   int64           `yaml:"target_quantity"`
		TargetBenchmark  decimal.Decimal `yaml:"target_benchmark"`
		MaxChildOrders   int             `yaml:"max_child_orders"`
		MaxActivePerSide int             `yaml:"max_active_per_side"`
		BuyDeviation     decimal.Decimal `yaml:"buy_deviation"`
		SellDeviation    decimal.Decimal `yaml:"sell_deviation"`
		ProfitMargin     decimal.Decimal `yaml:"profit_margin"`
		SellPolicy       string          `yaml:"sell_policy"` // "crossing_check" or "profit_margin"
	} `yaml:"algo"`

	Feed struct {
		WSURL string `yaml:"ws_url"`
	} `yaml:"feed"`

	Engine struct {
		InboxSize int    `yaml:"inbox_size"`
		EventLog  string `yaml:"event_log"`
	} `yaml:"engine"`

	Execution struct {
		Mode string `yaml:"mode"` // "paper" or "mock"
	} `yaml:"execution"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrConfigNotFound, path)
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	// Algo
	if c.Algo.TargetQuantity <= 0 {
		return &domain.ConfigError{Field: "algo.target_quantity",
			Err: fmt.Errorf("must be positive, got %d", c.Algo.TargetQuantity)}
	}
	if c.Algo.MaxChildOrders <= 0 || c.Algo.MaxActivePerSide <= 0 {
		return &domain.ConfigError{Field: "algo", Err: fmt.Errorf("order caps must be positive")}
	}
	if c.Algo.BuyDeviation.IsNegative() || c.Algo.SellDeviation.IsNegative() || c.Algo.ProfitMargin.IsNegative() {
		return &domain.ConfigError{Field: "algo", Err: fmt.Errorf("thresholds must not be negative")}
	}
	switch c.Algo.SellPolicy {
	case "crossing_check", "profit_margin":
	default:
		return &domain.ConfigError{Field: "algo.sell_policy",
			Err: fmt.Errorf("unknown sell policy: %q", c.Algo.SellPolicy)}
	}

	// Feed (optional in replay/paper setups, but must be well-formed when set)
	if c.Feed.WSURL != "" && !hasPrefix(c.Feed.WSURL, "ws://") && !hasPrefix(c.Feed.WSURL, "wss://") {
		return &domain.ConfigError{Field: "feed.ws_url",
			Err: fmt.Errorf("invalid WS URL: %s", c.Feed.WSURL)}
	}

	// Engine
	if c.Engine.InboxSize <= 0 {
		return &domain.ConfigError{Field: "engine.inbox_size",
			Err: fmt.Errorf("must be positive, got %d", c.Engine.InboxSize)}
	}

	// Execution
	switch c.Execution.Mode {
	case "paper", "mock":
	default:
		return &domain.ConfigError{Field: "execution.mode",
			Err: fmt.Errorf("unknown execution mode: %q", c.Execution.Mode)}
	}

	return nil
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[0:len(prefix)] == prefix
}

// overrideWithEnv applies environment variable overrides when present.
func overrideWithEnv(cfg *Config) {
	if url := os.Getenv("ALGO_FEED_WS_URL"); url != "" {
		cfg.Feed.WSURL = url
	}
	if path := os.Getenv("ALGO_EVENT_LOG"); path != "" {
		cfg.Engine.EventLog = path
	}
	if mode := os.Getenv("ALGO_EXECUTION_MODE"); mode != "" {
		cfg.Execution.Mode = mode
	}
}
