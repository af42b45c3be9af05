// Package config exposes the strongly typed bot configuration loaded from
// YAML. Every numeric parameter is range-checked at startup; a bad value is
// a fatal error, never a silent default.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// App captures process-wide runtime settings.
type App struct {
	Name         string   `yaml:"name"`
	Symbols      []string `yaml:"symbols"`
	Interval     string   `yaml:"interval"`     // kline interval, e.g. "1h"
	PollSecs     int      `yaml:"poll_secs"`    // polling cadence of the control loop
	MetricsAddr  string   `yaml:"metrics_addr"` // prometheus listen address, empty = disabled
	LogLevel     string   `yaml:"log_level"`
	Confirmation bool     `yaml:"confirmation"` // enable the indicator-suite entry filter
	UseStream    bool     `yaml:"use_stream"`   // drive cycles from the websocket stream instead of polling
}

// Indicators holds the lookback periods and flag thresholds for the
// indicator set.
type Indicators struct {
	RSIPeriod     int     `yaml:"rsi_period"`      // default 14
	RSIOverbought float64 `yaml:"rsi_overbought"`  // default 70
	RSIOversold   float64 `yaml:"rsi_oversold"`    // default 30

	MACDFast   int `yaml:"macd_fast"`   // default 12
	MACDSlow   int `yaml:"macd_slow"`   // default 26
	MACDSignal int `yaml:"macd_signal"` // default 9

	BBPeriod int     `yaml:"bb_period"`  // default 20
	BBStdDev float64 `yaml:"bb_std_dev"` // default 2.0

	StochKPeriod    int     `yaml:"stoch_k_period"`   // default 14
	StochDPeriod    int     `yaml:"stoch_d_period"`   // default 3
	StochSmoothK    int     `yaml:"stoch_smooth_k"`   // default 3
	StochOversold   float64 `yaml:"stoch_oversold"`   // default 20
	StochOverbought float64 `yaml:"stoch_overbought"` // default 80

	ATRPeriod int `yaml:"atr_period"` // default 14

	VolumePeriod     int     `yaml:"volume_period"`     // default 20
	VolumeMultiplier float64 `yaml:"volume_multiplier"` // default 1.5
}

// Signal holds the entry-decision parameters.
type Signal struct {
	// Threshold is the minimum absolute strength for a buy/sell flag.
	// Values <= 0 make simultaneous buy+sell possible; the engine then
	// reports an ambiguity error instead of picking a side.
	Threshold     int     `yaml:"threshold"`      // default 3
	ATRMultiplier float64 `yaml:"atr_multiplier"` // default 2.0
}

// Risk mirrors the portfolio guard-rails enforced by the risk gate.
type Risk struct {
	MaxPositionSize  float64 `yaml:"max_position_size"`  // fraction of balance, default 0.05
	MaxOpenPositions int     `yaml:"max_open_positions"` // default 5
	MaxDailyLoss     float64 `yaml:"max_daily_loss"`     // fraction of balance, default 0.03
	TrailingStopPct  float64 `yaml:"trailing_stop_pct"`  // percent, default 2.0
}

// Paper configures the simulated execution venue.
type Paper struct {
	InitialBalance float64 `yaml:"initial_balance"` // default 10000
}

// Config collects every configuration leaf for easy unmarshaling from YAML.
type Config struct {
	App        App        `yaml:"app"`
	Indicators Indicators `yaml:"indicators"`
	Signal     Signal     `yaml:"signal"`
	Risk       Risk       `yaml:"risk"`
	Paper      Paper      `yaml:"paper"`
}

// Default returns a Config populated with the documented defaults.
func Default() Config {
	return Config{
		App: App{
			Name:     "crypto-trading-bot",
			Interval: "1h",
			PollSecs: 60,
			LogLevel: "info",
		},
		Indicators: Indicators{
			RSIPeriod:        14,
			RSIOverbought:    70,
			RSIOversold:      30,
			MACDFast:         12,
			MACDSlow:         26,
			MACDSignal:       9,
			BBPeriod:         20,
			BBStdDev:         2.0,
			StochKPeriod:     14,
			StochDPeriod:     3,
			StochSmoothK:     3,
			StochOversold:    20,
			StochOverbought:  80,
			ATRPeriod:        14,
			VolumePeriod:     20,
			VolumeMultiplier: 1.5,
		},
		Signal: Signal{
			Threshold:     3,
			ATRMultiplier: 2.0,
		},
		Risk: Risk{
			MaxPositionSize:  0.05,
			MaxOpenPositions: 5,
			MaxDailyLoss:     0.03,
			TrailingStopPct:  2.0,
		},
		Paper: Paper{
			InitialBalance: 10_000,
		},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that all numeric fields are within sensible bounds.
// It returns the first encountered error, allowing the caller to surface a
// clear configuration problem before any trading starts.
func (c *Config) Validate() error {
	if err := c.Indicators.Validate(); err != nil {
		return err
	}
	if c.Signal.ATRMultiplier <= 0 {
		return fmt.Errorf("atr_multiplier (%f) must be positive", c.Signal.ATRMultiplier)
	}
	if c.Risk.MaxPositionSize <= 0 || c.Risk.MaxPositionSize > 1 {
		return fmt.Errorf("max_position_size (%f) must be >0 and <=1", c.Risk.MaxPositionSize)
	}
	if c.Risk.MaxOpenPositions <= 0 {
		return errors.New("max_open_positions must be positive")
	}
	if c.Risk.MaxDailyLoss <= 0 || c.Risk.MaxDailyLoss > 1 {
		return fmt.Errorf("max_daily_loss (%f) must be >0 and <=1", c.Risk.MaxDailyLoss)
	}
	if c.Risk.TrailingStopPct <= 0 || c.Risk.TrailingStopPct >= 100 {
		return fmt.Errorf("trailing_stop_pct (%f) must be >0 and <100", c.Risk.TrailingStopPct)
	}
	if c.Paper.InitialBalance <= 0 {
		return errors.New("initial_balance must be positive")
	}
	if c.App.PollSecs <= 0 {
		return errors.New("poll_secs must be positive")
	}
	return nil
}

// Validate range-checks every indicator parameter.
func (i *Indicators) Validate() error {
	if i.RSIPeriod <= 0 {
		return errors.New("rsi_period must be positive")
	}
	if i.RSIOversold >= i.RSIOverbought {
		return fmt.Errorf("rsi_oversold (%f) must be below rsi_overbought (%f)", i.RSIOversold, i.RSIOverbought)
	}
	if i.MACDFast <= 0 || i.MACDSlow <= 0 || i.MACDSignal <= 0 {
		return errors.New("macd periods must be positive")
	}
	if i.MACDFast >= i.MACDSlow {
		return fmt.Errorf("macd_fast (%d) must be smaller than macd_slow (%d)", i.MACDFast, i.MACDSlow)
	}
	if i.BBPeriod <= 0 {
		return errors.New("bb_period must be positive")
	}
	if i.BBStdDev <= 0 {
		return fmt.Errorf("bb_std_dev (%f) must be positive", i.BBStdDev)
	}
	if i.StochKPeriod <= 0 || i.StochDPeriod <= 0 || i.StochSmoothK <= 0 {
		return errors.New("stochastic periods must be positive")
	}
	if i.StochOversold >= i.StochOverbought {
		return fmt.Errorf("stoch_oversold (%f) must be below stoch_overbought (%f)", i.StochOversold, i.StochOverbought)
	}
	if i.ATRPeriod <= 0 {
		return errors.New("atr_period must be positive")
	}
	if i.VolumePeriod <= 0 {
		return errors.New("volume_period must be positive")
	}
	if i.VolumeMultiplier <= 0 {
		return fmt.Errorf("volume_multiplier (%f) must be positive", i.VolumeMultiplier)
	}
	return nil
}
