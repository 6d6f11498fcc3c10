package config

import (
	"errors"
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

// EnvPrefix is the prefix of environment overrides, e.g. TURTLE_ENTRY_PERIOD.
const EnvPrefix = "TURTLE"

// TurtleConfig holds all tunable parameters of the System 2 strategy.
type TurtleConfig struct {
	Symbols      []string `mapstructure:"symbols"`
	StartingCash float64  `mapstructure:"starting_cash"` // paper account only

	// Channels & volatility
	EntryPeriod   int     `mapstructure:"entry_period"`   // default 55
	ExitPeriod    int     `mapstructure:"exit_period"`    // default 20
	ATRPeriod     int     `mapstructure:"atr_period"`     // default 20
	ATRMultiplier float64 `mapstructure:"atr_multiplier"` // stop distance in N, default 2

	// Risk parameters
	RiskPerTrade float64 `mapstructure:"risk_per_trade"` // e.g. 0.02 = 2 % of effective equity
	MaxUnits     int     `mapstructure:"max_units"`      // pyramid cap, default 4
	// MinShares is the order size used when the computed size rounds below it,
	// including the zero risk-per-share case.
	MinShares int `mapstructure:"min_shares"`

	// Drawdown throttle
	DrawdownFloor         float64 `mapstructure:"drawdown_floor"`          // default 100
	DrawdownActualStep    float64 `mapstructure:"drawdown_actual_step"`    // default 0.10
	DrawdownEffectiveStep float64 `mapstructure:"drawdown_effective_step"` // default 0.20

	// TrendContext feeds a goti indicator suite per symbol for reporting.
	TrendContext bool `mapstructure:"trend_context"`
}

// Default returns the Turtle System 2 parameters.
func Default() TurtleConfig {
	return TurtleConfig{
		Symbols:               []string{"AAPL"},
		StartingCash:          1_000_000,
		EntryPeriod:           55,
		ExitPeriod:            20,
		ATRPeriod:             20,
		ATRMultiplier:         2,
		RiskPerTrade:          0.02,
		MaxUnits:              4,
		MinShares:             1,
		DrawdownFloor:         100,
		DrawdownActualStep:    0.10,
		DrawdownEffectiveStep: 0.20,
		TrendContext:          true,
	}
}

// Validate checks that all numeric fields are within sensible bounds.
// Every problem is reported, so a bad file can be fixed in one pass.
func (c *TurtleConfig) Validate() error {
	var err error
	if c.EntryPeriod <= 0 {
		err = multierr.Append(err, errors.New("EntryPeriod must be positive"))
	}
	if c.ExitPeriod <= 0 {
		err = multierr.Append(err, errors.New("ExitPeriod must be positive"))
	}
	if c.ATRPeriod <= 0 {
		err = multierr.Append(err, errors.New("ATRPeriod must be positive"))
	}
	if c.ATRMultiplier <= 0 {
		err = multierr.Append(err, fmt.Errorf("ATRMultiplier (%f) must be positive", c.ATRMultiplier))
	}
	if c.RiskPerTrade <= 0 || c.RiskPerTrade > 0.5 {
		err = multierr.Append(err, fmt.Errorf("RiskPerTrade (%f) must be >0 and <=0.5", c.RiskPerTrade))
	}
	if c.MaxUnits < 1 {
		err = multierr.Append(err, fmt.Errorf("MaxUnits (%d) must be at least 1", c.MaxUnits))
	}
	if c.MinShares < 1 {
		err = multierr.Append(err, fmt.Errorf("MinShares (%d) must be at least 1", c.MinShares))
	}
	if c.DrawdownFloor <= 0 {
		err = multierr.Append(err, fmt.Errorf("DrawdownFloor (%f) must be positive", c.DrawdownFloor))
	}
	if c.DrawdownActualStep <= 0 || c.DrawdownActualStep >= 1 {
		err = multierr.Append(err, fmt.Errorf("DrawdownActualStep (%f) must be between 0 and 1", c.DrawdownActualStep))
	}
	if c.DrawdownEffectiveStep <= 0 || c.DrawdownEffectiveStep >= 1 {
		err = multierr.Append(err, fmt.Errorf("DrawdownEffectiveStep (%f) must be between 0 and 1", c.DrawdownEffectiveStep))
	}
	if c.StartingCash < 0 {
		err = multierr.Append(err, errors.New("StartingCash cannot be negative"))
	}
	return err
}

// Load reads a config file (any format viper understands) on top of
// Default() and applies TURTLE_* environment overrides. An empty path
// yields the defaults plus environment.
func Load(path string) (TurtleConfig, error) {
	v := viper.New()
	def := Default()
	v.SetDefault("symbols", def.Symbols)
	v.SetDefault("starting_cash", def.StartingCash)
	v.SetDefault("entry_period", def.EntryPeriod)
	v.SetDefault("exit_period", def.ExitPeriod)
	v.SetDefault("atr_period", def.ATRPeriod)
	v.SetDefault("atr_multiplier", def.ATRMultiplier)
	v.SetDefault("risk_per_trade", def.RiskPerTrade)
	v.SetDefault("max_units", def.MaxUnits)
	v.SetDefault("min_shares", def.MinShares)
	v.SetDefault("drawdown_floor", def.DrawdownFloor)
	v.SetDefault("drawdown_actual_step", def.DrawdownActualStep)
	v.SetDefault("drawdown_effective_step", def.DrawdownEffectiveStep)
	v.SetDefault("trend_context", def.TrendContext)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return TurtleConfig{}, pkgerrors.Wrapf(err, "read config %s", path)
		}
	}

	var cfg TurtleConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return TurtleConfig{}, pkgerrors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return TurtleConfig{}, pkgerrors.Wrap(err, "invalid config")
	}
	return cfg, nil
}
