// Package config defines the simulation run's configuration, loaded from a
// YAML file via viper (spec.md §6).
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/fxdesk/deskreplay"
)

// Config is the top-level run configuration. Maps directly to the YAML
// file structure.
type Config struct {
	Inputs            InputsConfig  `mapstructure:"inputs"`
	Outputs           OutputsConfig `mapstructure:"outputs"`
	ReportingCurrency string        `mapstructure:"reporting_currency"`
	LotTracking       LotConfig     `mapstructure:"lot_tracking"`
}

// InputsConfig locates one columnar input file per event kind.
type InputsConfig struct {
	Directory string            `mapstructure:"directory"`
	Files     map[string]string `mapstructure:"files"`
}

// OutputsConfig names the three output artifacts a run produces.
type OutputsConfig struct {
	Directory  string `mapstructure:"directory"`
	AuditLog   string `mapstructure:"audit_log"`
	Snapshots  string `mapstructure:"snapshots"`
	FinalState string `mapstructure:"final_state"`
}

// LotConfig mirrors desk.LotConfig in YAML-friendly form; currency pairs
// are parsed from their "BASE/QUOTE" textual form during ToDomain.
type LotConfig struct {
	Enabled      bool     `mapstructure:"enabled"`
	MatchingRule string   `mapstructure:"matching_rule"`
	RiskPairs    []string `mapstructure:"risk_pairs"`
	TradePairs   []string `mapstructure:"trade_pairs"`
	HedgePairs   []string `mapstructure:"hedge_pairs"`
}

// Load reads config from a YAML file, applying the defaults spec.md §6
// names explicitly: reporting_currency defaults to USD, matching_rule to
// FIFO.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("reporting_currency", "USD")
	v.SetDefault("lot_tracking.matching_rule", "FIFO")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// ToDomain converts the YAML-shaped LotConfig into desk.LotConfig,
// resolving every textual currency pair.
func (c *Config) ToDomain() (desk.LotConfig, error) {
	reportingCurrency := desk.Currency(c.ReportingCurrency)

	parseAll := func(pairs []string) ([]desk.CurrencyPair, error) {
		out := make([]desk.CurrencyPair, 0, len(pairs))
		for _, s := range pairs {
			p, err := desk.ParseCurrencyPair(s)
			if err != nil {
				return nil, fmt.Errorf("lot_tracking: %w", err)
			}
			out = append(out, p)
		}
		return out, nil
	}

	riskPairs, err := parseAll(c.LotTracking.RiskPairs)
	if err != nil {
		return desk.LotConfig{}, err
	}
	tradePairs, err := parseAll(c.LotTracking.TradePairs)
	if err != nil {
		return desk.LotConfig{}, err
	}
	hedgePairs, err := parseAll(c.LotTracking.HedgePairs)
	if err != nil {
		return desk.LotConfig{}, err
	}

	return desk.LotConfig{
		Enabled:           c.LotTracking.Enabled,
		MatchingRule:      c.LotTracking.MatchingRule,
		RiskPairs:         riskPairs,
		TradePairs:        tradePairs,
		HedgePairs:        hedgePairs,
		ReportingCurrency: reportingCurrency,
	}, nil
}
