package config

import (
	"os"
	"path/filepath"
	"testing"

	desk "github.com/fxdesk/deskreplay"
)

const sampleYAML = `
inputs:
  directory: ./data
  files:
    CLIENT_TRADE: trades.arrow
    MARKET_UPDATE: quotes.arrow
outputs:
  directory: ./out
  audit_log: audit.ndjson.gz
  snapshots: snapshots.arrow
  final_state: final_state.json
reporting_currency: EUR
lot_tracking:
  enabled: true
  matching_rule: FIFO
  risk_pairs:
    - EUR/USD
    - EUR/GBP
`

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return path
}

func TestLoadParsesConfiguredFields(t *testing.T) {
	path := writeTempConfig(t, sampleYAML)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := cfg.Inputs.Directory, "./data"; got != want {
		t.Errorf("inputs.directory got %q, want %q", got, want)
	}
	if got, want := cfg.Inputs.Files["CLIENT_TRADE"], "trades.arrow"; got != want {
		t.Errorf("inputs.files[CLIENT_TRADE] got %q, want %q", got, want)
	}
	if got, want := cfg.ReportingCurrency, "EUR"; got != want {
		t.Errorf("reporting_currency got %q, want %q", got, want)
	}
	if !cfg.LotTracking.Enabled {
		t.Error("expected lot_tracking.enabled to be true")
	}
	if len(cfg.LotTracking.RiskPairs) != 2 {
		t.Fatalf("expected 2 risk pairs, got %d", len(cfg.LotTracking.RiskPairs))
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	minimal := `
inputs:
  directory: ./data
  files: {}
outputs:
  directory: ./out
  audit_log: audit.ndjson.gz
  snapshots: snapshots.arrow
  final_state: final_state.json
`
	path := writeTempConfig(t, minimal)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := cfg.ReportingCurrency, "USD"; got != want {
		t.Errorf("default reporting_currency got %q, want %q", got, want)
	}
	if got, want := cfg.LotTracking.MatchingRule, "FIFO"; got != want {
		t.Errorf("default matching_rule got %q, want %q", got, want)
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error loading a nonexistent config file")
	}
}

func TestToDomainParsesCurrencyPairs(t *testing.T) {
	path := writeTempConfig(t, sampleYAML)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	domain, err := cfg.ToDomain()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := domain.ReportingCurrency, desk.Currency("EUR"); got != want {
		t.Errorf("reporting currency got %s, want %s", got, want)
	}
	if len(domain.RiskPairs) != 2 {
		t.Fatalf("expected 2 risk pairs, got %d", len(domain.RiskPairs))
	}
	if got, want := domain.RiskPairs[0].String(), "EUR/USD"; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestToDomainRejectsMalformedPair(t *testing.T) {
	malformed := `
lot_tracking:
  risk_pairs:
    - NOTAPAIR
`
	path := writeTempConfig(t, malformed)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := cfg.ToDomain(); err == nil {
		t.Error("expected an error parsing a malformed currency pair")
	}
}
