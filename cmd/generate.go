package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/subcommands"
	"github.com/google/uuid"

	desk "github.com/fxdesk/deskreplay"
	"github.com/fxdesk/deskreplay/ioadapter"
)

type generateSampleDataCmd struct {
	outputDir string
	numTrades int
	numTicks  int
}

func (*generateSampleDataCmd) Name() string { return "generate-sample-data" }
func (*generateSampleDataCmd) Synopsis() string {
	return "writes a synthetic event stream usable as `run` input"
}
func (*generateSampleDataCmd) Usage() string {
	return `deskreplay generate-sample-data --output-dir PATH [--num-trades N] [--num-ticks M]

  Generates a small, internally consistent EUR/USD event stream: a market
  update, N alternating BUY/SELL client trades, and M clock ticks, written
  as the per-event-kind columnar files 'run' expects.
`
}

func (c *generateSampleDataCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.outputDir, "output-dir", "", "directory to write sample input files into (required)")
	f.IntVar(&c.numTrades, "num-trades", 10, "number of synthetic client trades to generate")
	f.IntVar(&c.numTicks, "num-ticks", 3, "number of synthetic clock ticks to generate")
}

func (c *generateSampleDataCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.outputDir == "" {
		fmt.Fprintln(os.Stderr, "generate-sample-data: --output-dir is required")
		return subcommands.ExitUsageError
	}
	if err := os.MkdirAll(c.outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "generate-sample-data: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := generateSampleData(c.outputDir, c.numTrades, c.numTicks); err != nil {
		fmt.Fprintf(os.Stderr, "generate-sample-data: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Sample data written to %s\n", c.outputDir)
	return subcommands.ExitSuccess
}

func generateSampleData(dir string, numTrades, numTicks int) error {
	pair := desk.NewCurrencyPair("EUR", "USD")
	base := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	var seq int64

	update, err := desk.NewMarketUpdate(base, seq, pair, desk.Px(1.0995), desk.Px(1.1005), desk.Px(1.1000))
	if err != nil {
		return err
	}
	seq++
	updates := []*desk.MarketUpdate{update}

	trades := make([]*desk.ClientTrade, 0, numTrades)
	for i := 0; i < numTrades; i++ {
		side := desk.Buy
		if i%2 == 1 {
			side = desk.Sell
		}
		price := desk.Px(1.1000 + 0.0005*float64(i%5))
		trade, err := desk.NewClientTrade(base.Add(time.Duration(i+1)*time.Minute), seq, pair, side, desk.Qty(100_000), price, fmt.Sprintf("CLIENT_%03d", i%4), fmt.Sprintf("TRADE_%s", uuid.NewString()))
		if err != nil {
			return err
		}
		seq++
		trades = append(trades, trade)
	}

	ticks := make([]*desk.ClockTick, 0, numTicks)
	for i := 0; i < numTicks; i++ {
		tick, err := desk.NewClockTick(base.Add(time.Duration(i+1)*time.Hour), seq, fmt.Sprintf("SNAP_%d", i+1))
		if err != nil {
			return err
		}
		seq++
		ticks = append(ticks, tick)
	}

	if err := writeSampleFile(dir, "market_updates.arrow", func(f *os.File) error { return ioadapter.WriteMarketUpdates(f, updates) }); err != nil {
		return err
	}
	if err := writeSampleFile(dir, "client_trades.arrow", func(f *os.File) error { return ioadapter.WriteClientTrades(f, trades) }); err != nil {
		return err
	}
	if err := writeSampleFile(dir, "clock_ticks.arrow", func(f *os.File) error { return ioadapter.WriteClockTicks(f, ticks) }); err != nil {
		return err
	}
	return nil
}

func writeSampleFile(dir, name string, write func(f *os.File) error) error {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	defer f.Close()
	return write(f)
}
