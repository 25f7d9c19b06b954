package cmd

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/subcommands"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	desk "github.com/fxdesk/deskreplay"
	"github.com/fxdesk/deskreplay/config"
	"github.com/fxdesk/deskreplay/ioadapter"
	"github.com/fxdesk/deskreplay/report"
)

type runCmd struct {
	configPath string
	logLevel   string
	metricsAddr string
	summary    bool
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "replays a simulation from a configured event stream" }
func (*runCmd) Usage() string {
	return `deskreplay run --config PATH [--log-level LEVEL] [--metrics-addr ADDR] [--summary]

  Loads the events named in the configuration file, replays them
  deterministically through the dealing-desk engine, and writes the audit
  log, snapshots, and final-state document to the configured output
  directory. Exits 0 on success; non-zero on any unrecoverable error.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", "", "path to the YAML configuration file (required)")
	f.StringVar(&c.logLevel, "log-level", "info", "zerolog level: debug, info, warn, error")
	f.StringVar(&c.metricsAddr, "metrics-addr", "", "if set, serve Prometheus metrics at this address (e.g. :9090)")
	f.BoolVar(&c.summary, "summary", false, "print a human-readable run summary to stdout")
}

func (c *runCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.configPath == "" {
		fmt.Fprintln(os.Stderr, "run: --config is required")
		return subcommands.ExitUsageError
	}

	level, err := zerolog.ParseLevel(c.logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "run: invalid --log-level %q: %v\n", c.logLevel, err)
		return subcommands.ExitUsageError
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	if c.metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			log.Info().Str("addr", c.metricsAddr).Msg("serving prometheus metrics")
			if err := http.ListenAndServe(c.metricsAddr, mux); err != nil {
				log.Error().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		log.Error().Err(err).Msg("failed to load configuration")
		return subcommands.ExitFailure
	}

	finalState, err := runSimulation(log, cfg)
	if err != nil {
		log.Error().Err(err).Msg("run failed")
		return subcommands.ExitFailure
	}

	if err := printSummaryIfRequested(c.summary, finalState); err != nil {
		log.Error().Err(err).Msg("failed to render run summary")
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}

func runSimulation(log zerolog.Logger, cfg *config.Config) (desk.State, error) {
	reportingCurrency := desk.Currency(cfg.ReportingCurrency)

	lotCfg, err := cfg.ToDomain()
	if err != nil {
		return desk.State{}, fmt.Errorf("lot tracking configuration: %w", err)
	}

	lotManager, err := desk.NewLotManager(lotCfg)
	if err != nil {
		return desk.State{}, fmt.Errorf("build lot manager: %w", err)
	}

	initial := desk.NewState(reportingCurrency)
	initial.LotManager = lotManager

	merger := ioadapter.NewMerger(cfg.Inputs.Directory, cfg.Inputs.Files)
	events, err := merger.Load()
	if err != nil {
		return desk.State{}, fmt.Errorf("load input events: %w", err)
	}
	log.Info().Int("event_count", len(events)).Msg("loaded input events")

	processor := desk.NewProcessor(initial, log, newProcessorMetrics())
	if err := processor.ProcessEvents(events); err != nil {
		return desk.State{}, fmt.Errorf("process events: %w", err)
	}

	if err := os.MkdirAll(cfg.Outputs.Directory, 0o755); err != nil {
		return desk.State{}, fmt.Errorf("create output directory: %w", err)
	}

	if err := writeAuditLog(cfg, processor.OutputRecords()); err != nil {
		return desk.State{}, fmt.Errorf("write audit log: %w", err)
	}
	if err := writeSnapshots(cfg, processor.OutputRecords()); err != nil {
		return desk.State{}, fmt.Errorf("write snapshots: %w", err)
	}
	if err := writeFinalState(cfg, processor.State()); err != nil {
		return desk.State{}, fmt.Errorf("write final state: %w", err)
	}

	return processor.State(), nil
}

func writeAuditLog(cfg *config.Config, records []desk.OutputRecord) error {
	f, err := os.Create(filepath.Join(cfg.Outputs.Directory, cfg.Outputs.AuditLog))
	if err != nil {
		return err
	}
	defer f.Close()

	w := ioadapter.NewAuditLogWriter(f)
	if err := w.WriteAll(records); err != nil {
		return err
	}
	return w.Close()
}

func writeSnapshots(cfg *config.Config, records []desk.OutputRecord) error {
	f, err := os.Create(filepath.Join(cfg.Outputs.Directory, cfg.Outputs.Snapshots))
	if err != nil {
		return err
	}
	defer f.Close()

	snapshots := ioadapter.ExtractSnapshots(records)
	return ioadapter.WriteSnapshots(f, snapshots)
}

func writeFinalState(cfg *config.Config, s desk.State) error {
	f, err := os.Create(filepath.Join(cfg.Outputs.Directory, cfg.Outputs.FinalState))
	if err != nil {
		return err
	}
	defer f.Close()

	return ioadapter.WriteFinalState(f, s)
}

func printSummaryIfRequested(requested bool, s desk.State) error {
	if !requested {
		return nil
	}
	md, err := report.Render(s)
	if err != nil {
		return err
	}
	printMarkdown(md)
	return nil
}
