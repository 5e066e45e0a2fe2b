// Command econsim solves the multi-period labor and savings problem for a set
// of land-holding agents and reports how much an extra unit of starting
// capital is worth to each of them.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/talgya/econsim/internal/config"
	"github.com/talgya/econsim/internal/engine"
	"github.com/talgya/econsim/internal/report"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	configPath string
	verbose    bool
	format     string
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "econsim",
		Short: "Solve a finite-horizon labor/savings economy by backward induction",
		Long: `econsim grows a planning horizon one period at a time, re-solving the
whole sequence at each length, then prints the marginal value of initial
capital and every period's agents.

Without --config it runs the reference economy: lands [2, 2, 1], two agents
on lands 0 and 1, five periods.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "YAML run configuration (defaults to the reference economy)")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log per-period convergence and clamp diagnostics")
	f.StringVar(&opts.format, "format", "text", "report format: text or json")
	return cmd
}

func run(cmd *cobra.Command, opts options) error {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	runID := uuid.NewString()
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	})).With("run_id", runID)
	slog.SetDefault(logger)

	write := report.Text
	switch opts.format {
	case "text":
	case "json":
		write = report.JSON
	default:
		err := fmt.Errorf("unknown format %q: want text or json", opts.format)
		slog.Error("bad flags", "error", err)
		return err
	}

	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		cfg, err = config.Load(opts.configPath)
		if err != nil {
			slog.Error("failed to load config", "path", opts.configPath, "error", err)
			return err
		}
		slog.Info("config loaded", "path", opts.configPath)
	}

	sim, err := engine.NewSimulation(cfg)
	if err != nil {
		slog.Error("invalid economy", "error", err)
		return err
	}
	slog.Info("economy ready",
		"lands", sim.Map.Len(),
		"agents", len(sim.Seed.Agents),
		"depth", cfg.HorizonDepth,
	)

	res, err := sim.Run()
	if err != nil {
		slog.Error("solve failed", "error", err)
		return err
	}
	slog.Info("run complete",
		"periods", len(res.Trajectory),
		"dV_dC", res.Sensitivity,
		"steps", res.Stats.Steps,
		"clamps", res.Stats.Clamps,
	)

	return write(cmd.OutOrStdout(), res)
}
