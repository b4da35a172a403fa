package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/jfkriz/togglesolve/config"
	"github.com/jfkriz/togglesolve/factory"
	"github.com/jfkriz/togglesolve/machine"
	"github.com/jfkriz/togglesolve/metrics"
)

type solveFlags struct {
	objective    string
	configPath   string
	workers      int
	backend      string
	timeout      time.Duration
	maxFreeVars  int
	abortOnError bool
	certify      bool
	metricsFile  string
	perMachine   bool
}

func newSolveCommand() *cobra.Command {
	var f solveFlags
	c := &cobra.Command{
		Use:   "solve <input-file>",
		Short: "Solve every machine in a file and print the totals",
		Long: `Parse the machine records in <input-file>, solve each one, and print the
summed minimum presses per objective. Machines that cannot be solved are
excluded from the totals and reported on stderr unless --abort-on-error is set.

Settings resolve as flags, then TOGGLESOLVE_* environment variables, then the
--config file, then built-in defaults.

Examples:
  togglesolve solve input.txt
  togglesolve solve --objective lights --max-free-vars 30 input.txt
  togglesolve solve --backend pb --timeout 10s --workers 4 input.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd, args[0], &f)
		},
	}

	fl := c.Flags()
	fl.StringVarP(&f.objective, "objective", "o", "both", "objective: lights, counters or both")
	fl.StringVarP(&f.configPath, "config", "c", "", "YAML config file")
	fl.IntVarP(&f.workers, "workers", "w", 0, "machines solved concurrently")
	fl.StringVar(&f.backend, "backend", "", "counter backend: pb or search")
	fl.DurationVar(&f.timeout, "timeout", 0, "per-machine counter solve budget (0 disables)")
	fl.IntVar(&f.maxFreeVars, "max-free-vars", 0, "largest free-variable count enumerated for lights")
	fl.BoolVar(&f.certify, "certify", false, "re-prove every lights minimum with a SAT solver")
	fl.BoolVar(&f.abortOnError, "abort-on-error", false, "stop at the first machine that cannot be solved")
	fl.StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus text metrics to this file")
	fl.BoolVar(&f.perMachine, "per-machine", false, "print each machine's minimum")

	return c
}

// resolveConfig layers explicitly set flags over config.Load.
func resolveConfig(cmd *cobra.Command, f *solveFlags) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Workers = f.workers
	}
	if flags.Changed("backend") {
		cfg.Counters.Backend = f.backend
	}
	if flags.Changed("timeout") {
		cfg.Counters.Timeout = f.timeout
	}
	if flags.Changed("max-free-vars") {
		cfg.Lights.MaxFreeVars = f.maxFreeVars
	}
	if flags.Changed("certify") {
		cfg.Lights.Certify = f.certify
	}
	if flags.Changed("abort-on-error") {
		cfg.AbortOnError = f.abortOnError
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if v, _ := cmd.Flags().GetString("log-format"); v != "" {
		cfg.Log.Format = v
	}

	return cfg, cfg.Validate()
}

func runSolve(cmd *cobra.Command, filename string, f *solveFlags) error {
	cfg, err := resolveConfig(cmd, f)
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(cmd.ErrOrStderr())

	parser, err := machine.NewParser()
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}
	machines, err := parser.ParseFile(filename)
	var rejected machine.Rejections
	if err != nil && (!errors.As(err, &rejected) || cfg.AbortOnError) {
		return fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	for _, le := range rejected {
		logger.Warn("machine rejected",
			slog.Int("machine", le.MachineID),
			slog.Int("line", le.Line),
			slog.String("reason", factory.Outcome(le.Err)),
			slog.Any("error", le.Err))
	}
	logger.Info("parsed input",
		slog.String("file", filename),
		slog.Int("machines", len(machines)),
		slog.Int("rejected", len(rejected)))

	var (
		opts = append(cfg.FactoryOptions(logger), factory.WithObserver(progress(logger)))
		reg  *prometheus.Registry
	)
	if f.metricsFile != "" {
		reg = prometheus.NewRegistry()
		opts = append(opts, factory.WithObserver(metrics.NewObserver(reg)))
	}
	orch := factory.New(opts...)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	var aggs []factory.Aggregate
	switch f.objective {
	case "both":
		var rep factory.Report
		rep, err = orch.Run(ctx, machines)
		aggs = []factory.Aggregate{rep.Lights, rep.Counters}
	default:
		obj, perr := factory.ParseObjective(f.objective)
		if perr != nil {
			return perr
		}
		var agg factory.Aggregate
		if obj == factory.Lights {
			agg, err = orch.SolveLights(ctx, machines)
		} else {
			agg, err = orch.SolveCounters(ctx, machines)
		}
		aggs = []factory.Aggregate{agg}
	}
	if err != nil {
		return err
	}

	printReport(cmd.OutOrStdout(), machines, rejected, aggs, f.perMachine)

	if reg != nil {
		if err = prometheus.WriteToTextfile(f.metricsFile, reg); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}

	return nil
}

// progress logs one line per machine and objective as work starts.
func progress(logger *slog.Logger) factory.Observer {
	return factory.ObserverFunc(func(e factory.Event) {
		if e.Stage != factory.StageParsed {
			return
		}
		logger.Info("solving machine",
			slog.String("objective", e.Objective.String()),
			slog.String("progress", fmt.Sprintf("%d/%d", e.Index+1, e.Total)),
			slog.Int("machine", e.MachineID))
	})
}

// printReport writes per-objective totals. Rejected records count as
// excluded machines for every objective.
func printReport(w io.Writer, machines []*machine.Machine, rejected machine.Rejections, aggs []factory.Aggregate, perMachine bool) {
	if perMachine {
		r := 0
		for i, m := range machines {
			for ; r < len(rejected) && rejected[r].MachineID < m.ID; r++ {
				fmt.Fprintf(w, "machine %d: rejected\n", rejected[r].MachineID)
			}
			fmt.Fprintf(w, "machine %d:", m.ID)
			for _, a := range aggs {
				if a.Presses[i] < 0 {
					fmt.Fprintf(w, " %s=excluded", a.Objective)
					continue
				}
				fmt.Fprintf(w, " %s=%d", a.Objective, a.Presses[i])
			}
			fmt.Fprintln(w)
		}
		for ; r < len(rejected); r++ {
			fmt.Fprintf(w, "machine %d: rejected\n", rejected[r].MachineID)
		}
	}
	for _, a := range aggs {
		var (
			total    = len(a.Presses) + len(rejected)
			excluded = len(a.Presses) - a.Solved + len(rejected)
		)
		if excluded == 0 {
			fmt.Fprintf(w, "%s: %d\n", a.Objective, a.Total)
			continue
		}
		fmt.Fprintf(w, "%s: %d (%d of %d machines excluded)\n", a.Objective, a.Total, excluded, total)
	}
}
