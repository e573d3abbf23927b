package main

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/bartolsthoorn/transportlp/lp"
	"github.com/bartolsthoorn/transportlp/record"
	"github.com/bartolsthoorn/transportlp/transport"
)

func newRootCmd(cfg config, stdout, stderr io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "transportlp",
		Short: "Solve a transportation problem and write the optimal shipping plan.",
		Long: `transportlp reads a transportation instance (sources, destinations, ` +
			`supplies, demands and unit costs), balances it with a dummy source or ` +
			`destination, solves the resulting linear program and writes one line ` +
			`per shipment to the output file.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return solve(cmd.Context(), cfg, log.New(stderr, "", log.LstdFlags))
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	flags := rootCmd.Flags()
	flags.StringVarP(&cfg.input, "input", "i", cfg.input, "instance file to read")
	flags.StringVarP(&cfg.output, "output", "o", cfg.output, "report file to write")
	flags.StringVarP(&cfg.backend, "backend", "b", cfg.backend, "LP backend (see the backends command)")
	flags.DurationVar(&cfg.timeout, "timeout", cfg.timeout, "give up on the solve after this long (0 disables)")
	flags.StringVar(&cfg.locale, "locale", cfg.locale, "report wording: pt or en")
	flags.BoolVar(&cfg.integer, "integer", cfg.integer, "solve with integer flows (needs a MIP backend)")
	flags.BoolVar(&cfg.skipDummy, "skip-dummy", cfg.skipDummy, "leave shipments of dummy nodes out of the report")
	flags.StringVar(&cfg.record, "record", cfg.record, "append the run to this SQLite database")
	flags.BoolVarP(&cfg.verbose, "verbose", "v", cfg.verbose, "log model construction and backend output")

	rootCmd.AddCommand(newBackendsCmd())
	return rootCmd
}

func newBackendsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List the available LP backends",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range lp.Backends() {
				if name == lp.DefaultBackend {
					fmt.Fprintf(cmd.OutOrStdout(), "%s (default)\n", name)
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}

// solve runs the pipeline. A run the backend finished without an optimal
// solution (including a time limit) is reported and is not an error.
//
// An unknown backend and a backend that failed to run at all are treated as
// configuration errors and exit 1, not as a run without a solution.
func solve(ctx context.Context, cfg config, logger *log.Logger) error {
	locale, err := transport.ParseLocale(cfg.locale)
	if err != nil {
		return err
	}
	if _, err := lp.Lookup(cfg.backend); err != nil {
		return err
	}

	if cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	pipeline := &transport.Pipeline{
		Solver: transport.NewSolver(
			transport.WithLogger(logger),
			transport.WithVerbose(cfg.verbose),
			transport.WithIntegerFlows(cfg.integer),
			transport.WithBackendName(cfg.backend),
			transport.WithSolveOptions(lp.WithOutput(cfg.verbose)),
		),
		Writer: transport.NewWriter(
			transport.WithLocale(locale),
			transport.WithReportLogger(logger),
			transport.WithoutDummy(cfg.skipDummy),
		),
		Logger: logger,
	}

	if cfg.record != "" {
		rec, err := record.New(cfg.record)
		if err != nil {
			return err
		}
		defer rec.Close()
		pipeline.Recorder = rec
	}

	_, err = pipeline.Run(ctx, cfg.input, cfg.output)
	var noSol *transport.NoSolutionError
	if errors.As(err, &noSol) && noSol.Err == nil {
		logger.Printf("%v; %s was not written", err, cfg.output)
		return nil
	}
	return err
}
