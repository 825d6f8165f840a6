package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"propertysim/cmd"
	"propertysim/internal/app"
	"propertysim/internal/domain"
	"propertysim/internal/logger"
	"propertysim/internal/report"
	"propertysim/internal/util"

	"github.com/spf13/cobra"
)

const (
	formatText     = "text"
	formatMarkdown = "markdown"
	formatJson     = "json"
)

type runOptions struct {
	inputPath  string
	configPath string
	iterations int
	seed       uint64
	gross      bool
	format     string
	ledgerCsv  string
	currency   string
	style      string
}

func newRootCommand(out io.Writer) *cobra.Command {
	opts := &runOptions{}

	root := &cobra.Command{
		Use:          "simulate",
		Short:        "Monte Carlo DCF simulation for a property deal",
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			util.LoadEnv()
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVarP(&opts.inputPath, "input", "i", "", "deal request json file (- for stdin)")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "engine config yaml")
	_ = root.MarkPersistentFlagRequired("input")

	run := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation and print a report",
		RunE: func(c *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt)
			defer stop()
			return runSimulation(ctx, c, opts)
		},
	}
	run.Flags().IntVarP(&opts.iterations, "iterations", "n", 0, "number of trials (default from config)")
	run.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed for a reproducible run")
	run.Flags().BoolVar(&opts.gross, "gross", false, "exclude acquisition costs from NPV")
	run.Flags().StringVarP(&opts.format, "format", "f", formatText, "output format: text, markdown or json")
	run.Flags().StringVar(&opts.ledgerCsv, "ledger-csv", "", "write the median trial's yearly ledger to this csv file")
	run.Flags().StringVar(&opts.currency, "currency", "", "currency code for money in reports")
	run.Flags().StringVar(&opts.style, "style", "", "terminal style: dark, light or notty")

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Check a deal request without running it",
		RunE: func(c *cobra.Command, _ []string) error {
			return validateRequest(c, opts)
		},
	}

	root.AddCommand(run, validate)
	return root
}

func readRequest(path string, stdin io.Reader) (*domain.SimulationRequest, error) {
	if path == "-" {
		return domain.DecodeSimulationRequest(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()
	return domain.DecodeSimulationRequest(f)
}

func validateRequest(c *cobra.Command, opts *runOptions) error {
	cfg, err := util.LoadEngineConfig(opts.configPath)
	if err != nil {
		return err
	}
	req, err := readRequest(opts.inputPath, c.InOrStdin())
	if err != nil {
		return err
	}
	input, err := app.BuildSimulationInput(*req, nil, cfg.Simulation.DefaultIterations)
	if err != nil {
		return err
	}
	if input.Iterations < 1 || input.Iterations > cfg.Simulation.MaxIterations {
		return domain.ValidationError{
			Field:   "iterations",
			Message: fmt.Sprintf("must be between 1 and %d", cfg.Simulation.MaxIterations),
		}
	}

	fmt.Fprintf(c.OutOrStdout(), "ok: equity required %.2f over %d years\n",
		input.Assumptions.EquityRequired(), input.Assumptions.HoldingPeriodYears)
	return nil
}

func runSimulation(ctx context.Context, c *cobra.Command, opts *runOptions) error {
	log := logger.New()
	defer func() { _ = log.Sync() }()
	ctx = logger.WithContext(ctx, log)

	cfg, err := util.LoadEngineConfig(opts.configPath)
	if err != nil {
		return err
	}
	req, err := readRequest(opts.inputPath, c.InOrStdin())
	if err != nil {
		return err
	}

	if c.Flags().Changed("iterations") {
		req.Iterations = &opts.iterations
	}
	if c.Flags().Changed("seed") {
		req.Seed = &opts.seed
	}
	if c.Flags().Changed("gross") {
		includeAcquisitionCost := !opts.gross
		req.IncludeAcquisitionCost = &includeAcquisitionCost
	}

	input, err := app.BuildSimulationInput(*req, nil, cfg.Simulation.DefaultIterations)
	if err != nil {
		return err
	}

	simulationService, err := cmd.NewSimulationService(*cfg)
	if err != nil {
		return err
	}

	result, err := simulationService.Run(ctx, *input)
	if err != nil {
		return err
	}

	if opts.ledgerCsv != "" {
		if err := writeLedger(opts.ledgerCsv, result.RepresentativeLedger); err != nil {
			return err
		}
	}

	currency := opts.currency
	if currency == "" {
		currency = cfg.Report.Currency
	}
	return writeResult(c.OutOrStdout(), *result, opts.format, report.NewFormatter(currency), opts.style)
}

func writeLedger(path string, ledger []domain.YearLedger) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create ledger csv: %w", err)
	}
	defer f.Close()
	return report.WriteLedgerCSV(f, ledger)
}

func writeResult(w io.Writer, result domain.SimulationResult, format string, f report.Formatter, style string) error {
	switch format {
	case formatJson:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case formatMarkdown:
		_, err := io.WriteString(w, f.Markdown(result))
		return err
	case formatText:
		out, err := f.Terminal(result, style, 120)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	}
	return fmt.Errorf("unknown format %q", format)
}
