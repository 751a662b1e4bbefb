package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/sunfmin/mcp-go-calculator/pkg/calculator"
	"github.com/sunfmin/mcp-go-calculator/pkg/config"
	"github.com/sunfmin/mcp-go-calculator/pkg/fixture"
	"github.com/sunfmin/mcp-go-calculator/pkg/logger"
	"github.com/sunfmin/mcp-go-calculator/pkg/mcp"
)

type app struct {
	configPath string
	logLevel   string

	cfg      *config.Config
	closeLog func() error
	calc     *calculator.Calculator
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{calc: calculator.New()}

	root := &cobra.Command{
		Use:   "mcp-go-calculator",
		Short: "Integer calculator exposed as an MCP server",
		Long:  `mcp-go-calculator serves integer division and subtraction tools over the
MCP stdio transport. Run without a subcommand to start the server.

Pass -- before negative operands, e.g. "mcp-go-calculator subtract -- -4 2".`,
		Version:           Version,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.closeLog != nil {
				return a.closeLog()
			}
			return nil
		},
		RunE: a.serve,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to the YAML configuration file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level override: debug, info, warn, error")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the MCP server on stdio",
			Args:  cobra.NoArgs,
			RunE:  a.serve,
		},
		&cobra.Command{
			Use:   "divide DIVIDEND DIVISOR",
			Short: "Print DIVIDEND / DIVISOR truncated toward zero",
			Args:  cobra.ExactArgs(2),
			RunE:  a.binary(calculator.OpDivide),
		},
		&cobra.Command{
			Use:   "subtract MINUEND SUBTRAHEND",
			Short: "Print MINUEND - SUBTRAHEND",
			Args:  cobra.ExactArgs(2),
			RunE:  a.binary(calculator.OpSubtract),
		},
		a.checkCmd(),
	)

	return root
}

// setup loads configuration and configures logging before any command runs.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}

	w, closeLog, err := cfg.OpenLogOutput()
	if err != nil {
		return err
	}
	if err := logger.Configure(cfg.Log.Level, w); err != nil {
		closeLog()
		return err
	}

	a.cfg = cfg
	a.closeLog = closeLog
	logger.Debug("Configuration loaded", "path", cfg.Path, "level", cfg.Log.Level)
	return nil
}

func (a *app) serve(cmd *cobra.Command, args []string) error {
	logger.Info("Starting MCP Go Calculator", "version", Version)

	calcServer := mcp.NewMCPCalculatorServer(a.cfg.Server.Name, Version)

	logger.Info("Starting MCP server...")
	if err := server.ServeStdio(calcServer.Server()); err != nil {
		logger.Error("Server error", "error", err)
		return err
	}
	return nil
}

func (a *app) binary(op calculator.Operation) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		x, err := parseOperand(args[0])
		if err != nil {
			return err
		}
		y, err := parseOperand(args[1])
		if err != nil {
			return err
		}

		result, err := a.calc.Apply(op, x, y)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), result)
		return nil
	}
}

func parseOperand(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid operand %q: %w", s, err)
	}
	return n, nil
}

func (a *app) checkCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "check FIXTURE.csv",
		Short: "Verify subtraction against a CSV fixture of minuend,subtrahend,expected rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			cases, err := fixture.LoadSubtractionCases(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			report := fixture.Verify(a.calc, cases)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			} else {
				for _, r := range report.Results {
					fmt.Fprintln(out, r)
				}
				fmt.Fprintf(out, "%d passed, %d failed\n", report.Passed, report.Failed)
			}

			if !report.OK() {
				return fmt.Errorf("%d of %d fixture cases failed", report.Failed, len(cases))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")

	return cmd
}
