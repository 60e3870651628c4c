package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/couchcryptid/metar-archive-etl/internal/app"
	"github.com/couchcryptid/metar-archive-etl/internal/config"
	"github.com/couchcryptid/metar-archive-etl/internal/domain"
	"github.com/couchcryptid/metar-archive-etl/internal/observability"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var flagPrint bool

var monthCmd = &cobra.Command{
	Use:   "month STATION YEAR MONTH",
	Short: "Fetch one month for a station and save it",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		year, month, err := parseYearMonth(args[1], args[2])
		if err != nil {
			return err
		}
		rt, err := reportType()
		if err != nil {
			return err
		}
		unit, err := domain.NewFetchUnit(args[0], year, month, rt)
		if err != nil {
			return err
		}

		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			result, text := a.Orchestrator.RunMonth(ctx, unit)
			out := cmd.OutOrStdout()
			if flagPrint && text != "" {
				fmt.Fprintln(out, text)
				return nil
			}
			printMonthTable(out, []domain.MonthResult{result})
			if !result.Success {
				return fmt.Errorf("%s: %s", unit.Key(), result.Error)
			}
			return nil
		})
	},
}

var yearCmd = &cobra.Command{
	Use:   "year STATION YEAR",
	Short: "Fetch all twelve months of a year for a station",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		year, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid year %q", args[1])
		}
		rt, err := reportType()
		if err != nil {
			return err
		}

		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			result, err := a.Orchestrator.RunBatch(ctx, args[0], year, rt)
			out := cmd.OutOrStdout()
			if result.Folder != "" {
				fmt.Fprintf(out, "%s (%s)\n", result.Folder, a.Store.Root())
				printMonthTable(out, result.Results)
				fmt.Fprintf(out, "\n%d/12 months, %s reports\n", result.TotalSuccess, humanize.Comma(int64(result.TotalReports)))
			}
			return err
		})
	},
}

func init() {
	monthCmd.Flags().BoolVar(&flagPrint, "print", false, "write the normalized reports to stdout instead of a summary")
}

// withApp loads the environment config, wires the pipeline, and runs fn
// until it returns or the process is interrupted.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := observability.NewCLILogger(cmd.ErrOrStderr(), cfg)

	a, err := app.New(cfg, logger, observability.NewMetricsForTesting(), nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("sink close error", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return fn(ctx, a)
}

func parseYearMonth(y, m string) (int, int, error) {
	year, err := strconv.Atoi(y)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year %q", y)
	}
	month, err := strconv.Atoi(m)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q", m)
	}
	return year, month, nil
}

func printMonthTable(w io.Writer, results []domain.MonthResult) {
	for _, r := range results {
		status := "ok"
		detail := r.Filename
		if !r.Success {
			status = string(r.Outcome)
			detail = r.Error
		}
		fmt.Fprintf(w, "  %-10s %8s  %-30s %s\n", r.MonthName, humanize.Comma(int64(r.Reports)), status, detail)
	}
}
