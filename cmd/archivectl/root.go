package main

import (
	"fmt"
	"os"

	"github.com/couchcryptid/metar-archive-etl/internal/domain"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

var flagType string

var rootCmd = &cobra.Command{
	Use:           "archivectl",
	Short:         "Fetch, extract and verify archived METAR/TAF bulletins",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagType, "type", "t", "METAR", "report type (METAR or TAF)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(monthCmd)
	rootCmd.AddCommand(yearCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(verifyCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "archivectl %s (commit: %s)\n", version, commit)
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func reportType() (domain.ReportType, error) {
	return domain.ParseReportType(flagType)
}
