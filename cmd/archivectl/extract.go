package main

import (
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/metar-archive-etl/internal/domain"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract FILE",
	Short: "Extract normalized reports from a saved archive response",
	Long: `Read a raw archive response from FILE ("-" for stdin) and write the normalized
reports to stdout, one per line, sorted by issue time. Nothing is fetched.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := reportType()
		if err != nil {
			return err
		}
		raw, err := readInput(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}

		text := domain.Extract(string(raw), rt)
		if text == "" {
			return fmt.Errorf("no valid %s reports in %s", rt, args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s reports\n", humanize.Comma(int64(domain.CountReports(text, rt))), rt)
		return nil
	},
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}
