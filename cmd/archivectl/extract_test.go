package main

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func runRoot(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
		flagType = "METAR"
	})
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestExtractCommand_File(t *testing.T) {
	raw := "<pre>\n202401010030 METAR VOGA 010030Z 12009KT CAVOK 28/22 Q1012 NOSIG=\n" +
		"202401010000 METAR VOGA 010000Z 12008KT  CAVOK 28/22 Q1012 NOSIG=\n</pre>\n"
	path := filepath.Join(t.TempDir(), "response.txt")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	stdout, stderr, err := runRoot(t, "", "extract", path, "--type", "METAR")
	require.NoError(t, err)

	assert.Equal(t,
		"METAR VOGA 010000Z 12008KT CAVOK 28/22 Q1012 NOSIG=\nMETAR VOGA 010030Z 12009KT CAVOK 28/22 Q1012 NOSIG=\n",
		stdout)
	assert.Contains(t, stderr, "2 METAR reports")
}

func TestExtractCommand_StdinTAF(t *testing.T) {
	raw := "202401010500 TAF VOGA 010500Z 0106/0206 09008KT 9999 SCT020\n      TEMPO 0112/0116 4000 TSRA=\n"

	stdout, _, err := runRoot(t, raw, "extract", "-", "-t", "taf")
	require.NoError(t, err)
	assert.Equal(t, "TAF VOGA 010500Z 0106/0206 09008KT 9999 SCT020 TEMPO 0112/0116 4000 TSRA=\n", stdout)
}

func TestExtractCommand_NoReports(t *testing.T) {
	_, _, err := runRoot(t, "<html>nothing</html>", "extract", "-", "--type", "METAR")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no valid METAR reports")
}

func TestExtractCommand_BadType(t *testing.T) {
	_, _, err := runRoot(t, "", "extract", "-", "--type", "SYNOP")
	require.Error(t, err)
}

func TestParseYearMonth(t *testing.T) {
	y, m, err := parseYearMonth("2024", "02")
	require.NoError(t, err)
	assert.Equal(t, 2024, y)
	assert.Equal(t, 2, m)

	_, _, err = parseYearMonth("20x4", "02")
	require.Error(t, err)
	_, _, err = parseYearMonth("2024", "feb")
	require.Error(t, err)
}
