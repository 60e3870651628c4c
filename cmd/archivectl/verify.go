package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/couchcryptid/metar-archive-etl/internal/adapter/filestore"
	"github.com/couchcryptid/metar-archive-etl/internal/domain"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	folderRe    = regexp.MustCompile(`^(METAR|TAF)_([A-Z0-9]{4})_(\d{4})$`)
	monthFileRe = regexp.MustCompile(`^(METAR|TAF)(\d{4})(\d{2})\.txt$`)
	prefixRe    = regexp.MustCompile(`^\d{12}\s`)
	zuluRe      = regexp.MustCompile(`\d{6}Z`)
)

var verifyCmd = &cobra.Command{
	Use:   "verify BATCH_DIR",
	Short: "Check a batch folder for naming, content and ordering problems",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if code := runVerify(cmd.OutOrStdout(), args[0]); code != 0 {
			return fmt.Errorf("verification failed for %s", args[0])
		}
		return nil
	},
}

// phase tracks pass/fail for a verification phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// monthFile is one month file of a batch folder, already read.
type monthFile struct {
	name  string
	lines []string
}

// batchDir is a batch folder parsed from its name.
type batchDir struct {
	path       string
	reportType domain.ReportType
	station    string
	year       string
	files      []monthFile
}

func runVerify(w io.Writer, dir string) int {
	fmt.Fprintf(w, "=== Verifying %s ===\n\n", dir)

	b, naming, err := loadBatchDir(dir)
	if err != nil {
		fmt.Fprintf(w, "FATAL: %v\n", err)
		return 1
	}

	phases := []*phase{
		naming,
		verifyLines(b),
		verifyOrder(b),
		verifyManifest(b),
	}

	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-36s %s\n", p.name, status)
	}

	total := 0
	for _, f := range b.files {
		total += len(f.lines)
	}
	fmt.Fprintf(w, "\nFiles: %d, reports: %s\n", len(b.files), humanize.Comma(int64(total)))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll checks passed.")
		return 0
	}
	fmt.Fprintln(w, "\nVerification FAILED.")
	return 1
}

// ── Phase 1: Naming ──

func loadBatchDir(dir string) (batchDir, *phase, error) {
	p := &phase{name: "Phase 1: Naming"}
	dir = filepath.Clean(dir)

	m := folderRe.FindStringSubmatch(filepath.Base(dir))
	if m == nil {
		return batchDir{}, nil, fmt.Errorf("%s is not a batch folder ({TYPE}_{STATION}_{YYYY})", filepath.Base(dir))
	}
	b := batchDir{path: dir, reportType: domain.ReportType(m[1]), station: m[2], year: m[3]}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return batchDir{}, nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, e := range entries {
		if e.IsDir() {
			p.errorf("unexpected directory %s", e.Name())
			continue
		}
		fm := monthFileRe.FindStringSubmatch(e.Name())
		if fm == nil {
			p.errorf("unexpected file %s", e.Name())
			continue
		}
		if domain.ReportType(fm[1]) != b.reportType {
			p.errorf("%s: report type %s does not match folder %s", e.Name(), fm[1], b.reportType)
		}
		if fm[2] != b.year {
			p.errorf("%s: year %s does not match folder %s", e.Name(), fm[2], b.year)
		}
		if fm[3] < "01" || fm[3] > "12" {
			p.errorf("%s: month %s out of range", e.Name(), fm[3])
		}

		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return batchDir{}, nil, err
		}
		b.files = append(b.files, monthFile{name: e.Name(), lines: splitNonEmpty(string(data))})
	}
	return b, p, nil
}

// ── Phase 2: Line invariants ──

func verifyLines(b batchDir) *phase {
	p := &phase{name: "Phase 2: Line invariants"}

	for _, f := range b.files {
		if len(f.lines) == 0 {
			p.errorf("%s: file has no reports", f.name)
			continue
		}
		for i, line := range f.lines {
			checkLine(p, b.reportType, fmt.Sprintf("%s:%d", f.name, i+1), line)
		}

		text := strings.Join(f.lines, "\n")
		if again := domain.Extract(text, b.reportType); again != text {
			p.errorf("%s: re-extraction changes the file", f.name)
		}
	}
	return p
}

func checkLine(p *phase, rt domain.ReportType, where, line string) {
	switch {
	case strings.HasPrefix(line, "<"), strings.HasPrefix(line, "#"):
		p.errorf("%s: archive markup left in output", where)
	case prefixRe.MatchString(line):
		p.errorf("%s: archive timestamp prefix not stripped", where)
	case line != strings.TrimSpace(line), strings.Contains(line, "  "):
		p.errorf("%s: whitespace not collapsed", where)
	case !zuluRe.MatchString(line):
		p.errorf("%s: no DDHHMMZ issue time", where)
	case rt == domain.ReportTAF && !strings.Contains(line, "TAF"):
		p.errorf("%s: TAF line without TAF marker", where)
	case rt == domain.ReportMETAR && !strings.Contains(line, "METAR") && !strings.Contains(line, "SPECI"):
		p.errorf("%s: line is neither METAR nor SPECI", where)
	}
}

// ── Phase 3: Timestamp order ──

func verifyOrder(b batchDir) *phase {
	p := &phase{name: "Phase 3: Timestamp order"}

	for _, f := range b.files {
		prev := ""
		for i, line := range f.lines {
			ts := domain.ReportTimestamp(line)
			if ts < prev {
				p.errorf("%s:%d: %sZ issued before previous report %sZ", f.name, i+1, ts, prev)
			}
			prev = ts
		}
	}
	return p
}

// ── Phase 4: Manifest ──

func verifyManifest(b batchDir) *phase {
	p := &phase{name: "Phase 4: Manifest"}

	path := filestore.ManifestPath(filepath.Dir(b.path), filepath.Base(b.path))
	m, err := filestore.ReadManifest(path)
	if os.IsNotExist(err) {
		return p
	}
	if err != nil {
		p.errorf("%v", err)
		return p
	}

	counts := make(map[string]int, len(b.files))
	for _, f := range b.files {
		counts[f.name] = domain.CountReports(strings.Join(f.lines, "\n"), b.reportType)
	}

	for _, r := range m.Results {
		name := domain.MonthFileName(b.reportType, b.year, r.Month)
		n, ok := counts[name]
		switch {
		case r.Success && !ok:
			p.errorf("%s: listed as saved but missing", name)
		case r.Success && n != r.Reports:
			p.errorf("%s: manifest says %d reports, file has %d", name, r.Reports, n)
		case !r.Success && ok:
			p.errorf("%s: present but manifest records %s", name, r.Outcome)
		}
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	if total != m.TotalReports {
		p.errorf("manifest total %d, files total %d", m.TotalReports, total)
	}
	return p
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
