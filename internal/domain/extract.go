package domain

import "strings"

// ExtractReports runs a raw archive response through classification,
// extraction and sorting for the given report type.
func ExtractReports(raw string, rt ReportType) []Report {
	lines := splitLines(raw)

	var reports []Report
	if rt == ReportTAF {
		reports = AssembleTAF(lines)
	} else {
		reports = ExtractMETAR(lines)
	}
	return SortReports(reports)
}

// Extract returns the canonical file body for a raw archive response: one
// report per line, no trailing newline. An empty string means no report
// survived extraction.
func Extract(raw string, rt ReportType) string {
	return JoinReports(ExtractReports(raw, rt))
}

// JoinReports renders reports in canonical file form.
func JoinReports(reports []Report) string {
	texts := make([]string, len(reports))
	for i, r := range reports {
		texts[i] = r.Text
	}
	return strings.Join(texts, "\n")
}

// CountReports counts the reports in a canonical file body. TAF files only
// count lines carrying the TAF marker.
func CountReports(text string, rt ReportType) int {
	n := 0
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if rt == ReportTAF && !strings.Contains(line, "TAF") {
			continue
		}
		n++
	}
	return n
}

func splitLines(raw string) []string {
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
