package domain

import (
	"regexp"
	"strings"
)

const minReportLength = 20

var (
	// archivePrefixRe matches the archive receipt time in front of a METAR.
	archivePrefixRe = regexp.MustCompile(`^\d{10,14}\s+`)

	// zuluRe matches the DDHHMMZ issuance token.
	zuluRe = regexp.MustCompile(`(\d{6})Z`)
)

// ExtractMETAR collects every well-formed METAR/SPECI line in archive order.
// Malformed candidates are dropped silently.
func ExtractMETAR(lines []string) []Report {
	var reports []Report
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if ClassifyLine(line, ReportMETAR, false) != LineMetarCandidate {
			continue
		}
		if text, ok := normalizeMetarLine(line); ok {
			reports = append(reports, newReport(text))
		}
	}
	return reports
}

// normalizeMetarLine strips archive decoration from a candidate line and
// reports whether what remains is a structurally valid report.
func normalizeMetarLine(line string) (string, bool) {
	switch {
	case archivePrefixRe.MatchString(line):
		line = archivePrefixRe.ReplaceAllString(line, "")
	case strings.Contains(line, "->"):
		_, after, _ := strings.Cut(line, "->")
		line = strings.TrimSpace(after)
	}

	text := collapseSpaces(line)
	if len(text) <= minReportLength || !zuluRe.MatchString(text) {
		return "", false
	}
	return text, true
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
