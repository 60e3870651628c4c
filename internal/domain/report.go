package domain

import (
	"fmt"
	"strings"
)

// ReportType selects which bulletin family is fetched and extracted.
type ReportType string

const (
	ReportMETAR ReportType = "METAR"
	ReportTAF   ReportType = "TAF"
)

// ParseReportType accepts "metar" or "taf" in any case.
func ParseReportType(s string) (ReportType, error) {
	switch ReportType(strings.ToUpper(strings.TrimSpace(s))) {
	case ReportMETAR:
		return ReportMETAR, nil
	case ReportTAF:
		return ReportTAF, nil
	default:
		return "", fmt.Errorf("unknown report type %q", s)
	}
}

func (t ReportType) String() string { return string(t) }

// Report is one normalized bulletin. Text never contains a newline.
type Report struct {
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"` // DDHHMM digits of the first Zulu token
}

func newReport(text string) Report {
	return Report{Text: text, Timestamp: ReportTimestamp(text)}
}
