package domain

import "fmt"

// OutcomeKind classifies how a fetch unit resolved.
type OutcomeKind string

const (
	OutcomeSuccess           OutcomeKind = "success"
	OutcomeEmptyResult       OutcomeKind = "empty_result"
	OutcomeTransportTimeout  OutcomeKind = "transport_timeout"
	OutcomeConnectionFailure OutcomeKind = "transport_connection_failure"
	OutcomeOtherFailure      OutcomeKind = "other_failure"
)

// AttemptOutcome is the terminal result of retrying one unit. Text holds the
// canonical file body on success; Message describes the last failure.
type AttemptOutcome struct {
	Kind     OutcomeKind `json:"kind"`
	Text     string      `json:"-"`
	Reports  int         `json:"reports"`
	Message  string      `json:"message,omitempty"`
	Attempts int         `json:"attempts"`
}

// Succeeded reports whether the unit produced at least one report.
func (o AttemptOutcome) Succeeded() bool { return o.Kind == OutcomeSuccess }

// MonthResult summarizes one unit inside a batch or a single-month run.
type MonthResult struct {
	Month     string      `json:"month" yaml:"month"`
	MonthName string      `json:"month_name" yaml:"month_name"`
	Filename  string      `json:"filename" yaml:"filename"`
	Reports   int         `json:"reports" yaml:"reports"`
	Success   bool        `json:"success" yaml:"success"`
	Outcome   OutcomeKind `json:"outcome" yaml:"outcome"`
	Attempts  int         `json:"attempts" yaml:"attempts"`
	Error     string      `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewMonthResult converts a terminal outcome into the summary row for unit.
func NewMonthResult(unit FetchUnit, o AttemptOutcome) MonthResult {
	r := MonthResult{
		Month:     unit.Month,
		MonthName: MonthName(unit.MonthNumber()),
		Outcome:   o.Kind,
		Attempts:  o.Attempts,
	}
	switch o.Kind {
	case OutcomeSuccess:
		r.Success = true
		r.Reports = o.Reports
	case OutcomeEmptyResult:
		r.Error = fmt.Sprintf("No %s data", unit.ReportType)
	default:
		r.Error = o.Message
	}
	return r
}

// BatchResult aggregates the month results of one station-year. Only the
// goroutine running the batch appends to it.
type BatchResult struct {
	Station      string        `json:"station" yaml:"station"`
	Year         string        `json:"year" yaml:"year"`
	ReportType   ReportType    `json:"report_type" yaml:"report_type"`
	Folder       string        `json:"folder" yaml:"folder"`
	Results      []MonthResult `json:"results" yaml:"results"`
	TotalSuccess int           `json:"total_success" yaml:"total_success"`
	TotalReports int           `json:"total_reports" yaml:"total_reports"`
}

// Append records a resolved month and updates the totals.
func (b *BatchResult) Append(r MonthResult) {
	b.Results = append(b.Results, r)
	if r.Success {
		b.TotalSuccess++
		b.TotalReports += r.Reports
	}
}
