package domain

import "sort"

const defaultTimestamp = "000000"

// ReportTimestamp returns the digits of the first DDHHMMZ token in text, or
// "000000" when there is none.
func ReportTimestamp(text string) string {
	m := zuluRe.FindStringSubmatch(text)
	if len(m) != 2 {
		return defaultTimestamp
	}
	return m[1]
}

// SortReports orders reports by timestamp, keeping discovery order for ties.
// The input slice is sorted in place and returned.
func SortReports(reports []Report) []Report {
	for i := range reports {
		if reports[i].Timestamp == "" {
			reports[i].Timestamp = ReportTimestamp(reports[i].Text)
		}
	}
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].Timestamp < reports[j].Timestamp
	})
	return reports
}
