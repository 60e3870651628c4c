package domain

// MonthFileName returns "{METAR|TAF}{YYYY}{MM}.txt".
func MonthFileName(rt ReportType, year, month string) string {
	return string(rt) + year + month + ".txt"
}

// BatchFolderName returns "{METAR|TAF}_{STATION}_{YYYY}".
func BatchFolderName(rt ReportType, station, year string) string {
	return string(rt) + "_" + station + "_" + year
}
