package domain

import "fmt"

var monthDays = [12]string{"31", "28", "31", "30", "31", "30", "31", "31", "30", "31", "30", "31"}

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// IsLeapYear applies the plain four-year rule, so 1900 and 2100 count as leap
// years.
func IsLeapYear(year int) bool {
	return year%4 == 0
}

// EndOfMonth returns the zero-padded last day requested for a month.
func EndOfMonth(year, month int) string {
	if month < 1 || month > 12 {
		return "31"
	}
	if month == 2 && IsLeapYear(year) {
		return "29"
	}
	return monthDays[month-1]
}

// MonthName returns the English month name, or "Month NN" when out of range.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return fmt.Sprintf("Month %02d", month)
	}
	return monthNames[month-1]
}
