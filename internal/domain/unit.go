package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var stationRe = regexp.MustCompile(`^[A-Z0-9]{4}$`)

// FetchUnit identifies one month of one report type for one station. All
// fields are in archive request form: YYYY, MM and DD strings.
type FetchUnit struct {
	Station    string     `json:"station"`
	Year       string     `json:"year"`
	Month      string     `json:"month"`
	ReportType ReportType `json:"report_type"`
	EndDay     string     `json:"end_day"`
}

// NewFetchUnit validates its inputs and derives the end day of the month.
func NewFetchUnit(station string, year, month int, rt ReportType) (FetchUnit, error) {
	station, err := NormalizeStation(station)
	if err != nil {
		return FetchUnit{}, err
	}
	if err := ValidateYear(year); err != nil {
		return FetchUnit{}, err
	}
	if month < 1 || month > 12 {
		return FetchUnit{}, fmt.Errorf("month %d out of range 1-12", month)
	}
	if rt != ReportMETAR && rt != ReportTAF {
		return FetchUnit{}, fmt.Errorf("unknown report type %q", rt)
	}

	return FetchUnit{
		Station:    station,
		Year:       strconv.Itoa(year),
		Month:      fmt.Sprintf("%02d", month),
		ReportType: rt,
		EndDay:     EndOfMonth(year, month),
	}, nil
}

// NormalizeStation upper-cases an ICAO location indicator and checks its shape.
func NormalizeStation(station string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(station))
	if !stationRe.MatchString(s) {
		return "", fmt.Errorf("invalid station %q: want 4 letters or digits", station)
	}
	return s, nil
}

// ValidateYear rejects years that do not render as four digits.
func ValidateYear(year int) error {
	if year < 1000 || year > 9999 {
		return errors.New("year must have 4 digits")
	}
	return nil
}

// MonthNumber returns the numeric month of the unit.
func (u FetchUnit) MonthNumber() int {
	n, _ := strconv.Atoi(u.Month)
	return n
}

// Closed reports whether the unit's month has fully ended at now (UTC), so
// the archive will not gain further reports for it.
func (u FetchUnit) Closed(now time.Time) bool {
	year, _ := strconv.Atoi(u.Year)
	next := time.Date(year, time.Month(u.MonthNumber())+1, 1, 0, 0, 0, 0, time.UTC)
	return !now.Before(next)
}

// FileName is the canonical month file name for the unit.
func (u FetchUnit) FileName() string {
	return MonthFileName(u.ReportType, u.Year, u.Month)
}

// Key identifies the unit in caches and logs, e.g. "METAR/VOGA/2024-01".
func (u FetchUnit) Key() string {
	return fmt.Sprintf("%s/%s/%s-%s", u.ReportType, u.Station, u.Year, u.Month)
}

func (u FetchUnit) String() string { return u.Key() }
