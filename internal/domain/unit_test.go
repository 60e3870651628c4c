package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFetchUnit(t *testing.T) {
	unit, err := NewFetchUnit(" voga ", 2024, 2, ReportMETAR)
	require.NoError(t, err)

	assert.Equal(t, FetchUnit{Station: "VOGA", Year: "2024", Month: "02", ReportType: ReportMETAR, EndDay: "29"}, unit)
	assert.Equal(t, "METAR202402.txt", unit.FileName())
	assert.Equal(t, "METAR/VOGA/2024-02", unit.Key())
	assert.Equal(t, 2, unit.MonthNumber())

	unit, err = NewFetchUnit("VOGA", 2023, 2, ReportTAF)
	require.NoError(t, err)
	assert.Equal(t, "28", unit.EndDay)
}

func TestFetchUnit_Closed(t *testing.T) {
	oct, err := NewFetchUnit("VOGA", 2026, 10, ReportMETAR)
	require.NoError(t, err)
	dec, err := NewFetchUnit("VOGA", 2025, 12, ReportTAF)
	require.NoError(t, err)

	assert.False(t, oct.Closed(time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)))
	assert.False(t, oct.Closed(time.Date(2026, 10, 31, 23, 59, 59, 0, time.UTC)))
	assert.True(t, oct.Closed(time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, oct.Closed(time.Date(2026, 9, 30, 12, 0, 0, 0, time.UTC)), "future month")

	assert.False(t, dec.Closed(time.Date(2025, 12, 31, 12, 0, 0, 0, time.UTC)))
	assert.True(t, dec.Closed(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestNewFetchUnit_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		station string
		year    int
		month   int
		rt      ReportType
		errText string
	}{
		{"short station", "VOG", 2024, 1, ReportMETAR, "station"},
		{"punctuation", "VO-A", 2024, 1, ReportMETAR, "station"},
		{"year", "VOGA", 24, 1, ReportMETAR, "year"},
		{"month zero", "VOGA", 2024, 0, ReportMETAR, "month"},
		{"month thirteen", "VOGA", 2024, 13, ReportMETAR, "month"},
		{"report type", "VOGA", 2024, 1, ReportType("SYNOP"), "report type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFetchUnit(tt.station, tt.year, tt.month, tt.rt)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

func TestNewMonthResult(t *testing.T) {
	unit, err := NewFetchUnit("VOGA", 2024, 3, ReportTAF)
	require.NoError(t, err)

	ok := NewMonthResult(unit, AttemptOutcome{Kind: OutcomeSuccess, Reports: 42, Attempts: 1})
	assert.True(t, ok.Success)
	assert.Equal(t, "March", ok.MonthName)
	assert.Equal(t, 42, ok.Reports)
	assert.Empty(t, ok.Error)

	empty := NewMonthResult(unit, AttemptOutcome{Kind: OutcomeEmptyResult, Attempts: 3})
	assert.False(t, empty.Success)
	assert.Equal(t, "No TAF data", empty.Error)

	failed := NewMonthResult(unit, AttemptOutcome{Kind: OutcomeConnectionFailure, Message: "dial tcp: refused", Attempts: 3})
	assert.Equal(t, OutcomeConnectionFailure, failed.Outcome)
	assert.Equal(t, "dial tcp: refused", failed.Error)
}

func TestBatchResult_Append(t *testing.T) {
	var b BatchResult
	b.Append(MonthResult{Month: "01", Success: true, Reports: 10})
	b.Append(MonthResult{Month: "02", Success: false, Reports: 0, Error: "No METAR data"})
	b.Append(MonthResult{Month: "03", Success: true, Reports: 5})

	assert.Len(t, b.Results, 3)
	assert.Equal(t, 2, b.TotalSuccess)
	assert.Equal(t, 15, b.TotalReports)
}
