package pipeline

import (
	"context"
	"fmt"

	"github.com/couchcryptid/metar-archive-etl/internal/domain"
	"github.com/dustin/go-humanize"
)

// RunBatch fetches all twelve months of a year for one station, in groups
// paced by the orchestrator's PacingPolicy. A failed month is recorded and the
// batch moves on. Cancellation is honoured between units and during waits; the
// partial result is returned with ctx.Err().
func (o *Orchestrator) RunBatch(ctx context.Context, station string, year int, rt domain.ReportType) (domain.BatchResult, error) {
	units, err := YearUnits(station, year, rt)
	if err != nil {
		return domain.BatchResult{}, err
	}

	first := units[0]
	result := domain.BatchResult{
		Station:    first.Station,
		Year:       first.Year,
		ReportType: rt,
		Folder:     domain.BatchFolderName(rt, first.Station, first.Year),
		Results:    make([]domain.MonthResult, 0, len(units)),
	}

	groups := groupUnits(units, o.policy.Pacing.groupSize())
	logger := o.logger.With("station", result.Station, "year", result.Year, "report_type", rt)
	logger.Info("batch started", "folder", result.Folder, "groups", len(groups))
	start := o.clock.Now()

	for gi, group := range groups {
		logger.Info("batch group started", "group", gi+1, "of", len(groups))

		for _, unit := range group {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			month, _ := o.runUnit(ctx, unit, result.Folder)
			result.Append(month)

			if !sleepWithContext(ctx, o.clock, o.policy.Pacing.UnitDelay) {
				return result, ctx.Err()
			}
		}

		if gi < len(groups)-1 {
			logger.Debug("waiting before next group", "wait", o.policy.Pacing.GroupDelay)
			if !sleepWithContext(ctx, o.clock, o.policy.Pacing.GroupDelay) {
				return result, ctx.Err()
			}
		}
	}

	o.metrics.BatchDuration.Observe(o.clock.Since(start).Seconds())
	logger.Info("batch completed",
		"successful", fmt.Sprintf("%d/%d", result.TotalSuccess, len(units)),
		"total_reports", humanize.Comma(int64(result.TotalReports)),
	)

	if err := o.recorder.RecordBatch(ctx, result); err != nil {
		logger.Warn("record batch failed", "error", err)
	}
	return result, nil
}

// YearUnits builds the twelve month units of a year in calendar order.
func YearUnits(station string, year int, rt domain.ReportType) ([]domain.FetchUnit, error) {
	units := make([]domain.FetchUnit, 0, 12)
	for month := 1; month <= 12; month++ {
		unit, err := domain.NewFetchUnit(station, year, month, rt)
		if err != nil {
			return nil, err
		}
		units = append(units, unit)
	}
	return units, nil
}

// groupUnits splits units into contiguous groups of at most size.
func groupUnits(units []domain.FetchUnit, size int) [][]domain.FetchUnit {
	groups := make([][]domain.FetchUnit, 0, (len(units)+size-1)/size)
	for i := 0; i < len(units); i += size {
		end := min(i+size, len(units))
		groups = append(groups, units[i:end])
	}
	return groups
}
