package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/couchcryptid/metar-archive-etl/internal/domain"
	"github.com/couchcryptid/metar-archive-etl/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Orchestrator drives fetch-and-extract units with retries and persists the
// results. It runs one unit at a time; callers must not share it across
// goroutines that run units concurrently (see Scheduler).
type Orchestrator struct {
	fetcher  domain.Fetcher
	loader   Loader
	recorder Recorder
	logger   *slog.Logger
	metrics  *observability.Metrics
	policy   Policy
	clock    clockwork.Clock

	lastOutcome atomic.Value // domain.OutcomeKind
}

// New creates an Orchestrator. A nil recorder disables outcome recording and
// a nil clock uses wall-clock time.
func New(f domain.Fetcher, l Loader, r Recorder, logger *slog.Logger, metrics *observability.Metrics, policy Policy, clock clockwork.Clock) *Orchestrator {
	if r == nil {
		r = Recorders(nil)
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Orchestrator{
		fetcher:  f,
		loader:   l,
		recorder: r,
		logger:   logger,
		metrics:  metrics,
		policy:   policy,
		clock:    clock,
	}
}

// CheckReadiness returns an error while the archive looks unreachable, that is
// when the most recent unit gave up on connection failures.
func (o *Orchestrator) CheckReadiness(_ context.Context) error {
	if kind, _ := o.lastOutcome.Load().(domain.OutcomeKind); kind == domain.OutcomeConnectionFailure {
		return errors.New("archive unreachable: last unit failed to connect")
	}
	return nil
}

// FetchWithRetry fetches and extracts one unit, retrying failed attempts up to
// the policy's MaxAttempts. There is no wait after the final attempt. If ctx
// ends during a wait the last attempt's outcome is returned.
func (o *Orchestrator) FetchWithRetry(ctx context.Context, unit domain.FetchUnit) domain.AttemptOutcome {
	maxAttempts := o.policy.Retry.attempts()
	logger := o.logger.With("unit", unit.Key())

	var out domain.AttemptOutcome
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil && attempt > 1 {
			break
		}

		out = o.attempt(ctx, unit)
		out.Attempts = attempt
		o.metrics.FetchAttempts.WithLabelValues(unit.ReportType.String(), string(out.Kind)).Inc()

		if out.Succeeded() {
			logger.Debug("attempt succeeded", "attempt", attempt, "reports", out.Reports)
			return out
		}
		if attempt == maxAttempts {
			break
		}

		wait := o.policy.Retry.WaitFor(out.Kind)
		logger.Warn("attempt failed, retrying",
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"outcome", out.Kind,
			"error", out.Message,
			"wait", wait,
		)
		o.metrics.BackoffWaits.WithLabelValues(string(out.Kind)).Inc()
		if !sleepWithContext(ctx, o.clock, wait) {
			break
		}
	}

	logger.Warn("unit failed", "attempts", out.Attempts, "outcome", out.Kind, "error", out.Message)
	return out
}

// attempt runs a single fetch and extraction.
func (o *Orchestrator) attempt(ctx context.Context, unit domain.FetchUnit) domain.AttemptOutcome {
	start := o.clock.Now()
	raw, err := o.fetcher.Fetch(ctx, unit)
	o.metrics.FetchDuration.Observe(o.clock.Since(start).Seconds())
	if err != nil {
		return domain.AttemptOutcome{Kind: classifyFetchError(err), Message: err.Error()}
	}

	reports := domain.ExtractReports(raw, unit.ReportType)
	if len(reports) == 0 {
		return domain.AttemptOutcome{Kind: domain.OutcomeEmptyResult, Message: "no valid reports in response"}
	}

	text := domain.JoinReports(reports)
	return domain.AttemptOutcome{
		Kind:    domain.OutcomeSuccess,
		Text:    text,
		Reports: domain.CountReports(text, unit.ReportType),
	}
}

func classifyFetchError(err error) domain.OutcomeKind {
	switch {
	case errors.Is(err, domain.ErrTransportTimeout), errors.Is(err, context.DeadlineExceeded):
		return domain.OutcomeTransportTimeout
	case errors.Is(err, domain.ErrTransportConnection):
		return domain.OutcomeConnectionFailure
	default:
		return domain.OutcomeOtherFailure
	}
}

// RunMonth resolves a single unit outside of a batch: fetch with retry, write
// the month file on success, and record the outcome. The canonical text is
// returned alongside the summary; it is empty unless the month succeeded.
func (o *Orchestrator) RunMonth(ctx context.Context, unit domain.FetchUnit) (domain.MonthResult, string) {
	return o.runUnit(ctx, unit, "")
}

func (o *Orchestrator) runUnit(ctx context.Context, unit domain.FetchUnit, folder string) (domain.MonthResult, string) {
	out := o.FetchWithRetry(ctx, unit)
	result := domain.NewMonthResult(unit, out)

	if out.Succeeded() {
		location, err := o.loader.Load(ctx, Artifact{Unit: unit, Folder: folder, Text: out.Text, Reports: out.Reports})
		if err != nil {
			o.metrics.LoadErrors.Inc()
			result.Success = false
			result.Reports = 0
			result.Outcome = domain.OutcomeOtherFailure
			result.Error = fmt.Sprintf("store reports: %v", err)
			out.Text = ""
		} else {
			result.Filename = location
			o.metrics.ReportsExtracted.WithLabelValues(unit.ReportType.String()).Add(float64(out.Reports))
		}
	}

	o.resolve(ctx, unit, result)
	return result, out.Text
}

// resolve is the single point where a finished unit is published.
func (o *Orchestrator) resolve(ctx context.Context, unit domain.FetchUnit, result domain.MonthResult) {
	o.lastOutcome.Store(result.Outcome)
	o.metrics.UnitsResolved.WithLabelValues(unit.ReportType.String(), string(result.Outcome)).Inc()

	if result.Success {
		o.logger.Info("month saved",
			"unit", unit.Key(),
			"month_name", result.MonthName,
			"reports", result.Reports,
			"file", result.Filename,
		)
	} else {
		o.logger.Warn("month failed",
			"unit", unit.Key(),
			"month_name", result.MonthName,
			"outcome", result.Outcome,
			"error", result.Error,
		)
	}

	if err := o.recorder.RecordMonth(ctx, unit, result); err != nil {
		o.logger.Warn("record month failed", "unit", unit.Key(), "error", err)
	}
}
