package pipeline

import (
	"context"
	"time"

	"github.com/couchcryptid/metar-archive-etl/internal/config"
	"github.com/couchcryptid/metar-archive-etl/internal/domain"
	"github.com/jonboulle/clockwork"
)

// RetryPolicy sets how often a unit is attempted and how long to wait after
// each failure class before the next attempt.
type RetryPolicy struct {
	MaxAttempts    int
	EmptyWait      time.Duration
	TimeoutWait    time.Duration
	ConnectionWait time.Duration
	OtherWait      time.Duration
}

// DefaultRetryPolicy mirrors the archive's historical behaviour: three
// attempts, 3s after an empty month, 5s after a timeout, 10s after a
// connection failure and 3s after anything else.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		EmptyWait:      3 * time.Second,
		TimeoutWait:    5 * time.Second,
		ConnectionWait: 10 * time.Second,
		OtherWait:      3 * time.Second,
	}
}

// WaitFor returns the delay before retrying after an attempt ended with kind.
func (p RetryPolicy) WaitFor(kind domain.OutcomeKind) time.Duration {
	switch kind {
	case domain.OutcomeEmptyResult:
		return p.EmptyWait
	case domain.OutcomeTransportTimeout:
		return p.TimeoutWait
	case domain.OutcomeConnectionFailure:
		return p.ConnectionWait
	default:
		return p.OtherWait
	}
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// PacingPolicy spaces out the units of a year batch. Months are processed in
// contiguous groups of GroupSize; UnitDelay follows every unit and GroupDelay
// follows every group except the last.
type PacingPolicy struct {
	GroupSize  int
	UnitDelay  time.Duration
	GroupDelay time.Duration
}

// DefaultPacingPolicy groups months in pairs with 2s between months and 5s
// between groups.
func DefaultPacingPolicy() PacingPolicy {
	return PacingPolicy{
		GroupSize:  2,
		UnitDelay:  2 * time.Second,
		GroupDelay: 5 * time.Second,
	}
}

func (p PacingPolicy) groupSize() int {
	if p.GroupSize < 1 {
		return 1
	}
	return p.GroupSize
}

// Policy bundles the retry and pacing knobs of an Orchestrator.
type Policy struct {
	Retry  RetryPolicy
	Pacing PacingPolicy
}

// DefaultPolicy returns DefaultRetryPolicy and DefaultPacingPolicy.
func DefaultPolicy() Policy {
	return Policy{Retry: DefaultRetryPolicy(), Pacing: DefaultPacingPolicy()}
}

// sleepWithContext waits d on clock. Returns false if ctx ended first.
func sleepWithContext(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}

// PolicyFromConfig builds the retry and pacing policy from environment
// configuration.
func PolicyFromConfig(cfg *config.Config) Policy {
	return Policy{
		Retry: RetryPolicy{
			MaxAttempts:    cfg.RetryMaxAttempts,
			EmptyWait:      cfg.RetryEmptyWait,
			TimeoutWait:    cfg.RetryTimeoutWait,
			ConnectionWait: cfg.RetryConnectionWait,
			OtherWait:      cfg.RetryOtherWait,
		},
		Pacing: PacingPolicy{
			GroupSize:  cfg.BatchGroupSize,
			UnitDelay:  cfg.BatchUnitDelay,
			GroupDelay: cfg.BatchGroupDelay,
		},
	}
}
