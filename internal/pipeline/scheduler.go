package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/couchcryptid/metar-archive-etl/internal/domain"
	"github.com/couchcryptid/metar-archive-etl/internal/observability"
)

// ErrQueueFull is returned when the scheduler backlog has no free slot.
var ErrQueueFull = errors.New("job queue full")

// Runner is the unit of work the scheduler serializes.
type Runner interface {
	RunMonth(ctx context.Context, unit domain.FetchUnit) (domain.MonthResult, string)
	RunBatch(ctx context.Context, station string, year int, rt domain.ReportType) (domain.BatchResult, error)
}

// BatchRequest names one station-year batch.
type BatchRequest struct {
	Station    string            `json:"station"`
	Year       int               `json:"year"`
	ReportType domain.ReportType `json:"report_type"`
}

// MonthReply carries the result of a queued single-month job.
type MonthReply struct {
	Result domain.MonthResult
	Text   string
}

type job struct {
	month *domain.FetchUnit
	batch *BatchRequest
	reply chan MonthReply
}

// Scheduler funnels all month and batch jobs through one worker goroutine so
// fetches never overlap and batch results have a single writer.
type Scheduler struct {
	runner  Runner
	jobs    chan job
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewScheduler creates a Scheduler with room for queueSize pending jobs.
func NewScheduler(runner Runner, queueSize int, logger *slog.Logger, metrics *observability.Metrics) *Scheduler {
	return &Scheduler{
		runner:  runner,
		jobs:    make(chan job, queueSize),
		logger:  logger,
		metrics: metrics,
	}
}

// SubmitMonth queues a single-month job and waits for its result.
func (s *Scheduler) SubmitMonth(ctx context.Context, unit domain.FetchUnit) (MonthReply, error) {
	reply := make(chan MonthReply, 1)
	if err := s.enqueue(job{month: &unit, reply: reply}); err != nil {
		return MonthReply{}, err
	}

	select {
	case <-ctx.Done():
		return MonthReply{}, ctx.Err()
	case r := <-reply:
		return r, nil
	}
}

// SubmitBatch queues a year batch without waiting for it.
func (s *Scheduler) SubmitBatch(req BatchRequest) error {
	if _, err := YearUnits(req.Station, req.Year, req.ReportType); err != nil {
		return err
	}
	return s.enqueue(job{batch: &req})
}

func (s *Scheduler) enqueue(j job) error {
	select {
	case s.jobs <- j:
		s.metrics.QueueDepth.Set(float64(len(s.jobs)))
		return nil
	default:
		return ErrQueueFull
	}
}

// Run processes queued jobs one at a time until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler started", "queue_size", cap(s.jobs))
	s.metrics.SchedulerRunning.Set(1)
	defer s.metrics.SchedulerRunning.Set(0)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopping", "reason", ctx.Err(), "pending", len(s.jobs))
			return nil
		case j := <-s.jobs:
			s.metrics.QueueDepth.Set(float64(len(s.jobs)))
			s.process(ctx, j)
		}
	}
}

func (s *Scheduler) process(ctx context.Context, j job) {
	switch {
	case j.month != nil:
		result, text := s.runner.RunMonth(ctx, *j.month)
		j.reply <- MonthReply{Result: result, Text: text}
	case j.batch != nil:
		req := j.batch
		if _, err := s.runner.RunBatch(ctx, req.Station, req.Year, req.ReportType); err != nil {
			s.logger.Error("batch aborted",
				"station", req.Station,
				"year", req.Year,
				"report_type", req.ReportType,
				"error", err,
			)
		}
	}
}
