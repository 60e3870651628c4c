package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/couchcryptid/metar-archive-etl/internal/domain"
)

// Artifact is the canonical text of one successfully fetched unit. Folder is
// the batch folder name, or empty for a single-month run.
type Artifact struct {
	Unit    domain.FetchUnit
	Folder  string
	Text    string
	Reports int
}

// Loader persists a month of normalized reports and returns where it went.
type Loader interface {
	Load(ctx context.Context, a Artifact) (string, error)
}

// Recorder keeps track of resolved units and finished batches.
type Recorder interface {
	RecordMonth(ctx context.Context, unit domain.FetchUnit, result domain.MonthResult) error
	RecordBatch(ctx context.Context, result domain.BatchResult) error
}

// Discarder is implemented by loaders that can undo a Load.
type Discarder interface {
	Discard(ctx context.Context, a Artifact) error
}

// Loaders fans an artifact out to several loaders in order. The location
// reported is the first non-empty one. When a loader fails, the loaders that
// already succeeded are discarded in reverse order, so a failed month leaves
// nothing behind.
type Loaders []Loader

func (ls Loaders) Load(ctx context.Context, a Artifact) (string, error) {
	var location string
	for i, l := range ls {
		loc, err := l.Load(ctx, a)
		if err != nil {
			return "", errors.Join(err, ls[:i].discard(ctx, a))
		}
		if location == "" {
			location = loc
		}
	}
	return location, nil
}

func (ls Loaders) discard(ctx context.Context, a Artifact) error {
	var errs []error
	for i := len(ls) - 1; i >= 0; i-- {
		d, ok := ls[i].(Discarder)
		if !ok {
			continue
		}
		if err := d.Discard(ctx, a); err != nil {
			errs = append(errs, fmt.Errorf("discard: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Recorders fans records out to several recorders. Every recorder is called;
// the errors are joined.
type Recorders []Recorder

func (rs Recorders) RecordMonth(ctx context.Context, unit domain.FetchUnit, result domain.MonthResult) error {
	var errs []error
	for _, r := range rs {
		if err := r.RecordMonth(ctx, unit, result); err != nil {
			errs = append(errs, fmt.Errorf("record month: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (rs Recorders) RecordBatch(ctx context.Context, result domain.BatchResult) error {
	var errs []error
	for _, r := range rs {
		if err := r.RecordBatch(ctx, result); err != nil {
			errs = append(errs, fmt.Errorf("record batch: %w", err))
		}
	}
	return errors.Join(errs...)
}
