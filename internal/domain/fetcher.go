package domain

import (
	"context"
	"errors"
)

// Transport failure classes. Fetcher implementations wrap the underlying cause
// with one of these; any other error is treated as a generic failure.
var (
	ErrTransportTimeout    = errors.New("transport timeout")
	ErrTransportConnection = errors.New("transport connection failure")
)

// Fetcher retrieves the raw archive response for one unit.
type Fetcher interface {
	Fetch(ctx context.Context, unit FetchUnit) (string, error)
}
