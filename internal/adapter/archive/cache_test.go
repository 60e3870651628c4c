package archive

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/couchcryptid/metar-archive-etl/internal/domain"
	"github.com/couchcryptid/metar-archive-etl/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock for cache tests ---

type countingFetcher struct {
	calls int
	raw   string
	err   error
}

func (m *countingFetcher) Fetch(context.Context, domain.FetchUnit) (string, error) {
	m.calls++
	return m.raw, m.err
}

// sequenceFetcher returns the next page on every call and repeats the last.
type sequenceFetcher struct {
	calls int
	pages []string
}

func (m *sequenceFetcher) Fetch(context.Context, domain.FetchUnit) (string, error) {
	page := m.pages[min(m.calls, len(m.pages)-1)]
	m.calls++
	return page, nil
}

const validMetarPage = "202402010000 METAR VOGA 010000Z 12008KT CAVOK 28/22 Q1012 NOSIG=\n"

// newTestCache caches units of February 2024, which has ended on the fake clock.
func newTestCache(inner domain.Fetcher) *CachedFetcher {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	return NewCachedFetcher(inner, 10, clock, observability.NewMetricsForTesting())
}

// --- CachedFetcher tests ---

func TestCachedFetcher_Hit(t *testing.T) {
	inner := &countingFetcher{raw: validMetarPage}
	cached := newTestCache(inner)
	unit := testUnit(t, domain.ReportMETAR)

	r1, err := cached.Fetch(context.Background(), unit)
	require.NoError(t, err)
	r2, err := cached.Fetch(context.Background(), unit)
	require.NoError(t, err)

	assert.Equal(t, validMetarPage, r1)
	assert.Equal(t, r1, r2)
	assert.Equal(t, 1, inner.calls, "should only call inner once")
}

func TestCachedFetcher_EmptyResponseNotCached(t *testing.T) {
	inner := &countingFetcher{raw: "<html><body>No METAR</body></html>"}
	cached := newTestCache(inner)
	unit := testUnit(t, domain.ReportMETAR)

	_, _ = cached.Fetch(context.Background(), unit)
	_, _ = cached.Fetch(context.Background(), unit)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedFetcher_ErrorNotCached(t *testing.T) {
	inner := &countingFetcher{err: errors.New("boom")}
	cached := newTestCache(inner)
	unit := testUnit(t, domain.ReportMETAR)

	_, err := cached.Fetch(context.Background(), unit)
	require.Error(t, err)
	_, err = cached.Fetch(context.Background(), unit)
	require.Error(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedFetcher_DifferentUnitsMiss(t *testing.T) {
	inner := &countingFetcher{raw: validMetarPage}
	cached := newTestCache(inner)

	_, _ = cached.Fetch(context.Background(), testUnit(t, domain.ReportMETAR))
	_, _ = cached.Fetch(context.Background(), testUnit(t, domain.ReportTAF))

	assert.Equal(t, 2, inner.calls)
}

func TestCachedFetcher_OpenMonthNotCached(t *testing.T) {
	inner := &sequenceFetcher{pages: []string{
		"202610010000 METAR VOGA 010000Z 12008KT CAVOK 28/22 Q1012 NOSIG=\n",
		"202610010000 METAR VOGA 010000Z 12008KT CAVOK 28/22 Q1012 NOSIG=\n" +
			"202610010030 METAR VOGA 010030Z 12009KT CAVOK 28/22 Q1012 NOSIG=\n",
	}}
	clock := clockwork.NewFakeClockAt(time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC))
	cached := NewCachedFetcher(inner, 10, clock, observability.NewMetricsForTesting())
	unit, err := domain.NewFetchUnit("VOGA", 2026, 10, domain.ReportMETAR)
	require.NoError(t, err)

	first, err := cached.Fetch(context.Background(), unit)
	require.NoError(t, err)
	second, err := cached.Fetch(context.Background(), unit)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls, "open month must reach the archive every time")
	assert.Len(t, domain.ExtractReports(first, domain.ReportMETAR), 1)
	assert.Len(t, domain.ExtractReports(second, domain.ReportMETAR), 2)
	assert.Zero(t, cached.cache.len())

	// Once the month is over the next response is cached.
	clock.Advance(14 * 24 * time.Hour)
	_, err = cached.Fetch(context.Background(), unit)
	require.NoError(t, err)
	_, err = cached.Fetch(context.Background(), unit)
	require.NoError(t, err)
	assert.Equal(t, 3, inner.calls)
	assert.Equal(t, 1, cached.cache.len())
}

// --- LRU cache unit tests ---

func TestLRUCache_BasicGetPut(t *testing.T) {
	c := newLRUCache(3)

	c.put("a", "A")
	c.put("b", "B")

	v, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A", v)

	_, ok = c.get("missing")
	assert.False(t, ok)
}

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", "A")
	c.put("b", "B")
	c.put("c", "C") // evicts "a"

	_, ok := c.get("a")
	assert.False(t, ok, "a should have been evicted")

	v, ok := c.get("b")
	assert.True(t, ok)
	assert.Equal(t, "B", v)
	assert.Equal(t, 2, c.len())
}

func TestLRUCache_AccessPromotesEntry(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", "A")
	c.put("b", "B")
	c.get("a")
	c.put("c", "C")

	_, ok := c.get("a")
	assert.True(t, ok, "a was accessed recently, should not be evicted")

	_, ok = c.get("b")
	assert.False(t, ok, "b should have been evicted")
}

func TestLRUCache_ZeroSizeStoresNothing(t *testing.T) {
	c := newLRUCache(0)
	c.put("a", "A")

	_, ok := c.get("a")
	assert.False(t, ok)
	assert.Zero(t, c.len())
}
