// Package ledger keeps a SQLite history of resolved units and finished
// batches.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/couchcryptid/metar-archive-etl/internal/domain"
	"github.com/jonboulle/clockwork"
	_ "modernc.org/sqlite"
)

// MonthRecord is one resolved unit as stored in the ledger.
type MonthRecord struct {
	Month      string             `json:"month"`
	Outcome    domain.OutcomeKind `json:"outcome"`
	Success    bool               `json:"success"`
	Reports    int                `json:"reports"`
	Attempts   int                `json:"attempts"`
	Filename   string             `json:"filename,omitempty"`
	Error      string             `json:"error,omitempty"`
	RecordedAt time.Time          `json:"recorded_at"`
}

// BatchRecord is one finished batch as stored in the ledger.
type BatchRecord struct {
	Folder       string    `json:"folder"`
	Months       int       `json:"months"`
	TotalSuccess int       `json:"total_success"`
	TotalReports int       `json:"total_reports"`
	CompletedAt  time.Time `json:"completed_at"`
}

// History is everything the ledger knows about one station-year.
type History struct {
	Station    string            `json:"station"`
	Year       string            `json:"year"`
	ReportType domain.ReportType `json:"report_type"`
	Batches    []BatchRecord     `json:"batches"`
	Months     []MonthRecord     `json:"months"`
}

// DB wraps a SQLite connection. It implements pipeline.Recorder.
type DB struct {
	db    *sql.DB
	clock clockwork.Clock
}

// Open opens or creates a ledger database at the given path.
func Open(path string, clock clockwork.Clock) (*DB, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := createSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &DB{db: db, clock: clock}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// CheckReadiness pings the database.
func (d *DB) CheckReadiness(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ledger unavailable: %w", err)
	}
	return nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS unit_outcomes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		station TEXT NOT NULL,
		report_type TEXT NOT NULL,
		year TEXT NOT NULL,
		month TEXT NOT NULL,
		outcome TEXT NOT NULL,
		success INTEGER NOT NULL,
		reports INTEGER NOT NULL,
		attempts INTEGER NOT NULL,
		filename TEXT,
		error TEXT,
		recorded_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_unit_outcomes_unit ON unit_outcomes(station, report_type, year, month);

	CREATE TABLE IF NOT EXISTS batches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		station TEXT NOT NULL,
		report_type TEXT NOT NULL,
		year TEXT NOT NULL,
		folder TEXT NOT NULL,
		months INTEGER NOT NULL,
		total_success INTEGER NOT NULL,
		total_reports INTEGER NOT NULL,
		completed_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_batches_year ON batches(station, report_type, year);
	`
	_, err := db.Exec(schema)
	return err
}

// RecordMonth appends a resolved unit.
func (d *DB) RecordMonth(ctx context.Context, unit domain.FetchUnit, result domain.MonthResult) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO unit_outcomes
			(station, report_type, year, month, outcome, success, reports, attempts, filename, error, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		unit.Station, string(unit.ReportType), unit.Year, unit.Month,
		string(result.Outcome), result.Success, result.Reports, result.Attempts,
		result.Filename, result.Error, d.now(),
	)
	if err != nil {
		return fmt.Errorf("insert unit outcome: %w", err)
	}
	return nil
}

// RecordBatch appends a finished batch.
func (d *DB) RecordBatch(ctx context.Context, result domain.BatchResult) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO batches
			(station, report_type, year, folder, months, total_success, total_reports, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		result.Station, string(result.ReportType), result.Year, result.Folder,
		len(result.Results), result.TotalSuccess, result.TotalReports, d.now(),
	)
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

// History returns the batches and unit outcomes recorded for a station-year,
// oldest first.
func (d *DB) History(ctx context.Context, station string, year int, rt domain.ReportType) (History, error) {
	station, err := domain.NormalizeStation(station)
	if err != nil {
		return History{}, err
	}
	if err := domain.ValidateYear(year); err != nil {
		return History{}, err
	}
	h := History{Station: station, Year: fmt.Sprint(year), ReportType: rt}

	if h.Batches, err = d.batches(ctx, h); err != nil {
		return History{}, err
	}
	if h.Months, err = d.months(ctx, h); err != nil {
		return History{}, err
	}
	return h, nil
}

func (d *DB) batches(ctx context.Context, h History) ([]BatchRecord, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT folder, months, total_success, total_reports, completed_at
		FROM batches
		WHERE station = ? AND report_type = ? AND year = ?
		ORDER BY id`, h.Station, string(h.ReportType), h.Year)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	out := []BatchRecord{}
	for rows.Next() {
		var r BatchRecord
		var completed string
		if err := rows.Scan(&r.Folder, &r.Months, &r.TotalSuccess, &r.TotalReports, &completed); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		r.CompletedAt = parseTime(completed)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (d *DB) months(ctx context.Context, h History) ([]MonthRecord, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT month, outcome, success, reports, attempts, filename, error, recorded_at
		FROM unit_outcomes
		WHERE station = ? AND report_type = ? AND year = ?
		ORDER BY id`, h.Station, string(h.ReportType), h.Year)
	if err != nil {
		return nil, fmt.Errorf("query unit outcomes: %w", err)
	}
	defer rows.Close()

	out := []MonthRecord{}
	for rows.Next() {
		var r MonthRecord
		var outcome, recorded string
		var filename, errText sql.NullString
		if err := rows.Scan(&r.Month, &outcome, &r.Success, &r.Reports, &r.Attempts, &filename, &errText, &recorded); err != nil {
			return nil, fmt.Errorf("scan unit outcome: %w", err)
		}
		r.Outcome = domain.OutcomeKind(outcome)
		r.Filename = filename.String
		r.Error = errText.String
		r.RecordedAt = parseTime(recorded)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (d *DB) now() string {
	return d.clock.Now().UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
