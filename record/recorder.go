// Package record keeps a SQLite history of transportation runs.
package record

import (
	"context"
	"database/sql"
	"sync"
	"time"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/bartolsthoorn/transportlp/transport"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	started_at    TEXT NOT NULL,
	duration_ms   INTEGER NOT NULL,
	input_path    TEXT NOT NULL,
	output_path   TEXT NOT NULL,
	sources       INTEGER NOT NULL,
	destinations  INTEGER NOT NULL,
	total_supply  INTEGER NOT NULL,
	dummy_source  INTEGER NOT NULL,
	dummy_dest    INTEGER NOT NULL,
	solved        INTEGER NOT NULL,
	status        TEXT NOT NULL,
	backend       TEXT NOT NULL,
	objective     REAL NOT NULL,
	cost          INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS shipments (
	run_id      TEXT NOT NULL REFERENCES runs(id),
	source      INTEGER NOT NULL,
	destination INTEGER NOT NULL,
	amount      INTEGER NOT NULL
);
`

// Run is a stored run.
type Run struct {
	ID string
	transport.RunSummary
}

// Recorder writes run summaries into a SQLite database. It implements
// transport.RunRecorder.
type Recorder struct {
	db        *sql.DB
	closeOnce sync.Once
	closeErr  error
}

var _ transport.RunRecorder = (*Recorder)(nil)

// New opens the database at path, creating it and its tables if needed. The
// database is closed when the program exits through atexit.
func New(path string) (*Recorder, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "record: open %s", path)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "record: create tables in %s", path)
	}

	r := &Recorder{db: db}
	atexit.Register(func() { r.Close() })
	return r, nil
}

// Close closes the database. It is safe to call more than once.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() {
		r.closeErr = r.db.Close()
	})
	return r.closeErr
}

// RecordRun stores run and its shipments in one transaction.
func (r *Recorder) RecordRun(ctx context.Context, run transport.RunSummary) error {
	_, err := r.insert(ctx, run)
	return err
}

func (r *Recorder) insert(ctx context.Context, run transport.RunSummary) (string, error) {
	id := xid.New().String()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", errors.Wrap(err, "record: begin transaction")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO runs (
		id, started_at, duration_ms, input_path, output_path,
		sources, destinations, total_supply, dummy_source, dummy_dest,
		solved, status, backend, objective, cost
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, run.StartedAt.UTC().Format(time.RFC3339Nano), run.Duration.Milliseconds(),
		run.InputPath, run.OutputPath,
		run.Sources, run.Destinations, run.TotalSupply, run.DummySource, run.DummyDest,
		run.Solved, run.Status, run.Backend, run.Objective, run.Cost,
	)
	if err != nil {
		return "", errors.Wrap(err, "record: insert run")
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO shipments (run_id, source, destination, amount) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", errors.Wrap(err, "record: prepare shipment insert")
	}
	defer stmt.Close()

	for _, s := range run.Shipments {
		if _, err := stmt.ExecContext(ctx, id, s.Source, s.Destination, s.Amount); err != nil {
			return "", errors.Wrap(err, "record: insert shipment")
		}
	}

	if err := tx.Commit(); err != nil {
		return "", errors.Wrap(err, "record: commit")
	}
	return id, nil
}

// Runs returns every stored run with its shipments, oldest first.
func (r *Recorder) Runs(ctx context.Context) ([]Run, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT
		id, started_at, duration_ms, input_path, output_path,
		sources, destinations, total_supply, dummy_source, dummy_dest,
		solved, status, backend, objective, cost
	FROM runs ORDER BY started_at, rowid`)
	if err != nil {
		return nil, errors.Wrap(err, "record: query runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run       Run
			startedAt string
			duration  int64
		)
		err := rows.Scan(
			&run.ID, &startedAt, &duration, &run.InputPath, &run.OutputPath,
			&run.Sources, &run.Destinations, &run.TotalSupply, &run.DummySource, &run.DummyDest,
			&run.Solved, &run.Status, &run.Backend, &run.Objective, &run.Cost,
		)
		if err != nil {
			return nil, errors.Wrap(err, "record: scan run")
		}
		run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, errors.Wrapf(err, "record: run %s start time", run.ID)
		}
		run.Duration = time.Duration(duration) * time.Millisecond
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "record: read runs")
	}
	rows.Close()

	for i := range runs {
		runs[i].Shipments, err = r.shipments(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func (r *Recorder) shipments(ctx context.Context, runID string) ([]transport.Shipment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT source, destination, amount FROM shipments WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, errors.Wrapf(err, "record: query shipments of run %s", runID)
	}
	defer rows.Close()

	var out []transport.Shipment
	for rows.Next() {
		var s transport.Shipment
		if err := rows.Scan(&s.Source, &s.Destination, &s.Amount); err != nil {
			return nil, errors.Wrap(err, "record: scan shipment")
		}
		out = append(out, s)
	}
	return out, errors.Wrap(rows.Err(), "record: read shipments")
}
