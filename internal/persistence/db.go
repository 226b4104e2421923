// Package persistence provides the SQLite-backed run history: every score
// evaluation the CLI, the sampler, or a recorded sweep performs can be
// written here and listed back later.
package persistence

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/Gianni-inc/QuantumGianni/internal/qops"
)

// SchemaVersion is written to the meta table on every migration.
const SchemaVersion = "1"

// Run is one recorded evaluation: the full parameter set, the four kernel
// outputs, and the combined result. Timestamps are unix seconds and
// durations are microseconds, both stored as integers so the row survives
// driver and timezone quirks unchanged.
type Run struct {
	ID         string  `db:"id" json:"id"`
	CreatedAt  int64   `db:"created_at" json:"created_at"`
	Source     string  `db:"source" json:"source"`
	X          float64 `db:"x" json:"x"`
	T          float64 `db:"t" json:"t"`
	Depth      int     `db:"depth" json:"depth"`
	Dimensions int     `db:"dimensions" json:"dimensions"`
	Layers     int     `db:"layers" json:"layers"`
	LoadFactor float64 `db:"load_factor" json:"load_factor"`
	Recursive  float64 `db:"recursive_sum" json:"recursive_sum"`
	Tensor     float64 `db:"tensor_det" json:"tensor_det"`
	Feedback   float64 `db:"feedback_series" json:"feedback_series"`
	Scale      float64 `db:"load_scale" json:"load_scale"`
	Result     float64 `db:"result" json:"result"`
	DurationUS int64   `db:"duration_us" json:"duration_us"`
}

// Known values for Run.Source.
const (
	SourceCLI     = "cli"
	SourceSampler = "sampler"
	SourceSweep   = "sweep"
)

// NewRun assembles a Run from a parameter set and its computed breakdown,
// stamping a fresh ID and the current time.
func NewRun(source string, p qops.Params, b qops.Breakdown, elapsed time.Duration) Run {
	return Run{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now().Unix(),
		Source:     source,
		X:          p.X,
		T:          p.T,
		Depth:      p.Depth,
		Dimensions: p.Dimensions,
		Layers:     p.Layers,
		LoadFactor: p.LoadFactor,
		Recursive:  b.Recursive,
		Tensor:     b.Tensor,
		Feedback:   b.Feedback,
		Scale:      b.Scale,
		Result:     b.Total,
		DurationUS: elapsed.Microseconds(),
	}
}

// DB wraps a SQLite connection for run history storage.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL,
		source TEXT NOT NULL,
		x REAL NOT NULL,
		t REAL NOT NULL,
		depth INTEGER NOT NULL,
		dimensions INTEGER NOT NULL,
		layers INTEGER NOT NULL,
		load_factor REAL NOT NULL,
		recursive_sum REAL NOT NULL,
		tensor_det REAL NOT NULL,
		feedback_series REAL NOT NULL,
		load_scale REAL NOT NULL,
		result REAL NOT NULL,
		duration_us INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(source);
	`
	if _, err := db.conn.Exec(schema); err != nil {
		return err
	}
	return db.SaveMeta("schema_version", SchemaVersion)
}

const insertRun = `INSERT INTO runs
	(id, created_at, source, x, t, depth, dimensions, layers, load_factor,
	 recursive_sum, tensor_det, feedback_series, load_scale, result, duration_us)
	VALUES (:id, :created_at, :source, :x, :t, :depth, :dimensions, :layers,
	 :load_factor, :recursive_sum, :tensor_det, :feedback_series, :load_scale,
	 :result, :duration_us)`

// SaveRun records a single evaluation.
func (db *DB) SaveRun(r Run) error {
	if _, err := db.conn.NamedExec(insertRun, r); err != nil {
		return fmt.Errorf("insert run %s: %w", r.ID, err)
	}
	return nil
}

// SaveRuns records a batch of evaluations in one transaction, all or
// nothing. Recorded sweeps land here.
func (db *DB) SaveRuns(runs []Run) error {
	if len(runs) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareNamed(insertRun)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range runs {
		if _, err := stmt.Exec(r); err != nil {
			return fmt.Errorf("insert run %s: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

// RecentRuns returns the most recent N runs, newest first. Ties within a
// second break by insertion order, latest first.
func (db *DB) RecentRuns(limit int) ([]Run, error) {
	var runs []Run
	err := db.conn.Select(&runs,
		`SELECT id, created_at, source, x, t, depth, dimensions, layers,
		 load_factor, recursive_sum, tensor_det, feedback_series, load_scale,
		 result, duration_us
		 FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	return runs, err
}

// CountRuns returns the total number of recorded runs.
func (db *DB) CountRuns() (int, error) {
	var n int
	err := db.conn.Get(&n, "SELECT COUNT(*) FROM runs")
	return n, err
}

// SaveMeta stores a key-value pair in the meta table.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM meta WHERE key = ?", key)
	return value, err
}
