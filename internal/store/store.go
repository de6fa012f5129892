// Public domain.

// Package store keeps analysis results in a SQLite database so runs can be
// compared over time.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/gem-daq/vfat3ana/internal/rootio"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for run results.
type Store struct {
	db *sql.DB
}

// Run describes one analysis run.
type Run struct {
	ID      uuid.UUID
	Started time.Time
	Input   string
	Module  string // detector module label
	Masked  int    // channels with a final mask
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	// batch runs write concurrently from separate processes
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(10000)")
	if err != nil {
		return nil, err
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			input TEXT NOT NULL,
			module TEXT NOT NULL,
			masked INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS channel_results (
			run_id TEXT NOT NULL,
			chip INTEGER NOT NULL,
			channel INTEGER NOT NULL,
			strip INTEGER NOT NULL,
			threshold REAL NOT NULL,
			noise REAL NOT NULL,
			pedestal REAL NOT NULL,
			chi2 REAL NOT NULL,
			ndf INTEGER NOT NULL,
			sat_count INTEGER NOT NULL,
			mask INTEGER NOT NULL,
			mask_dead INTEGER NOT NULL,
			mask_hot INTEGER NOT NULL,
			valid INTEGER NOT NULL,
			PRIMARY KEY (run_id, chip, channel)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRun stores a run and its channel records.  A new run ID is assigned
// and returned.
func (s *Store) InsertRun(ctx context.Context, run Run, recs []rootio.Record) (id uuid.UUID, err error) {
	id = uuid.New()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	masked := 0
	for _, r := range recs {
		if r.Masked() {
			masked++
		}
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, input, module, masked) VALUES (?, ?, ?, ?, ?)`,
		id.String(), run.Started.UTC().Format(time.RFC3339Nano), run.Input, run.Module, masked,
	); err != nil {
		return uuid.Nil, err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO channel_results (run_id, chip, channel, strip, threshold, noise, pedestal, chi2, ndf, sat_count, mask, mask_dead, mask_hot, valid)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return uuid.Nil, err
	}
	defer stmt.Close()
	for _, r := range recs {
		if _, err = stmt.ExecContext(ctx, id.String(), r.Chip, r.Channel, r.Strip,
			r.Threshold, r.Noise, r.Pedestal, r.Chi2, r.NDF, r.SatCount,
			r.Mask, r.MaskDead, r.MaskHot, r.Valid); err != nil {
			return uuid.Nil, err
		}
	}
	if err = tx.Commit(); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// Runs lists stored runs, most recent first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, input, module, masked FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var runs []Run
	for rows.Next() {
		var (
			r           Run
			id, started string
		)
		if err := rows.Scan(&id, &started, &r.Input, &r.Module, &r.Masked); err != nil {
			return nil, err
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("run id %q: %w", id, err)
		}
		if r.Started, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("run %s: %w", id, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Records returns the channel records of a run in chip, channel order.
func (s *Store) Records(ctx context.Context, id uuid.UUID) ([]rootio.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT chip, channel, strip, threshold, noise, pedestal, chi2, ndf, sat_count, mask, mask_dead, mask_hot, valid
		 FROM channel_results WHERE run_id = ? ORDER BY chip, channel`, id.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var recs []rootio.Record
	for rows.Next() {
		var r rootio.Record
		if err := rows.Scan(&r.Chip, &r.Channel, &r.Strip, &r.Threshold,
			&r.Noise, &r.Pedestal, &r.Chi2, &r.NDF, &r.SatCount,
			&r.Mask, &r.MaskDead, &r.MaskHot, &r.Valid); err != nil {
			return nil, err
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}
