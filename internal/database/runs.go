package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrRunNotFound is returned when a run lookup fails.
	ErrRunNotFound = errors.New("run not found")

	// ErrDuplicateStair is returned when a run lists two stairs on one tile.
	ErrDuplicateStair = errors.New("duplicate stair tile in run")
)

// Run is one recorded generation.
type Run struct {
	ID          int64
	LayoutName  string
	Seed        int64
	Strategy    string
	Converged   bool
	StairCount  int
	Fingerprint string
	CreatedAt   time.Time
}

// RunStair is a stair stored with its run. Rotation is in degrees.
type RunStair struct {
	OwnerCell     int
	ConnectedCell int
	X, Y, Z       int
	Rotation      int
}

const runColumns = "id, layout_name, seed, strategy, converged, stair_count, fingerprint, created_at"

// RecordRun stores a run and its stairs in one transaction and returns the
// new run id. StairCount is taken from the stairs given.
func (d *Database) RecordRun(run Run, stairs []RunStair) (int64, error) {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := d.qb.BuildWithReturning(
		`INSERT INTO generation_runs (layout_name, seed, strategy, converged, stair_count, fingerprint, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, "id")
	args := []any{run.LayoutName, run.Seed, run.Strategy, run.Converged, len(stairs), run.Fingerprint, run.CreatedAt}

	var id int64
	if d.dialect.SupportsLastInsertID() {
		result, err := tx.Exec(query, args...)
		if err != nil {
			return 0, fmt.Errorf("failed to insert run: %w", err)
		}
		if id, err = result.LastInsertId(); err != nil {
			return 0, fmt.Errorf("failed to get run ID: %w", err)
		}
	} else if err := tx.QueryRow(query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.Prepare(d.qb.Build(
		`INSERT INTO run_stairs (run_id, owner_cell, connected_cell, x, y, z, rotation) VALUES (?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare stair insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range stairs {
		if _, err := stmt.Exec(id, s.OwnerCell, s.ConnectedCell, s.X, s.Y, s.Z, s.Rotation); err != nil {
			if d.dialect.IsDuplicateKeyError(err) {
				return 0, fmt.Errorf("%w: (%d,%d)", ErrDuplicateStair, s.X, s.Z)
			}
			return 0, fmt.Errorf("failed to insert stair: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return id, nil
}

// GetRun returns a run by id.
func (d *Database) GetRun(id int64) (*Run, error) {
	row := d.db.QueryRow(d.qb.Build("SELECT "+runColumns+" FROM generation_runs WHERE id = ?"), id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// GetRunStairs returns the stairs of a run ordered by owner cell and position.
func (d *Database) GetRunStairs(runID int64) ([]RunStair, error) {
	rows, err := d.db.Query(d.qb.Build(
		`SELECT owner_cell, connected_cell, x, y, z, rotation FROM run_stairs
		WHERE run_id = ? ORDER BY owner_cell, z, x`), runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stairs: %w", err)
	}
	defer rows.Close()

	var stairs []RunStair
	for rows.Next() {
		var s RunStair
		if err := rows.Scan(&s.OwnerCell, &s.ConnectedCell, &s.X, &s.Y, &s.Z, &s.Rotation); err != nil {
			return nil, fmt.Errorf("failed to scan stair: %w", err)
		}
		stairs = append(stairs, s)
	}
	return stairs, rows.Err()
}

// ListRuns returns the most recent runs, newest first. An empty layout name
// lists runs of every layout; a limit of zero or less means no limit.
func (d *Database) ListRuns(layoutName string, limit int) ([]*Run, error) {
	query := "SELECT " + runColumns + " FROM generation_runs"
	var args []any
	if layoutName != "" {
		query += " WHERE layout_name = ?"
		args = append(args, layoutName)
	}
	query += " ORDER BY id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return d.queryRuns(d.qb.Build(query), args...)
}

// FindByFingerprint returns every run that produced the given fingerprint,
// oldest first.
func (d *Database) FindByFingerprint(fingerprint string) ([]*Run, error) {
	return d.queryRuns(d.qb.Build(
		"SELECT "+runColumns+" FROM generation_runs WHERE fingerprint = ? ORDER BY id"), fingerprint)
}

// DeleteRun removes a run and its stairs.
func (d *Database) DeleteRun(id int64) error {
	result, err := d.db.Exec(d.qb.Build("DELETE FROM generation_runs WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrRunNotFound
	}
	return nil
}

func (d *Database) queryRuns(query string, args ...any) ([]*Run, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var run Run
	err := s.Scan(&run.ID, &run.LayoutName, &run.Seed, &run.Strategy,
		&run.Converged, &run.StairCount, &run.Fingerprint, &run.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &run, nil
}
