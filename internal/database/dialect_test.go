package database

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/lib/pq"
)

func TestNewDialect(t *testing.T) {
	tests := []struct {
		in     DialectType
		driver string
	}{
		{DialectSQLite, "sqlite"},
		{DialectPostgres, "postgres"},
		{"mysql", "sqlite"},
	}
	for _, tt := range tests {
		if got := NewDialect(tt.in).DriverName(); got != tt.driver {
			t.Errorf("NewDialect(%q).DriverName() = %q, want %q", tt.in, got, tt.driver)
		}
	}
}

func TestSQLiteInitStatements(t *testing.T) {
	stmts := NewDialect(DialectSQLite).InitStatements()
	joined := strings.Join(stmts, "; ")
	for _, want := range []string{"foreign_keys = ON", "journal_mode = WAL", "busy_timeout"} {
		if !strings.Contains(joined, want) {
			t.Errorf("InitStatements() = %v, missing %q", stmts, want)
		}
	}

	if stmts := NewDialect(DialectPostgres).InitStatements(); len(stmts) != 0 {
		t.Errorf("postgres InitStatements() = %v, want none", stmts)
	}
}

func TestRunStairsDuplicateKey(t *testing.T) {
	sqliteErr := errors.New("constraint failed: UNIQUE constraint failed: run_stairs.run_id, run_stairs.x, run_stairs.z (2067)")

	tests := []struct {
		name    string
		dialect DialectType
		err     error
		want    bool
	}{
		{"sqlite stair tile taken", DialectSQLite, sqliteErr, true},
		{"sqlite wrapped", DialectSQLite, fmt.Errorf("failed to insert stair: %w", sqliteErr), true},
		{"sqlite foreign key", DialectSQLite, errors.New("FOREIGN KEY constraint failed"), false},
		{"sqlite nil", DialectSQLite, nil, false},
		{"postgres unique violation", DialectPostgres, &pq.Error{Code: "23505", Constraint: "run_stairs_pkey"}, true},
		{"postgres wrapped", DialectPostgres, fmt.Errorf("failed to insert stair: %w", &pq.Error{Code: "23505"}), true},
		{"postgres foreign key", DialectPostgres, &pq.Error{Code: "23503"}, false},
		{"postgres nil", DialectPostgres, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewDialect(tt.dialect).IsDuplicateKeyError(tt.err); got != tt.want {
				t.Errorf("IsDuplicateKeyError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestSerialPrimaryKey(t *testing.T) {
	if got := NewDialect(DialectSQLite).SerialPrimaryKey(); got != "INTEGER PRIMARY KEY AUTOINCREMENT" {
		t.Errorf("sqlite SerialPrimaryKey() = %q", got)
	}
	if got := NewDialect(DialectPostgres).SerialPrimaryKey(); got != "BIGSERIAL PRIMARY KEY" {
		t.Errorf("postgres SerialPrimaryKey() = %q", got)
	}
}

func TestRunQueryPlaceholders(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		postgres string
	}{
		{
			name:     "stair insert",
			query:    "INSERT INTO run_stairs (run_id, owner_cell, connected_cell, x, y, z, rotation) VALUES (?, ?, ?, ?, ?, ?, ?)",
			postgres: "INSERT INTO run_stairs (run_id, owner_cell, connected_cell, x, y, z, rotation) VALUES ($1, $2, $3, $4, $5, $6, $7)",
		},
		{
			name:     "filtered list",
			query:    "SELECT id FROM generation_runs WHERE layout_name = ? ORDER BY id DESC LIMIT ?",
			postgres: "SELECT id FROM generation_runs WHERE layout_name = $1 ORDER BY id DESC LIMIT $2",
		},
		{
			name:     "quoted question mark",
			query:    "SELECT id FROM generation_runs WHERE strategy = 'what?' AND seed = ?",
			postgres: "SELECT id FROM generation_runs WHERE strategy = 'what?' AND seed = $1",
		},
		{
			name:     "no parameters",
			query:    "SELECT COUNT(*) FROM generation_runs",
			postgres: "SELECT COUNT(*) FROM generation_runs",
		},
	}

	sqlite := NewQueryBuilder(NewDialect(DialectSQLite))
	postgres := NewQueryBuilder(NewDialect(DialectPostgres))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sqlite.Build(tt.query); got != tt.query {
				t.Errorf("sqlite Build() = %q, want unchanged", got)
			}
			if got := postgres.Build(tt.query); got != tt.postgres {
				t.Errorf("postgres Build() = %q, want %q", got, tt.postgres)
			}
		})
	}
}

func TestRunInsertReturning(t *testing.T) {
	query := "INSERT INTO generation_runs (layout_name, seed) VALUES (?, ?)"

	if got := NewQueryBuilder(NewDialect(DialectSQLite)).BuildWithReturning(query, "id"); got != query {
		t.Errorf("sqlite BuildWithReturning() = %q, want %q", got, query)
	}

	want := "INSERT INTO generation_runs (layout_name, seed) VALUES ($1, $2) RETURNING id"
	if got := NewQueryBuilder(NewDialect(DialectPostgres)).BuildWithReturning(query, "id"); got != want {
		t.Errorf("postgres BuildWithReturning() = %q, want %q", got, want)
	}
}

func TestStoreConfig(t *testing.T) {
	cfg := DefaultConfig("runs.db")
	if cfg.Driver != "sqlite" || cfg.SQLitePath != "runs.db" {
		t.Errorf("DefaultConfig() = %+v", cfg)
	}

	pg := DefaultPostgresConfig()
	if pg.MaxOpenConns != 10 || pg.MaxIdleConns != 2 || pg.ConnMaxLifetime != 5*time.Minute {
		t.Errorf("DefaultPostgresConfig() pool = %d/%d/%v", pg.MaxOpenConns, pg.MaxIdleConns, pg.ConnMaxLifetime)
	}

	pg.User, pg.Password, pg.Database, pg.SSLMode = "stairgen", "secret", "runs", ""
	want := "host=localhost port=5432 user=stairgen password=secret dbname=runs sslmode=disable"
	if got := pg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
