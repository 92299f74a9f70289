package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a DB and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:gradebook.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/gradebook?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if driver == DriverSQLite {
		// in-memory databases vanish with their last connection
		db.SetMaxOpenConns(1)
	}

	if err := ensureSchema(ctx, db, driver); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS students (
  id TEXT PRIMARY KEY,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS assignments (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  points REAL NOT NULL,
  subject TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT '',
  has_standards INTEGER NOT NULL DEFAULT 0,
  proficiency_scale TEXT NOT NULL DEFAULT ''
);

-- one row per (student, assignment); later writes win
CREATE TABLE IF NOT EXISTS traditional_grades (
  id TEXT NOT NULL,
  student_id TEXT NOT NULL,
  assignment_id TEXT NOT NULL,
  subject TEXT NOT NULL DEFAULT '',
  score REAL NOT NULL,
  points REAL NOT NULL,
  percentage REAL NOT NULL,
  date_entered INTEGER NOT NULL,
  PRIMARY KEY (student_id, assignment_id)
);

CREATE TABLE IF NOT EXISTS standards_grades (
  id TEXT NOT NULL,
  student_id TEXT NOT NULL,
  assignment_id TEXT NOT NULL,
  standard_id TEXT NOT NULL,
  standard_name TEXT NOT NULL DEFAULT '',
  proficiency_level INTEGER NOT NULL,
  graded_at INTEGER NOT NULL,
  seq INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (student_id, assignment_id, standard_id)
);

CREATE TABLE IF NOT EXISTS standard_mappings (
  id TEXT NOT NULL,
  assignment_id TEXT NOT NULL,
  standard_id TEXT NOT NULL,
  alignment_strength REAL NOT NULL DEFAULT 0,
  coverage_type TEXT NOT NULL DEFAULT '',
  weight REAL NOT NULL DEFAULT 0,
  PRIMARY KEY (assignment_id, standard_id)
);

CREATE TABLE IF NOT EXISTS event_log (
  seq INTEGER PRIMARY KEY AUTOINCREMENT, -- BIGSERIAL in Postgres
  site_id TEXT NOT NULL DEFAULT 'local',
  typ TEXT NOT NULL,                     -- e.g., grade.recorded
  key TEXT NOT NULL,                     -- natural key: student/assignment
  data TEXT NOT NULL,                    -- JSON payload
  created_at INTEGER NOT NULL
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS students (
  id TEXT PRIMARY KEY,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS assignments (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  points DOUBLE PRECISION NOT NULL,
  subject TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT '',
  has_standards INTEGER NOT NULL DEFAULT 0,
  proficiency_scale TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS traditional_grades (
  id TEXT NOT NULL,
  student_id TEXT NOT NULL,
  assignment_id TEXT NOT NULL,
  subject TEXT NOT NULL DEFAULT '',
  score DOUBLE PRECISION NOT NULL,
  points DOUBLE PRECISION NOT NULL,
  percentage DOUBLE PRECISION NOT NULL,
  date_entered BIGINT NOT NULL,
  PRIMARY KEY (student_id, assignment_id)
);

CREATE TABLE IF NOT EXISTS standards_grades (
  id TEXT NOT NULL,
  student_id TEXT NOT NULL,
  assignment_id TEXT NOT NULL,
  standard_id TEXT NOT NULL,
  standard_name TEXT NOT NULL DEFAULT '',
  proficiency_level INTEGER NOT NULL,
  graded_at BIGINT NOT NULL,
  seq BIGINT NOT NULL DEFAULT 0,
  PRIMARY KEY (student_id, assignment_id, standard_id)
);

CREATE TABLE IF NOT EXISTS standard_mappings (
  id TEXT NOT NULL,
  assignment_id TEXT NOT NULL,
  standard_id TEXT NOT NULL,
  alignment_strength DOUBLE PRECISION NOT NULL DEFAULT 0,
  coverage_type TEXT NOT NULL DEFAULT '',
  weight DOUBLE PRECISION NOT NULL DEFAULT 0,
  PRIMARY KEY (assignment_id, standard_id)
);

CREATE TABLE IF NOT EXISTS event_log (
  seq BIGSERIAL PRIMARY KEY,
  site_id TEXT NOT NULL DEFAULT 'local',
  typ TEXT NOT NULL,
  key TEXT NOT NULL,
  data TEXT NOT NULL,
  created_at BIGINT NOT NULL
);
`
