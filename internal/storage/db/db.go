package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	URL string
}

// Driver picks the database/sql driver for a connection URL. Anything that
// is not a postgres URL is treated as a SQLite path or file: URI.
func Driver(url string) string {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return DriverPostgres
	}
	return DriverSQLite
}

// NewConnection creates and verifies a new database connection
func NewConnection(ctx context.Context, cfg Config) (*sql.DB, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	driver := Driver(cfg.URL)
	db, err := sql.Open(driver, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	if driver == DriverSQLite {
		// One writer at a time avoids SQLITE_BUSY from concurrent jobs.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	}

	slog.Info("connected to database", slog.String("driver", driver))
	return db, nil
}

var jobsTable = `
CREATE TABLE IF NOT EXISTS jobs (
	id            TEXT PRIMARY KEY,
	input_type    TEXT NOT NULL,
	source        TEXT NOT NULL DEFAULT '',
	filename      TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL,
	transcription TEXT NOT NULL DEFAULT '',
	summary       TEXT NOT NULL DEFAULT '',
	kannada       TEXT NOT NULL DEFAULT '',
	kanglish      TEXT NOT NULL DEFAULT '',
	duration      TEXT NOT NULL DEFAULT '',
	error         TEXT NOT NULL DEFAULT '',
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL
)`

var vectorTables = []string{
	`CREATE EXTENSION IF NOT EXISTS vector`,
	`CREATE TABLE IF NOT EXISTS job_embeddings (
	job_id    TEXT PRIMARY KEY REFERENCES jobs(id) ON DELETE CASCADE,
	embedding vector(1536) NOT NULL
)`,
}

// Migrate creates the history tables. The embeddings table needs pgvector
// and is only created on Postgres when withVectors is set.
func Migrate(ctx context.Context, db *sql.DB, driver string, withVectors bool) error {
	stmts := []string{jobsTable, `CREATE INDEX IF NOT EXISTS jobs_created_at_idx ON jobs (created_at)`}
	if withVectors && driver == DriverPostgres {
		stmts = append(stmts, vectorTables...)
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
