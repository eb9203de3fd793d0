package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-sqlite3"
)

var sqliteDialect = dialect{
	name: "sqlite",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS attendance (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			identifier TEXT NOT NULL,
			name       TEXT NOT NULL,
			date       TEXT NOT NULL,
			clock_in   TEXT NOT NULL,
			clock_out  TEXT
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_attendance_open ON attendance (identifier) WHERE clock_out IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_attendance_listing ON attendance (date DESC, clock_in DESC)`,
	},
	uniqueViolation: func(err error) bool {
		var sqliteErr sqlite3.Error
		return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	},
}

// NewSQLite opens (or creates) a SQLite database file and creates the schema.
func NewSQLite(ctx context.Context, path string) (*SQL, error) {
	if path == "" {
		path = "attendance.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s, err := newSQL(ctx, db, sqliteDialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}
