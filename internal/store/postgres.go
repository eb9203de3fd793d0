package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"labattendance/internal/attendance"
)

var postgresDialect = dialect{
	name:     "postgres",
	numbered: true,
	schema: []string{
		`CREATE TABLE IF NOT EXISTS attendance (
			id         BIGSERIAL PRIMARY KEY,
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
		var pgErr *pgconn.PgError
		return errors.As(err, &pgErr) && pgErr.Code == "23505"
	},
}

// NewPostgres opens a Postgres store through the pgx driver and creates the schema.
func NewPostgres(ctx context.Context, connString string) (*SQL, error) {
	if connString == "" {
		return nil, fmt.Errorf("%w: DATABASE_URL not set", attendance.ErrStoreUnavailable)
	}
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping postgres: %v", attendance.ErrStoreUnavailable, err)
	}
	s, err := newSQL(ctx, db, postgresDialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}
