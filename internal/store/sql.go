package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"labattendance/internal/attendance"
)

// dialect holds the per-driver differences of the SQL backends.
type dialect struct {
	name            string
	schema          []string
	numbered        bool // $1, $2 placeholders instead of ?
	uniqueViolation func(error) bool
}

// SQL implements attendance.Store on top of database/sql.
type SQL struct {
	db      *sql.DB
	dialect dialect
}

func newSQL(ctx context.Context, db *sql.DB, d dialect) (*SQL, error) {
	s := &SQL{db: db, dialect: d}
	if err := s.migrate(ctx); err != nil {
		return nil, fmt.Errorf("create %s schema: %w", d.name, err)
	}
	return s, nil
}

func (s *SQL) migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Name returns the backend name.
func (s *SQL) Name() string { return s.dialect.name }

// Ping verifies the database is reachable.
func (s *SQL) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", attendance.ErrStoreUnavailable, err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *SQL) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// FindOpenSession returns the latest record for identifier without a clock-out.
func (s *SQL) FindOpenSession(ctx context.Context, identifier string) (*attendance.Record, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT id, identifier, name, date, clock_in, clock_out
		FROM attendance
		WHERE identifier = ? AND clock_out IS NULL
		ORDER BY id DESC
		LIMIT 1
	`), identifier)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// CreateSession inserts an open record and returns its id.
func (s *SQL) CreateSession(ctx context.Context, identifier, name, date, clockIn string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, s.rebind(`
		INSERT INTO attendance (identifier, name, date, clock_in)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`), identifier, name, date, clockIn).Scan(&id)
	if err != nil {
		if s.dialect.uniqueViolation(err) {
			return 0, &attendance.AlreadyOpenError{Identifier: identifier}
		}
		return 0, err
	}
	return id, nil
}

// CloseSession sets the clock-out time of an open record.
func (s *SQL) CloseSession(ctx context.Context, id int64, clockOut string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE attendance SET clock_out = ?
		WHERE id = ? AND clock_out IS NULL
	`), clockOut, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return attendance.ErrNotFound
	}
	return nil
}

// ListAll returns every record, most recent first.
func (s *SQL) ListAll(ctx context.Context) ([]attendance.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, identifier, name, date, clock_in, clock_out
		FROM attendance
		ORDER BY date DESC, clock_in DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []attendance.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

// ClearAll deletes every record.
func (s *SQL) ClearAll(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM attendance`)
	return err
}

// LastRecordDate returns the date of the most recently inserted record.
func (s *SQL) LastRecordDate(ctx context.Context) (string, bool, error) {
	var date string
	err := s.db.QueryRowContext(ctx, `SELECT date FROM attendance ORDER BY id DESC LIMIT 1`).Scan(&date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return date, true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (attendance.Record, error) {
	var rec attendance.Record
	var clockOut sql.NullString
	if err := row.Scan(&rec.ID, &rec.Identifier, &rec.Name, &rec.Date, &rec.ClockIn, &clockOut); err != nil {
		return attendance.Record{}, err
	}
	if clockOut.Valid {
		out := clockOut.String
		rec.ClockOut = &out
	}
	return rec, nil
}

// rebind rewrites ? placeholders to $n for drivers that need numbered parameters.
func (s *SQL) rebind(query string) string {
	if !s.dialect.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
