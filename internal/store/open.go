package store

import (
	"context"
	"fmt"
	"log"

	"labattendance/internal/attendance"
)

// Backend names accepted by Open.
const (
	BackendAuto     = "auto"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// Backend is an attendance.Store with lifecycle and health hooks.
type Backend interface {
	attendance.Store
	Name() string
	Ping(ctx context.Context) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend     string
	DatabaseURL string
	SQLitePath  string
}

// Open returns the configured backend. In auto mode Postgres is used when a
// database URL is set and reachable, otherwise the SQLite file.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Backend {
	case BackendPostgres:
		return NewPostgres(ctx, opts.DatabaseURL)
	case BackendSQLite:
		return NewSQLite(ctx, opts.SQLitePath)
	case BackendMemory:
		return NewMemory(), nil
	case "", BackendAuto:
		if opts.DatabaseURL != "" {
			pg, err := NewPostgres(ctx, opts.DatabaseURL)
			if err == nil {
				return pg, nil
			}
			log.Printf("warning: postgres unavailable, falling back to sqlite at %s: %v", opts.SQLitePath, err)
		}
		return NewSQLite(ctx, opts.SQLitePath)
	}
	return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
}
