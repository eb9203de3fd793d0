package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"labattendance/internal/attendance"
	"labattendance/internal/config"
	"labattendance/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Backend     string
	DatabaseURL string
	DBPath      string
	ResetMode   string
	Format      string // "json" | "text"

	now func() time.Time
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command of the terminal attendance program.
// Flag defaults come from cfg.
func NewRootCommand(cfg config.App) *cobra.Command {
	return newRootCommand(&RootOptions{
		Backend:     cfg.StoreBackend,
		DatabaseURL: cfg.DatabaseURL,
		DBPath:      cfg.SQLitePath,
		ResetMode:   string(cfg.ResetMode),
		now:         time.Now,
	})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "lab",
		Short:         "Student lab attendance",
		Long:          "Clock students in and out of the lab and view attendance records.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if _, err := attendance.ParseResetMode(opts.ResetMode); err != nil {
				return WrapExitError(ExitCommandError, "invalid --reset-mode", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMenu(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", opts.Backend, "store backend (auto|postgres|sqlite|memory)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", opts.DBPath, "SQLite database file")
	cmd.PersistentFlags().StringVar(&opts.ResetMode, "reset-mode", opts.ResetMode, "record reset policy (always|per_day)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(newMenuCommand(opts))
	cmd.AddCommand(newClockInCommand(opts))
	cmd.AddCommand(newClockOutCommand(opts))
	cmd.AddCommand(newListCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// openService opens the configured store and wraps it in a Service.
// The returned close func must be called when the command finishes.
func (o *RootOptions) openService(ctx context.Context) (*attendance.Service, func(), error) {
	backend, err := store.Open(ctx, store.Options{
		Backend:     o.Backend,
		DatabaseURL: o.DatabaseURL,
		SQLitePath:  o.DBPath,
	})
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "open attendance store", err)
	}
	mode, _ := attendance.ParseResetMode(o.ResetMode)
	now := o.now
	if now == nil {
		now = time.Now
	}
	svc := attendance.NewService(backend, mode, attendance.WithClock(now))
	return svc, func() { _ = backend.Close() }, nil
}
