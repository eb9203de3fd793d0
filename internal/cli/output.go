package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"labattendance/internal/attendance"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Request rejected (already clocked in, not clocked in, missing input)
	ExitCommandError = 2 // Command error (bad flags, database unavailable)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// describe turns a service error into the line shown to the operator.
func describe(err error) string {
	if attendance.IsRejection(err) {
		return "Error: " + err.Error()
	}
	return fmt.Sprintf("Error: database error: %v", err)
}

// exitFor maps a service error to an ExitError.
func exitFor(err error) error {
	if attendance.IsRejection(err) {
		return WrapExitError(ExitFailure, "request rejected", err)
	}
	return WrapExitError(ExitCommandError, "database error", err)
}

// RenderRecords writes records as a fixed-width table.
func RenderRecords(w io.Writer, records []attendance.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No attendance records found.")
		return
	}

	fmt.Fprintf(w, "%-12s | %-20s | %-12s | %-10s | %-10s\n", "Identifier", "Name", "Date", "Clock-In", "Clock-Out")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, r := range records {
		clockOut := "---"
		if r.ClockOut != nil {
			clockOut = attendance.FormatTime12h(*r.ClockOut)
		}
		fmt.Fprintf(w, "%-12s | %-20s | %-12s | %-10s | %-10s\n",
			r.Identifier, r.Name, r.Date, attendance.FormatTime12h(r.ClockIn), clockOut)
	}
	fmt.Fprintf(w, "\nTotal records: %d\n", len(records))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
