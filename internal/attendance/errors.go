package attendance

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by a Store when a record id does not exist.
	ErrNotFound = errors.New("attendance record not found")
	// ErrStoreUnavailable wraps any failure of the underlying storage.
	ErrStoreUnavailable = errors.New("attendance store unavailable")
)

// ValidationError reports missing input. Message is shown to the user verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// AlreadyOpenError is returned when clocking in an identifier that has an open session.
type AlreadyOpenError struct {
	Identifier string
}

func (e *AlreadyOpenError) Error() string {
	return fmt.Sprintf("%s is already clocked in. Please clock out first.", e.Identifier)
}

// NotOpenError is returned when clocking out an identifier without an open session.
type NotOpenError struct {
	Identifier string
}

func (e *NotOpenError) Error() string {
	return fmt.Sprintf("%s has not clocked in yet.", e.Identifier)
}

// IsRejection reports whether err is a business-rule or validation rejection
// rather than a storage failure.
func IsRejection(err error) bool {
	var v *ValidationError
	var a *AlreadyOpenError
	var n *NotOpenError
	return errors.As(err, &v) || errors.As(err, &a) || errors.As(err, &n)
}

func unavailable(op string, err error) error {
	if errors.Is(err, ErrStoreUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %v", op, ErrStoreUnavailable, err)
}
