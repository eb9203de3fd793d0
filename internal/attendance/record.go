package attendance

import "context"

// Layouts used for the stored date and time columns.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// Record is a single lab session. ClockOut is nil while the session is open.
type Record struct {
	ID         int64   `json:"id"`
	Identifier string  `json:"identifier"`
	Name       string  `json:"name"`
	Date       string  `json:"date"`
	ClockIn    string  `json:"clock_in"`
	ClockOut   *string `json:"clock_out,omitempty"`
}

// Open reports whether the session has not been clocked out yet.
func (r Record) Open() bool {
	return r.ClockOut == nil
}

// Store persists attendance records.
//
// CreateSession does not check for an existing open session; the Service does that
// before calling it. Backends that enforce open-session uniqueness return
// *AlreadyOpenError on a conflicting insert.
type Store interface {
	FindOpenSession(ctx context.Context, identifier string) (*Record, error)
	CreateSession(ctx context.Context, identifier, name, date, clockIn string) (int64, error)
	CloseSession(ctx context.Context, id int64, clockOut string) error
	ListAll(ctx context.Context) ([]Record, error)
	ClearAll(ctx context.Context) error
	LastRecordDate(ctx context.Context) (string, bool, error)
}
