package store

import (
	"context"
	"sort"
	"sync"

	"labattendance/internal/attendance"
)

// Memory is an in-process attendance.Store. Contents are lost on exit.
type Memory struct {
	mu      sync.Mutex
	nextID  int64
	records []attendance.Record
}

// NewMemory returns an empty memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Name() string                  { return "memory" }
func (m *Memory) Ping(ctx context.Context) error { return nil }
func (m *Memory) Close() error                   { return nil }

func (m *Memory) FindOpenSession(ctx context.Context, identifier string) (*attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.records) - 1; i >= 0; i-- {
		rec := m.records[i]
		if rec.Identifier == identifier && rec.Open() {
			return &rec, nil
		}
	}
	return nil, nil
}

func (m *Memory) CreateSession(ctx context.Context, identifier, name, date, clockIn string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.records {
		if rec.Identifier == identifier && rec.Open() {
			return 0, &attendance.AlreadyOpenError{Identifier: identifier}
		}
	}
	m.nextID++
	m.records = append(m.records, attendance.Record{
		ID:         m.nextID,
		Identifier: identifier,
		Name:       name,
		Date:       date,
		ClockIn:    clockIn,
	})
	return m.nextID, nil
}

func (m *Memory) CloseSession(ctx context.Context, id int64, clockOut string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if m.records[i].ID == id && m.records[i].Open() {
			out := clockOut
			m.records[i].ClockOut = &out
			return nil
		}
	}
	return attendance.ErrNotFound
}

func (m *Memory) ListAll(ctx context.Context) ([]attendance.Record, error) {
	m.mu.Lock()
	res := make([]attendance.Record, len(m.records))
	copy(res, m.records)
	m.mu.Unlock()

	sort.SliceStable(res, func(i, j int) bool {
		a, b := res[i], res[j]
		if a.Date != b.Date {
			return a.Date > b.Date
		}
		if a.ClockIn != b.ClockIn {
			return a.ClockIn > b.ClockIn
		}
		return a.ID > b.ID
	})
	return res, nil
}

func (m *Memory) ClearAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = nil
	return nil
}

func (m *Memory) LastRecordDate(ctx context.Context) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.records) == 0 {
		return "", false, nil
	}
	return m.records[len(m.records)-1].Date, true, nil
}
