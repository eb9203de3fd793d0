package attendance_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labattendance/internal/attendance"
	"labattendance/internal/store"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newService(t *testing.T, mode attendance.ResetMode, at time.Time) (*attendance.Service, *store.Memory, *fakeClock) {
	t.Helper()
	mem := store.NewMemory()
	clock := &fakeClock{t: at}
	return attendance.NewService(mem, mode, attendance.WithClock(clock.Now)), mem, clock
}

var afternoon = time.Date(2026, 10, 16, 14, 5, 0, 0, time.Local)

func TestClockIn_OpensSession(t *testing.T) {
	svc, mem, _ := newService(t, attendance.ResetPerDay, afternoon)
	ctx := context.Background()

	out, err := svc.ClockIn(ctx, "A1", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice clocked in at 02:05 PM", out.Message())
	assert.Equal(t, "2026-10-16", out.Record.Date)
	assert.Equal(t, "14:05:00", out.Record.ClockIn)

	open, err := mem.FindOpenSession(ctx, "A1")
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.True(t, open.Open())
	assert.Equal(t, out.Record.ID, open.ID)
}

func TestClockIn_TrimsInput(t *testing.T) {
	svc, mem, _ := newService(t, attendance.ResetPerDay, afternoon)
	ctx := context.Background()

	_, err := svc.ClockIn(ctx, "  A1 ", " Alice ")
	require.NoError(t, err)
	open, err := mem.FindOpenSession(ctx, "A1")
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, "Alice", open.Name)
}

func TestClockIn_Validation(t *testing.T) {
	svc, mem, _ := newService(t, attendance.ResetPerDay, afternoon)
	ctx := context.Background()

	for _, tc := range []struct{ id, name string }{{"", "Alice"}, {"A1", ""}, {" ", " "}} {
		_, err := svc.ClockIn(ctx, tc.id, tc.name)
		var verr *attendance.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "Please enter both identifier and name", err.Error())
		assert.True(t, attendance.IsRejection(err))
	}
	records, _ := mem.ListAll(ctx)
	assert.Empty(t, records)
}

func TestClockIn_Twice(t *testing.T) {
	svc, mem, _ := newService(t, attendance.ResetPerDay, afternoon)
	ctx := context.Background()

	_, err := svc.ClockIn(ctx, "A1", "Alice")
	require.NoError(t, err)

	_, err = svc.ClockIn(ctx, "A1", "Alice")
	var already *attendance.AlreadyOpenError
	require.True(t, errors.As(err, &already))
	assert.Equal(t, "A1 is already clocked in. Please clock out first.", err.Error())

	records, err := mem.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestClockOut_NotOpen(t *testing.T) {
	svc, mem, _ := newService(t, attendance.ResetPerDay, afternoon)
	ctx := context.Background()

	_, err := svc.ClockOut(ctx, "B2")
	var notOpen *attendance.NotOpenError
	require.True(t, errors.As(err, &notOpen))
	assert.Equal(t, "B2 has not clocked in yet.", err.Error())

	records, _ := mem.ListAll(ctx)
	assert.Empty(t, records)
}

func TestClockOut_Validation(t *testing.T) {
	svc, _, _ := newService(t, attendance.ResetPerDay, afternoon)

	_, err := svc.ClockOut(context.Background(), "   ")
	var verr *attendance.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Please enter identifier", err.Error())
}

func TestClockInThenOut(t *testing.T) {
	svc, _, clock := newService(t, attendance.ResetPerDay, afternoon)
	ctx := context.Background()

	_, err := svc.ClockIn(ctx, "A1", "Alice")
	require.NoError(t, err)

	clock.t = afternoon.Add(2*time.Hour + 30*time.Minute)
	out, err := svc.ClockOut(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Alice clocked out at 04:35 PM", out.Message())

	records, err := svc.Records(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "A1", records[0].Identifier)
	require.NotNil(t, records[0].ClockOut)
	assert.Equal(t, "16:35:00", *records[0].ClockOut)

	_, err = svc.ClockOut(ctx, "A1")
	assert.True(t, attendance.IsRejection(err))
}

func TestReset_PerDay(t *testing.T) {
	svc, mem, clock := newService(t, attendance.ResetPerDay, afternoon)
	ctx := context.Background()

	_, err := mem.CreateSession(ctx, "OLD", "Yesterday", "2026-10-15", "10:00:00")
	require.NoError(t, err)
	_, err = mem.CreateSession(ctx, "OLD2", "Yesterday", "2026-10-15", "11:00:00")
	require.NoError(t, err)

	_, err = svc.ClockIn(ctx, "A1", "Alice")
	require.NoError(t, err)

	records, err := mem.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "A1", records[0].Identifier)

	// Same day: nothing is cleared.
	clock.t = afternoon.Add(time.Minute)
	_, err = svc.ClockIn(ctx, "B2", "Bob")
	require.NoError(t, err)
	records, _ = mem.ListAll(ctx)
	assert.Len(t, records, 2)
}

func TestReset_PerDayOpenSessionFromYesterday(t *testing.T) {
	svc, mem, _ := newService(t, attendance.ResetPerDay, afternoon)
	ctx := context.Background()

	_, err := mem.CreateSession(ctx, "A1", "Alice", "2026-10-15", "17:00:00")
	require.NoError(t, err)

	// The stale open session is purged, so clocking in again succeeds.
	_, err = svc.ClockIn(ctx, "A1", "Alice")
	require.NoError(t, err)
	records, _ := mem.ListAll(ctx)
	require.Len(t, records, 1)
	assert.Equal(t, "2026-10-16", records[0].Date)
}

func TestReset_Always(t *testing.T) {
	svc, mem, _ := newService(t, attendance.ResetAlways, afternoon)
	ctx := context.Background()

	_, err := svc.ClockIn(ctx, "A1", "Alice")
	require.NoError(t, err)
	_, err = svc.ClockIn(ctx, "B2", "Bob")
	require.NoError(t, err)

	records, err := mem.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "B2", records[0].Identifier)
}

func TestReset_NotAppliedOnRejectedInput(t *testing.T) {
	svc, mem, _ := newService(t, attendance.ResetAlways, afternoon)
	ctx := context.Background()

	_, err := mem.CreateSession(ctx, "A1", "Alice", "2026-10-16", "09:00:00")
	require.NoError(t, err)
	_, err = svc.ClockIn(ctx, "", "")
	require.Error(t, err)

	records, _ := mem.ListAll(ctx)
	assert.Len(t, records, 1)
}

func TestParseResetMode(t *testing.T) {
	for in, want := range map[string]attendance.ResetMode{
		"":        attendance.ResetPerDay,
		"per_day": attendance.ResetPerDay,
		"ALWAYS":  attendance.ResetAlways,
		" always": attendance.ResetAlways,
	} {
		got, err := attendance.ParseResetMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	got, err := attendance.ParseResetMode("weekly")
	assert.Error(t, err)
	assert.Equal(t, attendance.ResetPerDay, got)
}

type brokenStore struct{ store.Memory }

var errDown = errors.New("connection refused")

func (b *brokenStore) FindOpenSession(context.Context, string) (*attendance.Record, error) {
	return nil, errDown
}

func (b *brokenStore) ListAll(context.Context) ([]attendance.Record, error) {
	return nil, errDown
}

func TestStoreFailuresAreUnavailable(t *testing.T) {
	svc := attendance.NewService(&brokenStore{}, attendance.ResetPerDay)
	ctx := context.Background()

	_, err := svc.ClockIn(ctx, "A1", "Alice")
	assert.ErrorIs(t, err, attendance.ErrStoreUnavailable)
	assert.False(t, attendance.IsRejection(err))

	_, err = svc.ClockOut(ctx, "A1")
	assert.ErrorIs(t, err, attendance.ErrStoreUnavailable)

	_, err = svc.Records(ctx)
	assert.ErrorIs(t, err, attendance.ErrStoreUnavailable)
	assert.Contains(t, err.Error(), "connection refused")
}

type countingObserver struct {
	in, out int
	rejects map[string]int
	resets  []attendance.ResetMode
}

func (c *countingObserver) ClockedIn()  { c.in++ }
func (c *countingObserver) ClockedOut() { c.out++ }
func (c *countingObserver) Rejected(reason string) {
	if c.rejects == nil {
		c.rejects = map[string]int{}
	}
	c.rejects[reason]++
}
func (c *countingObserver) Reset(m attendance.ResetMode) { c.resets = append(c.resets, m) }

func TestObserver(t *testing.T) {
	obs := &countingObserver{}
	clock := &fakeClock{t: afternoon}
	svc := attendance.NewService(store.NewMemory(), attendance.ResetAlways,
		attendance.WithClock(clock.Now), attendance.WithObserver(obs))
	ctx := context.Background()

	_, _ = svc.ClockIn(ctx, "A1", "Alice")
	_, _ = svc.ClockOut(ctx, "A1")
	_, _ = svc.ClockOut(ctx, "A1")
	_, _ = svc.ClockIn(ctx, "", "")

	assert.Equal(t, 1, obs.in)
	assert.Equal(t, 1, obs.out)
	assert.Equal(t, map[string]int{attendance.ReasonNotOpen: 1, attendance.ReasonValidation: 1}, obs.rejects)
	assert.Equal(t, []attendance.ResetMode{attendance.ResetAlways}, obs.resets)
}
