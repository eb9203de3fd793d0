package attendance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ResetMode decides when all stored records are purged.
type ResetMode string

const (
	// ResetAlways clears every record before each clock-in.
	ResetAlways ResetMode = "always"
	// ResetPerDay clears every record on the first clock-in of a new calendar day.
	ResetPerDay ResetMode = "per_day"
)

// ParseResetMode accepts "always" or "per_day" in any case. Empty input selects ResetPerDay.
func ParseResetMode(s string) (ResetMode, error) {
	switch ResetMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ResetPerDay:
		return ResetPerDay, nil
	case ResetAlways:
		return ResetAlways, nil
	}
	return ResetPerDay, fmt.Errorf("unknown reset mode %q", s)
}

// Rejection reasons passed to Observer.Rejected.
const (
	ReasonValidation  = "validation"
	ReasonAlreadyOpen = "already_open"
	ReasonNotOpen     = "not_open"
)

// Observer is notified about session transitions.
type Observer interface {
	ClockedIn()
	ClockedOut()
	Rejected(reason string)
	Reset(mode ResetMode)
}

type nopObserver struct{}

func (nopObserver) ClockedIn()      {}
func (nopObserver) ClockedOut()     {}
func (nopObserver) Rejected(string) {}
func (nopObserver) Reset(ResetMode) {}

// Action identifies which transition produced an Outcome.
type Action string

const (
	ActionClockIn  Action = "clock_in"
	ActionClockOut Action = "clock_out"
)

// Outcome describes a successful clock-in or clock-out.
type Outcome struct {
	Action Action `json:"action"`
	Name   string `json:"name"`
	Time   string `json:"time"`
	Record Record `json:"record"`
}

// Message is the user-facing confirmation.
func (o Outcome) Message() string {
	verb := "clocked in"
	if o.Action == ActionClockOut {
		verb = "clocked out"
	}
	return fmt.Sprintf("%s %s at %s", o.Name, verb, o.Time)
}

// Service enforces the single-open-session rule and the reset policy.
type Service struct {
	store    Store
	mode     ResetMode
	now      func() time.Time
	observer Observer
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithObserver registers an observer for session transitions.
func WithObserver(o Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

// NewService creates a service backed by store.
func NewService(store Store, mode ResetMode, opts ...Option) *Service {
	if mode != ResetAlways {
		mode = ResetPerDay
	}
	s := &Service{store: store, mode: mode, now: time.Now, observer: nopObserver{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mode returns the configured reset mode.
func (s *Service) Mode() ResetMode { return s.mode }

// ClockIn opens a session for identifier.
func (s *Service) ClockIn(ctx context.Context, identifier, name string) (Outcome, error) {
	identifier = strings.TrimSpace(identifier)
	name = strings.TrimSpace(name)
	if identifier == "" || name == "" {
		s.observer.Rejected(ReasonValidation)
		return Outcome{}, &ValidationError{Message: "Please enter both identifier and name"}
	}

	now := s.now()
	if err := s.applyReset(ctx, now); err != nil {
		return Outcome{}, err
	}

	open, err := s.store.FindOpenSession(ctx, identifier)
	if err != nil {
		return Outcome{}, unavailable("find open session", err)
	}
	if open != nil {
		s.observer.Rejected(ReasonAlreadyOpen)
		return Outcome{}, &AlreadyOpenError{Identifier: identifier}
	}

	rec := Record{
		Identifier: identifier,
		Name:       name,
		Date:       now.Format(DateLayout),
		ClockIn:    now.Format(TimeLayout),
	}
	id, err := s.store.CreateSession(ctx, rec.Identifier, rec.Name, rec.Date, rec.ClockIn)
	if err != nil {
		var already *AlreadyOpenError
		if errors.As(err, &already) {
			s.observer.Rejected(ReasonAlreadyOpen)
			return Outcome{}, err
		}
		return Outcome{}, unavailable("create session", err)
	}
	rec.ID = id
	s.observer.ClockedIn()

	return Outcome{Action: ActionClockIn, Name: rec.Name, Time: FormatTime12h(rec.ClockIn), Record: rec}, nil
}

// ClockOut closes the open session for identifier.
func (s *Service) ClockOut(ctx context.Context, identifier string) (Outcome, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		s.observer.Rejected(ReasonValidation)
		return Outcome{}, &ValidationError{Message: "Please enter identifier"}
	}

	open, err := s.store.FindOpenSession(ctx, identifier)
	if err != nil {
		return Outcome{}, unavailable("find open session", err)
	}
	if open == nil {
		s.observer.Rejected(ReasonNotOpen)
		return Outcome{}, &NotOpenError{Identifier: identifier}
	}

	clockOut := s.now().Format(TimeLayout)
	if err := s.store.CloseSession(ctx, open.ID, clockOut); err != nil {
		if errors.Is(err, ErrNotFound) {
			// Cleared between lookup and update.
			s.observer.Rejected(ReasonNotOpen)
			return Outcome{}, &NotOpenError{Identifier: identifier}
		}
		return Outcome{}, unavailable("close session", err)
	}
	rec := *open
	rec.ClockOut = &clockOut
	s.observer.ClockedOut()

	return Outcome{Action: ActionClockOut, Name: rec.Name, Time: FormatTime12h(clockOut), Record: rec}, nil
}

// Records lists every record, most recent first.
func (s *Service) Records(ctx context.Context) ([]Record, error) {
	records, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, unavailable("list records", err)
	}
	return records, nil
}

func (s *Service) applyReset(ctx context.Context, now time.Time) error {
	switch s.mode {
	case ResetAlways:
	default:
		last, ok, err := s.store.LastRecordDate(ctx)
		if err != nil {
			return unavailable("last record date", err)
		}
		if !ok || last == now.Format(DateLayout) {
			return nil
		}
	}
	if err := s.store.ClearAll(ctx); err != nil {
		return unavailable("clear records", err)
	}
	s.observer.Reset(s.mode)
	return nil
}
