package calendar

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Arnutt-N/time-reminder/internal/domain"
)

// ErrNoFallback is returned when no fallback holiday list was loaded.
var ErrNoFallback = errors.New("no fallback holiday list")

// HolidayLookup finds the holiday on a date. A nil holiday with a nil
// error means the date is not a holiday.
type HolidayLookup interface {
	FindHolidayByDate(ctx context.Context, date time.Time) (*domain.Holiday, error)
}

// Source tells which path produced a day decision.
type Source string

const (
	SourceWeekend  Source = "weekend"
	SourceStore    Source = "store"
	SourceFallback Source = "fallback"
	SourceFailOpen Source = "fail_open"
)

// DayStatus is the calendar decision for one local date.
type DayStatus struct {
	Date    time.Time
	Weekend bool
	Holiday *domain.Holiday
	Source  Source
}

// NonBusiness reports whether reminders should be skipped.
func (s DayStatus) NonBusiness() bool {
	return s.Weekend || s.Holiday != nil
}

// Resolver decides whether a moment falls on a non-business day in the
// business timezone. It is safe for concurrent use.
type Resolver struct {
	store HolidayLookup
	loc   *time.Location
	log   *zap.Logger

	mu       sync.RWMutex
	fallback HolidayLookup
}

// New creates a Resolver. fallback may be nil and set later with SetFallback.
func New(store HolidayLookup, fallback HolidayLookup, loc *time.Location, log *zap.Logger) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	return &Resolver{store: store, fallback: fallback, loc: loc, log: log}
}

// SetFallback swaps the in-memory holiday list consulted when the store fails.
func (r *Resolver) SetFallback(f HolidayLookup) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = f
}

// Location returns the business timezone.
func (r *Resolver) Location() *time.Location { return r.loc }

// IsNonBusinessDay reports whether now is a weekend or holiday.
// Lookup failures on both paths resolve to false so reminders keep going out.
func (r *Resolver) IsNonBusinessDay(ctx context.Context, now time.Time) bool {
	return r.Describe(ctx, now).NonBusiness()
}

// Describe returns the full decision for now, including which path answered.
func (r *Resolver) Describe(ctx context.Context, now time.Time) DayStatus {
	date := domain.DateOnly(now, r.loc)
	st := DayStatus{Date: date}

	// Weekends never touch the store.
	if domain.IsWeekend(date) {
		st.Weekend = true
		st.Source = SourceWeekend
		return st
	}

	h, err := r.store.FindHolidayByDate(ctx, date)
	if err == nil {
		st.Holiday = h
		st.Source = SourceStore
		return st
	}
	r.log.Warn("holiday store lookup failed, using fallback list",
		zap.String("date", domain.DateKey(date)), zap.Error(err))

	r.mu.RLock()
	fb := r.fallback
	r.mu.RUnlock()

	if fb == nil {
		err = ErrNoFallback
	} else {
		h, err = fb.FindHolidayByDate(ctx, date)
	}
	if err != nil {
		r.log.Error("holiday fallback failed, assuming business day",
			zap.String("date", domain.DateKey(date)), zap.Error(err))
		st.Source = SourceFailOpen
		return st
	}
	st.Holiday = h
	st.Source = SourceFallback
	return st
}
