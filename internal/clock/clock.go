package clock

import (
	"sync"
	"time"

	"dochazka-bot/pkg/timefmt"
)

// Clock is the single source of "now" for the engine, fixed to the organization's timezone.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

type systemClock struct {
	loc *time.Location
}

// New returns the wall clock in loc.
func New(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return systemClock{loc: loc}
}

func (c systemClock) Now() time.Time           { return time.Now().In(c.loc) }
func (c systemClock) Location() *time.Location { return c.loc }

// Fixed is a frozen clock for tests and replays.
type Fixed struct {
	mu  sync.Mutex
	now time.Time
}

func NewFixed(now time.Time) *Fixed {
	return &Fixed{now: now}
}

func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fixed) Location() *time.Location {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now.Location()
}

// Set moves the clock to t.
func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}

// Advance moves the clock forward by d.
func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

// Today returns the current local date as YYYY-MM-DD.
func Today(c Clock) string {
	return c.Now().Format(timefmt.DateLayout)
}

// ParseDate reads a YYYY-MM-DD date as local midnight in c's timezone.
func ParseDate(c Clock, s string) (time.Time, error) {
	return time.ParseInLocation(timefmt.DateLayout, s, c.Location())
}

// EndOfDay returns the last second of the calendar date of t in loc.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 23, 59, 59, 0, loc)
}
