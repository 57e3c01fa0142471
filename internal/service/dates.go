package service

import (
	"fmt"
	"time"

	"dochazka-bot/pkg/timefmt"
)

func parseDate(loc *time.Location, s string) (time.Time, error) {
	t, err := time.ParseInLocation(timefmt.DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad date %q", ErrInvalidDateRange, s)
	}
	return t, nil
}

// period is an inclusive range of YYYY-MM-DD dates.
type period struct {
	from, to string
}

func yearPeriod(year int) period {
	return period{
		from: fmt.Sprintf("%04d-01-01", year),
		to:   fmt.Sprintf("%04d-12-31", year),
	}
}

func monthPeriod(year int, month time.Month) period {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return period{
		from: first.Format(timefmt.DateLayout),
		to:   last.Format(timefmt.DateLayout),
	}
}

// clip intersects p with [from, to]. ok is false when they do not overlap.
func (p period) clip(from, to string) (period, bool) {
	out := p
	if from > out.from {
		out.from = from
	}
	if to < out.to {
		out.to = to
	}
	return out, out.from <= out.to
}

func (p period) contains(day string) bool {
	return p.from <= day && day <= p.to
}

func (p period) bounds() (time.Time, time.Time) {
	from, _ := time.Parse(timefmt.DateLayout, p.from)
	to, _ := time.Parse(timefmt.DateLayout, p.to)
	return from, to
}
