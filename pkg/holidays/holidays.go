package holidays

import (
	"sort"
	"time"
)

// Calendar classifies dates as workdays, weekends or Czech public holidays.
// GoodFriday adds Velký pátek (a holiday since 2016) to the list.
type Calendar struct {
	GoodFriday bool
}

type fixedDay struct {
	month time.Month
	day   int
}

var fixedHolidays = []fixedDay{
	{time.January, 1},    // Nový rok, Den obnovy samostatného českého státu
	{time.May, 1},        // Svátek práce
	{time.May, 8},        // Den vítězství
	{time.July, 5},       // Cyril a Metoděj
	{time.July, 6},       // Jan Hus
	{time.September, 28}, // Den české státnosti
	{time.October, 28},   // Vznik samostatného československého státu
	{time.November, 17},  // Den boje za svobodu a demokracii
	{time.December, 24},
	{time.December, 25},
	{time.December, 26},
}

const goodFridaySince = 2016

// New returns a calendar; pass goodFriday=false to get only the fixed days plus Easter Monday.
func New(goodFriday bool) Calendar {
	return Calendar{GoodFriday: goodFriday}
}

// EasterSunday computes Gregorian Easter Sunday with the anonymous (Meeus/Jones/Butcher) algorithm.
func EasterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// HolidaysForYear returns the public holidays of the year as UTC midnights, sorted.
func (c Calendar) HolidaysForYear(year int) []time.Time {
	days := make([]time.Time, 0, len(fixedHolidays)+2)
	for _, fd := range fixedHolidays {
		days = append(days, time.Date(year, fd.month, fd.day, 0, 0, 0, 0, time.UTC))
	}

	easter := EasterSunday(year)
	days = append(days, easter.AddDate(0, 0, 1))
	if c.GoodFriday && year >= goodFridaySince {
		days = append(days, easter.AddDate(0, 0, -2))
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

func (c Calendar) holidaySet(year int) map[int]struct{} {
	set := make(map[int]struct{}, len(fixedHolidays)+2)
	for _, day := range c.HolidaysForYear(year) {
		set[day.YearDay()] = struct{}{}
	}
	return set
}

// IsHoliday reports whether the calendar date of t is a public holiday.
func (c Calendar) IsHoliday(t time.Time) bool {
	_, ok := c.holidaySet(t.Year())[dateOf(t).YearDay()]
	return ok
}

// IsWeekend reports whether t falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsWorkday is true for Monday to Friday dates that are not public holidays.
func (c Calendar) IsWorkday(t time.Time) bool {
	return !IsWeekend(t) && !c.IsHoliday(t)
}

// CountWorkdaysInRange counts workdays between from and to, both inclusive.
// An inverted range yields 0.
func (c Calendar) CountWorkdaysInRange(from, to time.Time) int {
	from, to = dateOf(from), dateOf(to)

	sets := make(map[int]map[int]struct{})
	count := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if IsWeekend(d) {
			continue
		}
		set, ok := sets[d.Year()]
		if !ok {
			set = c.holidaySet(d.Year())
			sets[d.Year()] = set
		}
		if _, holiday := set[d.YearDay()]; holiday {
			continue
		}
		count++
	}
	return count
}

// dateOf drops the clock part and location, keeping the calendar date.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
