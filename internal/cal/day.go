// Package cal provides the calendar-day value type used by all scheduling
// and streak math. A Day is a civil date only; time of day and zone never
// enter rule evaluation.
package cal

import (
	"fmt"
	"time"
)

// DayFormat is the canonical storage and display format for a Day.
const DayFormat = "2006-01-02"

// Day identifies one calendar date. The zero value is not a valid date;
// use IsZero to detect it. Day is comparable and usable as a map key.
type Day struct {
	year  int
	month time.Month
	day   int
}

// New returns the Day for the given date. Out-of-range values are
// normalized the same way time.Date normalizes them (Feb 30 becomes Mar 1).
func New(year int, month time.Month, day int) Day {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Day{year: t.Year(), month: t.Month(), day: t.Day()}
}

// FromTime returns the civil date of t in t's location.
func FromTime(t time.Time) Day {
	y, m, d := t.Date()
	return Day{year: y, month: m, day: d}
}

// Today returns the current date on the device's local calendar.
func Today() Day {
	return FromTime(time.Now())
}

// Parse parses a date in YYYY-MM-DD form.
func Parse(s string) (Day, error) {
	t, err := time.Parse(DayFormat, s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return FromTime(t), nil
}

// Year returns the year.
func (d Day) Year() int { return d.year }

// Month returns the month.
func (d Day) Month() time.Month { return d.month }

// Day returns the day of the month (1-31).
func (d Day) Day() int { return d.day }

// Date returns the year, month and day of the month.
func (d Day) Date() (int, time.Month, int) { return d.year, d.month, d.day }

// Weekday returns the day of the week.
func (d Day) Weekday() time.Weekday {
	return d.utc().Weekday()
}

// AddDays returns the date n days after d (or before, for negative n).
func (d Day) AddDays(n int) Day {
	return FromTime(d.utc().AddDate(0, 0, n))
}

// DaysUntil returns the number of days from d to o. Negative when o is
// before d. d.DaysUntil(d.AddDays(n)) == n for any n.
func (d Day) DaysUntil(o Day) int {
	return int(o.utc().Sub(d.utc()).Hours() / 24)
}

// Before reports whether d falls before o.
func (d Day) Before(o Day) bool {
	if d.year != o.year {
		return d.year < o.year
	}
	if d.month != o.month {
		return d.month < o.month
	}
	return d.day < o.day
}

// After reports whether d falls after o.
func (d Day) After(o Day) bool { return o.Before(d) }

// IsZero reports whether d is the zero Day.
func (d Day) IsZero() bool { return d == Day{} }

// String formats the date as YYYY-MM-DD.
func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.year, int(d.month), d.day)
}

// Time returns midnight of d in the given location.
func (d Day) Time(loc *time.Location) time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, loc)
}

// MarshalText implements encoding.TextMarshaler.
func (d Day) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Day) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Later returns the later of a and b.
func Later(a, b Day) Day {
	if b.After(a) {
		return b
	}
	return a
}

// utc returns midnight of d in UTC. All day arithmetic goes through UTC
// so DST transitions can never shorten or lengthen a day.
func (d Day) utc() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}
