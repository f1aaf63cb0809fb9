package task

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
	"time"

	"github.com/ritual-sh/ritual/internal/cal"
)

// Valid rule kinds.
const (
	KindNone    = "none"
	KindDaily   = "daily"
	KindWeekly  = "weekly"
	KindMonthly = "monthly"
)

// WeekdaySet is a set of weekdays stored as a bitmask indexed by time.Weekday.
type WeekdaySet uint8

// weekdayOrder lists weekdays Monday-first for display and canonical output.
var weekdayOrder = [7]time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

var weekdayShort = map[time.Weekday]string{
	time.Monday:    "mon",
	time.Tuesday:   "tue",
	time.Wednesday: "wed",
	time.Thursday:  "thu",
	time.Friday:    "fri",
	time.Saturday:  "sat",
	time.Sunday:    "sun",
}

// Weekdays builds a set from the given days.
func Weekdays(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s |= 1 << uint(d)
	}
	return s
}

// Has reports whether d is in the set.
func (s WeekdaySet) Has(d time.Weekday) bool { return s&(1<<uint(d)) != 0 }

// Count returns the number of weekdays in the set.
func (s WeekdaySet) Count() int { return bits.OnesCount8(uint8(s)) }

// IsEmpty reports whether the set has no weekdays.
func (s WeekdaySet) IsEmpty() bool { return s == 0 }

// Days returns the set's weekdays, Monday first.
func (s WeekdaySet) Days() []time.Weekday {
	var out []time.Weekday
	for _, d := range weekdayOrder {
		if s.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

// String returns the canonical storage form, e.g. "mon,wed,fri".
func (s WeekdaySet) String() string {
	var parts []string
	for _, d := range s.Days() {
		parts = append(parts, weekdayShort[d])
	}
	return strings.Join(parts, ",")
}

// Label returns a display form, e.g. "Mon, Wed, Fri".
func (s WeekdaySet) Label() string {
	var parts []string
	for _, d := range s.Days() {
		parts = append(parts, d.String()[:3])
	}
	return strings.Join(parts, ", ")
}

// ParseWeekdaySet parses a comma-separated weekday list. Accepts full names,
// three-letter abbreviations, and numbers 1-7 (1 = Monday). An empty string
// yields the empty set.
func ParseWeekdaySet(s string) (WeekdaySet, error) {
	var set WeekdaySet
	if strings.TrimSpace(s) == "" {
		return set, nil
	}
	for _, tok := range strings.Split(s, ",") {
		d, err := parseWeekday(tok)
		if err != nil {
			return 0, err
		}
		set |= 1 << uint(d)
	}
	return set, nil
}

func parseWeekday(s string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mon", "monday", "1":
		return time.Monday, nil
	case "tue", "tues", "tuesday", "2":
		return time.Tuesday, nil
	case "wed", "wednesday", "3":
		return time.Wednesday, nil
	case "thu", "thur", "thursday", "4":
		return time.Thursday, nil
	case "fri", "friday", "5":
		return time.Friday, nil
	case "sat", "saturday", "6":
		return time.Saturday, nil
	case "sun", "sunday", "7":
		return time.Sunday, nil
	default:
		return 0, fmt.Errorf("invalid weekday %q — valid values: mon..sun, monday..sunday, or 1..7 (1 = monday)", strings.TrimSpace(s))
	}
}

// MonthDaySet is a set of days of the month (1-31) stored as a bitmask.
type MonthDaySet uint32

// MonthDays builds a set from the given days of the month. Out-of-range
// values are ignored.
func MonthDays(days ...int) MonthDaySet {
	var s MonthDaySet
	for _, d := range days {
		if d >= 1 && d <= 31 {
			s |= 1 << uint(d)
		}
	}
	return s
}

// Has reports whether day d (1-31) is in the set.
func (s MonthDaySet) Has(d int) bool {
	if d < 1 || d > 31 {
		return false
	}
	return s&(1<<uint(d)) != 0
}

// Count returns the number of days in the set.
func (s MonthDaySet) Count() int { return bits.OnesCount32(uint32(s)) }

// IsEmpty reports whether the set has no days.
func (s MonthDaySet) IsEmpty() bool { return s == 0 }

// Days returns the set's days in ascending order.
func (s MonthDaySet) Days() []int {
	var out []int
	for d := 1; d <= 31; d++ {
		if s.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

// String returns the canonical storage form, e.g. "1,15,31".
func (s MonthDaySet) String() string {
	var parts []string
	for _, d := range s.Days() {
		parts = append(parts, strconv.Itoa(d))
	}
	return strings.Join(parts, ",")
}

// ParseMonthDaySet parses a comma-separated list of days of the month.
// An empty string yields the empty set.
func ParseMonthDaySet(s string) (MonthDaySet, error) {
	var set MonthDaySet
	if strings.TrimSpace(s) == "" {
		return set, nil
	}
	for _, tok := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil || n < 1 || n > 31 {
			return 0, fmt.Errorf("invalid day of month %q — valid values: 1..31", strings.TrimSpace(tok))
		}
		set |= 1 << uint(n)
	}
	return set, nil
}

// Rule is a task's recurrence rule: a kind plus the set that kind reads.
// Weekdays applies only to weekly rules, MonthDays only to monthly ones.
type Rule struct {
	Kind      string
	Weekdays  WeekdaySet
	MonthDays MonthDaySet
}

// RuleNone returns the one-time rule.
func RuleNone() Rule { return Rule{Kind: KindNone} }

// RuleDaily returns the every-day rule.
func RuleDaily() Rule { return Rule{Kind: KindDaily} }

// RuleWeekly returns a rule due on the given weekdays.
func RuleWeekly(days WeekdaySet) Rule { return Rule{Kind: KindWeekly, Weekdays: days} }

// RuleMonthly returns a rule due on the given days of the month.
func RuleMonthly(days MonthDaySet) Rule { return Rule{Kind: KindMonthly, MonthDays: days} }

// ParseKind validates and normalizes a rule kind string.
// Accepts short aliases: n/none/once, d/day/daily, w/week/weekly, m/month/monthly.
func ParseKind(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "n", "none", "once", "":
		return KindNone, nil
	case "d", "day", "daily":
		return KindDaily, nil
	case "w", "week", "weekly":
		return KindWeekly, nil
	case "m", "month", "monthly":
		return KindMonthly, nil
	default:
		return "", fmt.Errorf("invalid repeat %q — valid values: none (n), daily (d), weekly (w), monthly (m)", s)
	}
}

// IsRecurring reports whether the rule repeats (anything but none).
func (r Rule) IsRecurring() bool {
	return r.Kind == KindDaily || r.Kind == KindWeekly || r.Kind == KindMonthly
}

// Label returns a short display label, e.g. "weekly on Mon, Wed, Fri".
func (r Rule) Label() string {
	switch r.Kind {
	case KindDaily:
		return "daily"
	case KindWeekly:
		if r.Weekdays.IsEmpty() {
			return "weekly (no days)"
		}
		return "weekly on " + r.Weekdays.Label()
	case KindMonthly:
		if r.MonthDays.IsEmpty() {
			return "monthly (no days)"
		}
		return "monthly on " + r.MonthDays.String()
	default:
		return "one-time"
	}
}

// effectiveStart is the first day an occurrence can exist. A start date only
// applies to none/daily rules and is ignored when it precedes the creation
// day, so a bad stored value can never contradict task history.
func (r Rule) effectiveStart(createdOn cal.Day, startOn *cal.Day) cal.Day {
	if startOn == nil || r.Kind == KindWeekly || r.Kind == KindMonthly {
		return createdOn
	}
	return cal.Later(createdOn, *startOn)
}

// IsDue reports whether the rule schedules an occurrence on day. For none
// rules this is only the necessary condition (day within lifetime); whether
// the task was already completed once is the caller's check, since it needs
// the completion history.
func (r Rule) IsDue(day, createdOn cal.Day, startOn *cal.Day) bool {
	if day.Before(r.effectiveStart(createdOn, startOn)) {
		return false
	}
	switch r.Kind {
	case KindNone, KindDaily:
		return true
	case KindWeekly:
		// An empty set never matches: the task simply never appears.
		return r.Weekdays.Has(day.Weekday())
	case KindMonthly:
		// A day the month lacks (29/30/31) never matches and never rolls over.
		return r.MonthDays.Has(day.Day())
	default:
		return false
	}
}

// ScheduledDayCount counts the days in [from, through] on which the rule
// schedules an occurrence, clamped to at least 1 so rate denominators are
// never zero. Days before the effective start are not counted.
func (r Rule) ScheduledDayCount(from, through cal.Day, createdOn cal.Day, startOn *cal.Day) int {
	start := r.effectiveStart(createdOn, startOn)
	if from.Before(start) {
		from = start
	}

	n := 0
	if !through.Before(from) {
		span := from.DaysUntil(through) + 1
		switch r.Kind {
		case KindNone, KindDaily:
			n = span
		case KindWeekly:
			// Every full week contributes each selected weekday exactly once;
			// the remainder (at most 6 days) is scanned directly.
			weeks := span / 7
			n = weeks * r.Weekdays.Count()
			for day := from.AddDays(weeks * 7); !day.After(through); day = day.AddDays(1) {
				if r.Weekdays.Has(day.Weekday()) {
					n++
				}
			}
		case KindMonthly:
			n = r.countMonthly(from, through)
		}
	}

	if n < 1 {
		n = 1
	}
	return n
}

func (r Rule) countMonthly(from, through cal.Day) int {
	n := 0
	y, m := from.Year(), from.Month()
	for {
		monthStart := cal.New(y, m, 1)
		if monthStart.After(through) {
			break
		}
		// Day 0 of the next month normalizes to this month's last day.
		lastDay := cal.New(y, m+1, 0).Day()
		for _, d := range r.MonthDays.Days() {
			if d > lastDay {
				continue
			}
			day := cal.New(y, m, d)
			if !day.Before(from) && !day.After(through) {
				n++
			}
		}
		next := cal.New(y, m+1, 1)
		y, m = next.Year(), next.Month()
	}
	return n
}
