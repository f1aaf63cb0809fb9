// Package stats answers the questions the rest of the app asks about tasks:
// due today, done today, streaks, and schedule-aware completion rates. The
// computations are pure; Service wires them to the stores.
package stats

import (
	"math"

	"github.com/ritual-sh/ritual/internal/cal"
	"github.com/ritual-sh/ritual/internal/streak"
	"github.com/ritual-sh/ritual/internal/task"
)

// Summary is the full readout for one task on a given day.
type Summary struct {
	// DueToday reports whether the task has an occurrence scheduled today
	// that the user is expected to act on. Paused tasks are never due, and
	// a one-time task stops being due once it has been completed.
	DueToday bool
	// DoneToday reports whether today's occurrence is completed.
	DoneToday bool
	// Streak is the current consecutive-day streak; Best the longest ever.
	Streak int
	Best   int
	// Rate is the completion percentage over the task's scheduled lifetime,
	// 0-100. Only meaningful when RateOK is true; one-time tasks have no
	// rate concept.
	Rate   int
	RateOK bool
	// Scheduled and Completed are the rate's inputs: scheduled days from
	// the schedule start through today, and distinct completion days in
	// that range.
	Scheduled int
	Completed int
}

// Compute derives a task's summary from its loaded completion days.
// Malformed input degrades to zero values; it never panics or errors.
func Compute(t task.Task, days []cal.Day, today cal.Day) Summary {
	var s Summary

	info := streak.Compute(days, today)
	s.Streak = info.Current
	s.Best = info.Longest
	s.DoneToday = containsDay(days, today)

	s.DueToday = t.Active && t.ScheduledOn(today)
	if t.Rule.Kind == task.KindNone && len(days) > 0 {
		// Completed one-time tasks disappear from "due" for good.
		s.DueToday = false
	}

	start := t.ScheduleStart()
	s.Completed = countInRange(days, start, today)
	if t.Rule.IsRecurring() && !today.Before(t.CreatedOn) {
		s.Scheduled = t.ScheduledDays(t.CreatedOn, today)
		s.RateOK = true
		s.Rate = ratePercent(s.Completed, s.Scheduled)
	}

	return s
}

// Entry pairs a task with its loaded completion days, for rollups.
type Entry struct {
	Task task.Task
	Days []cal.Day
}

// RollupSummary aggregates a collection of tasks (a category, or all of
// them). Streaks run over the union of the members' completion days: a day
// counts once if any member task was completed on it. The rate blends the
// members' scheduled and completed day counts before dividing.
type RollupSummary struct {
	Tasks     int
	DueToday  int
	DoneToday int
	Streak    int
	Best      int
	Rate      int
	RateOK    bool
	Scheduled int
	Completed int
}

// Rollup aggregates the entries' summaries for the given day. One-time
// tasks contribute their completion days to the union streaks but neither
// side of the blended rate.
func Rollup(entries []Entry, today cal.Day) RollupSummary {
	var r RollupSummary
	var union []cal.Day

	for _, e := range entries {
		r.Tasks++
		s := Compute(e.Task, e.Days, today)
		if s.DueToday {
			r.DueToday++
		}
		if s.DoneToday {
			r.DoneToday++
		}
		if s.RateOK {
			r.Scheduled += s.Scheduled
			r.Completed += s.Completed
			r.RateOK = true
		}
		union = append(union, e.Days...)
	}

	info := streak.Compute(union, today)
	r.Streak = info.Current
	r.Best = info.Longest
	if r.RateOK {
		r.Rate = ratePercent(r.Completed, r.Scheduled)
	}
	return r
}

// ratePercent rounds to the nearest whole percent and caps at 100:
// completions recorded on off-schedule days can push the raw ratio over.
func ratePercent(completed, scheduled int) int {
	if scheduled < 1 {
		scheduled = 1
	}
	p := int(math.Round(100 * float64(completed) / float64(scheduled)))
	if p > 100 {
		p = 100
	}
	return p
}

func containsDay(days []cal.Day, day cal.Day) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}

// countInRange counts distinct days within the inclusive range.
func countInRange(days []cal.Day, from, through cal.Day) int {
	seen := make(map[cal.Day]struct{}, len(days))
	for _, d := range days {
		if d.Before(from) || d.After(through) {
			continue
		}
		seen[d] = struct{}{}
	}
	return len(seen)
}
