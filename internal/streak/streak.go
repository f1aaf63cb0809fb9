// Package streak computes completion streaks from calendar-day sets. It is
// pure: callers load the day set (one task's days, or a union across tasks)
// and pass in the reference "today".
package streak

import (
	"sort"

	"github.com/ritual-sh/ritual/internal/cal"
)

// Info holds current and longest streak values.
type Info struct {
	Current int
	Longest int
}

// Compute calculates both streaks from a set of completion days. The input
// may be unsorted and may contain duplicates.
//
// A streak is consecutive calendar days with a completion. The current
// streak is not broken while today is still unfinished: if today is absent,
// the run ending yesterday still counts. It breaks only once a full day has
// been skipped. Days in a task's schedule gaps count like any other skipped
// day, so a weekly task cannot bridge its off days.
func Compute(days []cal.Day, today cal.Day) Info {
	sorted := normalize(days)
	current := currentOf(sorted, today)
	longest := longestOf(sorted)
	if current > longest {
		longest = current
	}
	return Info{Current: current, Longest: longest}
}

// Current returns the streak of consecutive completed days ending at today,
// or at yesterday when today is not yet completed. 0 when neither holds.
func Current(days []cal.Day, today cal.Day) int {
	return currentOf(normalize(days), today)
}

// Longest returns the longest run of consecutive completed days anywhere in
// history. 0 for an empty set.
func Longest(days []cal.Day) int {
	return longestOf(normalize(days))
}

func currentOf(days []cal.Day, today cal.Day) int {
	// Days after today cannot anchor a current streak.
	i := len(days) - 1
	for i >= 0 && days[i].After(today) {
		i--
	}
	if i < 0 {
		return 0
	}
	if days[i] != today && days[i] != today.AddDays(-1) {
		return 0
	}

	n := 1
	for j := i - 1; j >= 0; j-- {
		if days[j].AddDays(1) != days[j+1] {
			break
		}
		n++
	}
	return n
}

func longestOf(days []cal.Day) int {
	if len(days) == 0 {
		return 0
	}
	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i-1].AddDays(1) == days[i] {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 1
		}
	}
	return longest
}

// normalize returns a sorted, deduplicated copy of days.
func normalize(days []cal.Day) []cal.Day {
	if len(days) == 0 {
		return nil
	}
	sorted := make([]cal.Day, len(days))
	copy(sorted, days)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	out := sorted[:1]
	for _, d := range sorted[1:] {
		if d != out[len(out)-1] {
			out = append(out, d)
		}
	}
	return out
}
