package streak

import (
	"testing"
	"time"

	"github.com/ritual-sh/ritual/internal/cal"
)

var today = cal.New(2026, time.March, 20)

// daysAgo builds a day set from offsets relative to today (0 = today).
func daysAgo(offsets ...int) []cal.Day {
	var out []cal.Day
	for _, n := range offsets {
		out = append(out, today.AddDays(-n))
	}
	return out
}

func TestCompute_Empty(t *testing.T) {
	got := Compute(nil, today)
	if got.Current != 0 || got.Longest != 0 {
		t.Errorf("empty set: got %+v, want 0/0", got)
	}
}

func TestCurrent_TodayCompleted(t *testing.T) {
	if got := Current(daysAgo(0), today); got != 1 {
		t.Errorf("today only: got %d, want 1", got)
	}
	if got := Current(daysAgo(2, 1, 0), today); got != 3 {
		t.Errorf("three days through today: got %d, want 3", got)
	}
}

func TestCurrent_TodayForgiven(t *testing.T) {
	// An unfinished today does not break the run ending yesterday.
	if got := Current(daysAgo(2, 1), today); got != 2 {
		t.Errorf("run ending yesterday: got %d, want 2", got)
	}
	if got := Current(daysAgo(1), today); got != 1 {
		t.Errorf("yesterday only: got %d, want 1", got)
	}
}

func TestCurrent_BrokenAfterFullDaySkipped(t *testing.T) {
	// Most recent completion two days ago: the grace window has passed.
	if got := Current(daysAgo(3, 2), today); got != 0 {
		t.Errorf("last completion 2 days ago: got %d, want 0", got)
	}
}

func TestCurrent_StopsAtGap(t *testing.T) {
	// today-6 completed, today-5..today-3 skipped, today-2..today-1 completed.
	days := daysAgo(6, 2, 1)
	if got := Current(days, today); got != 2 {
		t.Errorf("streak must not bridge the gap: got %d, want 2", got)
	}
	// Completing today extends it to 3, still without bridging.
	days = append(days, today)
	if got := Current(days, today); got != 3 {
		t.Errorf("after completing today: got %d, want 3", got)
	}
}

func TestCurrent_IgnoresFutureDays(t *testing.T) {
	days := []cal.Day{today.AddDays(5), today.AddDays(-1), today.AddDays(-2)}
	if got := Current(days, today); got != 2 {
		t.Errorf("future days must not anchor the streak: got %d, want 2", got)
	}
}

func TestLongest_TwoRuns(t *testing.T) {
	// day1..day5 and day10..day13: runs of 5 and 4.
	base := cal.New(2026, time.January, 1)
	var days []cal.Day
	for i := 0; i < 5; i++ {
		days = append(days, base.AddDays(i))
	}
	for i := 9; i < 13; i++ {
		days = append(days, base.AddDays(i))
	}

	if got := Longest(days); got != 5 {
		t.Errorf("longest: got %d, want 5", got)
	}
	// Two days past the end of the later run, nothing since: current is 0.
	ref := base.AddDays(14)
	if got := Current(days, ref); got != 0 {
		t.Errorf("current: got %d, want 0", got)
	}
}

func TestLongest_SingleDaysAreRunsOfOne(t *testing.T) {
	days := []cal.Day{
		cal.New(2026, time.January, 3),
		cal.New(2026, time.January, 5),
		cal.New(2026, time.January, 8),
		cal.New(2026, time.January, 10),
	}
	if got := Longest(days); got != 1 {
		t.Errorf("isolated days: got %d, want 1", got)
	}
}

func TestLongest_CrossesMonthBoundary(t *testing.T) {
	days := []cal.Day{
		cal.New(2026, time.January, 30),
		cal.New(2026, time.January, 31),
		cal.New(2026, time.February, 1),
		cal.New(2026, time.February, 2),
	}
	if got := Longest(days); got != 4 {
		t.Errorf("month boundary run: got %d, want 4", got)
	}
}

func TestCompute_UnsortedAndDuplicatedInput(t *testing.T) {
	days := []cal.Day{
		today.AddDays(-1),
		today,
		today.AddDays(-2),
		today, // duplicate
		today.AddDays(-1),
	}
	got := Compute(days, today)
	if got.Current != 3 {
		t.Errorf("current: got %d, want 3", got.Current)
	}
	if got.Longest != 3 {
		t.Errorf("longest: got %d, want 3", got.Longest)
	}
}

func TestCompute_LongestNeverBelowCurrent(t *testing.T) {
	days := daysAgo(1, 0)
	got := Compute(days, today)
	if got.Longest < got.Current {
		t.Errorf("longest %d < current %d", got.Longest, got.Current)
	}
}

func TestCompute_OldRunBeatsCurrent(t *testing.T) {
	days := daysAgo(0, 1, 20, 21, 22, 23)
	got := Compute(days, today)
	if got.Current != 2 {
		t.Errorf("current: got %d, want 2", got.Current)
	}
	if got.Longest != 4 {
		t.Errorf("longest: got %d, want 4", got.Longest)
	}
}
