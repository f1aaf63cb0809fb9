package cmd

import (
	"strings"
	"testing"

	"github.com/ritual-sh/ritual/internal/cal"
	"github.com/ritual-sh/ritual/internal/task"
)

// Under go test stdin isn't a TTY, so runToday always takes the plain
// printBoard path. The checklist itself lives in internal/tui.

func TestRunTodayEmpty(t *testing.T) {
	configTestEnv(t)

	var err error
	out := captureStdout(t, func() {
		err = runToday(nil, nil)
	})
	if err != nil {
		t.Fatalf("runToday: %v", err)
	}
	if !strings.Contains(out, "Nothing due today") {
		t.Errorf("output = %q, want empty state", out)
	}
}

func TestRunTodayListsDue(t *testing.T) {
	configTestEnv(t)

	seedRitual(t, "morning run", task.RuleDaily())

	var err error
	out := captureStdout(t, func() {
		err = runToday(nil, nil)
	})
	if err != nil {
		t.Fatalf("runToday: %v", err)
	}
	if !strings.Contains(out, "morning run") {
		t.Errorf("output = %q, want due ritual", out)
	}
	if !strings.Contains(out, "0 of 1 done") {
		t.Errorf("output = %q, want progress footer", out)
	}
}

func TestRunTodayCountsCompleted(t *testing.T) {
	configTestEnv(t)

	tk := seedRitual(t, "meditate", task.RuleDaily())
	markDone(t, tk.ID, cal.Today())

	var err error
	out := captureStdout(t, func() {
		err = runToday(nil, nil)
	})
	if err != nil {
		t.Fatalf("runToday: %v", err)
	}
	if !strings.Contains(out, "1 of 1 done") {
		t.Errorf("output = %q, want completed footer", out)
	}
	if !strings.Contains(out, "✓") {
		t.Errorf("output = %q, want done marker", out)
	}
}
