package cmd

import (
	"strings"
	"testing"
	"time"

	"github.com/ritual-sh/ritual/internal/cal"
	"github.com/ritual-sh/ritual/internal/ledger"
	"github.com/ritual-sh/ritual/internal/store"
	"github.com/ritual-sh/ritual/internal/task"
)

func TestParseDoneDay(t *testing.T) {
	today := cal.New(2026, time.March, 4)

	cases := []struct {
		in      string
		want    cal.Day
		wantErr string
	}{
		{"", today, ""},
		{"2026-03-04", today, ""},
		{"2026-03-01", cal.New(2026, time.March, 1), ""},
		{"2026-03-05", cal.Day{}, "future"},
		{"03-05", cal.Day{}, "invalid date"},
	}
	for _, c := range cases {
		got, err := parseDoneDay(c.in, today)
		if c.wantErr != "" {
			if err == nil || !strings.Contains(err.Error(), c.wantErr) {
				t.Errorf("parseDoneDay(%q): err = %v, want %q", c.in, err, c.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseDoneDay(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("parseDoneDay(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestRunDoneToggleAndUndo(t *testing.T) {
	configTestEnv(t)
	resetDoneFlags(t)

	tk := seedRitual(t, "run", task.RuleDaily())
	today := cal.Today()

	// First pass marks it done.
	var err error
	out := captureStdout(t, func() {
		err = runDone(nil, []string{tk.ShortID()})
	})
	if err != nil {
		t.Fatalf("runDone: %v", err)
	}
	if !strings.Contains(out, "✓") {
		t.Errorf("output = %q, want checkmark", out)
	}
	if !isDone(t, tk.ID, today) {
		t.Error("ritual should be done after toggle")
	}

	// Undo takes it back.
	doneUndo = true
	out = captureStdout(t, func() {
		err = runDone(nil, []string{tk.ShortID()})
	})
	if err != nil {
		t.Fatalf("runDone --undo: %v", err)
	}
	if !strings.Contains(out, "unchecked") {
		t.Errorf("output = %q, want unchecked", out)
	}
	if isDone(t, tk.ID, today) {
		t.Error("ritual should be undone after --undo")
	}
}

func TestRunDoneUndoWhenNotDone(t *testing.T) {
	configTestEnv(t)
	resetDoneFlags(t)

	tk := seedRitual(t, "stretch", task.RuleDaily())
	doneUndo = true

	var err error
	out := captureStdout(t, func() {
		err = runDone(nil, []string{tk.ShortID()})
	})
	if err != nil {
		t.Fatalf("runDone --undo: %v", err)
	}
	if !strings.Contains(out, "wasn't marked done") {
		t.Errorf("output = %q, want wasn't-done notice", out)
	}
	if isDone(t, tk.ID, cal.Today()) {
		t.Error("undo of an undone ritual must not leave a completion behind")
	}
}

func TestRunDoneBackfillsPastDay(t *testing.T) {
	configTestEnv(t)
	resetDoneFlags(t)

	tk := seedRitual(t, "journal", task.RuleDaily())
	yesterday := cal.Today().AddDays(-1)
	doneDate = yesterday.String()

	var err error
	out := captureStdout(t, func() {
		err = runDone(nil, []string{tk.ShortID()})
	})
	if err != nil {
		t.Fatalf("runDone --date: %v", err)
	}
	if !strings.Contains(out, yesterday.String()) {
		t.Errorf("output = %q, want backfill day", out)
	}
	if !isDone(t, tk.ID, yesterday) {
		t.Error("completion should land on the backfilled day")
	}
	if isDone(t, tk.ID, cal.Today()) {
		t.Error("today must stay untouched on a backfill")
	}
}

func TestRunDoneNoArgsOutsideTerminal(t *testing.T) {
	configTestEnv(t)
	resetDoneFlags(t)

	err := runDone(nil, nil)
	if err == nil || !strings.Contains(err.Error(), "pass an id") {
		t.Errorf("want pass-an-id error, got %v", err)
	}
}

func isDone(t *testing.T, taskID string, day cal.Day) bool {
	t.Helper()
	db, err := store.Open()
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer db.Close()
	done, err := ledger.NewStore(db.Conn()).IsDone(taskID, day)
	if err != nil {
		t.Fatalf("IsDone: %v", err)
	}
	return done
}

func resetDoneFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		doneDate = ""
		doneUndo = false
	})
	doneDate = ""
	doneUndo = false
}
