package stats

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ritual-sh/ritual/internal/cal"
	"github.com/ritual-sh/ritual/internal/ledger"
	"github.com/ritual-sh/ritual/internal/task"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	// One connection so every query sees the same in-memory database.
	db.SetMaxOpenConns(1)

	stmts := []string{
		`PRAGMA foreign_keys = ON`,
		`CREATE TABLE tasks (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			rule_kind TEXT NOT NULL DEFAULT 'none',
			weekdays TEXT NOT NULL DEFAULT '',
			month_days TEXT NOT NULL DEFAULT '',
			created_on TEXT NOT NULL,
			start_on TEXT,
			active INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE completions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			task_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
			day TEXT NOT NULL,
			recorded_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(task_id, day)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatal(err)
		}
	}
	return db
}

func setupService(t *testing.T) (*Service, *task.Store) {
	t.Helper()
	db := setupTestDB(t)
	t.Cleanup(func() { db.Close() })
	tasks := task.NewStore(db)
	return NewService(tasks, ledger.NewStore(db)), tasks
}

var testNow = time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)

func TestServiceToggleAndSummary(t *testing.T) {
	svc, tasks := setupService(t)

	created := cal.New(2026, time.January, 1)
	added, err := tasks.Add("Stretch", "health", task.RuleDaily(), created, nil)
	if err != nil {
		t.Fatal(err)
	}

	today := cal.New(2026, time.January, 15)
	_, done, err := svc.Toggle(added.ShortID(), today, testNow)
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if !done {
		t.Fatal("toggle should complete the day")
	}

	_, sum, err := svc.TaskSummary(added.ShortID(), today)
	if err != nil {
		t.Fatalf("TaskSummary: %v", err)
	}
	if !sum.DoneToday {
		t.Error("expected DoneToday after toggle")
	}
	if sum.Streak != 1 {
		t.Errorf("streak: got %d, want 1", sum.Streak)
	}

	// Toggling back restores the original state.
	_, done, err = svc.Toggle(added.ID, today, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if done {
		t.Error("second toggle should uncomplete")
	}
}

func TestServiceToggle_UnknownTask(t *testing.T) {
	svc, _ := setupService(t)

	_, _, err := svc.Toggle("nope1234", cal.New(2026, time.January, 15), testNow)
	if !errors.Is(err, task.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTodayBoard(t *testing.T) {
	svc, tasks := setupService(t)

	created := cal.New(2026, time.January, 1)
	today := cal.New(2026, time.January, 14) // a Wednesday

	daily, _ := tasks.Add("Stretch", "", task.RuleDaily(), created, nil)
	tasks.Add("Gym", "", task.RuleWeekly(task.Weekdays(time.Wednesday)), created, nil)
	tasks.Add("Row", "", task.RuleWeekly(task.Weekdays(time.Sunday)), created, nil)
	paused, _ := tasks.Add("Old habit", "", task.RuleDaily(), created, nil)
	tasks.SetActive(paused.ID, false)
	oneDoneToday, _ := tasks.Add("File taxes", "", task.RuleNone(), created, nil)
	oneDoneBefore, _ := tasks.Add("Book dentist", "", task.RuleNone(), created, nil)

	if _, _, err := svc.Toggle(oneDoneToday.ID, today, testNow); err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.Toggle(oneDoneBefore.ID, today.AddDays(-3), testNow); err != nil {
		t.Fatal(err)
	}

	board, err := svc.TodayBoard(today)
	if err != nil {
		t.Fatal(err)
	}

	// Due: daily, wednesday gym, untouched taxes... plus taxes completed
	// today stays visible as done. Excluded: sunday row, paused, and the
	// one-time task finished days ago.
	want := map[string]bool{ // title -> done today
		"Stretch":    false,
		"Gym":        false,
		"File taxes": true,
	}
	if len(board) != len(want) {
		titles := make([]string, 0, len(board))
		for _, item := range board {
			titles = append(titles, item.Task.Title)
		}
		t.Fatalf("board size: got %d (%v), want %d", len(board), titles, len(want))
	}
	for _, item := range board {
		done, ok := want[item.Task.Title]
		if !ok {
			t.Errorf("unexpected board item %q", item.Task.Title)
			continue
		}
		if item.Summary.DoneToday != done {
			t.Errorf("%q done: got %v, want %v", item.Task.Title, item.Summary.DoneToday, done)
		}
	}

	// The daily task completed today flips its board state.
	if _, _, err := svc.Toggle(daily.ID, today, testNow); err != nil {
		t.Fatal(err)
	}
	board, _ = svc.TodayBoard(today)
	for _, item := range board {
		if item.Task.Title == "Stretch" && !item.Summary.DoneToday {
			t.Error("Stretch should be done after toggle")
		}
	}
}

func TestOverviewAndCategorySummary(t *testing.T) {
	svc, tasks := setupService(t)

	created := cal.New(2026, time.January, 1)
	today := cal.New(2026, time.January, 4)

	health, _ := tasks.Add("Stretch", "health", task.RuleDaily(), created, nil)
	tasks.Add("Inbox zero", "work", task.RuleDaily(), created, nil)

	// health: all four days; work: none.
	for i := 0; i <= 3; i++ {
		if _, _, err := svc.Toggle(health.ID, created.AddDays(i), testNow); err != nil {
			t.Fatal(err)
		}
	}

	overview, err := svc.Overview(today)
	if err != nil {
		t.Fatal(err)
	}
	if overview.Tasks != 2 {
		t.Errorf("tasks: got %d, want 2", overview.Tasks)
	}
	if overview.Streak != 4 {
		t.Errorf("overview streak: got %d, want 4", overview.Streak)
	}
	// Blended: 4 completed of 8 scheduled.
	if overview.Rate != 50 {
		t.Errorf("overview rate: got %d, want 50", overview.Rate)
	}

	healthOnly, err := svc.CategorySummary("health", today)
	if err != nil {
		t.Fatal(err)
	}
	if healthOnly.Tasks != 1 || healthOnly.Rate != 100 {
		t.Errorf("health rollup: got tasks=%d rate=%d, want 1/100", healthOnly.Tasks, healthOnly.Rate)
	}
}
