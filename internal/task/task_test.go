package task

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ritual-sh/ritual/internal/cal"
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

func TestAddAndGet(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	s := NewStore(db)

	created := cal.New(2026, time.January, 1)
	start := cal.New(2026, time.January, 5)
	added, err := s.Add("Morning pages", "writing", RuleDaily(), created, &start)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if added.ID == "" {
		t.Fatal("expected a generated id")
	}
	if !added.Active {
		t.Error("new tasks should be active")
	}

	got, err := s.Get(added.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Title != "Morning pages" {
		t.Errorf("title: got %q", got.Title)
	}
	if got.Category != "writing" {
		t.Errorf("category: got %q", got.Category)
	}
	if got.Rule.Kind != KindDaily {
		t.Errorf("rule kind: got %q", got.Rule.Kind)
	}
	if got.CreatedOn != created {
		t.Errorf("created on: got %s, want %s", got.CreatedOn, created)
	}
	if got.StartOn == nil || *got.StartOn != start {
		t.Errorf("start on: got %v, want %s", got.StartOn, start)
	}
}

func TestAdd_RuleSetsRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	s := NewStore(db)

	created := cal.New(2026, time.January, 1)
	weekly, err := s.Add("Gym", "", RuleWeekly(Weekdays(time.Monday, time.Wednesday, time.Friday)), created, nil)
	if err != nil {
		t.Fatal(err)
	}
	monthly, err := s.Add("Pay rent", "money", RuleMonthly(MonthDays(1)), created, nil)
	if err != nil {
		t.Fatal(err)
	}

	gotW, err := s.Get(weekly.ID)
	if err != nil {
		t.Fatal(err)
	}
	if gotW.Rule.Weekdays != Weekdays(time.Monday, time.Wednesday, time.Friday) {
		t.Errorf("weekdays: got %v", gotW.Rule.Weekdays.Days())
	}

	gotM, err := s.Get(monthly.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !gotM.Rule.MonthDays.Has(1) || gotM.Rule.MonthDays.Count() != 1 {
		t.Errorf("month days: got %v", gotM.Rule.MonthDays.Days())
	}
}

func TestAdd_EmptyTitleRejected(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	s := NewStore(db)

	if _, err := s.Add("   ", "", RuleNone(), cal.Today(), nil); err == nil {
		t.Fatal("expected error for blank title")
	}
}

func TestAdd_WeeklyDiscardsStartDate(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	s := NewStore(db)

	created := cal.New(2026, time.January, 1)
	start := cal.New(2026, time.February, 1)
	added, err := s.Add("Gym", "", RuleWeekly(Weekdays(time.Monday)), created, &start)
	if err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(added.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.StartOn != nil {
		t.Errorf("start date should be discarded for weekly rules, got %s", got.StartOn)
	}
}

func TestAdd_StartNotAfterCreationDropped(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	s := NewStore(db)

	created := cal.New(2026, time.January, 5)
	for _, start := range []cal.Day{created, created.AddDays(-3)} {
		start := start
		added, err := s.Add("Stretch", "", RuleDaily(), created, &start)
		if err != nil {
			t.Fatal(err)
		}
		got, err := s.Get(added.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.StartOn != nil {
			t.Errorf("start %s on/before creation should be dropped, got %s", start, got.StartOn)
		}
	}
}

func TestGet_PrefixMatch(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	s := NewStore(db)

	added, err := s.Add("Stretch", "", RuleDaily(), cal.Today(), nil)
	if err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(added.ID[:8])
	if err != nil {
		t.Fatalf("prefix lookup failed: %v", err)
	}
	if got.ID != added.ID {
		t.Errorf("got %s, want %s", got.ID, added.ID)
	}

	// Too-short prefixes are rejected rather than scanned.
	if _, err := s.Get(added.ID[:3]); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for 3-char prefix, got %v", err)
	}
}

func TestGet_AmbiguousPrefix(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	s := NewStore(db)

	// Force two ids with a shared prefix.
	for _, id := range []string{"abcd1111", "abcd2222"} {
		_, err := db.Exec(
			`INSERT INTO tasks (id, title, created_on) VALUES (?, ?, ?)`,
			id, "task "+id, "2026-01-01",
		)
		if err != nil {
			t.Fatal(err)
		}
	}

	if _, err := s.Get("abcd"); !errors.Is(err, ErrAmbiguousID) {
		t.Errorf("expected ErrAmbiguousID, got %v", err)
	}
	if _, err := s.Get("abcd1111"); err != nil {
		t.Errorf("exact id should still resolve: %v", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	s := NewStore(db)

	if _, err := s.Get("deadbeef"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestList_Filters(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	s := NewStore(db)

	today := cal.New(2026, time.January, 1)
	a, _ := s.Add("Read", "learning", RuleDaily(), today, nil)
	s.Add("Call mom", "", RuleWeekly(Weekdays(time.Sunday)), today, nil)
	s.Add("File taxes", "money", RuleNone(), today, nil)
	if err := s.SetActive(a.ID, false); err != nil {
		t.Fatal(err)
	}

	all, err := s.List(ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("default list should hide paused tasks: got %d, want 2", len(all))
	}

	withPaused, err := s.List(ListOptions{IncludePaused: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(withPaused) != 3 {
		t.Fatalf("with paused: got %d, want 3", len(withPaused))
	}

	money, err := s.List(ListOptions{Category: "money"})
	if err != nil {
		t.Fatal(err)
	}
	if len(money) != 1 || money[0].Title != "File taxes" {
		t.Fatalf("category filter: got %v", money)
	}

	recurring, err := s.List(ListOptions{RecurringOnly: true, IncludePaused: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(recurring) != 2 {
		t.Fatalf("recurring only: got %d, want 2", len(recurring))
	}
}

func TestUpdate_SwitchToWeeklyClearsStart(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	s := NewStore(db)

	created := cal.New(2026, time.January, 1)
	start := cal.New(2026, time.January, 10)
	added, err := s.Add("Meditate", "", RuleDaily(), created, &start)
	if err != nil {
		t.Fatal(err)
	}

	added.Rule = RuleWeekly(Weekdays(time.Saturday))
	if err := s.Update(added); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := s.Get(added.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Rule.Kind != KindWeekly {
		t.Errorf("rule kind: got %q", got.Rule.Kind)
	}
	if got.StartOn != nil {
		t.Errorf("start date should be cleared on switch to weekly, got %s", got.StartOn)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	s := NewStore(db)

	err := s.Update(Task{ID: "missing", Title: "x", Rule: RuleNone()})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSetActive(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	s := NewStore(db)

	added, err := s.Add("Journal", "", RuleDaily(), cal.Today(), nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.SetActive(added.ID, false); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Get(added.ID)
	if got.Active {
		t.Error("task should be paused")
	}

	if err := s.SetActive(added.ID, true); err != nil {
		t.Fatal(err)
	}
	got, _ = s.Get(added.ID)
	if !got.Active {
		t.Error("task should be active again")
	}

	if err := s.SetActive("missing1", true); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete_CascadesCompletions(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	s := NewStore(db)

	added, err := s.Add("Water plants", "", RuleDaily(), cal.New(2026, time.January, 1), nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = db.Exec(`INSERT INTO completions (task_id, day) VALUES (?, ?)`, added.ID, "2026-01-02")
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Delete(added.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM completions WHERE task_id = ?`, added.ID).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("completions should cascade on delete, %d left", n)
	}

	if err := s.Delete(added.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestCategoriesAndCount(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	s := NewStore(db)

	today := cal.New(2026, time.January, 1)
	s.Add("A", "zeta", RuleDaily(), today, nil)
	s.Add("B", "alpha", RuleDaily(), today, nil)
	s.Add("C", "alpha", RuleDaily(), today, nil)
	d, _ := s.Add("D", "", RuleDaily(), today, nil)
	s.SetActive(d.ID, false)

	cats, err := s.Categories()
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) != 2 || cats[0] != "alpha" || cats[1] != "zeta" {
		t.Errorf("categories: got %v, want [alpha zeta]", cats)
	}

	active, paused, err := s.Count()
	if err != nil {
		t.Fatal(err)
	}
	if active != 3 || paused != 1 {
		t.Errorf("count: got active=%d paused=%d, want 3/1", active, paused)
	}
}
