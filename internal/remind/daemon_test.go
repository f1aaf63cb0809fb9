package remind

import (
	"bytes"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ritual-sh/ritual/internal/cal"
	"github.com/ritual-sh/ritual/internal/ledger"
	"github.com/ritual-sh/ritual/internal/stats"
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
	t.Cleanup(func() { db.Close() })
	return db
}

// fakeBooks is an in-memory Bookkeeper.
type fakeBooks struct {
	m map[string]string
}

func (f *fakeBooks) GetKV(key string) (string, error) {
	return f.m[key], nil
}

func (f *fakeBooks) SetKV(key, value string) error {
	f.m[key] = value
	return nil
}

// fakeNotifier counts deliveries and can be told to fail.
type fakeNotifier struct {
	name  string
	calls int
	fail  bool
}

func (f *fakeNotifier) Name() string { return f.name }

func (f *fakeNotifier) Notify(Digest) error {
	f.calls++
	if f.fail {
		return errors.New("boom")
	}
	return nil
}

// setupDaemon builds a daemon over one due-today daily task.
func setupDaemon(t *testing.T, today cal.Day) (*Daemon, *task.Store, *ledger.Store) {
	t.Helper()
	db := setupTestDB(t)
	tasks := task.NewStore(db)
	completions := ledger.NewStore(db)
	svc := stats.NewService(tasks, completions)

	if _, err := tasks.Add("Meditate", "", task.RuleDaily(), today.AddDays(-7), nil); err != nil {
		t.Fatal(err)
	}

	d := NewDaemon(svc, &fakeBooks{m: make(map[string]string)}, time.UTC)
	d.now = func() time.Time { return today.Time(time.UTC).Add(9 * time.Hour) }
	return d, tasks, completions
}

func TestTickDeliversOncePerSlot(t *testing.T) {
	today := cal.New(2026, time.January, 14)
	d, _, _ := setupDaemon(t, today)

	n := &fakeNotifier{name: "fake"}
	d.Use(n)

	d.tick("09:00")
	if n.calls != 1 {
		t.Fatalf("first tick: got %d deliveries, want 1", n.calls)
	}

	// Same slot again: marker suppresses the duplicate.
	d.tick("09:00")
	if n.calls != 1 {
		t.Errorf("repeat tick: got %d deliveries, want 1", n.calls)
	}

	// A different slot on the same day still fires.
	d.tick("20:00")
	if n.calls != 2 {
		t.Errorf("second slot: got %d deliveries, want 2", n.calls)
	}

	if d.LastSent() != today.String()+" 20:00" {
		t.Errorf("LastSent: got %q", d.LastSent())
	}
}

func TestDeliverSkipsWhenAllDone(t *testing.T) {
	today := cal.New(2026, time.January, 14)
	d, tasks, completions := setupDaemon(t, today)

	n := &fakeNotifier{name: "fake"}
	d.Use(n)

	all, err := tasks.List(task.ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := completions.Toggle(all[0].ID, today, time.Now()); err != nil {
		t.Fatal(err)
	}

	sent, err := d.Deliver(today)
	if err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if sent {
		t.Error("nothing waiting, nothing should be sent")
	}
	if n.calls != 0 {
		t.Errorf("notifier fired %d times on an all-done day", n.calls)
	}
}

func TestDeliverContinuesPastFailingNotifier(t *testing.T) {
	today := cal.New(2026, time.January, 14)
	d, _, _ := setupDaemon(t, today)

	bad := &fakeNotifier{name: "bad", fail: true}
	good := &fakeNotifier{name: "good"}
	d.Use(bad)
	d.Use(good)

	sent, err := d.Deliver(today)
	if err == nil {
		t.Error("expected the failing notifier's error to surface")
	}
	if !sent {
		t.Error("delivery through the healthy notifier should count as sent")
	}
	if good.calls != 1 {
		t.Errorf("healthy notifier: got %d calls, want 1", good.calls)
	}
}

func TestScheduleRejectsBadTimes(t *testing.T) {
	today := cal.New(2026, time.January, 14)
	d, _, _ := setupDaemon(t, today)

	if err := d.Schedule(nil); err == nil {
		t.Error("expected error for empty time list")
	}
	if err := d.Schedule([]string{"09:00", "nope"}); err == nil {
		t.Error("expected error for invalid time entry")
	}
	if err := d.Schedule([]string{"09:00", "20:00"}); err != nil {
		t.Errorf("valid times: %v", err)
	}
}

func TestTerminalNotifierWrites(t *testing.T) {
	var buf bytes.Buffer
	n := NewTerminalNotifier(&buf)

	d := Digest{Undone: []Item{{Title: "Meditate", Streak: 2}}}
	if err := n.Notify(d); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if !strings.Contains(buf.String(), "Meditate") {
		t.Errorf("expected task title in output, got:\n%s", buf.String())
	}
}
