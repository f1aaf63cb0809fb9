package task

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ritual-sh/ritual/internal/cal"
)

// ErrNotFound is returned when no task matches the given id.
var ErrNotFound = errors.New("task not found")

// ErrAmbiguousID is returned when an id prefix matches more than one task.
var ErrAmbiguousID = errors.New("id prefix matches multiple tasks")

// Task is a tracked ritual: a title plus the rule that schedules it.
type Task struct {
	ID        string
	Title     string
	Category  string
	Rule      Rule
	CreatedOn cal.Day
	StartOn   *cal.Day
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ScheduledOn reports whether the rule schedules an occurrence on day.
// The active flag is not consulted here; callers that build "due today"
// views gate on Active themselves.
func (t Task) ScheduledOn(day cal.Day) bool {
	return t.Rule.IsDue(day, t.CreatedOn, t.StartOn)
}

// ScheduleStart returns the first day an occurrence can exist.
func (t Task) ScheduleStart() cal.Day {
	return t.Rule.effectiveStart(t.CreatedOn, t.StartOn)
}

// ScheduledDays counts scheduled days in the inclusive range, clamped to
// at least 1.
func (t Task) ScheduledDays(from, through cal.Day) int {
	return t.Rule.ScheduledDayCount(from, through, t.CreatedOn, t.StartOn)
}

// ShortID returns the first eight characters of the id for display.
func (t Task) ShortID() string {
	if len(t.ID) < 8 {
		return t.ID
	}
	return t.ID[:8]
}

// ListOptions configures which tasks List returns.
type ListOptions struct {
	// Category filters to one category. Empty means all categories.
	Category string
	// IncludePaused includes inactive tasks in the result.
	IncludePaused bool
	// RecurringOnly excludes one-time tasks.
	RecurringOnly bool
}

// Store handles task persistence.
type Store struct {
	db *sql.DB
}

// NewStore creates a new task store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Add creates a new task and returns it. The start date applies only to
// none/daily rules; for other kinds it is discarded. A start on or before
// the creation day means "start now" and is stored as no start date.
func (s *Store) Add(title, category string, rule Rule, createdOn cal.Day, startOn *cal.Day) (Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Task{}, fmt.Errorf("title must not be empty")
	}
	if rule.Kind == "" {
		rule.Kind = KindNone
	}
	if rule.Kind == KindWeekly || rule.Kind == KindMonthly {
		startOn = nil
	}
	if startOn != nil && !startOn.After(createdOn) {
		startOn = nil
	}

	t := Task{
		ID:        uuid.NewString(),
		Title:     title,
		Category:  strings.TrimSpace(category),
		Rule:      rule,
		CreatedOn: createdOn,
		StartOn:   startOn,
		Active:    true,
	}

	var startStr *string
	if t.StartOn != nil {
		v := t.StartOn.String()
		startStr = &v
	}

	_, err := s.db.Exec(
		`INSERT INTO tasks (id, title, category, rule_kind, weekdays, month_days, created_on, start_on, active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1)`,
		t.ID, t.Title, t.Category, t.Rule.Kind, t.Rule.Weekdays.String(), t.Rule.MonthDays.String(), t.CreatedOn.String(), startStr,
	)
	if err != nil {
		return Task{}, fmt.Errorf("inserting task: %w", err)
	}
	return t, nil
}

// Get returns the task with the given id. A unique id prefix of at least
// four characters also matches, so users can type short ids.
func (s *Store) Get(id string) (Task, error) {
	row := s.db.QueryRow(taskSelect+` WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Task{}, err
	}

	if len(id) < 4 {
		return Task{}, fmt.Errorf("task %q: %w", id, ErrNotFound)
	}
	rows, err := s.db.Query(taskSelect+` WHERE id LIKE ? LIMIT 2`, id+"%")
	if err != nil {
		return Task{}, err
	}
	defer rows.Close()

	var matches []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return Task{}, err
		}
		matches = append(matches, t)
	}
	if err := rows.Err(); err != nil {
		return Task{}, err
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return Task{}, fmt.Errorf("task %q: %w", id, ErrNotFound)
	default:
		return Task{}, fmt.Errorf("task %q: %w", id, ErrAmbiguousID)
	}
}

// List returns tasks matching the given options, oldest first.
func (s *Store) List(opts ListOptions) ([]Task, error) {
	query := taskSelect

	var conditions []string
	var args []any

	if !opts.IncludePaused {
		conditions = append(conditions, "active = 1")
	}
	if opts.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, opts.Category)
	}
	if opts.RecurringOnly {
		conditions = append(conditions, "rule_kind != 'none'")
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Update rewrites the task's editable fields. Switching the rule to
// weekly/monthly clears any stored start date; start dates only apply to
// none/daily rules.
func (s *Store) Update(t Task) error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("title must not be empty")
	}
	if t.Rule.Kind == KindWeekly || t.Rule.Kind == KindMonthly {
		t.StartOn = nil
	}
	if t.StartOn != nil && !t.StartOn.After(t.CreatedOn) {
		t.StartOn = nil
	}

	var startStr *string
	if t.StartOn != nil {
		v := t.StartOn.String()
		startStr = &v
	}

	res, err := s.db.Exec(
		`UPDATE tasks SET title = ?, category = ?, rule_kind = ?, weekdays = ?, month_days = ?, start_on = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		strings.TrimSpace(t.Title), strings.TrimSpace(t.Category), t.Rule.Kind, t.Rule.Weekdays.String(), t.Rule.MonthDays.String(), startStr, t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("task %q: %w", t.ID, ErrNotFound)
	}
	return nil
}

// SetActive pauses or resumes a task. Paused tasks keep their history but
// are never due.
func (s *Store) SetActive(id string, active bool) error {
	v := 0
	if active {
		v = 1
	}
	res, err := s.db.Exec(
		`UPDATE tasks SET active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		v, id,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("task %q: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes a task. Its completions go with it (cascade).
func (s *Store) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("task %q: %w", id, ErrNotFound)
	}
	return nil
}

// Categories returns the distinct non-empty categories in use, sorted.
func (s *Store) Categories() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT category FROM tasks WHERE category != '' ORDER BY category ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// Count returns the number of active and paused tasks.
func (s *Store) Count() (active int, paused int, err error) {
	err = s.db.QueryRow(`SELECT COUNT(*) FROM tasks WHERE active = 1`).Scan(&active)
	if err != nil {
		return 0, 0, err
	}
	err = s.db.QueryRow(`SELECT COUNT(*) FROM tasks WHERE active = 0`).Scan(&paused)
	if err != nil {
		return 0, 0, err
	}
	return active, paused, nil
}

const taskSelect = `SELECT id, title, category, rule_kind, weekdays, month_days, created_on, start_on, active, created_at, updated_at FROM tasks`

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (Task, error) {
	var t Task
	var weekdays, monthDays, createdOn string
	var startOn sql.NullString
	var activeInt int
	var createdStr, updatedStr string

	err := row.Scan(&t.ID, &t.Title, &t.Category, &t.Rule.Kind, &weekdays, &monthDays, &createdOn, &startOn, &activeInt, &createdStr, &updatedStr)
	if err != nil {
		return Task{}, err
	}

	t.Active = activeInt == 1
	if t.Rule.Kind == "" {
		t.Rule.Kind = KindNone
	}
	// Set columns hold the canonical CSV written by Add/Update; parse
	// failures degrade to the empty set rather than failing the read.
	t.Rule.Weekdays, _ = ParseWeekdaySet(weekdays)
	t.Rule.MonthDays, _ = ParseMonthDaySet(monthDays)

	t.CreatedOn, err = cal.Parse(createdOn)
	if err != nil {
		return Task{}, fmt.Errorf("task %s has bad created_on: %w", t.ID, err)
	}
	if startOn.Valid && startOn.String != "" {
		if d, err := cal.Parse(startOn.String); err == nil {
			t.StartOn = &d
		}
	}
	t.CreatedAt, _ = time.Parse("2006-01-02 15:04:05", createdStr)
	t.UpdatedAt, _ = time.Parse("2006-01-02 15:04:05", updatedStr)

	return t, nil
}
