// Package ledger stores completion records: one row per task per calendar
// day. Toggle is the only mutation, which is what keeps the one-per-day
// invariant enforced in a single place.
package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ritual-sh/ritual/internal/cal"
)

// Completion marks one task occurrence done. Day is the occurrence day it
// satisfies; RecordedAt is the instant the user toggled it.
type Completion struct {
	ID         int64
	TaskID     string
	Day        cal.Day
	RecordedAt time.Time
}

// Store handles completion persistence.
type Store struct {
	db *sql.DB
}

// NewStore creates a new completion store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Toggle flips the completion state of (taskID, day) and returns the new
// state: true when a completion was recorded, false when one was removed.
// Toggling twice always restores the original state.
func (s *Store) Toggle(taskID string, day cal.Day, now time.Time) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`DELETE FROM completions WHERE task_id = ? AND day = ?`, taskID, day.String())
	if err != nil {
		return false, err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return false, tx.Commit()
	}

	_, err = tx.Exec(
		`INSERT INTO completions (task_id, day, recorded_at) VALUES (?, ?, ?)`,
		taskID, day.String(), now.Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return false, fmt.Errorf("recording completion: %w", err)
	}
	return true, tx.Commit()
}

// IsDone reports whether the task has a completion for day.
func (s *Store) IsDone(taskID string, day cal.Day) (bool, error) {
	var one int
	err := s.db.QueryRow(
		`SELECT 1 FROM completions WHERE task_id = ? AND day = ?`,
		taskID, day.String(),
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Days returns the task's completion days in ascending order. Unknown task
// ids yield an empty result, not an error.
func (s *Store) Days(taskID string) ([]cal.Day, error) {
	return s.queryDays(`SELECT day FROM completions WHERE task_id = ? ORDER BY day ASC`, taskID)
}

// DaysBetween returns the task's completion days within the inclusive range,
// ascending. ISO date strings compare in calendar order, so the bounds work
// directly in SQL.
func (s *Store) DaysBetween(taskID string, from, through cal.Day) ([]cal.Day, error) {
	return s.queryDays(
		`SELECT day FROM completions WHERE task_id = ? AND day >= ? AND day <= ? ORDER BY day ASC`,
		taskID, from.String(), through.String(),
	)
}

// CountBetween counts the task's completion days within the inclusive range.
func (s *Store) CountBetween(taskID string, from, through cal.Day) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM completions WHERE task_id = ? AND day >= ? AND day <= ?`,
		taskID, from.String(), through.String(),
	).Scan(&n)
	return n, err
}

// CountOnDay counts completions across all tasks on one day.
func (s *Store) CountOnDay(day cal.Day) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM completions WHERE day = ?`, day.String()).Scan(&n)
	return n, err
}

// LastDone returns the task's most recent completion day. ok is false when
// the task has no completions.
func (s *Store) LastDone(taskID string) (day cal.Day, ok bool, err error) {
	var str sql.NullString
	err = s.db.QueryRow(`SELECT MAX(day) FROM completions WHERE task_id = ?`, taskID).Scan(&str)
	if err != nil || !str.Valid {
		return cal.Day{}, false, err
	}
	day, err = cal.Parse(str.String)
	if err != nil {
		return cal.Day{}, false, err
	}
	return day, true, nil
}

// ListAll returns every completion ordered by task then day, for export.
func (s *Store) ListAll() ([]Completion, error) {
	rows, err := s.db.Query(
		`SELECT id, task_id, day, recorded_at FROM completions ORDER BY task_id ASC, day ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Completion
	for rows.Next() {
		var c Completion
		var dayStr, recStr string
		if err := rows.Scan(&c.ID, &c.TaskID, &dayStr, &recStr); err != nil {
			return nil, err
		}
		c.Day, err = cal.Parse(dayStr)
		if err != nil {
			return nil, fmt.Errorf("completion %d has bad day: %w", c.ID, err)
		}
		c.RecordedAt, _ = time.Parse("2006-01-02 15:04:05", recStr)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) queryDays(query string, args ...any) ([]cal.Day, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []cal.Day
	for rows.Next() {
		var str string
		if err := rows.Scan(&str); err != nil {
			return nil, err
		}
		d, err := cal.Parse(str)
		if err != nil {
			// One corrupt row must not take down the whole day set.
			continue
		}
		days = append(days, d)
	}
	return days, rows.Err()
}
