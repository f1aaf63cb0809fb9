package stats

import (
	"time"

	"github.com/ritual-sh/ritual/internal/cal"
	"github.com/ritual-sh/ritual/internal/ledger"
	"github.com/ritual-sh/ritual/internal/task"
)

// Service loads tasks and completions from the stores and runs the pure
// computations over them.
type Service struct {
	tasks       *task.Store
	completions *ledger.Store
}

// NewService creates a stats service over the two stores.
func NewService(tasks *task.Store, completions *ledger.Store) *Service {
	return &Service{tasks: tasks, completions: completions}
}

// TaskSummary resolves the id (short prefixes allowed) and returns the task
// with its summary for the given day.
func (s *Service) TaskSummary(id string, today cal.Day) (task.Task, Summary, error) {
	t, err := s.tasks.Get(id)
	if err != nil {
		return task.Task{}, Summary{}, err
	}
	days, err := s.completions.Days(t.ID)
	if err != nil {
		return t, Summary{}, err
	}
	return t, Compute(t, days, today), nil
}

// Toggle flips the completion state of the task's occurrence on day and
// returns the task and its new state. Every caller mutates completions
// through here.
func (s *Service) Toggle(id string, day cal.Day, now time.Time) (task.Task, bool, error) {
	t, err := s.tasks.Get(id)
	if err != nil {
		return task.Task{}, false, err
	}
	done, err := s.completions.Toggle(t.ID, day, now)
	return t, done, err
}

// Overview aggregates all active tasks.
func (s *Service) Overview(today cal.Day) (RollupSummary, error) {
	entries, err := s.load(task.ListOptions{})
	if err != nil {
		return RollupSummary{}, err
	}
	return Rollup(entries, today), nil
}

// CategorySummary aggregates the active tasks in one category.
func (s *Service) CategorySummary(category string, today cal.Day) (RollupSummary, error) {
	entries, err := s.load(task.ListOptions{Category: category})
	if err != nil {
		return RollupSummary{}, err
	}
	return Rollup(entries, today), nil
}

// BoardItem is one row of the today view: a task that is due today, or was
// already completed today.
type BoardItem struct {
	Task    task.Task
	Summary Summary
}

// TodayBoard returns the day's actionable tasks in creation order. A task
// appears when it is due today or already completed today, so a finished
// one-time task still shows up checked rather than vanishing mid-day.
func (s *Service) TodayBoard(today cal.Day) ([]BoardItem, error) {
	entries, err := s.load(task.ListOptions{})
	if err != nil {
		return nil, err
	}

	var board []BoardItem
	for _, e := range entries {
		sum := Compute(e.Task, e.Days, today)
		if !sum.DueToday && !sum.DoneToday {
			continue
		}
		board = append(board, BoardItem{Task: e.Task, Summary: sum})
	}
	return board, nil
}

// Entries loads the active tasks (optionally one category) with their day
// sets, for callers that need the raw material.
func (s *Service) Entries(category string) ([]Entry, error) {
	return s.load(task.ListOptions{Category: category})
}

func (s *Service) load(opts task.ListOptions) ([]Entry, error) {
	tasks, err := s.tasks.List(opts)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(tasks))
	for _, t := range tasks {
		days, err := s.completions.Days(t.ID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Task: t, Days: days})
	}
	return entries, nil
}
