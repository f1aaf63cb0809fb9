package cmd

import (
	"fmt"
	"time"

	"github.com/ritual-sh/ritual/internal/cal"
	"github.com/ritual-sh/ritual/internal/stats"
	"github.com/ritual-sh/ritual/internal/tui"
	"github.com/ritual-sh/ritual/internal/ui"
	"github.com/spf13/cobra"
)

var doneCmd = &cobra.Command{
	Use:   "done [id]",
	Short: "Mark a ritual done (or not)",
	Long: `Toggle a ritual's completion for a day.

With no id in an interactive terminal, opens a picker over today's
unfinished rituals. Backfill a missed day with --date; take a completion
back with --undo.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDone,
}

var (
	doneDate string
	doneUndo bool
)

func init() {
	doneCmd.Flags().StringVar(&doneDate, "date", "", "Day to toggle (YYYY-MM-DD, defaults to today)")
	doneCmd.Flags().BoolVar(&doneUndo, "undo", false, "Take a completion back")
}

func runDone(_ *cobra.Command, args []string) error {
	db, svc, err := openService()
	if err != nil {
		return err
	}
	defer db.Close()

	today := cal.Today()
	day, err := parseDoneDay(doneDate, today)
	if err != nil {
		return err
	}

	var id string
	if len(args) > 0 {
		id = args[0]
	} else {
		id, err = pickRitual(svc, today)
		if err != nil {
			return err
		}
		if id == "" {
			return nil // canceled
		}
	}

	t, done, err := svc.Toggle(id, day, time.Now())
	if err != nil {
		return err
	}

	if doneUndo && done {
		// The toggle turned it on, so there was nothing to undo. Flip it
		// back and say so rather than leaving a surprise completion.
		if _, _, err := svc.Toggle(t.ID, day, time.Now()); err != nil {
			return err
		}
		ui.Inf("%s wasn't marked done on %s.", t.Title, day)
		return nil
	}

	if done {
		printDoneFeedback(svc, t.ID, t.Title, today)
		if day != today {
			fmt.Println(ui.Muted.Render("    backfilled for " + day.String()))
		}
	} else {
		fmt.Printf("  %s %s unchecked", ui.Muted.Render("↺"), t.Title)
		if day != today {
			fmt.Print(ui.Muted.Render(" for " + day.String()))
		}
		fmt.Println()
	}
	return nil
}

// parseDoneDay resolves --date. Empty means today; future days are refused
// since a completion records something that happened.
func parseDoneDay(s string, today cal.Day) (cal.Day, error) {
	if s == "" {
		return today, nil
	}
	day, err := cal.Parse(s)
	if err != nil {
		return cal.Day{}, fmt.Errorf("invalid date %q — use YYYY-MM-DD", s)
	}
	if day.After(today) {
		return cal.Day{}, fmt.Errorf("%s is in the future — rituals are completed, not scheduled", day)
	}
	return day, nil
}

type ritualItem struct {
	board stats.BoardItem
}

func (r ritualItem) FilterValue() string {
	return r.board.Task.Title + " " + r.board.Task.Category
}

func (r ritualItem) Title() string {
	return r.board.Task.Title
}

func (r ritualItem) Description() string {
	desc := r.board.Task.Rule.Label()
	if r.board.Summary.Streak > 0 {
		desc += fmt.Sprintf(" · %s%d", ui.IconFire, r.board.Summary.Streak)
	}
	return desc
}

// pickRitual opens the picker over today's unfinished rituals (finished
// ones when undoing) and returns the chosen id, or "" on cancel.
func pickRitual(svc *stats.Service, today cal.Day) (string, error) {
	if !tui.IsTTY() {
		return "", fmt.Errorf("no ritual given — pass an id, or run %s to see them", ui.Accent.Render("ritual list"))
	}

	board, err := svc.TodayBoard(today)
	if err != nil {
		return "", err
	}

	var items []tui.Item
	for _, it := range board {
		if it.Summary.DoneToday != doneUndo {
			continue
		}
		items = append(items, ritualItem{board: it})
	}
	if len(items) == 0 {
		if doneUndo {
			ui.Inf("Nothing done today to undo.")
		} else {
			ui.Inf("Everything due today is already done. %s", ui.IconSpark)
		}
		return "", nil
	}

	title := "Which ritual did you do?"
	if doneUndo {
		title = "Which one do you want back?"
	}
	chosen, err := tui.Pick(items, tui.WithTitle(title))
	if err != nil || chosen == nil {
		return "", err
	}
	return chosen.(ritualItem).board.Task.ID, nil
}
