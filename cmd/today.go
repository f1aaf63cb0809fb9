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

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Work through today's rituals",
	Long: `Show everything due today and what's already done.

In an interactive terminal, opens a checklist: move with j/k, toggle with
x or space, filter with /. Toggles are applied when you quit. Pipe the
output or pass --plain for a plain print.`,
	RunE: runToday,
}

var todayPlain bool

func init() {
	todayCmd.Flags().BoolVar(&todayPlain, "plain", false, "Plain print, no interactive checklist")
}

func runToday(_ *cobra.Command, _ []string) error {
	db, svc, err := openService()
	if err != nil {
		return err
	}
	defer db.Close()

	today := cal.Today()
	board, err := svc.TodayBoard(today)
	if err != nil {
		return fmt.Errorf("loading today's board: %w", err)
	}

	if !todayPlain && tui.IsTTY() {
		return runTodayTUI(svc, board, today)
	}
	printBoard(board, today)
	return nil
}

func runTodayTUI(svc *stats.Service, board []stats.BoardItem, today cal.Day) error {
	actions, err := tui.RunToday(board, today)
	if err != nil {
		return err
	}

	// Apply collected toggles against the ledger.
	var failed []string
	for _, a := range actions {
		t, done, err := svc.Toggle(a.TaskID, today, time.Now())
		if err != nil {
			failed = append(failed, fmt.Sprintf("toggle %s: %v", a.Title, err))
			continue
		}
		if done {
			printDoneFeedback(svc, t.ID, t.Title, today)
		} else {
			fmt.Printf("  %s %s unchecked\n", ui.Muted.Render("↺"), t.Title)
		}
	}

	if len(failed) > 0 {
		fmt.Println(ui.Warning.Render("Some toggles failed:"))
		for _, msg := range failed {
			fmt.Println("  " + msg)
		}
	}

	return nil
}

// printDoneFeedback prints the completion line with the fresh streak.
func printDoneFeedback(svc *stats.Service, id, title string, today cal.Day) {
	line := fmt.Sprintf("  %s %s", ui.Success.Render("✓"), title)
	if _, sum, err := svc.TaskSummary(id, today); err == nil && sum.Streak > 1 {
		line += " " + ui.Warning.Render(fmt.Sprintf("%s%d-day streak!", ui.IconFire, sum.Streak))
	}
	fmt.Println(line)
}

func printBoard(board []stats.BoardItem, today cal.Day) {
	fmt.Println()
	fmt.Println(ui.Title.Render("  "+ui.IconRitual+"Today") +
		ui.Muted.Render("  "+today.Time(time.Local).Format("Mon, Jan 2")))
	fmt.Println()

	if len(board) == 0 {
		fmt.Println(ui.Muted.Render("  Nothing due today."))
		fmt.Println()
		return
	}

	done := 0
	for _, it := range board {
		marker := " "
		title := it.Task.Title
		if it.Summary.DoneToday {
			marker = ui.Success.Render("✓")
			title = ui.Muted.Render(title)
			done++
		}

		line := fmt.Sprintf("    %s %s", marker, title)
		if it.Task.Category != "" {
			line += ui.Muted.Render(" [" + it.Task.Category + "]")
		}
		if it.Summary.Streak > 0 {
			badge := fmt.Sprintf(" %s%d", ui.IconFire, it.Summary.Streak)
			if it.Summary.DoneToday {
				line += ui.Muted.Render(badge)
			} else {
				line += ui.Warning.Render(badge)
			}
		}
		fmt.Println(line)
	}

	fmt.Println()
	fmt.Println(ui.Muted.Render(fmt.Sprintf("  %d of %d done", done, len(board))))
	fmt.Println()
}
