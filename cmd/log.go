package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/ritual-sh/ritual/internal/cal"
	"github.com/ritual-sh/ritual/internal/config"
	"github.com/ritual-sh/ritual/internal/ledger"
	"github.com/ritual-sh/ritual/internal/store"
	"github.com/ritual-sh/ritual/internal/task"
	"github.com/ritual-sh/ritual/internal/ui"
	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log [id]",
	Short: "Completion history as a grid",
	Long: `Draw the trailing weeks as a grid, one column per week.

With an id, that ritual's history: completed days are filled, scheduled
days you missed are dotted. Without one, every completion across all
rituals, brighter where more got done.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLog,
}

var logWeeks int

func init() {
	logCmd.Flags().IntVarP(&logWeeks, "weeks", "w", 12, "Trailing weeks to show (1-52)")
}

func runLog(_ *cobra.Command, args []string) error {
	weeks := logWeeks
	if weeks < 1 {
		weeks = 1
	}
	if weeks > 52 {
		weeks = 52
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := store.Open()
	if err != nil {
		return err
	}
	defer db.Close()

	today := cal.Today()
	first := startOfWeek(today, cfg.Calendar.WeekStart()).AddDays(-7 * (weeks - 1))

	if len(args) > 0 {
		return printTaskLog(db, args[0], first, today, weeks)
	}
	return printMergedLog(db, first, today, weeks)
}

// startOfWeek returns the most recent weekStart on or before d.
func startOfWeek(d cal.Day, weekStart time.Weekday) cal.Day {
	shift := (int(d.Weekday()) - int(weekStart) + 7) % 7
	return d.AddDays(-shift)
}

func printTaskLog(db *store.DB, id string, first, today cal.Day, weeks int) error {
	ts := task.NewStore(db.Conn())
	ls := ledger.NewStore(db.Conn())

	t, err := ts.Get(id)
	if err != nil {
		return err
	}
	days, err := ls.DaysBetween(t.ID, first, today)
	if err != nil {
		return err
	}
	done := make(map[cal.Day]bool, len(days))
	for _, d := range days {
		done[d] = true
	}

	icon := ui.IconTask
	if t.Rule.IsRecurring() {
		icon = ui.IconRepeat
	}
	fmt.Println()
	fmt.Println(ui.Title.Render("  " + icon + " " + t.Title))
	fmt.Println(ui.Muted.Render("    " + t.ShortID() + " · " + t.Rule.Label()))
	fmt.Println()

	// Missed-day dots only make sense for a recurring, unpaused ritual;
	// pause history isn't recorded, so a paused one shows completions only.
	showMissed := t.Rule.IsRecurring() && t.Active

	cell := func(day cal.Day) string {
		if day.After(today) {
			return " "
		}
		if done[day] {
			return ui.Success.Render("■")
		}
		if showMissed && t.Rule.IsDue(day, t.CreatedOn, t.StartOn) {
			return ui.Muted.Render("·")
		}
		return " "
	}
	printGrid(first, weeks, cell)

	fmt.Println()
	legend := ui.Success.Render("■") + ui.Muted.Render(" done")
	if showMissed {
		legend += ui.Muted.Render("  · missed")
	}
	fmt.Println("  " + legend)
	fmt.Println(ui.Muted.Render(fmt.Sprintf("  %d %s in the last %d %s",
		len(days), plural(len(days), "completion", "completions"),
		weeks, plural(weeks, "week", "weeks"))))
	fmt.Println()
	return nil
}

func printMergedLog(db *store.DB, first, today cal.Day, weeks int) error {
	ls := ledger.NewStore(db.Conn())
	all, err := ls.ListAll()
	if err != nil {
		return err
	}

	counts := make(map[cal.Day]int)
	total := 0
	for _, c := range all {
		if c.Day.Before(first) || c.Day.After(today) {
			continue
		}
		counts[c.Day]++
		total++
	}

	fmt.Println()
	fmt.Println(ui.Title.Render("  " + ui.IconRitual + "Log"))
	fmt.Println()

	dim := lipgloss.NewStyle().Foreground(ui.Moss)
	cell := func(day cal.Day) string {
		if day.After(today) {
			return " "
		}
		switch n := counts[day]; {
		case n == 0:
			return ui.Muted.Render("·")
		case n == 1:
			return dim.Render("■")
		default:
			return ui.Success.Render("■")
		}
	}
	printGrid(first, weeks, cell)

	fmt.Println()
	fmt.Println("  " + ui.Muted.Render("· none  ") + dim.Render("■") +
		ui.Muted.Render(" one  ") + ui.Success.Render("■") + ui.Muted.Render(" more"))
	fmt.Println(ui.Muted.Render(fmt.Sprintf("  %d %s in the last %d %s",
		total, plural(total, "completion", "completions"),
		weeks, plural(weeks, "week", "weeks"))))
	fmt.Println()
	return nil
}

// printGrid draws one row per weekday and one column per week, oldest on
// the left. The cell func owns all styling.
func printGrid(first cal.Day, weeks int, cell func(cal.Day) string) {
	fmt.Println("      " + monthHeader(first, weeks))
	for row := 0; row < 7; row++ {
		day := first.AddDays(row)
		label := day.Weekday().String()[:2]
		line := "  " + ui.Muted.Render(fmt.Sprintf("%-3s", label)) + " "
		for col := 0; col < weeks; col++ {
			line += cell(first.AddDays(col*7+row)) + " "
		}
		fmt.Println(strings.TrimRight(line, " "))
	}
}

// monthHeader labels the columns where a new month begins.
func monthHeader(first cal.Day, weeks int) string {
	buf := make([]rune, weeks*2+4)
	for i := range buf {
		buf[i] = ' '
	}
	prev := time.Month(0)
	for col := 0; col < weeks; col++ {
		day := first.AddDays(col * 7)
		if day.Month() == prev {
			continue
		}
		prev = day.Month()
		pos := col * 2
		if buf[pos] != ' ' {
			continue
		}
		copy(buf[pos:], []rune(day.Month().String()[:3]))
	}
	return ui.Muted.Render(strings.TrimRight(string(buf), " "))
}
