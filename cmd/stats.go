package cmd

import (
	"fmt"
	"strings"

	"github.com/ritual-sh/ritual/internal/cal"
	"github.com/ritual-sh/ritual/internal/ledger"
	"github.com/ritual-sh/ritual/internal/stats"
	"github.com/ritual-sh/ritual/internal/store"
	"github.com/ritual-sh/ritual/internal/task"
	"github.com/ritual-sh/ritual/internal/ui"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats [id]",
	Short: "Streaks and completion rates",
	Long: `Show how your rituals are going.

With an id, a full card for that ritual: current and best streak, the
lifetime completion rate, and when it was last done. Without one, the
overall picture plus a per-category breakdown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStats,
}

var statsCategory string

func init() {
	statsCmd.Flags().StringVarP(&statsCategory, "category", "c", "", "Limit the rollup to one category")
}

func runStats(_ *cobra.Command, args []string) error {
	db, svc, err := openService()
	if err != nil {
		return err
	}
	defer db.Close()

	today := cal.Today()
	if len(args) > 0 {
		return printTaskStats(db, svc, args[0], today)
	}
	if statsCategory != "" {
		return printCategoryStats(svc, statsCategory, today)
	}
	return printOverviewStats(db, svc, today)
}

func printTaskStats(db *store.DB, svc *stats.Service, id string, today cal.Day) error {
	t, sum, err := svc.TaskSummary(id, today)
	if err != nil {
		return err
	}
	ls := ledger.NewStore(db.Conn())
	days, err := ls.Days(t.ID)
	if err != nil {
		return err
	}

	icon := ui.IconTask
	if t.Rule.IsRecurring() {
		icon = ui.IconRepeat
	}
	header := ui.Title.Render("  " + icon + " " + t.Title)
	if t.Category != "" {
		header += ui.Muted.Render("  [" + t.Category + "]")
	}
	if !t.Active {
		header += ui.Warning.Render("  " + ui.IconPaused + "paused")
	}
	fmt.Println()
	fmt.Println(header)
	fmt.Println(ui.Muted.Render("    " + t.ShortID() + " · " + t.Rule.Label()))
	fmt.Println()

	if !t.Rule.IsRecurring() {
		// One-time rituals have no streaks or rates to speak of.
		if last, ok, err := ls.LastDone(t.ID); err != nil {
			return err
		} else if ok {
			ui.Kv("Status", fmt.Sprintf("done on %s %s", last, ui.IconSpark))
		} else {
			ui.Kv("Status", "not done yet")
		}
		fmt.Println()
		return nil
	}

	ui.Kv("Streak", streakLine(sum.Streak, sum.Best))
	if sum.RateOK {
		ui.Kv("Rate", fmt.Sprintf("%s %d%% (%d of %d days)",
			rateBar(sum.Rate, 20), sum.Rate, sum.Completed, sum.Scheduled))
	}
	line := fmt.Sprintf("%d", len(days))
	if last, ok, err := ls.LastDone(t.ID); err != nil {
		return err
	} else if ok {
		line += ui.Muted.Render(" (last " + last.String() + ")")
	}
	ui.Kv("Completions", line)
	if sum.DueToday && !sum.DoneToday {
		fmt.Println()
		ui.Tip("due today — " + ui.Accent.Render("ritual done "+t.ShortID()))
	}
	fmt.Println()
	return nil
}

func printOverviewStats(db *store.DB, svc *stats.Service, today cal.Day) error {
	r, err := svc.Overview(today)
	if err != nil {
		return err
	}
	if r.Tasks == 0 {
		ui.Inf("No rituals yet. Start one with %s.", ui.Accent.Render("ritual add"))
		return nil
	}

	fmt.Println()
	fmt.Println(ui.Title.Render("  " + ui.IconRitual + "Stats"))
	fmt.Println()
	printRollup(r)

	cats, err := task.NewStore(db.Conn()).Categories()
	if err != nil {
		return err
	}
	if len(cats) > 0 {
		fmt.Println()
		fmt.Println(ui.Muted.Render("  By category"))
		for _, cat := range cats {
			cr, err := svc.CategorySummary(cat, today)
			if err != nil {
				return err
			}
			line := fmt.Sprintf("    %-14s", cat)
			if cr.Streak > 0 {
				line += fmt.Sprintf(" %s%-4d", ui.IconFire, cr.Streak)
			} else {
				line += strings.Repeat(" ", 7)
			}
			if cr.RateOK {
				line += fmt.Sprintf(" %3d%%", cr.Rate)
			}
			line += ui.Muted.Render(fmt.Sprintf("  %d %s", cr.Tasks, plural(cr.Tasks, "ritual", "rituals")))
			fmt.Println(line)
		}
	}
	fmt.Println()
	return nil
}

func printCategoryStats(svc *stats.Service, category string, today cal.Day) error {
	r, err := svc.CategorySummary(category, today)
	if err != nil {
		return err
	}
	if r.Tasks == 0 {
		ui.Inf("No rituals in %q.", category)
		return nil
	}

	fmt.Println()
	fmt.Println(ui.Title.Render("  "+ui.IconRitual+"Stats") + ui.Muted.Render("  ["+category+"]"))
	fmt.Println()
	printRollup(r)
	fmt.Println()
	return nil
}

func printRollup(r stats.RollupSummary) {
	ui.Kv("Rituals", fmt.Sprintf("%d", r.Tasks))
	if r.DueToday > 0 {
		line := fmt.Sprintf("%d of %d done", r.DoneToday, r.DueToday)
		if r.DoneToday == r.DueToday {
			line += " " + ui.IconSpark
		}
		ui.Kv("Today", line)
	} else {
		ui.Kv("Today", ui.Muted.Render("nothing due"))
	}
	ui.Kv("Streak", streakLine(r.Streak, r.Best))
	if r.RateOK {
		ui.Kv("Rate", fmt.Sprintf("%s %d%% (%d of %d days)",
			rateBar(r.Rate, 20), r.Rate, r.Completed, r.Scheduled))
	}
}

// streakLine renders "🔥 4 days (best 12)", degrading gracefully at zero.
func streakLine(current, best int) string {
	if current == 0 {
		if best > 0 {
			return ui.Muted.Render(fmt.Sprintf("none right now (best %d)", best))
		}
		return ui.Muted.Render("none yet — today's a good day to start")
	}
	line := fmt.Sprintf("%s%d %s", ui.IconFire, current, plural(current, "day", "days"))
	if best > current {
		line += ui.Muted.Render(fmt.Sprintf(" (best %d)", best))
	} else {
		line += ui.Muted.Render(" (best!)")
	}
	return line
}

// rateBar renders a fixed-width completion bar for a 0-100 rate.
func rateBar(rate, width int) string {
	filled := rate * width / 100
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return ui.Accent.Render("[") + bar + ui.Accent.Render("]")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
