package cmd

import (
	"fmt"
	"strings"

	"github.com/ritual-sh/ritual/internal/cal"
	"github.com/ritual-sh/ritual/internal/store"
	"github.com/ritual-sh/ritual/internal/task"
	"github.com/ritual-sh/ritual/internal/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change a ritual",
	Long: `Change a ritual's title, category, repeat rule, or start date.

Only the flags you pass are touched. Pass --category "" to clear the
category, --start "" to clear a start date. Changing the rule keeps the
completion history; streaks are always computed against the current rule.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

var (
	editTitle    string
	editRepeat   = newRepeatValue("")
	editOn       string
	editStart    string
	editCategory string
)

func init() {
	editCmd.Flags().StringVarP(&editTitle, "title", "t", "", "New title")
	editCmd.Flags().VarP(editRepeat, "repeat", "r", "New repeat rule")
	editCmd.Flags().StringVar(&editOn, "on", "", "New days for weekly (mon,wed) or monthly (1,15) rituals")
	editCmd.Flags().StringVar(&editStart, "start", "", "New first occurrence (YYYY-MM-DD, today, tomorrow)")
	editCmd.Flags().StringVarP(&editCategory, "category", "c", "", "New category label")
}

func runEdit(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	if !anyChanged(flags, "title", "repeat", "on", "start", "category") {
		return fmt.Errorf("nothing to change — pass at least one of --title, --repeat, --on, --start, --category")
	}

	db, err := store.Open()
	if err != nil {
		return err
	}
	defer db.Close()
	ts := task.NewStore(db.Conn())

	t, err := ts.Get(args[0])
	if err != nil {
		return err
	}

	if flags.Changed("title") {
		title := strings.TrimSpace(editTitle)
		if title == "" {
			return fmt.Errorf("title must not be empty")
		}
		t.Title = title
	}
	if flags.Changed("category") {
		t.Category = strings.TrimSpace(editCategory)
	}

	if flags.Changed("repeat") || flags.Changed("on") {
		kind := t.Rule.Kind
		if flags.Changed("repeat") {
			kind = editRepeat.kind
		}
		// Same kind with no new day set keeps the rule as it stands;
		// anything else is rebuilt from scratch.
		if kind != t.Rule.Kind || flags.Changed("on") {
			rule, err := buildRule(kind, editOn)
			if err != nil {
				return err
			}
			t.Rule = rule
		}
	}

	if flags.Changed("start") {
		start, err := parseStartDay(editStart, cal.Today())
		if err != nil {
			return err
		}
		t.StartOn = start
	}

	if t.StartOn != nil && (t.Rule.Kind == task.KindWeekly || t.Rule.Kind == task.KindMonthly) {
		t.StartOn = nil
		ui.Warn("start dates only apply to one-time and daily rituals — cleared")
	}
	// A start on or before the creation day means "start now", which the
	// store records as no start date. Drop it here so the recap below
	// matches what was saved.
	if t.StartOn != nil && !t.StartOn.After(t.CreatedOn) {
		t.StartOn = nil
	}

	if err := ts.Update(t); err != nil {
		return err
	}

	fmt.Printf("  %s Updated %s\n", ui.Success.Render("✓"), t.Title)
	fmt.Println(ui.Muted.Render("    " + t.ShortID() + " · " + t.Rule.Label()))
	if t.Category != "" {
		ui.Kv("Category", t.Category)
	}
	if t.StartOn != nil {
		ui.Kv("Starts", t.StartOn.String())
	}
	return nil
}

// anyChanged reports whether the user set at least one of the named flags.
func anyChanged(flags *pflag.FlagSet, names ...string) bool {
	for _, name := range names {
		if flags.Changed(name) {
			return true
		}
	}
	return false
}
