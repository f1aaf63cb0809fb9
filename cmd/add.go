package cmd

import (
	"fmt"
	"strings"

	"github.com/ritual-sh/ritual/internal/cal"
	"github.com/ritual-sh/ritual/internal/store"
	"github.com/ritual-sh/ritual/internal/task"
	"github.com/ritual-sh/ritual/internal/ui"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Start tracking a new ritual",
	Long: `Add a ritual to track. Recurrence is set with --repeat:

  none     one-time task, due every day until checked off (default)
  daily    due every day
  weekly   due on the weekdays given with --on (e.g. --on mon,wed,fri)
  monthly  due on the month days given with --on (e.g. --on 1,15)

One-time and daily rituals accept --start to push the first occurrence
into the future. Weekly and monthly rituals start at their first matching
day on their own.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var (
	addRepeat   = newRepeatValue(task.KindNone)
	addOn       string
	addStart    string
	addCategory string
)

func init() {
	addCmd.Flags().VarP(addRepeat, "repeat", "r", "Recurrence: none, daily, weekly, monthly")
	addCmd.Flags().StringVar(&addOn, "on", "", "Days for weekly (mon,wed) or monthly (1,15) rituals")
	addCmd.Flags().StringVar(&addStart, "start", "", "First occurrence (YYYY-MM-DD, today, tomorrow)")
	addCmd.Flags().StringVarP(&addCategory, "category", "c", "", "Category label (e.g. health)")
}

// repeatValue is a pflag.Value for the --repeat enum. Aliases (d, day,
// week, ...) are canonicalized at parse time so bad values fail before any
// store is touched.
type repeatValue struct {
	kind string
}

func newRepeatValue(kind string) *repeatValue {
	return &repeatValue{kind: kind}
}

func (v *repeatValue) String() string { return v.kind }

func (v *repeatValue) Set(s string) error {
	kind, err := task.ParseKind(s)
	if err != nil {
		return err
	}
	v.kind = kind
	return nil
}

func (v *repeatValue) Type() string { return "none|daily|weekly|monthly" }

// buildRule combines the --repeat kind with the --on day set.
func buildRule(kind, on string) (task.Rule, error) {
	switch kind {
	case task.KindWeekly:
		if on == "" {
			return task.Rule{}, fmt.Errorf("weekly rituals need --on, e.g. %s", ui.Accent.Render("--on mon,wed,fri"))
		}
		days, err := task.ParseWeekdaySet(on)
		if err != nil {
			return task.Rule{}, err
		}
		return task.RuleWeekly(days), nil

	case task.KindMonthly:
		if on == "" {
			return task.Rule{}, fmt.Errorf("monthly rituals need --on, e.g. %s", ui.Accent.Render("--on 1,15"))
		}
		days, err := task.ParseMonthDaySet(on)
		if err != nil {
			return task.Rule{}, err
		}
		return task.RuleMonthly(days), nil

	case task.KindDaily:
		if on != "" {
			return task.Rule{}, fmt.Errorf("--on only applies to weekly and monthly rituals")
		}
		return task.RuleDaily(), nil

	default: // none
		if on != "" {
			return task.Rule{}, fmt.Errorf("--on only applies to weekly and monthly rituals")
		}
		return task.RuleNone(), nil
	}
}

// parseStartDay resolves the --start flag. Empty means no explicit start.
func parseStartDay(s string, today cal.Day) (*cal.Day, error) {
	if s == "" {
		return nil, nil
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "today":
		d := today
		return &d, nil
	case "tomorrow", "tom":
		d := today.AddDays(1)
		return &d, nil
	}
	d, err := cal.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("invalid start %q — use YYYY-MM-DD, today, or tomorrow", s)
	}
	return &d, nil
}

func runAdd(_ *cobra.Command, args []string) error {
	title := strings.Join(args, " ")

	rule, err := buildRule(addRepeat.kind, addOn)
	if err != nil {
		return err
	}

	today := cal.Today()
	start, err := parseStartDay(addStart, today)
	if err != nil {
		return err
	}
	if start != nil && (rule.Kind == task.KindWeekly || rule.Kind == task.KindMonthly) {
		ui.Warn("start dates only apply to one-time and daily rituals — ignoring --start")
		start = nil
	}

	db, err := store.Open()
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer db.Close()

	ts := task.NewStore(db.Conn())
	t, err := ts.Add(title, addCategory, rule, today, start)
	if err != nil {
		return err
	}

	icon := ui.IconTask
	if rule.IsRecurring() {
		icon = ui.IconRepeat
	}
	fmt.Printf("  %s Added %s %s\n", ui.Success.Render("✓"), icon, ui.Accent.Render(t.Title))
	fmt.Printf("    %s\n", ui.Muted.Render(t.ShortID()+" · "+rule.Label()))

	if t.Category != "" {
		fmt.Printf("    Category: %s\n", ui.Muted.Render(t.Category))
	}
	if t.StartOn != nil {
		fmt.Printf("    Starts: %s\n", ui.Muted.Render(t.StartOn.String()))
	}
	fmt.Println()

	return nil
}
