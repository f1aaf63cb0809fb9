package cmd

import (
	"fmt"

	"github.com/ritual-sh/ritual/internal/store"
	"github.com/ritual-sh/ritual/internal/task"
	"github.com/ritual-sh/ritual/internal/ui"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List every ritual you track",
	RunE:    runList,
}

var (
	listCategory string
	listPaused   bool
)

func init() {
	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "Only show one category")
	listCmd.Flags().BoolVar(&listPaused, "paused", false, "Include paused rituals")
}

func runList(_ *cobra.Command, _ []string) error {
	db, err := store.Open()
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer db.Close()

	ts := task.NewStore(db.Conn())
	tasks, err := ts.List(task.ListOptions{
		Category:      listCategory,
		IncludePaused: listPaused,
	})
	if err != nil {
		return err
	}

	if len(tasks) == 0 {
		fmt.Println()
		if listCategory != "" {
			fmt.Println(ui.Muted.Render(fmt.Sprintf("  Nothing in %q.", listCategory)))
		} else {
			fmt.Println(ui.Muted.Render("  No rituals yet."))
			fmt.Println()
			fmt.Printf("  Start one: %s\n", ui.Accent.Render(`ritual add "morning pages" --repeat daily`))
		}
		fmt.Println()
		return nil
	}

	fmt.Println()
	for _, t := range tasks {
		icon := ui.IconTask
		if t.Rule.IsRecurring() {
			icon = ui.IconRepeat
		}

		line := fmt.Sprintf("  %s %s %s", ui.Muted.Render(t.ShortID()), icon, t.Title)
		line += "  " + ui.Muted.Render(t.Rule.Label())
		if t.Category != "" {
			line += ui.Muted.Render(" [" + t.Category + "]")
		}
		if !t.Active {
			line += ui.Warning.Render(" " + ui.IconPaused + "paused")
		}
		fmt.Println(line)
	}

	active, paused, err := ts.Count()
	if err != nil {
		return err
	}
	fmt.Println()
	summary := fmt.Sprintf("  %d active", active)
	if paused > 0 {
		summary += fmt.Sprintf(" · %d paused", paused)
	}
	fmt.Println(ui.Muted.Render(summary))
	fmt.Println()

	return nil
}
