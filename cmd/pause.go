package cmd

import (
	"fmt"

	"github.com/ritual-sh/ritual/internal/store"
	"github.com/ritual-sh/ritual/internal/task"
	"github.com/ritual-sh/ritual/internal/ui"
	"github.com/spf13/cobra"
)

var pauseCmd = &cobra.Command{
	Use:   "pause <id>",
	Short: "Pause a ritual",
	Long: `Take a ritual off the board without losing anything.

A paused ritual keeps its history and streaks but is never due and never
counts against your rate. Bring it back with ` + "`ritual resume`" + `.`,
	Args: cobra.ExactArgs(1),
	RunE: runPause,
}

var resumeCmd = &cobra.Command{
	Use:   "resume <id>",
	Short: "Resume a paused ritual",
	Args:  cobra.ExactArgs(1),
	RunE:  runResume,
}

func runPause(_ *cobra.Command, args []string) error {
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
	if !t.Active {
		ui.Inf("%s is already paused.", t.Title)
		return nil
	}
	if err := ts.SetActive(t.ID, false); err != nil {
		return err
	}
	fmt.Printf("  %s Paused %s\n", ui.Warning.Render(ui.IconPaused), t.Title)
	fmt.Println(ui.Muted.Render("    history kept — resume any time with " + "ritual resume " + t.ShortID()))
	return nil
}

func runResume(_ *cobra.Command, args []string) error {
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
	if t.Active {
		ui.Inf("%s isn't paused.", t.Title)
		return nil
	}
	if err := ts.SetActive(t.ID, true); err != nil {
		return err
	}
	fmt.Printf("  %s Resumed %s — back on the board\n", ui.Success.Render("✓"), t.Title)
	return nil
}
